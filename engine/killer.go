package engine

// maxKillers is the number of killer slots kept per depth.
const maxKillers = 2

// killerTable remembers quiet moves that caused a beta cutoff, keyed by
// remaining depth. Slot 0 holds the most recent killer.
type killerTable struct {
	moves [MaxDepth + 1][maxKillers]Move
}

// insert records a cutoff move unless it already occupies slot 0. The
// previous slot-0 killer shifts down.
func (k *killerTable) insert(m Move, depth int) {
	if depth < 0 || depth > MaxDepth {
		return
	}
	if k.moves[depth][0] != m {
		k.moves[depth][1] = k.moves[depth][0]
		k.moves[depth][0] = m
	}
}

func (k *killerTable) clear() {
	*k = killerTable{}
}
