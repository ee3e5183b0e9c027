package engine

// historyMax caps history scores. Once any entry would reach it, every
// entry is halved, so recent cutoffs keep outweighing ancient ones and
// the orderer's quiet tier never collides with the killer bonuses.
const historyMax = 10000

// historyTable accumulates cutoff credit per (from, to) square pair
// across the whole search.
type historyTable struct {
	scores [64][64]int32
}

// bump rewards a cutoff move with depth squared, so cutoffs near the
// root count far more than cutoffs at the frontier.
func (h *historyTable) bump(m Move, depth int) {
	h.scores[m.From][m.To] += int32(depth) * int32(depth)
	if h.scores[m.From][m.To] >= historyMax {
		h.age()
	}
}

// age halves every entry.
func (h *historyTable) age() {
	for from := 0; from < 64; from++ {
		for to := 0; to < 64; to++ {
			h.scores[from][to] /= 2
		}
	}
}

func (h *historyTable) score(m Move) int32 {
	return h.scores[m.From][m.To]
}

func (h *historyTable) clear() {
	*h = historyTable{}
}
