package engine

import (
	"unsafe"
)

const (
	// Entry flags. AlphaFlag marks an upper bound (no move improved
	// alpha), BetaFlag a lower bound (beta cutoff), ExactFlag a score
	// inside the window.
	AlphaFlag = iota
	BetaFlag
	ExactFlag
)

// Score returned by useEntry when the probe cannot be used.
const UnusableScore int16 = -32750

type TTEntry struct {
	Hash  uint64
	Depth int8
	Move  Move
	Score int16
	Flag  int8
}

// TransTable is a fixed-capacity transposition table indexed by the
// low bits of the position key. One entry per slot; a probe is only
// trusted after the full key matches.
type TransTable struct {
	entries []TTEntry
	mask    uint64
}

// newTransTable sizes the table to at most sizeMB megabytes, rounded
// down to a power of two entries so indexing is a mask.
func newTransTable(sizeMB int) *TransTable {
	if sizeMB < 1 {
		sizeMB = 1
	}
	entrySize := uint64(unsafe.Sizeof(TTEntry{}))
	wanted := uint64(sizeMB) * 1024 * 1024 / entrySize
	count := uint64(1)
	for count*2 <= wanted {
		count *= 2
	}
	return &TransTable{
		entries: make([]TTEntry, count),
		mask:    count - 1,
	}
}

func (tt *TransTable) clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
}

// getEntry returns the slot for the hash if it holds this exact
// position.
func (tt *TransTable) getEntry(hash uint64) (*TTEntry, bool) {
	entry := &tt.entries[hash&tt.mask]
	if entry.Hash == hash {
		return entry, true
	}
	return nil, false
}

// useEntry decides whether a stored entry may answer the current node,
// depth first, then the bound flag against the live window. Mate scores
// were stored relative to the node, so the distance from the root is
// re-applied before comparing.
func (tt *TransTable) useEntry(entry *TTEntry, depth int, alpha, beta int16, ply int) (usable bool, score int16) {
	if entry == nil || int(entry.Depth) < depth {
		return false, UnusableScore
	}
	norm := entry.Score
	if norm > Checkmate {
		norm -= int16(ply)
	} else if norm < -Checkmate {
		norm += int16(ply)
	}
	switch entry.Flag {
	case ExactFlag:
		return true, norm
	case AlphaFlag:
		if norm <= alpha {
			return true, norm
		}
	case BetaFlag:
		if norm >= beta {
			return true, norm
		}
	}
	return false, UnusableScore
}

// storeEntry writes a search result. Same position: only a result from
// an equal or deeper search may overwrite, so cheap shallow re-searches
// cannot evict expensive deep results. A different position hashing to
// the slot always replaces; the bound logic around probes keeps stale
// or colliding entries harmless.
func (tt *TransTable) storeEntry(hash uint64, depth, ply int, move Move, score int16, flag int8) {
	entry := &tt.entries[hash&tt.mask]
	if entry.Hash == hash && int(entry.Depth) > depth {
		return
	}

	// Mate scores are stored relative to this node, not the root.
	if score > Checkmate {
		score += int16(ply)
	} else if score < -Checkmate {
		score -= int16(ply)
	}

	entry.Hash = hash
	entry.Depth = int8(depth)
	entry.Move = move
	entry.Score = score
	entry.Flag = flag
}
