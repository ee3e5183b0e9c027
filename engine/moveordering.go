package engine

import (
	"cmp"

	"golang.org/x/exp/slices"
)

// Ordering tiers. Captures always outrank killers and killers outrank
// any quiet move; historyMax keeps the history tier strictly below
// killerBonus2 so the tiers can never cross.
const (
	captureOffset int32 = 20000
	killerBonus   int32 = 12000
	killerBonus2  int32 = 11000
)

// Most Valuable Victim - Least Valuable Aggressor; used to score
// captures. Rows are the victim, columns the attacker.
var mvvLva = [7][7]int32{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 106, 105, 104, 103, 102, 101}, // victim pawn
	{0, 206, 205, 204, 203, 202, 201}, // victim knight
	{0, 306, 305, 304, 303, 302, 301}, // victim bishop
	{0, 406, 405, 404, 403, 402, 401}, // victim rook
	{0, 506, 505, 504, 503, 502, 501}, // victim queen
	{0, 0, 0, 0, 0, 0, 0},             // victim king
}

type scoredMove struct {
	move  Move
	score int32
}

// rankMoves orders the node's moves: captures by MVV-LVA, then killers
// stored for this remaining depth, then quiets by descending history.
// The sort is stable, ties keep generation order, and the result is a
// permutation of the input.
func rankMoves(moves []Move, depth int, killers *killerTable, history *historyTable) []Move {
	scored := make([]scoredMove, len(moves))
	for i, m := range moves {
		scored[i] = scoredMove{move: m, score: scoreMove(m, depth, killers, history)}
	}
	slices.SortStableFunc(scored, func(a, b scoredMove) int {
		return cmp.Compare(b.score, a.score)
	})
	ranked := make([]Move, len(moves))
	for i, sm := range scored {
		ranked[i] = sm.move
	}
	return ranked
}

func scoreMove(m Move, depth int, killers *killerTable, history *historyTable) int32 {
	if m.IsCapture() {
		victim := m.Captured
		if victim == NoPiece {
			victim = Pawn // en passant
		}
		return captureOffset + mvvLva[victim][m.Piece]
	}
	if depth >= 0 && depth <= MaxDepth {
		if killers.moves[depth][0] == m {
			return killerBonus
		}
		if killers.moves[depth][1] == m {
			return killerBonus2
		}
	}
	return history.score(m)
}
