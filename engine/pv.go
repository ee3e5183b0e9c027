package engine

import (
	"strings"

	"github.com/samber/lo"
)

// PVLine holds the principal variation found below a node, best play
// for both sides as far as the search resolved it.
type PVLine struct {
	Moves []Move
}

func (pv *PVLine) Clear() {
	pv.Moves = pv.Moves[:0]
}

// Update replaces the line with move followed by the child's line.
func (pv *PVLine) Update(move Move, child PVLine) {
	pv.Clear()
	pv.Moves = append(pv.Moves, move)
	pv.Moves = append(pv.Moves, child.Moves...)
}

// GetPVMove returns the first move of the line.
func (pv *PVLine) GetPVMove() Move {
	if len(pv.Moves) == 0 {
		return Move{}
	}
	return pv.Moves[0]
}

func (pv *PVLine) Clone() PVLine {
	return PVLine{Moves: append([]Move(nil), pv.Moves...)}
}

func (pv PVLine) String() string {
	return strings.Join(lo.Map(pv.Moves, func(m Move, _ int) string {
		return m.String()
	}), " ")
}
