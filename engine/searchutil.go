package engine

import "fmt"

// MaxDepth bounds the recursion and sizes the killer table. Requested
// depths above it are clamped.
const MaxDepth = 100

// IsMateScore reports whether a score encodes a forced mate rather
// than a centipawn evaluation.
func IsMateScore(score int16) bool {
	return score > Checkmate || score < -Checkmate
}

// ScoreString renders a score the way UCI wants it: "cp <n>" for
// centipawns, "mate <n>" in full moves when a forced mate is on the
// board, negative when the side to move is the one getting mated.
func ScoreString(score int16) string {
	if score > Checkmate {
		pliesToMate := MaxScore - score
		return fmt.Sprintf("mate %d", pliesToMate/2+pliesToMate%2)
	}
	if score < -Checkmate {
		pliesToMate := -MaxScore - score
		return fmt.Sprintf("mate %d", pliesToMate/2+pliesToMate%2)
	}
	return fmt.Sprintf("cp %d", score)
}
