package engine

import (
	"math/bits"
)

// Piece values in centipawns, indexed by PieceType. Kings carry no
// material value.
var pieceValue = [7]int{
	Pawn:   100,
	Knight: 320,
	Bishop: 330,
	Rook:   500,
	Queen:  900,
}

// Piece-square tables from white's point of view, a1 = index 0.
// Black reads them through FlipView. The king table here is the
// middlegame one; kingEndgamePSQT replaces it once the material
// thins out.
var psqt = [7][64]int{
	Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -20, -20, 10, 10, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	Knight: {
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	Bishop: {
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	Rook: {
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	Queen: {
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-10, 5, 5, 5, 5, 5, 0, -10,
		0, 0, 5, 5, 5, 5, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	King: {
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	},
}

// King table once queens are off and at most one rook remains; the
// king walks toward the center instead of hiding behind its shield.
var kingEndgamePSQT = [64]int{
	-50, -30, -30, -30, -30, -30, -30, -50,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-50, -40, -30, -20, -20, -30, -40, -50,
}

const (
	kingsideRightBonus  = 25
	queensideRightBonus = 20
	exposedFilePenalty  = 15
	isolatedPawnPenalty = 15
	doubledPawnPenalty  = 10
)

// Passed pawn bonus by relative rank of the pawn.
var passedPawnBonus = [8]int{0, 10, 15, 20, 30, 45, 70, 0}

var (
	fileMasks     [8]uint64
	adjacentFiles [8]uint64
	// passedMasks[color][sq]: every square an enemy pawn would have to
	// occupy to stop the pawn on sq from being passed.
	passedMasks [2][64]uint64
)

func init() {
	for f := 0; f < 8; f++ {
		fileMasks[f] = 0x0101010101010101 << f
	}
	for f := 0; f < 8; f++ {
		if f > 0 {
			adjacentFiles[f] |= fileMasks[f-1]
		}
		if f < 7 {
			adjacentFiles[f] |= fileMasks[f+1]
		}
	}
	for sq := 0; sq < 64; sq++ {
		f := sq % 8
		span := fileMasks[f] | adjacentFiles[f]
		var ahead, behind uint64
		for r := sq/8 + 1; r < 8; r++ {
			ahead |= 0xff << (8 * r)
		}
		for r := 0; r < sq/8; r++ {
			behind |= 0xff << (8 * r)
		}
		passedMasks[White][sq] = span & ahead
		passedMasks[Black][sq] = span & behind
	}
}

// Evaluate scores the position in centipawns from white's perspective.
// It never detects checkmate or stalemate; terminal scores are the
// search's business.
func Evaluate(pos Position) int16 {
	endgame := isEndgame(pos)

	score := materialAndSquares(pos, White, endgame) - materialAndSquares(pos, Black, endgame)
	score += kingSafety(pos, White) - kingSafety(pos, Black)

	wPawns := pos.Pieces(White, Pawn)
	bPawns := pos.Pieces(Black, Pawn)
	score += pawnStructure(wPawns, bPawns, White) - pawnStructure(bPawns, wPawns, Black)

	return int16(score)
}

// isEndgame reports whether the king should use the endgame table: no
// queens on the board and at most one rook in total.
func isEndgame(pos Position) bool {
	queens := bits.OnesCount64(pos.Pieces(White, Queen) | pos.Pieces(Black, Queen))
	rooks := bits.OnesCount64(pos.Pieces(White, Rook) | pos.Pieces(Black, Rook))
	return queens == 0 && rooks <= 1
}

func materialAndSquares(pos Position, color Color, endgame bool) int {
	score := 0
	for pt := Pawn; pt <= King; pt++ {
		bb := pos.Pieces(color, pt)
		for bb != 0 {
			sq := uint8(bits.TrailingZeros64(bb))
			bb &= bb - 1
			if color == Black {
				sq = FlipView(sq)
			}
			if pt == King && endgame {
				score += kingEndgamePSQT[sq]
			} else {
				score += psqt[pt][sq]
			}
			score += pieceValue[pt]
		}
	}
	return score
}

func kingSafety(pos Position, color Color) int {
	score := 0
	kingside, queenside := pos.CastleRights(color)
	if kingside {
		score += kingsideRightBonus
	}
	if queenside {
		score += queensideRightBonus
	}

	kingBB := pos.Pieces(color, King)
	if kingBB == 0 {
		return score
	}
	kingFile := bits.TrailingZeros64(kingBB) % 8
	ownPawns := pos.Pieces(color, Pawn)
	for f := kingFile - 1; f <= kingFile+1; f++ {
		if f < 0 || f > 7 {
			continue
		}
		if ownPawns&fileMasks[f] == 0 {
			score -= exposedFilePenalty
		}
	}
	return score
}

func pawnStructure(own, enemy uint64, color Color) int {
	score := 0
	for bb := own; bb != 0; bb &= bb - 1 {
		sq := uint8(bits.TrailingZeros64(bb))
		f := fileOf(sq)

		if own&fileMasks[f]&^(1<<sq) != 0 {
			score -= doubledPawnPenalty
		}
		if own&adjacentFiles[f] == 0 {
			score -= isolatedPawnPenalty
		}
		if enemy&passedMasks[color][sq] == 0 {
			relSq := sq
			if color == Black {
				relSq = FlipView(sq)
			}
			score += passedPawnBonus[rankOf(relSq)]
		}
	}
	return score
}
