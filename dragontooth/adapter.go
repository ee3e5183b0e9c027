// Package dragontooth adapts the dragontoothmg move generator to the
// engine's Position interface. The engine never sees a concrete board;
// everything it knows about legality, check and hashing flows through
// this adapter.
package dragontooth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dylhunn/dragontoothmg"

	"chess-engine/engine"
)

// castleRights mirrors the rights dragontoothmg tracks internally but
// does not export. The adapter maintains its own copy so the evaluator
// can read them; move legality never depends on this copy.
type castleRights struct {
	wk, wq, bk, bq bool
}

// Board wraps a dragontoothmg.Board behind engine.Position.
type Board struct {
	inner  dragontoothmg.Board
	rights castleRights

	// Undo data for the shadow rights, pushed per Apply.
	rightsStack []castleRights

	// Generated moves for the current position, so Apply can find the
	// underlying generator move without a second generation pass.
	cached    []dragontoothmg.Move
	cachedKey uint64
}

// NewBoard parses a FEN string. A malformed FEN is a hard error; the
// underlying generator accepts anything and misbehaves later, so the
// string is validated up front.
func NewBoard(fen string) (*Board, error) {
	rights, err := validateFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return &Board{
		inner:  dragontoothmg.ParseFen(fen),
		rights: rights,
	}, nil
}

// NewStartingBoard returns the standard starting position.
func NewStartingBoard() *Board {
	b, err := NewBoard(dragontoothmg.Startpos)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Board) LegalMoves() []engine.Move {
	raw := b.generate()
	moves := make([]engine.Move, len(raw))
	for i, dm := range raw {
		moves[i] = b.convert(dm)
	}
	return moves
}

// Apply plays the move and returns the undo closure. The move must be
// one of LegalMoves for the current position.
func (b *Board) Apply(m engine.Move) func() {
	dm, ok := b.find(m)
	if !ok {
		panic(fmt.Sprintf("apply illegal move %s", m))
	}

	b.rightsStack = append(b.rightsStack, b.rights)
	b.updateRights(m)
	unapply := b.inner.Apply(dm)

	return func() {
		unapply()
		last := len(b.rightsStack) - 1
		b.rights = b.rightsStack[last]
		b.rightsStack = b.rightsStack[:last]
	}
}

func (b *Board) InCheck() bool {
	return b.inner.OurKingInCheck()
}

func (b *Board) IsCheckmate() bool {
	return len(b.generate()) == 0 && b.inner.OurKingInCheck()
}

func (b *Board) IsStalemate() bool {
	return len(b.generate()) == 0 && !b.inner.OurKingInCheck()
}

func (b *Board) SideToMove() engine.Color {
	if b.inner.Wtomove {
		return engine.White
	}
	return engine.Black
}

func (b *Board) Key() uint64 {
	return b.inner.Hash()
}

func (b *Board) Pieces(c engine.Color, pt engine.PieceType) uint64 {
	side := &b.inner.White
	if c == engine.Black {
		side = &b.inner.Black
	}
	switch pt {
	case engine.Pawn:
		return side.Pawns
	case engine.Knight:
		return side.Knights
	case engine.Bishop:
		return side.Bishops
	case engine.Rook:
		return side.Rooks
	case engine.Queen:
		return side.Queens
	case engine.King:
		return side.Kings
	}
	return 0
}

func (b *Board) CastleRights(c engine.Color) (kingside, queenside bool) {
	if c == engine.White {
		return b.rights.wk, b.rights.wq
	}
	return b.rights.bk, b.rights.bq
}

// FEN renders the current position.
func (b *Board) FEN() string {
	return b.inner.ToFen()
}

// PushUCIMove plays a move given in long algebraic form against the
// current position, as the position command delivers them. Unlike
// Apply there is no undo; game history moves are permanent.
func (b *Board) PushUCIMove(s string) error {
	for _, m := range b.LegalMoves() {
		if m.String() == s {
			b.Apply(m)
			return nil
		}
	}
	return fmt.Errorf("move %q is not legal here", s)
}

// generate returns the legal moves of the current position, cached by
// position key so Apply's lookup does not pay for a second generation.
func (b *Board) generate() []dragontoothmg.Move {
	key := b.inner.Hash()
	if b.cached == nil || b.cachedKey != key {
		b.cached = b.inner.GenerateLegalMoves()
		b.cachedKey = key
	}
	return b.cached
}

// find maps an engine move back to the generator's move by from, to
// and promotion, a triple that is unique among legal moves.
func (b *Board) find(m engine.Move) (dragontoothmg.Move, bool) {
	for _, dm := range b.generate() {
		if uint8(dm.From()) == m.From && uint8(dm.To()) == m.To &&
			engine.PieceType(dm.Promote()) == m.Promotion {
			return dm, true
		}
	}
	return 0, false
}

// convert fills the engine move with piece context the generator's
// packed move does not carry: the mover, the victim, and the en
// passant and castling markers the orderer and rights tracking need.
func (b *Board) convert(dm dragontoothmg.Move) engine.Move {
	own, enemy := &b.inner.White, &b.inner.Black
	if !b.inner.Wtomove {
		own, enemy = enemy, own
	}

	m := engine.Move{
		From:      uint8(dm.From()),
		To:        uint8(dm.To()),
		Promotion: engine.PieceType(dm.Promote()),
	}
	m.Piece = pieceTypeOn(own, m.From)
	m.Captured = pieceTypeOn(enemy, m.To)

	if m.Piece == engine.Pawn && m.Captured == engine.NoPiece && m.From%8 != m.To%8 {
		m.EnPassant = true
		m.Captured = engine.Pawn
	}
	if m.Piece == engine.King && fileDistance(m.From, m.To) == 2 {
		m.Castle = true
	}
	return m
}

// updateRights clears shadow castling rights when a king or rook moves
// or a rook is captured on its home square.
func (b *Board) updateRights(m engine.Move) {
	touch := func(sq uint8) {
		switch sq {
		case 4: // e1
			b.rights.wk, b.rights.wq = false, false
		case 0: // a1
			b.rights.wq = false
		case 7: // h1
			b.rights.wk = false
		case 60: // e8
			b.rights.bk, b.rights.bq = false, false
		case 56: // a8
			b.rights.bq = false
		case 63: // h8
			b.rights.bk = false
		}
	}
	touch(m.From)
	touch(m.To)
}

func pieceTypeOn(side *dragontoothmg.Bitboards, sq uint8) engine.PieceType {
	bit := uint64(1) << sq
	switch {
	case side.Pawns&bit != 0:
		return engine.Pawn
	case side.Knights&bit != 0:
		return engine.Knight
	case side.Bishops&bit != 0:
		return engine.Bishop
	case side.Rooks&bit != 0:
		return engine.Rook
	case side.Queens&bit != 0:
		return engine.Queen
	case side.Kings&bit != 0:
		return engine.King
	}
	return engine.NoPiece
}

func fileDistance(a, b uint8) int {
	d := int(a%8) - int(b%8)
	if d < 0 {
		d = -d
	}
	return d
}

// validateFEN checks the six FEN fields before the parser sees them,
// returning the castling rights field decoded.
func validateFEN(fen string) (castleRights, error) {
	var rights castleRights
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return rights, fmt.Errorf("expected 6 fields, got %d", len(fields))
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return rights, fmt.Errorf("expected 8 ranks, got %d", len(ranks))
	}
	var wKings, bKings int
	for i, rank := range ranks {
		width := 0
		for _, r := range rank {
			switch {
			case r >= '1' && r <= '8':
				width += int(r - '0')
			case strings.ContainsRune("pnbrqk", r):
				if r == 'k' {
					bKings++
				}
				width++
			case strings.ContainsRune("PNBRQK", r):
				if r == 'K' {
					wKings++
				}
				width++
			default:
				return rights, fmt.Errorf("rank %d: bad piece %q", 8-i, r)
			}
		}
		if width != 8 {
			return rights, fmt.Errorf("rank %d: covers %d squares", 8-i, width)
		}
	}
	if wKings != 1 || bKings != 1 {
		return rights, fmt.Errorf("need exactly one king per side, got %d white and %d black", wKings, bKings)
	}

	if fields[1] != "w" && fields[1] != "b" {
		return rights, fmt.Errorf("bad side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for _, r := range fields[2] {
			switch r {
			case 'K':
				rights.wk = true
			case 'Q':
				rights.wq = true
			case 'k':
				rights.bk = true
			case 'q':
				rights.bq = true
			default:
				return rights, fmt.Errorf("bad castling rights %q", fields[2])
			}
		}
	}

	ep := fields[3]
	if ep != "-" {
		if len(ep) != 2 || ep[0] < 'a' || ep[0] > 'h' || (ep[1] != '3' && ep[1] != '6') {
			return rights, fmt.Errorf("bad en passant square %q", ep)
		}
	}

	if _, err := strconv.Atoi(fields[4]); err != nil {
		return rights, fmt.Errorf("bad halfmove clock %q", fields[4])
	}
	if _, err := strconv.Atoi(fields[5]); err != nil {
		return rights, fmt.Errorf("bad fullmove number %q", fields[5])
	}

	return rights, nil
}
