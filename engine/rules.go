package engine

// Color of the side to move.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType is a colorless piece kind. The zero value means "no piece",
// which is what an empty Captured or Promotion field carries.
type PieceType uint8

const (
	NoPiece PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Move is a fully described legal move: origin, destination and enough
// piece context for the orderer and the tables to score it without
// asking the board anything.
type Move struct {
	From      uint8
	To        uint8
	Piece     PieceType
	Captured  PieceType
	Promotion PieceType
	EnPassant bool
	Castle    bool
}

// IsCapture reports whether the move removes an enemy piece, en passant
// included even though the target square itself is empty.
func (m Move) IsCapture() bool {
	return m.Captured != NoPiece || m.EnPassant
}

func (m Move) IsPromotion() bool {
	return m.Promotion != NoPiece
}

// String renders the move in long algebraic (UCI) form, e.g. e2e4, e7e8q.
func (m Move) String() string {
	buf := [5]byte{
		'a' + m.From%8,
		'1' + m.From/8,
		'a' + m.To%8,
		'1' + m.To/8,
	}
	if m.Promotion != NoPiece {
		buf[4] = promotionLetter[m.Promotion]
		return string(buf[:])
	}
	return string(buf[:4])
}

var promotionLetter = [7]byte{0, 0, 'n', 'b', 'r', 'q', 0}

// Position is the rules collaborator the search runs against. The engine
// never generates or validates moves itself; everything about legality,
// check detection and hashing comes through this interface, so a movegen
// bug can never hide inside the search.
//
// Apply returns the matching undo closure. Callers must unwind applies in
// reverse order, which the recursive search does naturally.
type Position interface {
	// LegalMoves returns every legal move in a stable generation order.
	LegalMoves() []Move

	// Apply plays the move and returns a function restoring the
	// previous state.
	Apply(Move) func()

	// InCheck reports whether the side to move is in check.
	InCheck() bool

	// IsCheckmate and IsStalemate classify a position with no legal
	// moves. They may be called on any position.
	IsCheckmate() bool
	IsStalemate() bool

	SideToMove() Color

	// Key is a canonical hash covering piece placement, castling
	// rights, en passant target and side to move.
	Key() uint64

	// Pieces returns the occupancy bitboard for one piece type of one
	// color, little-endian rank-file mapping (a1=0 ... h8=63).
	Pieces(Color, PieceType) uint64

	// CastleRights reports the remaining kingside/queenside castling
	// rights for a color.
	CastleRights(Color) (kingside, queenside bool)
}

func fileOf(sq uint8) uint8 { return sq % 8 }
func rankOf(sq uint8) uint8 { return sq / 8 }

// FlipView mirrors a square vertically (a1 <-> a8), mapping a black
// piece onto the white piece-square tables.
func FlipView(sq uint8) uint8 {
	return sq ^ 56
}
