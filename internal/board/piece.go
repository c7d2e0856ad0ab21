package board

// Color is the side a piece belongs to.
type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opponent of c.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType is the kind of a piece regardless of colour.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

const pieceTypeChars = "pnbrqk"

// Char is the lowercase FEN letter of pt.
func (pt PieceType) Char() byte { return pieceTypeChars[pt] }

// IsMinor reports whether pt is a knight or bishop.
func (pt PieceType) IsMinor() bool { return pt == Knight || pt == Bishop }

// IsMajor reports whether pt is a rook or queen.
func (pt PieceType) IsMajor() bool { return pt == Rook || pt == Queen }

// PieceValue is the single material table used by the cached aggregates
// and the default evaluator. The king carries no material.
var PieceValue = [6]int{100, 325, 335, 550, 1000, 0}

// Piece packs a colour and a type as type + 6*colour. White pawn is 0, so
// the empty square is the distinct sentinel NoPiece rather than zero.
type Piece uint8

const (
	WhitePawn Piece = iota
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing

	NoPiece Piece = 12
)

const pieceChars = "PNBRQKpnbrqk"

// NewPiece returns the piece of type pt and colour c.
func NewPiece(pt PieceType, c Color) Piece {
	return Piece(pt) + 6*Piece(c)
}

// PieceFromChar maps a FEN letter to its piece. ok is false for any other byte.
func PieceFromChar(ch byte) (p Piece, ok bool) {
	for i := 0; i < len(pieceChars); i++ {
		if pieceChars[i] == ch {
			return Piece(i), true
		}
	}
	return NoPiece, false
}

// IsValid reports whether p is a real piece rather than NoPiece.
func (p Piece) IsValid() bool { return p < NoPiece }

func (p Piece) Type() PieceType { return PieceType(p % 6) }
func (p Piece) Color() Color    { return Color(p / 6) }

// Value is the material value of p.
func (p Piece) Value() int { return PieceValue[p.Type()] }

func (p Piece) String() string {
	if !p.IsValid() {
		return "."
	}
	return pieceChars[p : p+1]
}
