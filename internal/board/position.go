package board

import (
	"fmt"
	"strings"
)

// CastlingRights is a 4-bit set of the castles still available.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling CastlingRights = 15
)

func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, ch := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

// castlePermission[sq] is ANDed into the rights whenever a move leaves or
// lands on sq. Only the king and rook home squares clear anything.
var castlePermission = [64]CastlingRights{
	13, 15, 15, 15, 12, 15, 15, 14,
	15, 15, 15, 15, 15, 15, 15, 15,
	15, 15, 15, 15, 15, 15, 15, 15,
	15, 15, 15, 15, 15, 15, 15, 15,
	15, 15, 15, 15, 15, 15, 15, 15,
	15, 15, 15, 15, 15, 15, 15, 15,
	15, 15, 15, 15, 15, 15, 15, 15,
	7, 15, 15, 15, 3, 15, 15, 11,
}

// Position is a full game state. It is mutated in place by Apply/Unapply and
// must be owned by a single goroutine at a time; use Copy to hand one off.
//
// The bitboards, the Squares mailbox, Hash and the cached aggregates are only
// ever written through addPiece, removePiece and movePiece.
type Position struct {
	Pieces      [2][6]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard
	Squares     [64]Piece

	SideToMove     Color
	Castling       CastlingRights
	EnPassant      Square // NoSquare when unset
	HalfMoveClock  int
	FullMoveNumber int
	Ply            int // moves applied since the search root

	Hash uint64

	Material   [2]int
	Count      [12]int // indexed by Piece
	KingSquare [2]Square
	Minors     [2]int
	Majors     [2]int
	NumPieces  int

	undo UndoList
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

func emptyPosition() *Position {
	p := &Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
		KingSquare:     [2]Square{NoSquare, NoSquare},
	}
	for sq := range p.Squares {
		p.Squares[sq] = NoPiece
	}
	p.Hash = castleKeys[NoCastling]
	return p
}

// Copy returns an independent deep copy, undo history included.
func (p *Position) Copy() *Position {
	c := *p
	return &c
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece { return p.Squares[sq] }

// PieceOn returns the piece on sq and whether there is one.
func (p *Position) PieceOn(sq Square) (Piece, bool) {
	pc := p.Squares[sq]
	return pc, pc.IsValid()
}

// EnPassantSquare returns the en-passant target and whether one is set.
func (p *Position) EnPassantSquare() (Square, bool) {
	return p.EnPassant, p.EnPassant.IsValid()
}

// History exposes the undo stack, oldest record first.
func (p *Position) History() *UndoList { return &p.undo }

// LastMove returns the most recently applied move, or NoMove.
func (p *Position) LastMove() Move {
	if p.undo.n == 0 {
		return NoMove
	}
	return p.undo.records[p.undo.n-1].Move
}

// SetRoot marks the current position as the search root (Ply 0) and drops
// history that can no longer matter for repetition detection.
func (p *Position) SetRoot() {
	p.Ply = 0
	p.undo.keepLast(p.HalfMoveClock)
}

func (p *Position) addPiece(pc Piece, sq Square) {
	c, pt := pc.Color(), pc.Type()
	b := SquareBB(sq)
	p.Pieces[c][pt] |= b
	p.Occupied[c] |= b
	p.AllOccupied |= b
	p.Squares[sq] = pc
	p.Hash ^= pieceKeys[pc][sq]

	p.Material[c] += PieceValue[pt]
	p.Count[pc]++
	p.NumPieces++
	switch {
	case pt == King:
		p.KingSquare[c] = sq
	case pt.IsMinor():
		p.Minors[c]++
	case pt.IsMajor():
		p.Majors[c]++
	}
}

func (p *Position) removePiece(sq Square) Piece {
	pc := p.Squares[sq]
	if !pc.IsValid() {
		panic("board: remove from empty square " + sq.String())
	}
	c, pt := pc.Color(), pc.Type()
	b := SquareBB(sq)
	p.Pieces[c][pt] &^= b
	p.Occupied[c] &^= b
	p.AllOccupied &^= b
	p.Squares[sq] = NoPiece
	p.Hash ^= pieceKeys[pc][sq]

	p.Material[c] -= PieceValue[pt]
	p.Count[pc]--
	p.NumPieces--
	switch {
	case pt == King:
		p.KingSquare[c] = NoSquare
	case pt.IsMinor():
		p.Minors[c]--
	case pt.IsMajor():
		p.Majors[c]--
	}
	return pc
}

func (p *Position) movePiece(from, to Square) {
	pc := p.Squares[from]
	if !pc.IsValid() {
		panic("board: move from empty square " + from.String())
	}
	c := pc.Color()
	b := SquareBB(from) | SquareBB(to)
	p.Pieces[c][pc.Type()] ^= b
	p.Occupied[c] ^= b
	p.AllOccupied ^= b
	p.Squares[from] = NoPiece
	p.Squares[to] = pc
	p.Hash ^= pieceKeys[pc][from] ^ pieceKeys[pc][to]
	if pc.Type() == King {
		p.KingSquare[c] = to
	}
}

// HasNonPawnMaterial reports whether c has anything besides king and pawns.
func (p *Position) HasNonPawnMaterial(c Color) bool {
	return p.Minors[c]+p.Majors[c] > 0
}

// Repetitions counts earlier occurrences of the current position, looking
// back no further than the last irreversible move or null move.
func (p *Position) Repetitions() int {
	u := &p.undo
	n := 0
	for i := 2; i <= p.HalfMoveClock && i <= u.n; i += 2 {
		if u.records[u.n-i+1].Move == NoMove || u.records[u.n-i].Move == NoMove {
			break
		}
		if u.records[u.n-i].Hash == p.Hash {
			n++
		}
	}
	return n
}

// IsThreefold reports whether the position has now occurred three times.
func (p *Position) IsThreefold() bool { return p.Repetitions() >= 2 }

// IsFiftyMoveDraw reports whether 100 plies passed without a capture or pawn move.
func (p *Position) IsFiftyMoveDraw() bool { return p.HalfMoveClock >= 100 }

// Validate checks the structural sanity FEN input must satisfy.
func (p *Position) Validate() error {
	for _, c := range []Color{White, Black} {
		if n := p.Pieces[c][King].PopCount(); n != 1 {
			return fmt.Errorf("%s has %d kings", c, n)
		}
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("pawn on the first or last rank")
	}
	if p.IsSquareAttacked(p.KingSquare[p.SideToMove.Other()], p.SideToMove) {
		return fmt.Errorf("side not to move is in check")
	}
	return nil
}

// String draws the board from white's side followed by the state fields.
func (p *Position) String() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		fmt.Fprintf(&sb, "%d ", r+1)
		for f := 0; f < 8; f++ {
			sb.WriteByte(' ')
			sb.WriteString(p.Squares[NewSquare(f, r)].String())
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a b c d e f g h\n")
	fmt.Fprintf(&sb, "fen: %s\nkey: %016x\n", p.FEN(), p.Hash)
	return sb.String()
}

// IsCheckmate reports whether the side to move is checkmated.
func (p *Position) IsCheckmate() bool { return p.InCheck() && !p.HasLegalMove() }

// IsStalemate reports whether the side to move has no move but is not in check.
func (p *Position) IsStalemate() bool { return !p.InCheck() && !p.HasLegalMove() }

// IsInsufficientMaterial recognises the dead material balances: bare kings,
// a lone minor piece, and one bishop each on squares of the same colour.
func (p *Position) IsInsufficientMaterial() bool {
	switch p.NumPieces {
	case 2:
		return true
	case 3:
		return p.Minors[White]+p.Minors[Black] == 1
	case 4:
		wb, bb := p.Pieces[White][Bishop], p.Pieces[Black][Bishop]
		if p.Minors[White] != 1 || p.Minors[Black] != 1 || wb == 0 || bb == 0 {
			return false
		}
		return (wb&LightSquares != 0) == (bb&LightSquares != 0)
	}
	return false
}
