package board

// Attack tables. Everything here is filled once by init and read-only
// afterwards, so any number of positions and engines may share it.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard
	pawnPushes    [2][64]Bitboard

	betweenBB [64][64]Bitboard
	lineBB    [64][64]Bitboard
)

func init() {
	initLeapers()
	initSliders()
	initLines()
	initZobrist()
}

func initLeapers() {
	for sq := A1; sq <= H8; sq++ {
		b := SquareBB(sq)

		knightAttacks[sq] = (b<<17)&notFileA | (b<<15)&notFileH |
			(b>>15)&notFileA | (b>>17)&notFileH |
			(b<<10)&notFileAB | (b<<6)&notFileGH |
			(b>>6)&notFileAB | (b>>10)&notFileGH

		kingAttacks[sq] = b.North() | b.South() | b.East() | b.West() |
			b.NorthEast() | b.NorthWest() | b.SouthEast() | b.SouthWest()

		pawnAttacks[White][sq] = b.NorthEast() | b.NorthWest()
		pawnAttacks[Black][sq] = b.SouthEast() | b.SouthWest()
		pawnPushes[White][sq] = b.North()
		pawnPushes[Black][sq] = b.South()
	}
}

// initLines fills betweenBB and lineBB for every pair of squares sharing a
// rank, file or diagonal. Unaligned pairs stay empty.
func initLines() {
	for from := A1; from <= H8; from++ {
		for _, d := range append(rookDirections[:], bishopDirections[:]...) {
			full := SquareBB(from) | ray(from, d) | ray(from, direction{-d.df, -d.dr})
			var between Bitboard
			f, r := from.File()+d.df, from.Rank()+d.dr
			for onBoard(f, r) {
				to := NewSquare(f, r)
				betweenBB[from][to] = between
				lineBB[from][to] = full
				between |= SquareBB(to)
				f, r = f+d.df, r+d.dr
			}
		}
	}
}

// ray is every square from sq (exclusive) to the board edge along d.
func ray(sq Square, d direction) Bitboard {
	var b Bitboard
	for f, r := sq.File()+d.df, sq.Rank()+d.dr; onBoard(f, r); f, r = f+d.df, r+d.dr {
		b |= SquareBB(NewSquare(f, r))
	}
	return b
}

func KnightAttacks(sq Square) Bitboard { return knightAttacks[sq] }
func KingAttacks(sq Square) Bitboard   { return kingAttacks[sq] }

// PawnAttacks returns the squares a pawn of colour c on sq captures on.
func PawnAttacks(sq Square, c Color) Bitboard { return pawnAttacks[c][sq] }

// PawnPushes returns the single-push target of a pawn of colour c on sq,
// ignoring occupancy. Callers must mask with the empty squares.
func PawnPushes(sq Square, c Color) Bitboard { return pawnPushes[c][sq] }

// Between returns the squares strictly between a and b, or the empty set
// when they share no line.
func Between(a, b Square) Bitboard { return betweenBB[a][b] }

// Line returns the whole board line through a and b.
func Line(a, b Square) Bitboard { return lineBB[a][b] }

// AttackersTo returns the pieces of both colours that attack sq under the
// given occupancy.
func (p *Position) AttackersTo(sq Square, occ Bitboard) Bitboard {
	return p.attackersOf(sq, White, occ) | p.attackersOf(sq, Black, occ)
}

func (p *Position) attackersOf(sq Square, c Color, occ Bitboard) Bitboard {
	pcs := &p.Pieces[c]
	diag := pcs[Bishop] | pcs[Queen]
	orth := pcs[Rook] | pcs[Queen]
	att := pawnAttacks[c.Other()][sq]&pcs[Pawn] |
		knightAttacks[sq]&pcs[Knight] |
		kingAttacks[sq]&pcs[King]
	if diag != 0 {
		att |= BishopAttacks(sq, occ) & diag
	}
	if orth != 0 {
		att |= RookAttacks(sq, occ) & orth
	}
	return att
}

// IsSquareAttacked reports whether any piece of colour by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	pcs := &p.Pieces[by]
	if pawnAttacks[by.Other()][sq]&pcs[Pawn] != 0 ||
		knightAttacks[sq]&pcs[Knight] != 0 ||
		kingAttacks[sq]&pcs[King] != 0 {
		return true
	}
	if BishopAttacks(sq, p.AllOccupied)&(pcs[Bishop]|pcs[Queen]) != 0 {
		return true
	}
	return RookAttacks(sq, p.AllOccupied)&(pcs[Rook]|pcs[Queen]) != 0
}

// InCheck reports whether the side to move has its king attacked.
func (p *Position) InCheck() bool {
	return p.IsSquareAttacked(p.KingSquare[p.SideToMove], p.SideToMove.Other())
}

// Checkers returns the enemy pieces giving check to the side to move.
func (p *Position) Checkers() Bitboard {
	us := p.SideToMove
	return p.attackersOf(p.KingSquare[us], us.Other(), p.AllOccupied)
}
