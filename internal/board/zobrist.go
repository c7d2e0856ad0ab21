package board

// Zobrist keys, drawn once from a fixed-seed xorshift64* stream so that
// hashes are stable across runs and processes.
var (
	pieceKeys     [12][64]uint64
	sideKey       uint64
	castleKeys    [16]uint64
	enPassantKeys [8]uint64
)

const zobristSeed = 0x98F107A2BEEF1234

type xorshift struct{ s uint64 }

func (x *xorshift) next() uint64 {
	x.s ^= x.s >> 12
	x.s ^= x.s << 25
	x.s ^= x.s >> 27
	return x.s * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := xorshift{s: zobristSeed}
	for p := WhitePawn; p < NoPiece; p++ {
		for sq := A1; sq <= H8; sq++ {
			pieceKeys[p][sq] = rng.next()
		}
	}
	sideKey = rng.next()
	for i := range castleKeys {
		castleKeys[i] = rng.next()
	}
	for i := range enPassantKeys {
		enPassantKeys[i] = rng.next()
	}
}

func PieceKey(p Piece, sq Square) uint64 { return pieceKeys[p][sq] }
func SideKey() uint64                    { return sideKey }
func CastleKey(cr CastlingRights) uint64 { return castleKeys[cr] }
func EnPassantKey(file int) uint64       { return enPassantKeys[file] }

// ComputeHash derives the key of p from scratch: every piece on its square,
// the side key when black is to move, the castling mask and the en-passant
// file if one is set. The incrementally maintained p.Hash must always match.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for sq := A1; sq <= H8; sq++ {
		if pc := p.Squares[sq]; pc.IsValid() {
			h ^= pieceKeys[pc][sq]
		}
	}
	if p.SideToMove == Black {
		h ^= sideKey
	}
	h ^= castleKeys[p.Castling]
	if p.EnPassant.IsValid() {
		h ^= enPassantKeys[p.EnPassant.File()]
	}
	return h
}
