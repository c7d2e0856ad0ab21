package board

// Move packs a move into 16 bits: from in bits 0-5, to in bits 6-11 and a
// MoveKind in bits 12-15.
type Move uint16

// MoveKind tags what a move does besides relocating a piece. Bit 2 marks a
// capture and bit 3 a promotion; the low two bits of a promotion select
// the new piece (knight, bishop, rook, queen).
type MoveKind uint8

const (
	Quiet       MoveKind = 0
	DoublePawn  MoveKind = 1
	KingCastle  MoveKind = 2
	QueenCastle MoveKind = 3
	Capture     MoveKind = 4
	EnPassant   MoveKind = 5

	PromoteKnight MoveKind = 8
	PromoteBishop MoveKind = 9
	PromoteRook   MoveKind = 10
	PromoteQueen  MoveKind = 11

	CapturePromoteKnight MoveKind = 12
	CapturePromoteBishop MoveKind = 13
	CapturePromoteRook   MoveKind = 14
	CapturePromoteQueen  MoveKind = 15
)

// NoMove is the zero move. a1a1 can never be played, so zero is safe here.
const NoMove Move = 0

// NewMove builds a move of the given kind.
func NewMove(from, to Square, kind MoveKind) Move {
	return Move(from) | Move(to)<<6 | Move(kind)<<12
}

func (m Move) From() Square      { return Square(m & 0x3f) }
func (m Move) To() Square        { return Square(m>>6&0x3f) }
func (m Move) Kind() MoveKind    { return MoveKind(m >> 12) }
func (m Move) IsPromotion() bool { return m&(8<<12) != 0 }

// IsCapture reports whether the move removes an enemy piece, en passant and
// capturing promotions included.
func (m Move) IsCapture() bool {
	k := m.Kind()
	return k == Capture || k == EnPassant || k >= CapturePromoteKnight
}

// IsCastle reports whether the move is either castle.
func (m Move) IsCastle() bool {
	k := m.Kind()
	return k == KingCastle || k == QueenCastle
}

// IsQuiet reports whether the move neither captures nor promotes.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// Promotion returns the piece a promotion turns into. Only meaningful when
// IsPromotion is true.
func (m Move) Promotion() PieceType {
	return Knight + PieceType(m>>12&3)
}

// String renders the move in coordinate notation, e.g. "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// MaxMoves bounds the moves a single position can produce.
const MaxMoves = 256

// MoveList is a fixed-capacity move buffer with one ordering score per move.
type MoveList struct {
	moves  [MaxMoves]Move
	scores [MaxMoves]int32
	n      int
}

func (ml *MoveList) add(m Move, score int32) {
	ml.moves[ml.n] = m
	ml.scores[ml.n] = score
	ml.n++
}

// Add appends m with a zero score.
func (ml *MoveList) Add(m Move) { ml.add(m, 0) }

func (ml *MoveList) Len() int                { return ml.n }
func (ml *MoveList) Get(i int) Move          { return ml.moves[i] }
func (ml *MoveList) Score(i int) int32       { return ml.scores[i] }
func (ml *MoveList) SetScore(i int, s int32) { ml.scores[i] = s }
func (ml *MoveList) Reset()                  { ml.n = 0 }

// Swap exchanges two entries together with their scores.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
	ml.scores[i], ml.scores[j] = ml.scores[j], ml.scores[i]
}

// PickBest moves the highest scored entry in [from, Len) to index from and
// returns it. Selection sort one step at a time, so a cutoff skips the rest.
func (ml *MoveList) PickBest(from int) Move {
	best := from
	for i := from + 1; i < ml.n; i++ {
		if ml.scores[i] > ml.scores[best] {
			best = i
		}
	}
	if best != from {
		ml.Swap(from, best)
	}
	return ml.moves[from]
}

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for _, x := range ml.moves[:ml.n] {
		if x == m {
			return true
		}
	}
	return false
}

// Slice exposes the filled part of the list.
func (ml *MoveList) Slice() []Move { return ml.moves[:ml.n] }

// Append copies the entries of other, scores included, to the end of ml.
func (ml *MoveList) Append(other *MoveList) {
	copy(ml.moves[ml.n:], other.moves[:other.n])
	copy(ml.scores[ml.n:], other.scores[:other.n])
	ml.n += other.n
}
