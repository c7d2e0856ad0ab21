package board

// MaxGamePly bounds the number of moves (search and game history together)
// one Position can have applied at a time.
const MaxGamePly = 2048

// UndoRecord holds what Apply overwrites and cannot recompute. Move is
// NoMove for a null move.
type UndoRecord struct {
	Move          Move
	Castling      CastlingRights
	EnPassant     Square
	Captured      Piece
	HalfMoveClock int
	Hash          uint64
}

// UndoList is the LIFO stack of records behind Apply/Unapply. Its length is
// the number of moves currently applied, and its saved hashes double as the
// position history for repetition detection.
type UndoList struct {
	records [MaxGamePly]UndoRecord
	n       int
}

// Len returns the number of applied moves.
func (u *UndoList) Len() int { return u.n }

// At returns the i-th oldest record.
func (u *UndoList) At(i int) UndoRecord { return u.records[i] }

func (u *UndoList) push(r UndoRecord) *UndoRecord {
	if u.n == MaxGamePly {
		panic("board: undo list overflow")
	}
	u.records[u.n] = r
	u.n++
	return &u.records[u.n-1]
}

func (u *UndoList) pop() *UndoRecord {
	if u.n == 0 {
		panic("board: unapply on empty undo list")
	}
	u.n--
	return &u.records[u.n]
}

// keepLast drops all but the newest k records.
func (u *UndoList) keepLast(k int) {
	if k >= u.n {
		return
	}
	copy(u.records[:k], u.records[u.n-k:u.n])
	u.n = k
}
