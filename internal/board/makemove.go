package board

// Apply plays a pseudo-legal move and reports whether it was legal. An
// illegal move (one leaving the mover's king attacked) is taken back before
// Apply returns, so the position is unchanged in that case.
//
// The hash is kept equal to ComputeHash throughout: en-passant and castling
// keys are XORed out before those fields change and back in afterwards,
// while addPiece, removePiece and movePiece handle the piece keys.
func (p *Position) Apply(m Move) bool {
	from, to, kind := m.From(), m.To(), m.Kind()
	us := p.SideToMove
	them := us.Other()

	pc := p.Squares[from]
	if !pc.IsValid() || pc.Color() != us {
		panic("board: apply " + m.String() + " without a piece of the side to move")
	}

	rec := p.undo.push(UndoRecord{
		Move:          m,
		Castling:      p.Castling,
		EnPassant:     p.EnPassant,
		Captured:      NoPiece,
		HalfMoveClock: p.HalfMoveClock,
		Hash:          p.Hash,
	})

	if p.EnPassant.IsValid() {
		p.Hash ^= enPassantKeys[p.EnPassant.File()]
	}
	p.Hash ^= castleKeys[p.Castling]

	if kind == EnPassant {
		rec.Captured = p.removePiece(to ^ 8)
	} else if m.IsCapture() {
		rec.Captured = p.removePiece(to)
	}

	p.Castling &= castlePermission[from] & castlePermission[to]
	p.EnPassant = NoSquare
	if kind == DoublePawn {
		p.EnPassant = to ^ 8
		p.Hash ^= enPassantKeys[p.EnPassant.File()]
	}
	p.Hash ^= castleKeys[p.Castling]

	if pc.Type() == Pawn || rec.Captured.IsValid() {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	p.movePiece(from, to)
	if kind == KingCastle || kind == QueenCastle {
		rf, rt := castleRook(to)
		p.movePiece(rf, rt)
	}
	if m.IsPromotion() {
		p.removePiece(to)
		p.addPiece(NewPiece(m.Promotion(), us), to)
	}

	if us == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = them
	p.Hash ^= sideKey
	p.Ply++

	if p.IsSquareAttacked(p.KingSquare[us], them) {
		p.Unapply()
		return false
	}
	return true
}

// Unapply takes back the most recent Apply. It panics if the undo list is
// empty or its top record is a null move.
func (p *Position) Unapply() {
	rec := p.undo.pop()
	m := rec.Move
	if m == NoMove {
		panic("board: unapply on a null move")
	}
	from, to, kind := m.From(), m.To(), m.Kind()

	p.Ply--
	p.SideToMove = p.SideToMove.Other()
	us := p.SideToMove
	if us == Black {
		p.FullMoveNumber--
	}

	if m.IsPromotion() {
		p.removePiece(to)
		p.addPiece(NewPiece(Pawn, us), to)
	}
	if kind == KingCastle || kind == QueenCastle {
		rf, rt := castleRook(to)
		p.movePiece(rt, rf)
	}
	p.movePiece(to, from)

	if rec.Captured.IsValid() {
		sq := to
		if kind == EnPassant {
			sq = to ^ 8
		}
		p.addPiece(rec.Captured, sq)
	}

	p.Castling = rec.Castling
	p.EnPassant = rec.EnPassant
	p.HalfMoveClock = rec.HalfMoveClock
	p.Hash = rec.Hash
}

// ApplyNull passes the turn: the side flips and any en-passant square is
// cleared, nothing moves. Must not be called while in check.
func (p *Position) ApplyNull() {
	p.undo.push(UndoRecord{
		Move:          NoMove,
		Castling:      p.Castling,
		EnPassant:     p.EnPassant,
		Captured:      NoPiece,
		HalfMoveClock: p.HalfMoveClock,
		Hash:          p.Hash,
	})
	if p.EnPassant.IsValid() {
		p.Hash ^= enPassantKeys[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}
	p.HalfMoveClock++
	if p.SideToMove == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= sideKey
	p.Ply++
}

// UnapplyNull takes back ApplyNull.
func (p *Position) UnapplyNull() {
	rec := p.undo.pop()
	if rec.Move != NoMove {
		panic("board: unapply null on a real move")
	}
	p.Ply--
	p.SideToMove = p.SideToMove.Other()
	if p.SideToMove == Black {
		p.FullMoveNumber--
	}
	p.EnPassant = rec.EnPassant
	p.HalfMoveClock = rec.HalfMoveClock
	p.Hash = rec.Hash
}
