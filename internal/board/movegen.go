package board

// Ordering scores attached at generation time. Captures rank most valuable
// victim first, then least valuable attacker; special moves get fixed
// bonuses. Plain quiet moves score 0 and are ranked later by the search.
const (
	CaptureScoreBase  = 10100
	CastleScore       = 10050
	PromotionScore    = 10010
	EnPassantScore    = CaptureScoreBase + 5
	promotionStepping = 10
)

// CaptureScore is the MVV-LVA score of attacker taking victim.
func CaptureScore(victim, attacker PieceType) int32 {
	return CaptureScoreBase + 100*int32(victim) + 5 - int32(attacker)
}

type castle struct {
	right  CastlingRights
	kind   MoveKind
	king   Square
	kingTo Square
	rook   Square
	rookTo Square
	empty  Bitboard  // squares between king and rook
	safe   [3]Square // king start, path, destination
}

var castles = [2][2]castle{
	White: {
		{WhiteKingSide, KingCastle, E1, G1, H1, F1, SquareBB(F1) | SquareBB(G1), [3]Square{E1, F1, G1}},
		{WhiteQueenSide, QueenCastle, E1, C1, A1, D1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), [3]Square{E1, D1, C1}},
	},
	Black: {
		{BlackKingSide, KingCastle, E8, G8, H8, F8, SquareBB(F8) | SquareBB(G8), [3]Square{E8, F8, G8}},
		{BlackQueenSide, QueenCastle, E8, C8, A8, D8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), [3]Square{E8, D8, C8}},
	},
}

// castleRook returns the rook relocation that goes with a castle landing
// the king on kingTo.
func castleRook(kingTo Square) (from, to Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	case C8:
		return A8, D8
	}
	panic("board: no castle lands on " + kingTo.String())
}

// Generate returns the pseudo-legal moves of the side to move, split into
// quiet moves and captures.
func (p *Position) Generate() (quiets, captures MoveList) {
	p.GenerateInto(&quiets, &captures)
	return quiets, captures
}

// GenerateInto resets both lists and fills them with the pseudo-legal moves
// of the side to move. En passant and capturing promotions count as
// captures; pushes, castles and non-capturing promotions are quiet.
// Castles are only emitted when the king's start, path and destination are
// all safe, since Apply only checks the final king square.
func (p *Position) GenerateInto(quiets, captures *MoveList) {
	quiets.Reset()
	captures.Reset()

	us := p.SideToMove
	enemy := p.Occupied[us.Other()]
	empty := ^p.AllOccupied

	p.generatePawnMoves(quiets, captures, us, enemy, empty)

	for pt := Knight; pt <= King; pt++ {
		for pieces := p.Pieces[us][pt]; pieces != 0; {
			from := pieces.PopLSB()
			var targets Bitboard
			switch pt {
			case Knight:
				targets = knightAttacks[from]
			case Bishop:
				targets = BishopAttacks(from, p.AllOccupied)
			case Rook:
				targets = RookAttacks(from, p.AllOccupied)
			case Queen:
				targets = QueenAttacks(from, p.AllOccupied)
			case King:
				targets = kingAttacks[from]
			}
			for t := targets & enemy; t != 0; {
				to := t.PopLSB()
				captures.add(NewMove(from, to, Capture), CaptureScore(p.Squares[to].Type(), pt))
			}
			for t := targets & empty; t != 0; {
				quiets.add(NewMove(from, t.PopLSB(), Quiet), 0)
			}
		}
	}

	p.generateCastles(quiets, us)
}

func (p *Position) generatePawnMoves(quiets, captures *MoveList, us Color, enemy, empty Bitboard) {
	pawns := p.Pieces[us][Pawn]
	up, doubleRank, lastRank := 8, Rank3, Rank8
	if us == Black {
		up, doubleRank, lastRank = -8, Rank6, Rank1
	}

	single := pawns.Forward(us) & empty
	for t := single &^ lastRank; t != 0; {
		to := t.PopLSB()
		quiets.add(NewMove(Square(int(to)-up), to, Quiet), 0)
	}
	for t := (single & doubleRank).Forward(us) & empty; t != 0; {
		to := t.PopLSB()
		quiets.add(NewMove(Square(int(to)-2*up), to, DoublePawn), 0)
	}
	for t := single & lastRank; t != 0; {
		to := t.PopLSB()
		addPromotions(quiets, Square(int(to)-up), to, PromoteKnight, PromotionScore)
	}

	for b := pawns; b != 0; {
		from := b.PopLSB()
		att := pawnAttacks[us][from]
		for t := att & enemy; t != 0; {
			to := t.PopLSB()
			score := CaptureScore(p.Squares[to].Type(), Pawn)
			if lastRank.Has(to) {
				addPromotions(captures, from, to, CapturePromoteKnight, score)
			} else {
				captures.add(NewMove(from, to, Capture), score)
			}
		}
		if p.EnPassant.IsValid() && att.Has(p.EnPassant) {
			captures.add(NewMove(from, p.EnPassant, EnPassant), EnPassantScore)
		}
	}
}

// addPromotions emits the four promotions of one pawn move, base being
// PromoteKnight or CapturePromoteKnight.
func addPromotions(ml *MoveList, from, to Square, base MoveKind, score int32) {
	for i := MoveKind(0); i < 4; i++ {
		ml.add(NewMove(from, to, base+i), score+promotionStepping*int32(i))
	}
}

func (p *Position) generateCastles(quiets *MoveList, us Color) {
	if p.Castling == NoCastling {
		return
	}
	them := us.Other()
	for i := range castles[us] {
		c := &castles[us][i]
		if p.Castling&c.right == 0 || p.AllOccupied&c.empty != 0 {
			continue
		}
		if p.IsSquareAttacked(c.safe[0], them) ||
			p.IsSquareAttacked(c.safe[1], them) ||
			p.IsSquareAttacked(c.safe[2], them) {
			continue
		}
		quiets.add(NewMove(c.king, c.kingTo, c.kind), CastleScore)
	}
}

// GenerateLegal returns every legal move, captures first. Each pseudo-legal
// move is tried with Apply and taken back.
func (p *Position) GenerateLegal() MoveList {
	var quiets, captures, legal MoveList
	p.GenerateInto(&quiets, &captures)
	for _, ml := range []*MoveList{&captures, &quiets} {
		for i := 0; i < ml.n; i++ {
			if p.Apply(ml.moves[i]) {
				p.Unapply()
				legal.add(ml.moves[i], ml.scores[i])
			}
		}
	}
	return legal
}

// HasLegalMove reports whether the side to move can move at all.
func (p *Position) HasLegalMove() bool {
	var quiets, captures MoveList
	p.GenerateInto(&quiets, &captures)
	for _, ml := range []*MoveList{&captures, &quiets} {
		for i := 0; i < ml.n; i++ {
			if p.Apply(ml.moves[i]) {
				p.Unapply()
				return true
			}
		}
	}
	return false
}

// ParseMove resolves coordinate notation ("e2e4", "e7e8q") against the
// legal moves of p. ok is false when no legal move matches.
func (p *Position) ParseMove(s string) (m Move, ok bool) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, false
	}
	legal := p.GenerateLegal()
	for _, cand := range legal.Slice() {
		if cand.String() == s {
			return cand, true
		}
	}
	return NoMove, false
}
