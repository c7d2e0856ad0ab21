package board

import "strings"

// SAN renders m, which must be legal in p, in standard algebraic notation
// with a trailing '+' or '#'. p is left unchanged.
func (p *Position) SAN(m Move) string {
	if m == NoMove {
		return "--"
	}
	var sb strings.Builder
	from, to := m.From(), m.To()
	pt := p.Squares[from].Type()

	switch {
	case m.Kind() == KingCastle:
		sb.WriteString("O-O")
	case m.Kind() == QueenCastle:
		sb.WriteString("O-O-O")
	case pt == Pawn:
		if m.IsCapture() {
			sb.WriteByte(byte('a' + from.File()))
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte(pieceChars[m.Promotion()])
		}
	default:
		sb.WriteByte(pieceChars[pt])
		sb.WriteString(p.disambiguate(m, pt))
		if m.IsCapture() {
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
	}

	if p.Apply(m) {
		switch {
		case p.InCheck() && !p.HasLegalMove():
			sb.WriteByte('#')
		case p.InCheck():
			sb.WriteByte('+')
		}
		p.Unapply()
	}
	return sb.String()
}

// disambiguate returns the file, rank or square of m's origin needed to
// tell it apart from other legal moves of the same piece type to the same
// square.
func (p *Position) disambiguate(m Move, pt PieceType) string {
	from := m.From()
	sameFile, sameRank, ambiguous := false, false, false
	legal := p.GenerateLegal()
	for _, o := range legal.Slice() {
		if o.To() != m.To() || o.From() == from || p.Squares[o.From()].Type() != pt {
			continue
		}
		ambiguous = true
		sameFile = sameFile || o.From().File() == from.File()
		sameRank = sameRank || o.From().Rank() == from.Rank()
	}
	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return from.String()[:1]
	case !sameRank:
		return from.String()[1:]
	}
	return from.String()
}

// SANLine renders a sequence of moves played from p. Rendering stops at the
// first move that is not legal where it is played.
func (p *Position) SANLine(moves []Move) []string {
	c := p.Copy()
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		legal := c.GenerateLegal()
		if !legal.Contains(m) {
			break
		}
		out = append(out, c.SAN(m))
		c.Apply(m)
	}
	return out
}
