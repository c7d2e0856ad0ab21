package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// FEN parse failures. Every error returned by ParseFEN wraps exactly one of
// these, so callers can tell them apart with errors.Is.
var (
	ErrMissingField       = errors.New("fen: missing field")
	ErrInvalidChar        = errors.New("fen: invalid character")
	ErrIncompleteRank     = errors.New("fen: incomplete rank")
	ErrInvalidRank        = errors.New("fen: invalid rank")
	ErrInvalidSide        = errors.New("fen: invalid side to move")
	ErrInvalidCastle      = errors.New("fen: invalid castling field")
	ErrInvalidEnPassant   = errors.New("fen: invalid en-passant field")
	ErrInvalidMoveCounter = errors.New("fen: invalid move counter")
	ErrIllegalPosition    = errors.New("fen: illegal position")
)

// ParseFEN builds a fresh Position from a FEN record. The half-move and
// full-move fields may be omitted.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: want at least 4 fields, got %d", ErrMissingField, len(fields))
	}

	p := emptyPosition()
	if err := parsePlacement(p, fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		p.SideToMove = White
	case "b":
		p.SideToMove = Black
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSide, fields[1])
	}

	cr, err := parseCastling(p, fields[2])
	if err != nil {
		return nil, err
	}
	p.Castling = cr

	if fields[3] != "-" {
		sq, err := parseEnPassant(p, fields[3])
		if err != nil {
			return nil, err
		}
		p.EnPassant = sq
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: half-move clock %q", ErrInvalidMoveCounter, fields[4])
		}
		p.HalfMoveClock = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: full-move number %q", ErrInvalidMoveCounter, fields[5])
		}
		p.FullMoveNumber = n
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalPosition, err)
	}
	p.Hash = p.ComputeHash()
	return p, nil
}

func parsePlacement(p *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) < 8 {
		return fmt.Errorf("%w: %d ranks", ErrIncompleteRank, len(ranks))
	}
	if len(ranks) > 8 {
		return fmt.Errorf("%w: %d ranks", ErrInvalidRank, len(ranks))
	}

	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
			} else {
				pc, ok := PieceFromChar(ch)
				if !ok {
					return fmt.Errorf("%w: %q in rank %d", ErrInvalidChar, ch, rank+1)
				}
				if file < 8 {
					p.addPiece(pc, NewSquare(file, rank))
				}
				file++
			}
			if file > 8 {
				return fmt.Errorf("%w: rank %d overflows", ErrInvalidRank, rank+1)
			}
		}
		if file < 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrIncompleteRank, rank+1, file)
		}
	}
	return nil
}

// parseCastling accepts only rights that the king and rook placement can
// actually back.
func parseCastling(p *Position, field string) (CastlingRights, error) {
	if field == "-" {
		return NoCastling, nil
	}
	var cr CastlingRights
	for i := 0; i < len(field); i++ {
		var right CastlingRights
		var king, rook Piece
		var kingSq, rookSq Square
		switch field[i] {
		case 'K':
			right, king, rook, kingSq, rookSq = WhiteKingSide, WhiteKing, WhiteRook, E1, H1
		case 'Q':
			right, king, rook, kingSq, rookSq = WhiteQueenSide, WhiteKing, WhiteRook, E1, A1
		case 'k':
			right, king, rook, kingSq, rookSq = BlackKingSide, BlackKing, BlackRook, E8, H8
		case 'q':
			right, king, rook, kingSq, rookSq = BlackQueenSide, BlackKing, BlackRook, E8, A8
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidCastle, field)
		}
		if cr&right != 0 || p.Squares[kingSq] != king || p.Squares[rookSq] != rook {
			return 0, fmt.Errorf("%w: %q does not match the board", ErrInvalidCastle, field)
		}
		cr |= right
	}
	return cr, nil
}

// parseEnPassant requires the target to sit behind an enemy pawn that could
// just have made a double push.
func parseEnPassant(p *Position, field string) (Square, error) {
	sq, err := ParseSquare(field)
	if err != nil {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidEnPassant, field)
	}
	wantRank, pusher := 5, BlackPawn
	if p.SideToMove == Black {
		wantRank, pusher = 2, WhitePawn
	}
	if sq.Rank() != wantRank || p.Squares[sq].IsValid() || p.Squares[sq^8] != pusher {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidEnPassant, field)
	}
	return sq, nil
}

// FEN renders the position as a FEN record.
func (p *Position) FEN() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		gap := 0
		for f := 0; f < 8; f++ {
			pc := p.Squares[NewSquare(f, r)]
			if !pc.IsValid() {
				gap++
				continue
			}
			if gap > 0 {
				sb.WriteByte(byte('0' + gap))
				gap = 0
			}
			sb.WriteString(pc.String())
		}
		if gap > 0 {
			sb.WriteByte(byte('0' + gap))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}
	side := "w"
	if p.SideToMove == Black {
		side = "b"
	}
	fmt.Fprintf(&sb, " %s %s %s %d %d", side, p.Castling, p.EnPassant, p.HalfMoveClock, p.FullMoveNumber)
	return sb.String()
}
