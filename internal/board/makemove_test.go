package board

import (
	"testing"

	"lukechampine.com/frand"
)

// snapshot is everything Apply/Unapply must restore, undo storage aside.
type snapshot struct {
	pieces      [2][6]Bitboard
	occupied    [2]Bitboard
	all         Bitboard
	squares     [64]Piece
	side        Color
	castling    CastlingRights
	ep          Square
	halfMove    int
	fullMove    int
	ply         int
	hash        uint64
	material    [2]int
	count       [12]int
	kings       [2]Square
	minors      [2]int
	majors      [2]int
	numPieces   int
	historySize int
}

func snap(p *Position) snapshot {
	return snapshot{
		p.Pieces, p.Occupied, p.AllOccupied, p.Squares, p.SideToMove, p.Castling,
		p.EnPassant, p.HalfMoveClock, p.FullMoveNumber, p.Ply, p.Hash, p.Material,
		p.Count, p.KingSquare, p.Minors, p.Majors, p.NumPieces, p.undo.Len(),
	}
}

// checkConsistent rebuilds p from its FEN and compares the derived state.
func checkConsistent(t *testing.T, p *Position) {
	t.Helper()
	if h := p.ComputeHash(); h != p.Hash {
		t.Fatalf("hash %016x, recomputed %016x\n%s", p.Hash, h, p)
	}
	q, err := ParseFEN(p.FEN())
	if err != nil {
		t.Fatalf("FEN %q does not parse back: %v", p.FEN(), err)
	}
	if q.Squares != p.Squares || q.Pieces != p.Pieces || q.Material != p.Material ||
		q.Count != p.Count || q.KingSquare != p.KingSquare || q.Minors != p.Minors ||
		q.Majors != p.Majors || q.NumPieces != p.NumPieces || q.Hash != p.Hash {
		t.Fatalf("incremental state diverged from a fresh parse\n%s", p)
	}
}

func TestApplyUnapplyRandomPlayouts(t *testing.T) {
	games := 40
	if testing.Short() {
		games = 5
	}
	for _, start := range perftPositions {
		for g := 0; g < games; g++ {
			pos, err := ParseFEN(start.fen)
			if err != nil {
				t.Fatalf("Failed to parse FEN: %v", err)
			}
			var trail []snapshot
			for ply := 0; ply < 120; ply++ {
				legal := pos.GenerateLegal()
				if legal.Len() == 0 {
					break
				}
				trail = append(trail, snap(pos))
				m := legal.Get(frand.Intn(legal.Len()))
				if !pos.Apply(m) {
					t.Fatalf("legal move %v rejected in %s", m, pos.FEN())
				}
				checkConsistent(t, pos)
			}
			for i := len(trail) - 1; i >= 0; i-- {
				pos.Unapply()
				if got := snap(pos); got != trail[i] {
					t.Fatalf("%s game %d: state after unapply differs at ply %d\n%s", start.name, g, i, pos)
				}
			}
		}
	}
}

func TestApplyIllegalLeavesPositionUnchanged(t *testing.T) {
	// The e2 bishop is pinned by the rook on e8.
	pos, err := ParseFEN("4r1k1/8/8/8/8/8/4B3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	before := snap(pos)
	if pos.Apply(NewMove(E2, D3, Quiet)) {
		t.Fatal("pinned bishop move accepted")
	}
	if snap(pos) != before {
		t.Error("rejected move changed the position")
	}
}

func TestApplyPanicsWithoutMover(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewPosition().Apply(NewMove(E4, E5, Quiet))
}

func TestUnapplyEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewPosition().Unapply()
}

func TestApplySpecialMoves(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		move  string
		after string
	}{
		{
			"double push sets en passant",
			StartFEN, "e2e4",
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		},
		{
			"en passant removes the pawn",
			"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", "e5f6",
			"rnbqkbnr/ppp1p1pp/5P2/3p4/8/8/PPPP1PPP/RNBQKBNR b KQkq - 0 3",
		},
		{
			"white castles king side",
			"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 3 10", "e1g1",
			"r3k2r/8/8/8/8/8/8/R4RK1 b kq - 4 10",
		},
		{
			"black castles queen side",
			"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 3 10", "e8c8",
			"2kr3r/8/8/8/8/8/8/R3K2R w KQ - 4 11",
		},
		{
			"rook capture clears the right",
			"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "a1a8",
			"R3k2r/8/8/8/8/8/8/4K2R b Kk - 0 1",
		},
		{
			"capture promotion",
			"1r2k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7b8n",
			"1N2k3/8/8/8/8/8/8/4K3 b - - 0 1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("Failed to parse FEN: %v", err)
			}
			m, ok := pos.ParseMove(tc.move)
			if !ok {
				t.Fatalf("%s is not legal", tc.move)
			}
			if !pos.Apply(m) {
				t.Fatalf("Apply(%s) = false", tc.move)
			}
			if got := pos.FEN(); got != tc.after {
				t.Errorf("after %s:\n got %s\nwant %s", tc.move, got, tc.after)
			}
			checkConsistent(t, pos)
			pos.Unapply()
			if got := pos.FEN(); got != normalizeFEN(t, tc.fen) {
				t.Errorf("after unapply: %s", got)
			}
		})
	}
}

func TestNullMove(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	before := snap(pos)

	pos.ApplyNull()
	if pos.SideToMove != White || pos.EnPassant != NoSquare || pos.HalfMoveClock != 1 {
		t.Errorf("null move state: %s", pos.FEN())
	}
	checkConsistent(t, pos)
	if pos.LastMove() != NoMove {
		t.Errorf("LastMove = %v, want NoMove", pos.LastMove())
	}

	pos.UnapplyNull()
	if snap(pos) != before {
		t.Error("UnapplyNull did not restore the position")
	}
}
