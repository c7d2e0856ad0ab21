package board

import (
	"sort"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
	"lukechampine.com/frand"
)

// referenceMoves lists the legal moves of fen according to notnil/chess.
func referenceMoves(t *testing.T, fen string) []string {
	t.Helper()
	opt, err := chess.FEN(fen)
	if err != nil {
		t.Fatalf("reference rejects FEN %q: %v", fen, err)
	}
	game := chess.NewGame(opt)
	var out []string
	for _, m := range game.ValidMoves() {
		out = append(out, chess.UCINotation{}.Encode(game.Position(), m))
	}
	sort.Strings(out)
	return out
}

func ourMoves(p *Position) []string {
	legal := p.GenerateLegal()
	out := make([]string, 0, legal.Len())
	for _, m := range legal.Slice() {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

func TestLegalMovesMatchReference(t *testing.T) {
	walks := 10
	if testing.Short() {
		walks = 2
	}
	for _, start := range perftPositions {
		for w := 0; w < walks; w++ {
			pos, err := ParseFEN(start.fen)
			if err != nil {
				t.Fatalf("Failed to parse FEN: %v", err)
			}
			for ply := 0; ply < 60; ply++ {
				got, want := ourMoves(pos), referenceMoves(t, pos.FEN())
				if !equalStrings(got, want) {
					t.Fatalf("%s: move sets differ\n got %v\nwant %v", pos.FEN(), got, want)
				}
				if len(got) == 0 {
					break
				}
				m, _ := pos.ParseMove(got[frand.Intn(len(got))])
				pos.Apply(m)
			}
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func referencePerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var n uint64
	for _, m := range moves {
		undo := b.Apply(m)
		n += referencePerft(b, depth-1)
		undo()
	}
	return n
}

func TestPerftMatchesReference(t *testing.T) {
	depth := 3
	if testing.Short() {
		depth = 2
	}
	fens := []string{
		"r3k2r/8/8/8/3pPp2/8/8/R3K1RR b KQkq e3 0 1",
		"8/Pk6/8/8/8/8/6Kp/8 w - - 0 1",
		"n1n5/1Pk5/8/8/8/8/5Kp1/5N1N w - - 0 1",
		"8/3k4/8/2pP4/8/8/8/3K4 w - c6 0 2",
		"3k4/3p4/8/K1P4r/8/8/8/8 b - - 0 1",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("Failed to parse FEN %q: %v", fen, err)
		}
		ref := dragontoothmg.ParseFen(fen)
		got, want := pos.Perft(depth), referencePerft(&ref, depth)
		if got != want {
			t.Errorf("%s: perft(%d) = %d, reference %d", fen, depth, got, want)
		}
	}
}
