package engine

import (
	"strings"
	"testing"

	"github.com/hailam/ace/internal/board"
)

// mirrorFEN swaps the colours and flips the board vertically.
func mirrorFEN(fen string) string {
	f := strings.Fields(fen)
	ranks := strings.Split(f[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	swap := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z':
				return r - 'a' + 'A'
			case r >= 'A' && r <= 'Z':
				return r - 'A' + 'a'
			}
			return r
		}, s)
	}
	f[0] = swap(strings.Join(ranks, "/"))
	if f[1] == "w" {
		f[1] = "b"
	} else {
		f[1] = "w"
	}
	if f[2] != "-" {
		c := swap(f[2])
		// keep KQkq order
		var sb strings.Builder
		for _, r := range "KQkq" {
			if strings.ContainsRune(c, r) {
				sb.WriteRune(r)
			}
		}
		f[2] = sb.String()
	}
	if f[3] != "-" {
		rank := f[3][1]
		f[3] = string(f[3][0]) + string('9'-rank+'0')
	}
	return strings.Join(f, " ")
}

func TestClassicalStartIsBalanced(t *testing.T) {
	if got := (Classical{}).Evaluate(board.NewPosition()); got != 0 {
		t.Errorf("start position: got %d, want 0", got)
	}
}

func TestClassicalMirrorSymmetry(t *testing.T) {
	fens := []string{
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"4k3/8/8/8/8/8/4P3/4K3 b - - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			a := (Classical{}).Evaluate(mustFEN(t, fen))
			b := (Classical{}).Evaluate(mustFEN(t, mirrorFEN(fen)))
			if a != b {
				t.Errorf("got %d, mirrored %d", a, b)
			}
		})
	}
}

func TestClassicalSideToMove(t *testing.T) {
	w := (Classical{}).Evaluate(mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1"))
	b := (Classical{}).Evaluate(mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 b - - 0 1"))
	if w <= 0 {
		t.Errorf("white to move with an extra rook: got %d, want > 0", w)
	}
	if b != -w {
		t.Errorf("black to move: got %d, want %d", b, -w)
	}
}

func TestClassicalInsufficientMaterial(t *testing.T) {
	fens := []string{
		"8/8/8/4k3/8/8/8/4K3 w - - 0 1",
		"8/8/8/4k3/8/8/3B4/4K3 w - - 0 1",
		"8/8/8/4k3/8/8/5n2/4K3 b - - 0 1",
		"5b2/8/8/4k3/8/8/8/2B1K3 w - - 0 1",
	}
	for _, fen := range fens {
		if got := (Classical{}).Evaluate(mustFEN(t, fen)); got != 0 {
			t.Errorf("%s: got %d, want 0", fen, got)
		}
	}
	if mustFEN(t, "2b5/8/8/4k3/8/8/8/2B1K3 w - - 0 1").IsInsufficientMaterial() {
		t.Error("opposite-coloured bishops scored as dead material")
	}
}

func TestClassicalPawnStructure(t *testing.T) {
	tests := []struct {
		name          string
		better, worse string
	}{
		{
			"passed beats blocked",
			"4k3/8/8/4P3/8/8/8/4K3 w - - 0 1",
			"4k3/4p3/8/4P3/8/8/8/4K3 w - - 0 1",
		},
		{
			"connected beats isolated",
			"4k3/8/8/8/8/8/2PP4/4K3 w - - 0 1",
			"4k3/8/8/8/8/8/2P1P3/4K3 w - - 0 1",
		},
		{
			"advanced passer beats a young one",
			"4k3/8/1P6/8/8/8/8/4K3 w - - 0 1",
			"4k3/8/8/8/8/1P6/8/4K3 w - - 0 1",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := (Classical{}).Evaluate(mustFEN(t, tc.better))
			w := (Classical{}).Evaluate(mustFEN(t, tc.worse))
			if b <= w {
				t.Errorf("got %d <= %d", b, w)
			}
		})
	}
}

func TestIsEndgame(t *testing.T) {
	if IsEndgame(board.NewPosition()) {
		t.Error("start position is not an endgame")
	}
	if !IsEndgame(mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")) {
		t.Error("queenless position should use the endgame king table")
	}
}
