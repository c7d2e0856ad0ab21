package engine

import (
	"testing"

	"github.com/hailam/ace/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func playMoves(t *testing.T, pos *board.Position, moves ...string) {
	t.Helper()
	for _, s := range moves {
		m, ok := pos.ParseMove(s)
		if !ok {
			t.Fatalf("%s is not legal in %s", s, pos.FEN())
		}
		pos.Apply(m)
	}
}

func newTestSearcher(t *testing.T, pos *board.Position) *searcher {
	t.Helper()
	return &searcher{
		pos:      pos,
		tt:       newTestTable(t),
		orderer:  NewMoveOrderer(),
		eval:     Classical{},
		nullMove: true,
	}
}

func TestSearchTerminalScores(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want int
	}{
		{"checkmated", "R5k1/5ppp/8/8/8/8/8/6K1 b - - 1 1", -MateScore},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSearcher(t, mustFEN(t, tc.fen))
			s.rootDepth = 2
			if got := s.search(-Infinity, Infinity, 2, 0); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSearchMateDistanceFromRoot(t *testing.T) {
	// Mated one ply below the root.
	s := newTestSearcher(t, mustFEN(t, "R5k1/5ppp/8/8/8/8/8/6K1 b - - 1 1"))
	s.rootDepth = 1
	if got, want := s.search(-Infinity, Infinity, 1, 1), -MateScore+1; got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestSearchDraws(t *testing.T) {
	t.Run("threefold", func(t *testing.T) {
		pos := board.NewPosition()
		playMoves(t, pos, "g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8")
		s := newTestSearcher(t, pos)
		s.rootDepth = 3
		if got := s.search(-Infinity, Infinity, 3, 1); got != 0 {
			t.Errorf("got %d, want 0", got)
		}
	})
	t.Run("fifty moves", func(t *testing.T) {
		s := newTestSearcher(t, mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 100 80"))
		s.rootDepth = 3
		if got := s.search(-Infinity, Infinity, 3, 1); got != 0 {
			t.Errorf("got %d, want 0", got)
		}
	})
	t.Run("not at the root", func(t *testing.T) {
		// The root itself is never scored as a draw; every reply here is.
		s := newTestSearcher(t, mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 100 80"))
		s.rootDepth = 3
		if got := s.search(-Infinity, Infinity, 3, 0); got != 0 {
			t.Errorf("got %d, want 0", got)
		}
		if s.pv.length[0] == 0 {
			t.Error("root search left no best move")
		}
	})
}

func TestSearchStaysInWindow(t *testing.T) {
	pos := mustFEN(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	s := newTestSearcher(t, pos)
	s.rootDepth = 3
	for _, w := range [][2]int{{-10, 10}, {200, 300}, {-300, -200}} {
		got := s.search(w[0], w[1], 3, 0)
		if got < w[0] || got > w[1] {
			t.Errorf("window %v: got %d outside it", w, got)
		}
	}
	if got := pos.FEN(); got != "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3" {
		t.Errorf("search changed the position: %s", got)
	}
}

func TestMoveOrderer(t *testing.T) {
	pos := board.NewPosition()
	mo := NewMoveOrderer()

	e4 := board.NewMove(board.E2, board.E4, board.DoublePawn)
	nf3 := board.NewMove(board.G1, board.F3, board.Quiet)
	d4 := board.NewMove(board.D2, board.D4, board.DoublePawn)
	a3 := board.NewMove(board.A2, board.A3, board.Quiet)

	mo.UpdateKillers(nf3, 2)
	mo.UpdateKillers(d4, 2)
	mo.UpdateKillers(d4, 2) // repeated killer does not push out the other
	if k1, k2 := mo.Killers(2); k1 != d4 || k2 != nf3 {
		t.Fatalf("killers: got %s %s, want d2d4 g1f3", k1, k2)
	}
	mo.UpdateHistory(a3, 4)
	if got := mo.HistoryScore(a3); got != 16 {
		t.Errorf("history: got %d, want 16", got)
	}

	ml := pos.GenerateLegal()
	mo.ScoreMoves(&ml, 2, e4)
	want := []board.Move{e4, d4, nf3, a3}
	for i, w := range want {
		if got := ml.PickBest(i); got != w {
			t.Errorf("move %d: got %s, want %s", i, got, w)
		}
	}

	mo.Clear()
	if k1, _ := mo.Killers(2); k1 != board.NoMove {
		t.Error("Clear kept the killers")
	}
	if got := mo.HistoryScore(a3); got != 8 {
		t.Errorf("history after Clear: got %d, want 8", got)
	}
	mo.Reset()
	if got := mo.HistoryScore(a3); got != 0 {
		t.Errorf("history after Reset: got %d, want 0", got)
	}
}

func TestMoveOrdererCapturesBeforeQuiets(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")
	mo := NewMoveOrderer()
	mo.UpdateHistory(board.NewMove(board.E1, board.F2, board.Quiet), 80)

	ml := pos.GenerateLegal()
	mo.ScoreMoves(&ml, 0, board.NoMove)
	if got := ml.PickBest(0); got.String() != "e4d5" {
		t.Errorf("first move: got %s, want e4d5", got)
	}
}

func TestMateScoreHelpers(t *testing.T) {
	tests := []struct {
		score    int
		mate     bool
		distance int
		uci      string
		human    string
	}{
		{MateScore - 1, true, 1, "mate 1", "Mate in 1"},
		{MateScore - 3, true, 2, "mate 2", "Mate in 2"},
		{-MateScore + 2, true, -1, "mate -1", "Mated in 1"},
		{150, false, 0, "cp 150", "1.50"},
		{-5, false, 0, "cp -5", "-0.05"},
	}
	for _, tc := range tests {
		if got := IsMateScore(tc.score); got != tc.mate {
			t.Errorf("IsMateScore(%d): got %v, want %v", tc.score, got, tc.mate)
		}
		if tc.mate {
			if got := MateDistance(tc.score); got != tc.distance {
				t.Errorf("MateDistance(%d): got %d, want %d", tc.score, got, tc.distance)
			}
		}
		if got := UCIScore(tc.score); got != tc.uci {
			t.Errorf("UCIScore(%d): got %q, want %q", tc.score, got, tc.uci)
		}
		if got := ScoreToString(tc.score); got != tc.human {
			t.Errorf("ScoreToString(%d): got %q, want %q", tc.score, got, tc.human)
		}
	}
}
