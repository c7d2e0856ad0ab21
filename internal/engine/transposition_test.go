package engine

import (
	"errors"
	"testing"

	"github.com/hailam/ace/internal/board"
)

func newTestTable(t *testing.T) *TranspositionTable {
	t.Helper()
	tt, err := NewTranspositionTable(1)
	if err != nil {
		t.Fatalf("NewTranspositionTable(1): %v", err)
	}
	return tt
}

func TestTranspositionTableSize(t *testing.T) {
	for _, mb := range []int{0, -1, MaxHashMB + 1} {
		if _, err := NewTranspositionTable(mb); !errors.Is(err, ErrHashSize) {
			t.Errorf("NewTranspositionTable(%d): got %v, want ErrHashSize", mb, err)
		}
	}

	tt := newTestTable(t)
	if got, want := len(tt.buckets), 1<<14; got != want {
		t.Errorf("1 MB table: got %d buckets, want %d", got, want)
	}
	if err := tt.Resize(3); err != nil {
		t.Fatalf("Resize(3): %v", err)
	}
	// 3 MB rounds down to 2 MB worth of buckets.
	if got, want := len(tt.buckets), 1<<15; got != want {
		t.Errorf("3 MB table: got %d buckets, want %d", got, want)
	}
	if tt.SizeMB() != 3 {
		t.Errorf("SizeMB: got %d, want 3", tt.SizeMB())
	}
}

func TestTranspositionStoreProbe(t *testing.T) {
	tt := newTestTable(t)
	key := uint64(0xDEADBEEF12345678)
	m := board.NewMove(board.E2, board.E4, board.DoublePawn)

	if _, _, ok := tt.Probe(key, 1, -Infinity, Infinity, 0); ok {
		t.Fatal("probe hit on an empty table")
	}

	tt.Store(key, m, 42, BoundExact, 5, 0)

	// Storing the same thing twice changes nothing.
	tt.Store(key, m, 42, BoundExact, 5, 0)
	move, score, ok := tt.Probe(key, 5, -Infinity, Infinity, 0)
	if !ok || move != m || score != 42 {
		t.Errorf("probe: got (%s, %d, %v), want (%s, 42, true)", move, score, ok, m)
	}

	// Too shallow: the move is still handed out for ordering.
	move, _, ok = tt.Probe(key, 6, -Infinity, Infinity, 0)
	if ok || move != m {
		t.Errorf("deeper probe: got (%s, %v), want (%s, false)", move, ok, m)
	}

	if st := tt.Stats(); st.Stores != 2 || st.Hits != 2 || st.Overwrites != 0 {
		t.Errorf("stats: got %+v", st)
	}
}

func TestTranspositionProbeBounds(t *testing.T) {
	tt := newTestTable(t)
	upper, lower := uint64(1), uint64(2)
	tt.Store(upper, board.NoMove, 50, BoundUpper, 4, 0)
	tt.Store(lower, board.NoMove, 50, BoundLower, 4, 0)

	tests := []struct {
		name        string
		key         uint64
		alpha, beta int
		wantScore   int
		wantOK      bool
	}{
		{"upper below alpha", upper, 100, 200, 100, true},
		{"upper inside window", upper, 10, 200, 0, false},
		{"lower above beta", lower, -100, 20, 20, true},
		{"lower inside window", lower, -100, 100, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, score, ok := tt.Probe(tc.key, 4, tc.alpha, tc.beta, 0)
			if ok != tc.wantOK || (ok && score != tc.wantScore) {
				t.Errorf("got (%d, %v), want (%d, %v)", score, ok, tc.wantScore, tc.wantOK)
			}
		})
	}
}

func TestTranspositionMateScoresAreRebased(t *testing.T) {
	tt := newTestTable(t)
	key := uint64(77)

	// Mate found 5 plies below a node sitting at ply 3.
	tt.Store(key, board.NoMove, MateScore-5, BoundExact, 3, 3)
	e, _ := tt.Lookup(key)
	if got, want := int(e.Score), MateScore-2; got != want {
		t.Errorf("stored score: got %d, want %d", got, want)
	}
	// Reached again at ply 1 the mate is 2 plies closer to the root.
	if _, score, _ := tt.Probe(key, 3, -Infinity, Infinity, 1); score != MateScore-3 {
		t.Errorf("probe at ply 1: got %d, want %d", score, MateScore-3)
	}

	tt.Store(key+1, board.NoMove, -MateScore+4, BoundExact, 3, 2)
	if _, score, _ := tt.Probe(key+1, 3, -Infinity, Infinity, 2); score != -MateScore+4 {
		t.Errorf("mated score round trip: got %d, want %d", score, -MateScore+4)
	}
}

func TestTranspositionReplacement(t *testing.T) {
	tt := newTestTable(t)
	stride := uint64(len(tt.buckets))
	key := func(i int) uint64 { return 5 + uint64(i)*stride }

	for i, depth := range []int{6, 5, 7, 8} {
		tt.Store(key(i), board.NoMove, 0, BoundLower, depth, 0)
	}

	// Same search, full bucket: a shallower non-exact store is dropped.
	tt.Store(key(4), board.NoMove, 0, BoundLower, 2, 0)
	if _, ok := tt.Lookup(key(4)); ok {
		t.Error("shallow store evicted a deeper entry of the same search")
	}

	// An exact bound always gets in, taking the shallowest slot.
	tt.Store(key(4), board.NoMove, 0, BoundExact, 2, 0)
	if _, ok := tt.Lookup(key(4)); !ok {
		t.Error("exact store was dropped")
	}
	if _, ok := tt.Lookup(key(1)); ok {
		t.Error("depth 5 entry should have been evicted")
	}

	// A new search makes every old slot fair game, oldest and shallowest first.
	tt.NewSearch()
	tt.Store(key(5), board.NoMove, 0, BoundUpper, 1, 0)
	if _, ok := tt.Lookup(key(5)); !ok {
		t.Error("store into an old generation slot was dropped")
	}
	if _, ok := tt.Lookup(key(4)); ok {
		t.Error("depth 2 entry from the old search should have been evicted")
	}
	for _, i := range []int{0, 2, 3} {
		if _, ok := tt.Lookup(key(i)); !ok {
			t.Errorf("entry %d lost", i)
		}
	}
}

func TestTranspositionKeepsMoveOnNoMoveStore(t *testing.T) {
	tt := newTestTable(t)
	m := board.NewMove(board.G1, board.F3, board.Quiet)
	tt.Store(9, m, 10, BoundLower, 3, 0)
	tt.Store(9, board.NoMove, -10, BoundUpper, 4, 0)

	e, ok := tt.Lookup(9)
	if !ok {
		t.Fatal("entry missing")
	}
	if e.Move != m || e.Bound != BoundUpper || e.Depth != 4 {
		t.Errorf("got %+v, want move %s kept with the new bound and depth", e, m)
	}
}

func TestTranspositionClearAndClose(t *testing.T) {
	tt := newTestTable(t)
	tt.Store(3, board.NoMove, 1, BoundExact, 1, 0)
	if tt.HashFull() == 0 {
		// Key 3 lands in a sampled bucket.
		t.Error("HashFull: got 0 after a store")
	}

	tt.Clear()
	if _, ok := tt.Lookup(3); ok {
		t.Error("entry survived Clear")
	}
	if tt.HashFull() != 0 {
		t.Errorf("HashFull after Clear: got %d, want 0", tt.HashFull())
	}

	tt.Close()
	tt.Store(3, board.NoMove, 1, BoundExact, 1, 0)
	if _, _, ok := tt.Probe(3, 1, -Infinity, Infinity, 0); ok {
		t.Error("probe hit on a closed table")
	}
}
