package engine

import (
	"github.com/hailam/ace/internal/board"
)

// Move ordering priorities. Captures and special moves carry the scores the
// generator attached (10010 and up); plain quiet moves are ranked here.
const (
	TTMoveScore  = 20000 // TT move gets highest priority
	KillerScore1 = 9100  // First killer move
	KillerScore2 = 9000  // Second killer move

	// historyMax keeps history scores below the killers.
	historyMax = 8191
)

// MoveOrderer holds the quiet-move heuristics learned during a search.
type MoveOrderer struct {
	// Killer moves (quiet moves that caused beta cutoffs)
	killers [MaxPly][2]board.Move

	// History heuristic (indexed by [from][to])
	history [64][64]int32
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear drops the killers and ages the history for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i] = [2]board.Move{}
	}
	mo.ageHistory()
}

// Reset forgets everything, history included.
func (mo *MoveOrderer) Reset() {
	*mo = MoveOrderer{}
}

func (mo *MoveOrderer) ageHistory() {
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// ScoreMoves prepares ml for PickBest: the TT move goes first, generator
// scores are kept for captures and special moves, and the remaining quiet
// moves get their killer or history score.
func (mo *MoveOrderer) ScoreMoves(ml *board.MoveList, ply int, ttMove board.Move) {
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		switch {
		case m == ttMove:
			ml.SetScore(i, TTMoveScore)
		case ml.Score(i) != 0:
		case m == mo.killers[ply][0]:
			ml.SetScore(i, KillerScore1)
		case m == mo.killers[ply][1]:
			ml.SetScore(i, KillerScore2)
		default:
			ml.SetScore(i, mo.history[m.From()][m.To()])
		}
	}
}

// UpdateKillers adds a killer move at the given ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory rewards a quiet move that caused a cutoff at depth.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int) {
	h := &mo.history[m.From()][m.To()]
	*h += int32(depth * depth)
	if *h > historyMax {
		mo.ageHistory()
	}
}

// Killers returns the two killer moves stored for ply.
func (mo *MoveOrderer) Killers(ply int) (board.Move, board.Move) {
	return mo.killers[ply][0], mo.killers[ply][1]
}

// HistoryScore returns the history score of a quiet move.
func (mo *MoveOrderer) HistoryScore(m board.Move) int {
	return int(mo.history[m.From()][m.To()])
}
