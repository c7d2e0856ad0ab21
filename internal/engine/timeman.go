package engine

import (
	"time"

	"github.com/hailam/ace/internal/board"
)

// TimeControl is the clock state a "go" command can carry.
type TimeControl struct {
	Time      [2]time.Duration // wtime, btime (remaining time for each color)
	Inc       [2]time.Duration // winc, binc (increment per move)
	MovesToGo int              // moves until next time control (0 = sudden death)
}

// IsSet reports whether any clock information is present.
func (tc TimeControl) IsSet() bool {
	return tc.Time[board.White] > 0 || tc.Time[board.Black] > 0
}

// AllocateMoveTime turns the clock into a per-move budget for us. ply is the
// game ply (half-move number).
func AllocateMoveTime(tc TimeControl, us board.Color, ply int) time.Duration {
	timeLeft := tc.Time[us]
	if timeLeft <= 0 {
		return 0
	}

	// Estimate moves to go
	mtg := tc.MovesToGo
	if mtg == 0 {
		// Sudden death: expect fewer remaining moves as the game goes on
		mtg = min(max(50-ply/4, 10), 50)
	}

	budget := timeLeft/time.Duration(mtg) + tc.Inc[us]*9/10

	// Slight reduction for very early moves (give some buffer)
	if ply < 8 {
		budget = budget * 85 / 100
	}

	// Never plan on more than 80% of what is left
	budget = min(budget, timeLeft*8/10)
	return max(budget, 10*time.Millisecond)
}

// timeManager decides between iterations whether another one is worth
// starting. The budget is advisory: an iteration is never interrupted.
type timeManager struct {
	start  time.Time
	budget time.Duration // 0 means no limit
}

func newTimeManager(cfg Config, start time.Time) timeManager {
	tm := timeManager{start: start}
	if !cfg.Infinite && !cfg.Ponder {
		tm.budget = cfg.MoveTime
	}
	return tm
}

// Elapsed returns the time elapsed since search started.
func (tm timeManager) Elapsed() time.Duration {
	return time.Since(tm.start)
}

// expired reports whether the budget is used up.
func (tm timeManager) expired() bool {
	return tm.budget > 0 && tm.Elapsed() >= tm.budget
}

// nextIterationFits guesses whether one more iteration can finish in time.
// The next ply usually costs at least as much as everything so far, so once
// half the budget is gone it is not started.
func (tm timeManager) nextIterationFits() bool {
	if tm.budget == 0 {
		return true
	}
	elapsed := tm.Elapsed()
	return tm.budget-elapsed >= elapsed
}
