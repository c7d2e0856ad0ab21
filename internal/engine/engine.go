package engine

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/ace/internal/board"
)

// Options configures an Engine. Zero HashMB and nil Evaluator fall back to
// DefaultHashMB and Classical; the zero Logger discards everything.
type Options struct {
	HashMB    int
	NullMove  bool // null-move pruning
	Evaluator Evaluator
	Logger    zerolog.Logger
}

// DefaultOptions returns the settings the UCI front end starts with.
func DefaultOptions() Options {
	return Options{
		HashMB:    DefaultHashMB,
		NullMove:  true,
		Evaluator: Classical{},
		Logger:    zerolog.Nop(),
	}
}

// Config limits one Think call.
type Config struct {
	Depth    int           // Maximum depth (0 = MaxDepth)
	MoveTime time.Duration // Advisory time for this move (0 = no limit)
	Ponder   bool          // ignore MoveTime until stopped
	Infinite bool          // Search until stopped or MaxDepth
}

// Result is the outcome of the last completed iteration.
type Result struct {
	BestMove board.Move
	Score    int
	PV       []board.Move
	Depth    int
	Nodes    uint64
	Elapsed  time.Duration
}

// SearchInfo is reported after every completed iteration.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// Engine owns the transposition table and move ordering state that persist
// between searches. One Think runs at a time; Stop may be called from any
// goroutine.
type Engine struct {
	tt       *TranspositionTable
	orderer  *MoveOrderer
	eval     Evaluator
	nullMove bool
	log      zerolog.Logger

	stopFlag atomic.Bool

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine allocates the transposition table. An out-of-range hash size is
// the only failure.
func NewEngine(opts Options) (*Engine, error) {
	if opts.HashMB == 0 {
		opts.HashMB = DefaultHashMB
	}
	if opts.Evaluator == nil {
		opts.Evaluator = Classical{}
	}
	tt, err := NewTranspositionTable(opts.HashMB)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e := &Engine{
		tt:       tt,
		orderer:  NewMoveOrderer(),
		eval:     opts.Evaluator,
		nullMove: opts.NullMove,
		log:      opts.Logger,
	}
	e.log.Debug().Int("hash_mb", opts.HashMB).Bool("null_move", opts.NullMove).Msg("engine ready")
	return e, nil
}

// Think searches pos with iterative deepening and returns the result of the
// deepest completed iteration. pos itself is not touched.
//
// Between iterations the search ends when Stop was called, when the move
// time is used up or when a mate was found. Infinite and ponder searches
// only end on Stop or the depth limit.
func (e *Engine) Think(pos *board.Position, cfg Config) Result {
	e.stopFlag.Store(false)
	return e.think(pos, cfg)
}

// Start runs Think on a new goroutine. The stop flag is cleared before Start
// returns, so a Stop issued right after cannot be lost.
func (e *Engine) Start(pos *board.Position, cfg Config) <-chan Result {
	e.stopFlag.Store(false)
	root := pos.Copy()
	ch := make(chan Result, 1)
	go func() {
		ch <- e.think(root, cfg)
	}()
	return ch
}

func (e *Engine) think(pos *board.Position, cfg Config) Result {
	start := time.Now()
	tm := newTimeManager(cfg, start)

	e.tt.NewSearch()
	e.orderer.Clear()

	s := &searcher{
		pos:      pos.Copy(),
		tt:       e.tt,
		orderer:  e.orderer,
		eval:     e.eval,
		nullMove: e.nullMove,
	}
	s.pos.SetRoot()

	maxDepth := MaxDepth
	if cfg.Depth > 0 && cfg.Depth < MaxDepth {
		maxDepth = cfg.Depth
	}

	var res Result
	for depth := 1; depth <= maxDepth; depth++ {
		s.rootDepth = depth
		score := s.search(-Infinity, Infinity, depth, 0)

		res = Result{
			Score:   score,
			PV:      s.pv.Line(),
			Depth:   depth,
			Nodes:   s.nodes,
			Elapsed: time.Since(start),
		}
		if len(res.PV) > 0 {
			res.BestMove = res.PV[0]
		}

		e.log.Debug().
			Int("depth", depth).
			Int("score", score).
			Uint64("nodes", s.nodes).
			Dur("elapsed", res.Elapsed).
			Str("pv", pvString(res.PV)).
			Msg("iteration done")

		// Report info
		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    score,
				Nodes:    s.nodes,
				Time:     res.Elapsed,
				PV:       res.PV,
				HashFull: e.tt.HashFull(),
			})
		}

		if e.stopFlag.Load() {
			break
		}
		// Infinite and ponder searches must wait for stop even after a mate.
		if IsMateScore(score) && !cfg.Infinite && !cfg.Ponder {
			break
		}
		if tm.expired() || !tm.nextIterationFits() {
			break
		}
	}

	// Depth-0 configs and mated roots leave no PV.
	if res.BestMove == board.NoMove {
		legal := pos.GenerateLegal()
		if legal.Len() > 0 {
			res.BestMove = legal.Get(0)
		}
	}
	return res
}

// Stop asks a running Think to return after its current iteration.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// Clear empties the transposition table and forgets move ordering history.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.orderer.Reset()
}

// Close releases the transposition table. The engine must not search
// afterwards.
func (e *Engine) Close() {
	e.tt.Close()
}

// SetHashSize reallocates the transposition table.
func (e *Engine) SetHashSize(mb int) error {
	if err := e.tt.Resize(mb); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	e.log.Debug().Int("hash_mb", mb).Msg("hash resized")
	return nil
}

// SetNullMove switches null-move pruning for later searches.
func (e *Engine) SetNullMove(on bool) { e.nullMove = on }

// HashMB returns the current transposition table size in megabytes.
func (e *Engine) HashMB() int { return e.tt.SizeMB() }

// HashStats exposes the transposition table counters.
func (e *Engine) HashStats() TTStats { return e.tt.Stats() }

// HashFull returns the permille of the table used by the last search.
func (e *Engine) HashFull() int { return e.tt.HashFull() }

// Perft counts leaf nodes on a copy of pos.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	return pos.Copy().Perft(depth)
}

// Evaluate returns the static evaluation of a position, side to move's view.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.eval.Evaluate(pos)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if IsMateScore(score) {
		n := MateDistance(score)
		if n > 0 {
			return "Mate in " + strconv.Itoa(n)
		}
		return "Mated in " + strconv.Itoa(-n)
	}
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}

// UCIScore renders a score for an info line: "cp N" or "mate N".
func UCIScore(score int) string {
	if IsMateScore(score) {
		return "mate " + strconv.Itoa(MateDistance(score))
	}
	return "cp " + strconv.Itoa(score)
}

func pvString(pv []board.Move) string {
	b := make([]byte, 0, len(pv)*5)
	for i, m := range pv {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, m.String()...)
	}
	return string(b)
}
