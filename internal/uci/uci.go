// Package uci implements the Universal Chess Interface front end: a line
// based command loop driving one engine.Engine.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/ace/internal/board"
	"github.com/hailam/ace/internal/engine"
	"github.com/hailam/ace/internal/storage"
)

// Options wires the protocol handler to its collaborators.
type Options struct {
	Out    io.Writer        // protocol output, os.Stdout when nil
	Store  *storage.Storage // analysis cache and preferences, may be nil
	Logger zerolog.Logger

	// PinHash keeps the engine's current hash size over a stored
	// preference, e.g. when it was given on the command line.
	PinHash bool
}

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	position *board.Position

	out   *syncWriter
	store *storage.Storage
	log   zerolog.Logger

	session       string
	analysisCache bool
	nullMove      bool
	hashMB        int

	// Search state
	searching  bool
	infinite   bool
	searchDone chan struct{}

	// CPU profiling
	profileFile *os.File
}

// syncWriter serialises writes from the command loop and the search
// goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (u *UCI) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}

// New creates a protocol handler around eng. When a store is given its saved
// preferences are applied and a new session is opened.
func New(eng *engine.Engine, opts Options) *UCI {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	u := &UCI{
		engine:   eng,
		position: board.NewPosition(),
		out:      &syncWriter{w: out},
		store:    opts.Store,
		log:      opts.Logger,
		nullMove: true,
		hashMB:   eng.HashMB(),
	}
	if u.store != nil {
		u.loadPreferences(opts.PinHash)
		if name, err := u.store.NewSession(); err != nil {
			u.log.Warn().Err(err).Msg("could not open session")
		} else {
			u.session = name
			u.log.Info().Str("session", name).Msg("session started")
		}
	}
	return u
}

func (u *UCI) loadPreferences(pinHash bool) {
	prefs, err := u.store.LoadPreferences()
	if err != nil {
		u.log.Warn().Err(err).Msg("could not load preferences")
		return
	}
	if !pinHash && prefs.HashMB != u.hashMB {
		if err := u.engine.SetHashSize(prefs.HashMB); err != nil {
			u.log.Warn().Err(err).Msg("stored hash size rejected")
		} else {
			u.hashMB = prefs.HashMB
		}
	}
	u.nullMove = prefs.NullMove
	u.engine.SetNullMove(prefs.NullMove)
	u.analysisCache = prefs.AnalysisCache
}

func (u *UCI) savePreferences() {
	if u.store == nil {
		return
	}
	err := u.store.SavePreferences(&storage.Preferences{
		HashMB:        u.hashMB,
		NullMove:      u.nullMove,
		AnalysisCache: u.analysisCache,
	})
	if err != nil {
		u.log.Warn().Err(err).Msg("could not save preferences")
	}
}

// Run reads commands from in until "quit", end of input or ctx is done. A
// search still running at end of input is allowed to finish, unless it is
// infinite, in which case it is stopped.
func (u *UCI) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	defer u.stopProfile()
	for {
		select {
		case <-ctx.Done():
			u.handleStop()
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if u.infinite {
					u.handleStop()
				}
				u.waitSearch()
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if !u.dispatch(line) {
				return nil
			}
		}
	}
}

// dispatch handles one command line and reports whether to keep going.
func (u *UCI) dispatch(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]
	u.log.Debug().Str("cmd", cmd).Strs("args", args).Msg("command")

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		u.printf("readyok\n")
	case "ucinewgame":
		u.handleNewGame()
	case "position":
		u.handlePosition(args)
	case "go":
		u.handleGo(args)
	case "stop":
		u.handleStop()
	case "ponderhit":
		// The search runs with Ponder set and cannot be re-timed; let the
		// GUI's stop end it.
	case "quit":
		u.handleStop()
		return false
	case "setoption":
		u.handleSetOption(args)
	// Debug commands
	case "d":
		writeBoard(u.out, u.position)
	case "eval":
		u.handleEval()
	case "perft":
		u.handlePerft(args, false)
	case "divide":
		u.handlePerft(args, true)
	default:
		u.printf("info string unknown command %s\n", cmd)
	}
	return true
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.printf("id name Ace\n")
	u.printf("id author the Ace authors\n")
	u.printf("\n")
	u.printf("option name Hash type spin default %d min %d max %d\n",
		engine.DefaultHashMB, engine.MinHashMB, engine.MaxHashMB)
	u.printf("option name Nullmove type check default true\n")
	u.printf("option name Clear Hash type button\n")
	u.printf("option name AnalysisCache type check default false\n")
	u.printf("option name CPUProfile type string default <empty>\n")
	u.printf("uciok\n")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.position = board.NewPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// Moves are applied until the first one that is not legal; it and the rest
// are dropped. The move history stays on the position for repetition
// detection.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		p, err := board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.printf("info string invalid fen: %v\n", err)
			u.log.Warn().Err(err).Msg("position rejected")
			return
		}
		pos = p
	default:
		return
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			if pos.History().Len() >= maxHistory {
				u.printf("info string move history full, ignoring %s and later moves\n", s)
				u.log.Warn().Int("plies", pos.History().Len()).Msg("position command too long")
				break
			}
			m, ok := pos.ParseMove(s)
			if !ok {
				u.printf("info string illegal move %s\n", s)
				u.log.Warn().Str("move", s).Str("fen", pos.FEN()).Msg("illegal move in position command")
				break
			}
			pos.Apply(m)
		}
	}
	u.position = pos
}

// maxHistory caps the moves a position command may replay, leaving room in
// the undo list for a full-depth search on top.
const maxHistory = board.MaxGamePly - engine.MaxPly

// parseGoOptions turns "go" arguments into a search config. Clock
// information becomes a move time through engine.AllocateMoveTime.
func (u *UCI) parseGoOptions(args []string) engine.Config {
	var cfg engine.Config
	var tc engine.TimeControl

	next := func(i *int) int {
		if *i+1 >= len(args) {
			return 0
		}
		*i++
		n, _ := strconv.Atoi(args[*i])
		return n
	}
	ms := func(i *int) time.Duration {
		return time.Duration(next(i)) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			cfg.Depth = next(&i)
		case "movetime":
			cfg.MoveTime = ms(&i)
		case "infinite":
			cfg.Infinite = true
		case "ponder":
			cfg.Ponder = true
		case "wtime":
			tc.Time[board.White] = ms(&i)
		case "btime":
			tc.Time[board.Black] = ms(&i)
		case "winc":
			tc.Inc[board.White] = ms(&i)
		case "binc":
			tc.Inc[board.Black] = ms(&i)
		case "movestogo":
			tc.MovesToGo = next(&i)
		}
	}

	if cfg.MoveTime == 0 && tc.IsSet() {
		ply := 2*(u.position.FullMoveNumber-1) + int(u.position.SideToMove)
		cfg.MoveTime = engine.AllocateMoveTime(tc, u.position.SideToMove, ply)
		u.log.Debug().Dur("allocated", cfg.MoveTime).Int("ply", ply).Msg("time allocated")
	}
	return cfg
}

// handleGo starts a search with the given parameters. A finite search
// still running is allowed to finish first; an infinite one is stopped.
func (u *UCI) handleGo(args []string) {
	if u.infinite {
		u.handleStop()
	}
	u.waitSearch()
	cfg := u.parseGoOptions(args)
	pos := u.position.Copy()

	if u.answerFromCache(pos, cfg) {
		return
	}

	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(info)
	}

	u.searching = true
	u.infinite = cfg.Infinite || cfg.Ponder
	u.searchDone = make(chan struct{})
	results := u.engine.Start(pos, cfg)

	go func() {
		defer close(u.searchDone)
		res := <-results

		if res.BestMove == board.NoMove {
			u.printf("bestmove 0000\n")
			return
		}
		u.printf("bestmove %s\n", res.BestMove)
		u.log.Info().
			Str("move", res.BestMove.String()).
			Str("score", engine.UCIScore(res.Score)).
			Int("depth", res.Depth).
			Uint64("nodes", res.Nodes).
			Dur("elapsed", res.Elapsed).
			Msg("search done")
		u.saveAnalysis(pos, res)
	}()
}

// answerFromCache replies to "go depth N" from a stored analysis at least N
// deep whose move is still legal here. It reports whether it answered.
func (u *UCI) answerFromCache(pos *board.Position, cfg engine.Config) bool {
	if !u.analysisCache || u.store == nil || cfg.Depth <= 0 || cfg.Infinite || cfg.Ponder {
		return false
	}
	a, found, err := u.store.LoadAnalysis(pos.Hash)
	if err != nil {
		u.log.Warn().Err(err).Msg("analysis lookup failed")
		return false
	}
	if !found || a.Depth < cfg.Depth {
		return false
	}
	m, ok := pos.ParseMove(a.BestMove)
	if !ok {
		u.log.Debug().Str("move", a.BestMove).Msg("cached move not legal here")
		return false
	}
	u.printf("info depth %d score %s nodes %d pv %s\n",
		a.Depth, engine.UCIScore(a.Score), a.Nodes, strings.Join(a.PV, " "))
	u.printf("bestmove %s\n", m)
	if err := u.store.RecordSearch(0, true); err != nil {
		u.log.Warn().Err(err).Msg("could not record search")
	}
	return true
}

func (u *UCI) saveAnalysis(pos *board.Position, res engine.Result) {
	if u.store == nil {
		return
	}
	if err := u.store.RecordSearch(res.Nodes, false); err != nil {
		u.log.Warn().Err(err).Msg("could not record search")
	}
	if !u.analysisCache {
		return
	}
	pv := make([]string, len(res.PV))
	for i, m := range res.PV {
		pv[i] = m.String()
	}
	err := u.store.SaveAnalysis(pos.Hash, &storage.Analysis{
		FEN:      pos.FEN(),
		BestMove: res.BestMove.String(),
		Score:    res.Score,
		Depth:    res.Depth,
		Nodes:    res.Nodes,
		PV:       pv,
		Session:  u.session,
	})
	if err != nil {
		u.log.Warn().Err(err).Msg("could not save analysis")
	}
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d score %s nodes %d time %d",
		info.Depth, engine.UCIScore(info.Score), info.Nodes, info.Time.Milliseconds())
	if info.Time > 0 {
		fmt.Fprintf(&sb, " nps %d", uint64(float64(info.Nodes)/info.Time.Seconds()))
	}
	if info.HashFull > 0 {
		fmt.Fprintf(&sb, " hashfull %d", info.HashFull)
	}
	if len(info.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range info.PV {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}
	sb.WriteByte('\n')
	io.WriteString(u.out, sb.String())
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.searching {
		u.engine.Stop()
		u.waitSearch()
	}
}

func (u *UCI) waitSearch() {
	if u.searching {
		<-u.searchDone
		u.searching = false
		u.infinite = false
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value []string
	var cur *[]string
	for _, arg := range args {
		switch arg {
		case "name":
			cur = &name
		case "value":
			cur = &value
		default:
			if cur != nil {
				*cur = append(*cur, arg)
			}
		}
	}
	key := strings.ToLower(strings.Join(name, " "))
	val := strings.Join(value, " ")

	u.handleStop()
	switch key {
	case "hash":
		mb, err := strconv.Atoi(val)
		if err == nil {
			err = u.engine.SetHashSize(mb)
		}
		if err != nil {
			u.printf("info string bad Hash value %q: %v\n", val, err)
			return
		}
		u.hashMB = mb
		u.savePreferences()
	case "nullmove":
		u.nullMove = strings.EqualFold(val, "true")
		u.engine.SetNullMove(u.nullMove)
		u.savePreferences()
	case "clear hash":
		u.engine.Clear()
	case "analysiscache":
		on := strings.EqualFold(val, "true")
		if on && u.store == nil {
			u.printf("info string AnalysisCache needs a database\n")
			return
		}
		u.analysisCache = on
		u.savePreferences()
	case "cpuprofile":
		u.stopProfile()
		if val != "" && val != "<empty>" && val != "stop" {
			if err := u.StartProfile(val); err != nil {
				u.printf("info string %v\n", err)
			}
		}
	default:
		u.printf("info string unknown option %s\n", strings.Join(name, " "))
	}
}

// StartProfile writes a CPU profile to path until Run returns or the
// CPUProfile option is cleared.
func (u *UCI) StartProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("cpu profile: %w", err)
	}
	u.profileFile = f
	u.log.Info().Str("path", path).Msg("cpu profiling")
	return nil
}

func (u *UCI) stopProfile() {
	if u.profileFile == nil {
		return
	}
	pprof.StopCPUProfile()
	u.profileFile.Close()
	u.profileFile = nil
}

func (u *UCI) handleEval() {
	score := u.engine.Evaluate(u.position)
	white := score
	if u.position.SideToMove == board.Black {
		white = -score
	}
	u.printf("Evaluation: %s (white side)\n", engine.ScoreToString(white))
}

// handlePerft runs a perft test, optionally split by root move.
func (u *UCI) handlePerft(args []string, divide bool) {
	depth := 5
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n >= 0 {
			depth = n
		}
	}
	u.handleStop()

	start := time.Now()
	var nodes uint64
	if divide {
		for _, e := range u.position.Copy().Divide(depth) {
			u.printf("%s: %d\n", e.Move, e.Nodes)
			nodes += e.Nodes
		}
		u.printf("\n")
	} else {
		nodes = u.engine.Perft(u.position, depth)
	}
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		u.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}
