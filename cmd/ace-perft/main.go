// Command ace-perft counts move generation leaf nodes, optionally split by
// root move across several goroutines.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/ace/internal/board"
)

var (
	fen     = flag.String("fen", board.StartFEN, "position to count from")
	depth   = flag.Int("depth", 5, "perft depth")
	divide  = flag.Bool("divide", false, "print the count below every root move")
	workers = flag.Int("workers", 0, "goroutines for the split (0 = GOMAXPROCS)")
)

func main() {
	flag.Parse()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatal().Err(err).Str("fen", *fen).Msg("bad position")
	}
	if *depth < 1 {
		log.Fatal().Int("depth", *depth).Msg("depth must be at least 1")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	start := time.Now()
	entries, err := pos.ParallelDivide(ctx, *depth, *workers)
	if err != nil {
		log.Fatal().Err(err).Msg("perft interrupted")
	}
	elapsed := time.Since(start)

	var nodes uint64
	for _, e := range entries {
		if *divide {
			fmt.Printf("%s: %d\n", e.Move, e.Nodes)
		}
		nodes += e.Nodes
	}
	if *divide {
		fmt.Println()
	}
	fmt.Printf("Nodes: %d\n", nodes)

	log.Info().
		Int("depth", *depth).
		Uint64("nodes", nodes).
		Dur("elapsed", elapsed).
		Float64("mnps", float64(nodes)/elapsed.Seconds()/1e6).
		Msg("perft done")
}
