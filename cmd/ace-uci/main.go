// Command ace-uci runs the engine behind the UCI protocol on stdin/stdout.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/ace/internal/engine"
	"github.com/hailam/ace/internal/storage"
	"github.com/hailam/ace/internal/uci"
)

var (
	hashMB     = flag.Int("hash", engine.DefaultHashMB, "transposition table size in MB")
	dbDir      = flag.String("db", "", "analysis database directory (default: platform data dir)")
	noDB       = flag.Bool("nodb", false, "run without the analysis database")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	verbose    = flag.Bool("v", false, "debug logging on stderr")
)

func main() {
	flag.Parse()

	// stdout belongs to the protocol
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	opts := engine.DefaultOptions()
	opts.HashMB = *hashMB
	opts.Logger = log.With().Str("component", "engine").Logger()
	eng, err := engine.NewEngine(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create engine")
	}
	defer eng.Close()

	var store *storage.Storage
	if !*noDB {
		if *dbDir != "" {
			store, err = storage.Open(*dbDir)
		} else {
			store, err = storage.OpenDefault()
		}
		if err != nil {
			log.Warn().Err(err).Msg("analysis database unavailable")
			store = nil
		} else {
			defer store.Close()
		}
	}

	hashGiven := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "hash" {
			hashGiven = true
		}
	})

	protocol := uci.New(eng, uci.Options{
		Out:     os.Stdout,
		Store:   store,
		Logger:  log.With().Str("component", "uci").Logger(),
		PinHash: hashGiven,
	})
	if *cpuprofile != "" {
		if err := protocol.StartProfile(*cpuprofile); err != nil {
			log.Fatal().Err(err).Msg("could not start profile")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := protocol.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("reading commands")
	}
}
