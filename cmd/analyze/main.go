package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"chess-engine/dragontooth"
	"chess-engine/engine"
	"chess-engine/storage"
)

func main() {
	fenFlag := flag.String("fen", "", "single FEN to analyze")
	fileFlag := flag.String("file", "", "file with one FEN per line")
	depthFlag := flag.Int("depth", 8, "search depth in plies")
	moveTimeFlag := flag.Duration("movetime", 0, "time budget per position (0 = depth only)")
	hashFlag := flag.Int("hash", 32, "transposition table size per worker in MB")
	dbFlag := flag.String("db", "", "Badger directory for the analysis cache (empty = no cache)")
	workersFlag := flag.Int("workers", 4, "positions analyzed in parallel")
	debugFlag := flag.Bool("debug", false, "log per-depth search progress")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debugFlag {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()

	fens, err := collectFENs(*fenFlag, *fileFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("reading positions")
	}
	if len(fens) == 0 {
		log.Fatal().Msg("nothing to analyze, pass -fen or -file")
	}

	var store *storage.Store
	if *dbFlag != "" {
		store, err = storage.Open(*dbFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("opening analysis cache")
		}
		defer store.Close()
	}

	start := time.Now()

	// Each worker owns its engine instance outright; only the Badger
	// store is shared, and it is safe for concurrent use.
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*workersFlag)
	for _, fen := range fens {
		fen := fen
		g.Go(func() error {
			return analyzeOne(ctx, log, store, fen, *depthFlag, *moveTimeFlag, *hashFlag)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	log.Info().Int("positions", len(fens)).Dur("elapsed", time.Since(start)).Msg("done")
}

func analyzeOne(ctx context.Context, log zerolog.Logger, store *storage.Store, fen string, depth int, moveTime time.Duration, hashMB int) error {
	log = log.With().Str("fen", fen).Logger()

	if store != nil {
		rec, ok, err := store.Get(fen)
		if err != nil {
			return err
		}
		if ok && rec.Depth >= depth {
			log.Info().Str("bestmove", rec.BestMove).
				Int16("score", rec.Score).Int("depth", rec.Depth).
				Msg("cached")
			return nil
		}
	}

	board, err := dragontooth.NewBoard(fen)
	if err != nil {
		return fmt.Errorf("position %q: %w", fen, err)
	}

	eng := engine.New(engine.Config{Depth: depth, TableSize: hashMB, Logger: log})
	limits := engine.Limits{Depth: depth}
	if moveTime > 0 {
		limits.MoveTime = moveTime
		limits.Timed = true
	}

	result, err := eng.FindBestMove(ctx, board, limits)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", fen, err)
	}
	if result.Terminal {
		verdict := "stalemate"
		if result.Mate {
			verdict = "checkmate"
		}
		log.Info().Str("verdict", verdict).Msg("terminal position")
		return nil
	}

	log.Info().Str("bestmove", result.Move.String()).
		Int16("score", result.Score).Int("depth", result.Depth).
		Uint64("nodes", result.Nodes).Str("pv", result.PV.String()).
		Msg("analyzed")

	if store != nil {
		return store.Put(storage.Record{
			FEN:      fen,
			BestMove: result.Move.String(),
			Score:    result.Score,
			Depth:    result.Depth,
			Nodes:    result.Nodes,
			PV:       result.PV.String(),
		})
	}
	return nil
}

func collectFENs(fen, file string) ([]string, error) {
	var fens []string
	if fen != "" {
		fens = append(fens, fen)
	}
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			fens = append(fens, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}
	return fens, nil
}
