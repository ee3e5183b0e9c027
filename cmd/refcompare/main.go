package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/freeeve/uci"
	"github.com/rs/zerolog"

	"chess-engine/dragontooth"
	"chess-engine/engine"
)

// refcompare searches a set of positions with this engine and a
// reference UCI engine at the same depth, then reports how far the
// scores drift apart. Handy for catching evaluation sign bugs and
// gross search regressions.
func main() {
	enginePath := flag.String("engine", "stockfish", "path to the reference UCI engine")
	fenFlag := flag.String("fen", "", "single FEN to compare")
	fileFlag := flag.String("file", "", "file with one FEN per line")
	depthFlag := flag.Int("depth", 6, "search depth for both engines")
	hashFlag := flag.Int("hash", 64, "hash size in MB for both engines")
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
		log.Fatal().Msg("nothing to compare, pass -fen or -file")
	}

	ref, err := uci.NewEngine(*enginePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *enginePath).Msg("starting reference engine")
	}
	defer ref.Close()
	err = ref.SetOptions(uci.Options{
		Hash:    *hashFlag,
		Threads: 1,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configuring reference engine")
	}

	eng := engine.New(engine.Config{Depth: *depthFlag, TableSize: *hashFlag, Logger: log})

	var (
		compared  int
		sameSign  int
		totalDiff float64
	)
	for _, fen := range fens {
		board, err := dragontooth.NewBoard(fen)
		if err != nil {
			log.Warn().Err(err).Msg("skipping bad fen")
			continue
		}

		// Reset between positions so every comparison starts cold.
		eng.Reset()
		mine, err := eng.FindBestMove(context.Background(), board, engine.Limits{Depth: *depthFlag})
		if err != nil {
			log.Warn().Err(err).Str("fen", fen).Msg("search failed")
			continue
		}
		if mine.Terminal {
			log.Info().Str("fen", fen).Msg("terminal position, skipping")
			continue
		}

		if err := ref.SetFEN(fen); err != nil {
			log.Warn().Err(err).Str("fen", fen).Msg("reference rejected fen")
			continue
		}
		results, err := ref.GoDepth(*depthFlag, uci.HighestDepthOnly)
		if err != nil {
			log.Warn().Err(err).Str("fen", fen).Msg("reference search failed")
			continue
		}
		if len(results.Results) == 0 {
			log.Warn().Str("fen", fen).Msg("reference returned no results")
			continue
		}
		best := results.Results[0]
		for _, r := range results.Results {
			if r.Depth > best.Depth {
				best = r
			}
		}

		if best.Mate || engine.IsMateScore(mine.Score) {
			log.Info().Str("fen", fen).
				Bool("ref_mate", best.Mate).
				Bool("our_mate", engine.IsMateScore(mine.Score)).
				Msg("mate territory, excluded from score stats")
			continue
		}

		diff := int(mine.Score) - best.Score
		compared++
		totalDiff += math.Abs(float64(diff))
		if (mine.Score >= 0) == (best.Score >= 0) {
			sameSign++
		}

		log.Info().Str("fen", fen).
			Str("our_move", mine.Move.String()).
			Int16("our_cp", mine.Score).
			Int("ref_cp", best.Score).
			Int("diff", diff).
			Msg("compared")
	}

	if compared == 0 {
		log.Warn().Msg("no comparable positions")
		return
	}
	fmt.Printf("positions=%d mean_abs_diff=%.1fcp sign_agreement=%.0f%%\n",
		compared, totalDiff/float64(compared), 100*float64(sameSign)/float64(compared))
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
