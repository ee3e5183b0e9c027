package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"chess-engine/dragontooth"
	"chess-engine/engine"
)

type benchPosition struct {
	name string
	fen  string
}

// benchSuite mixes game phases so the node profile is not all opening
// theory. Kiwipete and the rook endgame are standard perft positions.
var benchSuite = []benchPosition{
	{"startpos", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"},
	{"middlegame", "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10"},
	{"rook-endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"},
}

func main() {
	depthFlag := flag.Int("depth", 6, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of passes over the suite")
	fenFlag := flag.String("fen", "", "bench a single FEN instead of the suite")
	hashFlag := flag.Int("hash", 64, "transposition table size in MB")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	flag.Parse()

	if *depthFlag <= 0 {
		log.Fatalf("depth must be positive, got %d", *depthFlag)
	}

	suite := benchSuite
	if *fenFlag != "" {
		suite = []benchPosition{{"custom", *fenFlag}}
	}

	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	fmt.Printf("searchbench: depth=%d repeat=%d hash=%dMB positions=%d\n",
		*depthFlag, *repeatFlag, *hashFlag, len(suite))

	var totalNodes uint64
	startAll := time.Now()
	for pass := 0; pass < *repeatFlag; pass++ {
		for _, bp := range suite {
			board, err := dragontooth.NewBoard(bp.fen)
			if err != nil {
				log.Fatalf("bad fen %q: %v", bp.fen, err)
			}

			// Fresh engine per position so no search benefits from a
			// warm transposition table.
			eng := engine.New(engine.Config{
				Depth:     *depthFlag,
				TableSize: *hashFlag,
				Info:      printDepth,
			})

			fmt.Printf("%s:\n", bp.name)
			iterStart := time.Now()
			result, err := eng.FindBestMove(context.Background(), board, engine.Limits{Depth: *depthFlag})
			if err != nil {
				log.Fatalf("search failed: %v", err)
			}
			iterElapsed := time.Since(iterStart)
			totalNodes += result.Nodes

			nps := float64(result.Nodes) / iterElapsed.Seconds()
			fmt.Printf("  bestmove %v score %s nodes=%d time=%v nps=%.0f\n",
				result.Move, engine.ScoreString(result.Score), result.Nodes, iterElapsed, nps)
		}
	}
	totalElapsed := time.Since(startAll)
	fmt.Printf("total: nodes=%d time=%v nps=%.0f\n",
		totalNodes, totalElapsed, float64(totalNodes)/totalElapsed.Seconds())

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatalf("could not create memory profile: %v", err)
		}
		defer f.Close()

		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatalf("could not write memory profile: %v", err)
		}
	}
}

// printDepth emits one line per completed depth so the cost of each
// deepening step is visible, not just the final totals.
func printDepth(info engine.Info) {
	fmt.Printf("  depth %-2d score %-9s nodes=%-9d time=%v\n",
		info.Depth, engine.ScoreString(info.Score), info.Nodes, info.Time)
}
