package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chess-engine/book"
	"chess-engine/dragontooth"
	"chess-engine/engine"
)

const (
	engineName   = "Borken Chess V2"
	engineAuthor = "Borken Team"

	defaultUCIDepth  = 6
	defaultUCITimeMs = 3000
	defaultUCIHashMB = 64
	maxUCIDepth      = 20
	maxUCITimeMs     = 10000
	maxUCIHashMB     = 1024
)

// uciState carries everything the protocol loop mutates: the engine,
// the game board, the opening book and the option values.
type uciState struct {
	log zerolog.Logger

	eng   *engine.Engine
	board *dragontooth.Board
	book  *book.Book

	depth    int
	moveTime time.Duration
	hashMB   int
	ownBook  bool
	debug    bool

	cancel context.CancelFunc
	done   chan struct{}
}

func newUCIState(log zerolog.Logger) *uciState {
	u := &uciState{
		log:      log,
		board:    dragontooth.NewStartingBoard(),
		book:     book.New(),
		depth:    defaultUCIDepth,
		moveTime: defaultUCITimeMs * time.Millisecond,
		hashMB:   defaultUCIHashMB,
		ownBook:  true,
	}
	u.rebuildEngine()
	return u
}

// rebuildEngine constructs a fresh engine with the current options.
// The transposition table does not survive; only Hash and debug
// changes call this.
func (u *uciState) rebuildEngine() {
	logger := u.log.Level(zerolog.WarnLevel)
	if u.debug {
		logger = u.log.Level(zerolog.DebugLevel)
	}
	u.eng = engine.New(engine.Config{
		Depth:     u.depth,
		MoveTime:  u.moveTime,
		TableSize: u.hashMB,
		Logger:    logger,
		Info:      printInfo,
	})
}

// printInfo emits one info line per completed depth.
func printInfo(info engine.Info) {
	fmt.Println("info depth", info.Depth,
		"score", engine.ScoreString(info.Score),
		"nodes", info.Nodes,
		"time", info.Time.Milliseconds(),
		"nps", info.NPS,
		"pv", info.PV.String())
}

// uciLoop reads commands until quit or EOF. Searches run in their own
// goroutine so stop stays responsive.
func (u *uciState) uciLoop(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words := strings.Fields(line)

		switch words[0] {
		case "uci":
			fmt.Println("id name", engineName)
			fmt.Println("id author", engineAuthor)
			fmt.Printf("option name Depth type spin default %d min 1 max %d\n", defaultUCIDepth, maxUCIDepth)
			fmt.Printf("option name TimeLimit type spin default %d min 100 max %d\n", defaultUCITimeMs, maxUCITimeMs)
			fmt.Printf("option name Hash type spin default %d min 1 max %d\n", defaultUCIHashMB, maxUCIHashMB)
			fmt.Println("option name OwnBook type check default true")
			fmt.Println("option name BookFile type string default <empty>")
			fmt.Println("uciok")
		case "debug":
			u.waitSearch()
			u.debug = len(words) > 1 && words[1] == "on"
			u.rebuildEngine()
		case "isready":
			fmt.Println("readyok")
		case "setoption":
			u.waitSearch()
			u.setOption(words)
		case "ucinewgame":
			u.waitSearch()
			u.eng.Reset()
			u.board = dragontooth.NewStartingBoard()
		case "position":
			u.waitSearch()
			u.setPosition(words)
		case "go":
			u.waitSearch()
			u.startSearch(words)
		case "stop":
			if u.cancel != nil {
				u.cancel()
			}
		case "quit":
			if u.cancel != nil {
				u.cancel()
			}
			u.waitSearch()
			return
		default:
			u.log.Debug().Str("command", words[0]).Msg("ignoring unknown command")
		}
	}
}

// waitSearch blocks until a running search has printed its bestmove.
func (u *uciState) waitSearch() {
	if u.done != nil {
		<-u.done
		u.done = nil
		u.cancel = nil
	}
}

func (u *uciState) setOption(words []string) {
	name, value := parseOption(words)
	switch name {
	case "Depth":
		if n, err := strconv.Atoi(value); err == nil {
			u.depth = clamp(n, 1, maxUCIDepth)
		}
	case "TimeLimit":
		if n, err := strconv.Atoi(value); err == nil {
			u.moveTime = time.Duration(clamp(n, 100, maxUCITimeMs)) * time.Millisecond
		}
	case "Hash":
		if n, err := strconv.Atoi(value); err == nil {
			u.hashMB = clamp(n, 1, maxUCIHashMB)
			u.rebuildEngine()
		}
	case "OwnBook":
		u.ownBook = strings.EqualFold(value, "true")
	case "BookFile":
		bk, err := book.Load(value)
		if err != nil {
			u.log.Error().Err(err).Str("path", value).Msg("keeping current book")
			return
		}
		u.book = bk
	default:
		u.log.Debug().Str("option", name).Msg("ignoring unknown option")
	}
}

// parseOption splits "setoption name <Name> value <Value>"; the name
// may span several words.
func parseOption(words []string) (name, value string) {
	var nameParts, valueParts []string
	target := &nameParts
	for _, w := range words[1:] {
		switch w {
		case "name":
			target = &nameParts
		case "value":
			target = &valueParts
		default:
			*target = append(*target, w)
		}
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " ")
}

func (u *uciState) setPosition(words []string) {
	var fen string
	moveStart := -1

	switch {
	case len(words) >= 2 && words[1] == "startpos":
		fen = ""
		for i, w := range words {
			if w == "moves" {
				moveStart = i + 1
				break
			}
		}
	case len(words) >= 8 && words[1] == "fen":
		fen = strings.Join(words[2:8], " ")
		for i := 8; i < len(words); i++ {
			if words[i] == "moves" {
				moveStart = i + 1
				break
			}
		}
	default:
		u.log.Warn().Str("line", strings.Join(words, " ")).Msg("malformed position command")
		return
	}

	var board *dragontooth.Board
	if fen == "" {
		board = dragontooth.NewStartingBoard()
	} else {
		var err error
		board, err = dragontooth.NewBoard(fen)
		if err != nil {
			u.log.Error().Err(err).Msg("rejecting position")
			return
		}
	}

	if moveStart > 0 {
		for _, mv := range words[moveStart:] {
			if err := board.PushUCIMove(mv); err != nil {
				u.log.Warn().Err(err).Str("move", mv).Msg("stopping at illegal move")
				break
			}
		}
	}
	u.board = board
}

func (u *uciState) startSearch(words []string) {
	limits := engine.Limits{Depth: u.depth, MoveTime: u.moveTime, Timed: true}

	var wtime, btime, winc, binc time.Duration
	hasClock := false
	infinite := false
	for i := 1; i < len(words); i++ {
		if words[i] == "infinite" {
			infinite = true
			continue
		}
		if i+1 >= len(words) {
			break
		}
		n, err := strconv.Atoi(words[i+1])
		if err != nil {
			continue
		}
		switch words[i] {
		case "depth":
			limits.Depth = n
			limits.Timed = false
		case "movetime":
			limits.MoveTime = time.Duration(n) * time.Millisecond
			limits.Timed = true
		case "wtime":
			wtime = time.Duration(n) * time.Millisecond
			hasClock = true
		case "btime":
			btime = time.Duration(n) * time.Millisecond
			hasClock = true
		case "winc":
			winc = time.Duration(n) * time.Millisecond
		case "binc":
			binc = time.Duration(n) * time.Millisecond
		default:
			continue
		}
		i++
	}
	if infinite {
		limits = engine.Limits{Depth: engine.MaxDepth}
	}
	if hasClock && !infinite {
		remaining, increment := wtime, winc
		if u.board.SideToMove() == engine.Black {
			remaining, increment = btime, binc
		}
		limits.MoveTime = chooseMoveTime(remaining, increment)
		limits.Timed = true
		limits.Depth = engine.MaxDepth
	}

	if u.ownBook {
		if mv, ok := u.probeBook(); ok {
			fmt.Println("bestmove", mv)
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	u.cancel = cancel
	u.done = done
	board := u.board

	go func() {
		defer close(done)
		result, err := u.eng.FindBestMove(ctx, board, limits)
		if err != nil {
			u.log.Error().Err(err).Msg("search failed")
			fmt.Println("bestmove (none)")
			return
		}
		if result.Terminal {
			fmt.Println("bestmove (none)")
			return
		}
		fmt.Println("bestmove", result.Move.String())
	}()
}

// probeBook looks the current position up in the opening book and
// checks the stored move is legal before trusting it.
func (u *uciState) probeBook() (string, bool) {
	mv, ok := u.book.Probe(u.board.FEN())
	if !ok {
		return "", false
	}
	for _, legal := range u.board.LegalMoves() {
		if legal.String() == mv {
			u.log.Debug().Str("move", mv).Msg("book hit")
			return mv, true
		}
	}
	u.log.Warn().Str("move", mv).Msg("book move is illegal here, searching instead")
	return "", false
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
