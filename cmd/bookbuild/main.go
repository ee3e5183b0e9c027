package main

import (
	"bufio"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chess-engine/book"
	"chess-engine/dragontooth"
)

// bookbuild turns a file of games into an opening book. Each input
// line is one game as space separated UCI moves from the starting
// position, for example "e2e4 e7e5 g1f3 b8c6".
func main() {
	gamesFlag := flag.String("games", "", "file with one game per line in UCI move notation")
	outFlag := flag.String("out", "book.json", "output book path")
	pliesFlag := flag.Int("plies", 8, "record at most this many plies per game")
	debugFlag := flag.Bool("debug", false, "log every game as it is replayed")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debugFlag {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()

	if *gamesFlag == "" {
		log.Fatal().Msg("pass -games with a file of UCI move lines")
	}

	f, err := os.Open(*gamesFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("opening games file")
	}
	defer f.Close()

	bk := book.NewEmpty()
	var games, positions int

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		added, err := replay(bk, strings.Fields(line), *pliesFlag)
		if err != nil {
			log.Warn().Err(err).Str("game", line).Msg("skipping game")
			continue
		}
		games++
		positions += added
		log.Debug().Int("game", games).Int("plies", added).Msg("replayed")
	}
	if err := scanner.Err(); err != nil {
		log.Fatal().Err(err).Msg("reading games file")
	}

	if err := bk.Save(*outFlag); err != nil {
		log.Fatal().Err(err).Msg("writing book")
	}
	log.Info().
		Int("games", games).
		Int("entries", positions).
		Int("positions", bk.Positions()).
		Str("out", *outFlag).
		Msg("book written")
}

// replay walks one game from the starting position, recording each
// position and the move played from it before the move is applied.
func replay(bk *book.Book, moves []string, maxPlies int) (int, error) {
	board := dragontooth.NewStartingBoard()
	added := 0
	for i, mv := range moves {
		if i >= maxPlies {
			break
		}
		fen := board.FEN()
		if err := board.PushUCIMove(mv); err != nil {
			return added, err
		}
		bk.Add(fen, mv)
		added++
	}
	return added, nil
}
