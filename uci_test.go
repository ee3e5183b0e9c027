package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chess-engine/book"
	"chess-engine/engine"
)

func TestParseOption(t *testing.T) {
	cases := []struct {
		line  string
		name  string
		value string
	}{
		{"setoption name Hash value 128", "Hash", "128"},
		{"setoption name OwnBook value false", "OwnBook", "false"},
		{"setoption name Clear Hash", "Clear Hash", ""},
		{"setoption name Some Name value a b c", "Some Name", "a b c"},
	}
	for _, c := range cases {
		name, value := parseOption(strings.Fields(c.line))
		if name != c.name || value != c.value {
			t.Fatalf("%q: expected (%q, %q), got (%q, %q)", c.line, c.name, c.value, name, value)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(5, 1, 10); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := clamp(-5, 1, 10); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := clamp(50, 1, 10); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestSetOptionAppliesAndClamps(t *testing.T) {
	u := newUCIState(zerolog.Nop())

	u.setOption(strings.Fields("setoption name Depth value 99"))
	if u.depth != maxUCIDepth {
		t.Fatalf("expected depth clamped to %d, got %d", maxUCIDepth, u.depth)
	}
	u.setOption(strings.Fields("setoption name Depth value 3"))
	if u.depth != 3 {
		t.Fatalf("expected depth 3, got %d", u.depth)
	}

	u.setOption(strings.Fields("setoption name TimeLimit value 5"))
	if u.moveTime != 100*time.Millisecond {
		t.Fatalf("expected the 100ms floor, got %v", u.moveTime)
	}

	u.setOption(strings.Fields("setoption name Hash value 2"))
	if u.hashMB != 2 {
		t.Fatalf("expected hash 2, got %d", u.hashMB)
	}
	if got := u.eng.Config().TableSize; got != 2 {
		t.Fatalf("expected the engine rebuilt with 2MB, got %d", got)
	}

	u.setOption(strings.Fields("setoption name OwnBook value false"))
	if u.ownBook {
		t.Fatalf("expected the book disabled")
	}

	// Unknown options and junk values are ignored, not fatal.
	u.setOption(strings.Fields("setoption name Nonsense value 1"))
	u.setOption(strings.Fields("setoption name Depth value banana"))
	if u.depth != 3 {
		t.Fatalf("junk value changed depth to %d", u.depth)
	}
}

func TestSetPositionStartposWithMoves(t *testing.T) {
	u := newUCIState(zerolog.Nop())

	u.setPosition(strings.Fields("position startpos moves e2e4 e7e5"))
	if u.board.SideToMove() != engine.White {
		t.Fatalf("expected white to move after e2e4 e7e5")
	}
	if !strings.HasPrefix(u.board.FEN(), "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w") {
		t.Fatalf("unexpected position %s", u.board.FEN())
	}
}

func TestSetPositionFromFEN(t *testing.T) {
	u := newUCIState(zerolog.Nop())
	fen := "8/2k5/8/8/3P4/8/2K5/8 w - - 0 1"

	u.setPosition(strings.Fields("position fen " + fen))
	if u.board.FEN() != fen {
		t.Fatalf("expected %s, got %s", fen, u.board.FEN())
	}

	u.setPosition(strings.Fields("position fen " + fen + " moves d4d5"))
	if u.board.SideToMove() != engine.Black {
		t.Fatalf("expected black to move after d4d5")
	}
}

func TestSetPositionStopsAtIllegalMove(t *testing.T) {
	u := newUCIState(zerolog.Nop())

	u.setPosition(strings.Fields("position startpos moves e2e4 e2e4 e7e5"))
	if u.board.SideToMove() != engine.Black {
		t.Fatalf("expected the game stopped after the first e2e4")
	}
}

func TestSetPositionRejectsBadFEN(t *testing.T) {
	u := newUCIState(zerolog.Nop())
	before := u.board.FEN()

	u.setPosition(strings.Fields("position fen garbage here not a real fen x"))
	if u.board.FEN() != before {
		t.Fatalf("malformed fen replaced the board")
	}
}

func TestUCISessionTranscript(t *testing.T) {
	script := strings.Join([]string{
		"uci",
		"isready",
		"position startpos",
		"go depth 1",
		"position startpos moves e2e4 e7e5",
		"go depth 1",
		"quit",
	}, "\n") + "\n"

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	u := newUCIState(zerolog.Nop())
	u.uciLoop(strings.NewReader(script))

	w.Close()
	os.Stdout = old
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"id name " + engineName,
		"id author " + engineAuthor,
		"uciok",
		"readyok",
		"option name Hash",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	// First go hits the seeded book, second one searches.
	if !strings.Contains(out, "bestmove e2e4") {
		t.Fatalf("expected the book reply e2e4:\n%s", out)
	}
	if got := strings.Count(out, "bestmove"); got != 2 {
		t.Fatalf("expected 2 bestmove lines, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "info depth 1") {
		t.Fatalf("expected an info line from the search:\n%s", out)
	}
}

func TestSetOptionBookFileSwapsTheBook(t *testing.T) {
	u := newUCIState(zerolog.Nop())

	bk := book.NewEmpty()
	bk.Add(u.board.FEN(), "d2d4")
	path := filepath.Join(t.TempDir(), "book.json")
	if err := bk.Save(path); err != nil {
		t.Fatalf("save book: %v", err)
	}

	u.setOption(strings.Fields("setoption name BookFile value " + path))
	mv, ok := u.probeBook()
	if !ok || mv != "d2d4" {
		t.Fatalf("expected the loaded book to offer d2d4, got %q ok=%v", mv, ok)
	}

	loaded := u.book
	u.setOption(strings.Fields("setoption name BookFile value " + filepath.Join(t.TempDir(), "missing.json")))
	if u.book != loaded {
		t.Fatalf("a missing book file replaced the loaded book")
	}
}

func TestProbeBookRejectsIllegalBookMove(t *testing.T) {
	u := newUCIState(zerolog.Nop())
	u.setPosition(strings.Fields("position startpos moves e2e4 e7e5"))
	u.book.Add(u.board.FEN(), "e2e4")

	if _, ok := u.probeBook(); ok {
		t.Fatalf("book offered an illegal move and it was accepted")
	}

	u.book.Add(u.board.FEN(), "g1f3")
	// The illegal first entry still blocks; Probe only ever returns the
	// head of the list.
	if _, ok := u.probeBook(); ok {
		t.Fatalf("expected the stale head entry to keep the book silent")
	}
}
