package storage

import (
	"testing"
	"time"
)

func TestPutGetRoundtrip(t *testing.T) {
	store := openStore(t)

	rec := Record{
		FEN:      "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4",
		BestMove: "d2d3",
		Score:    35,
		Depth:    8,
		Nodes:    123456,
		PV:       "d2d3 g8f6",
	}
	if err := store.Put(rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, found, err := store.Get(rec.FEN)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatalf("expected a stored record")
	}
	if got.BestMove != rec.BestMove || got.Score != rec.Score || got.Depth != rec.Depth || got.Nodes != rec.Nodes {
		t.Fatalf("record mismatch: %+v", got)
	}
	if got.AnalyzedAt.IsZero() {
		t.Fatalf("expected AnalyzedAt to be stamped on put")
	}
}

func TestGetMissingIsNotAnError(t *testing.T) {
	store := openStore(t)

	_, found, err := store.Get("8/8/8/8/8/8/8/8 w - - 0 1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatalf("found a record that was never stored")
	}
}

func TestPutOverwritesSamePosition(t *testing.T) {
	store := openStore(t)
	fen := "4k3/8/8/8/8/8/8/4K2R w - - 0 1"

	if err := store.Put(Record{FEN: fen, BestMove: "h1h8", Depth: 4}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(Record{FEN: fen, BestMove: "e1d2", Depth: 9}); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, found, err := store.Get(fen)
	if err != nil || !found {
		t.Fatalf("get: %v found=%v", err, found)
	}
	if got.BestMove != "e1d2" || got.Depth != 9 {
		t.Fatalf("expected the newer analysis, got %+v", got)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 record after overwrite, got %d", n)
	}
}

func TestCount(t *testing.T) {
	store := openStore(t)

	fens := []string{
		"8/2k5/8/8/3P4/8/2K5/8 w - - 0 1",
		"8/8/4k3/8/2B5/2K5/8/8 w - - 0 1",
		"4k3/4p3/8/8/8/8/4P3/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		if err := store.Put(Record{FEN: fen, BestMove: "a2a3", Depth: 2}); err != nil {
			t.Fatalf("put %s: %v", fen, err)
		}
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != len(fens) {
		t.Fatalf("expected %d records, got %d", len(fens), n)
	}
}

func TestExplicitTimestampSurvives(t *testing.T) {
	store := openStore(t)
	when := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	rec := Record{FEN: "8/8/8/8/8/5k2/8/5K2 w - - 0 1", BestMove: "f1e1", AnalyzedAt: when}
	if err := store.Put(rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _, err := store.Get(rec.FEN)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.AnalyzedAt.Equal(when) {
		t.Fatalf("timestamp rewritten: %v", got.AnalyzedAt)
	}
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}
