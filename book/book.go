// Package book implements a JSON opening book: positions keyed by FEN,
// each holding candidate moves in preference order.
package book

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const startposFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Book maps FEN strings to moves in long algebraic form. Probes are
// safe from multiple goroutines.
type Book struct {
	mu       sync.RWMutex
	openings map[string][]string
}

// New returns a book seeded with the built-in mainline first moves, so
// the engine plays book openings out of the box.
func New() *Book {
	return &Book{
		openings: map[string][]string{
			startposFEN: {"e2e4", "d2d4", "c2c4", "g1f3"},
		},
	}
}

// NewEmpty returns a book with no openings, for builders that fill it
// from game collections.
func NewEmpty() *Book {
	return &Book{openings: map[string][]string{}}
}

// Load reads a book file, replacing any previous contents.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load book: %w", err)
	}
	openings := map[string][]string{}
	if err := json.Unmarshal(data, &openings); err != nil {
		return nil, fmt.Errorf("load book %s: %w", path, err)
	}
	return &Book{openings: openings}, nil
}

// Save writes the book as indented JSON, creating the directory if
// needed.
func (b *Book) Save(path string) error {
	b.mu.RLock()
	data, err := json.MarshalIndent(b.openings, "", "  ")
	b.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save book: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	return nil
}

// Probe returns the preferred book move for the position, if any. The
// first stored move wins, so probing is deterministic.
func (b *Book) Probe(fen string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	moves := b.openings[fen]
	if len(moves) == 0 {
		return "", false
	}
	return moves[0], true
}

// Moves returns every candidate stored for the position.
func (b *Book) Moves(fen string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.openings[fen]...)
}

// Add appends a move for the position unless it is already known.
func (b *Book) Add(fen, move string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, known := range b.openings[fen] {
		if known == move {
			return
		}
	}
	b.openings[fen] = append(b.openings[fen], move)
}

// Positions reports how many positions the book covers.
func (b *Book) Positions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.openings)
}
