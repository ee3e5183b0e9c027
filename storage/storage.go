// Package storage caches finished analyses in a Badger database keyed
// by position FEN, so repeated analysis of the same positions is free.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

var recordPrefix = []byte("analysis/")

// Record is one cached analysis result. Score is in centipawns from
// the side to move, mirroring what the engine reports.
type Record struct {
	FEN        string    `json:"fen"`
	BestMove   string    `json:"best_move"`
	Score      int16     `json:"score"`
	Depth      int       `json:"depth"`
	Nodes      uint64    `json:"nodes"`
	PV         string    `json:"pv,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Store wraps the Badger database.
type Store struct {
	db *badger.DB
}

// Open opens or creates the store at path. Badger's own logging is
// silenced; callers log what matters.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open analysis store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a record, overwriting any earlier analysis of the same
// position.
func (s *Store) Put(rec Record) error {
	if rec.AnalyzedAt.IsZero() {
		rec.AnalyzedAt = time.Now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store analysis: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(rec.FEN), data)
	})
	if err != nil {
		return fmt.Errorf("store analysis: %w", err)
	}
	return nil
}

// Get fetches the cached analysis for a position. The second return
// is false when the position has never been analyzed.
func (s *Store) Get(fen string) (Record, bool, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(fen))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load analysis: %w", err)
	}
	return rec, true, nil
}

// Count reports how many analyses are stored.
func (s *Store) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(recordPrefix); it.ValidForPrefix(recordPrefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return n, nil
}

func key(fen string) []byte {
	return append(append([]byte{}, recordPrefix...), fen...)
}
