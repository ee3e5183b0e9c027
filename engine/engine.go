package engine

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied by New when Config fields are left zero.
const (
	DefaultDepth       = 4
	DefaultMoveTime    = 2 * time.Second
	DefaultTableSizeMB = 64
)

// Config configures an Engine. The zero value is usable; every field
// falls back to a sensible default.
type Config struct {
	// Depth is the default maximum search depth in plies, used when a
	// search's Limits carry no depth. Valid range 1..MaxDepth.
	Depth int

	// MoveTime is the default time budget per search, used by callers
	// that want a timed search without picking a budget themselves.
	MoveTime time.Duration

	// TableSize is the transposition table size in megabytes.
	TableSize int

	// Logger receives per-iteration search output. The zero value
	// discards everything.
	Logger zerolog.Logger

	// Info, when non-nil, is called after every completed depth with
	// that iteration's result. Adapters use it for live progress
	// output; the search itself never blocks on it.
	Info func(Info)
}

// Limits bounds one call to FindBestMove.
type Limits struct {
	// Depth caps the iterative deepening. Values below 1 fall back to
	// the configured default; values above MaxDepth are clamped.
	Depth int

	// MoveTime is the time budget for the whole search. Only read
	// when Timed is set. Zero or negative budgets are honored: the
	// depth 1 iteration still runs to completion, everything beyond
	// it is cut.
	MoveTime time.Duration

	// Timed enables the MoveTime budget. When false the search runs
	// until Depth is exhausted or the context is canceled.
	Timed bool
}

// Info is a progress snapshot for one completed depth.
type Info struct {
	Depth int
	Score int16
	Nodes uint64
	Time  time.Duration
	NPS   uint64
	PV    PVLine
}

// SearchResult is the outcome of a search: the chosen move, its score
// from the side to move's perspective, and how much work proved it.
type SearchResult struct {
	Move  Move
	Score int16
	Nodes uint64
	Depth int
	PV    PVLine

	// Terminal is set when the root position already has no legal
	// moves; Move is then empty and Mate tells checkmate from
	// stalemate.
	Terminal bool
	Mate     bool
}

// Engine is a single-threaded alpha-beta searcher. Each instance owns
// its transposition, killer and history tables outright, so separate
// instances never share state and one instance must not run two
// searches at once.
type Engine struct {
	cfg Config
	log zerolog.Logger

	tt      *TransTable
	killers killerTable
	history historyTable

	// Per-search state, reset by FindBestMove.
	nodes       uint64
	stop        bool
	stoppable   bool
	hasDeadline bool
	deadline    time.Time
	doneCh      <-chan struct{}
}

// New builds an Engine, normalizing the config defaults.
func New(cfg Config) *Engine {
	if cfg.Depth < 1 {
		cfg.Depth = DefaultDepth
	}
	if cfg.Depth > MaxDepth {
		cfg.Depth = MaxDepth
	}
	if cfg.MoveTime <= 0 {
		cfg.MoveTime = DefaultMoveTime
	}
	if cfg.TableSize < 1 {
		cfg.TableSize = DefaultTableSizeMB
	}
	return &Engine{
		cfg: cfg,
		log: cfg.Logger,
		tt:  newTransTable(cfg.TableSize),
	}
}

// Config returns the normalized configuration the engine runs with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Reset clears the transposition, killer and history tables. A reset
// engine searches exactly like a freshly constructed one; the caches
// only ever change speed, never the chosen move.
func (e *Engine) Reset() {
	e.tt.clear()
	e.killers.clear()
	e.history.clear()
}
