package engine

import (
	"context"
	"errors"
	"time"
)

const (
	// MaxScore bounds every score the search can produce. Mate scores
	// live in the band (Checkmate, MaxScore]; no material or
	// positional evaluation can reach it.
	MaxScore  int16 = 32500
	Checkmate int16 = 20000
	DrawScore int16 = 0
)

// timeCheckInterval is how many nodes may pass between clock checks.
const timeCheckInterval = 1024

var ErrNoPosition = errors.New("engine: search needs a position")

// FindBestMove runs an iterative deepening search and returns the best
// move of the last fully completed depth. A depth aborted by the time
// budget or the context is discarded whole; depth 1 always completes,
// even on a zero budget, so there is always an informed move to return.
// Context cancellation is advisory and polled at the same bounded
// intervals as the clock.
func (e *Engine) FindBestMove(ctx context.Context, pos Position, limits Limits) (SearchResult, error) {
	if pos == nil {
		return SearchResult{}, ErrNoPosition
	}

	maxDepth := limits.Depth
	if maxDepth < 1 {
		maxDepth = e.cfg.Depth
	}
	if maxDepth > MaxDepth {
		maxDepth = MaxDepth
	}

	start := time.Now()
	e.nodes = 0
	e.stop = false
	e.stoppable = false
	e.doneCh = nil
	if ctx != nil {
		e.doneCh = ctx.Done()
	}
	e.hasDeadline = limits.Timed
	if limits.Timed {
		budget := limits.MoveTime
		if budget < 0 {
			budget = 0
		}
		e.deadline = start.Add(budget)
	}

	if len(pos.LegalMoves()) == 0 {
		result := SearchResult{Terminal: true, Score: DrawScore}
		if pos.IsCheckmate() {
			result.Mate = true
			result.Score = -MaxScore
		}
		return result, nil
	}

	var result SearchResult
	var pv PVLine
	for depth := 1; depth <= maxDepth; depth++ {
		// Depth 1 may not be aborted; that is the progress guarantee.
		e.stoppable = depth > 1
		pv.Clear()

		move, score, completed := e.rootSearch(pos, depth, &pv)
		if !completed {
			break
		}

		elapsed := time.Since(start)
		result = SearchResult{
			Move:  move,
			Score: score,
			Nodes: e.nodes,
			Depth: depth,
			PV:    pv.Clone(),
		}
		e.report(result, elapsed)

		// A proven mate cannot be improved by deepening.
		if IsMateScore(score) {
			break
		}
		if limits.Timed && !time.Now().Before(e.deadline) {
			break
		}
	}

	result.Nodes = e.nodes
	return result, nil
}

// rootSearch runs one full-window iteration. The root never takes a
// transposition cutoff, it needs a move, not just a score; it does
// store its result for deeper iterations to order against. Reports
// completed=false when the iteration was aborted, in which case the
// caller must discard the move and score.
func (e *Engine) rootSearch(pos Position, depth int, pv *PVLine) (best Move, score int16, completed bool) {
	alpha, beta := -MaxScore, MaxScore
	ranked := rankMoves(pos.LegalMoves(), depth, &e.killers, &e.history)

	best = ranked[0]
	var childPV PVLine
	for _, m := range ranked {
		// Large budgets must be respected promptly even when the
		// node counter is far from its next check.
		e.checkTime()
		if e.stop {
			return best, alpha, false
		}

		childPV.Clear()
		undo := pos.Apply(m)
		moveScore := -e.alphabeta(pos, depth-1, 1, -beta, -alpha, &childPV)
		undo()
		if e.stop {
			return best, alpha, false
		}

		if moveScore > alpha {
			alpha = moveScore
			best = m
			pv.Update(m, childPV)
		}
	}

	e.tt.storeEntry(pos.Key(), depth, 0, best, alpha, ExactFlag)
	return best, alpha, true
}

// alphabeta is the negamax node. Scores are always from the side to
// move's perspective; mates are scored MaxScore minus plies from the
// root, so shorter mates win.
func (e *Engine) alphabeta(pos Position, depth, ply int, alpha, beta int16, pv *PVLine) int16 {
	e.nodes++
	if e.nodes&(timeCheckInterval-1) == 0 {
		e.checkTime()
	}
	if e.stop {
		return 0
	}

	// Terminal before leaf: a mate on the board must score as a mate
	// even when it sits exactly on the horizon.
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if pos.InCheck() {
			return -(MaxScore - int16(ply))
		}
		return DrawScore
	}
	if depth <= 0 || ply >= MaxDepth {
		return evalForSideToMove(pos)
	}

	hash := pos.Key()
	if entry, found := e.tt.getEntry(hash); found {
		if usable, ttScore := e.tt.useEntry(entry, depth, alpha, beta, ply); usable {
			return ttScore
		}
	}

	ranked := rankMoves(moves, depth, &e.killers, &e.history)

	bestScore := -MaxScore
	bestMove := ranked[0]
	ttFlag := int8(AlphaFlag)
	var childPV PVLine
	for _, m := range ranked {
		childPV.Clear()
		undo := pos.Apply(m)
		score := -e.alphabeta(pos, depth-1, ply+1, -beta, -alpha, &childPV)
		undo()
		if e.stop {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
			ttFlag = ExactFlag
			pv.Update(m, childPV)
		}
		if alpha >= beta {
			ttFlag = BetaFlag
			if !m.IsCapture() {
				e.killers.insert(m, depth)
			}
			e.history.bump(m, depth)
			break
		}
	}

	e.tt.storeEntry(hash, depth, ply, bestMove, bestScore, ttFlag)
	return bestScore
}

// evalForSideToMove flips the white-relative evaluation into the
// negamax frame.
func evalForSideToMove(pos Position) int16 {
	score := Evaluate(pos)
	if pos.SideToMove() == Black {
		score = -score
	}
	return score
}

// checkTime sets the stop flag once the context is canceled or the
// deadline has passed. It is a no-op while the depth 1 iteration runs.
func (e *Engine) checkTime() {
	if !e.stoppable || e.stop {
		return
	}
	select {
	case <-e.doneCh:
		e.stop = true
		return
	default:
	}
	if e.hasDeadline && !time.Now().Before(e.deadline) {
		e.stop = true
	}
}

func (e *Engine) report(result SearchResult, elapsed time.Duration) {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		seconds = 0.001
	}
	nps := uint64(float64(result.Nodes) / seconds)

	if e.cfg.Info != nil {
		e.cfg.Info(Info{
			Depth: result.Depth,
			Score: result.Score,
			Nodes: result.Nodes,
			Time:  elapsed,
			NPS:   nps,
			PV:    result.PV,
		})
	}
	e.log.Debug().
		Int("depth", result.Depth).
		Int("score", int(result.Score)).
		Uint64("nodes", result.Nodes).
		Uint64("nps", nps).
		Dur("elapsed", elapsed).
		Str("pv", result.PV.String()).
		Msg("depth completed")
}
