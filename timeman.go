package main

import "time"

const (
	minMoveTime = 50 * time.Millisecond

	// movesHorizon is how many further moves the budget assumes the
	// game will last.
	movesHorizon = 40
)

// chooseMoveTime picks a per-move budget from the game clock: an even
// share of the remaining time over the horizon plus most of the
// increment, never more than half the clock, never less than the
// floor that keeps depth 1 comfortable.
func chooseMoveTime(remaining, increment time.Duration) time.Duration {
	if remaining <= 0 {
		return minMoveTime
	}

	budget := remaining/movesHorizon + increment*3/4
	if ceiling := remaining / 2; budget > ceiling {
		budget = ceiling
	}
	if budget < minMoveTime {
		budget = minMoveTime
	}
	return budget
}
