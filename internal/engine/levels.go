package engine

import (
	"math"

	"divergence-lab/internal/domain"
)

// sweepStopExtension places the SWEEP-mode stop 0.272 of the range beyond
// the sweep extreme (the 1.272 fib extension).
const sweepStopExtension = 0.272

// computeLevels derives entry, stop and target from the fib range.
// fib0 is the impulse extreme (trails until fill), fib1 the locked sweep
// extreme. For SHORT the range points down: entry and stop sit above fib0,
// target below; LONG mirrors.
func computeLevels(cfg domain.Config, fib0, fib1 float64, dir domain.Direction) (entry, stop, target float64) {
	fibRange := math.Abs(fib1 - fib0)

	if dir == domain.DirectionShort {
		if cfg.EntryMode == domain.EntryModeSweep {
			// Limit at the sweep high itself, betting on a retest of the wick.
			entry = fib1
			stop = fib1 + fibRange*sweepStopExtension
			target = fib0
			return
		}
		entry = fib0 + cfg.FibEntry*fibRange
		stop = fib0 + cfg.FibStop*fibRange
		target = fib0 - cfg.FibTarget*fibRange
		return
	}

	if cfg.EntryMode == domain.EntryModeSweep {
		entry = fib1
		stop = fib1 - fibRange*sweepStopExtension
		target = fib0
		return
	}
	entry = fib0 - cfg.FibEntry*fibRange
	stop = fib0 - cfg.FibStop*fibRange
	target = fib0 + cfg.FibTarget*fibRange
	return
}
