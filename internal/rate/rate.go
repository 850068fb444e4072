// Package rate converts timestamped cumulative counters into per-second rates.
package rate

import (
	"math"
	"time"
)

const bitsPerMegabit = 1_000_000

// Mbps returns the megabit-per-second rate for deltaBytes observed over
// elapsed. Non-positive intervals yield 0.
func Mbps(deltaBytes uint64, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}

	r := float64(deltaBytes) * 8 / secs / bitsPerMegabit
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return 0
	}

	return r
}

// Tracker remembers the previous reading of one cumulative counter. The zero
// value has no baseline.
type Tracker struct {
	prev   uint64
	prevAt time.Time
	primed bool
}

// Observe records value at time at and returns the rate since the previous
// observation in Mbps. The first observation, a counter decrease (wrap or
// reset) and a non-positive interval all return 0 and re-baseline.
func (t *Tracker) Observe(value uint64, at time.Time) float64 {
	defer func() {
		t.prev = value
		t.prevAt = at
		t.primed = true
	}()

	if !t.primed || value < t.prev {
		return 0
	}

	return Mbps(value-t.prev, at.Sub(t.prevAt))
}

// Reset drops the baseline, e.g. after the counter source was unavailable.
func (t *Tracker) Reset() {
	*t = Tracker{}
}

// Primed reports whether a baseline exists.
func (t *Tracker) Primed() bool {
	return t.primed
}
