package playback

import "time"

// Clock tracks pause-aware elapsed time for a single track. Observe is
// the only mutation point besides Reset: it must be called once per
// observed pause-state change, which keeps rapid pause/resume cycles
// from losing or double-counting time.
type Clock struct {
	start       time.Time
	accumulated time.Duration // total time spent paused so far
	pausedAt    time.Time     // zero unless currently paused
	frozen      time.Duration // elapsed value captured at pause entry
	paused      bool

	now func() time.Time // injectable for tests
}

// NewClock returns a clock started at the current instant.
func NewClock() *Clock {
	c := &Clock{now: time.Now}
	c.Reset()
	return c
}

// Reset restarts the clock for a new track.
func (c *Clock) Reset() {
	c.start = c.now()
	c.accumulated = 0
	c.pausedAt = time.Time{}
	c.frozen = 0
	c.paused = false
}

// Observe records a pause-state transition. Calls that do not change
// the state are no-ops, so callers may invoke it every tick with the
// sink's current paused flag.
func (c *Clock) Observe(pausedNow bool) {
	if pausedNow == c.paused {
		return
	}
	if pausedNow {
		c.pausedAt = c.now()
		c.frozen = c.pausedAt.Sub(c.start) - c.accumulated
	} else {
		c.accumulated += c.now().Sub(c.pausedAt)
		c.pausedAt = time.Time{}
	}
	c.paused = pausedNow
}

// Elapsed returns the playing time so far: frozen at the pause-entry
// value while paused, otherwise wall time minus accumulated pauses.
// It is idempotent and never mutates the clock.
func (c *Clock) Elapsed() time.Duration {
	if c.paused {
		return c.frozen
	}
	d := c.now().Sub(c.start) - c.accumulated
	if d < 0 {
		return 0
	}
	return d
}
