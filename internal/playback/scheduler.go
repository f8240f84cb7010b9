package playback

import "time"

// MinSkipInterval is the smallest gap between two honored forced
// skips; requests inside the window are dropped to absorb key repeat.
const MinSkipInterval = 250 * time.Millisecond

// NextNatural computes the index that follows current when a track
// ends on its own. The second return is false when the playlist is
// exhausted and looping is off.
func NextNatural(current, total int, loop bool) (int, bool) {
	if current+1 < total {
		return current + 1, true
	}
	if loop {
		return 0, true
	}
	return 0, false
}

// ApplyForcedSkip computes the index a user-initiated skip lands on.
// dir is +1 (next) or -1 (previous). Illegal requests — next at the
// last index or previous at index 0 without looping — return false
// and must be treated as no-ops, not errors.
func ApplyForcedSkip(current, total int, loop bool, dir int) (int, bool) {
	switch {
	case dir > 0:
		if current < total-1 {
			return current + 1, true
		}
		if loop {
			return 0, true
		}
	case dir < 0:
		if current > 0 {
			return current - 1, true
		}
		if loop {
			return total - 1, true
		}
	}
	return current, false
}

// SkipLimiter rate-limits forced skips. Dropped requests are not
// queued; a second skip inside the window simply never fires.
type SkipLimiter struct {
	last     time.Time
	interval time.Duration
}

// NewSkipLimiter returns a limiter whose first Allow always succeeds.
func NewSkipLimiter(interval time.Duration) *SkipLimiter {
	return &SkipLimiter{interval: interval}
}

// Allow reports whether a skip at instant now should be honored, and
// if so records it.
func (l *SkipLimiter) Allow(now time.Time) bool {
	if !l.last.IsZero() && now.Sub(l.last) < l.interval {
		return false
	}
	l.last = now
	return true
}
