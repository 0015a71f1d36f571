package scheduler

import "time"

// InteractionScore counts recent UI activity, bounded to [0, max].
type InteractionScore struct {
	value     int
	max       int
	interval  time.Duration
	lastDecay time.Time
}

func newInteractionScore(limit int, interval time.Duration, now time.Time) InteractionScore {
	return InteractionScore{max: limit, interval: interval, lastDecay: now}
}

// Value returns the current score.
func (s *InteractionScore) Value() int { return s.value }

// Bump adds one, saturating at max.
func (s *InteractionScore) Bump() {
	if s.value < s.max {
		s.value++
	}
}

// Decay subtracts one per full interval elapsed since the previous decay,
// flooring at zero. Partial intervals carry over to the next call.
func (s *InteractionScore) Decay(now time.Time) {
	if s.interval <= 0 || !now.After(s.lastDecay) {
		return
	}
	n := int(now.Sub(s.lastDecay) / s.interval)
	if n == 0 {
		return
	}
	s.lastDecay = s.lastDecay.Add(time.Duration(n) * s.interval)
	s.value -= n
	if s.value < 0 {
		s.value = 0
	}
}
