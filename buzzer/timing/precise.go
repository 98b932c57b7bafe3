package timing

import (
	"log/slog"
	"time"
)

// spinThreshold is the tail of every sleep that is busy-waited instead of
// handed to the scheduler.
const spinThreshold = 2 * time.Millisecond

// PreciseClock sleeps with the scheduler for most of the interval and
// busy-waits the last couple of milliseconds. Deadlines are carried over
// between calls so short back-to-back sleeps (arpeggio slices) don't drift.
type PreciseClock struct {
	deadline time.Time
	sleeps   int64
}

func NewPreciseClock() *PreciseClock {
	return &PreciseClock{}
}

func (p *PreciseClock) Now() time.Time { return time.Now() }

func (p *PreciseClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}

	now := time.Now()
	// restart the schedule if we're idle or badly behind
	if p.deadline.IsZero() || now.Sub(p.deadline) > 5*time.Millisecond {
		p.deadline = now
	}
	p.deadline = p.deadline.Add(d)

	wait := p.deadline.Sub(now)
	if wait > spinThreshold {
		time.Sleep(wait - spinThreshold)
	}
	for time.Now().Before(p.deadline) {
		// busy-wait for the remaining tail, higher accuracy.
	}

	p.sleeps++
	if p.sleeps%1000 == 0 {
		slog.Debug("precise clock", "sleeps", p.sleeps, "lag_us", time.Since(p.deadline).Microseconds())
	}
}

// Reset drops the carried deadline, useful after a pause in playback.
func (p *PreciseClock) Reset() {
	p.deadline = time.Time{}
}
