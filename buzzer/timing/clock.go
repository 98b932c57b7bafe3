package timing

import "time"

// Clock is the only way playback code observes or spends time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d. Non-positive durations return immediately.
	Sleep(d time.Duration)
}

// Since returns the time elapsed on c since t.
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// System returns a clock backed by the wall clock and time.Sleep.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Millis converts a whole number of milliseconds to a duration.
func Millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
