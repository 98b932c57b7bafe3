package timing

import (
	"sync"
	"time"
)

// Fake is a manual clock: Sleep advances time instantly. It records every
// sleep so tests can assert on the exact schedule.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  []time.Duration
	onSleep func(now time.Time)
}

// NewFake returns a fake clock starting at a fixed instant.
func NewFake() *Fake {
	return &Fake{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// OnSleep registers a callback run after every Sleep with the new time.
func (f *Fake) OnSleep(fn func(now time.Time)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSleep = fn
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Sleep(d time.Duration) {
	f.mu.Lock()
	if d < 0 {
		d = 0
	}
	f.now = f.now.Add(d)
	f.sleeps = append(f.sleeps, d)
	now, fn := f.now, f.onSleep
	f.mu.Unlock()

	if fn != nil {
		fn(now)
	}
}

// Advance moves time forward without recording a sleep.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Sleeps returns a copy of all recorded sleep durations.
func (f *Fake) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.sleeps))
	copy(out, f.sleeps)
	return out
}

// Elapsed is the total time spent sleeping.
func (f *Fake) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total time.Duration
	for _, d := range f.sleeps {
		total += d
	}
	return total
}
