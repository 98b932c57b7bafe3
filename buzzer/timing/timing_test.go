package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_SleepAdvancesTime(t *testing.T) {
	f := NewFake()
	start := f.Now()

	f.Sleep(12 * time.Millisecond)
	f.Sleep(0)
	f.Sleep(-time.Second)
	f.Advance(time.Second)

	assert.Equal(t, 12*time.Millisecond+time.Second, Since(f, start))
	assert.Equal(t, []time.Duration{12 * time.Millisecond, 0, 0}, f.Sleeps())
	assert.Equal(t, 12*time.Millisecond, f.Elapsed())
}

func TestFake_OnSleep(t *testing.T) {
	f := NewFake()
	var seen []time.Time
	f.OnSleep(func(now time.Time) { seen = append(seen, now) })

	f.Sleep(time.Millisecond)
	f.Sleep(time.Millisecond)

	assert.Len(t, seen, 2)
	assert.Equal(t, f.Now(), seen[1])
}

func TestPreciseClock_SleepsAtLeastRequested(t *testing.T) {
	p := NewPreciseClock()
	start := time.Now()
	for i := 0; i < 3; i++ {
		p.Sleep(3 * time.Millisecond)
	}
	assert.GreaterOrEqual(t, time.Since(start), 9*time.Millisecond)

	p.Reset()
	before := time.Now()
	p.Sleep(0)
	assert.Less(t, time.Since(before), time.Millisecond)
}

func TestMillis(t *testing.T) {
	assert.Equal(t, 54*time.Millisecond, Millis(54))
}
