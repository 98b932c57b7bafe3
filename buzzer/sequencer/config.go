package sequencer

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrBadConfig = errors.New("invalid sequencer config")

// Config is the tempo grid and articulation used for playback. It is fixed
// for the lifetime of a Sequencer.
type Config struct {
	BPM          uint32
	TicksPerBeat uint32
	GatePercent  uint8         // share of each step that sounds, 0-100
	ArpStep      time.Duration // length of one arpeggio slice
	Loop         bool          // repeat the song until cancelled

	// PollSlices checks for cancellation between arpeggio slices instead
	// of only between steps.
	PollSlices bool
}

func DefaultConfig() Config {
	return Config{
		BPM:          140,
		TicksPerBeat: 8,
		GatePercent:  80,
		ArpStep:      12 * time.Millisecond,
		Loop:         true,
	}
}

func (c Config) Validate() error {
	switch {
	case c.BPM == 0:
		return fmt.Errorf("%w: bpm must be positive", ErrBadConfig)
	case c.TicksPerBeat == 0:
		return fmt.Errorf("%w: ticks per beat must be positive", ErrBadConfig)
	case c.GatePercent > 100:
		return fmt.Errorf("%w: gate %d%% above 100%%", ErrBadConfig, c.GatePercent)
	case c.ArpStep <= 0:
		return fmt.Errorf("%w: arpeggio step must be positive", ErrBadConfig)
	}
	return nil
}

// Tick is the duration of one tick for this config.
func (c Config) Tick() time.Duration {
	return TickDuration(c.BPM, c.TicksPerBeat)
}

// TickDuration is 60000 / bpm / ticksPerBeat milliseconds, rounded to a
// whole millisecond.
func TickDuration(bpm, ticksPerBeat uint32) time.Duration {
	if bpm == 0 || ticksPerBeat == 0 {
		return 0
	}
	ms := 60000.0 / float64(bpm) / float64(ticksPerBeat)
	return time.Duration(math.Round(ms)) * time.Millisecond
}

// Timing splits a step of the given length into its sounding gate and
// silent rest. Milliseconds are whole, the gate is rounded down.
func Timing(ticks uint32, tick time.Duration, gatePercent uint8) (total, gate, rest time.Duration) {
	totalMs := int64(ticks) * tick.Milliseconds()
	gateMs := totalMs * int64(gatePercent) / 100
	restMs := totalMs - gateMs
	return time.Duration(totalMs) * time.Millisecond,
		time.Duration(gateMs) * time.Millisecond,
		time.Duration(restMs) * time.Millisecond
}
