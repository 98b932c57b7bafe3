package dispatch

import (
	"log/slog"
	"time"

	"github.com/valerio/go-buzzer/buzzer/note"
	"github.com/valerio/go-buzzer/buzzer/sequencer"
	"github.com/valerio/go-buzzer/buzzer/timing"
)

// Player sounds single notes received from a front end.
type Player struct {
	tone     sequencer.ToneSetter
	clock    timing.Clock
	duration time.Duration
	gap      time.Duration
	logger   *slog.Logger
}

func NewPlayer(tone sequencer.ToneSetter, clock timing.Clock, duration, gap time.Duration) *Player {
	return &Player{
		tone:     tone,
		clock:    clock,
		duration: duration,
		gap:      gap,
		logger:   slog.Default(),
	}
}

// Play blocks while p sounds. A rest (or an invalid pitch) is silence for
// the note duration; a tone is followed by a short gap.
func (p *Player) Play(pitch note.Pitch) {
	if !pitch.Sounding() {
		p.logger.Debug("play rest", "ms", p.duration.Milliseconds())
		p.tone.SetTone(0)
		p.clock.Sleep(p.duration)
		return
	}

	p.logger.Debug("play note", "freq_hz", pitch.Hz, "ms", p.duration.Milliseconds())
	p.tone.SetTone(pitch.Hz)
	p.clock.Sleep(p.duration)
	p.tone.SetTone(0)
	p.clock.Sleep(p.gap)
}
