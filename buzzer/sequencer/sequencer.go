package sequencer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/valerio/go-buzzer/buzzer/song"
	"github.com/valerio/go-buzzer/buzzer/timing"
)

var (
	ErrEmptySong  = errors.New("song has no steps")
	ErrSilentLoop = errors.New("looping song has zero total length")
)

// ToneSetter is the single-voice output a sequencer drives.
type ToneSetter interface {
	SetTone(hz float32)
}

// Sequencer plays songs step by step on one voice. Playback blocks the
// caller; there is no background goroutine.
type Sequencer struct {
	tone   ToneSetter
	clock  timing.Clock
	cfg    Config
	tick   time.Duration
	logger *slog.Logger
	onStep func(index int, step song.Step)
}

type Option func(*Sequencer)

// WithStepHook registers fn to be called before each step starts.
func WithStepHook(fn func(index int, step song.Step)) Option {
	return func(s *Sequencer) { s.onStep = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sequencer) { s.logger = l }
}

func New(tone ToneSetter, clock timing.Clock, cfg Config, opts ...Option) (*Sequencer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Sequencer{
		tone:   tone,
		clock:  clock,
		cfg:    cfg,
		tick:   cfg.Tick(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Sequencer) Config() Config {
	return s.cfg
}

// Play runs through the song once, or forever when the config loops.
// Cancellation is observed between steps (and between arpeggio slices with
// PollSlices); a step that has started always finishes otherwise.
func (s *Sequencer) Play(ctx context.Context, sg song.Song) error {
	if len(sg.Steps) == 0 {
		return ErrEmptySong
	}
	if s.cfg.Loop && sg.TotalTicks() == 0 {
		return ErrSilentLoop
	}

	s.logger.Info("playing song",
		"song", sg.Name,
		"steps", len(sg.Steps),
		"bpm", s.cfg.BPM,
		"tick_ms", s.tick.Milliseconds(),
		"loop", s.cfg.Loop)

	for pass := 1; ; pass++ {
		for i, step := range sg.Steps {
			if err := ctx.Err(); err != nil {
				s.tone.SetTone(0)
				return err
			}
			if err := s.PlayStep(ctx, i, step); err != nil {
				return err
			}
		}
		if !s.cfg.Loop {
			return nil
		}
		s.logger.Debug("song loop", "song", sg.Name, "pass", pass)
	}
}

// PlayStep plays a single step and returns once its gate and rest are over.
func (s *Sequencer) PlayStep(ctx context.Context, index int, step song.Step) error {
	total, gate, rest := Timing(step.Ticks, s.tick, s.cfg.GatePercent)
	if total == 0 {
		return nil
	}
	if s.onStep != nil {
		s.onStep(index, step)
	}

	if !step.Arpeggio {
		s.tone.SetTone(step.Lead().Hz)
		s.clock.Sleep(gate)
		s.tone.SetTone(0)
		s.clock.Sleep(rest)
		return nil
	}

	// the last slice may run past the gate; slices are never shortened
	start := s.clock.Now()
	for i := 0; timing.Since(s.clock, start) < gate; i++ {
		if s.cfg.PollSlices && ctx.Err() != nil {
			s.tone.SetTone(0)
			return ctx.Err()
		}
		s.tone.SetTone(step.Slot(i).Hz)
		s.clock.Sleep(s.cfg.ArpStep)
	}
	s.tone.SetTone(0)
	s.clock.Sleep(rest)
	return nil
}
