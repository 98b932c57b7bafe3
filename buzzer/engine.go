// Package buzzer ties the tone driver, the sequencer and the dispatcher to
// an output channel.
package buzzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/valerio/go-buzzer/buzzer/dispatch"
	"github.com/valerio/go-buzzer/buzzer/sequencer"
	"github.com/valerio/go-buzzer/buzzer/song"
	"github.com/valerio/go-buzzer/buzzer/speaker"
	"github.com/valerio/go-buzzer/buzzer/timing"
	"github.com/valerio/go-buzzer/buzzer/tone"
)

// Output selects where the square wave goes.
type Output int

const (
	// Dry only programs simulated registers; useful with debug logging.
	Dry Output = iota
	// Speaker renders the channel on the host audio device.
	Speaker
)

func (o Output) String() string {
	if o == Speaker {
		return "speaker"
	}
	return "dry"
}

func ParseOutput(s string) (Output, error) {
	switch strings.ToLower(s) {
	case "dry":
		return Dry, nil
	case "speaker":
		return Speaker, nil
	}
	return Dry, fmt.Errorf("unknown output %q (want dry or speaker)", s)
}

// Config collects the settings of every component.
type Config struct {
	SystemClock uint32
	Output      Output
	SampleRate  int
	Volume      float32

	Sequencer sequencer.Config
	Dispatch  dispatch.Config

	// Clock defaults to a PreciseClock.
	Clock  timing.Clock
	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		SystemClock: tone.DefaultSystemClock,
		Output:      Dry,
		SampleRate:  speaker.DefaultSampleRate,
		Volume:      speaker.DefaultVolume,
		Sequencer:   sequencer.DefaultConfig(),
		Dispatch:    dispatch.DefaultConfig(),
	}
}

// Engine owns the single tone channel. Only one flow (a song or a
// dispatcher) should drive it at a time.
type Engine struct {
	cfg     Config
	channel tone.Channel
	driver  *tone.Driver
	clock   timing.Clock
	logger  *slog.Logger
	closer  func() error
}

// New opens the configured output.
func New(cfg Config) (*Engine, error) {
	switch cfg.Output {
	case Speaker:
		sp, err := speaker.Open(cfg.SampleRate, cfg.SystemClock, cfg.Volume)
		if err != nil {
			return nil, err
		}
		e, err := NewWithChannel(cfg, sp)
		if err != nil {
			return nil, errors.Join(err, sp.Close())
		}
		e.closer = sp.Close
		return e, nil
	default:
		return NewWithChannel(cfg, &tone.Registers{})
	}
}

// NewWithChannel drives ch instead of opening an output.
func NewWithChannel(cfg Config, ch tone.Channel) (*Engine, error) {
	if cfg.SystemClock == 0 {
		cfg.SystemClock = tone.DefaultSystemClock
	}
	if err := cfg.Sequencer.Validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = timing.NewPreciseClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	e := &Engine{
		cfg:     cfg,
		channel: ch,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
	}
	e.driver = tone.NewDriver(ch,
		tone.WithSystemClock(cfg.SystemClock),
		tone.WithLogger(cfg.Logger))

	e.logger.Debug("engine ready",
		"output", cfg.Output.String(),
		"system_clock_hz", cfg.SystemClock)
	return e, nil
}

func (e *Engine) Driver() *tone.Driver {
	return e.driver
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Status reports what the channel is playing.
func (e *Engine) Status() tone.Status {
	return e.driver.Status()
}

// SetTone drives the channel directly.
func (e *Engine) SetTone(hz float32) {
	e.driver.SetTone(hz)
}

// PlaySong plays s with the sequencer settings; it returns when the song
// ends or, for looping playback, when ctx is cancelled.
func (e *Engine) PlaySong(ctx context.Context, s song.Song, opts ...sequencer.Option) error {
	opts = append([]sequencer.Option{sequencer.WithLogger(e.logger)}, opts...)
	seq, err := sequencer.New(e.driver, e.clock, e.cfg.Sequencer, opts...)
	if err != nil {
		return err
	}

	err = seq.Play(ctx, s)
	if errors.Is(err, context.Canceled) {
		e.logger.Info("playback stopped", "song", s.Name)
		return nil
	}
	return err
}

// Listen runs a dispatcher over src until it ends or ctx is cancelled.
// The built-in songs can be requested with "SONG <name>" tokens.
func (e *Engine) Listen(ctx context.Context, src dispatch.Source, opts ...dispatch.Option) error {
	opts = append([]dispatch.Option{
		dispatch.WithLogger(e.logger),
		dispatch.WithSongs(e.cfg.Sequencer, song.Builtins()...),
	}, opts...)

	d, err := dispatch.New(src, e.driver, e.clock, e.cfg.Dispatch, opts...)
	if err != nil {
		return err
	}
	return d.Run(ctx)
}

// Close silences the channel and releases the output.
func (e *Engine) Close() error {
	e.driver.SetTone(0)
	if e.closer == nil {
		return nil
	}
	return e.closer()
}
