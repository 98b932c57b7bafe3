package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/valerio/go-buzzer/buzzer/note"
	"github.com/valerio/go-buzzer/buzzer/sequencer"
	"github.com/valerio/go-buzzer/buzzer/song"
	"github.com/valerio/go-buzzer/buzzer/timing"
)

// Source is a byte input that can be polled without blocking.
// It returns io.EOF once no more input will ever arrive.
type Source interface {
	Poll() (b byte, ok bool, err error)
}

// Dispatcher reads commands from a Source and plays them. It is the single
// flow that drives the tone output; every note blocks until it is done.
type Dispatcher struct {
	src    Source
	tone   sequencer.ToneSetter
	clock  timing.Clock
	cfg    Config
	player *Player
	framer *Framer
	logger *slog.Logger

	seq    *sequencer.Sequencer
	seqCfg *sequencer.Config
	songs  map[string]song.Song
	ack    io.Writer

	lastAlive time.Time
	received  uint64
	played    uint64
}

type Option func(*Dispatcher) error

// WithSongs enables "SONG <name>" tokens. Songs are played once with the
// given tempo settings, whatever its Loop value.
func WithSongs(cfg sequencer.Config, songs ...song.Song) Option {
	return func(d *Dispatcher) error {
		cfg.Loop = false
		if err := cfg.Validate(); err != nil {
			return err
		}
		d.seqCfg = &cfg
		d.songs = make(map[string]song.Song, len(songs))
		for _, s := range songs {
			d.songs[strings.ToLower(s.Name)] = s
		}
		return nil
	}
}

// WithAck sends a short acknowledgement line for every handled command.
func WithAck(w io.Writer) Option {
	return func(d *Dispatcher) error {
		d.ack = w
		return nil
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) error {
		d.logger = l
		return nil
	}
}

func New(src Source, tone sequencer.ToneSetter, clock timing.Clock, cfg Config, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		src:    src,
		tone:   tone,
		clock:  clock,
		cfg:    cfg,
		framer: NewFramer(cfg.BufferSize, cfg.MessageTimeout),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, fmt.Errorf("failed to configure dispatcher: %w", err)
		}
	}
	if d.seqCfg != nil {
		seq, err := sequencer.New(tone, clock, *d.seqCfg, sequencer.WithLogger(d.logger))
		if err != nil {
			return nil, err
		}
		d.seq = seq
	}
	d.player = NewPlayer(tone, clock, cfg.NoteDuration, cfg.Gap)
	d.player.logger = d.logger
	return d, nil
}

// Run polls the source until ctx is cancelled or the source reaches EOF.
// Cancellation is noticed between commands, never while one is playing.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher started", "mode", d.cfg.Mode.String())
	d.lastAlive = d.clock.Now()
	defer d.tone.SetTone(0)

	for {
		if ctx.Err() != nil {
			d.logger.Info("dispatcher stopped", "received", d.received, "played", d.played)
			return nil
		}

		done, err := d.poll(ctx)
		if err != nil {
			return err
		}
		if done {
			d.logger.Info("input closed", "received", d.received, "played", d.played)
			return nil
		}
		d.clock.Sleep(d.cfg.PollInterval)
	}
}

func (d *Dispatcher) poll(ctx context.Context) (bool, error) {
	now := d.clock.Now()
	if now.Sub(d.lastAlive) > d.cfg.Heartbeat {
		d.logger.Info("alive", "rx_len", d.framer.Len(), "received", d.received)
		d.lastAlive = now
	}

	b, ok, err := d.src.Poll()
	if err != nil {
		if errors.Is(err, io.EOF) {
			if tok, ok := d.framer.Flush(); ok {
				d.HandleToken(ctx, tok)
			}
			return true, nil
		}
		return false, fmt.Errorf("poll source: %w", err)
	}

	if ok {
		d.received++
		d.HandleByte(ctx, b)
		return false, nil
	}

	if d.cfg.Mode == TokenMode {
		if tok, ok := d.framer.Expire(now); ok {
			d.HandleToken(ctx, tok)
		}
	}
	return false, nil
}

// HandleByte processes one received byte according to the mode.
func (d *Dispatcher) HandleByte(ctx context.Context, b byte) {
	if d.cfg.Mode == TokenMode {
		if tok, ok := d.framer.Push(b, d.clock.Now()); ok {
			d.HandleToken(ctx, tok)
		}
		return
	}

	hz, ok := ByteFrequencies[b]
	if !ok {
		d.logger.Debug("rest byte", "byte", b)
		d.acknowledge("REST")
		d.play(note.Silence)
		return
	}
	d.acknowledge(fmt.Sprintf("OK %c %.0fHz", b, hz))
	d.play(note.Hertz(hz))
}

// HandleToken resolves and plays a complete token.
func (d *Dispatcher) HandleToken(ctx context.Context, token string) {
	d.logger.Debug("token", "raw", token)

	if name, ok := songRequest(token); ok {
		d.playSong(ctx, name)
		return
	}

	p, err := note.Parse(token)
	if err != nil {
		d.logger.Warn("invalid note token", "token", strings.TrimSpace(token), "error", err)
		d.acknowledge("ERR " + strings.TrimSpace(token))
		if d.cfg.OnInvalid == Ignore {
			return
		}
		p = note.Silence
	} else {
		d.acknowledge("OK " + p.String())
	}
	d.play(p)
}

func (d *Dispatcher) play(p note.Pitch) {
	d.played++
	d.player.Play(p)
}

func (d *Dispatcher) playSong(ctx context.Context, name string) {
	s, ok := d.songs[strings.ToLower(name)]
	if d.seq == nil || !ok {
		d.logger.Warn("unknown song", "song", name)
		d.acknowledge("ERR SONG " + name)
		return
	}
	d.acknowledge("OK SONG " + s.Name)
	d.played++
	if err := d.seq.Play(ctx, s); err != nil {
		d.logger.Warn("song stopped", "song", s.Name, "error", err)
	}
}

func (d *Dispatcher) acknowledge(msg string) {
	if d.ack == nil {
		return
	}
	if _, err := io.WriteString(d.ack, msg+"\n"); err != nil {
		d.logger.Warn("failed to send acknowledgement", "error", err)
	}
}

func songRequest(token string) (string, bool) {
	fields := strings.Fields(token)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "SONG") {
		return "", false
	}
	return fields[1], true
}
