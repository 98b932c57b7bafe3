package tone

import (
	"log/slog"
	"sync"
)

// Driver owns a single Channel and is the only writer of its registers.
type Driver struct {
	mu          sync.Mutex
	ch          Channel
	systemClock uint32
	prog        Program
	lastHz      float32
	logger      *slog.Logger
}

type Option func(*Driver)

// WithSystemClock sets the clock feeding the channel's divider.
func WithSystemClock(hz uint32) Option {
	return func(d *Driver) {
		if hz > 0 {
			d.systemClock = hz
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// NewDriver takes ownership of ch and silences it.
func NewDriver(ch Channel, opts ...Option) *Driver {
	d := &Driver{
		ch:          ch,
		systemClock: DefaultSystemClock,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.silence()
	return d
}

// SetTone programs the channel for hz, or silences it for hz <= 0.
// It never fails: frequencies below the register range are clamped.
func (d *Driver) SetTone(hz float32) {
	p := Compute(d.systemClock, hz)

	d.mu.Lock()
	defer d.mu.Unlock()

	if !p.Enabled {
		d.silence()
		d.logger.Debug("tone off")
		return
	}
	if p == d.prog {
		return
	}

	d.ch.SetClockDivider(p.Divider)
	d.ch.SetWrap(uint16(p.Period))
	d.ch.SetLevel(uint16(p.Duty))
	d.ch.SetEnabled(true)
	d.prog = p
	d.lastHz = hz

	d.logger.Debug("tone on", "freq_hz", hz, "div", p.Divider, "top", p.Period)
}

func (d *Driver) silence() {
	d.ch.SetEnabled(false)
	d.ch.DriveLow()
	d.prog = Off
	d.lastHz = 0
}

// Program returns the register program currently applied.
func (d *Driver) Program() Program {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prog
}

// Frequency is the output frequency the hardware actually produces.
func (d *Driver) Frequency() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prog.Frequency(d.systemClock)
}

func (d *Driver) SystemClock() uint32 {
	return d.systemClock
}
