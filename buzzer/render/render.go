// Package render plays songs offline: time is simulated and the square
// wave is captured as samples instead of driving a pin.
package render

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/valerio/go-buzzer/buzzer/sequencer"
	"github.com/valerio/go-buzzer/buzzer/song"
	"github.com/valerio/go-buzzer/buzzer/timing"
	"github.com/valerio/go-buzzer/buzzer/tone"
)

const DefaultSampleRate = 44100

// Renderer is both the channel a Driver writes and the clock a player
// sleeps on. Every Sleep appends the samples the channel would produce.
// It is not safe for concurrent use.
type Renderer struct {
	tone.Registers

	osc        *tone.Oscillator
	sampleRate int
	start      time.Time
	elapsed    time.Duration
	owed       float64 // fractional sample carried between sleeps
	samples    []float32
}

var (
	_ tone.Channel = (*Renderer)(nil)
	_ timing.Clock = (*Renderer)(nil)
)

func New(sampleRate int, systemClock uint32) *Renderer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Renderer{
		osc:        tone.NewOscillator(sampleRate, systemClock),
		sampleRate: sampleRate,
		start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *Renderer) Now() time.Time {
	return r.start.Add(r.elapsed)
}

// Sleep advances simulated time by d, rendering the current waveform.
func (r *Renderer) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	r.elapsed += d

	want := d.Seconds()*float64(r.sampleRate) + r.owed
	n := int(want)
	r.owed = want - float64(n)

	prog := r.Program()
	for i := 0; i < n; i++ {
		r.samples = append(r.samples, r.osc.Next(prog))
	}
}

func (r *Renderer) Samples() []float32 {
	return r.samples
}

func (r *Renderer) SampleRate() int {
	return r.sampleRate
}

// Duration is the simulated time rendered so far.
func (r *Renderer) Duration() time.Duration {
	return r.elapsed
}

// WriteWAV encodes the rendered samples as 16-bit mono PCM.
func (r *Renderer) WriteWAV(w io.WriteSeeker, volume float32) error {
	if volume <= 0 || volume > 1 {
		volume = 1
	}

	data := make([]int, len(r.samples))
	for i, s := range r.samples {
		data[i] = int(s * volume * 32767)
	}

	enc := wav.NewEncoder(w, r.sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: r.sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return nil
}

// Song renders one pass of s. Looping is disabled whatever cfg says.
func Song(ctx context.Context, s song.Song, cfg sequencer.Config, sampleRate int, systemClock uint32) (*Renderer, error) {
	r := New(sampleRate, systemClock)
	driver := tone.NewDriver(r, tone.WithSystemClock(systemClock))

	cfg.Loop = false
	seq, err := sequencer.New(driver, r, cfg)
	if err != nil {
		return nil, err
	}
	if err := seq.Play(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to render %q: %w", s.Name, err)
	}
	return r, nil
}
