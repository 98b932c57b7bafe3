package speaker

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/valerio/go-buzzer/buzzer/tone"
)

const (
	DefaultSampleRate = 44100
	DefaultVolume     = 0.2
)

// Voice is a tone.Channel that can be listened to: its registers are
// rendered as a mono float32 stream by Read.
type Voice struct {
	mu     sync.Mutex
	regs   tone.Registers
	osc    *tone.Oscillator
	volume float32
	buf    []float32
}

var _ tone.Channel = (*Voice)(nil)

func NewVoice(sampleRate int, systemClock uint32, volume float32) *Voice {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if volume < 0 || volume > 1 {
		volume = DefaultVolume
	}
	return &Voice{
		osc:    tone.NewOscillator(sampleRate, systemClock),
		volume: volume,
	}
}

func (v *Voice) SetClockDivider(div float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.regs.SetClockDivider(div)
}

func (v *Voice) SetWrap(top uint16) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.regs.SetWrap(top)
}

func (v *Voice) SetLevel(level uint16) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.regs.SetLevel(level)
}

func (v *Voice) SetEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.regs.SetEnabled(enabled)
}

func (v *Voice) DriveLow() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.regs.DriveLow()
}

// Program is the waveform currently programmed.
func (v *Voice) Program() tone.Program {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.regs.Program()
}

// Read fills p with little-endian float32 samples. It never blocks and
// never fails; a silent channel yields zeros.
func (v *Voice) Read(p []byte) (int, error) {
	n := len(p) / 4

	v.mu.Lock()
	prog := v.regs.Program()
	if cap(v.buf) < n {
		v.buf = make([]float32, n)
	}
	samples := v.buf[:n]
	v.osc.Fill(prog, samples)
	v.mu.Unlock()

	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s*v.volume))
	}
	// trailing partial sample
	for i := n * 4; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
