package speaker

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-buzzer/buzzer/tone"
)

func decode(p []byte) []float32 {
	out := make([]float32, len(p)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return out
}

func TestVoice_SilentByDefault(t *testing.T) {
	v := NewVoice(8000, tone.DefaultSystemClock, 0.5)
	tone.NewDriver(v)

	p := make([]byte, 64)
	for i := range p {
		p[i] = 0xAA
	}
	n, err := v.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 64, n)
	for _, s := range decode(p) {
		assert.Zero(t, s)
	}
}

func TestVoice_SquareWave(t *testing.T) {
	v := NewVoice(8000, tone.DefaultSystemClock, 0.5)
	d := tone.NewDriver(v)
	d.SetTone(1000)

	assert.True(t, v.Program().Enabled)

	p := make([]byte, 16*4)
	_, err := v.Read(p)
	require.NoError(t, err)

	// 1kHz at 8kHz sample rate: four high, four low
	got := decode(p)
	want := []float32{0.5, 0.5, 0.5, 0.5, -0.5, -0.5, -0.5, -0.5}
	assert.Equal(t, want, got[:8])
	assert.Equal(t, want, got[8:])

	d.SetTone(0)
	_, err = v.Read(p)
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 16), decode(p))
}

func TestVoice_PartialSample(t *testing.T) {
	v := NewVoice(8000, tone.DefaultSystemClock, 1)
	tone.NewDriver(v).SetTone(1000)

	p := []byte{1, 2, 3, 4, 5, 6}
	n, err := v.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, []byte{0, 0}, p[4:])
	assert.Equal(t, float32(1), decode(p[:4])[0])
}

func TestVoice_Defaults(t *testing.T) {
	v := NewVoice(0, 0, 3)
	assert.Equal(t, DefaultSampleRate, v.osc.SampleRate())
	assert.Equal(t, float32(DefaultVolume), v.volume)
}
