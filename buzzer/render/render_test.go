package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-buzzer/buzzer/note"
	"github.com/valerio/go-buzzer/buzzer/sequencer"
	"github.com/valerio/go-buzzer/buzzer/song"
	"github.com/valerio/go-buzzer/buzzer/tone"
)

func TestRenderer_SleepRendersSamples(t *testing.T) {
	r := New(8000, tone.DefaultSystemClock)
	d := tone.NewDriver(r)

	d.SetTone(1000)
	r.Sleep(time.Millisecond)
	d.SetTone(0)
	r.Sleep(time.Millisecond)

	require.Len(t, r.Samples(), 16)
	assert.Equal(t, []float32{1, 1, 1, 1, -1, -1, -1, -1}, r.Samples()[:8])
	assert.Equal(t, make([]float32, 8), r.Samples()[8:])
	assert.Equal(t, 2*time.Millisecond, r.Duration())
	assert.Equal(t, 2*time.Millisecond, r.Now().Sub(New(8000, 0).Now()))
}

func TestRenderer_CarriesFractionalSamples(t *testing.T) {
	r := New(1000, 0)
	for i := 0; i < 4; i++ {
		r.Sleep(250 * time.Microsecond)
	}
	assert.Len(t, r.Samples(), 1)

	r.Sleep(0)
	r.Sleep(-time.Second)
	assert.Len(t, r.Samples(), 1)
}

func TestSong_LengthMatchesSchedule(t *testing.T) {
	s := song.Song{Name: "t", Steps: []song.Step{
		song.Single(note.Resolve("A4"), 4),
		song.Chord(note.Resolve("C4"), note.Resolve("E4"), note.Resolve("G4"), 1),
	}}
	s.Steps[1].Arpeggio = true

	cfg := sequencer.DefaultConfig()
	cfg.BPM = 300
	cfg.TicksPerBeat = 4 // 50ms ticks

	r, err := Song(context.Background(), s, cfg, 8000, tone.DefaultSystemClock)
	require.NoError(t, err)

	// 200ms step, then four 12ms arp slices and a 10ms rest
	assert.Equal(t, 258*time.Millisecond, r.Duration())
	assert.InDelta(t, 8*258, len(r.Samples()), 1)
	assert.False(t, r.Enabled)
}

func TestSong_Errors(t *testing.T) {
	_, err := Song(context.Background(), song.Song{Name: "empty"}, sequencer.DefaultConfig(), 8000, 0)
	assert.ErrorIs(t, err, sequencer.ErrEmptySong)

	bad := sequencer.DefaultConfig()
	bad.TicksPerBeat = 0
	_, err = Song(context.Background(), song.Song{Name: "x"}, bad, 8000, 0)
	assert.ErrorIs(t, err, sequencer.ErrBadConfig)
}

func TestWriteWAV(t *testing.T) {
	chords, ok := song.Builtin("chords")
	require.True(t, ok)

	r, err := Song(context.Background(), chords, sequencer.DefaultConfig(), 8000, tone.DefaultSystemClock)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "chords.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, r.WriteWAV(f, 0.5))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, 8000, buf.Format.SampleRate)
	assert.Equal(t, 1, buf.Format.NumChannels)
	require.Len(t, buf.Data, len(r.Samples()))

	peak := 0
	for _, v := range buf.Data {
		if v > peak {
			peak = v
		}
	}
	assert.Equal(t, 16383, peak)
}
