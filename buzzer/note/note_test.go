package note

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ReferencePitches(t *testing.T) {
	tests := []struct {
		token string
		hz    float32
		delta float64
	}{
		{"A4", 440.0, 0.01},
		{"C4", 261.63, 0.5},
		{"Eb4", 311.13, 0.5},
		{"D#4", 311.13, 0.5},
		{"a5", 880.0, 0.01},
		{"Cb4", 246.94, 0.5},
		{"B#3", 261.63, 0.5},
		{"C-1", 8.18, 0.01},
		{"  F#3 \t", 185.0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			p := Resolve(tt.token)
			require.Equal(t, Tone, p.Kind)
			assert.InDelta(t, tt.hz, p.Hz, tt.delta)
		})
	}
}

func TestResolve_AllNotesArePositive(t *testing.T) {
	for _, letter := range "CDEFGAB" {
		for _, acc := range []string{"", "#", "b"} {
			for octave := -1; octave <= 9; octave++ {
				token := string(letter) + acc + itoa(octave)
				p := Resolve(token)
				assert.Equal(t, Tone, p.Kind, "token %s", token)
				assert.Greater(t, p.Hz, float32(0), "token %s", token)
			}
		}
	}
}

func TestResolve_EnharmonicEquivalence(t *testing.T) {
	pairs := [][2]string{{"A#4", "Bb4"}, {"C#5", "Db5"}, {"F#2", "Gb2"}, {"E#4", "F4"}}
	for _, pair := range pairs {
		a, b := Resolve(pair[0]), Resolve(pair[1])
		assert.InDelta(t, a.Hz, b.Hz, 0.01, "%s vs %s", pair[0], pair[1])
	}
}

func TestResolve_Rest(t *testing.T) {
	for _, token := range []string{"REST", "rest", "R", "r", " Rest\n"} {
		p := Resolve(token)
		assert.Equal(t, Rest, p.Kind, "token %q", token)
		assert.Equal(t, float32(0), p.Hz)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		token string
		err   error
	}{
		{"H4", ErrLetter},
		{"C", ErrOctaveMissing},
		{"C#", ErrOctaveMissing},
		{"Eb", ErrOctaveMissing},
		{"", ErrEmpty},
		{"   ", ErrEmpty},
		{"Cx4", ErrOctave},
		{"C-", ErrOctave},
		{"C4x", ErrOctave},
		{"C+4", ErrOctave},
		{"C999", ErrRange},
		{"C-999", ErrRange},
		{"1C4", ErrLetter},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			p, err := Parse(tt.token)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, Invalid, p.Kind)
			assert.False(t, p.IsValid())
			assert.Equal(t, Invalid, Resolve(tt.token).Kind)
		})
	}
}

func TestParse_TruncatesLongTokens(t *testing.T) {
	// the octave digit falls past the examined prefix
	p, err := Parse(strings.Repeat(" ", 30) + "C4")
	assert.ErrorIs(t, err, ErrOctaveMissing)
	assert.Equal(t, Invalid, p.Kind)

	// trailing garbage past the prefix is dropped, not rejected
	p = Resolve("A4" + strings.Repeat(" ", MaxTokenLen-2) + "garbage")
	assert.Equal(t, Tone, p.Kind)
	assert.InDelta(t, 440.0, p.Hz, 0.01)
}

func TestName(t *testing.T) {
	tests := []struct {
		hz   float32
		name string
	}{
		{440, "A4"},
		{261.63, "C4"},
		{311.13, "D#4"},
		{8.18, "C-1"},
		{4186.01, "C8"},
		{0, "REST"},
		{-5, "REST"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, Name(tt.hz))
	}
}

func TestMIDI(t *testing.T) {
	n, ok := MIDI(Resolve("C4").Hz)
	assert.True(t, ok)
	assert.Equal(t, uint8(60), n)

	_, ok = MIDI(0)
	assert.False(t, ok)

	_, ok = MIDI(FromNumber(200))
	assert.False(t, ok)
}

func TestNameRoundTrip(t *testing.T) {
	for n := 0; n < 128; n++ {
		p := Resolve(Name(FromNumber(n)))
		require.Equal(t, Tone, p.Kind)
		got, ok := Number(p.Hz)
		assert.True(t, ok)
		assert.Equal(t, n, got)
	}
}

func itoa(i int) string {
	if i < 0 {
		return "-" + itoa(-i)
	}
	return string(rune('0' + i))
}
