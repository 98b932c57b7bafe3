package song

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-buzzer/buzzer/note"
)

func TestParse(t *testing.T) {
	src := `
name demo
# comment line
E4 4
REST 2          # trailing comment
C4 Eb4 G4 8 arp
A4 C5 E5 6 1
D#4 R R 3 0
F#3 4 arp
`
	s, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name)
	require.Len(t, s.Steps, 6)

	assert.Equal(t, Single(note.Resolve("E4"), 4), s.Steps[0])
	assert.Equal(t, Single(note.Silence, 2), s.Steps[1])
	assert.Equal(t, Chord(note.Resolve("C4"), note.Resolve("D#4"), note.Resolve("G4"), 8), s.Steps[2])
	assert.True(t, s.Steps[3].Arpeggio)
	assert.Equal(t, uint32(6), s.Steps[3].Ticks)
	assert.False(t, s.Steps[4].Arpeggio)
	assert.Equal(t, note.Resolve("D#4"), s.Steps[4].Lead())

	assert.True(t, s.Steps[5].Arpeggio)
	assert.Equal(t, note.Silence, s.Steps[5].Notes[1])

	assert.NoError(t, s.Validate())
	assert.Equal(t, uint64(27), s.TotalTicks())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
		line string
	}{
		{"bad note", "C4 4\nH4 4\n", ErrInvalidNote, "line 2"},
		{"missing octave", "C 4\n", note.ErrOctaveMissing, "line 1"},
		{"bad ticks", "C4 four\n", ErrSyntax, "line 1"},
		{"negative ticks", "C4 -1\n", ErrSyntax, "line 1"},
		{"three fields", "C4 E4 4\n", ErrSyntax, "line 1"},
		{"bad flag", "C4 E4 G4 4 yes\n", ErrSyntax, "line 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	for _, s := range Builtins() {
		t.Run(s.Name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, s))

			back, err := Parse(&buf)
			require.NoError(t, err)
			assert.Equal(t, s.Name, back.Name)
			assert.Equal(t, s.Steps, back.Steps)
		})
	}
}

func TestWrite_CanonicalForm(t *testing.T) {
	s := Song{Name: "x", Steps: []Step{
		Single(note.Resolve("Bb4"), 4),
		Chord(note.Resolve("C4"), note.Resolve("E4"), note.Silence, 8),
	}}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s))
	assert.Equal(t, "name x\nA#4 REST REST 4 0\nC4 E4 REST 8 1\n", buf.String())
}

func TestBuiltins(t *testing.T) {
	all := Builtins()
	require.Len(t, all, 2)
	assert.Equal(t, "chords", all[0].Name)
	assert.Equal(t, "intro", all[1].Name)

	chords, ok := Builtin(DefaultName)
	require.True(t, ok)
	assert.Len(t, chords.Steps, 8)
	assert.Equal(t, Chord(note.Resolve("A4"), note.Resolve("C5"), note.Resolve("E5"), 8), chords.Steps[7])

	intro, ok := Builtin("intro")
	require.True(t, ok)
	require.Len(t, intro.Steps, 9)
	for _, step := range intro.Steps {
		assert.NotZero(t, step.Ticks, "the zero-length malformed entry is not part of the table")
	}

	_, ok = Builtin("nope")
	assert.False(t, ok)
}

func TestBuiltin_ReturnsCopy(t *testing.T) {
	a, _ := Builtin("intro")
	a.Steps[0].Ticks = 99
	b, _ := Builtin("intro")
	assert.Equal(t, uint32(4), b.Steps[0].Ticks)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "riff.txt")
	require.NoError(t, os.WriteFile(path, []byte("C4 2\nG4 2\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "riff", s.Name)
	assert.Len(t, s.Steps, 2)

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	s := Song{Steps: []Step{Single(note.Pitch{Kind: note.Invalid}, 4)}}
	assert.ErrorIs(t, s.Validate(), ErrInvalidNote)
}

func TestStep_Slot(t *testing.T) {
	c := Chord(note.Resolve("C4"), note.Resolve("E4"), note.Resolve("G4"), 8)
	assert.Equal(t, c.Notes[0], c.Slot(0))
	assert.Equal(t, c.Notes[2], c.Slot(5))
	assert.Equal(t, c.Notes[0], c.Slot(6))
}
