package song

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"sort"
)

// DefaultName is the song played when none is chosen.
const DefaultName = "chords"

//go:embed songs/*.txt
var builtinFiles embed.FS

var builtins = mustLoadBuiltins()

// mustLoadBuiltins parses the embedded tables. They go through the same
// resolver as user files, so a misspelled note fails at startup rather
// than playing silence.
func mustLoadBuiltins() map[string]Song {
	entries, err := builtinFiles.ReadDir("songs")
	if err != nil {
		panic(err)
	}

	songs := make(map[string]Song, len(entries))
	for _, e := range entries {
		data, err := builtinFiles.ReadFile(path.Join("songs", e.Name()))
		if err != nil {
			panic(err)
		}
		s, err := Parse(bytes.NewReader(data))
		if err != nil {
			panic(fmt.Sprintf("builtin song %s: %v", e.Name(), err))
		}
		if err := s.Validate(); err != nil {
			panic(fmt.Sprintf("builtin song %s: %v", e.Name(), err))
		}
		songs[s.Name] = *s
	}
	return songs
}

// Builtin returns a copy of the named built-in song.
func Builtin(name string) (Song, bool) {
	s, ok := builtins[name]
	if !ok {
		return Song{}, false
	}
	s.Steps = append([]Step(nil), s.Steps...)
	return s, true
}

// Builtins lists all built-in songs sorted by name.
func Builtins() []Song {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Song, 0, len(names))
	for _, name := range names {
		s, _ := Builtin(name)
		out = append(out, s)
	}
	return out
}
