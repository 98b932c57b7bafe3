package song

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/valerio/go-buzzer/buzzer/note"
)

// Song files are plain text, one step per line:
//
//	name Intro riff
//	E4 4             # single note, 4 ticks
//	C4 E4 G4 8 arp   # arpeggio
//	REST 4
//	C4 E4 G4 8 1     # canonical form: a b c ticks arp(0|1)
//
// A field starting with '#' comments out the rest of the line.

// Parse reads a song. Every note is checked by the resolver; the first
// problem is reported with its line number.
func Parse(r io.Reader) (*Song, error) {
	s := &Song{}
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		fields := stripComment(strings.Fields(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		if strings.EqualFold(fields[0], "name") {
			s.Name = strings.Join(fields[1:], " ")
			continue
		}

		step, err := parseStep(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		s.Steps = append(s.Steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read song: %w", err)
	}
	return s, nil
}

// Load parses the song file at path. Songs without a name directive are
// named after the file.
func Load(path string) (*Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open song: %w", err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

func stripComment(fields []string) []string {
	for i, f := range fields {
		if strings.HasPrefix(f, "#") {
			return fields[:i]
		}
	}
	return fields
}

func parseStep(fields []string) (Step, error) {
	var step Step

	switch {
	case len(fields) == 5:
		arp, err := parseFlag(fields[4])
		if err != nil {
			return step, err
		}
		step.Arpeggio = arp
		fields = fields[:4]
	case strings.EqualFold(fields[len(fields)-1], "arp"):
		step.Arpeggio = true
		fields = fields[:len(fields)-1]
	}

	var tokens []string
	switch len(fields) {
	case 2:
		tokens = []string{fields[0], "REST", "REST"}
	case 4:
		tokens = fields[:3]
	default:
		return step, fmt.Errorf("%w: expected 'note ticks' or 'a b c ticks', got %d fields", ErrSyntax, len(fields))
	}

	for i, token := range tokens {
		p, err := note.Parse(token)
		if err != nil {
			return step, fmt.Errorf("%w %q: %w", ErrInvalidNote, token, err)
		}
		step.Notes[i] = p
	}

	ticks, err := strconv.ParseUint(fields[len(fields)-1], 10, 32)
	if err != nil {
		return step, fmt.Errorf("%w: ticks %q", ErrSyntax, fields[len(fields)-1])
	}
	step.Ticks = uint32(ticks)
	return step, nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "arp":
		return true, nil
	case "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: arpeggio flag %q", ErrSyntax, s)
}

// Write emits s in the canonical five-field form, readable by Parse.
func Write(w io.Writer, s Song) error {
	bw := bufio.NewWriter(w)
	if s.Name != "" {
		fmt.Fprintf(bw, "name %s\n", s.Name)
	}
	for _, step := range s.Steps {
		arp := 0
		if step.Arpeggio {
			arp = 1
		}
		fmt.Fprintf(bw, "%s %s %s %d %d\n",
			token(step.Notes[0]), token(step.Notes[1]), token(step.Notes[2]), step.Ticks, arp)
	}
	return bw.Flush()
}

func token(p note.Pitch) string {
	if p.Sounding() {
		return note.Name(p.Hz)
	}
	return "REST"
}
