package song

import (
	"errors"
	"fmt"

	"github.com/valerio/go-buzzer/buzzer/note"
)

var (
	ErrSyntax      = errors.New("syntax error")
	ErrInvalidNote = errors.New("invalid note")
)

// Step is one unit of a song: up to three note slots, a length in ticks and
// whether the slots are cycled as an arpeggio or only the first is played.
type Step struct {
	Notes    [3]note.Pitch
	Ticks    uint32
	Arpeggio bool
}

// Single is a one-note step; the other slots are rests.
func Single(p note.Pitch, ticks uint32) Step {
	return Step{
		Notes: [3]note.Pitch{p, note.Silence, note.Silence},
		Ticks: ticks,
	}
}

// Chord is an arpeggio step cycling a, b and c.
func Chord(a, b, c note.Pitch, ticks uint32) Step {
	return Step{
		Notes:    [3]note.Pitch{a, b, c},
		Ticks:    ticks,
		Arpeggio: true,
	}
}

// Slot returns the note played on the i-th arpeggio slice.
func (s Step) Slot(i int) note.Pitch {
	return s.Notes[i%len(s.Notes)]
}

// Lead is the note played by a non-arpeggio step.
func (s Step) Lead() note.Pitch {
	return s.Notes[0]
}

func (s Step) String() string {
	if !s.Arpeggio {
		return fmt.Sprintf("%s x%d", s.Notes[0], s.Ticks)
	}
	return fmt.Sprintf("arp[%s %s %s] x%d", s.Notes[0], s.Notes[1], s.Notes[2], s.Ticks)
}

// Song is an ordered list of steps.
type Song struct {
	Name  string
	Steps []Step
}

// Validate checks that every note slot holds a rest or a playable pitch.
func (s Song) Validate() error {
	for i, step := range s.Steps {
		for j, p := range step.Notes {
			if !p.IsValid() {
				return fmt.Errorf("step %d slot %d: %w", i, j, ErrInvalidNote)
			}
		}
	}
	return nil
}

// TotalTicks is the length of one pass through the song.
func (s Song) TotalTicks() uint64 {
	var total uint64
	for _, step := range s.Steps {
		total += uint64(step.Ticks)
	}
	return total
}
