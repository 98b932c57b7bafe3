package note

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"maze.io/x/math32"
)

// MaxTokenLen is the number of bytes of a token that are examined.
// Anything beyond it is dropped before trimming.
const MaxTokenLen = 31

const (
	// ReferenceHz is the frequency of A4.
	ReferenceHz = 440.0
	// ReferenceNumber is the note number of A4.
	ReferenceNumber = 69
)

var (
	ErrEmpty         = errors.New("empty token")
	ErrLetter        = errors.New("invalid note letter")
	ErrOctaveMissing = errors.New("octave missing")
	ErrOctave        = errors.New("invalid octave")
	ErrRange         = errors.New("pitch out of range")
)

// Kind tells apart the three possible outcomes of resolving a token.
type Kind int

const (
	Invalid Kind = iota
	Rest
	Tone
)

func (k Kind) String() string {
	switch k {
	case Rest:
		return "rest"
	case Tone:
		return "tone"
	default:
		return "invalid"
	}
}

// Pitch is a resolved note token. Hz is strictly positive and finite when
// Kind is Tone, zero otherwise.
type Pitch struct {
	Kind Kind
	Hz   float32
}

// Silence is the Rest pitch.
var Silence = Pitch{Kind: Rest}

// Hertz builds a Tone pitch from a raw frequency. Non-positive values are rests.
func Hertz(hz float32) Pitch {
	if hz <= 0 || math.IsNaN(float64(hz)) {
		return Silence
	}
	return Pitch{Kind: Tone, Hz: hz}
}

func (p Pitch) IsRest() bool   { return p.Kind == Rest }
func (p Pitch) IsValid() bool  { return p.Kind != Invalid }
func (p Pitch) Sounding() bool { return p.Kind == Tone }

func (p Pitch) String() string {
	switch p.Kind {
	case Tone:
		return fmt.Sprintf("%s (%.2fHz)", Name(p.Hz), p.Hz)
	case Rest:
		return "REST"
	default:
		return "INVALID"
	}
}

// semitone offsets from C
var letterOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Resolve turns a note token such as "C4", "D#4", "Eb4" or "REST" into a
// pitch. Resolution failures yield an Invalid pitch, never an error.
func Resolve(token string) Pitch {
	p, _ := Parse(token)
	return p
}

// Parse is Resolve with the reason for an Invalid result attached.
func Parse(token string) (Pitch, error) {
	if len(token) > MaxTokenLen {
		token = token[:MaxTokenLen]
	}
	s := strings.TrimSpace(token)

	if strings.EqualFold(s, "REST") || strings.EqualFold(s, "R") {
		return Silence, nil
	}
	if s == "" {
		return Pitch{}, ErrEmpty
	}

	letter := upper(s[0])
	base, ok := letterOffsets[letter]
	if !ok {
		return Pitch{}, fmt.Errorf("%w '%c'", ErrLetter, s[0])
	}

	idx := 1
	accidental := 0
	if idx < len(s) {
		switch s[idx] {
		case '#':
			accidental = 1
			idx++
		case 'b', 'B':
			accidental = -1
			idx++
		}
	}

	if idx >= len(s) {
		return Pitch{}, ErrOctaveMissing
	}
	octave, err := parseOctave(s[idx:])
	if err != nil {
		return Pitch{}, err
	}

	hz := FromNumber((octave+1)*12 + base + accidental)
	if hz <= 0 || math.IsInf(float64(hz), 0) {
		return Pitch{}, fmt.Errorf("%w: octave %d", ErrRange, octave)
	}
	return Pitch{Kind: Tone, Hz: hz}, nil
}

// parseOctave accepts an optional minus sign followed by one or more digits.
func parseOctave(s string) (int, error) {
	digits := s
	negative := false
	if digits[0] == '-' {
		negative = true
		digits = digits[1:]
	}
	if digits == "" {
		return 0, fmt.Errorf("%w %q", ErrOctave, s)
	}

	octave := 0
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w %q", ErrOctave, s)
		}
		octave = octave*10 + int(c-'0')
		if octave > 1000 {
			return 0, fmt.Errorf("%w %q", ErrOctave, s)
		}
	}
	if negative {
		octave = -octave
	}
	return octave, nil
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// FromNumber returns the equal-tempered frequency of a note number, A4 = 69.
func FromNumber(n int) float32 {
	return ReferenceHz * math32.Pow(2, float32(n-ReferenceNumber)/12)
}
