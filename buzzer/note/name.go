package note

import (
	"strconv"

	"maze.io/x/math32"
)

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Number returns the nearest note number for a frequency. The boolean is
// false for non-positive frequencies.
func Number(hz float32) (int, bool) {
	if !(hz > 0) {
		return 0, false
	}
	n := ReferenceNumber + 12*math32.Log2(hz/ReferenceHz)
	return int(math32.Floor(n + 0.5)), true
}

// MIDI is Number restricted to the 0-127 range of a MIDI key.
func MIDI(hz float32) (uint8, bool) {
	n, ok := Number(hz)
	if !ok || n < 0 || n > 127 {
		return 0, false
	}
	return uint8(n), true
}

// Name spells the nearest note to hz with sharps, e.g. "D#4".
// Non-positive frequencies are spelled "REST".
func Name(hz float32) string {
	n, ok := Number(hz)
	if !ok {
		return "REST"
	}
	octave := floorDiv(n, 12) - 1
	return sharpNames[n-floorDiv(n, 12)*12] + strconv.Itoa(octave)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
