// Package midi exports songs as Standard MIDI Files.
package midi

import (
	"fmt"
	"io"
	"math"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/valerio/go-buzzer/buzzer/note"
	"github.com/valerio/go-buzzer/buzzer/sequencer"
	"github.com/valerio/go-buzzer/buzzer/song"
)

const (
	// TicksPerStepTick is the MIDI resolution of one sequencer tick.
	TicksPerStepTick = 100

	channel  = 0
	velocity = 100
)

// Build converts s into a two-track SMF: tempo first, then the notes.
// Gate lengths follow cfg; arpeggio steps are written as chords.
func Build(s song.Song, cfg sequencer.Config) (*smf.SMF, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resolution := uint64(cfg.TicksPerBeat) * TicksPerStepTick
	if resolution > math.MaxInt16 {
		return nil, fmt.Errorf("%d ticks per beat is too fine for MIDI", cfg.TicksPerBeat)
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(uint16(resolution))

	var tempo smf.Track
	tempo.Add(0, smf.MetaTrackSequenceName(s.Name))
	tempo.Add(0, smf.MetaTempo(float64(cfg.BPM)))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return nil, fmt.Errorf("failed to add tempo track: %w", err)
	}

	var track smf.Track
	var pending uint32
	for _, step := range s.Steps {
		length := step.Ticks * TicksPerStepTick
		gate := uint32(uint64(length) * uint64(cfg.GatePercent) / 100)
		keys := stepKeys(step)
		if len(keys) == 0 || gate == 0 {
			pending += length
			continue
		}

		for i, k := range keys {
			delta := uint32(0)
			if i == 0 {
				delta = pending
			}
			track.Add(delta, gomidi.NoteOn(channel, k, velocity))
		}
		for i, k := range keys {
			delta := uint32(0)
			if i == 0 {
				delta = gate
			}
			track.Add(delta, gomidi.NoteOff(channel, k))
		}
		pending = length - gate
	}
	track.Close(pending)
	if err := sm.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add note track: %w", err)
	}
	return sm, nil
}

// Export writes s to w as a MIDI file.
func Export(w io.Writer, s song.Song, cfg sequencer.Config) error {
	sm, err := Build(s, cfg)
	if err != nil {
		return err
	}
	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write midi: %w", err)
	}
	return nil
}

// stepKeys returns the distinct MIDI keys a step sounds.
func stepKeys(step song.Step) []uint8 {
	slots := []note.Pitch{step.Lead()}
	if step.Arpeggio {
		slots = step.Notes[:]
	}

	var keys []uint8
	for _, p := range slots {
		if !p.Sounding() {
			continue
		}
		k, ok := note.MIDI(p.Hz)
		if !ok || contains(keys, k) {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

func contains(keys []uint8, k uint8) bool {
	for _, v := range keys {
		if v == k {
			return true
		}
	}
	return false
}
