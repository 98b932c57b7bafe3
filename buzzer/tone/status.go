package tone

import "github.com/valerio/go-buzzer/buzzer/note"

// Status is a snapshot of the channel for monitors and reports.
type Status struct {
	Enabled   bool
	Requested float32 // frequency passed to SetTone
	Frequency float64 // frequency produced by the registers
	Divider   float32
	Period    uint32
	DutyCycle float64
	Note      string
}

// Status describes what the channel is currently playing.
func (d *Driver) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Status{
		Enabled:   d.prog.Enabled,
		Requested: d.lastHz,
		Frequency: d.prog.Frequency(d.systemClock),
		Divider:   d.prog.Divider,
		Period:    d.prog.Period,
		DutyCycle: d.prog.DutyCycle(),
		Note:      "REST",
	}
	if s.Enabled {
		s.Note = note.Name(float32(s.Frequency))
	}
	return s
}
