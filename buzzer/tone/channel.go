package tone

// Channel is one hardware square-wave generator. Only a Driver should
// write to it.
type Channel interface {
	SetClockDivider(div float32)
	SetWrap(top uint16)
	SetLevel(level uint16)
	SetEnabled(enabled bool)

	// DriveLow forces the output pin low while the channel is disabled.
	DriveLow()
}

// Registers is a simulated channel that keeps the last value written to
// each register. It backs dry runs and is embedded by the audio outputs.
type Registers struct {
	Divider float32
	Wrap    uint16
	Level   uint16
	Enabled bool
	PinLow  bool

	// Writes counts register writes, including DriveLow.
	Writes int
}

var _ Channel = (*Registers)(nil)

func (r *Registers) SetClockDivider(div float32) {
	r.Divider = div
	r.Writes++
}

func (r *Registers) SetWrap(top uint16) {
	r.Wrap = top
	r.Writes++
}

func (r *Registers) SetLevel(level uint16) {
	r.Level = level
	r.Writes++
}

func (r *Registers) SetEnabled(enabled bool) {
	r.Enabled = enabled
	if enabled {
		r.PinLow = false
	}
	r.Writes++
}

func (r *Registers) DriveLow() {
	r.PinLow = true
	r.Writes++
}

// Program reads the registers back as a Program.
func (r *Registers) Program() Program {
	if !r.Enabled {
		return Off
	}
	return Program{
		Divider: r.Divider,
		Period:  uint32(r.Wrap),
		Duty:    uint32(r.Level),
		Enabled: true,
	}
}
