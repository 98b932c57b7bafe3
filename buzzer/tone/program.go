package tone

import "math"

// Register limits of the pulse generator.
// Reference: RP2040 datasheet, 4.5 PWM (16-bit TOP, 8.4 fractional divider).
const (
	MaxPeriod  = 65535
	MaxDivider = 256.0

	// DefaultSystemClock is the RP2040 clk_sys frequency.
	DefaultSystemClock = 125_000_000
)

// Program is the register state of a channel: the counter runs at
// clk/Divider and wraps after Period, the output is high below Duty.
type Program struct {
	Divider float32
	Period  uint32
	Duty    uint32
	Enabled bool
}

// Off is the program of a silenced channel.
var Off = Program{}

// Compute finds the smallest power-of-two divider for which the period
// fits the 16-bit wrap register. Frequencies too low for the largest
// divider are clamped to MaxPeriod instead of being rejected.
func Compute(systemClock uint32, hz float32) Program {
	if !(hz > 0) {
		return Off
	}

	div := float32(1)
	period := periodFor(systemClock, div, hz)
	for period > MaxPeriod {
		div *= 2
		if div > MaxDivider {
			div = MaxDivider
			period = MaxPeriod
			break
		}
		period = periodFor(systemClock, div, hz)
	}

	top := uint32(period)
	return Program{
		Divider: div,
		Period:  top,
		Duty:    (top + 1) / 2,
		Enabled: true,
	}
}

func periodFor(systemClock uint32, div, hz float32) int64 {
	counts := math.Round(float64(systemClock) / (float64(div) * float64(hz)))
	if counts > math.MaxInt32 {
		return math.MaxInt32
	}
	if counts < 1 {
		return 0
	}
	return int64(counts) - 1
}

// Frequency decodes the output frequency of p, zero when disabled.
func (p Program) Frequency(systemClock uint32) float64 {
	if !p.Enabled || p.Divider <= 0 {
		return 0
	}
	return float64(systemClock) / (float64(p.Divider) * float64(p.Period+1))
}

// DutyCycle is the fraction of each period the output is high.
func (p Program) DutyCycle() float64 {
	if !p.Enabled {
		return 0
	}
	return float64(p.Duty) / float64(p.Period+1)
}
