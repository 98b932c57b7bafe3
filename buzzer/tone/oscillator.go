package tone

// Oscillator turns a Program into samples of the square wave the pin
// would produce. Phase is kept across calls so frequency changes don't click.
type Oscillator struct {
	sampleRate  int
	systemClock uint32
	phase       float64
}

func NewOscillator(sampleRate int, systemClock uint32) *Oscillator {
	if systemClock == 0 {
		systemClock = DefaultSystemClock
	}
	return &Oscillator{sampleRate: sampleRate, systemClock: systemClock}
}

// Next returns the next sample: +1 while the output is high, -1 while low
// and 0 when the channel is disabled.
func (o *Oscillator) Next(p Program) float32 {
	if !p.Enabled {
		o.phase = 0
		return 0
	}

	v := float32(-1)
	if o.phase < p.DutyCycle() {
		v = 1
	}

	o.phase += p.Frequency(o.systemClock) / float64(o.sampleRate)
	for o.phase >= 1 {
		o.phase -= 1
	}
	return v
}

// Fill writes len(buf) samples of p.
func (o *Oscillator) Fill(p Program, buf []float32) {
	for i := range buf {
		buf[i] = o.Next(p)
	}
}

func (o *Oscillator) SampleRate() int {
	return o.sampleRate
}
