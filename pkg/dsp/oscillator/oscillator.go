// Package oscillator provides audio oscillators for synthesis
package oscillator

import "math"

// PitchToIncrement converts a fractional MIDI pitch to a per-sample phase
// increment, clamped below Nyquist.
func PitchToIncrement(pitch float64, sampleRate float64) float64 {
	inc := 440.0 * math.Exp2((pitch-69.0)/12.0) / sampleRate
	return math.Min(inc, 0.5)
}

// Oscillator generates periodic waveforms
type Oscillator struct {
	sampleRate float64
	phase      float64
	phaseInc   float64
}

// New creates a new oscillator
func New(sampleRate float64) *Oscillator {
	return &Oscillator{
		sampleRate: sampleRate,
		phaseInc:   440.0 / sampleRate,
	}
}

// SetFrequency sets the oscillator frequency
func (o *Oscillator) SetFrequency(freq float64) {
	o.phaseInc = freq / o.sampleRate
}

// SetIncrement sets the phase increment per sample directly.
func (o *Oscillator) SetIncrement(inc float64) {
	o.phaseInc = inc
}

// SetPhase sets the oscillator phase (0-1)
func (o *Oscillator) SetPhase(phase float64) {
	o.phase = phase - math.Floor(phase) // Wrap to 0-1
}

func (o *Oscillator) Phase() float64 {
	return o.phase
}

// Reset resets the oscillator phase to 0
func (o *Oscillator) Reset() {
	o.phase = 0.0
}

// updatePhase advances the phase and wraps it
func (o *Oscillator) updatePhase() {
	o.phase += o.phaseInc
	if o.phase >= 1.0 {
		o.phase -= math.Floor(o.phase)
	}
}

// Sine generates a sine wave sample
func (o *Oscillator) Sine() float32 {
	sample := float32(math.Sin(2.0 * math.Pi * o.phase))
	o.updatePhase()
	return sample
}

// Saw generates a band-limited sawtooth sample using PolyBLEP.
func (o *Oscillator) Saw() float32 {
	sample := 2.0*o.phase - 1.0
	sample -= polyBLEP(o.phase, o.phaseInc)
	o.updatePhase()
	return float32(sample)
}

// Square generates a band-limited square wave sample
func (o *Oscillator) Square() float32 {
	return o.Pulse(0.5)
}

// Pulse generates a band-limited pulse wave with variable width
func (o *Oscillator) Pulse(width float64) float32 {
	width = math.Max(0.01, math.Min(0.99, width))
	var sample float64
	if o.phase < width {
		sample = 1.0
	} else {
		sample = -1.0
	}
	sample += polyBLEP(o.phase, o.phaseInc)
	sample -= polyBLEP(math.Mod(o.phase+1.0-width, 1.0), o.phaseInc)
	o.updatePhase()
	return float32(sample)
}

// Triangle generates a triangle wave sample
func (o *Oscillator) Triangle() float32 {
	var sample float32
	if o.phase < 0.5 {
		sample = float32(4.0*o.phase - 1.0)
	} else {
		sample = float32(3.0 - 4.0*o.phase)
	}
	o.updatePhase()
	return sample
}

// polyBLEP is the two-sample polynomial correction for a unit step at
// phase 0.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		t /= dt
		return t + t - t*t - 1.0
	}
	if t > 1.0-dt {
		t = (t - 1.0) / dt
		return t*t + t + t + 1.0
	}
	return 0
}
