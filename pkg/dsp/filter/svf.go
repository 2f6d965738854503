// Package filter provides digital signal processing filters
package filter

import "math"

// Mode selects which SVF output Process returns.
type Mode int

const (
	Lowpass Mode = iota
	Bandpass
	Highpass
	Notch
)

// SVF implements a single-channel state variable filter with a
// zero-delay feedback topology. Every response is available from each
// sample.
type SVF struct {
	// Filter parameters
	g float32 // frequency coefficient
	k float32 // damping coefficient (1/Q)

	ic1eq float32 // integrator 1 state
	ic2eq float32 // integrator 2 state
}

// SVFOutputs holds all filter outputs
type SVFOutputs struct {
	Lowpass  float32
	Highpass float32
	Bandpass float32
	Notch    float32
}

// NewSVF creates a filter at 1 kHz with a Butterworth Q for sampleRate.
func NewSVF(sampleRate float64) *SVF {
	s := &SVF{}
	s.SetFrequencyAndQ(sampleRate, 1000, math.Sqrt2/2)
	return s
}

// Reset clears the filter state
func (s *SVF) Reset() {
	s.ic1eq = 0
	s.ic2eq = 0
}

// SetFrequency sets the cutoff, clamped to [10 Hz, 0.49*sampleRate].
func (s *SVF) SetFrequency(sampleRate, frequency float64) {
	frequency = math.Max(10, math.Min(frequency, 0.49*sampleRate))
	// Pre-warp the frequency for the bilinear transform
	s.g = float32(math.Tan(math.Pi * frequency / sampleRate))
}

// SetQ sets the filter resonance (Q factor), at least 0.1.
func (s *SVF) SetQ(q float64) {
	s.k = float32(1.0 / math.Max(q, 0.1))
}

// SetFrequencyAndQ sets both frequency and Q in one call
func (s *SVF) SetFrequencyAndQ(sampleRate, frequency, q float64) {
	s.SetFrequency(sampleRate, frequency)
	s.SetQ(q)
}

// ProcessSample processes a single sample and returns all outputs
func (s *SVF) ProcessSample(input float32) SVFOutputs {
	g := s.g
	k := s.k
	a1 := 1.0 / (1.0 + g*(g+k))
	a2 := g * a1
	a3 := g * a2

	v3 := input - s.ic2eq
	v1 := a1*s.ic1eq + a2*v3
	v2 := s.ic2eq + a2*s.ic1eq + a3*v3

	s.ic1eq = 2.0*v1 - s.ic1eq
	s.ic2eq = 2.0*v2 - s.ic2eq

	return SVFOutputs{
		Lowpass:  v2,
		Bandpass: v1,
		Highpass: input - k*v1 - v2,
		Notch:    input - k*v1,
	}
}

// Process filters one sample with the response selected by mode.
func (s *SVF) Process(input float32, mode Mode) float32 {
	out := s.ProcessSample(input)
	switch mode {
	case Bandpass:
		return out.Bandpass
	case Highpass:
		return out.Highpass
	case Notch:
		return out.Notch
	default:
		return out.Lowpass
	}
}

// ProcessBuffer filters buffer in place - no allocations
func (s *SVF) ProcessBuffer(buffer []float32, mode Mode) {
	for i := range buffer {
		buffer[i] = s.Process(buffer[i], mode)
	}
}
