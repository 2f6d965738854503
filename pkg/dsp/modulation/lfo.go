// Package modulation provides low frequency oscillators for modulating
// instrument parameters.
package modulation

import (
	"math"
)

// Waveform represents the LFO waveform shape
type Waveform int

const (
	// WaveformSine produces a sine wave
	WaveformSine Waveform = iota
	// WaveformTriangle produces a triangle wave
	WaveformTriangle
	// WaveformSquare produces a square wave
	WaveformSquare
	// WaveformSawtooth produces a sawtooth wave (ramp up)
	WaveformSawtooth
	// WaveformRandom produces random values (sample & hold noise)
	WaveformRandom
)

const randomSeed uint32 = 1

// LFO implements a Low Frequency Oscillator for modulation. Its output is
// fully determined by its settings and the samples generated since the
// last Reset.
type LFO struct {
	sampleRate float64

	frequency float64  // Frequency in Hz
	phase     float64  // Current phase (0-1)
	waveform  Waveform // Waveform type
	phaseInc  float64

	// For random waveform
	randState     uint32
	currentRandom float64
	randomCounter int
	randomPeriod  int
}

// NewLFO creates a new LFO
func NewLFO(sampleRate float64) *LFO {
	lfo := &LFO{
		sampleRate: sampleRate,
		frequency:  1.0,
		waveform:   WaveformSine,
		randState:  randomSeed,
	}

	lfo.updatePhaseIncrement()
	return lfo
}

// SetFrequency sets the LFO frequency in Hz
func (l *LFO) SetFrequency(hz float64) {
	hz = math.Max(0.01, math.Min(20.0, hz)) // Limit to reasonable LFO range
	if hz == l.frequency {
		return
	}
	l.frequency = hz
	l.updatePhaseIncrement()
}

// SetWaveform sets the LFO waveform
func (l *LFO) SetWaveform(waveform Waveform) {
	if waveform == l.waveform {
		return
	}
	l.waveform = waveform
	if waveform == WaveformRandom {
		l.currentRandom = l.nextRandom()
		l.randomCounter = 0
	}
}

// SetPhase sets the current phase (0-1)
func (l *LFO) SetPhase(phase float64) {
	l.phase = phase - math.Floor(phase) // Wrap to 0-1
}

// updatePhaseIncrement updates the phase increment based on frequency
func (l *LFO) updatePhaseIncrement() {
	l.phaseInc = l.frequency / l.sampleRate
	l.randomPeriod = max(int(l.sampleRate/l.frequency), 1)
}

// generateWaveform generates the raw waveform value for current phase
func (l *LFO) generateWaveform() float64 {
	switch l.waveform {
	case WaveformSine:
		return math.Sin(2.0 * math.Pi * l.phase)

	case WaveformTriangle:
		if l.phase < 0.5 {
			return 4.0*l.phase - 1.0
		}
		return 3.0 - 4.0*l.phase

	case WaveformSquare:
		if l.phase < 0.5 {
			return 1.0
		}
		return -1.0

	case WaveformSawtooth:
		return 2.0*l.phase - 1.0

	case WaveformRandom:
		if l.randomCounter >= l.randomPeriod {
			l.randomCounter = 0
			l.currentRandom = l.nextRandom()
		}
		l.randomCounter++
		return l.currentRandom

	default:
		return 0.0
	}
}

// Process generates the next LFO sample in [-1, 1]
func (l *LFO) Process() float64 {
	wave := l.generateWaveform()

	l.phase += l.phaseInc
	if l.phase >= 1.0 {
		l.phase -= 1.0
	}
	return wave
}

// ProcessBuffer fills a buffer with LFO values - no allocations
func (l *LFO) ProcessBuffer(output []float32) {
	for i := range output {
		output[i] = float32(l.Process())
	}
}

// GetPhase returns the current phase (0-1)
func (l *LFO) GetPhase() float64 {
	return l.phase
}

// Reset returns the LFO to its state after construction, keeping its
// frequency and waveform.
func (l *LFO) Reset() {
	l.phase = 0.0
	l.randomCounter = 0
	l.randState = randomSeed
	l.currentRandom = 0.0
	if l.waveform == WaveformRandom {
		l.currentRandom = l.nextRandom()
	}
}

// nextRandom returns a value in [-1, 1) from a linear congruential generator.
func (l *LFO) nextRandom() float64 {
	l.randState = l.randState*1664525 + 1013904223
	return 2.0*float64(l.randState)/float64(1<<32) - 1.0
}
