// Package param provides instrument parameters, their per-buffer
// automation view and value smoothing.
package param

import (
	"math"
)

type SmoothingType int

const (
	// LinearSmoothing reaches the target in a fixed number of samples.
	LinearSmoothing SmoothingType = iota
	// ExponentialSmoothing is a one-pole filter towards the target.
	ExponentialSmoothing
)

// Smoother removes zipper noise from stepped control values.
type Smoother struct {
	smoothingType SmoothingType
	current       float64
	target        float64
	rate          float64
	threshold     float64
	isSmoothing   bool
	step          float64
}

// NewSmoother creates a smoother. rate is the coefficient (0.9-0.999) for
// exponential smoothing and the ramp length in samples for linear.
func NewSmoother(smoothingType SmoothingType, rate float64) *Smoother {
	return &Smoother{
		smoothingType: smoothingType,
		rate:          rate,
		threshold:     0.0001,
	}
}

// NewSmootherForTime configures a smoother to settle in roughly timeMs.
func NewSmootherForTime(smoothingType SmoothingType, sampleRate, timeMs float64) *Smoother {
	samples := sampleRate * timeMs / 1000.0
	if smoothingType == ExponentialSmoothing {
		// -60dB after timeMs
		return NewSmoother(smoothingType, math.Exp(-6.908/samples))
	}
	return NewSmoother(smoothingType, samples)
}

func (s *Smoother) SetTarget(target float64) {
	if math.Abs(target-s.target) < s.threshold {
		return
	}

	s.target = target
	s.isSmoothing = true

	if s.smoothingType == LinearSmoothing && s.rate > 0 {
		s.step = (target - s.current) / s.rate
	}
}

// Next advances one sample and returns the smoothed value.
func (s *Smoother) Next() float64 {
	if !s.isSmoothing {
		return s.current
	}

	switch s.smoothingType {
	case ExponentialSmoothing:
		s.current += (s.target - s.current) * (1.0 - s.rate)
		if math.Abs(s.current-s.target) < s.threshold {
			s.current = s.target
			s.isSmoothing = false
		}

	case LinearSmoothing:
		s.current += s.step
		reached := (s.step > 0 && s.current >= s.target) || (s.step < 0 && s.current <= s.target)
		if s.rate <= 0 || s.step == 0 || reached || math.Abs(s.current-s.target) < s.threshold {
			s.current = s.target
			s.isSmoothing = false
		}
	}

	return s.current
}

func (s *Smoother) IsSmoothing() bool {
	return s.isSmoothing
}

// Reset jumps to value without smoothing.
func (s *Smoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.isSmoothing = false
}

func (s *Smoother) SetThreshold(threshold float64) {
	s.threshold = threshold
}
