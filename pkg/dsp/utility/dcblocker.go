// Package utility provides small DSP building blocks.
package utility

import "math"

// DCBlocker removes DC offset with a first-order high-pass filter:
// y[n] = x[n] - x[n-1] + R*y[n-1].
type DCBlocker struct {
	x1 float32
	y1 float32

	coefficient float32
}

// NewDCBlocker creates a DC blocker. The cutoff is typically 5-20 Hz.
func NewDCBlocker(cutoffHz float32, sampleRate float64) *DCBlocker {
	r := 1.0 - 2.0*math.Pi*float64(cutoffHz)/sampleRate

	// keep the pole inside the unit circle and the cutoff sub-audio
	r = math.Max(0.9, math.Min(r, 0.999))

	return &DCBlocker{coefficient: float32(r)}
}

// Process filters one sample.
func (dc *DCBlocker) Process(input float32) float32 {
	output := input - dc.x1 + dc.coefficient*dc.y1
	dc.x1 = input
	dc.y1 = output
	return output
}

// ProcessBuffer filters buffer in place.
func (dc *DCBlocker) ProcessBuffer(buffer []float32) {
	for i := range buffer {
		buffer[i] = dc.Process(buffer[i])
	}
}

func (dc *DCBlocker) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}
