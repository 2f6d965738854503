// Package gain provides level conversion and output saturation.
package gain

import (
	"math"
)

// MinDB is the level reported for silence.
const MinDB = -200.0

// LinearToDb converts a linear amplitude value to decibels.
// Returns MinDB for values <= 0.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return 20.0 * math.Log10(linear)
}

// DbToLinear converts a decibel value to linear amplitude.
// Values <= MinDB return 0.
func DbToLinear(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10.0, db/20.0)
}

// SoftClip passes input unchanged up to threshold and bends anything
// louder towards 1. The curve and its slope are continuous at the
// threshold. threshold must be below 1.
func SoftClip(input, threshold float32) float32 {
	abs := input
	if abs < 0 {
		abs = -abs
	}
	if abs <= threshold {
		return input
	}

	knee := 1 - threshold
	out := threshold + knee*fastTanh32((abs-threshold)/knee)
	if input < 0 {
		return -out
	}
	return out
}

// SoftClipBuffer applies SoftClip to buffer in place.
func SoftClipBuffer(buffer []float32, threshold float32) {
	for i := range buffer {
		buffer[i] = SoftClip(buffer[i], threshold)
	}
}

// fastTanh32 is a rational tanh approximation, exact at 0 and clamped
// to ±1 beyond ±3.
func fastTanh32(x float32) float32 {
	if x < -3 {
		return -1
	}
	if x > 3 {
		return 1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}
