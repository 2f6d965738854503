package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ktye/fft"
)

// WindowFunc represents a window function type
type WindowFunc int

const (
	RectangularWindow WindowFunc = iota
	HannWindow
	HammingWindow
	BlackmanWindow
	BlackmanHarrisWindow
	FlatTopWindow
)

// ErrInvalidSize is returned for FFT sizes that are not a power of two.
var ErrInvalidSize = errors.New("fft size must be a power of two")

// FFT computes windowed magnitude spectra of real signals. The size must
// be a power of two.
type FFT struct {
	size       int
	transform  fft.FFT
	windowData []float64
	work       []complex128
	magnitude  []float64
}

// NewFFT creates a new FFT processor with the specified size and window function
func NewFFT(size int, window WindowFunc) (*FFT, error) {
	// fft.New rounds other sizes down instead of failing.
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("fft size %d: %w", size, ErrInvalidSize)
	}
	transform, err := fft.New(size)
	if err != nil {
		return nil, fmt.Errorf("fft size %d: %w", size, err)
	}

	f := &FFT{
		size:       size,
		transform:  transform,
		windowData: windowCoefficients(window, size),
		work:       make([]complex128, size),
		magnitude:  make([]float64, size/2+1),
	}
	return f, nil
}

func (f *FFT) Size() int {
	return f.size
}

// windowCoefficients pre-calculates the window coefficients
func windowCoefficients(window WindowFunc, size int) []float64 {
	w := make([]float64, size)
	n := float64(size)

	cosine := func(i int, harmonic float64) float64 {
		return math.Cos(2.0 * math.Pi * harmonic * float64(i) / (n - 1.0))
	}

	for i := range w {
		switch window {
		case HannWindow:
			w[i] = 0.5 * (1.0 - cosine(i, 1))
		case HammingWindow:
			w[i] = 0.54 - 0.46*cosine(i, 1)
		case BlackmanWindow:
			w[i] = math.Max(0, 0.42-0.5*cosine(i, 1)+0.08*cosine(i, 2))
		case BlackmanHarrisWindow:
			w[i] = 0.35875 - 0.48829*cosine(i, 1) + 0.14128*cosine(i, 2) - 0.01168*cosine(i, 3)
		case FlatTopWindow:
			w[i] = 0.21557895 - 0.41663158*cosine(i, 1) + 0.277263158*cosine(i, 2) -
				0.083578947*cosine(i, 3) + 0.006947368*cosine(i, 4)
		default:
			w[i] = 1.0
		}
	}
	return w
}

// Forward returns the magnitude spectrum of input, bins 0 to size/2,
// normalized so a full-scale sine reads about 1 under a rectangular
// window. Input shorter than the FFT size is zero padded. The returned
// slice is reused by the next call.
func (f *FFT) Forward(input []float64) []float64 {
	var gain float64
	for i := range f.work {
		var x float64
		if i < len(input) {
			x = input[i]
		}
		f.work[i] = complex(x*f.windowData[i], 0)
		gain += f.windowData[i]
	}

	spectrum := f.transform.Transform(f.work)

	scale := 2.0 / gain
	for i := range f.magnitude {
		f.magnitude[i] = cmplx.Abs(spectrum[i]) * scale
	}
	return f.magnitude
}

// GetFrequencyBin returns the frequency corresponding to a given FFT bin
func (f *FFT) GetFrequencyBin(bin int, sampleRate float64) float64 {
	return float64(bin) * sampleRate / float64(f.size)
}

// ToDB converts a linear magnitude to decibels, floored at -120 dB.
func ToDB(mag float64) float64 {
	if mag <= 1e-6 {
		return -120.0
	}
	return 20.0 * math.Log10(mag)
}
