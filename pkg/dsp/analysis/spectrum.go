package analysis

import (
	"math"
	"sync"
)

// AveragingMode defines how the spectrum is averaged over time
type AveragingMode int

const (
	NoAveraging AveragingMode = iota
	ExponentialAveraging
	PeakHold
)

// SpectrumAnalyzer accumulates samples into overlapping FFT frames.
type SpectrumAnalyzer struct {
	mu sync.Mutex

	sampleRate float64
	fft        *FFT
	buffer     []float64
	writePos   int
	hopSize    int
	frames     int

	averaging AveragingMode
	smoothing float64
	spectrum  []float64
}

// NewSpectrumAnalyzer creates a new spectrum analyzer with 50% overlap.
func NewSpectrumAnalyzer(fftSize int, sampleRate float64, window WindowFunc) (*SpectrumAnalyzer, error) {
	fft, err := NewFFT(fftSize, window)
	if err != nil {
		return nil, err
	}
	return &SpectrumAnalyzer{
		sampleRate: sampleRate,
		fft:        fft,
		buffer:     make([]float64, fftSize),
		hopSize:    fftSize / 2,
		smoothing:  0.9,
		spectrum:   make([]float64, fftSize/2+1),
	}, nil
}

// SetAveraging sets how frames are combined. smoothing is the weight of
// the previous spectrum for ExponentialAveraging.
func (sa *SpectrumAnalyzer) SetAveraging(mode AveragingMode, smoothing float64) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	sa.averaging = mode
	if smoothing >= 0 && smoothing < 1 {
		sa.smoothing = smoothing
	}
}

// Process adds samples and returns true when at least one new frame was
// analyzed.
func (sa *SpectrumAnalyzer) Process(samples []float32) bool {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	ready := false
	for _, s := range samples {
		sa.buffer[sa.writePos] = float64(s)
		sa.writePos++

		if sa.writePos == len(sa.buffer) {
			sa.accumulate(sa.fft.Forward(sa.buffer))
			copy(sa.buffer, sa.buffer[sa.hopSize:])
			sa.writePos = len(sa.buffer) - sa.hopSize
			ready = true
		}
	}
	return ready
}

func (sa *SpectrumAnalyzer) accumulate(magnitude []float64) {
	first := sa.frames == 0
	sa.frames++

	switch {
	case sa.averaging == NoAveraging || first:
		copy(sa.spectrum, magnitude)
	case sa.averaging == ExponentialAveraging:
		for i := range magnitude {
			sa.spectrum[i] = sa.spectrum[i]*sa.smoothing + magnitude[i]*(1-sa.smoothing)
		}
	case sa.averaging == PeakHold:
		for i := range magnitude {
			sa.spectrum[i] = math.Max(sa.spectrum[i], magnitude[i])
		}
	}
}

// Frames returns the number of frames analyzed since the last Reset.
func (sa *SpectrumAnalyzer) Frames() int {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	return sa.frames
}

// GetSpectrum returns a copy of the current magnitude spectrum
func (sa *SpectrumAnalyzer) GetSpectrum() []float64 {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	result := make([]float64, len(sa.spectrum))
	copy(result, sa.spectrum)
	return result
}

// GetFrequencyForBin returns the frequency corresponding to a bin index
func (sa *SpectrumAnalyzer) GetFrequencyForBin(bin int) float64 {
	return sa.fft.GetFrequencyBin(bin, sa.sampleRate)
}

// GetBinForFrequency returns the bin index for a given frequency
func (sa *SpectrumAnalyzer) GetBinForFrequency(freq float64) int {
	return int(math.Round(freq * float64(sa.fft.Size()) / sa.sampleRate))
}

// GetPeakFrequency finds the strongest bin above minFreq and refines its
// frequency by parabolic interpolation of the neighbouring bins.
func (sa *SpectrumAnalyzer) GetPeakFrequency(minFreq float64) (freq, magnitude float64) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	peak := -1
	for i := max(sa.GetBinForFrequency(minFreq), 1); i < len(sa.spectrum)-1; i++ {
		if peak < 0 || sa.spectrum[i] > sa.spectrum[peak] {
			peak = i
		}
	}
	if peak < 0 || sa.spectrum[peak] == 0 {
		return 0, 0
	}

	a := ToDB(sa.spectrum[peak-1])
	b := ToDB(sa.spectrum[peak])
	c := ToDB(sa.spectrum[peak+1])
	offset := 0.0
	if d := a - 2*b + c; d != 0 {
		offset = 0.5 * (a - c) / d
	}
	return sa.GetFrequencyForBin(peak) + offset*sa.sampleRate/float64(sa.fft.Size()), sa.spectrum[peak]
}

// GetOctaveBands returns the RMS magnitude of the bins in each octave
// band around centerFreqs.
func (sa *SpectrumAnalyzer) GetOctaveBands(centerFreqs []float64) []float64 {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	bands := make([]float64, len(centerFreqs))
	for i, center := range centerFreqs {
		lower := max(sa.GetBinForFrequency(center/math.Sqrt2), 0)
		upper := min(sa.GetBinForFrequency(center*math.Sqrt2), len(sa.spectrum)-1)

		energy := 0.0
		count := 0
		for bin := lower; bin <= upper; bin++ {
			energy += sa.spectrum[bin] * sa.spectrum[bin]
			count++
		}
		if count > 0 {
			bands[i] = math.Sqrt(energy / float64(count))
		}
	}
	return bands
}

// Reset clears the buffered samples and the accumulated spectrum.
func (sa *SpectrumAnalyzer) Reset() {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	clear(sa.buffer)
	clear(sa.spectrum)
	sa.writePos = 0
	sa.frames = 0
}

// StandardOctaveBands returns standard octave band center frequencies
func StandardOctaveBands() []float64 {
	return []float64{31.5, 63, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}
}
