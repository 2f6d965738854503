package analysis

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func sine(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2.0 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func TestFFT(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		window WindowFunc
	}{
		{"Rectangular 256", 256, RectangularWindow},
		{"Hann 512", 512, HannWindow},
		{"Hamming 1024", 1024, HammingWindow},
		{"Blackman 2048", 2048, BlackmanWindow},
		{"BlackmanHarris 4096", 4096, BlackmanHarrisWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fft, err := NewFFT(tt.size, tt.window)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			sampleRate := 44100.0
			freq := 440.0
			magnitude := fft.Forward(sine(freq, sampleRate, tt.size))
			if len(magnitude) != tt.size/2+1 {
				t.Fatalf("Expected %d bins, got %d", tt.size/2+1, len(magnitude))
			}

			maxBin := 0
			for i, mag := range magnitude {
				if mag > magnitude[maxBin] {
					maxBin = i
				}
			}

			peakFreq := fft.GetFrequencyBin(maxBin, sampleRate)
			tolerance := sampleRate / float64(tt.size)
			if math.Abs(peakFreq-freq) > tolerance {
				t.Errorf("Peak frequency mismatch: expected %f Hz, got %f Hz", freq, peakFreq)
			}
		})
	}
}

func TestFFTInvalidSize(t *testing.T) {
	for _, size := range []int{-4, 0, 1, 3, 100, 1000, 1025} {
		if _, err := NewFFT(size, HannWindow); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("Expected ErrInvalidSize for size %d, got %v", size, err)
		}
	}
}

func TestFFTPowerOfTwoSizes(t *testing.T) {
	for _, size := range []int{2, 64, 1024, 8192} {
		f, err := NewFFT(size, HannWindow)
		if err != nil {
			t.Fatalf("Size %d: unexpected error %v", size, err)
		}
		if f.Size() != size {
			t.Errorf("Expected size %d, got %d", size, f.Size())
		}
	}
}

func TestFFTAmplitude(t *testing.T) {
	size := 1024
	sampleRate := 48000.0
	bin := 32
	freq := float64(bin) * sampleRate / float64(size)

	for _, window := range []WindowFunc{RectangularWindow, HannWindow, FlatTopWindow} {
		t.Run(fmt.Sprintf("Window%d", window), func(t *testing.T) {
			fft, err := NewFFT(size, window)
			if err != nil {
				t.Fatal(err)
			}
			input := sine(freq, sampleRate, size)
			for i := range input {
				input[i] *= 0.5
			}
			magnitude := fft.Forward(input)
			if math.Abs(magnitude[bin]-0.5) > 0.01 {
				t.Errorf("Expected magnitude 0.5 at bin %d, got %f", bin, magnitude[bin])
			}
		})
	}
}

func TestFFTZeroPadsShortInput(t *testing.T) {
	fft, err := NewFFT(256, RectangularWindow)
	if err != nil {
		t.Fatal(err)
	}

	magnitude := fft.Forward(nil)
	for i, m := range magnitude {
		if m != 0 {
			t.Fatalf("Expected silent spectrum, bin %d = %f", i, m)
		}
	}
}

func TestWindowFunctions(t *testing.T) {
	size := 64
	windows := []WindowFunc{HannWindow, HammingWindow, BlackmanWindow, BlackmanHarrisWindow}

	for _, window := range windows {
		w := windowCoefficients(window, size)

		for i := 0; i < size/2; i++ {
			if math.Abs(w[i]-w[size-1-i]) > 1e-12 {
				t.Errorf("Window %d not symmetric at %d: %f vs %f", window, i, w[i], w[size-1-i])
				break
			}
		}
		if w[0] > 0.1 {
			t.Errorf("Window %d should taper at the edges, got %f", window, w[0])
		}
	}

	for i, v := range windowCoefficients(RectangularWindow, size) {
		if v != 1.0 {
			t.Fatalf("Rectangular window should be 1 at %d, got %f", i, v)
		}
	}
}

func TestToDB(t *testing.T) {
	tests := []struct {
		mag float64
		db  float64
	}{
		{1.0, 0.0},
		{0.1, -20.0},
		{0.001, -60.0},
		{0, -120.0},
	}

	for _, tt := range tests {
		if db := ToDB(tt.mag); math.Abs(db-tt.db) > 1e-9 {
			t.Errorf("ToDB(%f): expected %f, got %f", tt.mag, tt.db, db)
		}
	}
}

func BenchmarkFFT(b *testing.B) {
	for _, size := range []int{256, 1024, 4096} {
		b.Run(fmt.Sprintf("Size%d", size), func(b *testing.B) {
			fft, err := NewFFT(size, HannWindow)
			if err != nil {
				b.Fatal(err)
			}
			input := sine(1000, 48000, size)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				fft.Forward(input)
			}
		})
	}
}
