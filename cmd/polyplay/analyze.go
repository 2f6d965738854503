package main

import (
	"fmt"
	"io"
	"math"

	"github.com/justyntemme/polyvoice/pkg/dsp/analysis"
	"github.com/justyntemme/polyvoice/pkg/dsp/gain"
	"github.com/justyntemme/polyvoice/pkg/framework/debug"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

const analysisFFTSize = 8192

// Report summarizes a mono render.
type Report struct {
	Stats    debug.AnalysisResult
	Problems []string

	PeakFrequency float64
	PeakLevel     float64
	Bands         []float64
}

func analyze(samples []float32, sampleRate float64) (*Report, error) {
	r := &Report{
		Stats:    debug.NewAudioAnalyzer().Analyze(samples),
		Problems: debug.CheckBuffer(samples, "output"),
	}

	spectrum, err := analysis.NewSpectrumAnalyzer(analysisFFTSize, sampleRate, analysis.BlackmanHarrisWindow)
	if err != nil {
		return nil, err
	}
	spectrum.SetAveraging(analysis.PeakHold, 0)
	spectrum.Process(samples)
	if spectrum.Frames() > 0 {
		r.PeakFrequency, r.PeakLevel = spectrum.GetPeakFrequency(20)
		r.Bands = spectrum.GetOctaveBands(analysis.StandardOctaveBands())
	}
	return r, nil
}

// nearestNote names the equal-tempered note closest to freq and the
// offset from it in cents.
func nearestNote(freq float64) (string, float64) {
	pitch := 69 + 12*math.Log2(freq/440)
	note := math.Round(pitch)
	if note < 0 || note > 127 {
		return "-", 0
	}
	return midi.NoteNumberToName(uint8(note)), 100 * (pitch - note)
}

func (r *Report) Write(w io.Writer) {
	s := r.Stats
	fmt.Fprintf(w, "peak %.1f dB  rms %.1f dB  dc %.4f  zero crossings %d\n",
		gain.LinearToDb(float64(s.Peak)), gain.LinearToDb(float64(s.RMS)), s.DC, s.ZeroCrossings)

	for _, p := range r.Problems {
		fmt.Fprintf(w, "warning: %s\n", p)
	}

	if r.Bands == nil {
		fmt.Fprintln(w, "render too short for spectral analysis")
		return
	}
	if r.PeakLevel > 0 {
		name, cents := nearestNote(r.PeakFrequency)
		fmt.Fprintf(w, "dominant %.1f Hz (%s %+.0f cents) at %.1f dB\n",
			r.PeakFrequency, name, cents, analysis.ToDB(r.PeakLevel))
	}

	fmt.Fprintln(w, "octave bands:")
	for i, center := range analysis.StandardOctaveBands() {
		fmt.Fprintf(w, "  %7.1f Hz %7.1f dB\n", center, analysis.ToDB(r.Bands[i]))
	}
}
