// Package analysis provides offline spectral analysis of rendered audio:
// windowed FFT magnitude spectra, overlapping-frame spectrum averaging,
// dominant frequency estimation and octave band levels.
package analysis
