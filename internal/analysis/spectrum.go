package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// WavenumberPerTHz converts THz to cm⁻¹.
const WavenumberPerTHz = 33.35641

// Spectrum is a one-sided power spectrum of a real series.
type Spectrum struct {
	Frequencies []float64
	Power       []float64
}

// PowerSpectrum transforms data sampled every spacing time units after
// removing its mean. Frequencies are in reciprocal units of spacing.
func PowerSpectrum(data []float64, spacing float64) (*Spectrum, error) {
	n := len(data)
	if n < 2 {
		return nil, fmt.Errorf("analysis: need at least 2 samples, got %d", n)
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("analysis: sample spacing must be positive, got %g", spacing)
	}

	mean := stat.Mean(data, nil)
	centred := make([]float64, n)
	for i, v := range data {
		centred[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centred)

	s := &Spectrum{
		Frequencies: make([]float64, len(coeff)),
		Power:       make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		s.Frequencies[i] = fft.Freq(i) / spacing
		s.Power[i] = (real(c)*real(c) + imag(c)*imag(c)) / float64(n)
	}
	return s, nil
}

// Dominant returns the frequency with the most power, ignoring the zero
// frequency bin.
func (s *Spectrum) Dominant() float64 {
	best := 0
	for i := 1; i < len(s.Power); i++ {
		if best == 0 || s.Power[i] > s.Power[best] {
			best = i
		}
	}
	return s.Frequencies[best]
}

// Nyquist is the highest frequency the spectrum resolves.
func (s *Spectrum) Nyquist() float64 {
	return s.Frequencies[len(s.Frequencies)-1]
}
