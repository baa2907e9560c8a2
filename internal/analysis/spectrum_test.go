package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDominantFrequency(t *testing.T) {
	const (
		n       = 500
		spacing = 0.01
		freq    = 2.0
	)
	data := make([]float64, n)
	for i := range data {
		data[i] = 300 + 5*math.Sin(2*math.Pi*freq*float64(i)*spacing)
	}

	s, err := PowerSpectrum(data, spacing)
	require.NoError(t, err)
	assert.Len(t, s.Power, n/2+1)
	assert.InDelta(t, freq, s.Dominant(), 1e-9)
	assert.InDelta(t, 50.0, s.Nyquist(), 1e-9)
	assert.InDelta(t, 0, s.Power[0], 1e-9, "mean is removed")
}

func TestPowerSpectrumRejectsBadInput(t *testing.T) {
	_, err := PowerSpectrum([]float64{1}, 0.01)
	assert.Error(t, err)

	_, err = PowerSpectrum([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
}
