package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrNonUniformGrid = errors.New("analysis: samples are not evenly spaced")

// PowerSpectrum returns the magnitude of the first half of the DFT of data.
func PowerSpectrum(data []float64) []float64 {
	spectrum := fft.FFTReal(data)
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// DominantPeriod returns the period of the strongest non-constant frequency
// in values sampled at the evenly spaced times. The resolution is limited
// by the sampled span: a signal must complete at least one cycle.
func DominantPeriod(times, values []float64) (float64, error) {
	n := len(times)
	if n != len(values) {
		return 0, fmt.Errorf("analysis: %d times but %d values", n, len(values))
	}
	if n < 4 {
		return 0, fmt.Errorf("analysis: need at least 4 samples, got %d", n)
	}

	dt := (times[n-1] - times[0]) / float64(n-1)
	for k := 1; k < n; k++ {
		if math.Abs(times[k]-times[k-1]-dt) > 1e-6*dt {
			return 0, ErrNonUniformGrid
		}
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range values {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	peak, best := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > best {
			peak, best = k, ps[k]
		}
	}
	if peak == 0 {
		return 0, errors.New("analysis: signal is constant")
	}

	return float64(n) * dt / float64(peak), nil
}
