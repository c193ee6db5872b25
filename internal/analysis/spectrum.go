package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum is the one-sided power spectrum of a sampled signal.
type Spectrum struct {
	Freqs []float64 // Hz
	Power []float64
}

// ControlSpectrum transforms the control signal into the frequency domain.
// Chattering shows up as power concentrated near the Nyquist rate, where a
// smooth stabilizing force has next to none. The mean is removed first so the
// DC bin does not swamp the rest.
func ControlSpectrum(control []float64, dt float64) *Spectrum {
	n := len(control)
	if n < 4 || dt <= 0 {
		return nil
	}

	mean := 0.0
	for _, u := range control {
		mean += u
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, u := range control {
		centered[i] = u - mean
	}

	coeffs := fft.FFTReal(centered)
	half := n / 2

	s := &Spectrum{
		Freqs: make([]float64, half),
		Power: make([]float64, half),
	}
	for i := 0; i < half; i++ {
		s.Freqs[i] = float64(i) / (float64(n) * dt)
		a := cmplx.Abs(coeffs[i])
		s.Power[i] = a * a
	}
	return s
}

// DominantFrequency returns the frequency bin carrying the most power,
// ignoring DC.
func (s *Spectrum) DominantFrequency() float64 {
	if s == nil || len(s.Power) < 2 {
		return 0
	}
	best := 1
	for i := 2; i < len(s.Power); i++ {
		if s.Power[i] > s.Power[best] {
			best = i
		}
	}
	return s.Freqs[best]
}

// HighFrequencyFraction returns the share of total signal power above cutHz.
// Near 1 means the actuator is mostly switching; near 0 means smooth control.
func (s *Spectrum) HighFrequencyFraction(cutHz float64) float64 {
	if s == nil {
		return 0
	}
	var total, high float64
	for i := 1; i < len(s.Power); i++ {
		total += s.Power[i]
		if s.Freqs[i] > cutHz {
			high += s.Power[i]
		}
	}
	if total == 0 {
		return 0
	}
	return high / total
}
