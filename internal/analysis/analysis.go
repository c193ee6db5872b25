// Package analysis post-processes closed-loop trajectories: sliding-surface
// decay rates, settling times, chattering indices, control-signal spectra,
// and phase portraits.
package analysis

import (
	"math"
)

// sigmaFloor is the magnitude below which surface samples are treated as
// numerically zero and excluded from the log-linear fit.
const sigmaFloor = 1e-9

// DecayRate fits ln|sigma(t)| = a + r*t by least squares and returns r. A
// negative rate means exponential convergence toward the sliding surface;
// the magnitude is the decay constant. Returns 0 when fewer than two usable
// samples remain.
func DecayRate(times, sigma []float64) float64 {
	n := len(times)
	if n == 0 || len(sigma) != n {
		return 0
	}

	var sumT, sumY, sumTT, sumTY float64
	count := 0
	for i := 0; i < n; i++ {
		s := math.Abs(sigma[i])
		if s < sigmaFloor || math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		y := math.Log(s)
		sumT += times[i]
		sumY += y
		sumTT += times[i] * times[i]
		sumTY += times[i] * y
		count++
	}
	if count < 2 {
		return 0
	}

	denom := float64(count)*sumTT - sumT*sumT
	if denom == 0 {
		return 0
	}
	return (float64(count)*sumTY - sumT*sumY) / denom
}

// SettlingTime returns the earliest time after which |sigma| stays within
// tol for the rest of the trajectory, or -1 if it never settles.
func SettlingTime(times, sigma []float64, tol float64) float64 {
	n := len(times)
	if n == 0 || len(sigma) != n || tol <= 0 {
		return -1
	}

	last := -1
	for i := n - 1; i >= 0; i-- {
		if math.Abs(sigma[i]) > tol {
			last = i
			break
		}
	}
	if last == n-1 {
		return -1
	}
	return times[last+1]
}

// ChatterIndex measures control-signal roughness as the total variation of u
// divided by the trajectory duration. Smooth laws score near the actuation
// bandwidth; bang-bang switching scores orders of magnitude higher.
func ChatterIndex(times, control []float64) float64 {
	n := len(times)
	if n < 2 || len(control) != n {
		return 0
	}
	duration := times[n-1] - times[0]
	if duration <= 0 {
		return 0
	}

	variation := 0.0
	for i := 1; i < n; i++ {
		variation += math.Abs(control[i] - control[i-1])
	}
	return variation / duration
}

// PeakOvershoot returns the largest |sigma| observed after the first time
// the trajectory enters the tol band. Zero means it never left the band
// again.
func PeakOvershoot(sigma []float64, tol float64) float64 {
	entered := false
	peak := 0.0
	for _, s := range sigma {
		a := math.Abs(s)
		if !entered {
			if a <= tol {
				entered = true
			}
			continue
		}
		if a > tol && a > peak {
			peak = a
		}
	}
	return peak
}
