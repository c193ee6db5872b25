package smc

import "math"

// Switching selects how the discontinuous sign term is smoothed inside the
// boundary layer.
type Switching int

const (
	// SwitchTanh uses tanh(sigma/eps), smooth everywhere.
	SwitchTanh Switching = iota
	// SwitchLinear clamps sigma/eps to [-1, 1].
	SwitchLinear
)

// Sat evaluates the smoothed switching function at z = sigma/eps.
func Sat(method Switching, z float64) float64 {
	switch method {
	case SwitchLinear:
		return Clamp(z, -1.0, 1.0)
	default:
		return math.Tanh(z)
	}
}

// Clamp bounds x into [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Sign returns -1, 0 or 1.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// WrapToPi wraps an angle to [-pi, pi] to avoid numeric drift. Non-finite
// input comes back as NaN.
func WrapToPi(a float64) float64 {
	r := math.Mod(a, 2.0*math.Pi)
	if r > math.Pi {
		r -= 2.0 * math.Pi
	} else if r < -math.Pi {
		r += 2.0 * math.Pi
	}
	return r
}
