package smc

import "dipctl/internal/dynamo"

// Surface defines the sliding manifold
//
//	sigma = k1*(omega1 + lam1*theta1) + k2*(omega2 + lam2*theta2)
//
// whose zero set is the target reduced-order dynamics. The grouped form above
// and the weighted sum k1*omega1 + k2*omega2 + k1*lam1*theta1 + k2*lam2*theta2
// are the same value; the grouped form is what the adaptive laws reason about.
type Surface struct {
	K1   float64
	K2   float64
	Lam1 float64
	Lam2 float64
}

// Value evaluates sigma at the given state. Angles are wrapped to [-pi, pi]
// first so a rollout that winds past a full turn does not inflate sigma by
// multiples of 2*pi.
func (s Surface) Value(x dynamo.State) float64 {
	return s.K1*(x[dynamo.Omega1]+s.Lam1*WrapToPi(x[dynamo.Theta1])) +
		s.K2*(x[dynamo.Omega2]+s.Lam2*WrapToPi(x[dynamo.Theta2]))
}

// Weights returns the row vector L = [0, k1, k2] that maps generalized
// accelerations into sigma-dot.
func (s Surface) Weights() [3]float64 {
	return [3]float64{0, s.K1, s.K2}
}

// Correction is the velocity part of sigma-dot that does not involve
// accelerations: k1*lam1*omega1 + k2*lam2*omega2.
func (s Surface) Correction(x dynamo.State) float64 {
	return s.K1*s.Lam1*x[dynamo.Omega1] + s.K2*s.Lam2*x[dynamo.Omega2]
}

// GainScale measures the overall surface gain magnitude; the controllability
// threshold of the feedforward estimator scales with it.
func (s Surface) GainScale() float64 {
	abs := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	}
	return abs(s.K1) + abs(s.K2)
}
