package smc

import (
	"math"

	"dipctl/internal/dynamo"
)

// SuperTwisting is the second-order sliding-mode law
//
//	u = -K1*sqrt(|sigma|)*sign(sigma) + z
//	zdot = -K2*sign(sigma)
//
// which reaches sigma = sigma-dot = 0 in finite time with a continuous
// dominant term. The sign function is smoothed through the configured
// switching method inside the boundary layer; the integral state z is
// clamped to the actuator limit so it cannot wind up during saturation.
type SuperTwisting struct {
	Surf Surface
	K1   float64
	K2   float64

	opt Options
	eq  *EquivalentControl
}

// NewSuperTwisting builds the law from the gain order
// [K1, K2, k1, k2, lam1, lam2].
func NewSuperTwisting(gains []float64, opt Options) *SuperTwisting {
	return &SuperTwisting{
		Surf: Surface{K1: gains[2], K2: gains[3], Lam1: gains[4], Lam2: gains[5]},
		K1:   gains[0],
		K2:   gains[1],
		opt:  opt,
		eq:   &EquivalentControl{Model: opt.Model, Fmax: opt.Fmax},
	}
}

func (s *SuperTwisting) Variant() Variant             { return VariantSuperTwisting }
func (s *SuperTwisting) Sigma(x dynamo.State) float64 { return s.Surf.Value(x) }
func (s *SuperTwisting) Gains() []float64 {
	return []float64{s.K1, s.K2, s.Surf.K1, s.Surf.K2, s.Surf.Lam1, s.Surf.Lam2}
}

func (s *SuperTwisting) Init() Memory {
	return Memory{K1: s.K1, K2: s.K2}
}

func (s *SuperTwisting) Compute(x dynamo.State, m Memory, t float64) (float64, Memory) {
	sigma := s.Surf.Value(x)

	eps := s.opt.BoundaryLayer
	sg := Sat(s.opt.Switch, sigma/eps)

	uEq := s.eq.Compute(x, s.Surf)
	dir := s.opt.direction(s.eq, x, s.Surf)

	// integral state advances one step, clamped against windup
	m.Integral = Clamp(m.Integral-m.K2*sg*s.opt.Dt, -s.opt.Fmax, s.opt.Fmax)

	u := uEq + dir*(-m.K1*math.Sqrt(math.Abs(sigma))*sg+m.Integral)
	u = Clamp(u, -s.opt.Fmax, s.opt.Fmax)

	m.LastControl = u
	return u, m
}
