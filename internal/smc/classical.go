package smc

import (
	"math"

	"dipctl/internal/dynamo"
)

// Classical is the boundary-layer sliding-mode law
//
//	u = u_eq - K*sat(sigma/eps) - kd*sigma
//
// with an optionally state-dependent boundary layer eps(sigma) = eps0 +
// eps1*|sigma| and an optional hysteresis band that zeroes the switching term
// for |sigma| < hysteresis*eps0. It keeps no state between steps.
type Classical struct {
	Surf Surface
	K    float64 // switching gain
	Kd   float64 // surface damping
	opt  Options
	eq   *EquivalentControl
}

// NewClassical builds the law from the gain order [k1, k2, lam1, lam2, K, kd].
func NewClassical(gains []float64, opt Options) *Classical {
	return &Classical{
		Surf: Surface{K1: gains[0], K2: gains[1], Lam1: gains[2], Lam2: gains[3]},
		K:    gains[4],
		Kd:   gains[5],
		opt:  opt,
		eq:   &EquivalentControl{Model: opt.Model, Fmax: opt.Fmax},
	}
}

func (c *Classical) Variant() Variant               { return VariantClassical }
func (c *Classical) Init() Memory                   { return Memory{} }
func (c *Classical) Sigma(x dynamo.State) float64   { return c.Surf.Value(x) }
func (c *Classical) Gains() []float64 {
	return []float64{c.Surf.K1, c.Surf.K2, c.Surf.Lam1, c.Surf.Lam2, c.K, c.Kd}
}

func (c *Classical) Compute(x dynamo.State, m Memory, t float64) (float64, Memory) {
	sigma := c.Surf.Value(x)

	uEq := c.eq.Compute(x, c.Surf)
	dir := c.opt.direction(c.eq, x, c.Surf)

	eps := c.opt.BoundaryLayer + c.opt.BoundaryLayerSlope*math.Abs(sigma)

	sw := c.K * Sat(c.opt.Switch, sigma/eps)
	if c.opt.HysteresisRatio > 0 && math.Abs(sigma) < c.opt.HysteresisRatio*c.opt.BoundaryLayer {
		sw = 0
	}

	u := uEq + dir*(-sw-c.Kd*sigma)
	u = Clamp(u, -c.opt.Fmax, c.opt.Fmax)

	m.LastControl = u
	return u, m
}
