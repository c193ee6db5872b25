package smc

import (
	"math"

	"dipctl/internal/dynamo"
)

// Adaptive is the adaptive-gain sliding-mode law. The switching gain K(t)
// grows while the trajectory is off the surface and leaks back toward its
// initial value otherwise:
//
//	Kdot = gamma*beta*|sigma| - leak*(K - Kinit)   for |sigma| > deadZone
//	Kdot = 0                                        inside the dead zone
//
// Kdot is rate-limited to +/-RateLimit and K is clamped to [Kmin, Kmax]
// every step; the leak and the clamp together keep adaptation bounded for
// any input trajectory. The actuation efficiency beta multiplies the growth
// term (the uncorrected beta=1 law is not assumed stable).
type Adaptive struct {
	Surf  Surface
	Gamma float64 // adaptation rate

	Alpha     float64 // proportional surface feedback
	Leak      float64
	DeadZone  float64
	KInit     float64
	KMin      float64
	KMax      float64
	RateLimit float64 // Gamma_max on Kdot

	opt Options
	eq  *EquivalentControl
}

// NewAdaptive builds the law from the gain order [k1, k2, lam1, lam2, gamma].
func NewAdaptive(gains []float64, opt Options) *Adaptive {
	return &Adaptive{
		Surf:      Surface{K1: gains[0], K2: gains[1], Lam1: gains[2], Lam2: gains[3]},
		Gamma:     gains[4],
		Alpha:     opt.Alpha,
		Leak:      opt.Leak,
		DeadZone:  opt.DeadZone,
		KInit:     opt.KInit,
		KMin:      opt.KMin,
		KMax:      opt.KMax,
		RateLimit: opt.RateLimit,
		opt:       opt,
		eq:        &EquivalentControl{Model: opt.Model, Fmax: opt.Fmax},
	}
}

func (a *Adaptive) Variant() Variant             { return VariantAdaptive }
func (a *Adaptive) Sigma(x dynamo.State) float64 { return a.Surf.Value(x) }
func (a *Adaptive) Gains() []float64 {
	return []float64{a.Surf.K1, a.Surf.K2, a.Surf.Lam1, a.Surf.Lam2, a.Gamma}
}

func (a *Adaptive) Init() Memory {
	return Memory{K: a.KInit}
}

func (a *Adaptive) Compute(x dynamo.State, m Memory, t float64) (float64, Memory) {
	sigma := a.Surf.Value(x)
	absSigma := math.Abs(sigma)

	kdot := 0.0
	if absSigma > a.DeadZone {
		kdot = a.Gamma*a.opt.Beta*absSigma - a.Leak*(m.K-a.KInit)
		m.TimeInSliding = 0
	} else {
		// Frozen inside the dead zone so measurement noise cannot drive K.
		m.TimeInSliding += a.opt.Dt
	}

	kdot = Clamp(kdot, -a.RateLimit, a.RateLimit)
	m.K = Clamp(m.K+kdot*a.opt.Dt, a.KMin, a.KMax)

	uEq := a.eq.Compute(x, a.Surf)
	dir := a.opt.direction(a.eq, x, a.Surf)

	eps := a.opt.BoundaryLayer + a.opt.BoundaryLayerSlope*absSigma
	u := uEq + dir*(-m.K*Sat(a.opt.Switch, sigma/eps)-a.Alpha*sigma)
	u = Clamp(u, -a.opt.Fmax, a.opt.Fmax)

	m.LastControl = u
	return u, m
}
