package smc

import (
	"math"

	"dipctl/internal/dynamo"
)

// Hybrid blends adaptive-gain and super-twisting behavior through a single
// smoothed switching path. Both gains adapt with the same dead-zone/leak
// scheme as the adaptive law; the switching gain is additionally scheduled
// continuously with |sigma| instead of hard mode switches, which would reset
// the integral state and destabilize the loop. A gated recentering term
// drains cart drift near upright, and an emergency reset restores the
// internal state to its initial values when the surface or the adapted gains
// leave their sanity bounds.
type Hybrid struct {
	Surf Surface

	Gamma1    float64
	Gamma2    float64
	Leak      float64
	DeadZone  float64
	K1Init    float64
	K2Init    float64
	K1Max     float64
	K2Max     float64
	RateLimit float64

	// continuous gain scheduling K(sigma) = K + DeltaK*tanh(|sigma|/eps)
	DeltaK float64

	RecenterKp float64
	RecenterKd float64
	ThetaGate  float64 // recentering fades out beyond this tilt

	SigmaMax float64 // emergency reset bound on |sigma|

	opt Options
	eq  *EquivalentControl
}

// NewHybrid builds the law from the gain order [c1, lam1, c2, lam2].
func NewHybrid(gains []float64, opt Options) *Hybrid {
	return &Hybrid{
		Surf:       Surface{K1: gains[0], Lam1: gains[1], K2: gains[2], Lam2: gains[3]},
		Gamma1:     opt.Gamma1,
		Gamma2:     opt.Gamma2,
		Leak:       opt.Leak,
		DeadZone:   opt.DeadZone,
		K1Init:     opt.KInit,
		K2Init:     opt.KInit / 2,
		K1Max:      opt.KMax,
		K2Max:      opt.KMax / 2,
		RateLimit:  opt.RateLimit,
		DeltaK:     opt.DeltaK,
		RecenterKp: opt.RecenterKp,
		RecenterKd: opt.RecenterKd,
		ThetaGate:  opt.ThetaGate,
		SigmaMax:   opt.SigmaMax,
		opt:        opt,
		eq:         &EquivalentControl{Model: opt.Model, Fmax: opt.Fmax},
	}
}

func (h *Hybrid) Variant() Variant             { return VariantHybrid }
func (h *Hybrid) Sigma(x dynamo.State) float64 { return h.Surf.Value(x) }
func (h *Hybrid) Gains() []float64 {
	return []float64{h.Surf.K1, h.Surf.Lam1, h.Surf.K2, h.Surf.Lam2}
}

func (h *Hybrid) Init() Memory {
	return Memory{K1: h.K1Init, K2: h.K2Init}
}

func (h *Hybrid) Compute(x dynamo.State, m Memory, t float64) (float64, Memory) {
	sigma := h.Surf.Value(x)
	absSigma := math.Abs(sigma)

	if absSigma > h.SigmaMax || m.K1 > 2*h.K1Max || m.K2 > 2*h.K2Max ||
		math.IsNaN(m.K1) || math.IsNaN(m.K2) || math.IsNaN(m.Integral) {
		m = h.Init()
	}

	if absSigma > h.DeadZone {
		k1dot := Clamp(h.Gamma1*h.opt.Beta*absSigma-h.Leak*(m.K1-h.K1Init), -h.RateLimit, h.RateLimit)
		k2dot := Clamp(h.Gamma2*h.opt.Beta*absSigma-h.Leak*(m.K2-h.K2Init), -h.RateLimit, h.RateLimit)
		m.K1 = Clamp(m.K1+k1dot*h.opt.Dt, 0, h.K1Max)
		m.K2 = Clamp(m.K2+k2dot*h.opt.Dt, 0, h.K2Max)
		m.TimeInSliding = 0
	} else {
		m.TimeInSliding += h.opt.Dt
	}

	eps := h.opt.BoundaryLayer
	sg := Sat(h.opt.Switch, sigma/eps)

	// continuous scheduling, never a discrete mode switch
	k1 := m.K1 + h.DeltaK*math.Tanh(absSigma/eps)

	uEq := h.eq.Compute(x, h.Surf)
	dir := h.opt.direction(h.eq, x, h.Surf)

	m.Integral = Clamp(m.Integral-m.K2*sg*h.opt.Dt, -h.opt.Fmax, h.opt.Fmax)

	tilt := math.Max(math.Abs(x[dynamo.Theta1]), math.Abs(x[dynamo.Theta2]))
	gate := Clamp(1.0-tilt/h.ThetaGate, 0, 1)
	uRecenter := gate * (-h.RecenterKp*x[dynamo.CartPos] - h.RecenterKd*x[dynamo.CartVel])

	u := uEq + dir*(-k1*math.Sqrt(absSigma)*sg+m.Integral) + uRecenter
	u = Clamp(u, -h.opt.Fmax, h.opt.Fmax)

	m.LastControl = u
	return u, m
}
