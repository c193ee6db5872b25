package smc

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"dipctl/internal/dynamo"
)

// ModelProvider supplies the physics matrices of the plant at a state. The
// estimator holds it as a plain non-owning reference; a nil provider simply
// disables the feedforward term.
type ModelProvider interface {
	Matrices(x dynamo.State) (*mat.Dense, *mat.Dense, *mat.VecDense)
}

const (
	// regularization added to the inertia diagonal before solving
	inertiaReg = 1e-10
	// base controllability floor; the effective threshold scales with the
	// surface gain magnitude
	controllabilityFloor = 1e-4
	// feedforward is clamped to this multiple of the actuator limit
	feedforwardClampRatio = 5.0
)

// EquivalentControl estimates the model-based feedforward term
//
//	u_eq = (L*Minv*B)^-1 * [ L*Minv*(C*qd + G) - correction ]
//
// that would hold sigma-dot at zero under nominal dynamics. Every failure
// mode (missing model, singular inertia, near-uncontrollable configuration)
// degrades to a zero feedforward; Compute never returns an error and never
// panics.
type EquivalentControl struct {
	Model ModelProvider
	Fmax  float64
}

// Compute returns the feedforward force for the given state and surface.
func (e *EquivalentControl) Compute(x dynamo.State, s Surface) float64 {
	u, _ := e.compute(x, s)
	return u
}

// Controllability returns the scalar L*Minv*B, the sensitivity of sigma-dot
// to the actuator force. Zero means the configuration was rejected.
func (e *EquivalentControl) Controllability(x dynamo.State, s Surface) float64 {
	_, b := e.compute(x, s)
	return b
}

func (e *EquivalentControl) compute(x dynamo.State, s Surface) (float64, float64) {
	if e == nil || e.Model == nil {
		return 0, 0
	}

	m, c, g := e.Model.Matrices(x)
	if m == nil {
		return 0, 0
	}

	for i := 0; i < 3; i++ {
		m.Set(i, i, m.At(i, i)+inertiaReg)
	}

	qd := mat.NewVecDense(3, []float64{x[dynamo.CartVel], x[dynamo.Omega1], x[dynamo.Omega2]})

	// z = Minv*B with B = [1 0 0]^T
	var z mat.VecDense
	if err := z.SolveVec(m, mat.NewVecDense(3, []float64{1, 0, 0})); err != nil {
		return 0, 0
	}

	// w = Minv*(C*qd + G)
	var cqd mat.VecDense
	cqd.MulVec(c, qd)
	cqd.AddVec(&cqd, g)
	var w mat.VecDense
	if err := w.SolveVec(m, &cqd); err != nil {
		return 0, 0
	}

	l := s.Weights()
	denom := l[1]*z.AtVec(1) + l[2]*z.AtVec(2)

	threshold := controllabilityFloor * (1 + s.GainScale())
	if math.Abs(denom) < threshold {
		// Near-uncontrollable configuration: feedforward off for this step.
		return 0, 0
	}

	num := l[1]*w.AtVec(1) + l[2]*w.AtVec(2) - s.Correction(x)
	u := num / denom

	if math.IsNaN(u) || math.IsInf(u, 0) {
		return 0, denom
	}

	limit := feedforwardClampRatio * e.Fmax
	return Clamp(u, -limit, limit), denom
}
