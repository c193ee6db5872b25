package plant

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"dipctl/internal/dynamo"
)

// DoubleInvertedPendulum models a cart carrying two serially pivoted links.
// Generalized coordinates are q = [x, theta1, theta2], with both angles
// measured from the upright position, so the equilibrium of interest is
// q = 0 and it is open-loop unstable.
//
// The dynamics are M(q)*qdd + C(q,qd)*qd + G(q) = B*u with B = [1 0 0]^T.
type DoubleInvertedPendulum struct {
	CartMass float64 // m0
	Mass1    float64 // first link mass
	Mass2    float64 // second link mass
	Length1  float64 // first link full length (pivot to pivot)
	Com1     float64 // first link pivot-to-COM distance
	Com2     float64 // second link pivot-to-COM distance
	Inertia1 float64 // first link inertia about its COM
	Inertia2 float64 // second link inertia about its COM
	FricCart float64 // viscous cart friction
	FricJ1   float64 // viscous first joint friction
	FricJ2   float64 // viscous second joint friction
	Gravity  float64
}

func NewDoubleInvertedPendulum() *DoubleInvertedPendulum {
	return &DoubleInvertedPendulum{
		CartMass: 1.5,
		Mass1:    0.2,
		Mass2:    0.15,
		Length1:  0.4,
		Com1:     0.2,
		Com2:     0.15,
		Inertia1: 0.00265,
		Inertia2: 0.00115,
		FricCart: 0.2,
		FricJ1:   0.005,
		FricJ2:   0.004,
		Gravity:  9.81,
	}
}

func (p *DoubleInvertedPendulum) StateDim() int   { return dynamo.StateDim }
func (p *DoubleInvertedPendulum) ControlDim() int { return 1 }

// Matrices evaluates the inertia, Coriolis/friction and gravity terms at the
// given state. It is the physics-matrix contract consumed by the
// equivalent-control estimator.
func (p *DoubleInvertedPendulum) Matrices(x dynamo.State) (*mat.Dense, *mat.Dense, *mat.VecDense) {
	th1 := x[dynamo.Theta1]
	th2 := x[dynamo.Theta2]
	w1 := x[dynamo.Omega1]
	w2 := x[dynamo.Omega2]

	h1 := p.Mass1*p.Com1 + p.Mass2*p.Length1
	h2 := p.Mass2 * p.Com2
	h12 := p.Mass2 * p.Length1 * p.Com2

	c1 := math.Cos(th1)
	c2 := math.Cos(th2)
	s1 := math.Sin(th1)
	s2 := math.Sin(th2)
	c12 := math.Cos(th1 - th2)
	s12 := math.Sin(th1 - th2)

	m := mat.NewDense(3, 3, []float64{
		p.CartMass + p.Mass1 + p.Mass2, h1 * c1, h2 * c2,
		h1 * c1, p.Inertia1 + p.Mass1*p.Com1*p.Com1 + p.Mass2*p.Length1*p.Length1, h12 * c12,
		h2 * c2, h12 * c12, p.Inertia2 + p.Mass2*p.Com2*p.Com2,
	})

	c := mat.NewDense(3, 3, []float64{
		p.FricCart, -h1 * s1 * w1, -h2 * s2 * w2,
		0, p.FricJ1, h12 * s12 * w2,
		0, -h12 * s12 * w1, p.FricJ2,
	})

	g := mat.NewVecDense(3, []float64{
		0,
		-h1 * p.Gravity * s1,
		-h2 * p.Gravity * s2,
	})

	return m, c, g
}

func (p *DoubleInvertedPendulum) Derive(x dynamo.State, u dynamo.Control, _ float64) dynamo.State {
	m, c, g := p.Matrices(x)

	qd := mat.NewVecDense(3, []float64{x[dynamo.CartVel], x[dynamo.Omega1], x[dynamo.Omega2]})

	// rhs = B*u - C*qd - G
	var cqd mat.VecDense
	cqd.MulVec(c, qd)
	rhs := mat.NewVecDense(3, []float64{
		u.Force() - cqd.AtVec(0) - g.AtVec(0),
		-cqd.AtVec(1) - g.AtVec(1),
		-cqd.AtVec(2) - g.AtVec(2),
	})

	// M is symmetric positive definite away from singular geometry; a small
	// diagonal shift keeps the solve stable near it.
	for i := 0; i < 3; i++ {
		m.Set(i, i, m.At(i, i)+1e-10)
	}

	var acc mat.VecDense
	if err := acc.SolveVec(m, rhs); err != nil {
		// Singular inertia matrix: freeze accelerations for this step.
		return dynamo.State{x[dynamo.CartVel], x[dynamo.Omega1], x[dynamo.Omega2], 0, 0, 0}
	}

	return dynamo.State{
		x[dynamo.CartVel], x[dynamo.Omega1], x[dynamo.Omega2],
		acc.AtVec(0), acc.AtVec(1), acc.AtVec(2),
	}
}

// Energy returns kinetic plus potential energy, with the upright
// configuration as the potential maximum.
func (p *DoubleInvertedPendulum) Energy(x dynamo.State) float64 {
	m, _, _ := p.Matrices(x)
	qd := mat.NewVecDense(3, []float64{x[dynamo.CartVel], x[dynamo.Omega1], x[dynamo.Omega2]})

	var mqd mat.VecDense
	mqd.MulVec(m, qd)
	ke := 0.5 * mat.Dot(qd, &mqd)

	h1 := p.Mass1*p.Com1 + p.Mass2*p.Length1
	h2 := p.Mass2 * p.Com2
	pe := h1*p.Gravity*math.Cos(x[dynamo.Theta1]) + h2*p.Gravity*math.Cos(x[dynamo.Theta2])

	return ke + pe
}

func (p *DoubleInvertedPendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"cart_mass": p.CartMass,
		"mass1":     p.Mass1,
		"mass2":     p.Mass2,
		"length1":   p.Length1,
		"com1":      p.Com1,
		"com2":      p.Com2,
		"gravity":   p.Gravity,
	}
}

func (p *DoubleInvertedPendulum) SetParam(name string, value float64) error {
	switch name {
	case "cart_mass":
		p.CartMass = value
	case "mass1":
		p.Mass1 = value
	case "mass2":
		p.Mass2 = value
	case "length1":
		p.Length1 = value
	case "com1":
		p.Com1 = value
	case "com2":
		p.Com2 = value
	case "gravity":
		p.Gravity = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

func (p *DoubleInvertedPendulum) DefaultState() dynamo.State {
	return dynamo.State{0, 0.1, 0.05, 0, 0, 0}
}
