package integrators

import (
	"math"
	"testing"

	"dipctl/internal/dynamo"
)

// exponential decay xdot = -x, exact solution x(t) = x0*exp(-t)
type decay struct{}

func (d *decay) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	out := make(dynamo.State, len(x))
	for i := range x {
		out[i] = -x[i]
	}
	return out
}
func (d *decay) StateDim() int   { return 1 }
func (d *decay) ControlDim() int { return 0 }

func integrate(integ dynamo.Integrator, x0 dynamo.State, dt, duration float64) dynamo.State {
	x := x0.Clone()
	for t := 0.0; t < duration; t += dt {
		x = integ.Step(&decay{}, x, nil, t, dt)
	}
	return x
}

func TestEulerDecay(t *testing.T) {
	x := integrate(NewEuler(), dynamo.State{1.0}, 0.001, 1.0)
	expected := math.Exp(-1.0)
	if math.Abs(x[0]-expected) > 1e-3 {
		t.Errorf("euler: expected ~%f, got %f", expected, x[0])
	}
}

func TestRK4Decay(t *testing.T) {
	x := integrate(NewRK4(), dynamo.State{1.0}, 0.01, 1.0)
	expected := math.Exp(-1.0)
	if math.Abs(x[0]-expected) > 1e-6 {
		t.Errorf("rk4: expected ~%f, got %f", expected, x[0])
	}
}

func TestRK4LeavesInputUntouched(t *testing.T) {
	x := dynamo.State{1.0}
	r := NewRK4()
	r.Step(&decay{}, x, nil, 0, 0.01)
	r.Step(&decay{}, x, nil, 0.01, 0.01)
	if x[0] != 1.0 {
		t.Errorf("input state mutated: got %g", x[0])
	}
}

func TestRK4MoreAccurateThanEuler(t *testing.T) {
	expected := math.Exp(-1.0)
	eulerErr := math.Abs(integrate(NewEuler(), dynamo.State{1.0}, 0.01, 1.0)[0] - expected)
	rk4Err := math.Abs(integrate(NewRK4(), dynamo.State{1.0}, 0.01, 1.0)[0] - expected)

	if rk4Err >= eulerErr {
		t.Errorf("rk4 error %g should beat euler error %g at same dt", rk4Err, eulerErr)
	}
}
