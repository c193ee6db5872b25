package dynamo

import (
	"fmt"
	"math"
)

// State is the plant state vector. For the double inverted pendulum it is
// [x, theta1, theta2, xdot, omega1, omega2].
type State []float64

// Indices into the six-element cart/two-link state.
const (
	CartPos = iota
	Theta1
	Theta2
	CartVel
	Omega1
	Omega2
	StateDim = 6
)

// DivergenceLimit is the magnitude beyond which any state component is
// treated as numerically divergent.
const DivergenceLimit = 1e6

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Diverged reports whether the state left the recoverable envelope: any
// non-finite component, a link angle past horizontal, or any component
// beyond DivergenceLimit.
func (s State) Diverged() bool {
	if !s.IsValid() {
		return true
	}
	if len(s) >= StateDim {
		if math.Abs(s[Theta1]) > math.Pi/2 || math.Abs(s[Theta2]) > math.Pi/2 {
			return true
		}
	}
	for _, v := range s {
		if math.Abs(v) > DivergenceLimit {
			return true
		}
	}
	return false
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

type Control []float64

// Force returns the scalar actuator command of a single-input control vector.
func (c Control) Force() float64 {
	if len(c) == 0 {
		return 0
	}
	return c[0]
}

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

type Controller interface {
	Compute(x State, t float64) Control
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		ValidateState: true,
	}
}

// Result holds one closed-loop rollout. FailTime is the time at which the
// trajectory diverged; it equals Duration when Diverged is false.
type Result struct {
	States     []State
	Controls   []Control
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Diverged   bool
	FailTime   float64
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
