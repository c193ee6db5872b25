package metrics

import (
	"math"

	"dipctl/internal/dynamo"
)

// TrackingError accumulates the integral of squared state error against the
// upright equilibrium (ISE). Velocity components are weighted down so the
// angle error dominates.
type TrackingError struct {
	name           string
	dt             float64
	velocityWeight float64
	sum            float64
}

func NewTrackingError(dt float64) *TrackingError {
	return &TrackingError{
		name:           "ise",
		dt:             dt,
		velocityWeight: 0.1,
	}
}

func (m *TrackingError) Name() string { return m.name }

func (m *TrackingError) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < dynamo.StateDim {
		return
	}
	pos := x[dynamo.CartPos]*x[dynamo.CartPos] +
		x[dynamo.Theta1]*x[dynamo.Theta1] +
		x[dynamo.Theta2]*x[dynamo.Theta2]
	vel := x[dynamo.CartVel]*x[dynamo.CartVel] +
		x[dynamo.Omega1]*x[dynamo.Omega1] +
		x[dynamo.Omega2]*x[dynamo.Omega2]
	m.sum += (pos + m.velocityWeight*vel) * m.dt
}

func (m *TrackingError) Value() float64 { return m.sum }

func (m *TrackingError) Reset() { m.sum = 0 }

// ControlEffort accumulates the integral of squared force.
type ControlEffort struct {
	name string
	dt   float64
	sum  float64
}

func NewControlEffort(dt float64) *ControlEffort {
	return &ControlEffort{name: "effort", dt: dt}
}

func (m *ControlEffort) Name() string { return m.name }

func (m *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	f := u.Force()
	m.sum += f * f * m.dt
}

func (m *ControlEffort) Value() float64 { return m.sum }

func (m *ControlEffort) Reset() { m.sum = 0 }

// ControlRate accumulates the integral of squared force slew, the chattering
// indicator of the cost.
type ControlRate struct {
	name  string
	dt    float64
	prev  float64
	first bool
	sum   float64
}

func NewControlRate(dt float64) *ControlRate {
	return &ControlRate{name: "control_rate", dt: dt, first: true}
}

func (m *ControlRate) Name() string { return m.name }

func (m *ControlRate) Observe(x dynamo.State, u dynamo.Control, t float64) {
	f := u.Force()
	if m.first {
		m.first = false
		m.prev = f
		return
	}
	rate := (f - m.prev) / m.dt
	m.sum += rate * rate * m.dt
	m.prev = f
}

func (m *ControlRate) Value() float64 { return m.sum }

func (m *ControlRate) Reset() {
	m.sum = 0
	m.prev = 0
	m.first = true
}

// SigmaFunc evaluates a sliding surface; the metric package takes a function
// so it does not depend on the controller package.
type SigmaFunc func(x dynamo.State) float64

// SurfaceEnergy accumulates the integral of squared sliding-surface value.
type SurfaceEnergy struct {
	name  string
	dt    float64
	sigma SigmaFunc
	sum   float64
}

func NewSurfaceEnergy(dt float64, sigma SigmaFunc) *SurfaceEnergy {
	return &SurfaceEnergy{name: "surface_energy", dt: dt, sigma: sigma}
}

func (m *SurfaceEnergy) Name() string { return m.name }

func (m *SurfaceEnergy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if m.sigma == nil {
		return
	}
	s := m.sigma(x)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return
	}
	m.sum += s * s * m.dt
}

func (m *SurfaceEnergy) Value() float64 { return m.sum }

func (m *SurfaceEnergy) Reset() { m.sum = 0 }
