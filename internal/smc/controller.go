package smc

import (
	"fmt"

	"dipctl/internal/dynamo"
)

// Memory is the explicit per-rollout internal state of a control law. Each
// variant uses only the fields it needs: the adaptive law owns K, the
// super-twisting and hybrid laws own K1/K2 and the integral term. It is a
// value type, threaded through Compute and never shared.
type Memory struct {
	K             float64 // adaptive switching gain
	K1            float64 // super-twisting / hybrid first gain
	K2            float64 // super-twisting / hybrid second gain
	Integral      float64 // super-twisting integral state
	LastControl   float64
	TimeInSliding float64
}

// Law is the uniform call contract shared by all variants:
// (state, memory, time) -> (force, new memory). Implementations are pure with
// respect to Memory and safe to call from a real-time loop.
type Law interface {
	Variant() Variant
	Init() Memory
	Sigma(x dynamo.State) float64
	Gains() []float64
	Compute(x dynamo.State, m Memory, t float64) (float64, Memory)
}

// Options carries the shared, non-tuned parameters of the control family.
type Options struct {
	Fmax float64 // actuator limit, output always clamped to +/-Fmax
	Dt   float64 // control period used by the adaptation integrators
	Beta float64 // actuation efficiency multiplying adaptation growth

	Switch             Switching
	BoundaryLayer      float64 // eps0
	BoundaryLayerSlope float64 // eps1 in eps(sigma) = eps0 + eps1*|sigma|
	HysteresisRatio    float64 // classical only; 0 disables

	// adaptive / hybrid adaptation parameters
	Alpha     float64
	Leak      float64
	DeadZone  float64
	KInit     float64
	KMin      float64
	KMax      float64
	RateLimit float64
	Gamma1    float64
	Gamma2    float64
	DeltaK    float64

	// hybrid recentering and safety
	RecenterKp float64
	RecenterKd float64
	ThetaGate  float64
	SigmaMax   float64

	// Model enables the equivalent-control feedforward; nil disables it.
	Model ModelProvider

	// Direction is the sign of the control effectiveness L*Minv*B assumed
	// when no model is attached; with a model the sign is measured directly.
	Direction float64
}

func DefaultOptions() Options {
	return Options{
		Fmax:               150.0,
		Dt:                 0.01,
		Beta:               1.0,
		Switch:             SwitchTanh,
		BoundaryLayer:      0.02,
		BoundaryLayerSlope: 0.0,
		HysteresisRatio:    0.0,
		Alpha:              0.5,
		Leak:               0.1,
		DeadZone:           0.01,
		KInit:              15.0,
		KMin:               1.0,
		KMax:               120.0,
		RateLimit:          50.0,
		Gamma1:             2.0,
		Gamma2:             0.8,
		DeltaK:             8.0,
		RecenterKp:         4.0,
		RecenterKd:         2.0,
		ThetaGate:          0.3,
		SigmaMax:           50.0,
		Direction:          1.0,
	}
}

// direction resolves the sign applied to the reaching terms so that
// sigma*sigma-dot < 0 holds regardless of the plant's sign convention.
func (o Options) direction(eq *EquivalentControl, x dynamo.State, s Surface) float64 {
	if eq != nil && eq.Model != nil {
		if b := eq.Controllability(x, s); b != 0 {
			return Sign(b)
		}
	}
	if o.Direction < 0 {
		return -1
	}
	return 1
}

// New validates the gain vector against the given bounds and builds the
// requested variant. A structurally invalid gain vector is the one hard
// error of the control path.
func New(variant Variant, gains []float64, bounds Bounds, opt Options) (Law, error) {
	if err := Validate(variant, gains, bounds); err != nil {
		return nil, err
	}
	switch variant {
	case VariantClassical:
		return NewClassical(gains, opt), nil
	case VariantAdaptive:
		return NewAdaptive(gains, opt), nil
	case VariantSuperTwisting:
		return NewSuperTwisting(gains, opt), nil
	case VariantHybrid:
		return NewHybrid(gains, opt), nil
	}
	return nil, fmt.Errorf("unknown controller variant %q", variant)
}

// Trace is an append-only per-rollout history log keyed by signal name.
type Trace map[string][]float64

func (tr Trace) Append(key string, v float64) {
	tr[key] = append(tr[key], v)
}

// Runner adapts a Law to dynamo.Controller for the simulator. It owns one
// Memory value and one Trace; a fresh Runner is made per rollout, so the pure
// law itself can be shared freely across parallel rollouts.
type Runner struct {
	law   Law
	mem   Memory
	trace Trace
}

func NewRunner(law Law) *Runner {
	return &Runner{
		law:   law,
		mem:   law.Init(),
		trace: make(Trace),
	}
}

func (r *Runner) Compute(x dynamo.State, t float64) dynamo.Control {
	u, mem := r.law.Compute(x, r.mem, t)
	r.mem = mem

	r.trace.Append("sigma", r.law.Sigma(x))
	r.trace.Append("force", u)
	r.trace.Append("gain", mem.K)

	return dynamo.Control{u}
}

func (r *Runner) Memory() Memory { return r.mem }
func (r *Runner) Trace() Trace   { return r.trace }
