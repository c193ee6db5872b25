package pso

import (
	"context"
	"math"

	"dipctl/internal/dynamo"
	"dipctl/internal/integrators"
	"dipctl/internal/metrics"
	"dipctl/internal/sim"
	"dipctl/internal/smc"
)

// Weights blends the cost ingredients of one rollout and, in robust mode,
// the mean and worst case across scenarios.
type Weights struct {
	State     float64
	Control   float64
	Rate      float64
	Stability float64

	Mean float64
	Max  float64
}

func DefaultWeights() Weights {
	return Weights{
		State:     1.0,
		Control:   0.1,
		Rate:      0.01,
		Stability: 0.5,
		Mean:      0.7,
		Max:       0.3,
	}
}

// Norms scales each ingredient to comparable magnitude before weighting.
type Norms struct {
	State     float64
	Control   float64
	Rate      float64
	Stability float64
}

func DefaultNorms() Norms {
	return Norms{
		State:     1.0,
		Control:   1e3,
		Rate:      1e6,
		Stability: 10.0,
	}
}

// penaltyScale is the constant multiplying the graded instability penalty
// (T - tFail)/T; earlier failures cost more.
const penaltyScale = 1e3

// Evaluator turns a candidate gain vector into a scalar cost by running a
// closed-loop rollout and reducing its trajectory. It is the only caller of
// the simulator inside the optimizer. Every internal failure, including a
// rejected gain vector, becomes a penalized cost: the swarm never sees an
// error.
type Evaluator struct {
	Variant smc.Variant
	Bounds  smc.Bounds
	Options smc.Options

	Plant dynamo.System
	Cfg   dynamo.Config

	Weights Weights
	Norms   Norms

	// Scenarios enables robust mode; empty means a single rollout from
	// Initial.
	Scenarios []Scenario
	Initial   dynamo.State
}

// Evaluate satisfies Objective.
func (e *Evaluator) Evaluate(ctx context.Context, gains []float64) FitnessResult {
	if len(e.Scenarios) == 0 {
		return e.evaluateOne(ctx, gains, e.Initial)
	}
	return e.evaluateRobust(ctx, gains)
}

func (e *Evaluator) evaluateOne(ctx context.Context, gains []float64, x0 dynamo.State) FitnessResult {
	law, err := smc.New(e.Variant, gains, e.Bounds, e.Options)
	if err != nil {
		return FitnessResult{Cost: penaltyScale, Unstable: true}
	}

	result, err := e.rollout(ctx, law, x0)
	if err != nil {
		return FitnessResult{Cost: penaltyScale, Unstable: true}
	}

	return e.reduce(result)
}

// evaluateRobust runs every scenario and combines mean and worst case. The
// scenario rollouts share the sim.Batch runner.
func (e *Evaluator) evaluateRobust(ctx context.Context, gains []float64) FitnessResult {
	law, err := smc.New(e.Variant, gains, e.Bounds, e.Options)
	if err != nil {
		return FitnessResult{Cost: penaltyScale, Unstable: true}
	}

	initials := make([]dynamo.State, len(e.Scenarios))
	for i, sc := range e.Scenarios {
		initials[i] = sc.Initial
	}

	batch := sim.NewBatch(func() *sim.Simulator { return e.newSimulator(law) })
	results, err := batch.Run(ctx, initials, e.Cfg)
	if err != nil {
		return FitnessResult{Cost: penaltyScale, Unstable: true}
	}

	var weightedSum, weightTotal, worst float64
	unstable := false
	for i, r := range results {
		fr := e.reduce(r)
		unstable = unstable || fr.Unstable

		w := e.Scenarios[i].Weight
		weightedSum += w * fr.Cost
		weightTotal += w
		if fr.Cost > worst {
			worst = fr.Cost
		}
	}
	if weightTotal == 0 {
		weightTotal = 1
	}

	cost := e.Weights.Mean*(weightedSum/weightTotal) + e.Weights.Max*worst
	return FitnessResult{Cost: cost, Unstable: unstable}
}

func (e *Evaluator) newSimulator(law smc.Law) *sim.Simulator {
	s := sim.New(e.Plant, integrators.NewRK4(), smc.NewRunner(law))
	s.AddMetric(metrics.NewTrackingError(e.Cfg.Dt))
	s.AddMetric(metrics.NewControlEffort(e.Cfg.Dt))
	s.AddMetric(metrics.NewControlRate(e.Cfg.Dt))
	s.AddMetric(metrics.NewSurfaceEnergy(e.Cfg.Dt, law.Sigma))
	return s
}

func (e *Evaluator) rollout(ctx context.Context, law smc.Law, x0 dynamo.State) (*dynamo.Result, error) {
	return e.newSimulator(law).Run(ctx, x0, e.Cfg)
}

// reduce maps a rollout to J = w.State*ise + w.Control*effort + w.Rate*rate
// + w.Stability*surfaceEnergy (each normalized) plus the graded instability
// penalty.
func (e *Evaluator) reduce(r *dynamo.Result) FitnessResult {
	norm := func(v, n float64) float64 {
		if n <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v / n
	}

	cost := e.Weights.State*norm(r.Metrics["ise"], e.Norms.State) +
		e.Weights.Control*norm(r.Metrics["effort"], e.Norms.Control) +
		e.Weights.Rate*norm(r.Metrics["control_rate"], e.Norms.Rate) +
		e.Weights.Stability*norm(r.Metrics["surface_energy"], e.Norms.Stability)

	if r.Diverged && e.Cfg.Duration > 0 {
		cost += penaltyScale * (e.Cfg.Duration - r.FailTime) / e.Cfg.Duration
	}

	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return FitnessResult{Cost: penaltyScale, Unstable: true}
	}
	return FitnessResult{Cost: cost, Unstable: r.Diverged}
}
