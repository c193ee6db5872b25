package pso

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"dipctl/internal/smc"
)

// Termination names how an optimization run ended.
type Termination string

const (
	Converged     Termination = "converged"
	MaxIterations Termination = "max_iterations"
	TimedOut      Termination = "timed_out"
	Cancelled     Termination = "cancelled"
)

// FitnessResult is one candidate evaluation: a non-negative cost plus a flag
// marking that the rollout diverged and the cost carries an instability
// penalty.
type FitnessResult struct {
	Cost     float64
	Unstable bool
}

// Objective evaluates a candidate gain vector. Implementations must not
// return an error: anything that goes wrong inside an evaluation is folded
// into a penalized cost so the swarm keeps moving.
type Objective func(ctx context.Context, position []float64) FitnessResult

// Config parameterizes one optimization run.
type Config struct {
	SwarmSize     int
	MaxIterations int
	Inertia       float64
	Cognitive     float64
	Social        float64
	Seed          int64
	Bounds        smc.Bounds

	// early stop when the global best moves less than ConvergenceEps for
	// ConvergenceWindow consecutive iterations
	ConvergenceEps    float64
	ConvergenceWindow int

	// wall-clock safety net, checked between iterations; zero disables
	Timeout time.Duration

	// parallel fitness workers per iteration; zero means NumCPU
	Workers int
}

func DefaultConfig(bounds smc.Bounds) Config {
	return Config{
		SwarmSize:         40,
		MaxIterations:     200,
		Inertia:           0.7,
		Cognitive:         1.5,
		Social:            1.5,
		Seed:              1,
		Bounds:            bounds,
		ConvergenceEps:    1e-6,
		ConvergenceWindow: 20,
	}
}

func (c Config) validate() error {
	if c.SwarmSize <= 0 {
		return fmt.Errorf("swarm size must be positive, got %d", c.SwarmSize)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d", c.MaxIterations)
	}
	if c.Bounds.Dim() == 0 {
		return fmt.Errorf("empty search bounds")
	}
	for i := 0; i < c.Bounds.Dim(); i++ {
		if c.Bounds.Span(i) <= 0 {
			return fmt.Errorf("empty bound at dimension %d", i)
		}
	}
	return nil
}

// Outcome is the result of one optimization run.
type Outcome struct {
	Best        []float64
	Cost        float64
	Iterations  int
	Termination Termination
	// History holds the global-best cost after each iteration; it is
	// non-increasing by construction.
	History []float64
}

// Optimizer is a global-topology particle swarm. Within an iteration the
// fitness evaluations run on a worker pool and join at a single barrier
// before personal and global bests are updated; velocity updates of the next
// iteration therefore always read a consistent global best. All random draws
// happen on the driving goroutine, so a run is reproducible for a fixed seed
// independent of worker count.
type Optimizer struct {
	cfg       Config
	obj       Objective
	rng       *rand.Rand
	particles []*Particle

	bestPos  []float64
	bestCost float64

	// observer for live progress reporting, optional
	OnIteration func(iter int, bestCost float64, best []float64)
}

func NewOptimizer(cfg Config, obj Objective) (*Optimizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("nil objective")
	}
	return &Optimizer{
		cfg:      cfg,
		obj:      obj,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		bestCost: math.Inf(1),
	}, nil
}

func (o *Optimizer) Run(ctx context.Context) (*Outcome, error) {
	deadline := time.Time{}
	if o.cfg.Timeout > 0 {
		deadline = time.Now().Add(o.cfg.Timeout)
	}

	o.particles = make([]*Particle, o.cfg.SwarmSize)
	for i := range o.particles {
		o.particles[i] = newParticle(o.rng, o.cfg.Bounds)
	}

	// gbest starts at an arbitrary particle so step always has a position to
	// pull toward, even while every cost is still non-finite
	o.bestPos = append([]float64(nil), o.particles[0].Position...)

	costs := make([]float64, o.cfg.SwarmSize)
	o.evaluateAll(ctx, costs)
	o.absorb(costs)

	outcome := &Outcome{
		History:     make([]float64, 0, o.cfg.MaxIterations),
		Termination: MaxIterations,
	}

	stagnant := 0
	prevBest := o.bestCost

	for iter := 0; iter < o.cfg.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			outcome.Termination = Cancelled
			return o.finish(outcome, iter), ctx.Err()
		default:
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			outcome.Termination = TimedOut
			return o.finish(outcome, iter), nil
		}

		for _, p := range o.particles {
			p.step(o.rng, o.cfg.Inertia, o.cfg.Cognitive, o.cfg.Social, o.bestPos, o.cfg.Bounds)
		}

		o.evaluateAll(ctx, costs)
		o.absorb(costs)

		outcome.History = append(outcome.History, o.bestCost)
		if o.OnIteration != nil {
			o.OnIteration(iter, o.bestCost, o.bestPos)
		}

		if prevBest-o.bestCost < o.cfg.ConvergenceEps {
			stagnant++
			if o.cfg.ConvergenceWindow > 0 && stagnant >= o.cfg.ConvergenceWindow {
				outcome.Termination = Converged
				return o.finish(outcome, iter+1), nil
			}
		} else {
			stagnant = 0
		}
		prevBest = o.bestCost
	}

	return o.finish(outcome, o.cfg.MaxIterations), nil
}

// evaluateAll runs one fitness evaluation per particle on a bounded worker
// pool and waits for all of them: the per-iteration barrier.
func (o *Optimizer) evaluateAll(ctx context.Context, costs []float64) {
	workers := o.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(o.particles) {
		workers = len(o.particles)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				c := o.obj(ctx, o.particles[i].Position).Cost
				if math.IsNaN(c) {
					// NaN poisons every comparison in absorb; +Inf keeps
					// the ordering sane
					c = math.Inf(1)
				}
				costs[i] = c
			}
		}()
	}
	for i := range o.particles {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// absorb folds fresh costs into personal bests and the global best. Called
// only after the evaluation barrier.
func (o *Optimizer) absorb(costs []float64) {
	for i, p := range o.particles {
		if p.improve(costs[i]) && p.BestCost < o.bestCost {
			o.bestCost = p.BestCost
			if o.bestPos == nil {
				o.bestPos = make([]float64, len(p.BestPosition))
			}
			copy(o.bestPos, p.BestPosition)
		}
	}
}

func (o *Optimizer) finish(outcome *Outcome, iters int) *Outcome {
	outcome.Best = append([]float64(nil), o.bestPos...)
	outcome.Cost = o.bestCost
	outcome.Iterations = iters
	return outcome
}

// Best returns the current global best; valid once Run has started.
func (o *Optimizer) Best() ([]float64, float64) {
	return append([]float64(nil), o.bestPos...), o.bestCost
}
