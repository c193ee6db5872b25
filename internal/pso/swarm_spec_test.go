package pso_test

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"dipctl/internal/pso"
	"dipctl/internal/smc"
)

func bounds4() smc.Bounds {
	return smc.Bounds{
		Low:  []float64{0.1, 0.1, 0.1, 0.1},
		High: []float64{50, 50, 50, 50},
	}
}

// sphere has its minimum at the target point inside the bounds
func sphere(target []float64) pso.Objective {
	return func(_ context.Context, pos []float64) pso.FitnessResult {
		sum := 0.0
		for i, v := range pos {
			d := v - target[i]
			sum += d * d
		}
		return pso.FitnessResult{Cost: sum}
	}
}

var _ = Describe("Optimizer", func() {
	var cfg pso.Config

	BeforeEach(func() {
		cfg = pso.DefaultConfig(bounds4())
		cfg.SwarmSize = 30
		cfg.MaxIterations = 120
		cfg.Seed = 42
		cfg.Workers = 4
		cfg.ConvergenceWindow = 0 // run the full budget unless a test opts in
	})

	It("drives the global best toward the optimum of a smooth landscape", func() {
		opt, err := pso.NewOptimizer(cfg, sphere([]float64{10, 20, 30, 5}))
		Expect(err).NotTo(HaveOccurred())

		out, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Cost).To(BeNumerically("<", 5.0))
	})

	It("never increases the global-best cost across iterations", func() {
		opt, err := pso.NewOptimizer(cfg, sphere([]float64{25, 25, 25, 25}))
		Expect(err).NotTo(HaveOccurred())

		out, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		for i := 1; i < len(out.History); i++ {
			Expect(out.History[i]).To(BeNumerically("<=", out.History[i-1]))
		}
	})

	It("reproduces a run exactly for a fixed seed", func() {
		run := func(workers int) *pso.Outcome {
			c := cfg
			c.Workers = workers
			opt, err := pso.NewOptimizer(c, sphere([]float64{10, 20, 30, 5}))
			Expect(err).NotTo(HaveOccurred())
			out, err := opt.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			return out
		}

		a := run(1)
		b := run(8)
		Expect(a.Cost).To(Equal(b.Cost))
		Expect(a.Best).To(Equal(b.Best))
		Expect(a.History).To(Equal(b.History))
	})

	It("keeps every best position inside the search bounds", func() {
		opt, err := pso.NewOptimizer(cfg, sphere([]float64{0.2, 49, 0.2, 49}))
		Expect(err).NotTo(HaveOccurred())

		out, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		b := bounds4()
		for i, v := range out.Best {
			Expect(v).To(BeNumerically(">=", b.Low[i]))
			Expect(v).To(BeNumerically("<=", b.High[i]))
		}
	})

	It("stops early once the global best stagnates", func() {
		cfg.ConvergenceWindow = 20
		flat := func(_ context.Context, _ []float64) pso.FitnessResult {
			return pso.FitnessResult{Cost: 1.0}
		}
		opt, err := pso.NewOptimizer(cfg, flat)
		Expect(err).NotTo(HaveOccurred())

		out, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Termination).To(Equal(pso.Converged))
		Expect(out.Iterations).To(BeNumerically("<", cfg.MaxIterations))
	})

	It("returns the current best on wall-clock timeout", func() {
		cfg.Timeout = time.Nanosecond
		opt, err := pso.NewOptimizer(cfg, sphere([]float64{10, 20, 30, 5}))
		Expect(err).NotTo(HaveOccurred())

		out, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Termination).To(Equal(pso.TimedOut))
		Expect(out.Best).To(HaveLen(4))
	})

	It("rejects malformed configurations", func() {
		bad := cfg
		bad.SwarmSize = 0
		_, err := pso.NewOptimizer(bad, sphere([]float64{1, 1, 1, 1}))
		Expect(err).To(HaveOccurred())

		bad = cfg
		bad.Bounds = smc.Bounds{Low: []float64{1}, High: []float64{1}}
		_, err = pso.NewOptimizer(bad, sphere([]float64{1}))
		Expect(err).To(HaveOccurred())
	})

	It("completes even when every candidate cost is non-finite", func() {
		cfg.MaxIterations = 10
		hopeless := func(_ context.Context, _ []float64) pso.FitnessResult {
			return pso.FitnessResult{Cost: math.Inf(1), Unstable: true}
		}
		opt, err := pso.NewOptimizer(cfg, hopeless)
		Expect(err).NotTo(HaveOccurred())

		out, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Best).To(HaveLen(4))
		b := bounds4()
		for i, v := range out.Best {
			Expect(v).To(BeNumerically(">=", b.Low[i]))
			Expect(v).To(BeNumerically("<=", b.High[i]))
		}
	})

	It("recovers once a NaN-scoring region is left behind", func() {
		cfg.MaxIterations = 60
		target := []float64{10, 20, 30, 5}
		spotty := func(_ context.Context, pos []float64) pso.FitnessResult {
			if pos[0] < 5 {
				return pso.FitnessResult{Cost: math.NaN(), Unstable: true}
			}
			return sphere(target)(context.Background(), pos)
		}
		opt, err := pso.NewOptimizer(cfg, spotty)
		Expect(err).NotTo(HaveOccurred())

		out, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsNaN(out.Cost)).To(BeFalse())
		Expect(out.Cost).To(BeNumerically("<", math.Inf(1)))
	})

	It("stops between iterations when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		opt, err := pso.NewOptimizer(cfg, sphere([]float64{10, 20, 30, 5}))
		Expect(err).NotTo(HaveOccurred())

		out, runErr := opt.Run(ctx)
		Expect(runErr).To(HaveOccurred())
		Expect(out.Termination).To(Equal(pso.Cancelled))
	})
})
