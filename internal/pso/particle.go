package pso

import (
	"math"
	"math/rand"

	"dipctl/internal/smc"
)

// Particle is one candidate gain vector with its velocity and personal best.
// Particles are owned exclusively by the Optimizer; nothing else mutates them.
type Particle struct {
	Position     []float64
	Velocity     []float64
	BestPosition []float64
	BestCost     float64
}

// velocityClampRatio limits each velocity component to this fraction of the
// per-dimension search-space range.
const velocityClampRatio = 0.2

func newParticle(rng *rand.Rand, b smc.Bounds) *Particle {
	n := b.Dim()
	p := &Particle{
		Position:     make([]float64, n),
		Velocity:     make([]float64, n),
		BestPosition: make([]float64, n),
		BestCost:     math.Inf(1),
	}
	for i := 0; i < n; i++ {
		p.Position[i] = b.Low[i] + rng.Float64()*b.Span(i)
		// small initial velocity keeps the first iterations exploratory
		// without immediately hitting the clamp
		p.Velocity[i] = (rng.Float64() - 0.5) * velocityClampRatio * b.Span(i)
	}
	copy(p.BestPosition, p.Position)
	return p
}

// step applies the canonical velocity/position update
//
//	v <- w*v + c1*r1*(pbest - x) + c2*r2*(gbest - x)
//
// with independent uniform draws per dimension, clamps the velocity to 20% of
// the search range and the position to the bounds. Draws come from the
// optimizer's single rng so runs are reproducible regardless of worker count.
func (p *Particle) step(rng *rand.Rand, inertia, cognitive, social float64, globalBest []float64, b smc.Bounds) {
	for i := range p.Position {
		r1 := rng.Float64()
		r2 := rng.Float64()

		v := inertia*p.Velocity[i] +
			cognitive*r1*(p.BestPosition[i]-p.Position[i]) +
			social*r2*(globalBest[i]-p.Position[i])

		vmax := velocityClampRatio * b.Span(i)
		v = smc.Clamp(v, -vmax, vmax)

		p.Velocity[i] = v
		p.Position[i] = smc.Clamp(p.Position[i]+v, b.Low[i], b.High[i])
	}
}

// improve records a new personal best if the cost beats the current one.
func (p *Particle) improve(cost float64) bool {
	if cost < p.BestCost {
		p.BestCost = cost
		copy(p.BestPosition, p.Position)
		return true
	}
	return false
}
