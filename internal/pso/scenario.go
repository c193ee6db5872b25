package pso

import "dipctl/internal/dynamo"

// Scenario is one weighted initial condition of the robust fitness mode.
// Evaluating a candidate across a spread of perturbations keeps the tuner
// from overfitting gains to a single nominal start.
type Scenario struct {
	Name    string
	Weight  float64
	Initial dynamo.State
}

// DefaultScenarios returns the nominal / moderate / large perturbation set.
// Weights favor the nominal case; the worst-case term of the robust cost
// covers the tail.
func DefaultScenarios(nominal, moderate, large float64) []Scenario {
	return []Scenario{
		{
			Name:    "nominal",
			Weight:  nominal,
			Initial: dynamo.State{0, 0.05, 0.03, 0, 0, 0},
		},
		{
			Name:    "moderate",
			Weight:  moderate,
			Initial: dynamo.State{0, 0.15, -0.10, 0, 0.3, -0.2},
		},
		{
			Name:    "large",
			Weight:  large,
			Initial: dynamo.State{0, 0.30, 0.25, 0, 0.8, 0.6},
		},
	}
}
