package smc

import (
	"math"
	"testing"

	"dipctl/internal/dynamo"
	"dipctl/internal/plant"
)

func TestEquivalentControlNilModel(t *testing.T) {
	eq := &EquivalentControl{Model: nil, Fmax: 150}
	s := Surface{K1: 10, K2: 8, Lam1: 15, Lam2: 12}

	if u := eq.Compute(dynamo.State{0, 0.2, 0.1, 0, 1, 1}, s); u != 0 {
		t.Errorf("nil model must give zero feedforward, got %g", u)
	}

	var nilEq *EquivalentControl
	if u := nilEq.Compute(dynamo.State{0, 0, 0, 0, 0, 0}, s); u != 0 {
		t.Error("nil estimator must give zero feedforward")
	}
}

func TestEquivalentControlZeroAtUprightRest(t *testing.T) {
	eq := &EquivalentControl{Model: plant.NewDoubleInvertedPendulum(), Fmax: 150}
	s := Surface{K1: 10, K2: 8, Lam1: 15, Lam2: 12}

	u := eq.Compute(dynamo.State{0, 0, 0, 0, 0, 0}, s)
	if math.Abs(u) > 1e-9 {
		t.Errorf("no dynamics to cancel at upright rest, got %g", u)
	}
}

func TestEquivalentControlFiniteAndClamped(t *testing.T) {
	eq := &EquivalentControl{Model: plant.NewDoubleInvertedPendulum(), Fmax: 150}
	s := Surface{K1: 10, K2: 8, Lam1: 15, Lam2: 12}

	states := []dynamo.State{
		{0, 0.3, -0.2, 0.5, 2, -1},
		{1, 0.5, 0.5, -2, 5, 5},
		{-2, -0.4, 0.3, 1, -8, 4},
		{0, 1.5, -1.5, 10, 50, -50},
	}
	limit := 5.0 * 150
	for _, x := range states {
		u := eq.Compute(x, s)
		if math.IsNaN(u) || math.IsInf(u, 0) {
			t.Fatalf("non-finite feedforward at %v", x)
		}
		if math.Abs(u) > limit {
			t.Errorf("feedforward %g exceeds %g at %v", u, limit, x)
		}
	}
}

func TestControllabilityNonZeroNearUpright(t *testing.T) {
	eq := &EquivalentControl{Model: plant.NewDoubleInvertedPendulum(), Fmax: 150}
	s := Surface{K1: 10, K2: 8, Lam1: 15, Lam2: 12}

	b := eq.Controllability(dynamo.State{0, 0.05, 0.02, 0, 0, 0}, s)
	if b == 0 {
		t.Error("upright configuration should be controllable")
	}
}

func TestControllabilityThresholdScalesWithGains(t *testing.T) {
	// A surface with vanishing gains pushes the threshold above the actual
	// sensitivity, so the estimator must back off to zero.
	eq := &EquivalentControl{Model: plant.NewDoubleInvertedPendulum(), Fmax: 150}
	tiny := Surface{K1: 1e-7, K2: 1e-7, Lam1: 1, Lam2: 1}

	if u := eq.Compute(dynamo.State{0, 0.3, 0.2, 0, 1, 1}, tiny); u != 0 {
		t.Errorf("near-uncontrollable surface should disable feedforward, got %g", u)
	}
}
