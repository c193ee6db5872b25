package metrics

import (
	"math"
	"testing"

	"dipctl/internal/dynamo"
)

func TestTrackingErrorAccumulates(t *testing.T) {
	m := NewTrackingError(0.1)

	m.Observe(dynamo.State{0, 0, 0, 0, 0, 0}, dynamo.Control{0}, 0)
	if m.Value() != 0 {
		t.Error("zero state should contribute nothing")
	}

	m.Observe(dynamo.State{1, 0, 0, 0, 0, 0}, dynamo.Control{0}, 0.1)
	want := 1.0 * 0.1
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("reset should clear the accumulator")
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort(0.5)
	m.Observe(nil, dynamo.Control{2}, 0)
	m.Observe(nil, dynamo.Control{-2}, 0.5)

	want := 4.0*0.5 + 4.0*0.5
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, m.Value())
	}
}

func TestControlRateIgnoresFirstSample(t *testing.T) {
	m := NewControlRate(0.1)
	m.Observe(nil, dynamo.Control{100}, 0)
	if m.Value() != 0 {
		t.Error("first sample has no predecessor, rate should be zero")
	}

	m.Observe(nil, dynamo.Control{101}, 0.1)
	// rate = 1/0.1 = 10, contribution 10^2*0.1 = 10
	if math.Abs(m.Value()-10.0) > 1e-9 {
		t.Errorf("expected 10, got %f", m.Value())
	}
}

func TestControlRatePenalizesChattering(t *testing.T) {
	smooth := NewControlRate(0.01)
	chatter := NewControlRate(0.01)

	for i := 0; i < 100; i++ {
		smooth.Observe(nil, dynamo.Control{10}, float64(i)*0.01)
		sign := 1.0
		if i%2 == 1 {
			sign = -1
		}
		chatter.Observe(nil, dynamo.Control{10 * sign}, float64(i)*0.01)
	}

	if chatter.Value() <= smooth.Value() {
		t.Error("alternating force must score worse than constant force")
	}
}

func TestSurfaceEnergy(t *testing.T) {
	sigma := func(x dynamo.State) float64 { return x[dynamo.Omega1] }
	m := NewSurfaceEnergy(0.1, sigma)

	m.Observe(dynamo.State{0, 0, 0, 0, 3, 0}, dynamo.Control{0}, 0)
	if math.Abs(m.Value()-0.9) > 1e-12 {
		t.Errorf("expected 0.9, got %f", m.Value())
	}

	// non-finite sigma values are skipped, not propagated
	m.Observe(dynamo.State{0, 0, 0, 0, math.NaN(), 0}, dynamo.Control{0}, 0.1)
	if math.IsNaN(m.Value()) {
		t.Error("NaN must not poison the accumulator")
	}
}

func TestMetricNames(t *testing.T) {
	names := map[string]dynamo.Metric{
		"ise":            NewTrackingError(0.01),
		"effort":         NewControlEffort(0.01),
		"control_rate":   NewControlRate(0.01),
		"surface_energy": NewSurfaceEnergy(0.01, nil),
	}
	for want, m := range names {
		if m.Name() != want {
			t.Errorf("expected name %q, got %q", want, m.Name())
		}
	}
}
