package smc

import (
	"math"
	"math/rand"
	"testing"

	"dipctl/internal/dynamo"
)

// surrogateStep advances the one-dimensional reaching dynamics sigma-dot = u,
// expressed through omega1 so the laws see a normal state vector.
func surrogateStep(x dynamo.State, u, dt float64) dynamo.State {
	next := x.Clone()
	next[dynamo.Omega1] += dt * u
	return next
}

func surrogateSurfaceGains(k, kd float64) []float64 {
	// sigma reduces to omega1: unit weight on link 1, negligible on link 2
	return []float64{1, 1e-9, 1e-9, 1e-9, k, kd}
}

func testOptions() Options {
	opt := DefaultOptions()
	opt.BoundaryLayer = 0.1
	return opt
}

func TestClassicalSurfaceDecay(t *testing.T) {
	law := NewClassical(surrogateSurfaceGains(5, 1), testOptions())

	dt := 1e-3
	x := dynamo.State{0, 0, 0, 0, 1.25, 0}
	m := law.Init()

	sigma0 := math.Abs(law.Sigma(x))
	prev := sigma0
	var u float64

	for tt := 0.0; tt < 5.0; tt += dt {
		u, m = law.Compute(x, m, tt)
		x = surrogateStep(x, u, dt)

		cur := math.Abs(law.Sigma(x))
		if cur > prev+1e-9 {
			t.Fatalf("|sigma| grew from %g to %g at t=%.3f", prev, cur, tt)
		}
		prev = cur
	}

	if final := math.Abs(law.Sigma(x)); final > 0.01 {
		t.Errorf("|sigma| should fall below 0.01, got %g (from %g)", final, sigma0)
	}
}

func TestClassicalExponentialEnvelope(t *testing.T) {
	law := NewClassical(surrogateSurfaceGains(5, 1), testOptions())

	dt := 1e-3
	x := dynamo.State{0, 0, 0, 0, 1.25, 0}
	m := law.Init()
	sigma0 := math.Abs(law.Sigma(x))

	// With kd = 1 the decay is at least as fast as exp(-eta*t) for some
	// eta > 0; check the envelope at a modest eta.
	eta := 0.5
	var u float64
	for tt := 0.0; tt < 4.0; tt += dt {
		u, m = law.Compute(x, m, tt)
		x = surrogateStep(x, u, dt)
		if math.Abs(law.Sigma(x)) > sigma0*math.Exp(-eta*tt)+1e-6 {
			t.Fatalf("|sigma| above exponential envelope at t=%.3f", tt)
		}
	}
}

func TestClassicalHysteresisFreezesSwitching(t *testing.T) {
	opt := testOptions()
	opt.HysteresisRatio = 2.0 // band is 2*eps0 = 0.2
	law := NewClassical(surrogateSurfaceGains(5, 1), opt)

	x := dynamo.State{0, 0, 0, 0, 0.05, 0} // |sigma| inside the band
	u, _ := law.Compute(x, law.Init(), 0)

	want := -law.Kd * law.Sigma(x)
	if math.Abs(u-want) > 1e-12 {
		t.Errorf("inside hysteresis band only the damping term should act: got %g, want %g", u, want)
	}
}

func TestClassicalStateless(t *testing.T) {
	law := NewClassical(surrogateSurfaceGains(5, 1), testOptions())
	x := dynamo.State{0, 0.1, -0.05, 0, 0.4, -0.2}

	u1, m1 := law.Compute(x, law.Init(), 0)
	u2, m2 := law.Compute(x, law.Init(), 3.7)
	if u1 != u2 {
		t.Error("classical law must not depend on time or hidden state")
	}
	if m1.K != m2.K || m1.Integral != m2.Integral {
		t.Error("classical law must not accumulate memory")
	}
}

func TestAdaptiveGainStaysBounded(t *testing.T) {
	opt := testOptions()
	law := NewAdaptive([]float64{1, 1e-9, 1e-9, 1e-9, 5}, opt)

	rng := rand.New(rand.NewSource(7))
	m := law.Init()

	for i := 0; i < 20000; i++ {
		// adversarial inputs: large, sign-flipping surface values
		x := dynamo.State{0, 0, 0, 0, (rng.Float64() - 0.5) * 200, 0}
		_, m = law.Compute(x, m, float64(i)*opt.Dt)

		if m.K < law.KMin-1e-12 || m.K > law.KMax+1e-12 {
			t.Fatalf("adaptive gain escaped [%g, %g]: %g", law.KMin, law.KMax, m.K)
		}
		if m.TimeInSliding < 0 {
			t.Fatal("timeInSliding must stay non-negative")
		}
	}
}

func TestAdaptiveDeadZoneFreezesGain(t *testing.T) {
	opt := testOptions()
	opt.DeadZone = 0.5
	law := NewAdaptive([]float64{1, 1e-9, 1e-9, 1e-9, 5}, opt)

	m := law.Init()
	k0 := m.K
	x := dynamo.State{0, 0, 0, 0, 0.1, 0} // |sigma| well inside the dead zone
	_, m = law.Compute(x, m, 0)

	if m.K != k0 {
		t.Errorf("gain must freeze inside the dead zone: %g -> %g", k0, m.K)
	}
	if m.TimeInSliding <= 0 {
		t.Error("timeInSliding should accumulate inside the dead zone")
	}
}

func TestAdaptiveLeakPullsGainBack(t *testing.T) {
	opt := testOptions()
	law := NewAdaptive([]float64{1, 1e-9, 1e-9, 1e-9, 5}, opt)

	// Drive the gain up with a large surface value.
	m := law.Init()
	big := dynamo.State{0, 0, 0, 0, 50, 0}
	for i := 0; i < 2000; i++ {
		_, m = law.Compute(big, m, 0)
	}
	raised := m.K
	if raised <= law.KInit {
		t.Fatalf("gain should have grown above KInit, got %g", raised)
	}

	// Small persistent excitation just outside the dead zone: the leak term
	// dominates and K relaxes toward KInit.
	small := dynamo.State{0, 0, 0, 0, opt.DeadZone * 1.5, 0}
	for i := 0; i < 50000; i++ {
		_, m = law.Compute(small, m, 0)
	}
	if m.K >= raised {
		t.Errorf("leak should pull the gain down from %g, got %g", raised, m.K)
	}
}

func TestAdaptiveBetaScalesGrowth(t *testing.T) {
	grow := func(beta float64) float64 {
		opt := testOptions()
		opt.Beta = beta
		law := NewAdaptive([]float64{1, 1e-9, 1e-9, 1e-9, 2}, opt)
		m := law.Init()
		x := dynamo.State{0, 0, 0, 0, 5, 0}
		for i := 0; i < 100; i++ {
			_, m = law.Compute(x, m, 0)
		}
		return m.K
	}

	if grow(0.78) >= grow(1.0) {
		t.Error("lower actuation efficiency must slow gain growth")
	}
}

func TestSuperTwistingConverges(t *testing.T) {
	opt := testOptions()
	opt.BoundaryLayer = 0.02
	law := NewSuperTwisting([]float64{2, 1, 1, 1e-9, 1e-9, 1e-9}, opt)

	dt := opt.Dt
	x := dynamo.State{0, 0, 0, 0, 1.0, 0}
	m := law.Init()
	var u float64
	for tt := 0.0; tt < 10.0; tt += dt {
		u, m = law.Compute(x, m, tt)
		x = surrogateStep(x, u, dt)
	}

	if final := math.Abs(law.Sigma(x)); final > 0.1 {
		t.Errorf("super-twisting should drive |sigma| near zero, got %g", final)
	}
}

func TestSuperTwistingIntegralClamped(t *testing.T) {
	opt := testOptions()
	law := NewSuperTwisting([]float64{2, 500, 1, 1e-9, 1e-9, 1e-9}, opt)

	m := law.Init()
	x := dynamo.State{0, 0, 0, 0, 10, 0}
	for i := 0; i < 10000; i++ {
		_, m = law.Compute(x, m, 0)
	}
	if math.Abs(m.Integral) > opt.Fmax {
		t.Errorf("integral state must stay within the actuator limit, got %g", m.Integral)
	}
}

func TestHybridEmergencyReset(t *testing.T) {
	opt := testOptions()
	law := NewHybrid([]float64{1, 1, 1, 1}, opt)

	m := Memory{K1: 10 * law.K1Max, K2: 10 * law.K2Max, Integral: 80}
	x := dynamo.State{0, 0.01, 0.01, 0, 0, 0}
	_, m = law.Compute(x, m, 0)

	if m.K1 > law.K1Max || m.K2 > law.K2Max {
		t.Errorf("runaway gains should reset: K1=%g K2=%g", m.K1, m.K2)
	}
}

func TestHybridGainsBounded(t *testing.T) {
	opt := testOptions()
	law := NewHybrid([]float64{5, 3, 4, 2}, opt)

	rng := rand.New(rand.NewSource(11))
	m := law.Init()
	for i := 0; i < 20000; i++ {
		x := dynamo.State{
			(rng.Float64() - 0.5) * 4,
			(rng.Float64() - 0.5),
			(rng.Float64() - 0.5),
			(rng.Float64() - 0.5) * 4,
			(rng.Float64() - 0.5) * 20,
			(rng.Float64() - 0.5) * 20,
		}
		_, m = law.Compute(x, m, 0)
		if m.K1 < 0 || m.K1 > law.K1Max || m.K2 < 0 || m.K2 > law.K2Max {
			t.Fatalf("hybrid gains escaped bounds: K1=%g K2=%g", m.K1, m.K2)
		}
	}
}

func TestAllVariantsBounded(t *testing.T) {
	opt := DefaultOptions()
	laws := map[Variant][]float64{
		VariantClassical:     {10, 8, 15, 12, 50, 5},
		VariantAdaptive:      {10, 8, 15, 12, 2},
		VariantSuperTwisting: {25, 12, 10, 8, 15, 12},
		VariantHybrid:        {10, 12, 8, 15},
	}

	rng := rand.New(rand.NewSource(3))
	for variant, gains := range laws {
		law, err := New(variant, gains, DefaultBounds(variant), opt)
		if err != nil {
			t.Fatalf("%s: %v", variant, err)
		}
		m := law.Init()
		var u float64
		for i := 0; i < 5000; i++ {
			x := dynamo.State{
				(rng.Float64() - 0.5) * 10,
				(rng.Float64() - 0.5) * 3,
				(rng.Float64() - 0.5) * 3,
				(rng.Float64() - 0.5) * 10,
				(rng.Float64() - 0.5) * 30,
				(rng.Float64() - 0.5) * 30,
			}
			u, m = law.Compute(x, m, float64(i)*opt.Dt)
			if math.IsNaN(u) || math.Abs(u) > opt.Fmax {
				t.Fatalf("%s: force %g outside +/-%g", variant, u, opt.Fmax)
			}
		}
	}
}

func TestComputeIsPure(t *testing.T) {
	opt := DefaultOptions()
	for variant, gains := range map[Variant][]float64{
		VariantAdaptive:      {10, 8, 15, 12, 2},
		VariantSuperTwisting: {25, 12, 10, 8, 15, 12},
		VariantHybrid:        {10, 12, 8, 15},
	} {
		law, err := New(variant, gains, DefaultBounds(variant), opt)
		if err != nil {
			t.Fatalf("%s: %v", variant, err)
		}
		x := dynamo.State{0.2, 0.1, -0.1, 0.3, 0.5, -0.5}
		m := law.Init()
		u1, m1 := law.Compute(x, m, 1.0)
		u2, m2 := law.Compute(x, m, 1.0)
		if u1 != u2 || m1 != m2 {
			t.Errorf("%s: Compute not pure with respect to explicit memory", variant)
		}
	}
}

func TestRunnerThreadsMemoryAndTrace(t *testing.T) {
	law := NewAdaptive([]float64{1, 1e-9, 1e-9, 1e-9, 5}, testOptions())
	r := NewRunner(law)

	x := dynamo.State{0, 0, 0, 0, 2.0, 0}
	for i := 0; i < 10; i++ {
		u := r.Compute(x, float64(i)*0.01)
		if len(u) != 1 {
			t.Fatal("runner should emit a scalar force")
		}
	}

	tr := r.Trace()
	for _, key := range []string{"sigma", "force", "gain"} {
		if len(tr[key]) != 10 {
			t.Errorf("trace %q should have 10 samples, got %d", key, len(tr[key]))
		}
	}
	if r.Memory().K <= law.KInit {
		t.Error("adaptive gain should have grown over the rollout")
	}
}

func TestNewRejectsInvalidGains(t *testing.T) {
	_, err := New(VariantClassical, []float64{1, 2}, DefaultBounds(VariantClassical), DefaultOptions())
	if err == nil {
		t.Error("expected hard error for malformed gain vector")
	}
}
