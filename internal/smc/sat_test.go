package smc

import (
	"math"
	"testing"

	"dipctl/internal/dynamo"
)

func TestSatTanh(t *testing.T) {
	if Sat(SwitchTanh, 0) != 0 {
		t.Error("tanh switch should be zero at zero")
	}
	if v := Sat(SwitchTanh, 10); v <= 0.99 || v > 1 {
		t.Errorf("tanh switch should saturate near 1, got %f", v)
	}
	if v := Sat(SwitchTanh, -10); v >= -0.99 || v < -1 {
		t.Errorf("tanh switch should saturate near -1, got %f", v)
	}
}

func TestSatLinear(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0}, {0.5, 0.5}, {-0.5, -0.5}, {3, 1}, {-3, -1},
	}
	for _, tt := range tests {
		if got := Sat(SwitchLinear, tt.in); got != tt.want {
			t.Errorf("Sat(linear, %f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestSatOddSymmetry(t *testing.T) {
	for _, z := range []float64{0.1, 0.7, 2.3, 9} {
		if math.Abs(Sat(SwitchTanh, z)+Sat(SwitchTanh, -z)) > 1e-12 {
			t.Errorf("tanh switch not odd at %f", z)
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, -1, 1) != 1 || Clamp(-5, -1, 1) != -1 || Clamp(0.3, -1, 1) != 0.3 {
		t.Error("clamp misbehaves")
	}
}

func TestSign(t *testing.T) {
	if Sign(2) != 1 || Sign(-2) != -1 || Sign(0) != 0 {
		t.Error("sign misbehaves")
	}
}

func TestWrapToPi(t *testing.T) {
	if math.Abs(WrapToPi(3*math.Pi)-math.Pi) > 1e-12 {
		t.Errorf("wrap(3pi) = %f", WrapToPi(3*math.Pi))
	}
	if math.Abs(WrapToPi(-3*math.Pi)+math.Pi) > 1e-12 {
		t.Errorf("wrap(-3pi) = %f", WrapToPi(-3*math.Pi))
	}
	if WrapToPi(0.5) != 0.5 {
		t.Error("wrap should not change in-range angles")
	}
	if !math.IsNaN(WrapToPi(math.Inf(1))) || !math.IsNaN(WrapToPi(math.NaN())) {
		t.Error("non-finite angles should wrap to NaN")
	}
	// far outside a single turn
	if math.Abs(WrapToPi(1001*math.Pi)-math.Pi) > 1e-9 {
		t.Errorf("wrap(1001pi) = %f", WrapToPi(1001*math.Pi))
	}
}

func TestSurfaceWrapsWoundAngles(t *testing.T) {
	s := Surface{K1: 1, K2: 1, Lam1: 2, Lam2: 2}

	x := dynamo.State{0, 0.3, -0.2, 0, 0.1, 0.1}
	wound := x.Clone()
	wound[dynamo.Theta1] += 2 * math.Pi
	wound[dynamo.Theta2] -= 4 * math.Pi

	if math.Abs(s.Value(x)-s.Value(wound)) > 1e-9 {
		t.Errorf("sigma differs across full turns: %g vs %g", s.Value(x), s.Value(wound))
	}
}
