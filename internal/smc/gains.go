package smc

import (
	"fmt"
	"math"
)

// Variant identifies one member of the sliding-mode control family.
type Variant string

const (
	VariantClassical     Variant = "classical"
	VariantAdaptive      Variant = "adaptive"
	VariantSuperTwisting Variant = "sta"
	VariantHybrid        Variant = "hybrid"
)

// GainCount returns the fixed parameter count of the variant's gain vector.
//
// Orders:
//
//	classical: [k1, k2, lam1, lam2, K, kd]
//	adaptive:  [k1, k2, lam1, lam2, gamma]
//	sta:       [K1, K2, k1, k2, lam1, lam2]
//	hybrid:    [c1, lam1, c2, lam2]
func (v Variant) GainCount() int {
	switch v {
	case VariantClassical, VariantSuperTwisting:
		return 6
	case VariantAdaptive:
		return 5
	case VariantHybrid:
		return 4
	default:
		return 0
	}
}

// Valid reports whether v names a known variant.
func (v Variant) Valid() bool {
	switch v {
	case VariantClassical, VariantAdaptive, VariantSuperTwisting, VariantHybrid:
		return true
	}
	return false
}

// Bounds holds per-dimension [low, high] limits for a gain vector. They double
// as the PSO search space.
type Bounds struct {
	Low  []float64
	High []float64
}

// DefaultBounds returns the search-space limits used when a config does not
// override them.
func DefaultBounds(v Variant) Bounds {
	n := v.GainCount()
	low := make([]float64, n)
	high := make([]float64, n)
	for i := range low {
		low[i] = 0.1
		high[i] = 50.0
	}
	switch v {
	case VariantClassical:
		high[4] = 200.0 // switching gain K
		high[5] = 20.0  // damping kd
	case VariantAdaptive:
		high[4] = 10.0 // adaptation rate gamma
	case VariantSuperTwisting:
		high[0] = 100.0 // K1
		high[1] = 100.0 // K2
	}
	return Bounds{Low: low, High: high}
}

// Span returns the per-dimension search-space range high-low.
func (b Bounds) Span(i int) float64 { return b.High[i] - b.Low[i] }

func (b Bounds) Dim() int { return len(b.Low) }

// Validate rejects a structurally invalid gain vector: wrong length,
// non-finite or non-positive entries, or entries outside the declared bounds.
// This is the only hard error in the control path and it is raised before any
// simulation. Validation is pure: the same vector always yields the same
// verdict.
func Validate(v Variant, gains []float64, b Bounds) error {
	if !v.Valid() {
		return fmt.Errorf("unknown controller variant %q", v)
	}
	if len(gains) != v.GainCount() {
		return fmt.Errorf("%s controller needs %d gains, got %d", v, v.GainCount(), len(gains))
	}
	if len(b.Low) != len(gains) || len(b.High) != len(gains) {
		return fmt.Errorf("bounds dimension %d does not match gain count %d", len(b.Low), len(gains))
	}
	for i, g := range gains {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return fmt.Errorf("gain %d is not finite", i)
		}
		if g <= 0 {
			return fmt.Errorf("gain %d must be positive, got %g", i, g)
		}
		if g < b.Low[i] || g > b.High[i] {
			return fmt.Errorf("gain %d = %g outside bounds [%g, %g]", i, g, b.Low[i], b.High[i])
		}
	}
	return nil
}

// ValidateSuperTwisting checks the design-time stability conditions
//
//	K1 > 2*sqrt(2*d/beta)   and   K2 > d/beta
//
// for disturbance bound d and actuation efficiency beta. These are advisory
// at design time, not runtime assertions.
func ValidateSuperTwisting(k1, k2, disturbanceBound, beta float64) error {
	if beta <= 0 {
		return fmt.Errorf("actuation efficiency must be positive, got %g", beta)
	}
	if disturbanceBound < 0 {
		return fmt.Errorf("disturbance bound must be non-negative, got %g", disturbanceBound)
	}
	k1Min := 2 * math.Sqrt(2*disturbanceBound/beta)
	k2Min := disturbanceBound / beta
	if k1 <= k1Min {
		return fmt.Errorf("K1 = %g too small for disturbance bound %g (need > %g)", k1, disturbanceBound, k1Min)
	}
	if k2 <= k2Min {
		return fmt.Errorf("K2 = %g too small for disturbance bound %g (need > %g)", k2, disturbanceBound, k2Min)
	}
	return nil
}
