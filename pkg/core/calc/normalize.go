// Package calc derives the secondary financial ratios the screen
// evaluates and normalizes ambiguous units. All arithmetic is
// nil-tolerant: a missing input produces a missing output, never zero
// and never a panic.
package calc

import "math"

// NormalizeRatio rewrites a yield-like value into a decimal fraction.
//
// Providers are inconsistent about scale: a 6.2% yield may arrive as
// 6.2 or as 0.062. The rule is a heuristic, not a unit detector: any
// magnitude strictly above 1.0 is assumed percent-scale and divided by
// 100, anything else passes through unchanged. It must be applied to
// every yield-like field, never selectively. Already-normalized
// fractions are left alone, which makes the operation idempotent over
// the plausible input range.
func NormalizeRatio(v *float64) *float64 {
	if v == nil {
		return nil
	}
	if math.Abs(*v) > 1.0 {
		f := *v / 100
		return &f
	}
	return v
}
