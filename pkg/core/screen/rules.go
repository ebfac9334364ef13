// Package screen evaluates canonical records against the fixed
// value-investing rule set.
package screen

import "valuescreen/pkg/models"

// Fixed rule bounds. These define the screen itself and are not
// tunables; the dividend yield floor is the single externally
// configurable parameter.
const (
	MaxPERatio    = 13.0
	MaxPBRatio    = 1.0
	MaxDebtEquity = 1.0
)

// Thresholds carries the externally configurable rule parameters.
type Thresholds struct {
	// MinDividendYield is the treasury-yield floor, a decimal
	// fraction (0.045 = 4.5%).
	MinDividendYield float64

	// CountNegativeMultiples makes a negative P/E or P/B satisfy its
	// "<= bound" rule instead of being treated as unratable. The
	// historical intent is ambiguous; default off.
	CountNegativeMultiples bool
}

// Evaluate scores one record against the four rules. A nil input field
// fails its rule; no rule is ever skipped. RulesPassed is always
// computed regardless of the aggregate outcome so near misses can be
// ranked.
func Evaluate(sr models.ScoredRecord, th Thresholds) models.ScoredRecord {
	sr.YieldOK = sr.Yield != nil && *sr.Yield >= th.MinDividendYield
	sr.PEOK = leqOrUnratable(sr.PE, MaxPERatio, th.CountNegativeMultiples)
	sr.PBOK = leqOrUnratable(sr.PB, MaxPBRatio, th.CountNegativeMultiples)
	sr.DebtOK = sr.DE != nil && *sr.DE <= MaxDebtEquity

	sr.RulesPassed = 0
	for _, ok := range []bool{sr.YieldOK, sr.PEOK, sr.PBOK, sr.DebtOK} {
		if ok {
			sr.RulesPassed++
		}
	}
	sr.Pass = sr.YieldOK && sr.PEOK && sr.PBOK && sr.DebtOK
	return sr
}

// Evaluable reports whether the record carries enough data to evaluate
// at least one rule. Records failing this are skipped, not scored.
func Evaluable(sr models.ScoredRecord) bool {
	return sr.Yield != nil || sr.PE != nil || sr.PB != nil || sr.DE != nil
}

// leqOrUnratable applies a "<= bound" rule. A negative multiple (from
// negative earnings or book value) is not economically comparable to
// the bound: it fails as unratable unless the override is set.
func leqOrUnratable(v *float64, bound float64, negOK bool) bool {
	if v == nil {
		return false
	}
	if *v < 0 {
		return negOK
	}
	return *v <= bound
}
