package calc

import "valuescreen/pkg/models"

// ComputeRatios fills the derived ratio fields of a ScoredRecord from
// its canonical inputs.
//
// Each ratio is an ordered source chain evaluated until one yields a
// value: the directly supplied provider field first (it may reflect
// trailing-twelve-month smoothing the primaries cannot reproduce),
// then derivation from primary fields. Division by a nil, zero, or
// negative denominator yields nil. The sign of a supplied ratio is
// preserved here; the unratable-negative policy belongs to the rule
// engine, where the caller's override can act on it.
func ComputeRatios(rec models.CanonicalRecord) models.ScoredRecord {
	sr := models.ScoredRecord{CanonicalRecord: rec}

	sr.PE = firstOf(
		rec.PERatio,
		safeDiv(rec.Price, rec.EPS),
	)
	sr.PB = firstOf(
		rec.PBRatio,
		safeDiv(rec.Price, rec.BookValuePerShare),
	)
	sr.DE = firstOf(
		rec.DebtEquity,
		safeDiv(rec.LongTermDebt, rec.Equity),
	)
	sr.Yield = NormalizeRatio(firstOf(
		rec.DividendYield,
		safeDiv(rec.DividendPerShare, rec.Price),
	))

	return sr
}

// safeDiv returns num/den, or nil when either side is missing or the
// denominator is not strictly positive. A non-positive denominator
// (zero book value, negative equity) makes the ratio economically
// incomparable, so it is absent rather than infinite or negative.
func safeDiv(num, den *float64) *float64 {
	if num == nil || den == nil || *den <= 0 {
		return nil
	}
	f := *num / *den
	return &f
}

func firstOf(candidates ...*float64) *float64 {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
