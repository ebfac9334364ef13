package calc

import (
	"testing"

	"valuescreen/pkg/models"
)

func TestComputeRatiosDerived(t *testing.T) {
	rec := models.CanonicalRecord{
		Ticker:            "A",
		Price:             models.Float(10),
		EPS:               models.Float(1.0),
		BookValuePerShare: models.Float(12.5),
		DividendPerShare:  models.Float(0.6),
		LongTermDebt:      models.Float(50),
		Equity:            models.Float(100),
	}

	sr := ComputeRatios(rec)

	checkFloat(t, "PE", sr.PE, 10)
	checkFloat(t, "PB", sr.PB, 0.8)
	checkFloat(t, "DE", sr.DE, 0.5)
	checkFloat(t, "Yield", sr.Yield, 0.06)
}

func TestComputeRatiosDirectFieldPrecedence(t *testing.T) {
	// The provider's own trailing-twelve-month P/E (11.2) must win
	// over the 10.0 the primaries would derive.
	rec := models.CanonicalRecord{
		Ticker:  "A",
		Price:   models.Float(10),
		EPS:     models.Float(1.0),
		PERatio: models.Float(11.2),
	}
	sr := ComputeRatios(rec)
	checkFloat(t, "PE", sr.PE, 11.2)

	// Same for yield, including unit normalization of the supplied
	// percent-scale value.
	rec = models.CanonicalRecord{
		Ticker:           "A",
		Price:            models.Float(10),
		DividendPerShare: models.Float(0.3), // would derive 0.03
		DividendYield:    models.Float(6.2), // supplied, percent scale
	}
	sr = ComputeRatios(rec)
	checkFloat(t, "Yield", sr.Yield, 0.062)
}

func TestComputeRatiosNullDenominators(t *testing.T) {
	// Zero book value: P/B is null, not an error or infinity.
	sr := ComputeRatios(models.CanonicalRecord{
		Price:             models.Float(10),
		BookValuePerShare: models.Float(0),
	})
	if sr.PB != nil {
		t.Errorf("expected nil P/B for zero book value, got %v", *sr.PB)
	}

	// Negative earnings: the derived P/E would be negative, which is
	// not comparable; the non-positive denominator rule nulls it.
	sr = ComputeRatios(models.CanonicalRecord{
		Price: models.Float(10),
		EPS:   models.Float(-2),
	})
	if sr.PE != nil {
		t.Errorf("expected nil P/E for negative earnings, got %v", *sr.PE)
	}

	// Missing EPS entirely.
	sr = ComputeRatios(models.CanonicalRecord{Price: models.Float(10)})
	if sr.PE != nil {
		t.Errorf("expected nil P/E for missing EPS, got %v", *sr.PE)
	}
}

func TestComputeRatiosNullDividendIsNotZero(t *testing.T) {
	// Null dividend-per-share with a real price: yield must be null,
	// never zero.
	sr := ComputeRatios(models.CanonicalRecord{Price: models.Float(10)})
	if sr.Yield != nil {
		t.Errorf("expected nil yield, got %v", *sr.Yield)
	}

	// But a true zero dividend derives a true zero yield.
	sr = ComputeRatios(models.CanonicalRecord{
		Price:            models.Float(10),
		DividendPerShare: models.Float(0),
	})
	checkFloat(t, "Yield", sr.Yield, 0)
}

func checkFloat(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: expected %v, got nil", name, want)
		return
	}
	if *got != want {
		t.Errorf("%s: expected %v, got %v", name, want, *got)
	}
}
