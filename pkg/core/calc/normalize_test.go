package calc

import (
	"testing"

	"valuescreen/pkg/models"
)

func TestNormalizeRatioPercentScale(t *testing.T) {
	// 6.2 is percent-scale: 6.2% -> 0.062
	got := NormalizeRatio(models.Float(6.2))
	if got == nil || *got != 0.062 {
		t.Errorf("expected 0.062, got %v", deref(got))
	}

	// 0.062 is already a fraction and must pass through unchanged
	got = NormalizeRatio(models.Float(0.062))
	if got == nil || *got != 0.062 {
		t.Errorf("expected 0.062 unchanged, got %v", deref(got))
	}
}

func TestNormalizeRatioZeroIsAValue(t *testing.T) {
	// Zero means "no dividend", a real policy. It must survive as
	// zero, never become nil.
	got := NormalizeRatio(models.Float(0))
	if got == nil || *got != 0 {
		t.Errorf("expected 0, got %v", deref(got))
	}
}

func TestNormalizeRatioNil(t *testing.T) {
	if NormalizeRatio(nil) != nil {
		t.Error("nil input must normalize to nil")
	}
}

func TestNormalizeRatioIdempotent(t *testing.T) {
	for _, v := range []float64{0, 0.0001, 0.045, 0.062, 1.0, 6.2, 43.7, 99.9, -0.03, -6.2} {
		once := NormalizeRatio(models.Float(v))
		twice := NormalizeRatio(once)
		if *once != *twice {
			t.Errorf("normalize(%v) not idempotent: %v then %v", v, *once, *twice)
		}
	}
}

func TestNormalizeRatioBoundary(t *testing.T) {
	// Strictly-exceeds rule: exactly 1.0 is left alone.
	got := NormalizeRatio(models.Float(1.0))
	if *got != 1.0 {
		t.Errorf("1.0 must pass through, got %v", *got)
	}
	got = NormalizeRatio(models.Float(1.01))
	if *got != 0.0101 {
		t.Errorf("1.01 must divide, got %v", *got)
	}
}

func deref(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
