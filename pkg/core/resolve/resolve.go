// Package resolve collapses the potentially many historical rows per
// ticker into exactly one canonical "current" row.
package resolve

import (
	"sort"
	"time"

	"valuescreen/pkg/models"
)

// FieldFn extracts one nullable numeric field from a record; used by
// LatestPreferComplete to score completeness.
type FieldFn func(models.CanonicalRecord) *float64

// Latest keeps one record per ticker: the last element under a stable
// ascending sort by (as-of date, last-updated timestamp). That is the
// most recent fiscal period, and among same-period candidates the most
// recently revised one.
//
// A nil date orders before any real date. When every candidate has nil
// for both fields the stable sort leaves input order intact and the
// last input row wins; the choice is arbitrary but deterministic. A
// ticker with at least one candidate is never dropped.
func Latest(records []models.CanonicalRecord) []models.CanonicalRecord {
	return latest(records, nil)
}

// LatestPreferComplete is Latest with a secondary policy: among rows
// tied on (as-of, last-updated), the row with the fewest nil values
// across the given fields wins. Equal completeness falls back to the
// primary ordering's pick.
func LatestPreferComplete(records []models.CanonicalRecord, fields []FieldFn) []models.CanonicalRecord {
	return latest(records, fields)
}

func latest(records []models.CanonicalRecord, fields []FieldFn) []models.CanonicalRecord {
	groups := make(map[string][]models.CanonicalRecord)
	var order []string
	for _, rec := range records {
		if _, seen := groups[rec.Ticker]; !seen {
			order = append(order, rec.Ticker)
		}
		groups[rec.Ticker] = append(groups[rec.Ticker], rec)
	}

	out := make([]models.CanonicalRecord, 0, len(groups))
	for _, ticker := range order {
		cands := groups[ticker]
		sort.SliceStable(cands, func(i, j int) bool {
			return before(cands[i], cands[j])
		})

		pick := cands[len(cands)-1]
		if len(fields) > 0 {
			pick = preferComplete(cands, pick, fields)
		}
		out = append(out, pick)
	}
	return out
}

// preferComplete re-picks among candidates tied with the primary pick
// on (as-of, last-updated): fewest nils wins, ties keep the later row.
func preferComplete(cands []models.CanonicalRecord, pick models.CanonicalRecord, fields []FieldFn) models.CanonicalRecord {
	best := pick
	bestNils := nilCount(pick, fields)
	for _, c := range cands {
		if !tied(c, pick) {
			continue
		}
		if n := nilCount(c, fields); n < bestNils {
			best, bestNils = c, n
		}
	}
	return best
}

func nilCount(rec models.CanonicalRecord, fields []FieldFn) int {
	n := 0
	for _, f := range fields {
		if f(rec) == nil {
			n++
		}
	}
	return n
}

func before(a, b models.CanonicalRecord) bool {
	at, bt := orZero(a.AsOf), orZero(b.AsOf)
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return orZero(a.LastUpdated).Before(orZero(b.LastUpdated))
}

func tied(a, b models.CanonicalRecord) bool {
	return orZero(a.AsOf).Equal(orZero(b.AsOf)) &&
		orZero(a.LastUpdated).Equal(orZero(b.LastUpdated))
}

func orZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
