// Package report ranks the scored records and packages run statistics
// into the published artifacts.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"valuescreen/pkg/models"
)

// Publication precision: 2 decimals for price, 4 for multiples, 6 for
// yield.
const (
	pricePlaces    = 2
	multiplePlaces = 4
	yieldPlaces    = 6
)

// DefaultTopCandidates is the near-miss list length when the caller
// does not choose one.
const DefaultTopCandidates = 10

// RunReport is the full output of one screen run. It is a standalone
// artifact: nothing in it refers to a previous run.
type RunReport struct {
	RunID         string             `json:"runId"`
	RunDate       string             `json:"runDate"` // ISO-8601, UTC
	Config        ConfigSnapshot     `json:"config"`
	Stats         map[string]float64 `json:"stats"`
	Pass          []Entry            `json:"pass"`
	TopCandidates []Candidate        `json:"topCandidates,omitempty"`
}

// ConfigSnapshot records the configuration the run was evaluated
// under, so a reader of the artifact does not have to reconstruct it.
type ConfigSnapshot struct {
	YieldThreshold         float64 `json:"yieldThreshold"`
	CountNegativeMultiples bool    `json:"countNegativeMultiples"`
}

// Entry is one security in the pass list, rounded for publication.
// Nil ratios publish as JSON null and as an empty CSV cell.
type Entry struct {
	Ticker        string   `json:"ticker" csv:"ticker"`
	Exchange      string   `json:"exchange,omitempty" csv:"exchange"`
	Price         *float64 `json:"price" csv:"price"`
	PERatio       *float64 `json:"peRatio" csv:"pe_ratio"`
	PBRatio       *float64 `json:"pbRatio" csv:"pb_ratio"`
	DebtEquity    *float64 `json:"debtEquity" csv:"debt_equity"`
	DividendYield *float64 `json:"dividendYield" csv:"dividend_yield"`
}

// Candidate is an Entry plus its partial rule satisfaction, for the
// near-miss diagnostic list.
type Candidate struct {
	Entry
	RulesPassed int `json:"rulesPassed" csv:"rules_passed"`
}

// Assemble builds the report for one run.
//
// The pass list is sorted by dividend yield descending, then P/E
// ascending, then ticker for determinism. topCandidates is the top
// topN of all scored records by (rules passed desc, yield desc,
// ticker); topN <= 0 omits the list. Every stats counter is an
// independent query over the same scored set, so tests can cross-check
// them against each other.
func Assemble(scored []models.ScoredRecord, skipped int, snap ConfigSnapshot, topN int, now time.Time) *RunReport {
	rep := &RunReport{
		RunID:   uuid.NewString(),
		RunDate: now.UTC().Format(time.RFC3339),
		Config:  snap,
		Stats: map[string]float64{
			"total_considered":    float64(len(scored) + skipped),
			"skipped":             float64(skipped),
			"dividend_yield_pass": countIf(scored, func(s models.ScoredRecord) bool { return s.YieldOK }),
			"pe_pass":             countIf(scored, func(s models.ScoredRecord) bool { return s.PEOK }),
			"pb_pass":             countIf(scored, func(s models.ScoredRecord) bool { return s.PBOK }),
			"debt_equity_pass":    countIf(scored, func(s models.ScoredRecord) bool { return s.DebtOK }),
			"all_rules_pass":      countIf(scored, func(s models.ScoredRecord) bool { return s.Pass }),
		},
		Pass: []Entry{},
	}

	passing := make([]models.ScoredRecord, 0, len(scored))
	for _, s := range scored {
		if s.Pass {
			passing = append(passing, s)
		}
	}
	sort.SliceStable(passing, func(i, j int) bool {
		a, b := passing[i], passing[j]
		if !floatEqual(a.Yield, b.Yield) {
			return floatGreater(a.Yield, b.Yield)
		}
		if !floatEqual(a.PE, b.PE) {
			return floatLess(a.PE, b.PE)
		}
		return a.Ticker < b.Ticker
	})
	for _, s := range passing {
		rep.Pass = append(rep.Pass, makeEntry(s))
	}

	if topN > 0 {
		cands := append([]models.ScoredRecord(nil), scored...)
		sort.SliceStable(cands, func(i, j int) bool {
			a, b := cands[i], cands[j]
			if a.RulesPassed != b.RulesPassed {
				return a.RulesPassed > b.RulesPassed
			}
			if !floatEqual(a.Yield, b.Yield) {
				return floatGreater(a.Yield, b.Yield)
			}
			return a.Ticker < b.Ticker
		})
		if len(cands) > topN {
			cands = cands[:topN]
		}
		for _, s := range cands {
			rep.TopCandidates = append(rep.TopCandidates, Candidate{
				Entry:       makeEntry(s),
				RulesPassed: s.RulesPassed,
			})
		}
	}

	return rep
}

func makeEntry(s models.ScoredRecord) Entry {
	return Entry{
		Ticker:        s.Ticker,
		Exchange:      s.Exchange,
		Price:         round(s.Price, pricePlaces),
		PERatio:       round(s.PE, multiplePlaces),
		PBRatio:       round(s.PB, multiplePlaces),
		DebtEquity:    round(s.DE, multiplePlaces),
		DividendYield: round(s.Yield, yieldPlaces),
	}
}

// round uses decimal arithmetic so published values carry exact fixed
// precision rather than float residue.
func round(v *float64, places int32) *float64 {
	if v == nil {
		return nil
	}
	f, _ := decimal.NewFromFloat(*v).Round(places).Float64()
	return &f
}

func countIf(scored []models.ScoredRecord, pred func(models.ScoredRecord) bool) float64 {
	n := 0
	for _, s := range scored {
		if pred(s) {
			n++
		}
	}
	return float64(n)
}

// nil-aware comparisons: a missing value sorts after any real value.

func floatEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func floatGreater(a, b *float64) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a > *b
}

func floatLess(a, b *float64) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a < *b
}
