// Package models defines the record types that flow through the screen
// pipeline: provider row -> canonical record -> scored record.
//
// Numeric fields are pointers throughout. nil means the provider did
// not supply the value, which is distinct from zero: a zero dividend
// is a real dividend policy, a nil one is unknown.
package models

import "time"

// RawRecord is one row as returned by a provider: column name mapped
// to an untyped scalar (string, float64, bool or nil, as decoded from
// JSON). It exists only between fetch and reconciliation.
type RawRecord map[string]interface{}

// CanonicalRecord holds one entity's attributes in the screen's own
// vocabulary. Ticker is the unique key (uppercase, trimmed) and the
// only concept that is stable across runs.
type CanonicalRecord struct {
	Ticker   string `json:"ticker"`
	Exchange string `json:"exchange,omitempty"`

	// AsOf is the fiscal or trading date the row represents.
	// LastUpdated is the provider-side revision time, used only to
	// break ties among rows sharing an as-of date.
	AsOf        *time.Time `json:"as_of,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`

	Price             *float64 `json:"price,omitempty"`
	EPS               *float64 `json:"eps,omitempty"`
	BookValuePerShare *float64 `json:"book_value_per_share,omitempty"`
	DividendPerShare  *float64 `json:"dividend_per_share,omitempty"`
	LongTermDebt      *float64 `json:"long_term_debt,omitempty"`
	Equity            *float64 `json:"equity,omitempty"`

	// Directly supplied ratios. When present these take precedence
	// over derivation from the primary fields, since the provider may
	// apply trailing-twelve-month smoothing the primaries cannot
	// reproduce.
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	PBRatio       *float64 `json:"pb_ratio,omitempty"`
	DebtEquity    *float64 `json:"debt_equity,omitempty"`
}

// ScoredRecord is a CanonicalRecord plus the derived ratios and rule
// outcomes for one run. Derived fields are recomputed every run and
// never persisted.
type ScoredRecord struct {
	CanonicalRecord

	// Final ratios used for rule evaluation, each independently
	// nullable.
	PE    *float64 `json:"pe,omitempty"`
	PB    *float64 `json:"pb,omitempty"`
	DE    *float64 `json:"de,omitempty"`
	Yield *float64 `json:"yield,omitempty"`

	YieldOK bool `json:"yield_ok"`
	PEOK    bool `json:"pe_ok"`
	PBOK    bool `json:"pb_ok"`
	DebtOK  bool `json:"debt_ok"`

	// Pass is the conjunction of the four rule flags. RulesPassed is
	// always computed (0-4) regardless of Pass, so near misses can be
	// ranked.
	Pass        bool `json:"pass"`
	RulesPassed int  `json:"rules_passed"`
}

// Float returns a pointer to f. Convenience for building records in
// callers and tests.
func Float(f float64) *float64 { return &f }

// Date builds a pointer to a midnight-UTC time for the given calendar
// day.
func Date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
