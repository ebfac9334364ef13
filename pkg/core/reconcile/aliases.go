// Package reconcile maps provider-specific column names onto the
// screen's canonical attribute set.
//
// Providers rename columns between versions; the tolerance for that
// drift lives in one place, the AliasTable. Adding a provider version
// is a data change (a new alias, or an HJSON overlay file), never a
// code change.
package reconcile

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
)

// Attr names a canonical attribute of a CanonicalRecord.
type Attr string

const (
	AttrTicker        Attr = "ticker"
	AttrExchange      Attr = "exchange"
	AttrAsOf          Attr = "as_of_date"
	AttrLastUpdated   Attr = "last_updated"
	AttrPrice         Attr = "price"
	AttrEPS           Attr = "eps"
	AttrBookValue     Attr = "book_value_per_share"
	AttrDividend      Attr = "dividend_per_share"
	AttrDividendYield Attr = "dividend_yield"
	AttrLongTermDebt  Attr = "long_term_debt"
	AttrEquity        Attr = "equity"
	AttrPERatio       Attr = "pe_ratio"
	AttrPBRatio       Attr = "pb_ratio"
	AttrDebtEquity    Attr = "debt_equity"
)

// allAttrs fixes the iteration order during reconciliation.
var allAttrs = []Attr{
	AttrTicker, AttrExchange, AttrAsOf, AttrLastUpdated,
	AttrPrice, AttrEPS, AttrBookValue, AttrDividend, AttrDividendYield,
	AttrLongTermDebt, AttrEquity,
	AttrPERatio, AttrPBRatio, AttrDebtEquity,
}

// AliasTable maps each canonical attribute to a priority-ordered list
// of acceptable provider column names; the first present, non-null
// column wins. Required attributes with zero alias hits across an
// entire result set raise a SchemaError.
type AliasTable struct {
	Version  string            `json:"version"`
	Required []Attr            `json:"required"`
	Aliases  map[Attr][]string `json:"aliases"`
}

// DefaultTable covers the Sharadar-style fundamentals and daily
// metrics tables. Alias lists are ordered most- to least-preferred.
func DefaultTable() AliasTable {
	return AliasTable{
		Version: "sharadar-v1",
		// Nothing downstream is evaluable without an identifier and a
		// price; every other attribute degrades to nil.
		Required: []Attr{AttrTicker, AttrPrice},
		Aliases: map[Attr][]string{
			AttrTicker:        {"ticker", "symbol", "ticker_symbol"},
			AttrExchange:      {"exchange", "exchange_code", "primary_exchange"},
			AttrAsOf:          {"calendardate", "datekey", "date", "as_of_date", "fiscal_date"},
			AttrLastUpdated:   {"lastupdated", "last_updated", "updated", "revision_time"},
			AttrPrice:         {"price", "close", "closeadj", "last_price"},
			AttrEPS:           {"eps", "epsdil", "epsusd", "earnings_per_share"},
			AttrBookValue:     {"bvps", "book_value_per_share", "bookvaluepershare"},
			AttrDividend:      {"dps", "dividend_per_share", "dividendspershare"},
			AttrDividendYield: {"divyield", "dividend_yield", "yield"},
			AttrLongTermDebt:  {"debtnc", "longtermdebt", "long_term_debt", "lt_debt"},
			AttrEquity:        {"equity", "equityusd", "shareholders_equity", "total_equity"},
			AttrPERatio:       {"pe", "pe1", "price_earnings", "pe_ratio"},
			AttrPBRatio:       {"pb", "pb1", "price_book", "pb_ratio"},
			AttrDebtEquity:    {"de", "debt_equity", "debt_to_equity"},
		},
	}
}

// WithRequired returns a copy of the table with a different required
// set. Used for enrichment tables that legitimately omit attributes
// the universe table must carry.
func (t AliasTable) WithRequired(attrs ...Attr) AliasTable {
	t.Required = attrs
	return t
}

// LoadTable reads an HJSON overlay file and merges it over base.
// Overlay alias lists replace the base list for that attribute;
// attributes the overlay does not mention keep their base aliases.
// HJSON so the file can carry comments documenting which provider
// version introduced each alias.
func LoadTable(path string, base AliasTable) (AliasTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read alias table %s: %w", path, err)
	}

	var overlay AliasTable
	if err := hjson.Unmarshal(raw, &overlay); err != nil {
		return base, fmt.Errorf("parse alias table %s: %w", path, err)
	}

	merged := base
	merged.Aliases = make(map[Attr][]string, len(base.Aliases))
	for attr, names := range base.Aliases {
		merged.Aliases[attr] = names
	}
	for attr, names := range overlay.Aliases {
		merged.Aliases[attr] = names
	}
	if overlay.Version != "" {
		merged.Version = overlay.Version
	}
	if len(overlay.Required) > 0 {
		merged.Required = overlay.Required
	}
	return merged, nil
}
