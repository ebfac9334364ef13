package reconcile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"valuescreen/pkg/models"
)

// SchemaError reports a required canonical attribute that matched no
// provider column anywhere in the result set. It echoes every column
// name actually observed so the alias table can be extended without
// guessing.
type SchemaError struct {
	Attr     Attr
	Observed []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("no provider column matches required attribute %q; observed columns: %s",
		e.Attr, strings.Join(e.Observed, ", "))
}

// Reconcile maps raw provider rows onto CanonicalRecords using the
// alias table. Column matching is case- and whitespace-insensitive.
// This stage locates values; coercion is lenient, an unparseable value
// becomes nil, never zero. Rows whose ticker is absent or blank are
// dropped (they cannot be keyed), which the whole-set required check
// still guards against systematically.
func Reconcile(rows []models.RawRecord, table AliasTable) ([]models.CanonicalRecord, error) {
	hits := make(map[Attr]bool, len(allAttrs))
	observed := make(map[string]bool)

	recs := make([]models.CanonicalRecord, 0, len(rows))
	for _, row := range rows {
		norm := make(map[string]interface{}, len(row))
		for name, v := range row {
			observed[name] = true
			norm[normalizeName(name)] = v
		}

		var rec models.CanonicalRecord
		for _, attr := range allAttrs {
			v, ok := locate(norm, table.Aliases[attr])
			if !ok {
				continue
			}
			hits[attr] = true
			assign(&rec, attr, v)
		}

		if rec.Ticker == "" {
			continue
		}
		recs = append(recs, rec)
	}

	if len(rows) > 0 {
		for _, req := range table.Required {
			if !hits[req] {
				return nil, &SchemaError{Attr: req, Observed: sortedKeys(observed)}
			}
		}
	}
	return recs, nil
}

// locate tries the alias list in priority order; the first present,
// non-null column wins.
func locate(norm map[string]interface{}, aliases []string) (interface{}, bool) {
	for _, alias := range aliases {
		if v, ok := norm[normalizeName(alias)]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func assign(rec *models.CanonicalRecord, attr Attr, v interface{}) {
	switch attr {
	case AttrTicker:
		rec.Ticker = strings.ToUpper(strings.TrimSpace(asString(v)))
	case AttrExchange:
		rec.Exchange = strings.TrimSpace(asString(v))
	case AttrAsOf:
		rec.AsOf = parseTime(v)
	case AttrLastUpdated:
		rec.LastUpdated = parseTime(v)
	case AttrPrice:
		rec.Price = parseFloat(v)
	case AttrEPS:
		rec.EPS = parseFloat(v)
	case AttrBookValue:
		rec.BookValuePerShare = parseFloat(v)
	case AttrDividend:
		rec.DividendPerShare = parseFloat(v)
	case AttrDividendYield:
		rec.DividendYield = parseFloat(v)
	case AttrLongTermDebt:
		rec.LongTermDebt = parseFloat(v)
	case AttrEquity:
		rec.Equity = parseFloat(v)
	case AttrPERatio:
		rec.PERatio = parseFloat(v)
	case AttrPBRatio:
		rec.PBRatio = parseFloat(v)
	case AttrDebtEquity:
		rec.DebtEquity = parseFloat(v)
	}
}

// normalizeName lowers the case and strips all whitespace, so
// "Ticker Symbol" matches the alias "tickersymbol" and " price "
// matches "price". Underscores are preserved; punctuation variants
// belong in the alias table.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "")
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseFloat coerces a JSON scalar into *float64. Anything
// unparseable is nil: absence is first-class, zero is a value.
func parseFloat(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

var timeLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func parseTime(v interface{}) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
