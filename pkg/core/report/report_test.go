package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuescreen/pkg/models"
)

func scored(ticker string, yield, pe float64, pass bool, rulesPassed int) models.ScoredRecord {
	return models.ScoredRecord{
		CanonicalRecord: models.CanonicalRecord{Ticker: ticker, Price: models.Float(10)},
		Yield:           models.Float(yield),
		PE:              models.Float(pe),
		PB:              models.Float(0.8),
		DE:              models.Float(0.5),
		Pass:            pass,
		RulesPassed:     rulesPassed,
		YieldOK:         pass,
		PEOK:            true,
		PBOK:            true,
		DebtOK:          true,
	}
}

func TestAssemblePassOrdering(t *testing.T) {
	// Yield descending, then P/E ascending on ties.
	records := []models.ScoredRecord{
		scored("LOW", 0.05, 12, true, 4),
		scored("TOP", 0.07, 12, true, 4),
		scored("MID", 0.05, 8, true, 4),
	}

	rep := Assemble(records, 0, ConfigSnapshot{YieldThreshold: 0.045}, 0, time.Now())

	require.Len(t, rep.Pass, 3)
	assert.Equal(t, "TOP", rep.Pass[0].Ticker)
	assert.Equal(t, "MID", rep.Pass[1].Ticker)
	assert.Equal(t, "LOW", rep.Pass[2].Ticker)
}

func TestAssembleStatsAreIndependentAndConsistent(t *testing.T) {
	records := []models.ScoredRecord{
		scored("A", 0.06, 10, true, 4),
		scored("B", 0.03, 10, false, 3),
	}
	records[1].YieldOK = false

	rep := Assemble(records, 2, ConfigSnapshot{}, 0, time.Now())

	assert.Equal(t, 4.0, rep.Stats["total_considered"])
	assert.Equal(t, 2.0, rep.Stats["skipped"])
	assert.Equal(t, 1.0, rep.Stats["dividend_yield_pass"])
	assert.Equal(t, 2.0, rep.Stats["pe_pass"])
	assert.Equal(t, 2.0, rep.Stats["pb_pass"])
	assert.Equal(t, 2.0, rep.Stats["debt_equity_pass"])
	assert.Equal(t, 1.0, rep.Stats["all_rules_pass"])

	// Cross-checks: the aggregate can never exceed any single rule.
	for _, key := range []string{"dividend_yield_pass", "pe_pass", "pb_pass", "debt_equity_pass"} {
		assert.LessOrEqual(t, rep.Stats["all_rules_pass"], rep.Stats[key], key)
	}
}

func TestAssembleTopCandidatesRanking(t *testing.T) {
	records := []models.ScoredRecord{
		scored("NEAR", 0.06, 10, false, 3),
		scored("PASS", 0.05, 10, true, 4),
		scored("FAR", 0.07, 10, false, 2),
	}

	rep := Assemble(records, 0, ConfigSnapshot{}, 2, time.Now())

	// Rules passed descending wins over raw yield.
	require.Len(t, rep.TopCandidates, 2)
	assert.Equal(t, "PASS", rep.TopCandidates[0].Ticker)
	assert.Equal(t, 4, rep.TopCandidates[0].RulesPassed)
	assert.Equal(t, "NEAR", rep.TopCandidates[1].Ticker)

	// topN <= 0 omits the list entirely.
	rep = Assemble(records, 0, ConfigSnapshot{}, 0, time.Now())
	assert.Nil(t, rep.TopCandidates)
}

func TestAssembleRounding(t *testing.T) {
	rec := scored("A", 0.0623456, 10.123456, true, 4)
	rec.Price = models.Float(10.456)
	rec.PB = models.Float(0.87654321)

	rep := Assemble([]models.ScoredRecord{rec}, 0, ConfigSnapshot{}, 0, time.Now())

	require.Len(t, rep.Pass, 1)
	entry := rep.Pass[0]
	assert.Equal(t, 10.46, *entry.Price)          // 2 decimals
	assert.Equal(t, 10.1235, *entry.PERatio)      // 4 decimals
	assert.Equal(t, 0.8765, *entry.PBRatio)       // 4 decimals
	assert.Equal(t, 0.062346, *entry.DividendYield) // 6 decimals
}

func TestAssembleRunMetadata(t *testing.T) {
	now := time.Date(2026, 8, 23, 14, 30, 0, 0, time.UTC)
	rep := Assemble(nil, 0, ConfigSnapshot{YieldThreshold: 0.045}, 0, now)

	assert.Equal(t, "2026-08-23T14:30:00Z", rep.RunDate)
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 0.045, rep.Config.YieldThreshold)
	// An empty pass list serializes as [], not null.
	assert.NotNil(t, rep.Pass)
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "passlist.json")
	csvPath := filepath.Join(dir, "passlist.csv")

	rec := scored("A", 0.06, 10, true, 4)
	rec.PB = nil // a nil ratio publishes as null / empty cell
	rep := Assemble([]models.ScoredRecord{rec}, 1, ConfigSnapshot{YieldThreshold: 0.045}, 1, time.Now())

	require.NoError(t, WriteJSON(jsonPath, rep))
	require.NoError(t, WriteCSV(csvPath, rep))

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded RunReport
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, rep.RunID, decoded.RunID)
	require.Len(t, decoded.Pass, 1)
	assert.Nil(t, decoded.Pass[0].PBRatio)

	csvRaw, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvRaw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ticker")
	assert.Contains(t, lines[1], "A")
}

func TestWriteCSVEmptyPassListStillHasHeader(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "passlist.csv")
	rep := Assemble(nil, 0, ConfigSnapshot{}, 0, time.Now())

	require.NoError(t, WriteCSV(csvPath, rep))

	raw, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ticker")
}
