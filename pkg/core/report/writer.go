package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// WriteJSON writes the full report artifact. Callers must only reach
// this point on a fully successful run; a partial report is worse than
// no report.
func WriteJSON(path string, rep *RunReport) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes the tabular sibling artifact: the pass list only,
// for spreadsheet consumption. An empty pass list still produces a
// header row.
func WriteCSV(path string, rep *RunReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rep.Pass, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
