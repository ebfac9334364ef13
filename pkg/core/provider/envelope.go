package provider

import (
	"bytes"
	"encoding/json"
	"fmt"

	"valuescreen/pkg/models"
)

// datatableEnvelope is the columns + positional data wire shape. Each
// response declares its own column ordering, so rows are rebuilt into
// name -> value maps per page.
type datatableEnvelope struct {
	Datatable struct {
		Data    [][]interface{} `json:"data"`
		Columns []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"columns"`
	} `json:"datatable"`
	Meta struct {
		NextCursorID *string `json:"next_cursor_id"`
	} `json:"meta"`
}

// decodePage turns one response body into RawRecords plus the
// continuation cursor ("" when the server declared the set complete).
// A flat array shape never paginates.
func decodePage(body []byte) ([]models.RawRecord, string, error) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var objs []map[string]interface{}
		if err := json.Unmarshal(trimmed, &objs); err != nil {
			return nil, "", fmt.Errorf("malformed array response: %w", err)
		}
		rows := make([]models.RawRecord, len(objs))
		for i, obj := range objs {
			rows[i] = models.RawRecord(obj)
		}
		return rows, "", nil
	}

	var env datatableEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, "", fmt.Errorf("malformed datatable response: %w", err)
	}

	rows := make([]models.RawRecord, 0, len(env.Datatable.Data))
	for _, vals := range env.Datatable.Data {
		row := make(models.RawRecord, len(env.Datatable.Columns))
		for i, col := range env.Datatable.Columns {
			if i < len(vals) {
				row[col.Name] = vals[i]
			}
		}
		rows = append(rows, row)
	}

	next := ""
	if env.Meta.NextCursorID != nil {
		next = *env.Meta.NextCursorID
	}
	return rows, next, nil
}
