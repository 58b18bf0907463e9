package store

import "strings"

// requiredColumns must all appear in the task sheet header
var requiredColumns = []string{"task", "cron_frequency", "last_completed"}

// NormalizeRows builds normalized rows from a header and raw cell values:
// header names are lowercased and trimmed, cell values trimmed, and short
// rows padded with empty strings so every row carries every column.
func NormalizeRows(header []string, values [][]string) []Row {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]Row, 0, len(values))
	for _, rec := range values {
		row := make(Row, len(keys))
		for i, k := range keys {
			if k == "" {
				continue
			}
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows
}

// CheckSchema validates that the fetch produced usable rows: at least one
// data row, and all required columns present in the (normalized) header.
func CheckSchema(rows []Row) error {
	if len(rows) == 0 {
		return ErrNoTasks
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := rows[0][col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}
