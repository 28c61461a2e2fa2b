package core

import (
	"fmt"
	"strings"
)

// ColumnPreview describes one column of an uploaded CSV.
type ColumnPreview struct {
	Name           string     `json:"name"`
	GuessedType    ColumnType `json:"guessed_type"`
	SampleValues   []string   `json:"sample_values"`
	DistinctValues []string   `json:"distinct_values"`
}

// CSVPreview is the result of PreviewCSV.
type CSVPreview struct {
	Columns    []ColumnPreview     `json:"columns"`
	SampleRows []map[string]string `json:"sample_rows"`
	TotalRows  int                 `json:"total_rows"`
}

// PreviewOptions bounds the sampled output of PreviewCSV.
type PreviewOptions struct {
	SampleRows   int // data rows feeding samples and sample rows
	SampleValues int // unique samples reported per column
	Infer        InferOptions
}

// DefaultPreviewOptions returns 10 sample rows and 5 sample values.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{SampleRows: 10, SampleValues: 5, Infer: DefaultInferOptions()}
}

// PreviewCSV parses an upload and guesses a type for every column.
// Inference runs over all data rows; samples come from the first
// opts.SampleRows rows only. Short rows read as empty cells.
func PreviewCSV(data []byte, hasHeader bool, opts PreviewOptions) (*CSVPreview, error) {
	records, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}

	names, rows := splitHeader(records, hasHeader)

	sampled := rows
	if len(sampled) > opts.SampleRows {
		sampled = sampled[:opts.SampleRows]
	}

	preview := &CSVPreview{
		Columns:    make([]ColumnPreview, len(names)),
		SampleRows: make([]map[string]string, 0, len(sampled)),
		TotalRows:  len(rows),
	}

	for i, name := range names {
		guessed, distinct := InferColumnType(columnValues(rows, i), opts.Infer)
		preview.Columns[i] = ColumnPreview{
			Name:           name,
			GuessedType:    guessed,
			SampleValues:   uniqueSamples(columnValues(sampled, i), opts.SampleValues),
			DistinctValues: distinct,
		}
	}

	for _, row := range sampled {
		m := make(map[string]string, len(names))
		for i, name := range names {
			m[name] = cellAt(row, i)
		}
		preview.SampleRows = append(preview.SampleRows, m)
	}

	return preview, nil
}

// CSVRows parses data into column names and one map per data row, keyed
// the same way as PreviewCSV names its columns. Callers use it to build the
// Data of a MaterializeRequest from a whole file.
func CSVRows(data []byte, hasHeader bool) ([]string, []map[string]string, error) {
	records, err := ParseCSV(data)
	if err != nil {
		return nil, nil, err
	}

	names, rows := splitHeader(records, hasHeader)
	out := make([]map[string]string, len(rows))
	for r, row := range rows {
		m := make(map[string]string, len(names))
		for i, name := range names {
			m[name] = cellAt(row, i)
		}
		out[r] = m
	}
	return names, out, nil
}

// splitHeader returns column names and data rows. Header names lose a byte
// order mark, whitespace and surrounding quotes; blank names and missing
// headers become "Column N".
func splitHeader(records [][]string, hasHeader bool) ([]string, [][]string) {
	if !hasHeader {
		names := make([]string, len(records[0]))
		for i := range names {
			names[i] = fmt.Sprintf("Column %d", i+1)
		}
		return names, records
	}

	names := make([]string, len(records[0]))
	for i, raw := range records[0] {
		names[i] = CleanHeader(raw)
		if names[i] == "" {
			names[i] = fmt.Sprintf("Column %d", i+1)
		}
	}
	return names, records[1:]
}

// CleanHeader strips a byte order mark, whitespace and quote characters
// from a header cell.
func CleanHeader(s string) string {
	s = strings.TrimLeft(s, "\ufeff")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func columnValues(rows [][]string, i int) []string {
	out := make([]string, len(rows))
	for r, row := range rows {
		out[r] = cellAt(row, i)
	}
	return out
}

// uniqueSamples keeps the first max distinct values in first-seen order.
func uniqueSamples(values []string, max int) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, max)
	for _, v := range values {
		if len(out) == max {
			break
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
