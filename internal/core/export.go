package core

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Export is a list snapshot ready to be written as CSV.
type Export struct {
	Filename string
	Rows     int

	includeHeader bool
	columns       []Column
	items         []Item
	cells         map[string]map[string]StoredValue
}

// NewExport assembles an export from ordered columns, ordered live items
// and the list's cells.
func NewExport(list List, columns []Column, items []Item, cells []Cell, includeHeader bool) *Export {
	byItem := make(map[string]map[string]StoredValue, len(items))
	for _, c := range cells {
		m, ok := byItem[c.ItemID]
		if !ok {
			m = make(map[string]StoredValue)
			byItem[c.ItemID] = m
		}
		m[c.ColumnID] = c.Value
	}
	return &Export{
		Filename:      ExportFilename(list.Name),
		Rows:          len(items),
		includeHeader: includeHeader,
		columns:       columns,
		items:         items,
		cells:         byItem,
	}
}

// WriteTo streams the CSV to w with CRLF line endings.
func (e *Export) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	out := csv.NewWriter(cw)
	out.UseCRLF = true

	if e.includeHeader {
		header := make([]string, len(e.columns))
		for i, c := range e.columns {
			header[i] = c.Name
		}
		if err := out.Write(header); err != nil {
			return cw.n, fmt.Errorf("write header: %w", err)
		}
	}

	record := make([]string, len(e.columns))
	for _, item := range e.items {
		values := e.cells[item.ID]
		for i, c := range e.columns {
			v, ok := values[c.ID]
			if !ok {
				record[i] = ""
				continue
			}
			record[i] = FormatExportCell(v, c.Type)
		}
		if err := out.Write(record); err != nil {
			return cw.n, fmt.Errorf("write row: %w", err)
		}
	}

	out.Flush()
	return cw.n, out.Error()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// FormatExportCell renders one cell as CSV text.
func FormatExportCell(v StoredValue, t ColumnType) string {
	switch t.Category() {
	case StorageNumber:
		if f, ok := v.Number(); ok {
			return formatNumber(f)
		}
		return ""

	case StorageBoolean:
		if b, ok := v.Boolean(); ok {
			if b {
				return "True"
			}
			return "False"
		}
		return ""
	}

	if t.HasChoices() {
		if raw, ok := v.JSON(); ok {
			var obj map[string]any
			if err := json.Unmarshal(raw, &obj); err == nil {
				if inner, ok := obj["value"]; ok {
					return formatScalar(inner)
				}
			}
			return string(raw)
		}
	}

	s, _ := v.Text()
	return s
}

// formatNumber drops the decimal point from integral values. Fractions use
// plain notation between 1e-4 and 1e16 and exponent form outside it.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if abs := math.Abs(f); abs >= 1e-4 && abs < 1e16 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatNumber(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

// ExportFilename keeps letters, digits, space, '-' and '_' from a list name.
func ExportFilename(name string) string {
	safe := strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			return r
		}
		return -1
	}, name))
	if safe == "" {
		safe = "export"
	}
	return safe + ".csv"
}
