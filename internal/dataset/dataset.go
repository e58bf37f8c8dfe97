// Package dataset holds the in-memory survey table: unique headers, fixed-arity string rows and a
// header index built once at construction.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Dataset is an immutable respondent-by-question table.
type Dataset struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

// New builds a Dataset. Blank headers become Column_N, duplicates get a _2, _3 suffix, every row
// is padded or truncated to the header count and cells are trimmed.
func New(headers []string, rows [][]string) *Dataset {
	hs := uniqueHeaders(headers)
	d := &Dataset{headers: hs, index: make(map[string]int, len(hs)), rows: make([][]string, 0, len(rows))}
	for i, h := range hs {
		d.index[h] = i
	}
	for _, r := range rows {
		row := make([]string, len(hs))
		for i := 0; i < len(hs) && i < len(r); i++ {
			row[i] = strings.TrimSpace(r[i])
		}
		d.rows = append(d.rows, row)
	}
	return d
}

// FromRecords builds a Dataset from loosely typed records such as decoded JSON.
func FromRecords(headers []string, records [][]any) *Dataset {
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(rec))
		for j, v := range rec {
			row[j] = cellString(v)
		}
		rows[i] = row
	}
	return New(headers, rows)
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func uniqueHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		name := h
		for n := 2; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

// Headers returns a copy of the column names in order.
func (d *Dataset) Headers() []string {
	return append([]string(nil), d.headers...)
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Index returns the position of column name.
func (d *Dataset) Index(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// Has reports whether the column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Row returns an accessor for row i.
func (d *Dataset) Row(i int) Row {
	return Row{ds: d, cells: d.rows[i]}
}

// Value returns the cell at row i for column name, or "" when the column is unknown.
func (d *Dataset) Value(i int, name string) string {
	j, ok := d.index[name]
	if !ok {
		return ""
	}
	return d.rows[i][j]
}

// Column returns every value of a column in row order.
func (d *Dataset) Column(name string) []string {
	j, ok := d.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[j]
	}
	return out
}

// Records returns the first n rows (all rows when n <= 0). The rows are shared, not copied.
func (d *Dataset) Records(n int) [][]string {
	if n <= 0 || n > len(d.rows) {
		n = len(d.rows)
	}
	return d.rows[:n]
}

// Subset returns a Dataset holding the rows at the given indices. Row slices are shared.
func (d *Dataset) Subset(indices []int) *Dataset {
	out := &Dataset{headers: d.headers, index: d.index, rows: make([][]string, 0, len(indices))}
	for _, i := range indices {
		out.rows = append(out.rows, d.rows[i])
	}
	return out
}

// Row is a read-only view of one respondent.
type Row struct {
	ds    *Dataset
	cells []string
}

// Get returns the value for column name and whether the column exists.
func (r Row) Get(name string) (string, bool) {
	j, ok := r.ds.index[name]
	if !ok {
		return "", false
	}
	return r.cells[j], true
}

// Value returns the value for column name, or "" when the column is unknown.
func (r Row) Value(name string) string {
	v, _ := r.Get(name)
	return v
}
