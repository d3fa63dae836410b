// Package ledger loads sales-ledger exports into a tabular model and
// normalizes them for downstream analysis.
package ledger

import (
	"strings"
	"time"
)

// Row is a single ledger line. Date stays zero until the date column has
// been coerced via CoerceDates.
type Row struct {
	Cells []string
	Date  time.Time
}

// Cell returns the cell at index col, or "" when the row is short.
func (r Row) Cell(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}

	return r.Cells[col]
}

// Table is a loaded ledger export.
type Table struct {
	Headers []string
	Rows    []Row

	// Degraded is set when the loader substituted synthetic sample data
	// because the source file could not be read or was empty.
	Degraded bool
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// TrimHeaders strips surrounding whitespace from every column header.
func (t *Table) TrimHeaders() {
	for i, h := range t.Headers {
		t.Headers[i] = strings.TrimSpace(h)
	}
}

// sampleTable returns the fixed fallback table used when a source cannot be
// loaded. Downstream stages always receive a non-empty table.
func sampleTable() *Table {
	headers := []string{"Date", "Name", "Amount"}
	rows := [][]string{
		{"05/01/2024", "SMITH COMPANY", "123.45"},
		{"05/08/2024", "JONES LLC", "456.78"},
		{"05/15/2024", "TEST CUSTOMER", "789.01"},
		{"05/20/2024", "ACME INC", "234.56"},
	}

	t := &Table{Headers: headers, Degraded: true}
	for _, cells := range rows {
		t.Rows = append(t.Rows, Row{Cells: cells})
	}

	return t
}
