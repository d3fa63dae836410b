package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Loader errors.
var (
	ErrNoSheets = errors.New("workbook contains no sheets")
	ErrNoRows   = errors.New("no rows found")
	ErrNotUTF8  = errors.New("file is not valid utf-8")
)

// corruptedDateMarker is what spreadsheet exports emit for columns too
// narrow to display, e.g. "#######".
const corruptedDateMarker = "#######"

// dateLayouts are tried in order when coercing the date column.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04",
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

// loadStrategy is one attempt at reading a source file. Strategies run in
// order; the first success short-circuits the chain.
type loadStrategy struct {
	name string
	load func(path string) (*Table, error)
}

// strategies is the ordered loader chain: workbook first, then delimited
// text in each candidate encoding.
var strategies = []loadStrategy{
	{name: "xlsx", load: loadWorkbook},
	{name: "csv/utf-8", load: loadCSV(nil)},
	{name: "csv/latin1", load: loadCSV(charmap.ISO8859_1)},
	{name: "csv/cp1252", load: loadCSV(charmap.Windows1252)},
	{name: "csv/iso-8859-1", load: loadCSV(charmap.ISO8859_1)},
}

// Load reads a ledger export, trying each loader strategy in turn. It never
// fails: when no strategy succeeds, or the result holds no data rows, a
// small synthetic sample table is substituted and marked Degraded. The
// returned warnings describe which strategies were skipped and whether the
// result was degraded.
func Load(path string) (*Table, []string) {
	var (
		table    *Table
		warnings []string
	)

	for _, s := range strategies {
		t, err := s.load(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", s.name, err))
			continue
		}

		table = t

		break
	}

	if table.Empty() {
		warnings = append(warnings, "source unreadable or empty, substituting sample data")
		table = sampleTable()
	}

	table.TrimHeaders()

	return table, warnings
}

func loadWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheets
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	return tableFromRecords(records)
}

// loadCSV builds a delimited-text strategy for one encoding. A nil decoder
// means strict utf-8.
func loadCSV(enc encoding.Encoding) func(path string) (*Table, error) {
	return func(path string) (*Table, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		if enc == nil {
			if !utf8.Valid(data) {
				return nil, ErrNotUTF8
			}
		} else {
			decoded, decErr := enc.NewDecoder().Bytes(data)
			if decErr != nil {
				return nil, fmt.Errorf("decode: %w", decErr)
			}
			data = decoded
		}

		reader := csv.NewReader(strings.NewReader(string(data)))
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}

		return tableFromRecords(records)
	}
}

func tableFromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrNoRows
	}

	t := &Table{Headers: records[0]}
	for _, cells := range records[1:] {
		t.Rows = append(t.Rows, Row{Cells: cells})
	}

	return t, nil
}

// CoerceDates parses the mapped date column of every row and drops rows
// whose date cannot be parsed, including the corrupted-width marker some
// exports emit. Tables without a resolved date column pass through
// unchanged.
func CoerceDates(table *Table, mapping Mapping) *Table {
	if mapping.Date == Absent {
		return table
	}

	out := &Table{Headers: table.Headers, Degraded: table.Degraded}
	for _, row := range table.Rows {
		d, ok := parseDate(row.Cell(mapping.Date))
		if !ok {
			continue
		}

		row.Date = d
		out.Rows = append(out.Rows, row)
	}

	return out
}

func parseDate(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" || v == corruptedDateMarker {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return d, true
		}
	}

	return time.Time{}, false
}
