// Package render turns a dormancy report into plain text for the CLI.
package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"trendd/internal/dormancy"
)

const dateFormat = "01/02/2006"

// Report renders a full report: coverage note, customer table, totals and
// the insight lists.
func Report(r *dormancy.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Dormant customer report: %s\n\n", r.WindowLabel)

	if r.LoadDegraded {
		sb.WriteString("WARNING: the source file could not be read; this report is based on synthetic sample data.\n\n")
	}

	if !r.Coverage.DataFrom.IsZero() {
		fmt.Fprintf(&sb, "Data coverage: %s to %s\n",
			r.Coverage.DataFrom.Format(dateFormat), r.Coverage.DataTo.Format(dateFormat))
	}
	sb.WriteString(r.Coverage.Warning + "\n\n")

	if len(r.Customers) > 0 {
		rows := [][]string{{"Customer", "Last Order", "Days Since", "Orders", "Last Amount", "Lifetime Sales"}}
		for _, c := range r.Customers {
			rows = append(rows, []string{
				c.Name,
				c.LastOrderDate.Format(dateFormat),
				fmt.Sprintf("%d", c.DaysSinceOrder),
				fmt.Sprintf("%d", c.TotalOrders),
				fmt.Sprintf("$%.2f", c.LastOrderAmount),
				fmt.Sprintf("$%.2f", c.TotalSpent),
			})
		}

		for _, line := range alignRows(rows) {
			sb.WriteString(line + "\n")
		}

		fmt.Fprintf(&sb, "\nDormant customers: %d    Total lifetime value: $%.2f\n", r.TotalCount, r.TotalValue)
	} else {
		fmt.Fprintf(&sb, "Dormant customers: %d\n", r.TotalCount)
	}

	writeList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}

		sb.WriteString("\n" + title + "\n")
		for _, item := range items {
			sb.WriteString("  - " + item + "\n")
		}
	}

	writeList("Observations:", r.Insights.Observations)
	writeList("Recommendations:", r.Insights.Recommendations)
	writeList("Suggested actions:", r.Insights.Actions)

	return sb.String()
}

// alignRows pads every column to its widest cell, measured by display width
// so wide runes line up, and inserts a dash rule under the header row.
func alignRows(rows [][]string) []string {
	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	widths := make([]int, colCount)
	for _, row := range rows {
		for i := 0; i < len(row) && i < colCount; i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var out []string

	for idx, row := range rows {
		var sb strings.Builder

		for i := 0; i < colCount; i++ {
			content := ""
			if i < len(row) {
				content = row[i]
			}

			sb.WriteString(content)

			if i < colCount-1 {
				padding := widths[i] - runewidth.StringWidth(content)
				sb.WriteString(strings.Repeat(" ", padding+2))
			}
		}

		out = append(out, strings.TrimRight(sb.String(), " "))

		if idx == 0 {
			total := 0
			for _, w := range widths {
				total += w + 2
			}
			out = append(out, strings.Repeat("-", total-2))
		}
	}

	return out
}
