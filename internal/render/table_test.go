package render

import (
	"strings"
	"testing"
	"time"

	"trendd/internal/dormancy"
)

func TestReport(t *testing.T) {
	r := &dormancy.Report{
		WindowLabel: "May 2024",
		TotalCount:  2,
		TotalValue:  1700,
		Coverage: dormancy.Coverage{
			DataFrom: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
			DataTo:   time.Date(2024, time.July, 12, 0, 0, 0, 0, time.UTC),
			Warning:  dormancy.CoverageWarning,
		},
		Customers: []dormancy.CustomerAggregate{
			{Name: "ACME INC", LastOrderDate: time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC), TotalOrders: 3, TotalSpent: 1550, LastOrderAmount: 300, DaysSinceOrder: 87},
			{Name: "B LLC", LastOrderDate: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC), TotalOrders: 1, TotalSpent: 150, LastOrderAmount: 150, DaysSinceOrder: 105},
		},
		Insights: dormancy.Insights{
			Observations:    []string{"You have 2 customers who haven't ordered since May 2024."},
			Recommendations: []string{"Re-engage them."},
			Actions:         []string{"Send an email."},
		},
	}

	out := Report(r)

	for _, want := range []string{
		"Dormant customer report: May 2024",
		"Data coverage: 01/15/2024 to 07/12/2024",
		"ACME INC",
		"$1550.00",
		"Dormant customers: 2    Total lifetime value: $1700.00",
		"Observations:",
		"Recommendations:",
		"Suggested actions:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "WARNING") {
		t.Error("non-degraded report must not carry the sample-data warning")
	}
}

func TestReport_LoadDegradedWarning(t *testing.T) {
	r := &dormancy.Report{WindowLabel: "May 2024", LoadDegraded: true}

	out := Report(r)

	if !strings.Contains(out, "synthetic sample data") {
		t.Errorf("degraded report must carry the sample-data warning:\n%s", out)
	}
	if !strings.Contains(out, "Dormant customers: 0") {
		t.Errorf("empty report must still print the count:\n%s", out)
	}
}

func TestAlignRows(t *testing.T) {
	rows := [][]string{
		{"Customer", "Orders"},
		{"ACME INC", "3"},
		{"B", "12"},
	}

	out := alignRows(rows)

	// Header, dash rule, two data rows.
	if len(out) != 4 {
		t.Fatalf("lines = %d, want 4", len(out))
	}

	if !strings.HasPrefix(out[1], "---") {
		t.Errorf("second line should be the dash rule, got %q", out[1])
	}

	// Both data rows start their second column at the same offset.
	first := strings.Index(out[2], "3")
	second := strings.Index(out[3], "12")
	if first != second {
		t.Errorf("columns misaligned: %q vs %q", out[2], out[3])
	}
}
