package integration

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"trendd/internal/analysis"
	"trendd/internal/config"
	"trendd/internal/dormancy"
	"trendd/internal/logger"
)

func fixture(name string) string {
	return filepath.Join("..", "fixtures", name)
}

func newPipeline() *analysis.Pipeline {
	return analysis.New(config.Default(), logger.Discard())
}

func TestPipeline_MonthFlow(t *testing.T) {
	report, _ := newPipeline().AnalyzeMonth(fixture("ledger.csv"), "2024-05")

	if report.LoadDegraded {
		t.Fatal("fixture must load without degradation")
	}
	if report.Degraded != dormancy.DegradedNone {
		t.Fatalf("Degraded = %q, want full report", report.Degraded)
	}

	if report.WindowLabel != "May 2024" {
		t.Errorf("WindowLabel = %q, want May 2024", report.WindowLabel)
	}

	// ACME stopped ordering in May; JONES ordered again in July. The "nan"
	// customer and the Total Sales summary row never make it in.
	if report.TotalCount != 1 {
		t.Fatalf("TotalCount = %d, want 1", report.TotalCount)
	}

	acme, ok := report.Customer("ACME INC")
	if !ok {
		t.Fatal("ACME INC missing from report")
	}
	if _, ok := report.Customer("JONES LLC"); ok {
		t.Error("JONES LLC ordered after the window and must be excluded")
	}

	// Month mode excludes the shipping line from lifetime spend.
	if acme.TotalSpent != 1550 {
		t.Errorf("TotalSpent = %v, want 1550", acme.TotalSpent)
	}
	if acme.TotalOrders != 3 {
		t.Errorf("TotalOrders = %d, want 3 distinct invoices", acme.TotalOrders)
	}
	if !acme.LastOrderDate.Equal(time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("LastOrderDate = %v, want 2024-05-20", acme.LastOrderDate)
	}
	if len(acme.LastOrderItems) != 1 || acme.LastOrderItems[0] != "Industrial Widget" {
		t.Errorf("LastOrderItems = %v, want [Industrial Widget]", acme.LastOrderItems)
	}

	// The full report carries computed insights, including the high-value
	// tier observation for ACME's $1550 lifetime spend.
	if len(report.Insights.Observations) < 2 {
		t.Errorf("expected computed observations, got %v", report.Insights.Observations)
	}
	if len(report.Insights.Recommendations) == 0 || len(report.Insights.Actions) == 0 {
		t.Error("expected recommendations and actions on a full report")
	}
}

func TestPipeline_RangeFlowIncludesShipping(t *testing.T) {
	report, _, err := newPipeline().AnalyzeRange(fixture("ledger.csv"),
		time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("AnalyzeRange: %v", err)
	}

	acme, ok := report.Customer("ACME INC")
	if !ok {
		t.Fatal("ACME INC missing from report")
	}

	if acme.TotalSpent != 1575 {
		t.Errorf("TotalSpent = %v, want 1575 (shipping included in range mode)", acme.TotalSpent)
	}
}

func TestPipeline_RangeOutsideCoverage(t *testing.T) {
	_, _, err := newPipeline().AnalyzeRange(fixture("ledger.csv"),
		time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.June, 30, 0, 0, 0, 0, time.UTC))

	var rangeErr *dormancy.DateRangeUnavailableError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("error = %v, want *dormancy.DateRangeUnavailableError", err)
	}
}

func TestPipeline_UnreadableFileDegrades(t *testing.T) {
	report, warnings := newPipeline().AnalyzeMonth(
		filepath.Join(t.TempDir(), "missing.csv"), "2024-05")

	if !report.LoadDegraded {
		t.Error("expected load degradation for a missing file")
	}
	if len(warnings) == 0 {
		t.Error("expected loader warnings")
	}
}
