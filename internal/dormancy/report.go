// Package dormancy classifies ledger customers as dormant: active inside a
// target window with no transaction after it.
package dormancy

import (
	"fmt"
	"time"
)

// longDate is the human-readable date form used in coverage notes and
// range errors.
const longDate = "January 2, 2006"

// CoverageWarning is the caveat attached to every report about incomplete
// exports.
const CoverageWarning = "Note: The analysis is based only on the data contained in the uploaded file. " +
	"If your export doesn't include your complete transaction history, the total order count and " +
	"lifetime sales may be incomplete."

// CustomerAggregate holds the per-customer metrics computed during the
// single aggregation pass. Immutable once the report is built.
type CustomerAggregate struct {
	Name            string    `json:"name"`
	LastOrderDate   time.Time `json:"last_order_date"`
	LastOrderAmount float64   `json:"last_order_amount"`
	DaysSinceOrder  int       `json:"days_since_order"`
	TotalOrders     int       `json:"total_orders"`
	TotalSpent      float64   `json:"total_spent"`
	LastOrderItems  []string  `json:"last_order_items"`
}

// Coverage describes what date span the uploaded data actually covers,
// against the window that was requested.
type Coverage struct {
	DataFrom    time.Time `json:"data_from"`
	DataTo      time.Time `json:"data_to"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Warning     string    `json:"warning"`
}

// Insights is the natural-language block attached to a report.
type Insights struct {
	Observations    []string `json:"observations"`
	Recommendations []string `json:"recommendations"`
	Actions         []string `json:"actions"`
}

// DegradedReason marks reports that carry fixed fallback insights instead
// of computed ones.
type DegradedReason string

// Degraded report reasons.
const (
	DegradedNone             DegradedReason = ""
	DegradedNoWindowActivity DegradedReason = "no_window_activity"
	DegradedNoneDormant      DegradedReason = "none_dormant"
)

// Report is the result of one dormancy analysis.
type Report struct {
	WindowLabel string              `json:"window_label"`
	Customers   []CustomerAggregate `json:"customers"`
	TotalCount  int                 `json:"total_count"`
	TotalValue  float64             `json:"total_value"`
	Coverage    Coverage            `json:"coverage"`
	Insights    Insights            `json:"insights"`

	// Degraded is set when the classifier fell back to fixed templated
	// insights (no window activity, or nobody dormant).
	Degraded DegradedReason `json:"degraded,omitempty"`

	// LoadDegraded is set when the loader substituted synthetic sample
	// data for an unreadable source.
	LoadDegraded bool `json:"load_degraded,omitempty"`
}

// Customer looks up an aggregate by customer name.
func (r *Report) Customer(name string) (CustomerAggregate, bool) {
	for _, c := range r.Customers {
		if c.Name == name {
			return c, true
		}
	}

	return CustomerAggregate{}, false
}

// DateRangeUnavailableError is returned by range-mode classification when
// the requested window lies entirely outside the data's date coverage.
type DateRangeUnavailableError struct {
	DataFrom       time.Time
	DataTo         time.Time
	RequestedStart time.Time
	RequestedEnd   time.Time
}

func (e *DateRangeUnavailableError) Error() string {
	return fmt.Sprintf(
		"requested date range %s to %s is outside the uploaded data, which covers %s to %s",
		e.RequestedStart.Format(longDate), e.RequestedEnd.Format(longDate),
		e.DataFrom.Format(longDate), e.DataTo.Format(longDate),
	)
}
