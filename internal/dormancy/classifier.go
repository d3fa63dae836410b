package dormancy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"trendd/internal/ledger"
	"trendd/internal/logger"
)

// ShippingPolicy selects how shipping lines count toward a customer's
// lifetime spend and last-order items. Month mode excludes them, range mode
// includes them; the two entry points intentionally diverge (kept visible
// pending a product decision rather than silently unified).
type ShippingPolicy int

const (
	// SpendIncludingShipping counts shipping lines like any other line.
	SpendIncludingShipping ShippingPolicy = iota
	// SpendExcludingShipping skips shipping lines in lifetime spend and
	// last-order items, when an item column is resolved.
	SpendExcludingShipping
)

// invoiceType is the transaction type rows are collapsed to when present.
const invoiceType = "Invoice"

// Classifier runs the dormancy analysis. Safe for concurrent use as long as
// each call gets its own table.
type Classifier struct {
	log *logger.Logger

	// Now is the reference instant for days-since metrics. Overridable in
	// tests.
	Now func() time.Time

	// Progress, when set, is called after each customer aggregate during
	// classification.
	Progress func(done, total int)
}

// New creates a classifier.
func New(log *logger.Logger) *Classifier {
	return &Classifier{
		log: log,
		Now: time.Now,
	}
}

// ClassifyByMonth analyzes dormancy against the calendar month named by
// target ("YYYY-MM"). A malformed target falls back to the current month.
// Spend and last-order items exclude shipping lines when an item column is
// resolved.
func (c *Classifier) ClassifyByMonth(table *ledger.Table, mapping ledger.Mapping, target string) *Report {
	window, ok := ParseTargetMonth(target, c.Now())
	if !ok {
		c.log.Warn("unparseable target month, using current month", "target", target, "window", window.Label)
	}

	return c.classify(table, mapping, window, SpendExcludingShipping)
}

// ClassifyByRange analyzes dormancy against the inclusive [start, end]
// window. It fails with *DateRangeUnavailableError when the data's date
// coverage does not overlap the window at all. Spend includes shipping
// lines.
func (c *Classifier) ClassifyByRange(table *ledger.Table, mapping ledger.Mapping, start, end time.Time) (*Report, error) {
	window := RangeWindow(start, end)

	dataFrom, dataTo, hasDates := dateCoverage(table)
	if hasDates && (end.Before(dataFrom) || start.After(dataTo)) {
		return nil, &DateRangeUnavailableError{
			DataFrom:       dataFrom,
			DataTo:         dataTo,
			RequestedStart: start,
			RequestedEnd:   end,
		}
	}

	return c.classify(table, mapping, window, SpendIncludingShipping), nil
}

// classify is the shared aggregation pass behind both entry points.
func (c *Classifier) classify(table *ledger.Table, mapping ledger.Mapping, window Window, policy ShippingPolicy) *Report {
	rows := filterRows(table, mapping)
	cov := c.coverage(table, window)

	members := windowCustomers(rows, mapping, window)
	c.log.Debug("window membership computed", "window", window.Label, "customers", len(members))

	if len(members) == 0 {
		return c.degradedReport(window, cov, table.Degraded, DegradedNoWindowActivity)
	}

	var dormant []CustomerAggregate

	byCustomer := groupByCustomer(rows, mapping)
	for i, name := range members {
		history := byCustomer[name]
		if !isDormant(history, window) {
			c.log.Debug("customer ordered after window, not dormant", "customer", name)
		} else {
			dormant = append(dormant, c.aggregate(name, history, mapping, policy))
		}

		if c.Progress != nil {
			c.Progress(i+1, len(members))
		}
	}

	if len(dormant) == 0 {
		return c.degradedReport(window, cov, table.Degraded, DegradedNoneDormant)
	}

	sort.SliceStable(dormant, func(i, j int) bool {
		return dormant[i].LastOrderDate.After(dormant[j].LastOrderDate)
	})

	var total float64
	for _, d := range dormant {
		total += d.TotalSpent
	}

	return &Report{
		WindowLabel:  window.Label,
		Customers:    dormant,
		TotalCount:   len(dormant),
		TotalValue:   total,
		Coverage:     cov,
		LoadDegraded: table.Degraded,
	}
}

// filterRows applies the fixed row-filtering order: summary rows, type
// discipline, "total" customers, invalid names. Amount coercion happens at
// aggregation time via ToAmount.
func filterRows(table *ledger.Table, mapping ledger.Mapping) []ledger.Row {
	rows := make([]ledger.Row, 0, len(table.Rows))
	for _, row := range table.Rows {
		if !ledger.IsSummaryRow(row, mapping.Customer, mapping.Type) {
			rows = append(rows, row)
		}
	}

	if mapping.Type != ledger.Absent {
		typed := rows[:0]
		hasInvoice := false
		for _, row := range rows {
			t := strings.TrimSpace(row.Cell(mapping.Type))
			if t == "" {
				continue
			}
			if t == invoiceType {
				hasInvoice = true
			}
			typed = append(typed, row)
		}
		rows = typed

		if hasInvoice {
			invoices := rows[:0]
			for _, row := range rows {
				if strings.TrimSpace(row.Cell(mapping.Type)) == invoiceType {
					invoices = append(invoices, row)
				}
			}
			rows = invoices
		}
	}

	kept := rows[:0]
	for _, row := range rows {
		customer := row.Cell(mapping.Customer)
		if strings.Contains(strings.ToLower(customer), "total") {
			continue
		}
		if !ledger.IsValidCustomerName(customer) {
			continue
		}
		kept = append(kept, row)
	}

	return kept
}

// windowCustomers returns, in first-seen order, the customers with at least
// one surviving transaction inside the window.
func windowCustomers(rows []ledger.Row, mapping ledger.Mapping, window Window) []string {
	var (
		members []string
		seen    = map[string]bool{}
	)

	for _, row := range rows {
		if !window.Contains(row.Date) {
			continue
		}

		name := strings.TrimSpace(row.Cell(mapping.Customer))
		if seen[name] {
			continue
		}

		seen[name] = true
		members = append(members, name)
	}

	return members
}

func groupByCustomer(rows []ledger.Row, mapping ledger.Mapping) map[string][]ledger.Row {
	grouped := map[string][]ledger.Row{}
	for _, row := range rows {
		name := strings.TrimSpace(row.Cell(mapping.Customer))
		grouped[name] = append(grouped[name], row)
	}

	return grouped
}

// isDormant reports whether a customer has zero surviving transactions
// strictly after the window's end.
func isDormant(history []ledger.Row, window Window) bool {
	for _, row := range history {
		if window.After(row.Date) {
			return false
		}
	}

	return true
}

// aggregate computes one customer's metrics over their full surviving
// history, not just the window.
func (c *Classifier) aggregate(name string, history []ledger.Row, mapping ledger.Mapping, policy ShippingPolicy) CustomerAggregate {
	excludeShipping := policy == SpendExcludingShipping && mapping.Item != ledger.Absent

	var (
		spent float64
		last  time.Time
	)

	for _, row := range history {
		if excludeShipping && ledger.IsShippingLine(row.Cell(mapping.Item)) {
			continue
		}
		spent += ledger.ToAmount(row.Cell(mapping.Amount))
	}

	for _, row := range history {
		if row.Date.After(last) {
			last = row.Date
		}
	}

	var lastAmount float64
	var lastRows []ledger.Row
	for _, row := range history {
		if row.Date.Equal(last) {
			lastRows = append(lastRows, row)
			lastAmount += ledger.ToAmount(row.Cell(mapping.Amount))
		}
	}

	agg := CustomerAggregate{
		Name:            name,
		LastOrderDate:   last,
		LastOrderAmount: lastAmount,
		DaysSinceOrder:  int(c.Now().Sub(last).Hours() / 24),
		TotalOrders:     countOrders(history, mapping),
		TotalSpent:      spent,
	}

	if mapping.Item != ledger.Absent {
		agg.LastOrderItems = lastOrderItems(lastRows, mapping, excludeShipping)
	}

	return agg
}

// countOrders counts distinct invoice numbers, falling back to distinct
// calendar dates when the export has no invoice-number column.
func countOrders(history []ledger.Row, mapping ledger.Mapping) int {
	distinct := map[string]bool{}

	if mapping.Num != ledger.Absent {
		for _, row := range history {
			distinct[strings.TrimSpace(row.Cell(mapping.Num))] = true
		}
	} else {
		for _, row := range history {
			distinct[row.Date.Format("2006-01-02")] = true
		}
	}

	return len(distinct)
}

// lastOrderItems renders the line items of the most recent order,
// quantity-prefixed when the quantity exceeds one.
func lastOrderItems(lastRows []ledger.Row, mapping ledger.Mapping, excludeShipping bool) []string {
	var items []string

	for _, row := range lastRows {
		item := strings.TrimSpace(row.Cell(mapping.Item))
		if item == "" {
			continue
		}
		if excludeShipping && ledger.IsShippingLine(item) {
			continue
		}

		qty := 1
		if mapping.Qty != ledger.Absent {
			if f, err := strconv.ParseFloat(strings.TrimSpace(row.Cell(mapping.Qty)), 64); err == nil {
				qty = int(f)
			}
		}

		if qty > 1 {
			items = append(items, fmt.Sprintf("%dx %s", qty, item))
		} else {
			items = append(items, item)
		}
	}

	return items
}

// coverage builds the data-coverage note, clamping the requested window to
// the span the data actually covers.
func (c *Classifier) coverage(table *ledger.Table, window Window) Coverage {
	cov := Coverage{
		WindowStart: window.Start,
		WindowEnd:   window.End,
		Warning:     CoverageWarning,
	}

	dataFrom, dataTo, ok := dateCoverage(table)
	if !ok {
		return cov
	}

	cov.DataFrom = dataFrom
	cov.DataTo = dataTo

	if cov.WindowStart.Before(dataFrom) {
		cov.WindowStart = dataFrom
	}
	if cov.WindowEnd.After(dataTo) {
		cov.WindowEnd = dataTo
	}

	return cov
}

// dateCoverage finds the earliest and latest coerced dates in the table.
func dateCoverage(table *ledger.Table) (from, to time.Time, ok bool) {
	for _, row := range table.Rows {
		if row.Date.IsZero() {
			continue
		}

		if !ok || row.Date.Before(from) {
			from = row.Date
		}
		if !ok || row.Date.After(to) {
			to = row.Date
		}

		ok = true
	}

	return from, to, ok
}

// degradedReport keeps the result populated with fixed templated insights
// when there is nothing to compute. No fabricated customers: the count and
// totals honestly say zero.
func (c *Classifier) degradedReport(window Window, cov Coverage, loadDegraded bool, reason DegradedReason) *Report {
	var insights Insights

	switch reason {
	case DegradedNoneDormant:
		insights = Insights{
			Observations:    []string{fmt.Sprintf("Great job! You don't have any dormant customers from %s.", window.Label)},
			Recommendations: []string{"Continue your excellent customer retention strategies."},
			Actions:         []string{"Analyze what's working well in your customer engagement approach."},
		}
	default:
		insights = Insights{
			Observations:    []string{fmt.Sprintf("No customers with valid transactions were found in %s.", window.Label)},
			Recommendations: []string{"Verify that the export covers the selected period and includes customer and date columns."},
			Actions:         []string{"Upload a complete export, or pick a period inside the data coverage window."},
		}
	}

	c.log.Info("degraded report", "window", window.Label, "reason", string(reason))

	return &Report{
		WindowLabel:  window.Label,
		Coverage:     cov,
		Insights:     insights,
		Degraded:     reason,
		LoadDegraded: loadDegraded,
	}
}
