// Package insights derives heuristic natural-language observations and
// recommendations from a dormant-customer report.
package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"trendd/internal/config"
	"trendd/internal/dormancy"
	"trendd/internal/ledger"
	"trendd/internal/logger"
)

// Generator computes the insight block. Thresholds come from the analysis
// section of the service configuration.
type Generator struct {
	cfg config.AnalysisConfig
	log *logger.Logger

	// Now is the reference instant for the reactivation-window check.
	// Overridable in tests.
	Now func() time.Time
}

// New creates a generator.
func New(cfg config.AnalysisConfig, log *logger.Logger) *Generator {
	return &Generator{
		cfg: cfg,
		log: log,
		Now: time.Now,
	}
}

// Generate runs the heuristic blocks in fixed order over the sorted dormant
// customers. A failure inside any single block is caught and that block is
// skipped; the remaining blocks still contribute.
func (g *Generator) Generate(customers []dormancy.CustomerAggregate, windowLabel string, table *ledger.Table, mapping ledger.Mapping) dormancy.Insights {
	out := dormancy.Insights{}

	if len(customers) == 0 {
		out.Observations = []string{"Great job! You don't have any dormant customers from the target month."}
		out.Recommendations = []string{"Continue your excellent customer retention strategies."}
		out.Actions = []string{"Analyze what's working well in your customer engagement approach."}

		return out
	}

	out.Observations = append(out.Observations,
		fmt.Sprintf("You have %d customers who haven't ordered since %s.", len(customers), windowLabel))

	high, mid := g.tiers(customers)

	g.runBlock("value_tiers", func() {
		if len(high) == 0 {
			return
		}

		var total float64
		for _, c := range high {
			total += c.TotalSpent
		}

		out.Observations = append(out.Observations,
			fmt.Sprintf("There are %d high-value dormant customers ($%.2f total lifetime value).", len(high), total))

		top := high[0]
		for _, c := range high[1:] {
			if c.TotalSpent > top.TotalSpent {
				top = c
			}
		}

		out.Observations = append(out.Observations,
			fmt.Sprintf("Your highest value dormant customer is %s with $%.2f in lifetime purchases.", top.Name, top.TotalSpent))
	})

	orderDates := customerOrderDates(customers, table, mapping)

	g.runBlock("seasonality", func() {
		if obs, ok := g.seasonality(orderDates); ok {
			out.Observations = append(out.Observations, obs)
		}
	})

	g.runBlock("frequency", func() {
		if obs, ok := g.frequency(customers, orderDates); ok {
			out.Observations = append(out.Observations, obs)
		}
	})

	g.runBlock("product_affinity", func() {
		if mapping.Item == ledger.Absent {
			return
		}
		if obs, ok := g.productAffinity(customers); ok {
			out.Observations = append(out.Observations, obs)
		}
	})

	g.runBlock("recommendations", func() {
		switch {
		case len(high) > 0:
			out.Recommendations = append(out.Recommendations,
				fmt.Sprintf("Consider a targeted re-engagement campaign for these dormant customers, particularly focusing on your high-value customers who spent over $%.0f lifetime.", g.cfg.HighValueThreshold))
			out.Actions = append(out.Actions,
				fmt.Sprintf("Send a personalized email to high-value dormant customers (Lifetime Sales > $%.0f) with a special offer based on their purchase history", g.cfg.HighValueThreshold))
		case len(mid) > 0:
			out.Recommendations = append(out.Recommendations,
				fmt.Sprintf("Consider a targeted re-engagement campaign for these dormant customers, particularly focusing on your mid-tier customers who spent over $%.0f lifetime.", g.cfg.MidValueThreshold))
			out.Actions = append(out.Actions,
				fmt.Sprintf("Send a personalized email to mid-tier dormant customers (Lifetime Sales $%.0f-$%.0f) with a special offer based on their purchase history", g.cfg.MidValueThreshold, g.cfg.HighValueThreshold))
		default:
			out.Recommendations = append(out.Recommendations,
				"Consider a targeted re-engagement campaign for these dormant customers with appropriate incentives based on their purchase history.")
		}

		out.Actions = append(out.Actions,
			fmt.Sprintf("Create a \"We miss you\" campaign with a time-limited discount for mid-tier customers ($%.0f-$%.0f)", g.cfg.MidValueThreshold, g.cfg.HighValueThreshold))
		out.Actions = append(out.Actions,
			"Monitor which re-engagement strategies are most effective to refine future campaigns")
	})

	g.runBlock("retention_timing", func() {
		earliest := customers[0].LastOrderDate
		for _, c := range customers[1:] {
			if c.LastOrderDate.Before(earliest) {
				earliest = c.LastOrderDate
			}
		}

		if int(g.Now().Sub(earliest).Hours()/24) <= g.cfg.ReactivationWindowDays {
			out.Recommendations = append(out.Recommendations,
				"Your dormant customers are still within the 6-month reactivation window when they're most likely to return. Act quickly for best results.")
		}
	})

	return out
}

// runBlock isolates one heuristic block: a panic inside it is logged and
// only that block's contribution is lost.
func (g *Generator) runBlock(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Warn("insight block failed, skipping", "block", name, "panic", r)
		}
	}()

	fn()
}

// tiers splits customers into high and mid value segments by lifetime
// spend.
func (g *Generator) tiers(customers []dormancy.CustomerAggregate) (high, mid []dormancy.CustomerAggregate) {
	for _, c := range customers {
		switch {
		case c.TotalSpent >= g.cfg.HighValueThreshold:
			high = append(high, c)
		case c.TotalSpent >= g.cfg.MidValueThreshold:
			mid = append(mid, c)
		}
	}

	return high, mid
}

// customerOrderDates collects, per dormant customer, the dates of all their
// rows in the cleaned table, sorted ascending. Duplicate dates (one per
// line item) are kept.
func customerOrderDates(customers []dormancy.CustomerAggregate, table *ledger.Table, mapping ledger.Mapping) map[string][]time.Time {
	dormant := map[string]bool{}
	for _, c := range customers {
		dormant[c.Name] = true
	}

	dates := map[string][]time.Time{}
	for _, row := range table.Rows {
		if row.Date.IsZero() {
			continue
		}

		name := strings.TrimSpace(row.Cell(mapping.Customer))
		if dormant[name] {
			dates[name] = append(dates[name], row.Date)
		}
	}

	for name := range dates {
		sort.Slice(dates[name], func(i, j int) bool { return dates[name][i].Before(dates[name][j]) })
	}

	return dates
}

// seasonality looks for a single month holding more than the configured
// share of all dormant customers' transactions.
func (g *Generator) seasonality(orderDates map[string][]time.Time) (string, bool) {
	counts := map[time.Month]int{}
	total := 0

	for _, dates := range orderDates {
		for _, d := range dates {
			counts[d.Month()]++
			total++
		}
	}

	if total == 0 {
		return "", false
	}

	peak := time.January
	for m := time.January; m <= time.December; m++ {
		if counts[m] > counts[peak] {
			peak = m
		}
	}

	pct := float64(counts[peak]) / float64(total) * 100
	if pct <= g.cfg.SeasonalSharePct {
		return "", false
	}

	return fmt.Sprintf("Seasonal Pattern: %.1f%% of these dormant customers' previous orders were in %s, suggesting a seasonal purchasing pattern.", pct, peak.String()), true
}

// frequency counts dormant customers who previously ordered at a regular
// cadence (mean gap at or below the configured threshold).
func (g *Generator) frequency(customers []dormancy.CustomerAggregate, orderDates map[string][]time.Time) (string, bool) {
	regular := 0

	for _, c := range customers {
		dates := orderDates[c.Name]
		if len(dates) < g.cfg.MinOrdersForPattern {
			continue
		}

		var gapDays float64
		for i := 1; i < len(dates); i++ {
			gapDays += dates[i].Sub(dates[i-1]).Hours() / 24
		}

		if gapDays/float64(len(dates)-1) <= g.cfg.RegularGapDays {
			regular++
		}
	}

	if regular == 0 {
		return "", false
	}

	return fmt.Sprintf("Frequency Analysis: %d dormant customers previously ordered regularly (avg. interval < %.0f days), suggesting they may be ready to order again with the right incentive.", regular, g.cfg.RegularGapDays), true
}

// productAffinity finds the most common last-order item and reports it when
// enough distinct customers share it.
func (g *Generator) productAffinity(customers []dormancy.CustomerAggregate) (string, bool) {
	counts := map[string]int{}

	var order []string
	for _, c := range customers {
		for _, item := range c.LastOrderItems {
			if counts[item] == 0 {
				order = append(order, item)
			}
			counts[item]++
		}
	}

	if len(order) == 0 {
		return "", false
	}

	top := order[0]
	for _, item := range order[1:] {
		if counts[item] > counts[top] {
			top = item
		}
	}

	buyers := 0
	for _, c := range customers {
		for _, item := range c.LastOrderItems {
			if strings.Contains(item, top) {
				buyers++
				break
			}
		}
	}

	if buyers < g.cfg.MinCustomersForProduct {
		return "", false
	}

	return fmt.Sprintf("Product Insight: %d dormant customers last purchased %s. Consider a targeted promotion for this product line.", buyers, top), true
}
