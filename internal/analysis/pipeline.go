// Package analysis wires the ledger pipeline end to end: load, resolve
// columns, coerce dates, classify dormancy, generate insights.
package analysis

import (
	"time"

	"trendd/internal/config"
	"trendd/internal/dormancy"
	"trendd/internal/insights"
	"trendd/internal/ledger"
	"trendd/internal/logger"
)

// Pipeline runs one analysis per call. It holds no per-request state and is
// safe to share across requests.
type Pipeline struct {
	Classifier *dormancy.Classifier
	Generator  *insights.Generator

	log *logger.Logger
}

// New creates a pipeline from the service configuration.
func New(cfg *config.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{
		Classifier: dormancy.New(log),
		Generator:  insights.New(cfg.Analysis, log),
		log:        log,
	}
}

// AnalyzeMonth loads the export at path and classifies dormancy against the
// calendar month named by target ("YYYY-MM"). Loader problems degrade to
// sample data rather than failing; the warnings describe what happened.
func (p *Pipeline) AnalyzeMonth(path, target string) (*dormancy.Report, []string) {
	table, mapping, warnings := p.prepare(path)

	report := p.Classifier.ClassifyByMonth(table, mapping, target)
	p.finish(report, table, mapping)

	return report, warnings
}

// AnalyzeRange loads the export at path and classifies dormancy against the
// inclusive [start, end] window. Fails with *dormancy.DateRangeUnavailableError
// when the window lies entirely outside the data's coverage.
func (p *Pipeline) AnalyzeRange(path string, start, end time.Time) (*dormancy.Report, []string, error) {
	table, mapping, warnings := p.prepare(path)

	report, err := p.Classifier.ClassifyByRange(table, mapping, start, end)
	if err != nil {
		return nil, warnings, err
	}

	p.finish(report, table, mapping)

	return report, warnings, nil
}

func (p *Pipeline) prepare(path string) (*ledger.Table, ledger.Mapping, []string) {
	table, warnings := ledger.Load(path)
	for _, w := range warnings {
		p.log.Warn("loader", "detail", w)
	}

	mapping := ledger.Resolve(table)
	table = ledger.CoerceDates(table, mapping)

	p.log.Info("ledger loaded",
		"columns", len(table.Headers), "rows", len(table.Rows), "degraded", table.Degraded)

	return table, mapping, warnings
}

// finish attaches computed insights to non-degraded reports; degraded
// reports already carry their fixed templated block.
func (p *Pipeline) finish(report *dormancy.Report, table *ledger.Table, mapping ledger.Mapping) {
	if report.Degraded != dormancy.DegradedNone {
		return
	}

	report.Insights = p.Generator.Generate(report.Customers, report.WindowLabel, table, mapping)
}
