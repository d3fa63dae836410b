// Package main provides the command-line analyzer: run the dormancy
// pipeline over a ledger export and print the report.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"trendd/internal/analysis"
	"trendd/internal/config"
	"trendd/internal/dormancy"
	"trendd/internal/logger"
	"trendd/internal/render"
)

const dateFlag = "2006-01-02"

func main() {
	filePath := flag.String("file", "", "Path to the ledger export (xlsx or csv)")
	month := flag.String("month", "", "Target month, YYYY-MM")
	from := flag.String("from", "", "Range start date, YYYY-MM-DD")
	to := flag.String("to", "", "Range end date, YYYY-MM-DD")
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	level := flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	if *filePath == "" {
		fmt.Println("Usage: analyze -file <ledger.xlsx> [-month 2024-05 | -from 2024-01-01 -to 2024-03-31]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *month == "" && (*from == "" || *to == "") {
		fmt.Println("Pick either -month or both -from and -to")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(*level, cfg.Logging.Format)
	pipeline := analysis.New(cfg, log)

	// Progress over the per-customer aggregation pass.
	var bar *progressbar.ProgressBar
	pipeline.Classifier.Progress = func(done, total int) {
		if bar == nil {
			bar = progressbar.Default(int64(total), "aggregating customers")
		}
		_ = bar.Set(done)
	}

	var report *dormancy.Report

	if *month != "" {
		report, _ = pipeline.AnalyzeMonth(*filePath, *month)
	} else {
		start, parseErr := time.Parse(dateFlag, *from)
		if parseErr != nil {
			fmt.Fprintf(os.Stderr, "invalid -from date: %v\n", parseErr)
			os.Exit(1)
		}

		end, parseErr := time.Parse(dateFlag, *to)
		if parseErr != nil {
			fmt.Fprintf(os.Stderr, "invalid -to date: %v\n", parseErr)
			os.Exit(1)
		}

		report, _, err = pipeline.AnalyzeRange(*filePath, start, end)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	fmt.Print(render.Report(report))
}
