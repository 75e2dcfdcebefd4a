// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/report"
	"github.com/matthewgall/wattwise/internal/weather"
	"github.com/spf13/cobra"
)

var (
	reportFrom   string
	reportTo     string
	reportMeter  string
	reportMode   string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a consumption report",
	Long: `Builds a full report from the stored readings: daily statistics, a
period comparison, the temperature correlation and per-day data
quality. The output format follows the file extension: .md for
markdown, .html for a standalone dark-theme page with embedded
charts. Without --output the markdown report goes to stdout.

Weather and comparison sections are included when the data for them
is available and skipped otherwise.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	reportCmd.Flags().StringVar(&reportMeter, "meter", "", "Metering point ID (default: the only configured or stored one)")
	reportCmd.Flags().StringVar(&reportMode, "mode", string(analytics.ModeYearOverYear), "Comparison mode: year_over_year or month_over_month")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output file, .md or .html (default: markdown to stdout)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	mode, err := analytics.ParseComparisonMode(reportMode)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(reportOutput))
	if reportOutput != "" && ext != ".md" && ext != ".html" {
		return fmt.Errorf("unsupported report format %q, use .md or .html", ext)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Debug)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	from, to, err := parseDateRange(reportFrom, reportTo, loc)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	meteringPoint, err := resolveMeteringPoint(cfg, store, reportMeter)
	if err != nil {
		return err
	}

	summaries, err := summariesForRange(store, cfg, meteringPoint, from, to, loc)
	if err != nil {
		return fmt.Errorf("loading readings: %w", err)
	}

	rep := &report.Report{
		MeteringPoint: meteringPoint,
		From:          from,
		To:            to,
		GeneratedAt:   time.Now(),
		Summaries:     summaries,
		Quality:       analytics.QualityReport(summaries, from, to, loc, cfg.Resolution()),
	}

	// Comparison against the earlier period, when stored data covers it.
	prevFrom, prevTo := analytics.PreviousRange(from, to, mode)
	previous, err := dailyTotals(store, cfg, meteringPoint, prevFrom, prevTo, loc)
	if err != nil {
		return fmt.Errorf("loading previous period: %w", err)
	}
	if len(summaries) > 0 && len(previous) > 0 {
		comparison, err := analytics.Compare(summaries, previous, mode)
		if err != nil {
			return err
		}
		rep.Comparison = comparison
	}

	// Weather enriches the daily table and feeds the correlation. A
	// weather outage should not sink the whole report.
	weatherClient := weather.NewClient("", cfg.Latitude, cfg.Longitude, cfg.Timezone, logger)
	days, err := weatherClient.FetchDailyTemperatures(context.Background(), from, to)
	if err != nil {
		logger.Warn("Weather lookup failed, skipping temperature sections", "error", err)
	} else {
		rep.Weather = days
		if len(summaries) > 0 {
			correlation := analytics.Correlate(summaries, weather.TemperatureSeries(days))
			rep.Correlation = &correlation
		}
	}

	if ext == ".html" {
		charts := report.NewChartGenerator().Generate(rep)
		if err := report.NewHTMLReporter(logger).GenerateHTMLReport(rep, charts, reportOutput); err != nil {
			return fmt.Errorf("writing HTML report: %w", err)
		}
	} else {
		if err := report.NewReporter(logger).GenerateReport(rep, reportOutput); err != nil {
			return fmt.Errorf("writing markdown report: %w", err)
		}
	}

	if reportOutput != "" {
		fmt.Printf("✓ Report written to %s\n", reportOutput)
	}
	return nil
}
