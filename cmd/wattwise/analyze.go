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
	"fmt"
	"time"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/report"
	"github.com/spf13/cobra"
)

var (
	analyzeFrom     string
	analyzeTo       string
	analyzeMeter    string
	analyzeMarkdown bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Daily statistics and data quality for stored readings",
	Long: `Rolls the stored readings up into per-day statistics (total, min, max,
average) and grades every day in the range: complete, sparse, all
zeros, or missing entirely. Prints a plain table by default,
markdown with --markdown.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "Start date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	analyzeCmd.Flags().StringVar(&analyzeMeter, "meter", "", "Metering point ID (default: the only configured or stored one)")
	analyzeCmd.Flags().BoolVar(&analyzeMarkdown, "markdown", false, "Render the analysis as markdown instead of a table")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Debug)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	from, to, err := parseDateRange(analyzeFrom, analyzeTo, loc)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	meteringPoint, err := resolveMeteringPoint(cfg, store, analyzeMeter)
	if err != nil {
		return err
	}

	summaries, err := summariesForRange(store, cfg, meteringPoint, from, to, loc)
	if err != nil {
		return fmt.Errorf("loading readings: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Printf("No stored readings for %s between %s and %s. Run 'wattwise fetch' first.\n",
			meteringPoint, analyzeFrom, analyzeTo)
		return nil
	}

	quality := analytics.QualityReport(summaries, from, to, loc, cfg.Resolution())

	if analyzeMarkdown {
		rep := &report.Report{
			MeteringPoint: meteringPoint,
			From:          from,
			To:            to,
			GeneratedAt:   time.Now(),
			Summaries:     summaries,
			Quality:       quality,
		}
		return report.NewReporter(logger).GenerateReport(rep, "")
	}

	fmt.Printf("Daily consumption for %s\n\n", meteringPoint)
	fmt.Printf("%-12s %10s %8s %8s %8s %6s\n", "DATE", "TOTAL", "MIN", "MAX", "AVG", "COUNT")
	total := 0.0
	for _, s := range summaries {
		fmt.Printf("%-12s %10.2f %8.3f %8.3f %8.3f %6d\n",
			s.Date.Format(dateLayout), s.Total, s.Min, s.Max, s.Avg, s.Count)
		total += s.Total
	}
	fmt.Printf("\nTotal: %.2f kWh over %d day(s)\n", total, len(summaries))

	problems := 0
	for _, day := range quality {
		if day.Quality != analytics.QualityNormal {
			problems++
		}
	}
	if problems == 0 {
		fmt.Printf("Data quality: all %d day(s) complete\n", len(quality))
		return nil
	}

	fmt.Printf("Data quality: %d of %d day(s) need attention\n", problems, len(quality))
	for _, day := range quality {
		if day.Quality == analytics.QualityNormal {
			continue
		}
		count := 0
		if day.Summary != nil {
			count = day.Summary.Count
		}
		fmt.Printf("  %s  %-8s (%d readings)\n", day.Date.Format(dateLayout), day.Quality, count)
	}
	return nil
}
