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

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/spf13/cobra"
)

var (
	compareFrom  string
	compareTo    string
	compareMode  string
	compareMeter string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a period against the year or month before",
	Long: `Lines each day's consumption up against the same calendar day one year
(or one month) earlier, using the stored readings for both periods.
Days without a stored counterpart show as "-".`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareFrom, "from", "", "Start date (YYYY-MM-DD)")
	compareCmd.Flags().StringVar(&compareTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	compareCmd.Flags().StringVar(&compareMode, "mode", string(analytics.ModeYearOverYear), "Comparison mode: year_over_year or month_over_month")
	compareCmd.Flags().StringVar(&compareMeter, "meter", "", "Metering point ID (default: the only configured or stored one)")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	// Reject a bad mode before touching config or the database.
	mode, err := analytics.ParseComparisonMode(compareMode)
	if err != nil {
		return err
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
	from, to, err := parseDateRange(compareFrom, compareTo, loc)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	meteringPoint, err := resolveMeteringPoint(cfg, store, compareMeter)
	if err != nil {
		return err
	}

	prevFrom, prevTo := analytics.PreviousRange(from, to, mode)

	current, err := dailyTotals(store, cfg, meteringPoint, from, to, loc)
	if err != nil {
		return fmt.Errorf("loading current period: %w", err)
	}
	if len(current) == 0 {
		fmt.Printf("No stored readings for %s between %s and %s. Run 'wattwise fetch' first.\n",
			meteringPoint, compareFrom, compareTo)
		return nil
	}
	previous, err := dailyTotals(store, cfg, meteringPoint, prevFrom, prevTo, loc)
	if err != nil {
		return fmt.Errorf("loading previous period: %w", err)
	}

	comparison, err := analytics.Compare(current, previous, mode)
	if err != nil {
		return err
	}

	fmt.Printf("Comparison for %s (%s)\n", meteringPoint, mode)
	fmt.Printf("Current period:  %s to %s\n", from.Format(dateLayout), to.Format(dateLayout))
	fmt.Printf("Previous period: %s to %s\n\n", prevFrom.Format(dateLayout), prevTo.Format(dateLayout))

	fmt.Printf("%-12s %10s %10s %9s\n", "DATE", "CURRENT", "PREVIOUS", "CHANGE")
	for _, row := range comparison.Rows {
		prev, change := "-", "-"
		if row.PreviousConsumption != nil {
			prev = fmt.Sprintf("%.2f", *row.PreviousConsumption)
		}
		if row.PercentageChange != nil {
			change = fmt.Sprintf("%+.1f%%", *row.PercentageChange)
		}
		fmt.Printf("%-12s %10.2f %10s %9s\n", row.Date.Format(dateLayout), row.CurrentConsumption, prev, change)
	}

	s := comparison.Summary
	fmt.Printf("\nCompared %d of %d day(s)\n", s.ComparedDays, s.TotalDays)
	fmt.Printf("Current total:  %.2f kWh\n", s.CurrentTotal)
	fmt.Printf("Previous total: %.2f kWh\n", s.PreviousTotal)
	if s.AvgPercentChange != nil {
		fmt.Printf("Average change: %+.1f%%\n", *s.AvgPercentChange)
	}
	return nil
}
