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

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/weather"
	"github.com/spf13/cobra"
)

var (
	correlateFrom  string
	correlateTo    string
	correlateMeter string
	correlateLat   float64
	correlateLon   float64
)

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Correlate consumption with outdoor temperature",
	Long: `Joins the stored daily consumption totals with historical mean outdoor
temperatures from Open-Meteo and computes the Pearson correlation.
Electrically heated homes typically show a strong negative
correlation: colder days, higher consumption.`,
	RunE: runCorrelate,
}

func init() {
	correlateCmd.Flags().StringVar(&correlateFrom, "from", "", "Start date (YYYY-MM-DD)")
	correlateCmd.Flags().StringVar(&correlateTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	correlateCmd.Flags().StringVar(&correlateMeter, "meter", "", "Metering point ID (default: the only configured or stored one)")
	correlateCmd.Flags().Float64Var(&correlateLat, "lat", 0, "Latitude for the weather lookup (default: from config)")
	correlateCmd.Flags().Float64Var(&correlateLon, "lon", 0, "Longitude for the weather lookup (default: from config)")
	rootCmd.AddCommand(correlateCmd)
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Debug)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	from, to, err := parseDateRange(correlateFrom, correlateTo, loc)
	if err != nil {
		return err
	}

	lat, lon := cfg.Latitude, cfg.Longitude
	if cmd.Flags().Changed("lat") {
		lat = correlateLat
	}
	if cmd.Flags().Changed("lon") {
		lon = correlateLon
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	meteringPoint, err := resolveMeteringPoint(cfg, store, correlateMeter)
	if err != nil {
		return err
	}

	summaries, err := dailyTotals(store, cfg, meteringPoint, from, to, loc)
	if err != nil {
		return fmt.Errorf("loading readings: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Printf("No stored readings for %s between %s and %s. Run 'wattwise fetch' first.\n",
			meteringPoint, correlateFrom, correlateTo)
		return nil
	}

	weatherClient := weather.NewClient("", lat, lon, cfg.Timezone, logger)
	days, err := weatherClient.FetchDailyTemperatures(context.Background(), from, to)
	if err != nil {
		return fmt.Errorf("fetching temperatures: %w", err)
	}

	result := analytics.Correlate(summaries, weather.TemperatureSeries(days))

	fmt.Printf("Consumption vs. outdoor temperature for %s, %s to %s\n\n",
		meteringPoint, correlateFrom, correlateTo)
	fmt.Println(result.Description)
	if result.Coefficient != nil {
		fmt.Printf("\nPearson r:   %.3f\n", *result.Coefficient)
		fmt.Printf("Strength:    %s\n", result.Strength)
	}
	fmt.Printf("Sample size: %d day(s)\n", result.SampleSize)
	return nil
}
