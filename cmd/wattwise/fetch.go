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
	"github.com/matthewgall/wattwise/internal/config"
	"github.com/spf13/cobra"
)

var (
	fetchFrom        string
	fetchTo          string
	fetchAggregation string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch consumption data from Eloverblik",
	Long: `Pulls interval consumption readings from the Eloverblik customer API
and stores them in the local database. Already-stored readings are
skipped, so overlapping fetches are safe.

Without configured metering points, the account's points are
discovered first.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "Start date (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	fetchCmd.Flags().StringVar(&fetchAggregation, "aggregation", "", "Reading resolution, Quarter or Hour (default: from config)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Debug)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	from, to, err := parseDateRange(fetchFrom, fetchTo, loc)
	if err != nil {
		return err
	}

	if fetchAggregation != "" {
		cfg.Aggregation = fetchAggregation
	}
	if cfg.Aggregation != config.AggregationQuarter && cfg.Aggregation != config.AggregationHour {
		return fmt.Errorf("aggregation must be %s or %s", config.AggregationQuarter, config.AggregationHour)
	}

	client, err := newEloverblikClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()

	meteringPoints := cfg.MeteringPoints
	if len(meteringPoints) == 0 {
		fmt.Println("No metering points configured, discovering them from the account...")
		points, err := client.ListMeteringPoints(ctx)
		if err != nil {
			return fmt.Errorf("listing metering points: %w", err)
		}
		for _, p := range points {
			meteringPoints = append(meteringPoints, p.MeteringPointID)
		}
	}
	if len(meteringPoints) == 0 {
		return fmt.Errorf("the account has no metering points")
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	fmt.Printf("Fetching %s readings for %d metering point(s), %s to %s...\n",
		cfg.Aggregation, len(meteringPoints), fetchFrom, fetchTo)

	results, err := client.GetTimeSeries(ctx, meteringPoints, from, to, cfg.Aggregation)
	if err != nil {
		return fmt.Errorf("fetching time series: %w", err)
	}

	total := 0
	for _, result := range results {
		if !result.OK() {
			fmt.Printf("⚠ %s: provider returned error code %d, skipping\n",
				result.MeteringPointID, result.ErrorCode)
			continue
		}

		readings := analytics.ReconstructReadings(
			[]analytics.MeterResult{result},
			analytics.ReconstructOptions{DefaultResolution: cfg.Resolution()},
		)

		inserted, err := store.InsertReadings(result.MeteringPointID, readings, loc)
		if err != nil {
			return fmt.Errorf("storing readings for %s: %w", result.MeteringPointID, err)
		}
		if err := store.RecordFetch(result.MeteringPointID, from, to, cfg.Aggregation, inserted); err != nil {
			return fmt.Errorf("recording fetch for %s: %w", result.MeteringPointID, err)
		}

		fmt.Printf("✓ %s: %d readings, %d new\n", result.MeteringPointID, len(readings), inserted)
		total += inserted
	}

	fmt.Printf("Stored %d new readings (duplicates skipped by the database)\n", total)
	return nil
}
