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

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show what the local database holds",
	Long: `Summarizes the stored readings per metering point and lists the most
recent fetches.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 10, "Number of recent fetches to show")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Debug)

	store, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}
	if len(stats) == 0 {
		fmt.Println("No stored readings yet. Run 'wattwise fetch' first.")
		return nil
	}

	fmt.Println("Stored readings:")
	fmt.Printf("%-20s %12s  %-12s %-12s\n", "METERING POINT", "READINGS", "FIRST", "LATEST")
	for _, ps := range stats {
		fmt.Printf("%-20s %12s  %-12s %-12s\n",
			ps.MeteringPoint,
			humanize.Comma(int64(ps.Readings)),
			ps.FirstTS.Format(dateLayout),
			ps.LatestTS.Format(dateLayout))
	}

	fetches, err := store.ListFetches(listLimit)
	if err != nil {
		return fmt.Errorf("reading fetch history: %w", err)
	}
	if len(fetches) == 0 {
		return nil
	}

	fmt.Println("\nRecent fetches:")
	for _, f := range fetches {
		fmt.Printf("  %s  %s to %s  %-7s %6d readings  (%s)\n",
			f.MeteringPoint,
			f.From.Format(dateLayout), f.To.Format(dateLayout),
			f.Aggregation, f.Readings,
			humanize.Time(f.FetchedAt))
	}
	return nil
}
