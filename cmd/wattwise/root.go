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
	"os"
	"path/filepath"
	"time"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/config"
	"github.com/matthewgall/wattwise/internal/database"
	"github.com/matthewgall/wattwise/internal/eloverblik"
	"github.com/matthewgall/wattwise/internal/logging"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var (
	cfgFile   string
	dbPath    string
	debugMode bool
	jsonLogs  bool
)

var rootCmd = &cobra.Command{
	Use:   "wattwise",
	Short: "Electricity consumption analytics for Danish smart meters",
	Long: `wattwise pulls interval consumption data from Eloverblik (Energinet
DataHub), stores it in a local SQLite database, and turns it into
daily statistics, period comparisons, temperature correlations,
data quality grades and shareable reports.

Start with 'wattwise fetch' to pull data, then explore it with
'analyze', 'compare', 'correlate' and 'report'.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: built-in defaults plus ELOVERBLIK_* env vars)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (default: from config)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON instead of text")
}

// loadConfig reads the config file (or the defaults when --config is
// not given) and applies the command line overrides on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if debugMode {
		cfg.Debug = true
	}
	return cfg, nil
}

func newLogger(debug bool) *logging.Logger {
	if jsonLogs {
		return logging.NewJSONLogger(debug)
	}
	return logging.NewLogger(debug)
}

// openStore opens the SQLite store, creating its directory first.
func openStore(cfg *config.Config, logger *logging.Logger) (*database.Store, error) {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	return database.New(cfg.DatabasePath, logger)
}

// newEloverblikClient validates the provider credentials and builds an
// API client with its response cache. A zero cache_ttl_minutes turns
// the cache off entirely.
func newEloverblikClient(cfg *config.Config, logger *logging.Logger) (*eloverblik.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var cache *eloverblik.Cache
	if cfg.CacheTTL() > 0 {
		var err error
		cache, err = eloverblik.NewCache(cfg.CachePath, cfg.RefreshToken, logger)
		if err != nil {
			logger.Warn("Response cache unavailable, continuing without it", "error", err)
			cache = nil
		}
	}

	client := eloverblik.NewClient("", cfg.RefreshToken, cache, logger)
	client.SetCacheTTL(cfg.CacheTTL())
	return client, nil
}

// parseDateRange parses --from and --to as calendar dates in loc and
// enforces the two-year window the analytics pipeline is sized for.
func parseDateRange(fromStr, toStr string, loc *time.Location) (time.Time, time.Time, error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("both --from and --to are required (YYYY-MM-DD)")
	}
	from, err := time.ParseInLocation(dateLayout, fromStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing --from: %w", err)
	}
	to, err := time.ParseInLocation(dateLayout, toStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing --to: %w", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", toStr, fromStr)
	}
	if days := daysBetween(from, to); days > analytics.MaxRangeDays {
		return time.Time{}, time.Time{}, fmt.Errorf("range spans %d days, the maximum is %d", days, analytics.MaxRangeDays)
	}
	return from, to, nil
}

// daysBetween counts calendar days from from to to, both inclusive.
func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours()/24) + 1
}

// resolveMeteringPoint picks the metering point a command operates on:
// the --meter flag when given, otherwise the single configured or
// stored one. Ambiguity is an error rather than a guess.
func resolveMeteringPoint(cfg *config.Config, store *database.Store, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if len(cfg.MeteringPoints) == 1 {
		return cfg.MeteringPoints[0], nil
	}
	if len(cfg.MeteringPoints) > 1 {
		return "", fmt.Errorf("several metering points are configured, pick one with --meter")
	}

	stats, err := store.Stats()
	if err != nil {
		return "", fmt.Errorf("reading stored metering points: %w", err)
	}
	switch len(stats) {
	case 0:
		return "", fmt.Errorf("no stored readings yet, run 'wattwise fetch' first")
	case 1:
		return stats[0].MeteringPoint, nil
	default:
		return "", fmt.Errorf("several metering points in the database, pick one with --meter")
	}
}

// summariesForRange loads the stored readings covering the local days
// from..to (inclusive) and rolls them up into per-day statistics.
// Callers pass midnight-in-loc dates as produced by parseDateRange.
func summariesForRange(store *database.Store, cfg *config.Config, meteringPoint string, from, to time.Time, loc *time.Location) ([]analytics.DailySummary, error) {
	end := to.AddDate(0, 0, 1) // to is inclusive, the store's upper bound is not

	readings, err := store.ReadingsForRange(meteringPoint, from, end)
	if err != nil {
		return nil, err
	}
	return analytics.AggregateDaily(readings, analytics.AggregateOptions{
		Location:     loc,
		ExcludeZeros: cfg.ExcludeZeros,
	}), nil
}

// dailyTotals loads per-day consumption totals straight from SQL.
// Cheaper than summariesForRange over long windows, at the cost of the
// intra-day statistics; comparisons only need the totals.
func dailyTotals(store *database.Store, cfg *config.Config, meteringPoint string, from, to time.Time, loc *time.Location) ([]analytics.DailySummary, error) {
	rows, err := store.RowsByDate(meteringPoint, from, to, loc)
	if err != nil {
		return nil, err
	}
	return analytics.SummariesFromRows(rows, analytics.AggregateOptions{
		Location:     loc,
		ExcludeZeros: cfg.ExcludeZeros,
	}), nil
}
