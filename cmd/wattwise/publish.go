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
	"github.com/matthewgall/wattwise/internal/publisher"
	"github.com/spf13/cobra"
)

var (
	publishFrom  string
	publishTo    string
	publishMode  string
	publishMeter string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish daily summaries to an MQTT broker",
	Long: `Publishes the stored daily statistics as retained MQTT messages, one
topic per day plus a "latest" topic, for Home Assistant and similar
consumers. When the earlier period has stored data, the period
comparison is published alongside.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishFrom, "from", "", "Start date (YYYY-MM-DD)")
	publishCmd.Flags().StringVar(&publishTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	publishCmd.Flags().StringVar(&publishMode, "mode", string(analytics.ModeYearOverYear), "Comparison mode: year_over_year or month_over_month")
	publishCmd.Flags().StringVar(&publishMeter, "meter", "", "Metering point ID (default: the only configured or stored one)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	mode, err := analytics.ParseComparisonMode(publishMode)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("mqtt_broker is not configured")
	}
	logger := newLogger(cfg.Debug)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	from, to, err := parseDateRange(publishFrom, publishTo, loc)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	meteringPoint, err := resolveMeteringPoint(cfg, store, publishMeter)
	if err != nil {
		return err
	}

	summaries, err := summariesForRange(store, cfg, meteringPoint, from, to, loc)
	if err != nil {
		return fmt.Errorf("loading readings: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Printf("No stored readings for %s between %s and %s, nothing to publish.\n",
			meteringPoint, publishFrom, publishTo)
		return nil
	}

	pub, err := publisher.New(publisher.Options{
		Broker:      cfg.MQTTBroker,
		ClientID:    cfg.MQTTClientID,
		Username:    cfg.MQTTUsername,
		Password:    cfg.MQTTPassword,
		TopicPrefix: cfg.MQTTTopicPrefix,
	}, logger)
	if err != nil {
		return fmt.Errorf("connecting to MQTT broker: %w", err)
	}
	defer pub.Close()

	if err := pub.PublishDailySummaries(meteringPoint, summaries); err != nil {
		return fmt.Errorf("publishing daily summaries: %w", err)
	}
	fmt.Printf("✓ Published %d day(s) for %s\n", len(summaries), meteringPoint)

	prevFrom, prevTo := analytics.PreviousRange(from, to, mode)
	previous, err := dailyTotals(store, cfg, meteringPoint, prevFrom, prevTo, loc)
	if err != nil {
		return fmt.Errorf("loading previous period: %w", err)
	}
	if len(previous) == 0 {
		return nil
	}

	comparison, err := analytics.Compare(summaries, previous, mode)
	if err != nil {
		return err
	}
	if err := pub.PublishComparison(meteringPoint, comparison); err != nil {
		return fmt.Errorf("publishing comparison: %w", err)
	}
	fmt.Printf("✓ Published %s comparison\n", mode)
	return nil
}
