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

package analytics

import (
	"sort"
	"time"
)

// AggregateOptions tunes daily aggregation.
type AggregateOptions struct {
	// Location decides which calendar day a reading belongs to.
	// Nil means UTC.
	Location *time.Location

	// ExcludeZeros drops zero readings before grouping. Off by
	// default: a zero reading is real consumption, not noise, and
	// filtering it would inflate the daily minimum.
	ExcludeZeros bool
}

func (o AggregateOptions) location() *time.Location {
	if o.Location != nil {
		return o.Location
	}
	return time.UTC
}

// dayGroup collects one calendar day's readings during grouping.
type dayGroup struct {
	date   time.Time
	values []float64
}

// AggregateDaily rolls interval readings up into per-day statistics,
// sorted by date. Days without readings produce no summary: absence
// of data is not a day of zeros. The input is never modified and
// repeated calls return identical results.
func AggregateDaily(readings []Reading, opts AggregateOptions) []DailySummary {
	loc := opts.location()

	groups := make(map[string]*dayGroup)
	for _, r := range readings {
		if opts.ExcludeZeros && r.Consumption == 0 {
			continue
		}

		key := dateKey(r.Timestamp.In(loc))
		group, exists := groups[key]
		if !exists {
			group = &dayGroup{date: midnight(r.Timestamp, loc)}
			groups[key] = group
		}
		group.values = append(group.values, r.Consumption)
	}

	summaries := make([]DailySummary, 0, len(groups))
	for _, group := range groups {
		summaries = append(summaries, summarizeDay(group.date, group.values))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date.Before(summaries[j].Date)
	})

	return summaries
}

// summarizeDay computes the statistics for one day's readings.
// Callers guarantee values is non-empty.
func summarizeDay(date time.Time, values []float64) DailySummary {
	summary := DailySummary{
		Date:     date,
		Min:      values[0],
		Max:      values[0],
		Count:    len(values),
		AllZeros: true,
	}

	for _, v := range values {
		if v < summary.Min {
			summary.Min = v
		}
		if v > summary.Max {
			summary.Max = v
		}
		summary.Total += v
		if v != 0 {
			summary.AllZeros = false
		}
	}

	summary.Avg = summary.Total / float64(summary.Count)
	summary.Range = summary.Max - summary.Min
	summary.HasData = summary.Count > 0 && !summary.AllZeros

	return summary
}

// SummariesFromRows adapts flat (date, value) store rows into the same
// daily pipeline as interval readings. Multiple rows on one date
// aggregate together, so both one-row-per-day and one-row-per-interval
// exports work unchanged.
func SummariesFromRows(rows []MeterRow, opts AggregateOptions) []DailySummary {
	readings := make([]Reading, 0, len(rows))
	for _, row := range rows {
		readings = append(readings, Reading{
			Timestamp:   row.ReadingDate,
			Consumption: row.MeterReading,
		})
	}
	return AggregateDaily(readings, opts)
}
