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

// ComparisonMode selects how a date maps onto its earlier counterpart.
type ComparisonMode string

const (
	// ModeYearOverYear compares each day against the same calendar day
	// one year earlier.
	ModeYearOverYear ComparisonMode = "year_over_year"

	// ModeMonthOverMonth compares each day against the same day of the
	// previous month.
	ModeMonthOverMonth ComparisonMode = "month_over_month"
)

// ParseComparisonMode validates a mode string from flags or config.
// Anything outside the two supported modes is rejected outright; a
// wrong mode is an operator mistake, not something to guess around.
func ParseComparisonMode(s string) (ComparisonMode, error) {
	switch mode := ComparisonMode(s); mode {
	case ModeYearOverYear, ModeMonthOverMonth:
		return mode, nil
	default:
		return "", &UnsupportedComparisonError{Mode: s}
	}
}

// PreviousDate maps a date onto its counterpart in the earlier period,
// clamping the day of month to the target month's length: 2024-02-29
// maps to 2023-02-28 year over year, 2025-03-31 to 2025-02-28 month
// over month. time.AddDate is deliberately not used here because it
// normalizes an overflowing day into the next month instead of
// clamping it.
func (m ComparisonMode) PreviousDate(date time.Time) time.Time {
	year, month, day := date.Date()

	switch m {
	case ModeMonthOverMonth:
		month--
		if month < time.January {
			month = time.December
			year--
		}
	default:
		year--
	}

	if last := daysInMonth(year, month); day > last {
		day = last
	}

	return time.Date(year, month, day, 0, 0, 0, 0, date.Location())
}

// PreviousRange maps a whole query range onto the earlier period.
func PreviousRange(from, to time.Time, mode ComparisonMode) (time.Time, time.Time) {
	return mode.PreviousDate(from), mode.PreviousDate(to)
}

// daysInMonth returns the length of a month: day zero of the following
// month normalizes to the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ComparisonRow lines one day up against its earlier counterpart.
// Pointer fields are nil when the value cannot exist: no counterpart
// day was recorded, or (for PercentageChange alone) the counterpart
// consumed exactly zero and a percentage against zero is undefined.
// Nil is the honest answer there; -100 or infinity would both lie.
type ComparisonRow struct {
	Date                time.Time `json:"date"`
	PreviousDate        time.Time `json:"previous_date"`
	CurrentConsumption  float64   `json:"current_consumption"`
	PreviousConsumption *float64  `json:"previous_consumption"`
	AbsoluteDifference  *float64  `json:"absolute_difference"`
	PercentageChange    *float64  `json:"percentage_change"`
}

// ComparisonSummary aggregates a comparison over the days where a
// counterpart existed. AvgPercentChange averages only the rows that
// have a percentage (so zero-baseline days don't skew it) and is nil
// when no row has one.
type ComparisonSummary struct {
	CurrentTotal     float64  `json:"current_total"`
	PreviousTotal    float64  `json:"previous_total"`
	AvgPercentChange *float64 `json:"avg_percentage_change"`
	ComparedDays     int      `json:"compared_days"`
	TotalDays        int      `json:"total_days"`
}

// Comparison is the full result of a period comparison.
type Comparison struct {
	Mode    ComparisonMode    `json:"mode"`
	Rows    []ComparisonRow   `json:"rows"`
	Summary ComparisonSummary `json:"summary"`
}

// Compare lines the current period's daily totals up against the
// earlier period's, one row per current-period day, sorted by date.
// Division only ever happens against a checked non-zero baseline, so
// the output never carries NaN or infinity.
func Compare(current, previous []DailySummary, mode ComparisonMode) (*Comparison, error) {
	if _, err := ParseComparisonMode(string(mode)); err != nil {
		return nil, err
	}

	prevByDate := make(map[string]DailySummary, len(previous))
	for _, p := range previous {
		prevByDate[dateKey(p.Date)] = p
	}

	rows := make([]ComparisonRow, 0, len(current))
	summary := ComparisonSummary{TotalDays: len(current)}

	var pctSum float64
	var pctCount int

	for _, cur := range current {
		prevDate := mode.PreviousDate(cur.Date)
		row := ComparisonRow{
			Date:               cur.Date,
			PreviousDate:       prevDate,
			CurrentConsumption: cur.Total,
		}

		if prev, found := prevByDate[dateKey(prevDate)]; found {
			prevTotal := prev.Total
			diff := cur.Total - prevTotal

			row.PreviousConsumption = &prevTotal
			row.AbsoluteDifference = &diff

			if prevTotal != 0 {
				pct := diff / prevTotal * 100
				row.PercentageChange = &pct
				pctSum += pct
				pctCount++
			}

			summary.CurrentTotal += cur.Total
			summary.PreviousTotal += prevTotal
			summary.ComparedDays++
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	if pctCount > 0 {
		avg := pctSum / float64(pctCount)
		summary.AvgPercentChange = &avg
	}

	return &Comparison{Mode: mode, Rows: rows, Summary: summary}, nil
}
