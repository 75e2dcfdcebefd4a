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

import "time"

// DayQuality classifies how trustworthy one day's readings are.
type DayQuality string

const (
	// QualityNormal marks a full complement of readings with at least
	// one non-zero value.
	QualityNormal DayQuality = "normal"

	// QualityAllZero marks a day whose readings are all exactly zero,
	// usually a dead meter link rather than an idle installation.
	QualityAllZero DayQuality = "all_zero"

	// QualitySparse marks a day with readings but fewer than the day
	// should have.
	QualitySparse DayQuality = "sparse"

	// QualityMissing marks a day with no readings at all.
	QualityMissing DayQuality = "missing"
)

// ClassifyDay grades one day's summary against the reading count the
// day should have produced. All-zero outranks sparse: a short day of
// nothing but zeros is flagged all_zero.
func ClassifyDay(summary *DailySummary, expected int) DayQuality {
	switch {
	case summary == nil || summary.Count == 0:
		return QualityMissing
	case summary.AllZeros:
		return QualityAllZero
	case summary.Count < expected:
		return QualitySparse
	default:
		return QualityNormal
	}
}

// ExpectedReadings derives how many readings a calendar day should
// produce at the given resolution. The count comes from the local
// midnight-to-midnight span, so DST transition days yield 23 or 25
// hourly slots instead of a hardcoded 24.
func ExpectedReadings(date time.Time, loc *time.Location, resolution time.Duration) int {
	if loc == nil {
		loc = time.UTC
	}
	if resolution <= 0 {
		resolution = DefaultResolution
	}

	start := midnight(date, loc)
	end := start.AddDate(0, 0, 1)

	return int(end.Sub(start) / resolution)
}

// DayReport pairs a date with its quality grade. Summary is nil for
// missing days.
type DayReport struct {
	Date    time.Time     `json:"date"`
	Quality DayQuality    `json:"quality"`
	Summary *DailySummary `json:"summary,omitempty"`
}

// QualityReport grades every day from from to to inclusive. Walking
// the full range is the point: days with no readings surface as
// missing instead of silently not appearing.
func QualityReport(summaries []DailySummary, from, to time.Time, loc *time.Location, resolution time.Duration) []DayReport {
	if loc == nil {
		loc = time.UTC
	}

	byDate := make(map[string]*DailySummary, len(summaries))
	for i := range summaries {
		byDate[dateKey(summaries[i].Date)] = &summaries[i]
	}

	var reports []DayReport
	last := midnight(to, loc)
	for day := midnight(from, loc); !day.After(last); day = day.AddDate(0, 0, 1) {
		summary := byDate[dateKey(day)]
		reports = append(reports, DayReport{
			Date:    day,
			Quality: ClassifyDay(summary, ExpectedReadings(day, loc, resolution)),
			Summary: summary,
		})
	}

	return reports
}
