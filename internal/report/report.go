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

// Package report renders analytics output as markdown and HTML, with
// embedded charts for the HTML flavor.
package report

import (
	"fmt"
	"time"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/weather"
)

// Report collects everything one rendering covers. Comparison,
// Correlation and Weather are optional; sections for absent data are
// skipped.
type Report struct {
	MeteringPoint string
	From          time.Time
	To            time.Time
	GeneratedAt   time.Time

	Summaries   []analytics.DailySummary
	Quality     []analytics.DayReport
	Comparison  *analytics.Comparison
	Correlation *analytics.CorrelationResult
	Weather     []weather.Day
}

// PeriodDays is the number of calendar days the report covers.
func (r *Report) PeriodDays() int {
	return int(r.To.Sub(r.From).Hours()/24) + 1
}

// TotalConsumption sums consumption across all summarized days.
func (r *Report) TotalConsumption() float64 {
	var total float64
	for _, s := range r.Summaries {
		total += s.Total
	}
	return total
}

// AvgDailyConsumption is the mean daily total across summarized days.
func (r *Report) AvgDailyConsumption() float64 {
	if len(r.Summaries) == 0 {
		return 0
	}
	return r.TotalConsumption() / float64(len(r.Summaries))
}

// PeakDay returns the summary with the highest daily total.
func (r *Report) PeakDay() *analytics.DailySummary {
	var peak *analytics.DailySummary
	for i := range r.Summaries {
		if peak == nil || r.Summaries[i].Total > peak.Total {
			peak = &r.Summaries[i]
		}
	}
	return peak
}

// QuietDay returns the summary with the lowest daily total.
func (r *Report) QuietDay() *analytics.DailySummary {
	var quiet *analytics.DailySummary
	for i := range r.Summaries {
		if quiet == nil || r.Summaries[i].Total < quiet.Total {
			quiet = &r.Summaries[i]
		}
	}
	return quiet
}

// ProblemDays returns quality entries for days that are not normal.
func (r *Report) ProblemDays() []analytics.DayReport {
	var problems []analytics.DayReport
	for _, day := range r.Quality {
		if day.Quality != analytics.QualityNormal {
			problems = append(problems, day)
		}
	}
	return problems
}

// weatherFor looks up the weather for a calendar date, nil if absent.
func (r *Report) weatherFor(date time.Time) *weather.Day {
	key := date.Format("2006-01-02")
	for i := range r.Weather {
		if r.Weather[i].Date.Format("2006-01-02") == key {
			return &r.Weather[i]
		}
	}
	return nil
}

// formatKWh formats a consumption value
func formatKWh(value float64) string {
	return fmt.Sprintf("%.2f kWh", value)
}

// formatPercent formats a percentage with sign
func formatPercent(value float64) string {
	return fmt.Sprintf("%+.1f%%", value)
}

// changeArrow picks a direction marker for a consumption change.
func changeArrow(diff float64) string {
	switch {
	case diff > 0:
		return "↗️"
	case diff < 0:
		return "↘️"
	default:
		return "➡️"
	}
}
