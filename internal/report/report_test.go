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

package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/logging"
	"github.com/matthewgall/wattwise/internal/weather"
)

func float64Ptr(v float64) *float64 { return &v }

func testReport() *Report {
	day1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	summaries := []analytics.DailySummary{
		{Date: day1, Min: 1.5, Max: 2.0, Avg: 1.7667, Total: 5.3, Range: 0.5, Count: 3, HasData: true},
		{Date: day2, Min: 2.5, Max: 3.0, Avg: 2.75, Total: 5.5, Range: 0.5, Count: 2, HasData: true},
	}

	comparison := &analytics.Comparison{
		Mode: analytics.ModeYearOverYear,
		Rows: []analytics.ComparisonRow{
			{
				Date:                day1,
				PreviousDate:        day1.AddDate(-1, 0, 0),
				CurrentConsumption:  5.3,
				PreviousConsumption: float64Ptr(4.0),
				AbsoluteDifference:  float64Ptr(1.3),
				PercentageChange:    float64Ptr(32.5),
			},
			{
				Date:               day2,
				PreviousDate:       day2.AddDate(-1, 0, 0),
				CurrentConsumption: 5.5,
			},
		},
		Summary: analytics.ComparisonSummary{
			CurrentTotal:     10.8,
			PreviousTotal:    4.0,
			AvgPercentChange: float64Ptr(32.5),
			ComparedDays:     1,
			TotalDays:        2,
		},
	}

	correlation := &analytics.CorrelationResult{
		Coefficient: float64Ptr(-0.82),
		Strength:    analytics.StrengthStrong,
		SampleSize:  2,
		Description: "Strong negative correlation: consumption rises as temperature falls.",
	}

	quality := []analytics.DayReport{
		{Date: day1, Quality: analytics.QualityNormal, Summary: &summaries[0]},
		{Date: day2, Quality: analytics.QualitySparse, Summary: &summaries[1]},
	}

	return &Report{
		MeteringPoint: "571313180400012345",
		From:          day1,
		To:            day2,
		GeneratedAt:   time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC),
		Summaries:     summaries,
		Quality:       quality,
		Comparison:    comparison,
		Correlation:   correlation,
		Weather: []weather.Day{
			{Date: day1, TempMean: -1.5, Description: "Snow"},
			{Date: day2, TempMean: 0.5, Description: "Clear sky"},
		},
	}
}

func TestReportAggregates(t *testing.T) {
	report := testReport()

	require.Equal(t, 2, report.PeriodDays())
	require.InDelta(t, 10.8, report.TotalConsumption(), 1e-9)
	require.InDelta(t, 5.4, report.AvgDailyConsumption(), 1e-9)

	peak := report.PeakDay()
	require.NotNil(t, peak)
	require.InDelta(t, 5.5, peak.Total, 1e-9)

	quiet := report.QuietDay()
	require.NotNil(t, quiet)
	require.InDelta(t, 5.3, quiet.Total, 1e-9)

	problems := report.ProblemDays()
	require.Len(t, problems, 1)
	require.Equal(t, analytics.QualitySparse, problems[0].Quality)
}

func TestReportAggregatesEmpty(t *testing.T) {
	report := &Report{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	require.Zero(t, report.TotalConsumption())
	require.Zero(t, report.AvgDailyConsumption())
	require.Nil(t, report.PeakDay())
	require.Nil(t, report.QuietDay())
	require.Empty(t, report.ProblemDays())
}

func TestMarkdownReport(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(logging.NewLogger(false))
	reporter.render(&buf, testReport())

	out := buf.String()

	require.Contains(t, out, "# Electricity Consumption Report")
	require.Contains(t, out, "571313180400012345")
	require.Contains(t, out, "2025-01-01 to 2025-01-02 (2 days)")

	// Summary metrics
	require.Contains(t, out, "## 📊 Summary")
	require.Contains(t, out, "10.8 kWh")

	// Daily table with weather column
	require.Contains(t, out, "## ⚡ Daily Consumption")
	require.Contains(t, out, "| 2025-01-01 | 5.30 |")
	require.Contains(t, out, "Snow, -1.5°C")

	// Comparison: arrows for known rows, dash for uncompared
	require.Contains(t, out, "## 📈 Year over Year Comparison")
	require.Contains(t, out, "↗️ +32.5%")
	require.Contains(t, out, "| 2025-01-02 | 5.50 | - | - |")

	// Correlation verdict
	require.Contains(t, out, "## 🌡️ Temperature Correlation")
	require.Contains(t, out, "-0.820")
	require.Contains(t, out, "⭐⭐⭐ strong")

	// Quality lists only the sparse day
	require.Contains(t, out, "## 🔍 Data Quality")
	require.Contains(t, out, "| 2025-01-02 | ⚠️ sparse | 2 |")
	require.NotContains(t, out, "| 2025-01-01 | ✅ normal")

	require.Contains(t, out, "Generated by [wattwise]")
}

func TestMarkdownReportWithoutOptionalSections(t *testing.T) {
	report := testReport()
	report.Comparison = nil
	report.Correlation = nil
	report.Weather = nil

	var buf bytes.Buffer
	reporter := NewReporter(logging.NewLogger(false))
	reporter.render(&buf, report)

	out := buf.String()
	require.NotContains(t, out, "Comparison")
	require.NotContains(t, out, "Correlation")
	require.NotContains(t, out, "Weather")
	require.Contains(t, out, "| Date | Total | Min | Max | Avg | Readings |\n")
}

func TestMarkdownReportEmptyData(t *testing.T) {
	report := &Report{
		MeteringPoint: "571313180400012345",
		From:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:            time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		GeneratedAt:   time.Now(),
	}

	var buf bytes.Buffer
	reporter := NewReporter(logging.NewLogger(false))
	reporter.render(&buf, report)

	require.Contains(t, buf.String(), "No consumption data available")
}

func TestMarkdownReportCapsDailyTable(t *testing.T) {
	report := testReport()

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var summaries []analytics.DailySummary
	for i := 0; i < 60; i++ {
		summaries = append(summaries, analytics.DailySummary{
			Date:    start.AddDate(0, 0, i),
			Total:   float64(i),
			Count:   24,
			HasData: true,
		})
	}
	report.Summaries = summaries
	report.From = start
	report.To = start.AddDate(0, 0, 59)
	report.Weather = nil
	report.Comparison = nil

	var buf bytes.Buffer
	reporter := NewReporter(logging.NewLogger(false))
	reporter.render(&buf, report)

	out := buf.String()
	require.Contains(t, out, "most recent 31** of 60 days")
	// The oldest days fall outside the table.
	require.NotContains(t, out, "| 2024-06-01 |")
	require.Contains(t, out, "| 2024-07-30 |")
}

func TestHTMLReport(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewHTMLReporter(logging.NewLogger(false))
	reporter.render(&buf, testReport(), ChartSet{DailyConsumption: "ZmFrZQ=="})

	out := buf.String()

	require.Contains(t, out, "<!DOCTYPE html>")
	require.Contains(t, out, "571313180400012345")
	require.Contains(t, out, `data:image/png;base64,ZmFrZQ==`)
	require.Contains(t, out, "Year over Year Comparison")
	require.Contains(t, out, "Temperature Correlation")
	require.Contains(t, out, "badge-success")
	require.Contains(t, out, "</html>")
}

func TestHTMLReportSkipsAbsentSections(t *testing.T) {
	report := testReport()
	report.Comparison = nil
	report.Correlation = nil

	var buf bytes.Buffer
	reporter := NewHTMLReporter(logging.NewLogger(false))
	reporter.render(&buf, report, ChartSet{})

	out := buf.String()
	require.NotContains(t, out, "Comparison</h2>")
	require.NotContains(t, out, "Correlation</h2>")
	require.NotContains(t, out, "data:image/png")
}

func TestChangeArrow(t *testing.T) {
	require.Equal(t, "↗️", changeArrow(5))
	require.Equal(t, "↘️", changeArrow(-5))
	require.Equal(t, "➡️", changeArrow(0))
}

func TestModeLabels(t *testing.T) {
	require.Equal(t, "Year over Year", modeLabel(analytics.ModeYearOverYear))
	require.Equal(t, "Month over Month", modeLabel(analytics.ModeMonthOverMonth))
	require.Equal(t, "last year", previousLabel(analytics.ModeYearOverYear))
	require.Equal(t, "last month", previousLabel(analytics.ModeMonthOverMonth))
}
