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
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/logging"
	"github.com/matthewgall/wattwise/internal/version"
)

// maxTableDays caps the per-day tables so two-year reports stay
// readable; charts still cover the whole range.
const maxTableDays = 31

// Reporter generates markdown reports
type Reporter struct {
	logger *logging.Logger
}

// NewReporter creates a new markdown report generator
func NewReporter(logger *logging.Logger) *Reporter {
	return &Reporter{
		logger: logger,
	}
}

// GenerateReport writes a markdown report to outputPath, or stdout
// when outputPath is empty.
func (r *Reporter) GenerateReport(report *Report, outputPath string) error {
	r.logger.Info("Generating report")

	var writer io.Writer
	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	r.render(writer, report)

	if outputPath != "" {
		r.logger.Info("Report saved", "path", outputPath)
	}

	return nil
}

func (r *Reporter) render(w io.Writer, report *Report) {
	r.writeHeader(w, report)
	r.writeSummary(w, report)
	r.writeDailyTable(w, report)
	r.writeComparison(w, report)
	r.writeCorrelation(w, report)
	r.writeQuality(w, report)
	r.writeFooter(w)
}

// writeHeader writes the report header
func (r *Reporter) writeHeader(w io.Writer, report *Report) {
	fmt.Fprintf(w, "# Electricity Consumption Report\n\n")
	fmt.Fprintf(w, "**Metering Point:** %s\n\n", report.MeteringPoint)
	fmt.Fprintf(w, "**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "**Period:** %s to %s (%d days)\n\n",
		report.From.Format("2006-01-02"),
		report.To.Format("2006-01-02"),
		report.PeriodDays(),
	)
	fmt.Fprintf(w, "**wattwise version:** %s\n\n", version.GetVersion())
	fmt.Fprintf(w, "---\n\n")
}

// writeSummary writes the summary section
func (r *Reporter) writeSummary(w io.Writer, report *Report) {
	fmt.Fprintf(w, "## 📊 Summary\n\n")

	if len(report.Summaries) == 0 {
		fmt.Fprintf(w, "*No consumption data available for this period.*\n\n")
		return
	}

	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|--------|-------|\n")
	fmt.Fprintf(w, "| ⚡ Total Consumption | %s kWh |\n", humanize.CommafWithDigits(report.TotalConsumption(), 2))
	fmt.Fprintf(w, "| 📅 Average per Day | %s |\n", formatKWh(report.AvgDailyConsumption()))

	if peak := report.PeakDay(); peak != nil {
		fmt.Fprintf(w, "| 🔺 Highest Day | %s (%s) |\n", formatKWh(peak.Total), peak.Date.Format("2006-01-02"))
	}
	if quiet := report.QuietDay(); quiet != nil {
		fmt.Fprintf(w, "| 🔻 Lowest Day | %s (%s) |\n", formatKWh(quiet.Total), quiet.Date.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "| 🗓️ Days with Data | %d of %d |\n", len(report.Summaries), report.PeriodDays())
	fmt.Fprintf(w, "\n")
}

// writeDailyTable writes per-day statistics
func (r *Reporter) writeDailyTable(w io.Writer, report *Report) {
	if len(report.Summaries) == 0 {
		return
	}

	fmt.Fprintf(w, "## ⚡ Daily Consumption\n\n")

	summaries := report.Summaries
	if len(summaries) > maxTableDays {
		fmt.Fprintf(w, "Showing the **most recent %d** of %d days (charts cover the full period):\n\n",
			maxTableDays, len(summaries))
		summaries = summaries[len(summaries)-maxTableDays:]
	}

	withWeather := len(report.Weather) > 0
	if withWeather {
		fmt.Fprintf(w, "| Date | Total | Min | Max | Avg | Readings | Weather |\n")
		fmt.Fprintf(w, "|------|-------|-----|-----|-----|----------|----------|\n")
	} else {
		fmt.Fprintf(w, "| Date | Total | Min | Max | Avg | Readings |\n")
		fmt.Fprintf(w, "|------|-------|-----|-----|-----|----------|\n")
	}

	for _, s := range summaries {
		if withWeather {
			conditions := "-"
			if day := report.weatherFor(s.Date); day != nil {
				conditions = fmt.Sprintf("%s, %.1f°C", day.Description, day.TempMean)
			}
			fmt.Fprintf(w, "| %s | %.2f | %.3f | %.3f | %.3f | %d | %s |\n",
				s.Date.Format("2006-01-02"), s.Total, s.Min, s.Max, s.Avg, s.Count, conditions)
		} else {
			fmt.Fprintf(w, "| %s | %.2f | %.3f | %.3f | %.3f | %d |\n",
				s.Date.Format("2006-01-02"), s.Total, s.Min, s.Max, s.Avg, s.Count)
		}
	}
	fmt.Fprintf(w, "\n")
}

// writeComparison writes the period comparison section
func (r *Reporter) writeComparison(w io.Writer, report *Report) {
	comparison := report.Comparison
	if comparison == nil {
		return
	}

	fmt.Fprintf(w, "## 📈 %s Comparison\n\n", modeLabel(comparison.Mode))

	summary := comparison.Summary
	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|--------|-------|\n")
	fmt.Fprintf(w, "| Current Period Total | %s |\n", formatKWh(summary.CurrentTotal))
	fmt.Fprintf(w, "| Previous Period Total | %s |\n", formatKWh(summary.PreviousTotal))
	if summary.AvgPercentChange != nil {
		arrow := changeArrow(*summary.AvgPercentChange)
		fmt.Fprintf(w, "| Average Change | %s %s |\n", arrow, formatPercent(*summary.AvgPercentChange))
	}
	fmt.Fprintf(w, "| Compared Days | %d of %d |\n", summary.ComparedDays, summary.TotalDays)
	fmt.Fprintf(w, "\n")

	rows := comparison.Rows
	if len(rows) > maxTableDays {
		fmt.Fprintf(w, "Showing the **most recent %d** of %d days:\n\n", maxTableDays, len(rows))
		rows = rows[len(rows)-maxTableDays:]
	}

	fmt.Fprintf(w, "| Date | Current | Previous (%s) | Change |\n", previousLabel(comparison.Mode))
	fmt.Fprintf(w, "|------|---------|----------|--------|\n")
	for _, row := range rows {
		previous := "-"
		change := "-"
		if row.PreviousConsumption != nil {
			previous = fmt.Sprintf("%.2f (%s)", *row.PreviousConsumption, row.PreviousDate.Format("2006-01-02"))
		}
		if row.PercentageChange != nil {
			change = fmt.Sprintf("%s %s", changeArrow(*row.PercentageChange), formatPercent(*row.PercentageChange))
		}
		fmt.Fprintf(w, "| %s | %.2f | %s | %s |\n",
			row.Date.Format("2006-01-02"), row.CurrentConsumption, previous, change)
	}
	fmt.Fprintf(w, "\n")
}

// writeCorrelation writes the temperature correlation section
func (r *Reporter) writeCorrelation(w io.Writer, report *Report) {
	correlation := report.Correlation
	if correlation == nil {
		return
	}

	fmt.Fprintf(w, "## 🌡️ Temperature Correlation\n\n")
	fmt.Fprintf(w, "%s\n\n", correlation.Description)

	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|--------|-------|\n")
	if correlation.Coefficient != nil {
		fmt.Fprintf(w, "| Pearson Coefficient | %.3f |\n", *correlation.Coefficient)
	} else {
		fmt.Fprintf(w, "| Pearson Coefficient | - |\n")
	}
	fmt.Fprintf(w, "| Strength | %s %s |\n", strengthStars(correlation.Strength), correlation.Strength)
	fmt.Fprintf(w, "| Days Compared | %d |\n", correlation.SampleSize)
	fmt.Fprintf(w, "\n")
}

// writeQuality writes the data quality section
func (r *Reporter) writeQuality(w io.Writer, report *Report) {
	if len(report.Quality) == 0 {
		return
	}

	fmt.Fprintf(w, "## 🔍 Data Quality\n\n")

	problems := report.ProblemDays()
	if len(problems) == 0 {
		fmt.Fprintf(w, "✅ All %d days have a full set of readings.\n\n", len(report.Quality))
		return
	}

	fmt.Fprintf(w, "Found **%d days** needing attention out of %d:\n\n", len(problems), len(report.Quality))

	fmt.Fprintf(w, "| Date | Status | Readings |\n")
	fmt.Fprintf(w, "|------|--------|----------|\n")
	for _, day := range problems {
		count := 0
		if day.Summary != nil {
			count = day.Summary.Count
		}
		fmt.Fprintf(w, "| %s | %s %s | %d |\n",
			day.Date.Format("2006-01-02"), qualityIcon(day.Quality), day.Quality, count)
	}
	fmt.Fprintf(w, "\n")
}

// writeFooter writes the report footer
func (r *Reporter) writeFooter(w io.Writer) {
	fmt.Fprintf(w, "---\n\n")
	fmt.Fprintf(w, "*Readings come from the Eloverblik customer API and reflect what the grid operator has validated so far; recent days may still be revised.*\n\n")
	fmt.Fprintf(w, "*Generated by [wattwise](https://github.com/matthewgall/wattwise)*\n\n")
	fmt.Fprintf(w, "---\n\n")
	fmt.Fprintf(w, "This is an unofficial third-party application. Eloverblik is operated by Energinet DataHub A/S. This application is not affiliated with, endorsed by, or connected to Energinet.\n")
}

// modeLabel returns a heading-friendly comparison mode name.
func modeLabel(mode analytics.ComparisonMode) string {
	switch mode {
	case analytics.ModeYearOverYear:
		return "Year over Year"
	case analytics.ModeMonthOverMonth:
		return "Month over Month"
	default:
		return string(mode)
	}
}

// previousLabel names the earlier period for table headers.
func previousLabel(mode analytics.ComparisonMode) string {
	switch mode {
	case analytics.ModeYearOverYear:
		return "last year"
	case analytics.ModeMonthOverMonth:
		return "last month"
	default:
		return "previous"
	}
}

// strengthStars maps correlation strength onto a star rating.
func strengthStars(strength analytics.CorrelationStrength) string {
	switch strength {
	case analytics.StrengthStrong:
		return "⭐⭐⭐"
	case analytics.StrengthModerate:
		return "⭐⭐"
	case analytics.StrengthWeak:
		return "⭐"
	default:
		return "-"
	}
}

// qualityIcon maps a day quality onto a status icon.
func qualityIcon(quality analytics.DayQuality) string {
	switch quality {
	case analytics.QualityNormal:
		return "✅"
	case analytics.QualityAllZero:
		return "🔵"
	case analytics.QualitySparse:
		return "⚠️"
	case analytics.QualityMissing:
		return "❌"
	default:
		return "❓"
	}
}
