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
	"html"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/logging"
	"github.com/matthewgall/wattwise/internal/version"
)

// HTMLReporter generates a single self-contained HTML page with
// embedded charts.
type HTMLReporter struct {
	logger *logging.Logger
}

// NewHTMLReporter creates a new HTML report generator
func NewHTMLReporter(logger *logging.Logger) *HTMLReporter {
	return &HTMLReporter{
		logger: logger,
	}
}

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Electricity Consumption Report</title>
    <style>
        :root {
            --primary-color: #00A8E8;
            --secondary-color: #00C896;
            --warning-color: #FFB800;
            --danger-color: #FF4D6D;
            --success-color: #00C896;
            --bg-color: #0A0F1E;
            --card-bg: #1A2332;
            --text-color: #E8EAF6;
            --text-muted: #9FA8DA;
            --border-color: #2A3550;
        }

        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            background: var(--bg-color);
            color: var(--text-color);
            line-height: 1.6;
            padding: 20px;
        }

        .container {
            max-width: 1200px;
            margin: 0 auto;
        }

        header {
            background: linear-gradient(135deg, var(--primary-color), var(--secondary-color));
            padding: 40px;
            border-radius: 16px;
            margin-bottom: 30px;
            box-shadow: 0 8px 32px rgba(0, 168, 232, 0.2);
        }

        h1 {
            font-size: 2.5em;
            margin-bottom: 10px;
            font-weight: 700;
        }

        .subtitle {
            color: rgba(255, 255, 255, 0.9);
            font-size: 1.1em;
        }

        .card {
            background: var(--card-bg);
            border-radius: 12px;
            padding: 30px;
            margin-bottom: 30px;
            border: 1px solid var(--border-color);
            box-shadow: 0 4px 16px rgba(0, 0, 0, 0.3);
        }

        h2 {
            color: var(--primary-color);
            margin-bottom: 20px;
            font-size: 1.8em;
            border-bottom: 2px solid var(--border-color);
            padding-bottom: 10px;
        }

        h3 {
            color: var(--secondary-color);
            margin: 25px 0 15px 0;
            font-size: 1.4em;
        }

        table {
            width: 100%;
            border-collapse: collapse;
            margin: 20px 0;
        }

        th, td {
            padding: 12px;
            text-align: left;
            border-bottom: 1px solid var(--border-color);
        }

        th {
            background: rgba(0, 168, 232, 0.1);
            color: var(--primary-color);
            font-weight: 600;
        }

        tr:hover {
            background: rgba(0, 200, 150, 0.05);
        }

        .metric-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin: 20px 0;
        }

        .metric-card {
            background: rgba(0, 168, 232, 0.05);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 20px;
            text-align: center;
        }

        .metric-value {
            font-size: 2em;
            font-weight: bold;
            color: var(--secondary-color);
            margin: 10px 0;
        }

        .metric-label {
            color: var(--text-muted);
            font-size: 0.9em;
        }

        .badge {
            display: inline-block;
            padding: 6px 12px;
            border-radius: 20px;
            font-size: 0.85em;
            font-weight: 600;
            margin: 5px;
        }

        .badge-success {
            background: var(--success-color);
            color: white;
        }

        .badge-warning {
            background: var(--warning-color);
            color: #0A0F1E;
        }

        .badge-danger {
            background: var(--danger-color);
            color: white;
        }

        .badge-info {
            background: #3F51B5;
            color: white;
        }

        .chart {
            width: 100%;
            border-radius: 8px;
            margin: 20px 0;
        }

        .up {
            color: var(--danger-color);
        }

        .down {
            color: var(--success-color);
        }

        footer {
            text-align: center;
            padding: 30px;
            color: var(--text-muted);
            border-top: 1px solid var(--border-color);
            margin-top: 40px;
        }

        @media (max-width: 768px) {
            body {
                padding: 10px;
            }

            header {
                padding: 20px;
            }

            h1 {
                font-size: 1.8em;
            }

            .card {
                padding: 20px;
            }

            table {
                font-size: 0.9em;
            }
        }

        @media print {
            body {
                background: white;
                color: black;
            }

            .card {
                border: 1px solid #ddd;
                break-inside: avoid;
            }
        }
    </style>
</head>
<body>
    <div class="container">
`

// GenerateHTMLReport writes an HTML report to outputPath, or stdout
// when outputPath is empty.
func (r *HTMLReporter) GenerateHTMLReport(report *Report, chartSet ChartSet, outputPath string) error {
	r.logger.Info("Generating HTML report")

	var writer io.Writer
	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create HTML report file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	r.render(writer, report, chartSet)

	if outputPath != "" {
		r.logger.Info("HTML report saved", "path", outputPath)
	}

	return nil
}

func (r *HTMLReporter) render(w io.Writer, report *Report, chartSet ChartSet) {
	r.writeHTMLHeader(w, report)
	r.writeHTMLSummary(w, report)
	r.writeHTMLCharts(w, chartSet)
	r.writeHTMLComparison(w, report)
	r.writeHTMLCorrelation(w, report)
	r.writeHTMLQuality(w, report)
	r.writeHTMLDailyTable(w, report)
	r.writeHTMLFooter(w)
}

func (r *HTMLReporter) writeHTMLHeader(w io.Writer, report *Report) {
	fmt.Fprint(w, htmlHead)
	fmt.Fprintf(w, `        <header>
            <h1>⚡ Electricity Consumption Report</h1>
            <div class="subtitle">Metering Point: %s</div>
            <div class="subtitle">Period: %s to %s (%d days)</div>
            <div class="subtitle">Generated: %s</div>
            <div class="subtitle" style="opacity: 0.7; font-size: 0.9em; margin-top: 10px;">wattwise %s</div>
        </header>
`,
		html.EscapeString(report.MeteringPoint),
		report.From.Format("2 Jan 2006"),
		report.To.Format("2 Jan 2006"),
		report.PeriodDays(),
		report.GeneratedAt.Format("Monday, 2 January 2006 at 15:04"),
		version.GetVersion(),
	)
}

func (r *HTMLReporter) writeHTMLSummary(w io.Writer, report *Report) {
	if len(report.Summaries) == 0 {
		fmt.Fprint(w, `
        <div class="card">
            <h2>📊 Summary</h2>
            <p><em>No consumption data available for this period.</em></p>
        </div>
`)
		return
	}

	qualityBadge := `<span class="badge badge-success">Complete</span>`
	if problems := report.ProblemDays(); len(problems) > 0 {
		qualityBadge = fmt.Sprintf(`<span class="badge badge-warning">%d days need attention</span>`, len(problems))
	}

	peakValue := "-"
	peakLabel := "Highest Day"
	if peak := report.PeakDay(); peak != nil {
		peakValue = fmt.Sprintf("%.2f kWh", peak.Total)
		peakLabel = fmt.Sprintf("Highest Day (%s)", peak.Date.Format("2 Jan"))
	}

	fmt.Fprintf(w, `
        <div class="card">
            <h2>📊 Summary</h2>

            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-label">Total Consumption</div>
                    <div class="metric-value">%s kWh</div>
                    <span class="badge badge-info">%d days of data</span>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Average per Day</div>
                    <div class="metric-value">%.2f kWh</div>
                    <span class="badge badge-info">Daily mean</span>
                </div>
                <div class="metric-card">
                    <div class="metric-label">%s</div>
                    <div class="metric-value">%s</div>
                    <span class="badge badge-info">Peak usage</span>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Data Quality</div>
                    <div class="metric-value">%d/%d</div>
                    %s
                </div>
            </div>
        </div>
`,
		humanize.CommafWithDigits(report.TotalConsumption(), 2),
		len(report.Summaries),
		report.AvgDailyConsumption(),
		peakLabel,
		peakValue,
		len(report.Summaries),
		report.PeriodDays(),
		qualityBadge,
	)
}

func (r *HTMLReporter) writeHTMLCharts(w io.Writer, chartSet ChartSet) {
	if chartSet.DailyConsumption == "" && chartSet.Comparison == "" && chartSet.Temperature == "" {
		return
	}

	fmt.Fprint(w, `
        <div class="card">
            <h2>📉 Charts</h2>
`)

	writeChart := func(title, encoded string) {
		if encoded == "" {
			return
		}
		fmt.Fprintf(w, `            <h3>%s</h3>
            <img class="chart" src="data:image/png;base64,%s" alt="%s">
`, title, encoded, title)
	}

	writeChart("Daily Consumption", chartSet.DailyConsumption)
	writeChart("Period Comparison", chartSet.Comparison)
	writeChart("Consumption vs Temperature", chartSet.Temperature)

	fmt.Fprint(w, `        </div>
`)
}

func (r *HTMLReporter) writeHTMLComparison(w io.Writer, report *Report) {
	comparison := report.Comparison
	if comparison == nil {
		return
	}

	summary := comparison.Summary

	changeCell := "-"
	if summary.AvgPercentChange != nil {
		class := "up"
		if *summary.AvgPercentChange < 0 {
			class = "down"
		}
		changeCell = fmt.Sprintf(`<span class="%s">%s %s</span>`,
			class, changeArrow(*summary.AvgPercentChange), formatPercent(*summary.AvgPercentChange))
	}

	fmt.Fprintf(w, `
        <div class="card">
            <h2>📈 %s Comparison</h2>

            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-label">Current Period</div>
                    <div class="metric-value">%.2f kWh</div>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Previous Period</div>
                    <div class="metric-value">%.2f kWh</div>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Average Change</div>
                    <div class="metric-value">%s</div>
                    <span class="badge badge-info">%d of %d days compared</span>
                </div>
            </div>

            <table>
                <thead>
                    <tr>
                        <th>Date</th>
                        <th>Current</th>
                        <th>Previous (%s)</th>
                        <th>Change</th>
                    </tr>
                </thead>
                <tbody>
`,
		modeLabel(comparison.Mode),
		summary.CurrentTotal,
		summary.PreviousTotal,
		changeCell,
		summary.ComparedDays,
		summary.TotalDays,
		previousLabel(comparison.Mode),
	)

	rows := comparison.Rows
	if len(rows) > maxTableDays {
		rows = rows[len(rows)-maxTableDays:]
	}

	for _, row := range rows {
		previous := "-"
		change := "-"
		if row.PreviousConsumption != nil {
			previous = fmt.Sprintf("%.2f kWh (%s)", *row.PreviousConsumption, row.PreviousDate.Format("2006-01-02"))
		}
		if row.PercentageChange != nil {
			class := "up"
			if *row.PercentageChange < 0 {
				class = "down"
			}
			change = fmt.Sprintf(`<span class="%s">%s %s</span>`,
				class, changeArrow(*row.PercentageChange), formatPercent(*row.PercentageChange))
		}

		fmt.Fprintf(w, `                    <tr>
                        <td>%s</td>
                        <td>%.2f kWh</td>
                        <td>%s</td>
                        <td>%s</td>
                    </tr>
`,
			row.Date.Format("2006-01-02"), row.CurrentConsumption, previous, change)
	}

	fmt.Fprint(w, `                </tbody>
            </table>
        </div>
`)
}

func (r *HTMLReporter) writeHTMLCorrelation(w io.Writer, report *Report) {
	correlation := report.Correlation
	if correlation == nil {
		return
	}

	coefficient := "-"
	if correlation.Coefficient != nil {
		coefficient = fmt.Sprintf("%.3f", *correlation.Coefficient)
	}

	badge := "badge-info"
	switch correlation.Strength {
	case analytics.StrengthStrong:
		badge = "badge-success"
	case analytics.StrengthModerate:
		badge = "badge-warning"
	}

	fmt.Fprintf(w, `
        <div class="card">
            <h2>🌡️ Temperature Correlation</h2>

            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-label">Pearson Coefficient</div>
                    <div class="metric-value">%s</div>
                    <span class="badge %s">%s</span>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Days Compared</div>
                    <div class="metric-value">%d</div>
                </div>
            </div>

            <p>%s</p>
        </div>
`,
		coefficient,
		badge,
		correlation.Strength,
		correlation.SampleSize,
		html.EscapeString(correlation.Description),
	)
}

func (r *HTMLReporter) writeHTMLQuality(w io.Writer, report *Report) {
	if len(report.Quality) == 0 {
		return
	}

	problems := report.ProblemDays()
	if len(problems) == 0 {
		fmt.Fprintf(w, `
        <div class="card">
            <h2>🔍 Data Quality</h2>
            <p>✅ All %d days have a full set of readings.</p>
        </div>
`, len(report.Quality))
		return
	}

	fmt.Fprintf(w, `
        <div class="card">
            <h2>🔍 Data Quality</h2>
            <p>Found <strong>%d days</strong> needing attention out of %d:</p>
            <table>
                <thead>
                    <tr>
                        <th>Date</th>
                        <th>Status</th>
                        <th>Readings</th>
                    </tr>
                </thead>
                <tbody>
`, len(problems), len(report.Quality))

	for _, day := range problems {
		count := 0
		if day.Summary != nil {
			count = day.Summary.Count
		}
		fmt.Fprintf(w, `                    <tr>
                        <td>%s</td>
                        <td>%s %s</td>
                        <td>%d</td>
                    </tr>
`,
			day.Date.Format("2006-01-02"), qualityIcon(day.Quality), day.Quality, count)
	}

	fmt.Fprint(w, `                </tbody>
            </table>
        </div>
`)
}

func (r *HTMLReporter) writeHTMLDailyTable(w io.Writer, report *Report) {
	if len(report.Summaries) == 0 {
		return
	}

	summaries := report.Summaries
	note := ""
	if len(summaries) > maxTableDays {
		note = fmt.Sprintf(`<p>Showing the most recent %d of %d days; charts cover the full period.</p>`,
			maxTableDays, len(summaries))
		summaries = summaries[len(summaries)-maxTableDays:]
	}

	withWeather := len(report.Weather) > 0
	weatherHeader := ""
	if withWeather {
		weatherHeader = `
                        <th>Weather</th>`
	}

	fmt.Fprintf(w, `
        <div class="card">
            <h2>⚡ Daily Consumption</h2>
            %s
            <table>
                <thead>
                    <tr>
                        <th>Date</th>
                        <th>Total</th>
                        <th>Min</th>
                        <th>Max</th>
                        <th>Avg</th>
                        <th>Readings</th>%s
                    </tr>
                </thead>
                <tbody>
`, note, weatherHeader)

	for _, s := range summaries {
		weatherCell := ""
		if withWeather {
			conditions := "-"
			if day := report.weatherFor(s.Date); day != nil {
				conditions = fmt.Sprintf("%s, %.1f°C", html.EscapeString(day.Description), day.TempMean)
			}
			weatherCell = fmt.Sprintf(`
                        <td>%s</td>`, conditions)
		}

		fmt.Fprintf(w, `                    <tr>
                        <td>%s</td>
                        <td>%.2f kWh</td>
                        <td>%.3f</td>
                        <td>%.3f</td>
                        <td>%.3f</td>
                        <td>%d</td>%s
                    </tr>
`,
			s.Date.Format("2006-01-02"), s.Total, s.Min, s.Max, s.Avg, s.Count, weatherCell)
	}

	fmt.Fprint(w, `                </tbody>
            </table>
        </div>
`)
}

func (r *HTMLReporter) writeHTMLFooter(w io.Writer) {
	fmt.Fprint(w, `
        <footer>
            <p>Readings come from the Eloverblik customer API and reflect what the grid operator has validated so far; recent days may still be revised.</p>
            <p>Generated by <a href="https://github.com/matthewgall/wattwise" style="color: var(--primary-color)">wattwise</a></p>
            <p style="margin-top: 15px; font-size: 0.85em;">This is an unofficial third-party application. Eloverblik is operated by Energinet DataHub A/S. This application is not affiliated with, endorsed by, or connected to Energinet.</p>
        </footer>
    </div>
</body>
</html>
`)
}
