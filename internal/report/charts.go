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
	"encoding/base64"
	"fmt"

	charts "github.com/vicanso/go-charts/v2"

	"github.com/matthewgall/wattwise/internal/analytics"
)

// ChartGenerator renders line charts as base64 PNGs for embedding.
type ChartGenerator struct {
	theme string
}

// NewChartGenerator creates a new chart generator
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{
		theme: "dark", // Match the HTML report dark theme
	}
}

// ChartSet holds the rendered charts for one report.
type ChartSet struct {
	DailyConsumption string
	Comparison       string
	Temperature      string
}

// Generate renders every chart the report has data for. Missing data
// skips a chart rather than failing the report.
func (cg *ChartGenerator) Generate(report *Report) ChartSet {
	var set ChartSet

	if chart, err := cg.DailyConsumptionChart(report.Summaries); err == nil {
		set.DailyConsumption = chart
	}
	if report.Comparison != nil {
		if chart, err := cg.ComparisonChart(report.Comparison); err == nil {
			set.Comparison = chart
		}
	}
	if len(report.Weather) > 0 {
		if chart, err := cg.TemperatureChart(report); err == nil {
			set.Temperature = chart
		}
	}

	return set
}

// DailyConsumptionChart creates a line chart of daily totals.
func (cg *ChartGenerator) DailyConsumptionChart(summaries []analytics.DailySummary) (string, error) {
	if len(summaries) == 0 {
		return "", fmt.Errorf("no consumption data available")
	}

	var totals []float64
	var labels []string
	for _, s := range summaries {
		labels = append(labels, s.Date.Format("Jan 2"))
		totals = append(totals, s.Total)
	}

	return cg.renderLines(
		"Daily Consumption",
		labels,
		[][]float64{totals},
		[]string{"Consumption (kWh)"},
	)
}

// ComparisonChart draws the current and previous period on one chart.
// Only days with a counterpart in the previous period are plotted.
func (cg *ChartGenerator) ComparisonChart(comparison *analytics.Comparison) (string, error) {
	var current []float64
	var previous []float64
	var labels []string

	for _, row := range comparison.Rows {
		if row.PreviousConsumption == nil {
			continue
		}
		labels = append(labels, row.Date.Format("Jan 2"))
		current = append(current, row.CurrentConsumption)
		previous = append(previous, *row.PreviousConsumption)
	}

	if len(labels) == 0 {
		return "", fmt.Errorf("no comparable days available")
	}

	return cg.renderLines(
		fmt.Sprintf("%s Comparison", modeLabel(comparison.Mode)),
		labels,
		[][]float64{current, previous},
		[]string{"Current (kWh)", fmt.Sprintf("Previous, %s (kWh)", previousLabel(comparison.Mode))},
	)
}

// TemperatureChart overlays daily consumption and mean temperature.
// Only days present in both series are plotted.
func (cg *ChartGenerator) TemperatureChart(report *Report) (string, error) {
	var consumption []float64
	var temperature []float64
	var labels []string

	for _, s := range report.Summaries {
		day := report.weatherFor(s.Date)
		if day == nil {
			continue
		}
		labels = append(labels, s.Date.Format("Jan 2"))
		consumption = append(consumption, s.Total)
		temperature = append(temperature, day.TempMean)
	}

	if len(labels) == 0 {
		return "", fmt.Errorf("no overlapping consumption and weather days")
	}

	return cg.renderLines(
		"Consumption vs Temperature",
		labels,
		[][]float64{consumption, temperature},
		[]string{"Consumption (kWh)", "Mean Temperature (°C)"},
	)
}

// renderLines renders a line chart and returns it base64 encoded for
// embedding in HTML.
func (cg *ChartGenerator) renderLines(title string, labels []string, values [][]float64, legendLabels []string) (string, error) {
	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(title),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc(legendLabels, charts.PositionRight),
		charts.ThemeOptionFunc(cg.theme),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to generate chart bytes: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}
