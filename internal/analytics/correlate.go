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
	"fmt"
	"math"
)

// CorrelationStrength buckets the absolute Pearson coefficient.
type CorrelationStrength string

const (
	StrengthNone     CorrelationStrength = "none"
	StrengthWeak     CorrelationStrength = "weak"
	StrengthModerate CorrelationStrength = "moderate"
	StrengthStrong   CorrelationStrength = "strong"
)

// CorrelationResult is the outcome of correlating daily consumption
// with a per-day observation series. Coefficient is nil when the input
// cannot support one; Description is always populated.
type CorrelationResult struct {
	Coefficient *float64            `json:"coefficient"`
	Strength    CorrelationStrength `json:"strength"`
	SampleSize  int                 `json:"sample_size"`
	Description string              `json:"description"`
}

// Correlate computes the Pearson correlation between daily consumption
// totals and a per-day observation series (typically mean outdoor
// temperature), joined on calendar date. Days present on only one side
// are dropped before computing anything.
//
// Fewer than two joined days, or a constant series on either side,
// cannot support a coefficient. The result then carries a nil
// coefficient and StrengthNone; NaN never escapes.
func Correlate(consumption []DailySummary, observations []DailyValue) CorrelationResult {
	obsByDate := make(map[string]float64, len(observations))
	for _, o := range observations {
		obsByDate[dateKey(o.Date)] = o.Value
	}

	var xs, ys []float64
	for _, day := range consumption {
		if v, found := obsByDate[dateKey(day.Date)]; found {
			xs = append(xs, day.Total)
			ys = append(ys, v)
		}
	}

	result := CorrelationResult{SampleSize: len(xs), Strength: StrengthNone}

	if len(xs) < 2 {
		result.Description = describeCorrelation(nil, len(xs))
		return result
	}

	r, ok := pearson(xs, ys)
	if !ok {
		result.Description = describeCorrelation(nil, len(xs))
		return result
	}

	result.Coefficient = &r
	result.Strength = strengthOf(r)
	result.Description = describeCorrelation(&r, len(xs))

	return result
}

// pearson computes the correlation coefficient, reporting false when
// either series has zero variance (the formula would divide by zero).
func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
		sumYY += ys[i] * ys[i]
	}

	varX := n*sumXX - sumX*sumX
	varY := n*sumYY - sumY*sumY
	if varX <= 0 || varY <= 0 {
		return 0, false
	}

	r := (n*sumXY - sumX*sumY) / math.Sqrt(varX*varY)

	// Rounding can push |r| a hair past 1; clamp it back.
	return math.Max(-1, math.Min(1, r)), true
}

// strengthOf buckets |r|. Boundary values land in the weaker bucket.
func strengthOf(r float64) CorrelationStrength {
	abs := math.Abs(r)
	switch {
	case abs <= 0.3:
		return StrengthWeak
	case abs <= 0.7:
		return StrengthModerate
	default:
		return StrengthStrong
	}
}

// strengthLabel is the display form of a strength bucket.
func strengthLabel(s CorrelationStrength) string {
	switch s {
	case StrengthWeak:
		return "Weak"
	case StrengthModerate:
		return "Moderate"
	case StrengthStrong:
		return "Strong"
	default:
		return "None"
	}
}

// describeCorrelation renders the human-readable verdict.
func describeCorrelation(r *float64, sampleSize int) string {
	if r == nil {
		return "No measurable correlation: need at least two overlapping days with varying values"
	}

	direction := "consumption rises on warmer days"
	if *r < 0 {
		direction = "consumption rises on colder days"
	}

	return fmt.Sprintf("%s correlation (r=%.2f over %d days): %s",
		strengthLabel(strengthOf(*r)), *r, sampleSize, direction)
}
