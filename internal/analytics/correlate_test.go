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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func correlationFixtures(totals, temps []float64) ([]DailySummary, []DailyValue) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	summaries := make([]DailySummary, len(totals))
	for i, v := range totals {
		summaries[i] = DailySummary{Date: start.AddDate(0, 0, i), Total: v, Count: 24, HasData: true}
	}

	values := make([]DailyValue, len(temps))
	for i, v := range temps {
		values[i] = DailyValue{Date: start.AddDate(0, 0, i), Value: v}
	}

	return summaries, values
}

func TestCorrelatePerfectPositive(t *testing.T) {
	summaries, temps := correlationFixtures(
		[]float64{1, 2, 3, 4, 5},
		[]float64{10, 12, 14, 16, 18},
	)

	result := Correlate(summaries, temps)
	require.NotNil(t, result.Coefficient)
	require.InDelta(t, 1.0, *result.Coefficient, 1e-9)
	require.Equal(t, StrengthStrong, result.Strength)
	require.Equal(t, 5, result.SampleSize)
	require.Contains(t, result.Description, "warmer")
}

func TestCorrelatePerfectNegative(t *testing.T) {
	summaries, temps := correlationFixtures(
		[]float64{5, 4, 3, 2, 1},
		[]float64{10, 12, 14, 16, 18},
	)

	result := Correlate(summaries, temps)
	require.NotNil(t, result.Coefficient)
	require.InDelta(t, -1.0, *result.Coefficient, 1e-9)
	require.Equal(t, StrengthStrong, result.Strength)
	require.Contains(t, result.Description, "colder")
}

func TestCorrelateDegenerateInputs(t *testing.T) {
	cases := []struct {
		name   string
		totals []float64
		temps  []float64
	}{
		{name: "empty", totals: nil, temps: nil},
		{name: "single pair", totals: []float64{3}, temps: []float64{12}},
		{name: "constant consumption", totals: []float64{2, 2, 2, 2}, temps: []float64{5, 9, 13, 17}},
		{name: "constant temperature", totals: []float64{1, 4, 2, 8}, temps: []float64{11, 11, 11, 11}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summaries, temps := correlationFixtures(tc.totals, tc.temps)
			result := Correlate(summaries, temps)

			require.Nil(t, result.Coefficient)
			require.Equal(t, StrengthNone, result.Strength)
			require.NotEmpty(t, result.Description)
		})
	}
}

func TestCorrelateJoinsOnDateOnly(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	summaries := []DailySummary{
		{Date: start, Total: 1},
		{Date: start.AddDate(0, 0, 1), Total: 2},
		{Date: start.AddDate(0, 0, 2), Total: 3},
	}
	// Observations cover only the last two consumption days plus one
	// day with no consumption at all.
	temps := []DailyValue{
		{Date: start.AddDate(0, 0, 1), Value: 4},
		{Date: start.AddDate(0, 0, 2), Value: 8},
		{Date: start.AddDate(0, 0, 9), Value: 6},
	}

	result := Correlate(summaries, temps)
	require.Equal(t, 2, result.SampleSize)
	require.NotNil(t, result.Coefficient)
}

func TestCorrelateSampleSizeReportedWhenDegenerate(t *testing.T) {
	summaries, temps := correlationFixtures([]float64{7}, []float64{3})

	result := Correlate(summaries, temps)
	require.Equal(t, 1, result.SampleSize)
	require.Nil(t, result.Coefficient)
}

func TestStrengthBuckets(t *testing.T) {
	cases := []struct {
		r    float64
		want CorrelationStrength
	}{
		{r: 0, want: StrengthWeak},
		{r: 0.3, want: StrengthWeak},
		{r: -0.3, want: StrengthWeak},
		{r: 0.31, want: StrengthModerate},
		{r: -0.5, want: StrengthModerate},
		{r: 0.7, want: StrengthModerate},
		{r: 0.71, want: StrengthStrong},
		{r: -0.95, want: StrengthStrong},
		{r: 1, want: StrengthStrong},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, strengthOf(tc.r), "r=%v", tc.r)
	}
}

func TestDescriptionCarriesCoefficient(t *testing.T) {
	summaries, temps := correlationFixtures(
		[]float64{1, 2, 3, 4, 5},
		[]float64{10, 12, 14, 16, 18},
	)

	result := Correlate(summaries, temps)
	require.Contains(t, result.Description, "r=1.00")
	require.Contains(t, result.Description, "5 days")
}
