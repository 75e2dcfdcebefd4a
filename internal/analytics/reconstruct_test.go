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

func hourlyResult(start time.Time, quantities ...float64) MeterResult {
	period := Period{Start: start, Resolution: time.Hour}
	for i, q := range quantities {
		period.Points = append(period.Points, IntervalPoint{Position: i + 1, Quantity: q, Quality: "A04"})
	}
	return MeterResult{
		MeteringPointID: "571313180400012345",
		Success:         true,
		ErrorCode:       ErrorCodeOK,
		Periods:         []Period{period},
	}
}

func TestReconstructReadingsPositionsBecomeTimestamps(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	results := []MeterResult{hourlyResult(start, 1.5, 2.0, 1.8)}

	readings := ReconstructReadings(results, ReconstructOptions{})
	require.Len(t, readings, 3)

	require.Equal(t, start, readings[0].Timestamp)
	require.Equal(t, start.Add(time.Hour), readings[1].Timestamp)
	require.Equal(t, start.Add(2*time.Hour), readings[2].Timestamp)

	require.InDelta(t, 1.5, readings[0].Consumption, 1e-12)
	require.InDelta(t, 2.0, readings[1].Consumption, 1e-12)
	require.InDelta(t, 1.8, readings[2].Consumption, 1e-12)
	require.Equal(t, "A04", readings[0].Quality)
}

func TestReconstructReadingsQuarterHourResolution(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	results := []MeterResult{{
		Success:   true,
		ErrorCode: ErrorCodeOK,
		Periods: []Period{{
			Start:      start,
			Resolution: 15 * time.Minute,
			Points:     []IntervalPoint{{Position: 5, Quantity: 0.4}},
		}},
	}}

	readings := ReconstructReadings(results, ReconstructOptions{})
	require.Len(t, readings, 1)
	require.Equal(t, start.Add(time.Hour), readings[0].Timestamp)
}

func TestReconstructReadingsFailedResultYieldsNothing(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		result MeterResult
	}{
		{name: "success false", result: MeterResult{Success: false, ErrorCode: ErrorCodeOK, Periods: []Period{{Start: start, Points: []IntervalPoint{{Position: 1, Quantity: 1}}}}}},
		{name: "error code set", result: MeterResult{Success: true, ErrorCode: 20005, Periods: []Period{{Start: start, Points: []IntervalPoint{{Position: 1, Quantity: 1}}}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			readings := ReconstructReadings([]MeterResult{tc.result}, ReconstructOptions{})
			require.Empty(t, readings)
		})
	}
}

func TestReconstructReadingsSkipsFailedBatchKeepsGood(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	failed := MeterResult{Success: false, Periods: []Period{{Start: start, Points: []IntervalPoint{{Position: 1, Quantity: 99}}}}}
	good := hourlyResult(start, 1.0, 2.0)

	readings := ReconstructReadings([]MeterResult{failed, good}, ReconstructOptions{})
	require.Len(t, readings, 2)
	require.InDelta(t, 1.0, readings[0].Consumption, 1e-12)
}

func TestReconstructReadingsZeroResolutionUsesDefault(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	results := []MeterResult{{
		Success:   true,
		ErrorCode: ErrorCodeOK,
		Periods: []Period{{
			Start:  start,
			Points: []IntervalPoint{{Position: 3, Quantity: 1}},
		}},
	}}

	readings := ReconstructReadings(results, ReconstructOptions{})
	require.Len(t, readings, 1)
	require.Equal(t, start.Add(2*time.Hour), readings[0].Timestamp)

	readings = ReconstructReadings(results, ReconstructOptions{DefaultResolution: 15 * time.Minute})
	require.Equal(t, start.Add(30*time.Minute), readings[0].Timestamp)
}

func TestReconstructReadingsDropsBadPositions(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	results := []MeterResult{{
		Success:   true,
		ErrorCode: ErrorCodeOK,
		Periods: []Period{{
			Start:      start,
			Resolution: time.Hour,
			Points: []IntervalPoint{
				{Position: 0, Quantity: 9},
				{Position: -2, Quantity: 9},
				{Position: 1, Quantity: 0.5},
			},
		}},
	}}

	readings := ReconstructReadings(results, ReconstructOptions{})
	require.Len(t, readings, 1)
	require.Equal(t, start, readings[0].Timestamp)
}

func TestReconstructReadingsSortsAcrossPeriods(t *testing.T) {
	day2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	day1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Later period listed first; output still comes back ordered.
	results := []MeterResult{hourlyResult(day2, 2.5), hourlyResult(day1, 1.5)}

	readings := ReconstructReadings(results, ReconstructOptions{})
	require.Len(t, readings, 2)
	require.Equal(t, day1, readings[0].Timestamp)
	require.Equal(t, day2, readings[1].Timestamp)
}

func TestReconstructReadingsStableForDuplicateTimestamps(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	results := []MeterResult{hourlyResult(start, 1.0), hourlyResult(start, 2.0)}

	readings := ReconstructReadings(results, ReconstructOptions{})
	require.Len(t, readings, 2)
	require.InDelta(t, 1.0, readings[0].Consumption, 1e-12)
	require.InDelta(t, 2.0, readings[1].Consumption, 1e-12)
}

func TestReconstructReadingsDSTShortDayStaysOnOneDate(t *testing.T) {
	copenhagen, err := time.LoadLocation("Europe/Copenhagen")
	require.NoError(t, err)

	// 2025-03-30 is the spring-forward day in Denmark: 23 local hours.
	// The period starts at local midnight (23:00 UTC the night before).
	start := time.Date(2025, 3, 29, 23, 0, 0, 0, time.UTC)
	quantities := make([]float64, 23)
	for i := range quantities {
		quantities[i] = 1
	}

	readings := ReconstructReadings([]MeterResult{hourlyResult(start, quantities...)}, ReconstructOptions{})
	require.Len(t, readings, 23)

	for _, r := range readings {
		require.Equal(t, "2025-03-30", r.Timestamp.In(copenhagen).Format("2006-01-02"))
	}
}
