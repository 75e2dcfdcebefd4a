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

func readingAt(ts time.Time, consumption float64) Reading {
	return Reading{Timestamp: ts, Consumption: consumption}
}

func TestAggregateDailyTwoDays(t *testing.T) {
	day1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	readings := []Reading{
		readingAt(day1, 1.5),
		readingAt(day1.Add(time.Hour), 2.0),
		readingAt(day1.Add(2*time.Hour), 1.8),
		readingAt(day2, 2.5),
		readingAt(day2.Add(time.Hour), 3.0),
	}

	summaries := AggregateDaily(readings, AggregateOptions{})
	require.Len(t, summaries, 2)

	first := summaries[0]
	require.Equal(t, day1, first.Date)
	require.InDelta(t, 1.5, first.Min, 1e-12)
	require.InDelta(t, 2.0, first.Max, 1e-12)
	require.InDelta(t, 1.7666666666666666, first.Avg, 1e-9)
	require.InDelta(t, 5.3, first.Total, 1e-9)
	require.InDelta(t, 0.5, first.Range, 1e-12)
	require.Equal(t, 3, first.Count)
	require.False(t, first.AllZeros)
	require.True(t, first.HasData)

	second := summaries[1]
	require.Equal(t, day2, second.Date)
	require.InDelta(t, 2.5, second.Min, 1e-12)
	require.InDelta(t, 3.0, second.Max, 1e-12)
	require.InDelta(t, 2.75, second.Avg, 1e-12)
	require.InDelta(t, 5.5, second.Total, 1e-12)
	require.Equal(t, 2, second.Count)
}

func TestAggregateDailyInvariants(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	values := []float64{0.2, 1.7, 0.9, 3.3, 0.0, 2.1, 1.1, 0.6}

	readings := make([]Reading, 0, len(values))
	for i, v := range values {
		readings = append(readings, readingAt(start.Add(time.Duration(i)*time.Hour), v))
	}

	summaries := AggregateDaily(readings, AggregateOptions{})
	require.Len(t, summaries, 1)

	s := summaries[0]
	require.LessOrEqual(t, s.Min, s.Avg)
	require.LessOrEqual(t, s.Avg, s.Max)
	require.InDelta(t, s.Total, s.Avg*float64(s.Count), 1e-9)
	require.InDelta(t, s.Max-s.Min, s.Range, 1e-12)
}

func TestAggregateDailySingleReading(t *testing.T) {
	ts := time.Date(2025, 2, 10, 13, 0, 0, 0, time.UTC)

	summaries := AggregateDaily([]Reading{readingAt(ts, 4.2)}, AggregateOptions{})
	require.Len(t, summaries, 1)

	s := summaries[0]
	require.Equal(t, 1, s.Count)
	require.InDelta(t, 4.2, s.Min, 1e-12)
	require.InDelta(t, 4.2, s.Max, 1e-12)
	require.InDelta(t, 4.2, s.Avg, 1e-12)
	require.InDelta(t, 4.2, s.Total, 1e-12)
	require.InDelta(t, 0, s.Range, 1e-12)
}

func TestAggregateDailyAbsentDaysProduceNoSummary(t *testing.T) {
	day1 := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	day3 := time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC)

	summaries := AggregateDaily([]Reading{readingAt(day1, 1), readingAt(day3, 1)}, AggregateOptions{})
	require.Len(t, summaries, 2)
	require.Equal(t, "2025-01-01", summaries[0].Date.Format("2006-01-02"))
	require.Equal(t, "2025-01-03", summaries[1].Date.Format("2006-01-02"))
}

func TestAggregateDailyAllZeroDay(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	readings := []Reading{readingAt(day, 0), readingAt(day.Add(time.Hour), 0), readingAt(day.Add(2*time.Hour), 0)}

	summaries := AggregateDaily(readings, AggregateOptions{})
	require.Len(t, summaries, 1)
	require.True(t, summaries[0].AllZeros)
	require.False(t, summaries[0].HasData)
	require.Equal(t, 3, summaries[0].Count)
	require.InDelta(t, 0, summaries[0].Total, 1e-12)
}

func TestAggregateDailyZeroAmongRealReadings(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	readings := []Reading{readingAt(day, 0), readingAt(day.Add(time.Hour), 2.0)}

	summaries := AggregateDaily(readings, AggregateOptions{})
	require.Len(t, summaries, 1)
	require.False(t, summaries[0].AllZeros)
	require.True(t, summaries[0].HasData)
	require.InDelta(t, 0, summaries[0].Min, 1e-12)
}

func TestAggregateDailyExcludeZeros(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	readings := []Reading{
		readingAt(day, 0),
		readingAt(day.Add(time.Hour), 2.0),
		readingAt(day.Add(24*time.Hour), 0), // next day, zeros only
	}

	summaries := AggregateDaily(readings, AggregateOptions{ExcludeZeros: true})
	require.Len(t, summaries, 1)
	require.Equal(t, 1, summaries[0].Count)
	require.InDelta(t, 2.0, summaries[0].Min, 1e-12)
}

func TestAggregateDailyGroupsByConfiguredLocation(t *testing.T) {
	cet := time.FixedZone("CET", 3600)

	// 23:30 UTC on Jan 1 is 00:30 local on Jan 2.
	late := time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC)

	summaries := AggregateDaily([]Reading{readingAt(late, 1)}, AggregateOptions{Location: cet})
	require.Len(t, summaries, 1)
	require.Equal(t, "2025-01-02", summaries[0].Date.Format("2006-01-02"))

	summaries = AggregateDaily([]Reading{readingAt(late, 1)}, AggregateOptions{})
	require.Equal(t, "2025-01-01", summaries[0].Date.Format("2006-01-02"))
}

func TestAggregateDailyIdempotentAndNonMutating(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Deliberately unsorted input.
	readings := []Reading{
		readingAt(day.Add(5*time.Hour), 1.2),
		readingAt(day, 0.7),
		readingAt(day.Add(2*time.Hour), 3.1),
	}
	snapshot := make([]Reading, len(readings))
	copy(snapshot, readings)

	first := AggregateDaily(readings, AggregateOptions{})
	second := AggregateDaily(readings, AggregateOptions{})

	require.Equal(t, first, second)
	require.Equal(t, snapshot, readings)
}

func TestAggregateDailyEmptyInput(t *testing.T) {
	require.Empty(t, AggregateDaily(nil, AggregateOptions{}))
}

func TestSummariesFromRows(t *testing.T) {
	rows := []MeterRow{
		{ReadingDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), MeterReading: 12.5},
		{ReadingDate: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), MeterReading: 10.0},
		{ReadingDate: time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC), MeterReading: 4.0},
	}

	summaries := SummariesFromRows(rows, AggregateOptions{})
	require.Len(t, summaries, 2)

	require.InDelta(t, 12.5, summaries[0].Total, 1e-12)
	require.Equal(t, 1, summaries[0].Count)

	// Two rows on the same date aggregate together.
	require.InDelta(t, 14.0, summaries[1].Total, 1e-12)
	require.Equal(t, 2, summaries[1].Count)
	require.InDelta(t, 7.0, summaries[1].Avg, 1e-12)
}
