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

package database

import (
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/logging"
)

const testMeteringPoint = "571313180400012345"

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "wattwise.db"), logging.NewLogger(false))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func hourlyReadings(start time.Time, quantities ...float64) []analytics.Reading {
	readings := make([]analytics.Reading, 0, len(quantities))
	for i, q := range quantities {
		readings = append(readings, analytics.Reading{
			Timestamp:   start.Add(time.Duration(i) * time.Hour),
			Consumption: q,
			Quality:     "A04",
		})
	}
	return readings
}

func TestStoreInsertAndReadBack(t *testing.T) {
	store := newTestStore(t)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	inserted, err := store.InsertReadings(testMeteringPoint, hourlyReadings(start, 1.5, 2.0, 1.8), time.UTC)
	require.NoError(t, err)
	require.Equal(t, 3, inserted)

	readings, err := store.ReadingsForRange(testMeteringPoint, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, readings, 3)

	require.Equal(t, start, readings[0].Timestamp.UTC())
	require.InDelta(t, 1.5, readings[0].Consumption, 1e-12)
	require.Equal(t, "A04", readings[0].Quality)
	require.Equal(t, start.Add(2*time.Hour), readings[2].Timestamp.UTC())
}

func TestStoreIgnoresDuplicates(t *testing.T) {
	store := newTestStore(t)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	readings := hourlyReadings(start, 1.5, 2.0)

	inserted, err := store.InsertReadings(testMeteringPoint, readings, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	inserted, err = store.InsertReadings(testMeteringPoint, readings, time.UTC)
	require.NoError(t, err)
	require.Zero(t, inserted)

	stored, err := store.ReadingsForRange(testMeteringPoint, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stored, 2)
}

func TestStoreRangeBounds(t *testing.T) {
	store := newTestStore(t)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := store.InsertReadings(testMeteringPoint, hourlyReadings(start, 1, 2, 3, 4), time.UTC)
	require.NoError(t, err)

	// from inclusive, to exclusive
	readings, err := store.ReadingsForRange(testMeteringPoint, start.Add(time.Hour), start.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, readings, 2)
	require.InDelta(t, 2.0, readings[0].Consumption, 1e-12)
	require.InDelta(t, 3.0, readings[1].Consumption, 1e-12)
}

func TestStoreSeparatesMeteringPoints(t *testing.T) {
	store := newTestStore(t)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := store.InsertReadings(testMeteringPoint, hourlyReadings(start, 1.5), time.UTC)
	require.NoError(t, err)
	_, err = store.InsertReadings("571313180400099999", hourlyReadings(start, 9.9), time.UTC)
	require.NoError(t, err)

	readings, err := store.ReadingsForRange(testMeteringPoint, start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	require.InDelta(t, 1.5, readings[0].Consumption, 1e-12)
}

func TestStoreRowsByDateGroupsInLocalTime(t *testing.T) {
	store := newTestStore(t)

	copenhagen, err := time.LoadLocation("Europe/Copenhagen")
	require.NoError(t, err)

	// 23:30 and 00:30 local on either side of midnight, stored as UTC.
	readings := []analytics.Reading{
		{Timestamp: time.Date(2025, 1, 1, 22, 30, 0, 0, time.UTC), Consumption: 1.0},
		{Timestamp: time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC), Consumption: 2.0},
		{Timestamp: time.Date(2025, 1, 2, 0, 30, 0, 0, time.UTC), Consumption: 4.0},
	}
	_, err = store.InsertReadings(testMeteringPoint, readings, copenhagen)
	require.NoError(t, err)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, copenhagen)
	to := time.Date(2025, 1, 2, 0, 0, 0, 0, copenhagen)

	rows, err := store.RowsByDate(testMeteringPoint, from, to, copenhagen)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, copenhagen), rows[0].ReadingDate)
	require.InDelta(t, 1.0, rows[0].MeterReading, 1e-12)
	require.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, copenhagen), rows[1].ReadingDate)
	require.InDelta(t, 6.0, rows[1].MeterReading, 1e-12)
}

func TestStoreFetchAudit(t *testing.T) {
	store := newTestStore(t)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordFetch(testMeteringPoint, from, to, "Hour", 744))
	require.NoError(t, store.RecordFetch(testMeteringPoint, to, to.AddDate(0, 1, 0), "Hour", 672))

	records, err := store.ListFetches(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first
	require.Equal(t, 672, records[0].Readings)
	require.Equal(t, 744, records[1].Readings)
	require.Equal(t, testMeteringPoint, records[1].MeteringPoint)
	require.Equal(t, from, records[1].From)
	require.Equal(t, to, records[1].To)
	require.Equal(t, "Hour", records[1].Aggregation)
	require.WithinDuration(t, time.Now(), records[0].FetchedAt, time.Minute)

	limited, err := store.ListFetches(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestStoreStats(t *testing.T) {
	store := newTestStore(t)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := store.InsertReadings(testMeteringPoint, hourlyReadings(start, 1, 2, 3), time.UTC)
	require.NoError(t, err)

	stats, err := store.Stats()
	require.NoError(t, err)
	require.Len(t, stats, 1)

	require.Equal(t, testMeteringPoint, stats[0].MeteringPoint)
	require.Equal(t, 3, stats[0].Readings)
	require.Equal(t, start, stats[0].FirstTS.UTC())
	require.Equal(t, start.Add(2*time.Hour), stats[0].LatestTS.UTC())
}
