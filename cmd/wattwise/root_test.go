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

package main

import (
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/config"
	"github.com/matthewgall/wattwise/internal/database"
	"github.com/matthewgall/wattwise/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	from, to, err := parseDateRange("2025-01-01", "2025-01-31", time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), to)
}

func TestParseDateRangeInLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Copenhagen")
	require.NoError(t, err)

	from, _, err := parseDateRange("2025-06-15", "2025-06-15", loc)
	require.NoError(t, err)
	require.Equal(t, loc, from.Location())
	require.Equal(t, 0, from.Hour())
}

func TestParseDateRangeRequiresBothFlags(t *testing.T) {
	_, _, err := parseDateRange("", "2025-01-31", time.UTC)
	require.ErrorContains(t, err, "required")

	_, _, err = parseDateRange("2025-01-01", "", time.UTC)
	require.ErrorContains(t, err, "required")
}

func TestParseDateRangeRejectsReversedDates(t *testing.T) {
	_, _, err := parseDateRange("2025-01-31", "2025-01-01", time.UTC)
	require.ErrorContains(t, err, "before")
}

func TestParseDateRangeRejectsMalformedDates(t *testing.T) {
	_, _, err := parseDateRange("31/01/2025", "2025-01-31", time.UTC)
	require.ErrorContains(t, err, "--from")
}

func TestParseDateRangeEnforcesMaximumWindow(t *testing.T) {
	// 2023-01-03 to 2025-01-01 is exactly 730 days inclusive.
	_, _, err := parseDateRange("2023-01-03", "2025-01-01", time.UTC)
	require.NoError(t, err)

	_, _, err = parseDateRange("2023-01-02", "2025-01-01", time.UTC)
	require.ErrorContains(t, err, "730")
}

func TestDaysBetween(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	require.Equal(t, 1, daysBetween(day(2025, 1, 1), day(2025, 1, 1)))
	require.Equal(t, 2, daysBetween(day(2025, 1, 1), day(2025, 1, 2)))
	require.Equal(t, 366, daysBetween(day(2024, 1, 1), day(2024, 12, 31)))
}

func newCommandTestStore(t *testing.T, meteringPoints ...string) *database.Store {
	t.Helper()

	store, err := database.New(filepath.Join(t.TempDir(), "test.db"), logging.NewLogger(false))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	for _, mp := range meteringPoints {
		_, err := store.InsertReadings(mp, []analytics.Reading{
			{Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), Consumption: 1.5},
		}, time.UTC)
		require.NoError(t, err)
	}
	return store
}

func TestResolveMeteringPointFlagWins(t *testing.T) {
	cfg := &config.Config{MeteringPoints: []string{"571313180400012345"}}

	mp, err := resolveMeteringPoint(cfg, nil, "571313180400099999")
	require.NoError(t, err)
	require.Equal(t, "571313180400099999", mp)
}

func TestResolveMeteringPointSingleConfigured(t *testing.T) {
	cfg := &config.Config{MeteringPoints: []string{"571313180400012345"}}

	mp, err := resolveMeteringPoint(cfg, nil, "")
	require.NoError(t, err)
	require.Equal(t, "571313180400012345", mp)
}

func TestResolveMeteringPointMultipleConfigured(t *testing.T) {
	cfg := &config.Config{MeteringPoints: []string{"571313180400012345", "571313180400067890"}}

	_, err := resolveMeteringPoint(cfg, nil, "")
	require.ErrorContains(t, err, "--meter")
}

func TestResolveMeteringPointSingleStored(t *testing.T) {
	store := newCommandTestStore(t, "571313180400012345")

	mp, err := resolveMeteringPoint(&config.Config{}, store, "")
	require.NoError(t, err)
	require.Equal(t, "571313180400012345", mp)
}

func TestResolveMeteringPointNothingStored(t *testing.T) {
	store := newCommandTestStore(t)

	_, err := resolveMeteringPoint(&config.Config{}, store, "")
	require.ErrorContains(t, err, "fetch")
}

func TestResolveMeteringPointMultipleStored(t *testing.T) {
	store := newCommandTestStore(t, "571313180400012345", "571313180400067890")

	_, err := resolveMeteringPoint(&config.Config{}, store, "")
	require.ErrorContains(t, err, "--meter")
}
