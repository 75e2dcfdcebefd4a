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

// Package analytics turns interval meter readings into daily statistics,
// calendar-aligned period comparisons and temperature correlation. It is
// pure computation: no I/O, no logging, no clocks.
package analytics

import "time"

// ErrorCodeOK is the DataHub result code that marks a metering point
// response as usable. Anything else means the provider could not serve
// data for that point.
const ErrorCodeOK = 10000

// MaxRangeDays is the widest query window the analytics pipeline is
// sized for (two years of quarter-hour readings is ~70k points, which
// is fine to materialize in memory). Callers validate ranges against
// this before fetching; the functions here do not re-check it.
const MaxRangeDays = 730

// IntervalPoint is a single metered interval inside a period. Position
// is 1-based: position 1 starts at the period start, position 2 one
// resolution later, and so on. Quality carries the provider's CIM
// quality code (A01..A05) untouched.
type IntervalPoint struct {
	Position int     `json:"position"`
	Quantity float64 `json:"quantity"`
	Quality  string  `json:"quality"`
}

// Period is a run of consecutive interval points sharing one start time
// and resolution. A zero Resolution means the provider did not say and
// the reconstructor should assume its default.
type Period struct {
	Start      time.Time       `json:"start"`
	Resolution time.Duration   `json:"resolution"`
	Points     []IntervalPoint `json:"points"`
}

// MeterResult mirrors one result element of a provider time-series
// response: the success envelope plus the periods it carried.
type MeterResult struct {
	MeteringPointID string   `json:"metering_point_id"`
	Success         bool     `json:"success"`
	ErrorCode       int      `json:"error_code"`
	Periods         []Period `json:"periods"`
}

// OK reports whether the result carries usable data.
func (r MeterResult) OK() bool {
	return r.Success && r.ErrorCode == ErrorCodeOK
}

// Reading is one interval consumption value pinned to an absolute
// timestamp (the start of its interval).
type Reading struct {
	Timestamp   time.Time `json:"timestamp"`
	Consumption float64   `json:"consumption"`
	Quality     string    `json:"quality,omitempty"`
}

// MeterRow is the flat row shape the reading store hands back:
// a date and the consumption recorded for it. Rows feed the same
// aggregation pipeline as reconstructed readings.
type MeterRow struct {
	ReadingDate  time.Time `json:"reading_date"`
	MeterReading float64   `json:"meter_reading"`
}

// DailySummary is the statistical rollup for one calendar day.
// AllZeros distinguishes a day of genuine zero consumption from a day
// with no readings at all: absent days never produce a summary.
type DailySummary struct {
	Date     time.Time `json:"date"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Avg      float64   `json:"avg"`
	Total    float64   `json:"total"`
	Range    float64   `json:"range"`
	Count    int       `json:"count"`
	AllZeros bool      `json:"all_zeros"`
	HasData  bool      `json:"has_data"`
}

// DailyValue is a generic per-day observation (a temperature, a price)
// joined against consumption by calendar date.
type DailyValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// dateKey is the grouping and join key for calendar dates.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// midnight truncates t to the start of its calendar day in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
