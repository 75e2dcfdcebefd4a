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
	"sort"
	"time"
)

// DefaultResolution is assumed for periods that do not state their own.
const DefaultResolution = time.Hour

// ReconstructOptions tunes interval reconstruction.
type ReconstructOptions struct {
	// DefaultResolution replaces a zero Period.Resolution. Zero here
	// falls back to the package default of one hour.
	DefaultResolution time.Duration
}

// ReconstructReadings converts provider result envelopes into a flat,
// time-ordered reading list. Each point lands at
// period start + (position-1) x resolution.
//
// A failed result (Success false or a non-OK error code) contributes
// nothing: the provider already said there is no data for that
// metering point, which is an empty answer rather than an error.
// Points with a position below 1 are dropped.
func ReconstructReadings(results []MeterResult, opts ReconstructOptions) []Reading {
	fallback := opts.DefaultResolution
	if fallback <= 0 {
		fallback = DefaultResolution
	}

	var readings []Reading
	for _, result := range results {
		if !result.OK() {
			continue
		}
		for _, period := range result.Periods {
			resolution := period.Resolution
			if resolution <= 0 {
				resolution = fallback
			}
			for _, point := range period.Points {
				if point.Position < 1 {
					continue
				}
				readings = append(readings, Reading{
					Timestamp:   period.Start.Add(time.Duration(point.Position-1) * resolution),
					Consumption: point.Quantity,
					Quality:     point.Quality,
				})
			}
		}
	}

	// Stable sort keeps input order for readings sharing a timestamp
	// (duplicate provider batches overlap).
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})

	return readings
}
