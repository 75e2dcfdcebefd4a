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

package eloverblik

import (
	"strconv"
	"time"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/logging"
)

// parseResolution maps a CIM resolution code onto an interval length.
// Only the three codes the DataHub actually serves are accepted; an
// unknown code is reported instead of guessed at, because a wrong
// interval length would silently shift every reconstructed timestamp.
func parseResolution(code string) (time.Duration, error) {
	switch code {
	case ResolutionQuarterHour:
		return 15 * time.Minute, nil
	case ResolutionHour:
		return time.Hour, nil
	case ResolutionDay:
		return 24 * time.Hour, nil
	default:
		return 0, &analytics.DataError{
			DataType: "resolution",
			Message:  "unrecognized resolution code " + strconv.Quote(code),
		}
	}
}

// translateResults converts the wire envelope into the neutral result
// shape the analytics core consumes.
//
// Failed results are carried through untouched (success flag and error
// code intact) so callers can log them; the reconstructor already
// treats them as empty. A point with an unparseable quantity keeps its
// slot with quantity zero, and one with an unparseable position is
// dropped: a single bad point must not throw away its siblings.
func translateResults(results []timeSeriesResult, log *logging.Logger) ([]analytics.MeterResult, error) {
	translated := make([]analytics.MeterResult, 0, len(results))

	for _, result := range results {
		mr := analytics.MeterResult{
			MeteringPointID: result.ID,
			Success:         result.Success,
			ErrorCode:       result.ErrorCode,
		}

		if !mr.OK() {
			translated = append(translated, mr)
			continue
		}

		for _, series := range result.Document.TimeSeries {
			for _, period := range series.Periods {
				resolution, err := parseResolution(period.Resolution)
				if err != nil {
					return nil, err
				}

				start, err := time.Parse(time.RFC3339, period.Interval.Start)
				if err != nil {
					log.LogMalformedPoint("timeInterval.start", period.Interval.Start)
					continue
				}

				p := analytics.Period{
					Start:      start,
					Resolution: resolution,
					Points:     make([]analytics.IntervalPoint, 0, len(period.Points)),
				}

				for _, point := range period.Points {
					position, err := strconv.Atoi(point.Position)
					if err != nil {
						log.LogMalformedPoint("position", point.Position)
						continue
					}

					quantity, err := strconv.ParseFloat(point.Quantity, 64)
					if err != nil {
						log.LogMalformedPoint("out_Quantity.quantity", point.Quantity)
						quantity = 0
					}

					p.Points = append(p.Points, analytics.IntervalPoint{
						Position: position,
						Quantity: quantity,
						Quality:  point.Quality,
					})
				}

				mr.Periods = append(mr.Periods, p)
			}
		}

		translated = append(translated, mr)
	}

	return translated, nil
}
