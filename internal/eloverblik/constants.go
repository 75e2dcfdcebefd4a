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

import "time"

// APIBase is the Eloverblik customer API root.
const APIBase = "https://api.eloverblik.dk/customerapi/api"

// Cache lifetimes. The metering point listing changes rarely, so it
// keeps a fixed lifetime; time-series responses default to a working
// session and can be tuned with Client.SetCacheTTL.
const (
	meteringPointsCacheTTL = time.Hour
	defaultTimeSeriesTTL   = 6 * time.Hour
)

// Endpoints relative to the API root. The time-series path gets
// /{from}/{to}/{aggregation} appended.
const (
	tokenEndpoint          = "/token"
	meteringPointsEndpoint = "/meteringpoints/meteringpoints"
	timeSeriesEndpoint     = "/meterdata/gettimeseries"
)

// Aggregation levels the gettimeseries endpoint accepts. Quarter and
// Hour are what the analytics pipeline works from; the coarser levels
// exist for ad-hoc queries.
const (
	AggregationActual  = "Actual"
	AggregationQuarter = "Quarter"
	AggregationHour    = "Hour"
	AggregationDay     = "Day"
	AggregationMonth   = "Month"
)

// CIM resolution codes a period can carry. The DataHub serves exactly
// these three.
const (
	ResolutionQuarterHour = "PT15M"
	ResolutionHour        = "PT1H"
	ResolutionDay         = "P1D"
)

// CIM quality codes the DataHub attaches to each point.
const (
	QualityAdjusted     = "A01"
	QualityNotAvailable = "A02"
	QualityEstimated    = "A03"
	QualityAsProvided   = "A04"
	QualityIncomplete   = "A05"
)
