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

// Package eloverblik talks to the Eloverblik customer API (Energinet
// DataHub) and translates its CIM market documents into the neutral
// result shape the analytics core consumes.
package eloverblik

// tokenResponse is the GET /token reply: a short-lived data access
// token obtained with the long-lived refresh token.
type tokenResponse struct {
	Result string `json:"result"`
}

// MeteringPoint is one entry from the metering point listing. Only the
// fields the tool displays are mapped; the API returns many more.
type MeteringPoint struct {
	MeteringPointID   string `json:"meteringPointId"`
	TypeOfMP          string `json:"typeOfMP"`
	BalanceSupplier   string `json:"balanceSupplierName"`
	StreetName        string `json:"streetName"`
	BuildingNumber    string `json:"buildingNumber"`
	Postcode          string `json:"postcode"`
	CityName          string `json:"cityName"`
	ConsumerStartDate string `json:"consumerStartDate"`
}

type meteringPointsResponse struct {
	Result []MeteringPoint `json:"result"`
}

// meteringPointsRequest is the body of the time-series POST: a list of
// metering point IDs wrapped twice, as the API demands.
type meteringPointsRequest struct {
	MeteringPoints struct {
		MeteringPoint []string `json:"meteringPoint"`
	} `json:"meteringPoints"`
}

func newMeteringPointsRequest(ids []string) meteringPointsRequest {
	var req meteringPointsRequest
	req.MeteringPoints.MeteringPoint = ids
	return req
}

// timeSeriesEnvelope is the top-level gettimeseries reply: one result
// per requested metering point, each with its own success flag.
type timeSeriesEnvelope struct {
	Result []timeSeriesResult `json:"result"`
}

type timeSeriesResult struct {
	ID        string         `json:"id"`
	Success   bool           `json:"success"`
	ErrorCode int            `json:"errorCode"`
	ErrorText string         `json:"errorText"`
	Document  marketDocument `json:"MyEnergyData_MarketDocument"`
}

// marketDocument is the CIM MyEnergyData_MarketDocument wrapper. The
// dotted JSON keys are part of the CIM naming scheme, not a typo.
type marketDocument struct {
	MRID       string         `json:"mRID"`
	Created    string         `json:"createdDateTime"`
	TimeSeries []wireSeries   `json:"TimeSeries"`
	Interval   intervalBounds `json:"period.timeInterval"`
}

type wireSeries struct {
	MRID    string       `json:"mRID"`
	Unit    string       `json:"measurement_Unit.name"`
	Periods []wirePeriod `json:"Period"`
}

type wirePeriod struct {
	Resolution string         `json:"resolution"`
	Interval   intervalBounds `json:"timeInterval"`
	Points     []wirePoint    `json:"Point"`
}

type intervalBounds struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// wirePoint carries position and quantity as strings, exactly as the
// API serializes them.
type wirePoint struct {
	Position string `json:"position"`
	Quantity string `json:"out_Quantity.quantity"`
	Quality  string `json:"out_Quantity.quality"`
}
