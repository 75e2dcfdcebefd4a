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

// Package weather fetches historical daily temperatures from the
// Open-Meteo archive API for correlation against consumption.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/logging"
	"github.com/matthewgall/wattwise/internal/version"
)

// ArchiveAPIBase is the Open-Meteo historical weather endpoint.
const ArchiveAPIBase = "https://archive-api.open-meteo.com/v1/archive"

// Day is one day of archived weather.
type Day struct {
	Date          time.Time `json:"date"`
	TempMean      float64   `json:"temp_mean"`
	TempMax       float64   `json:"temp_max"`
	TempMin       float64   `json:"temp_min"`
	Precipitation float64   `json:"precipitation"`
	WeatherCode   int       `json:"weather_code"`
	Description   string    `json:"description"`
}

// Client fetches historical weather data for a fixed location.
type Client struct {
	baseURL    string
	httpClient *http.Client
	latitude   float64
	longitude  float64
	timezone   string
	logger     *logging.Logger
}

// NewClient creates a weather client for the given coordinates. An
// empty baseURL selects the production archive API. The timezone
// determines how the archive buckets days, and should match the
// timezone used for consumption rollups.
func NewClient(baseURL string, latitude, longitude float64, timezone string, logger *logging.Logger) *Client {
	if baseURL == "" {
		baseURL = ArchiveAPIBase
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		latitude:   latitude,
		longitude:  longitude,
		timezone:   timezone,
		logger:     logger,
	}
}

type openMeteoResponse struct {
	Daily struct {
		Time          []string  `json:"time"`
		TempMax       []float64 `json:"temperature_2m_max"`
		TempMin       []float64 `json:"temperature_2m_min"`
		TempMean      []float64 `json:"temperature_2m_mean"`
		Precipitation []float64 `json:"precipitation_sum"`
		WeatherCode   []int     `json:"weather_code"`
	} `json:"daily"`
}

// FetchDailyTemperatures fetches daily weather for the date range,
// both ends inclusive. Unlike consumption data this comes back keyed
// by calendar date already, so no reconstruction is needed.
func (c *Client) FetchDailyTemperatures(ctx context.Context, from, to time.Time) ([]Day, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", c.latitude))
	params.Set("longitude", fmt.Sprintf("%.4f", c.longitude))
	params.Set("start_date", from.Format("2006-01-02"))
	params.Set("end_date", to.Format("2006-01-02"))
	params.Set("daily", "temperature_2m_max,temperature_2m_min,temperature_2m_mean,precipitation_sum,weather_code")
	params.Set("timezone", c.timezone)

	requestURL := c.baseURL + "?" + params.Encode()

	c.logger.Debug("Fetching weather data",
		"start", from.Format("2006-01-02"),
		"end", to.Format("2006-01-02"),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather request: %w", err)
	}

	req.Header.Set("User-Agent", version.GetUserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var weatherResp openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&weatherResp); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	daily := weatherResp.Daily
	days := make([]Day, 0, len(daily.Time))
	for i, dateStr := range daily.Time {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.logger.LogMalformedPoint("daily.time", dateStr)
			continue
		}

		day := Day{Date: date}
		if i < len(daily.TempMean) {
			day.TempMean = daily.TempMean[i]
		}
		if i < len(daily.TempMax) {
			day.TempMax = daily.TempMax[i]
		}
		if i < len(daily.TempMin) {
			day.TempMin = daily.TempMin[i]
		}
		if i < len(daily.Precipitation) {
			day.Precipitation = daily.Precipitation[i]
		}
		if i < len(daily.WeatherCode) {
			day.WeatherCode = daily.WeatherCode[i]
			day.Description = describeWeatherCode(daily.WeatherCode[i])
		}

		days = append(days, day)
	}

	c.logger.LogDataCollection("weather_days", len(days))
	return days, nil
}

// TemperatureSeries converts days into the per-day mean temperature
// series the correlation step consumes.
func TemperatureSeries(days []Day) []analytics.DailyValue {
	values := make([]analytics.DailyValue, 0, len(days))
	for _, day := range days {
		values = append(values, analytics.DailyValue{Date: day.Date, Value: day.TempMean})
	}
	return values
}

// describeWeatherCode converts a WMO weather code to a short label
func describeWeatherCode(code int) string {
	switch code {
	case 0:
		return "Clear sky"
	case 1, 2, 3:
		return "Partly cloudy"
	case 45, 48:
		return "Foggy"
	case 51, 53, 55:
		return "Drizzle"
	case 61, 63, 65:
		return "Rain"
	case 71, 73, 75:
		return "Snow"
	case 77:
		return "Snow grains"
	case 80, 81, 82:
		return "Rain showers"
	case 85, 86:
		return "Snow showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Thunderstorm with hail"
	default:
		return "Unknown"
	}
}
