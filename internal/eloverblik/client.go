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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/logging"
	"github.com/matthewgall/wattwise/internal/version"
)

// Client handles communication with the Eloverblik customer API
type Client struct {
	baseURL      string
	refreshToken string
	httpClient   *http.Client
	cache        *Cache
	cacheTTL     time.Duration
	logger       *logging.Logger

	// Data access token management. Eloverblik issues 24-hour tokens
	// against the long-lived refresh token.
	dataToken   string
	tokenExpiry time.Time
	tokenMutex  sync.RWMutex

	// Rate limiting. The DataHub throttles aggressively, so requests
	// are spaced out client-side.
	lastRequest  time.Time
	requestMutex sync.Mutex
}

// NewClient creates a new Eloverblik API client. An empty baseURL
// selects the production API; cache may be nil to disable response
// caching.
func NewClient(baseURL, refreshToken string, cache *Cache, logger *logging.Logger) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = APIBase
	}

	return &Client{
		baseURL:      base,
		refreshToken: refreshToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:    cache,
		cacheTTL: defaultTimeSeriesTTL,
		logger:   logger,
	}
}

// SetCacheTTL overrides how long time-series responses stay cached.
// Non-positive values are ignored.
func (c *Client) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		c.cacheTTL = ttl
	}
}

// ensureDataToken makes sure a valid data access token is available
func (c *Client) ensureDataToken(ctx context.Context) (string, error) {
	c.tokenMutex.RLock()
	token := c.dataToken
	valid := token != "" && time.Now().Before(c.tokenExpiry)
	c.tokenMutex.RUnlock()

	if valid {
		return token, nil
	}

	return c.refreshDataToken(ctx)
}

// refreshDataToken exchanges the refresh token for a new data access token
func (c *Client) refreshDataToken(ctx context.Context) (string, error) {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if c.dataToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.dataToken, nil
	}

	c.logger.Debug("Refreshing data access token")

	var resp tokenResponse
	if err := c.doRequest(ctx, http.MethodGet, tokenEndpoint, c.refreshToken, nil, &resp); err != nil {
		return "", err
	}

	if resp.Result == "" {
		return "", &AuthError{Message: "empty data access token received from API"}
	}

	c.dataToken = resp.Result
	// Tokens last 24 hours; refresh an hour early.
	c.tokenExpiry = time.Now().Add(23 * time.Hour)

	c.logger.Debug("Data access token refreshed")
	return c.dataToken, nil
}

// ListMeteringPoints fetches the metering points visible to the account
func (c *Client) ListMeteringPoints(ctx context.Context) ([]MeteringPoint, error) {
	const cacheKey = "metering_points"

	if c.cache != nil {
		var points []MeteringPoint
		if hit, err := c.cache.Get(cacheKey, &points); err == nil && hit {
			return points, nil
		}
	}

	token, err := c.ensureDataToken(ctx)
	if err != nil {
		return nil, err
	}

	var resp meteringPointsResponse
	if err := c.doRequest(ctx, http.MethodGet, meteringPointsEndpoint, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list metering points: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(cacheKey, resp.Result, meteringPointsCacheTTL); err != nil {
			c.logger.Warn("Failed to cache metering points", "error", err)
		}
	}

	c.logger.LogDataCollection("metering_points", len(resp.Result))
	return resp.Result, nil
}

// GetTimeSeries fetches interval readings for the given metering
// points and date range, translated into the neutral result shape.
// The from date is inclusive and to exclusive, matching the API.
func (c *Client) GetTimeSeries(ctx context.Context, meteringPoints []string, from, to time.Time, aggregation string) ([]analytics.MeterResult, error) {
	if len(meteringPoints) == 0 {
		return nil, &analytics.DataError{DataType: "metering_points", Message: "no metering points requested"}
	}

	endpoint := fmt.Sprintf("%s/%s/%s/%s",
		timeSeriesEndpoint,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		aggregation,
	)

	cacheKey := fmt.Sprintf("timeseries_%s_%s_%s_%s",
		strings.Join(meteringPoints, "+"),
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		aggregation,
	)

	if c.cache != nil {
		var results []analytics.MeterResult
		if hit, err := c.cache.Get(cacheKey, &results); err == nil && hit {
			return results, nil
		}
	}

	token, err := c.ensureDataToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(newMeteringPointsRequest(meteringPoints))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal time series request: %w", err)
	}

	var envelope timeSeriesEnvelope
	if err := c.doRequest(ctx, http.MethodPost, endpoint, token, body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to fetch time series: %w", err)
	}

	results, err := translateResults(envelope.Result, c.logger)
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		if !result.OK() {
			c.logger.LogProviderFailure(result.MeteringPointID, result.ErrorCode)
		}
	}

	if c.cache != nil {
		if err := c.cache.Set(cacheKey, results, c.cacheTTL); err != nil {
			c.logger.Warn("Failed to cache time series", "error", err)
		}
	}

	return results, nil
}

// doRequest performs an authenticated API request, decoding the JSON
// response into target. Retryable statuses (429 and 5xx) are retried
// once before the error is returned.
func (c *Client) doRequest(ctx context.Context, method, endpoint, bearer string, body []byte, target interface{}) error {
	err := c.doRequestOnce(ctx, method, endpoint, bearer, body, target)
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*APIError); ok && apiErr.IsRetryable() {
		c.logger.Warn("Retrying request after retryable failure",
			"endpoint", endpoint,
			"status_code", apiErr.StatusCode,
		)
		return c.doRequestOnce(ctx, method, endpoint, bearer, body, target)
	}

	return err
}

func (c *Client) doRequestOnce(ctx context.Context, method, endpoint, bearer string, body []byte, target interface{}) error {
	// Rate limiting: minimum 250ms between requests
	c.requestMutex.Lock()
	if elapsed := time.Since(c.lastRequest); elapsed < 250*time.Millisecond {
		time.Sleep(250*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.requestMutex.Unlock()

	url := c.baseURL + endpoint

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("User-Agent", version.GetUserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.LogAPIRequest(method, endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{
			Endpoint: endpoint,
			Message:  "request failed",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Invalidate the data token so the next call re-exchanges it.
		c.tokenMutex.Lock()
		c.dataToken = ""
		c.tokenMutex.Unlock()

		return &AuthError{
			Message: fmt.Sprintf("authentication failed at %s (status %d)", endpoint, resp.StatusCode),
		}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.LogAPIError(endpoint, resp.StatusCode, fmt.Errorf("%s", string(bodyBytes)))
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    string(bodyBytes),
		}
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
