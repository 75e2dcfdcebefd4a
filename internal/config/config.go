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

// Package config loads the tool's YAML configuration and applies
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Aggregations the provider can serve and the tool understands.
const (
	AggregationQuarter = "Quarter"
	AggregationHour    = "Hour"
)

// Config holds the application configuration
type Config struct {
	// Eloverblik credentials
	RefreshToken string `yaml:"refresh_token"`

	// Metering points to fetch. Empty means discover them from the
	// account at fetch time.
	MeteringPoints []string `yaml:"metering_points"`

	// Analysis settings
	Timezone     string  `yaml:"timezone"`
	Aggregation  string  `yaml:"aggregation"`
	ExcludeZeros bool    `yaml:"exclude_zeros"`
	Latitude     float64 `yaml:"latitude"`
	Longitude    float64 `yaml:"longitude"`

	// Storage
	DatabasePath    string `yaml:"database_path"`
	CachePath       string `yaml:"cache_path"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`

	// MQTT publishing
	MQTTBroker      string `yaml:"mqtt_broker"`
	MQTTClientID    string `yaml:"mqtt_client_id"`
	MQTTUsername    string `yaml:"mqtt_username"`
	MQTTPassword    string `yaml:"mqtt_password"`
	MQTTTopicPrefix string `yaml:"mqtt_topic_prefix"`

	// Debugging
	Debug bool `yaml:"debug"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Set defaults: Danish metering points report in Danish local
	// time, and the default coordinates are central Copenhagen.
	config := &Config{
		Timezone:        "Europe/Copenhagen",
		Aggregation:     AggregationHour,
		Latitude:        55.6761,
		Longitude:       12.5683,
		DatabasePath:    filepath.Join(getDefaultDataDir(), "wattwise.db"),
		CachePath:       filepath.Join(getDefaultDataDir(), "cache"),
		CacheTTLMinutes: 360,
		MQTTClientID:    "wattwise",
		MQTTTopicPrefix: "wattwise",
		Debug:           false,
	}

	// If no path provided, return defaults with env var overrides
	if path == "" {
		config.applyEnvironmentVariables()
		return config, nil
	}

	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentVariables()

	return config, nil
}

// getDefaultDataDir returns the default data directory
func getDefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wattwise"
	}
	return filepath.Join(home, ".config", "wattwise")
}

// applyEnvironmentVariables overrides config with environment variables
func (c *Config) applyEnvironmentVariables() {
	if val := os.Getenv("ELOVERBLIK_REFRESH_TOKEN"); val != "" {
		c.RefreshToken = val
	}
	if val := os.Getenv("ELOVERBLIK_METERING_POINT"); val != "" {
		c.MeteringPoints = []string{val}
	}
	if val := os.Getenv("ELOVERBLIK_TIMEZONE"); val != "" {
		c.Timezone = val
	}
	if val := os.Getenv("ELOVERBLIK_DATABASE_PATH"); val != "" {
		c.DatabasePath = val
	}
	if val := os.Getenv("ELOVERBLIK_CACHE_PATH"); val != "" {
		c.CachePath = val
	}
	if val := os.Getenv("ELOVERBLIK_MQTT_BROKER"); val != "" {
		c.MQTTBroker = val
	}
	if val := os.Getenv("ELOVERBLIK_MQTT_USERNAME"); val != "" {
		c.MQTTUsername = val
	}
	if val := os.Getenv("ELOVERBLIK_MQTT_PASSWORD"); val != "" {
		c.MQTTPassword = val
	}
	if val := os.Getenv("ELOVERBLIK_DEBUG"); val == "true" || val == "1" {
		c.Debug = true
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errors []string

	// Required fields
	if c.RefreshToken == "" {
		errors = append(errors, "refresh_token is required")
	} else if len(c.RefreshToken) < 20 {
		errors = append(errors, "refresh_token appears to be invalid (too short)")
	}

	// Metering point IDs are 18-digit GSRN numbers
	for _, id := range c.MeteringPoints {
		if !isGSRN(id) {
			errors = append(errors, fmt.Sprintf("metering point %q is not an 18-digit GSRN", id))
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("timezone %q is unknown", c.Timezone))
	}

	if c.Aggregation != AggregationQuarter && c.Aggregation != AggregationHour {
		errors = append(errors, fmt.Sprintf("aggregation must be %s or %s", AggregationQuarter, AggregationHour))
	}

	if c.Latitude < -90 || c.Latitude > 90 {
		errors = append(errors, "latitude must be between -90 and 90")
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		errors = append(errors, "longitude must be between -180 and 180")
	}

	if c.CacheTTLMinutes < 0 {
		errors = append(errors, "cache_ttl_minutes must not be negative")
	}

	// Set default paths if empty
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(getDefaultDataDir(), "wattwise.db")
	}
	if c.CachePath == "" {
		c.CachePath = filepath.Join(getDefaultDataDir(), "cache")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Resolution maps the configured aggregation onto an interval length.
func (c *Config) Resolution() time.Duration {
	if c.Aggregation == AggregationQuarter {
		return 15 * time.Minute
	}
	return time.Hour
}

// CacheTTL returns the cache lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// isGSRN reports whether s looks like an 18-digit GSRN meter ID.
func isGSRN(s string) bool {
	if len(s) != 18 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
