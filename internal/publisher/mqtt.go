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

// Package publisher pushes daily summaries and comparisons to an MQTT
// broker for home automation dashboards.
package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/logging"
)

// Options configures the MQTT connection.
type Options struct {
	Broker      string // host:port
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// Publisher handles publishing analytics output to MQTT
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	logger      *logging.Logger
}

// New connects to the MQTT broker and returns a publisher.
func New(opts Options, logger *logging.Logger) (*Publisher, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required")
	}

	topicPrefix := opts.TopicPrefix
	if topicPrefix == "" {
		topicPrefix = "wattwise"
	}
	clientID := opts.ClientID
	if clientID == "" {
		clientID = "wattwise"
	}

	mqttOpts := mqtt.NewClientOptions()
	mqttOpts.AddBroker(fmt.Sprintf("tcp://%s", opts.Broker))
	mqttOpts.SetClientID(clientID)
	mqttOpts.SetAutoReconnect(true)
	mqttOpts.SetConnectRetry(true)
	mqttOpts.SetConnectTimeout(10 * time.Second)

	if opts.Username != "" {
		mqttOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		mqttOpts.SetPassword(opts.Password)
	}

	client := mqtt.NewClient(mqttOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	logger.Debug("Connected to MQTT broker", "broker", opts.Broker, "client_id", clientID)

	return &Publisher{
		client:      client,
		topicPrefix: topicPrefix,
		logger:      logger,
	}, nil
}

func dailyTopic(prefix, meteringPoint string, date time.Time) string {
	return fmt.Sprintf("%s/%s/daily/%s", prefix, meteringPoint, date.Format("2006-01-02"))
}

func latestTopic(prefix, meteringPoint string) string {
	return fmt.Sprintf("%s/%s/latest", prefix, meteringPoint)
}

func comparisonTopic(prefix, meteringPoint string, mode analytics.ComparisonMode) string {
	return fmt.Sprintf("%s/%s/comparison/%s", prefix, meteringPoint, mode)
}

// publishJSON publishes a payload as JSON, QoS 1 retained. Retained
// messages let dashboards pick up the latest state on subscribe.
func (p *Publisher) publishJSON(topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	token := p.client.Publish(topic, 1, true, body)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	p.logger.Debug("Published message", "topic", topic, "bytes", len(body))
	return nil
}

// PublishDailySummaries publishes each day under
// <prefix>/<metering_point>/daily/<date> plus the most recent day
// under <prefix>/<metering_point>/latest.
func (p *Publisher) PublishDailySummaries(meteringPoint string, summaries []analytics.DailySummary) error {
	if len(summaries) == 0 {
		return nil
	}

	for _, summary := range summaries {
		topic := dailyTopic(p.topicPrefix, meteringPoint, summary.Date)
		if err := p.publishJSON(topic, summary); err != nil {
			return err
		}
	}

	p.logger.LogDataCollection("published_days", len(summaries))
	return p.publishJSON(latestTopic(p.topicPrefix, meteringPoint), summaries[len(summaries)-1])
}

// PublishComparison publishes a period comparison under
// <prefix>/<metering_point>/comparison/<mode>.
func (p *Publisher) PublishComparison(meteringPoint string, comparison *analytics.Comparison) error {
	return p.publishJSON(comparisonTopic(p.topicPrefix, meteringPoint, comparison.Mode), comparison)
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
