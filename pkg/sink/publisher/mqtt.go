/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/sink"
)

const (
	defaultMQTTPort      = 1883
	defaultMQTTKeepAlive = 60
	defaultMQTTQoS       = 1

	// Connect waits are polled rather than blocked on so a dead broker
	// bounds the first publish at ~5s.
	mqttConnectPolls    = 50
	mqttConnectInterval = 100 * time.Millisecond
)

var (
	errNoMQTTBroker    = errors.New("mqtt publisher config has no broker url")
	errMQTTConnTimeout = errors.New("timed out waiting for mqtt connection")
)

// mqttConfig is the lowered per-property MQTT push config.
type mqttConfig struct {
	BrokerURL   string `json:"brokerUrl"`
	Port        int    `json:"port"`
	TopicPrefix string `json:"topicPrefix"`
	QoS         int    `json:"qos"`
	KeepAlive   int    `json:"keepAlive"`
	ClientID    string `json:"clientId"`
}

// MQTT publishes payloads to `<topicPrefix>/<device>/<property>`. The broker
// connection is established lazily on first publish and re-established on the
// next publish after a disconnect.
type MQTT struct {
	mu     sync.Mutex
	cfg    mqttConfig
	client mqtt.Client
	logger logger.Logger
}

// NewMQTT builds an MQTT publisher from its lowered JSON config. No network
// I/O happens until the first Publish.
func NewMQTT(config json.RawMessage, log logger.Logger) (*MQTT, error) {
	cfg := mqttConfig{}

	if len(config) > 0 {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse mqtt publisher config: %w", err)
		}
	}

	if cfg.BrokerURL == "" {
		return nil, errNoMQTTBroker
	}

	if cfg.Port <= 0 {
		cfg.Port = defaultMQTTPort
	}

	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = defaultMQTTKeepAlive
	}

	if cfg.QoS < 0 || cfg.QoS > 2 {
		cfg.QoS = defaultMQTTQoS
	}

	if cfg.ClientID == "" {
		cfg.ClientID = "edgemapper-" + uuid.NewString()
	}

	return &MQTT{cfg: cfg, logger: log}, nil
}

// Publish implements sink.Publisher.
func (m *MQTT) Publish(_ context.Context, payload *sink.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureConnectedLocked(); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/%s", m.cfg.TopicPrefix, payload.DeviceName, payload.PropertyName)

	token := m.client.Publish(topic, byte(m.cfg.QoS), false, body)
	token.Wait()

	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s failed: %w", topic, err)
	}

	return nil
}

func (m *MQTT) ensureConnectedLocked() error {
	if m.client != nil && m.client.IsConnected() {
		return nil
	}

	if m.client == nil {
		opts := mqtt.NewClientOptions().
			AddBroker(fmt.Sprintf("tcp://%s:%d", m.cfg.BrokerURL, m.cfg.Port)).
			SetClientID(m.cfg.ClientID).
			SetKeepAlive(time.Duration(m.cfg.KeepAlive) * time.Second).
			SetAutoReconnect(true)

		m.client = mqtt.NewClient(opts)
	}

	token := m.client.Connect()

	for i := 0; i < mqttConnectPolls; i++ {
		if m.client.IsConnected() {
			return nil
		}

		if token.WaitTimeout(mqttConnectInterval) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect failed: %w", err)
			}

			if m.client.IsConnected() {
				return nil
			}
		}
	}

	return errMQTTConnTimeout
}

// Close implements sink.Publisher.
func (m *MQTT) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil && m.client.IsConnected() {
		m.client.Disconnect(250)
	}

	m.client = nil

	return nil
}
