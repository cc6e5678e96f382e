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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/edgemapper/pkg/logger"
)

func TestNewMQTTDefaults(t *testing.T) {
	pub, err := NewMQTT(json.RawMessage(`{"brokerUrl":"broker.local"}`), logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, defaultMQTTPort, pub.cfg.Port)
	assert.Equal(t, defaultMQTTKeepAlive, pub.cfg.KeepAlive)
	assert.Equal(t, defaultMQTTQoS, pub.cfg.QoS)
	assert.NotEmpty(t, pub.cfg.ClientID)

	// No connection is opened at build time.
	assert.Nil(t, pub.client)
	require.NoError(t, pub.Close())
}

func TestNewMQTTClampsQoS(t *testing.T) {
	pub, err := NewMQTT(json.RawMessage(`{"brokerUrl":"broker.local","qos":7}`), logger.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, defaultMQTTQoS, pub.cfg.QoS)

	pub, err = NewMQTT(json.RawMessage(`{"brokerUrl":"broker.local","qos":2}`), logger.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, pub.cfg.QoS)
}

func TestNewMQTTKeepsExplicitConfig(t *testing.T) {
	pub, err := NewMQTT(json.RawMessage(`{"brokerUrl":"broker.local","port":8883,"keepAlive":30,"clientId":"edge-7","topicPrefix":"telemetry"}`), logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, 8883, pub.cfg.Port)
	assert.Equal(t, 30, pub.cfg.KeepAlive)
	assert.Equal(t, "edge-7", pub.cfg.ClientID)
	assert.Equal(t, "telemetry", pub.cfg.TopicPrefix)
}

func TestNewMQTTRequiresBroker(t *testing.T) {
	_, err := NewMQTT(nil, logger.NewTestLogger())
	assert.ErrorIs(t, err, errNoMQTTBroker)

	_, err = NewMQTT(json.RawMessage(`{"port":1883}`), logger.NewTestLogger())
	assert.ErrorIs(t, err, errNoMQTTBroker)
}
