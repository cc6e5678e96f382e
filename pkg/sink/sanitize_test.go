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

package sink

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback string
		expected string
	}{
		{name: "clean passes through", input: "sensor-1", fallback: "x", expected: "sensor-1"},
		{name: "upper case lowered", input: "Sensor-1", fallback: "x", expected: "sensor-1"},
		{name: "empty yields fallback", input: "", fallback: "unknown", expected: "unknown"},
		{name: "slashes kept", input: "factory/sensor-1", fallback: "x", expected: "factory/sensor-1"},
		{name: "specials replaced", input: "a b;DROP", fallback: "x", expected: "a_b_drop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeIdentifier(tt.input, tt.fallback))
		})
	}
}

type stubRecorder struct {
	closed bool
}

func (s *stubRecorder) SetDB(json.RawMessage) error { return nil }

func (s *stubRecorder) Record(context.Context, string, string, string, string, int64) error {
	return nil
}

func (s *stubRecorder) Close() error {
	s.closed = true
	return nil
}

func TestRecordersForMethod(t *testing.T) {
	mysql := &stubRecorder{}
	redis := &stubRecorder{}

	recorders := &Recorders{MySQL: mysql, Redis: redis}

	assert.Equal(t, Recorder(mysql), recorders.ForMethod(DBMethodMySQL))
	assert.Equal(t, Recorder(redis), recorders.ForMethod(DBMethodRedis))
	assert.Nil(t, recorders.ForMethod(DBMethodInfluxdb2))
	assert.Nil(t, recorders.ForMethod("bogus"))

	var nilRecorders *Recorders

	assert.Nil(t, nilRecorders.ForMethod(DBMethodMySQL))
}

func TestRecordersCloseAll(t *testing.T) {
	mysql := &stubRecorder{}
	influx := &stubRecorder{}

	recorders := &Recorders{MySQL: mysql, Influx: influx}
	recorders.CloseAll()

	assert.True(t, mysql.closed)
	assert.True(t, influx.closed)

	var nilRecorders *Recorders

	nilRecorders.CloseAll()
}
