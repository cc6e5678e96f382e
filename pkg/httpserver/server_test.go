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

package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/edgemapper/pkg/device"
	"github.com/carverauto/edgemapper/pkg/driver"
	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
	"github.com/carverauto/edgemapper/pkg/registry"
)

type fixture struct {
	srv    *httptest.Server
	reg    *registry.Registry
	client *driver.MockClient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	client := driver.NewMockClient(ctrl)

	inst := &models.DeviceInstance{
		Name:      "sensor-1",
		Namespace: "factory",
		Protocol:  models.ProtocolConfig{ProtocolName: "virtual"},
		Properties: []models.DeviceProperty{
			{Name: "temperature"},
		},
		Twins: []models.Twin{
			{
				PropertyName: "temperature",
				Reported: models.TwinValue{
					Value:    "21.5",
					Metadata: models.ValueMetadata{Timestamp: 1700000000000, Type: "string"},
				},
			},
		},
	}
	inst.ResolveTwins()

	reg := registry.New(logger.NewTestLogger())
	reg.Add(device.New(inst, nil, client, device.Options{Logger: logger.NewTestLogger()}))

	s := New("0", reg, logger.NewTestLogger())

	srv := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(srv.Close)

	return &fixture{srv: srv, reg: reg, client: client}
}

func (f *fixture) get(t *testing.T, path string) (int, envelope) {
	t.Helper()

	resp, err := http.Get(f.srv.URL + path)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	return resp.StatusCode, env
}

func TestPing(t *testing.T) {
	f := newFixture(t)

	code, env := f.get(t, "/api/v1/ping")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, apiVersion, env.APIVersion)
	assert.Equal(t, http.StatusOK, env.StatusCode)
	assert.NotEmpty(t, env.TimeStamp)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", data["status"])
}

func TestUnknownPathReturns404Envelope(t *testing.T) {
	f := newFixture(t)

	code, env := f.get(t, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not found", env.Message)
}

func TestWrongMethodReturns405Envelope(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.srv.URL+"/api/v1/ping", "application/json", nil)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "method not allowed", env.Message)
}

func TestReadDeviceProperty(t *testing.T) {
	f := newFixture(t)

	code, env := f.get(t, "/api/v1/device/factory/sensor-1/temperature")
	assert.Equal(t, http.StatusOK, code)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "temperature", data["propertyName"])
	assert.Equal(t, "21.5", data["value"])
	assert.Equal(t, "string", data["type"])
}

func TestReadDeviceByDottedID(t *testing.T) {
	f := newFixture(t)

	code, env := f.get(t, "/api/v1/device/edge.sensor-1/temperature")
	assert.Equal(t, http.StatusOK, code)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "21.5", data["value"])
}

func TestReadUnknownDeviceReturns500(t *testing.T) {
	f := newFixture(t)

	code, env := f.get(t, "/api/v1/device/factory/missing/temperature")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, env.Message, "not found")
}

func TestReadUnknownPropertyReturns500(t *testing.T) {
	f := newFixture(t)

	code, env := f.get(t, "/api/v1/device/factory/sensor-1/pressure")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, env.Message, "pressure")
}

func TestListMethods(t *testing.T) {
	f := newFixture(t)

	code, env := f.get(t, "/api/v1/devicemethod/factory/sensor-1")
	assert.Equal(t, http.StatusOK, code)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"temperature"}, data["properties"])

	methods, ok := data["methods"].([]any)
	require.True(t, ok)
	require.Len(t, methods, 1)

	method, ok := methods[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, models.SetPropertyMethod, method["name"])
}

func TestInvokeMethod(t *testing.T) {
	f := newFixture(t)

	f.client.EXPECT().Write(gomock.Any(), gomock.Any(), "25").Return(nil)
	f.client.EXPECT().Read(gomock.Any(), gomock.Any()).Return([]byte("25"), nil)

	code, env := f.get(t, "/api/v1/devicemethod/factory/sensor-1/"+models.SetPropertyMethod+"/temperature/25")
	assert.Equal(t, http.StatusOK, code)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "25", data["value"])
}

func TestInvokeUnknownMethodReturns500(t *testing.T) {
	f := newFixture(t)

	code, env := f.get(t, "/api/v1/devicemethod/factory/sensor-1/Reboot/temperature/1")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, env.Message, "Reboot")
}

func TestInvokeMethodUncoveredProperty(t *testing.T) {
	f := newFixture(t)

	code, env := f.get(t, "/api/v1/devicemethod/factory/sensor-1/"+models.SetPropertyMethod+"/pressure/1")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, env.Message, "pressure")
}

func TestModelMeta(t *testing.T) {
	f := newFixture(t)

	f.reg.SetModel(&models.DeviceModel{
		Name:      "thermostat",
		Namespace: "factory",
		Properties: []models.ModelProperty{
			{Name: "temperature", DataType: "float"},
		},
	})

	code, env := f.get(t, "/api/v1/meta/model/factory/thermostat")
	assert.Equal(t, http.StatusOK, code)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "thermostat", data["name"])

	code, _ = f.get(t, "/api/v1/meta/model/factory/missing")
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestDatabaseEndpointIsEmpty(t *testing.T) {
	f := newFixture(t)

	code, env := f.get(t, "/api/v1/database/factory/sensor-1")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, env.Data)
}
