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

package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/carverauto/edgemapper/pkg/models"
	"github.com/carverauto/edgemapper/pkg/sink"
	"github.com/carverauto/edgemapper/proto"
)

func anyOf(t *testing.T, v any) *anypb.Any {
	t.Helper()

	var (
		a   *anypb.Any
		err error
	)

	switch tv := v.(type) {
	case string:
		a, err = anypb.New(wrapperspb.String(tv))
	case int32:
		a, err = anypb.New(wrapperspb.Int32(tv))
	case int64:
		a, err = anypb.New(wrapperspb.Int64(tv))
	case float64:
		a, err = anypb.New(wrapperspb.Double(tv))
	case bool:
		a, err = anypb.New(wrapperspb.Bool(tv))
	default:
		t.Fatalf("unsupported scalar %T", v)
	}

	require.NoError(t, err)

	return a
}

func TestDecodeConfigDataWrappers(t *testing.T) {
	raw := DecodeConfigData(map[string]*anypb.Any{
		"host":    anyOf(t, "10.0.0.1"),
		"port":    anyOf(t, int32(502)),
		"offset":  anyOf(t, int64(3)),
		"scale":   anyOf(t, 1.5),
		"enabled": anyOf(t, true),
	})

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, map[string]string{
		"host":    "10.0.0.1",
		"port":    "502",
		"offset":  "3",
		"scale":   "1.5",
		"enabled": "true",
	}, decoded)
}

func TestDecodeConfigDataEmpty(t *testing.T) {
	assert.Nil(t, DecodeConfigData(nil))
	assert.Nil(t, DecodeConfigData(map[string]*anypb.Any{}))
}

func TestDecodeAnyRawFallback(t *testing.T) {
	// Unregistered payloads fall through as raw bytes, with a second pass
	// that unwraps a {"value": ...} shape.
	wrapped := &anypb.Any{TypeUrl: "type.example.com/unknown", Value: []byte(`{"value": 7}`)}
	assert.Equal(t, "7", decodeAny(wrapped))

	plain := &anypb.Any{TypeUrl: "type.example.com/unknown", Value: []byte(`plain-bytes`)}
	assert.Equal(t, "plain-bytes", decodeAny(plain))

	assert.Empty(t, decodeAny(nil))
}

func TestParseDeviceModel(t *testing.T) {
	model := ParseDeviceModel(&proto.DeviceModel{
		Name:      "thermostat",
		Namespace: "factory",
		Spec: &proto.DeviceModelSpec{
			Description: "wall thermostat",
			Properties: []*proto.ModelProperty{
				{Name: "temperature", Type: "float", AccessMode: "ReadWrite", Minimum: "5", Maximum: "35", Unit: "C"},
				nil,
			},
		},
	})

	require.NotNil(t, model)
	assert.Equal(t, "factory/thermostat", model.ID)
	assert.Equal(t, "wall thermostat", model.Description)
	require.Len(t, model.Properties, 1)
	assert.Equal(t, "float", model.Properties[0].DataType)

	assert.Nil(t, ParseDeviceModel(nil))
}

func TestParseDeviceDefaultsNamespaceAndResolvesTwins(t *testing.T) {
	inst, err := ParseDevice(&proto.Device{
		Name: "sensor-1",
		Spec: &proto.DeviceSpec{
			DeviceModelReference: "thermostat",
			Protocol:             &proto.ProtocolConfig{ProtocolName: "modbus"},
			Properties: []*proto.DeviceProperty{
				{Name: "temperature"},
			},
		},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.DefaultNamespace, inst.Namespace)
	assert.Equal(t, "default/sensor-1", inst.ID)
	assert.Equal(t, "thermostat", inst.Model)
	assert.Equal(t, "modbus", inst.Protocol.ProtocolName)

	// Twins are synthesized from properties when the status carries none.
	require.Len(t, inst.Twins, 1)
	assert.Equal(t, "temperature", inst.Twins[0].PropertyName)
	assert.Equal(t, 0, inst.Twins[0].Property)
}

func TestParseDeviceNil(t *testing.T) {
	_, err := ParseDevice(nil, nil)
	assert.ErrorIs(t, err, errNilDevice)
}

func TestParseDeviceLinksModelProperties(t *testing.T) {
	model := &models.DeviceModel{
		Name:      "thermostat",
		Namespace: "factory",
		Properties: []models.ModelProperty{
			{Name: "temperature", Minimum: "5", Maximum: "35"},
		},
	}

	inst, err := ParseDevice(&proto.Device{
		Name:      "sensor-1",
		Namespace: "factory",
		Spec: &proto.DeviceSpec{
			Properties: []*proto.DeviceProperty{
				{Name: "temperature"},
				{Name: "humidity"},
			},
		},
	}, model)
	require.NoError(t, err)

	require.Len(t, inst.Properties, 2)
	require.NotNil(t, inst.Properties[0].ModelProperty)
	assert.Equal(t, "35", inst.Properties[0].ModelProperty.Maximum)
	assert.Nil(t, inst.Properties[1].ModelProperty)
}

func TestParseDevicePropertyNameFallback(t *testing.T) {
	inst, err := ParseDevice(&proto.Device{
		Name: "sensor-1",
		Spec: &proto.DeviceSpec{
			Properties: []*proto.DeviceProperty{
				{PropertyName: "temperature"},
			},
		},
	}, nil)
	require.NoError(t, err)

	require.Len(t, inst.Properties, 1)
	assert.Equal(t, "temperature", inst.Properties[0].Name)
}

func TestParseDeviceStatusTwins(t *testing.T) {
	inst, err := ParseDevice(&proto.Device{
		Name: "sensor-1",
		Spec: &proto.DeviceSpec{
			Properties: []*proto.DeviceProperty{{Name: "temperature"}},
		},
		Status: &proto.DeviceStatus{
			State: "ONLINE",
			Twins: []*proto.Twin{
				{
					PropertyName: "temperature",
					ObservedDesired: &proto.TwinProperty{
						Value:    "21",
						Metadata: map[string]string{"timestamp": "1700000000000", "type": "string"},
					},
				},
			},
		},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.StatusOK, inst.Status)
	require.Len(t, inst.Twins, 1)
	assert.Equal(t, "21", inst.Twins[0].ObservedDesired.Value)
	assert.Equal(t, int64(1700000000000), inst.Twins[0].ObservedDesired.Metadata.Timestamp)
	assert.Equal(t, "string", inst.Twins[0].ObservedDesired.Metadata.Type)
	assert.Equal(t, 0, inst.Twins[0].Property)
}

func TestLowerPushMethodHTTP(t *testing.T) {
	cfg := lowerPushMethod(&proto.PushMethod{
		Http: &proto.PushMethodHTTP{HostName: "collector", Port: 8080, RequestPath: "/ingest", Timeout: 5},
	})

	require.NotNil(t, cfg)
	assert.Equal(t, sink.PushMethodHTTP, cfg.MethodName)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(cfg.MethodConfig, &decoded))
	assert.Equal(t, "http://collector:8080/ingest", decoded["endpoint"])
	assert.Equal(t, "POST", decoded["method"])
	assert.InEpsilon(t, 5000.0, decoded["timeout_ms"], 0.001)
}

func TestLowerPushMethodMQTT(t *testing.T) {
	cfg := lowerPushMethod(&proto.PushMethod{
		Mqtt: &proto.PushMethodMQTT{Address: "tcp://broker.local:8883", Topic: "telemetry", QoS: 2},
	})

	require.NotNil(t, cfg)
	assert.Equal(t, sink.PushMethodMQTT, cfg.MethodName)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(cfg.MethodConfig, &decoded))
	assert.Equal(t, "broker.local", decoded["brokerUrl"])
	assert.InEpsilon(t, 8883.0, decoded["port"], 0.001)
	assert.Equal(t, "telemetry", decoded["topicPrefix"])
	assert.NotEmpty(t, decoded["clientId"])
}

func TestLowerPushMethodEmpty(t *testing.T) {
	cfg := lowerPushMethod(&proto.PushMethod{})
	require.NotNil(t, cfg)
	assert.Equal(t, sink.PushMethodUnknown, cfg.MethodName)
	assert.Empty(t, cfg.DBMethodName)

	assert.Nil(t, lowerPushMethod(nil))
}

func TestLowerDBMethodPrecedence(t *testing.T) {
	// MySQL wins when several backends are set.
	name, _ := lowerDBMethod(&proto.DBMethod{
		Mysql: &proto.DBMethodMySQL{},
		Redis: &proto.DBMethodRedis{},
	})
	assert.Equal(t, sink.DBMethodMySQL, name)

	name, cfg := lowerDBMethod(&proto.DBMethod{
		Redis: &proto.DBMethodRedis{ConfigData: &proto.RedisClientConfig{Addr: "127.0.0.1:6379", Db: 2}},
	})
	assert.Equal(t, sink.DBMethodRedis, name)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(cfg, &decoded))
	assert.Equal(t, "127.0.0.1:6379", decoded["addr"])
	assert.InEpsilon(t, 2.0, decoded["db"], 0.001)

	name, cfg = lowerDBMethod(&proto.DBMethod{
		Influxdb2: &proto.DBMethodInfluxdb2{
			ConfigData: &proto.Influxdb2ClientConfig{Url: "http://influx:8086", Org: "edge", Bucket: "telemetry"},
			DataConfig: &proto.Influxdb2DataConfig{Measurement: "samples", FieldKey: "value"},
		},
	})
	assert.Equal(t, sink.DBMethodInfluxdb2, name)
	require.NoError(t, json.Unmarshal(cfg, &decoded))
	assert.Equal(t, "edge", decoded["org"])
	assert.Equal(t, "samples", decoded["measurement"])

	name, cfg = lowerDBMethod(&proto.DBMethod{
		TDEngine: &proto.DBMethodTDEngine{ConfigData: &proto.TDEngineClientConfig{Addr: "td:6041", DbName: "edge"}},
	})
	assert.Equal(t, sink.DBMethodTDengine, name)
	require.NoError(t, json.Unmarshal(cfg, &decoded))
	assert.Equal(t, "edge", decoded["dbName"])

	name, cfg = lowerDBMethod(nil)
	assert.Empty(t, name)
	assert.Nil(t, cfg)
}

func TestSplitBrokerAddress(t *testing.T) {
	tests := []struct {
		address string
		host    string
		port    int
	}{
		{address: "tcp://broker.local:8883", host: "broker.local", port: 8883},
		{address: "broker.local:1884", host: "broker.local", port: 1884},
		{address: "broker.local", host: "broker.local", port: 1883},
		{address: "broker.local:bad", host: "broker.local", port: 1883},
	}

	for _, tt := range tests {
		host, port := splitBrokerAddress(tt.address)
		assert.Equal(t, tt.host, host, tt.address)
		assert.Equal(t, tt.port, port, tt.address)
	}
}
