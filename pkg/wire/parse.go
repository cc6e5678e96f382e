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

// Package wire converts between the control-plane wire messages and the
// internal device model. Parsing lowers typed protobuf configs into the
// plain JSON blobs drivers, recorders, and publishers consume.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/carverauto/edgemapper/pkg/models"
	"github.com/carverauto/edgemapper/pkg/sink"
	"github.com/carverauto/edgemapper/proto"
)

const (
	defaultMQTTPort      = 1883
	defaultMQTTKeepAlive = 60
)

var errNilDevice = errors.New("nil device message")

// ParseDeviceModel converts a wire model into the internal form.
func ParseDeviceModel(pm *proto.DeviceModel) *models.DeviceModel {
	if pm == nil {
		return nil
	}

	model := &models.DeviceModel{
		Name:      pm.Name,
		Namespace: models.NamespaceOrDefault(pm.Namespace),
	}
	model.ID = model.CanonicalID()

	if pm.Spec == nil {
		return model
	}

	model.Description = pm.Spec.Description
	model.Properties = make([]models.ModelProperty, 0, len(pm.Spec.Properties))

	for _, p := range pm.Spec.Properties {
		if p == nil {
			continue
		}

		model.Properties = append(model.Properties, models.ModelProperty{
			Name:        p.Name,
			DataType:    p.Type,
			AccessMode:  p.AccessMode,
			Minimum:     p.Minimum,
			Maximum:     p.Maximum,
			Unit:        p.Unit,
			Description: p.Description,
		})
	}

	return model
}

// ParseDevice converts a wire device into an internal instance, linking
// model properties when the model is known.
func ParseDevice(pd *proto.Device, model *models.DeviceModel) (*models.DeviceInstance, error) {
	if pd == nil {
		return nil, errNilDevice
	}

	inst := &models.DeviceInstance{
		Name:      pd.Name,
		Namespace: models.NamespaceOrDefault(pd.Namespace),
	}
	inst.ID = inst.CanonicalID()

	if pd.Spec != nil {
		inst.Model = pd.Spec.DeviceModelReference
		inst.Protocol = parseProtocol(pd.Spec.Protocol)
		inst.Properties = parseProperties(pd.Spec.Properties, model)
		inst.Methods = parseMethods(pd.Spec.Methods)
	}

	if pd.Status != nil {
		inst.Status = models.NormalizeStatus(pd.Status.State)
		inst.Twins = parseTwins(pd.Status.Twins)
	}

	inst.ResolveTwins()

	return inst, nil
}

func parseProtocol(pc *proto.ProtocolConfig) models.ProtocolConfig {
	if pc == nil {
		return models.ProtocolConfig{}
	}

	return models.ProtocolConfig{
		ProtocolName: pc.ProtocolName,
		ConfigData:   DecodeConfigData(pc.ConfigData),
	}
}

func parseProperties(props []*proto.DeviceProperty, model *models.DeviceModel) []models.DeviceProperty {
	out := make([]models.DeviceProperty, 0, len(props))

	for _, p := range props {
		if p == nil {
			continue
		}

		name := p.Name
		if name == "" {
			name = p.PropertyName
		}

		prop := models.DeviceProperty{
			Name:          name,
			ModelName:     p.ModelName,
			Protocol:      p.Protocol,
			CollectCycle:  p.CollectCycle,
			ReportCycle:   p.ReportCycle,
			ReportToCloud: p.ReportToCloud,
			PushMethod:    lowerPushMethod(p.PushMethod),
		}

		if p.Visitors != nil {
			prop.Visitors = DecodeConfigData(p.Visitors.ConfigData)
			if prop.Protocol == "" {
				prop.Protocol = p.Visitors.ProtocolName
			}
		}

		if model != nil {
			prop.ModelProperty = model.PropertyByName(name)
		}

		out = append(out, prop)
	}

	return out
}

func parseMethods(methods []*proto.DeviceMethod) []models.DeviceMethod {
	out := make([]models.DeviceMethod, 0, len(methods))

	for _, m := range methods {
		if m == nil {
			continue
		}

		out = append(out, models.DeviceMethod{
			Name:          m.Name,
			Description:   m.Description,
			PropertyNames: m.PropertyNames,
		})
	}

	return out
}

func parseTwins(twins []*proto.Twin) []models.Twin {
	out := make([]models.Twin, 0, len(twins))

	for _, t := range twins {
		if t == nil {
			continue
		}

		out = append(out, models.Twin{
			PropertyName:    t.PropertyName,
			ObservedDesired: parseTwinProperty(t.ObservedDesired),
			Reported:        parseTwinProperty(t.Reported),
		})
	}

	return out
}

func parseTwinProperty(tp *proto.TwinProperty) models.TwinValue {
	if tp == nil {
		return models.TwinValue{}
	}

	v := models.TwinValue{Value: tp.Value}

	if ts := tp.Metadata["timestamp"]; ts != "" {
		if n, err := strconv.ParseInt(ts, 10, 64); err == nil {
			v.Metadata.Timestamp = n
		}
	}

	v.Metadata.Type = tp.Metadata["type"]

	return v
}

// DecodeConfigData lowers a typed key-to-Any map into a JSON object whose
// values are string-encoded scalars.
func DecodeConfigData(configData map[string]*anypb.Any) json.RawMessage {
	if len(configData) == 0 {
		return nil
	}

	out := make(map[string]string, len(configData))

	for key, val := range configData {
		out[key] = decodeAny(val)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil
	}

	return raw
}

// decodeAny extracts a scalar from a protobuf Any. The known wrapper types
// decode directly; anything else falls through as raw bytes, with a second
// attempt that reads a {"value": ...} JSON shape.
func decodeAny(a *anypb.Any) string {
	if a == nil {
		return ""
	}

	switch {
	case a.MessageIs((*wrapperspb.StringValue)(nil)):
		v := &wrapperspb.StringValue{}
		if err := a.UnmarshalTo(v); err == nil {
			return v.Value
		}
	case a.MessageIs((*wrapperspb.Int32Value)(nil)):
		v := &wrapperspb.Int32Value{}
		if err := a.UnmarshalTo(v); err == nil {
			return strconv.FormatInt(int64(v.Value), 10)
		}
	case a.MessageIs((*wrapperspb.Int64Value)(nil)):
		v := &wrapperspb.Int64Value{}
		if err := a.UnmarshalTo(v); err == nil {
			return strconv.FormatInt(v.Value, 10)
		}
	case a.MessageIs((*wrapperspb.DoubleValue)(nil)):
		v := &wrapperspb.DoubleValue{}
		if err := a.UnmarshalTo(v); err == nil {
			return strconv.FormatFloat(v.Value, 'f', -1, 64)
		}
	case a.MessageIs((*wrapperspb.BoolValue)(nil)):
		v := &wrapperspb.BoolValue{}
		if err := a.UnmarshalTo(v); err == nil {
			return strconv.FormatBool(v.Value)
		}
	}

	raw := a.GetValue()

	var wrapped struct {
		Value any `json:"value"`
	}

	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Value != nil {
		return fmt.Sprintf("%v", wrapped.Value)
	}

	return string(raw)
}

// lowerPushMethod flattens a wire push method into the internal method-name
// plus JSON-config pair. At most one push channel and one DB method apply;
// DB method precedence is mysql, redis, influxdb2, tdengine.
func lowerPushMethod(pm *proto.PushMethod) *models.PushMethodConfig {
	if pm == nil {
		return nil
	}

	cfg := &models.PushMethodConfig{MethodName: sink.PushMethodUnknown}

	switch {
	case pm.Http != nil:
		cfg.MethodName = sink.PushMethodHTTP
		cfg.MethodConfig = lowerHTTP(pm.Http)
	case pm.Mqtt != nil:
		cfg.MethodName = sink.PushMethodMQTT
		cfg.MethodConfig = lowerMQTT(pm.Mqtt)
	case pm.Otel != nil:
		cfg.MethodName = sink.PushMethodOTEL
		cfg.MethodConfig = mustJSON(map[string]any{"endpointUrl": pm.Otel.EndpointURL})
	}

	cfg.DBMethodName, cfg.DBConfig = lowerDBMethod(pm.DbMethod)

	return cfg
}

func lowerHTTP(h *proto.PushMethodHTTP) json.RawMessage {
	endpoint := fmt.Sprintf("http://%s:%d%s", h.HostName, h.Port, h.RequestPath)

	return mustJSON(map[string]any{
		"endpoint":   endpoint,
		"method":     "POST",
		"timeout_ms": h.Timeout * 1000,
	})
}

func lowerMQTT(m *proto.PushMethodMQTT) json.RawMessage {
	broker, port := splitBrokerAddress(m.Address)

	return mustJSON(map[string]any{
		"brokerUrl":   broker,
		"port":        port,
		"topicPrefix": m.Topic,
		"qos":         m.QoS,
		"keepAlive":   defaultMQTTKeepAlive,
		"clientId":    "edgemapper-" + uuid.NewString(),
	})
}

func lowerDBMethod(db *proto.DBMethod) (string, json.RawMessage) {
	switch {
	case db == nil:
		return "", nil
	case db.Mysql != nil:
		cfg := db.Mysql.ConfigData
		if cfg == nil {
			cfg = &proto.MySQLClientConfig{}
		}

		return sink.DBMethodMySQL, mustJSON(map[string]any{
			"addr":     cfg.Addr,
			"database": cfg.Database,
			"userName": cfg.UserName,
		})
	case db.Redis != nil:
		cfg := db.Redis.ConfigData
		if cfg == nil {
			cfg = &proto.RedisClientConfig{}
		}

		return sink.DBMethodRedis, mustJSON(map[string]any{
			"addr":         cfg.Addr,
			"db":           cfg.Db,
			"poolsize":     cfg.Poolsize,
			"minIdleConns": cfg.MinIdleConns,
		})
	case db.Influxdb2 != nil:
		out := map[string]any{}

		if cc := db.Influxdb2.ConfigData; cc != nil {
			out["url"] = cc.Url
			out["org"] = cc.Org
			out["bucket"] = cc.Bucket
		}

		if dc := db.Influxdb2.DataConfig; dc != nil {
			out["measurement"] = dc.Measurement
			out["tag"] = dc.Tag
			out["fieldKey"] = dc.FieldKey
		}

		return sink.DBMethodInfluxdb2, mustJSON(out)
	case db.TDEngine != nil:
		cfg := db.TDEngine.ConfigData
		if cfg == nil {
			cfg = &proto.TDEngineClientConfig{}
		}

		return sink.DBMethodTDengine, mustJSON(map[string]any{
			"addr":   cfg.Addr,
			"dbName": cfg.DbName,
		})
	default:
		return sink.DBMethodUnknown, nil
	}
}

// splitBrokerAddress strips an optional scheme and splits "host:port";
// missing or unparsable ports default to 1883.
func splitBrokerAddress(address string) (host string, port int) {
	addr := address

	if i := strings.Index(addr, "://"); i >= 0 {
		addr = addr[i+3:]
	}

	host = addr
	port = defaultMQTTPort

	if h, p, ok := strings.Cut(addr, ":"); ok {
		host = h

		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			port = n
		}
	}

	return host, port
}

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	return raw
}
