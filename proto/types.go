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

// Package proto defines the device-management wire surface spoken over the
// local UNIX-domain sockets. Messages are hand-maintained structs exchanged
// with the JSON codec in codec.go; typed scalar values inside protocol
// configs stay protobuf Any so drivers keep round-trip fidelity.
package proto

import (
	"google.golang.org/protobuf/types/known/anypb"
)

// MapperInfo identifies a mapper process towards the control plane.
type MapperInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	ApiVersion string `json:"apiVersion"`
	Protocol   string `json:"protocol"`
	Address    string `json:"address"`
	State      string `json:"state"`
}

// MapperRegisterRequest registers the mapper. WithData asks the control
// plane to return the device and model lists assigned to this mapper.
type MapperRegisterRequest struct {
	WithData bool        `json:"withData"`
	Mapper   *MapperInfo `json:"mapper"`
}

// MapperRegisterResponse carries the mapper's assigned desired state.
type MapperRegisterResponse struct {
	DeviceList []*Device      `json:"deviceList,omitempty"`
	ModelList  []*DeviceModel `json:"modelList,omitempty"`
}

// DeviceModel describes a device class.
type DeviceModel struct {
	Name      string           `json:"name"`
	Namespace string           `json:"namespace"`
	Spec      *DeviceModelSpec `json:"spec,omitempty"`
}

// DeviceModelSpec lists the model's properties.
type DeviceModelSpec struct {
	Description string           `json:"description,omitempty"`
	Properties  []*ModelProperty `json:"properties,omitempty"`
}

// ModelProperty is one property definition of a model.
type ModelProperty struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	AccessMode  string `json:"accessMode,omitempty"`
	Minimum     string `json:"minimum,omitempty"`
	Maximum     string `json:"maximum,omitempty"`
	Unit        string `json:"unit,omitempty"`
}

// Device is a device instance plus its reported status.
type Device struct {
	Name      string        `json:"name"`
	Namespace string        `json:"namespace"`
	Spec      *DeviceSpec   `json:"spec,omitempty"`
	Status    *DeviceStatus `json:"status,omitempty"`
}

// DeviceSpec is the desired state of a device instance.
type DeviceSpec struct {
	DeviceModelReference string            `json:"deviceModelReference,omitempty"`
	Protocol             *ProtocolConfig   `json:"protocol,omitempty"`
	Properties           []*DeviceProperty `json:"properties,omitempty"`
	Methods              []*DeviceMethod   `json:"methods,omitempty"`
}

// ProtocolConfig selects a protocol driver and carries its typed settings.
type ProtocolConfig struct {
	ProtocolName string                `json:"protocolName"`
	ConfigData   map[string]*anypb.Any `json:"configData,omitempty"`
}

// DeviceProperty is one property of an instance.
type DeviceProperty struct {
	Name          string          `json:"name"`
	PropertyName  string          `json:"propertyName,omitempty"`
	ModelName     string          `json:"modelName,omitempty"`
	Protocol      string          `json:"protocol,omitempty"`
	Visitors      *ProtocolConfig `json:"visitors,omitempty"`
	CollectCycle  int64           `json:"collectCycle,omitempty"`
	ReportCycle   int64           `json:"reportCycle,omitempty"`
	ReportToCloud bool            `json:"reportToCloud,omitempty"`
	PushMethod    *PushMethod     `json:"pushMethod,omitempty"`
}

// DeviceMethod names an operation over device properties.
type DeviceMethod struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	PropertyNames []string `json:"propertyNames,omitempty"`
}

// PushMethod selects at most one push channel and at most one DB method.
type PushMethod struct {
	Http     *PushMethodHTTP `json:"http,omitempty"`
	Mqtt     *PushMethodMQTT `json:"mqtt,omitempty"`
	Otel     *PushMethodOTEL `json:"otel,omitempty"`
	DbMethod *DBMethod       `json:"dbMethod,omitempty"`
}

// PushMethodHTTP configures HTTP push.
type PushMethodHTTP struct {
	HostName    string `json:"hostName,omitempty"`
	Port        int64  `json:"port,omitempty"`
	RequestPath string `json:"requestPath,omitempty"`
	Timeout     int64  `json:"timeout,omitempty"`
}

// PushMethodMQTT configures MQTT push.
type PushMethodMQTT struct {
	Address  string `json:"address,omitempty"`
	Topic    string `json:"topic,omitempty"`
	QoS      int32  `json:"qos,omitempty"`
	Retained bool   `json:"retained,omitempty"`
}

// PushMethodOTEL configures OTLP push.
type PushMethodOTEL struct {
	EndpointURL string `json:"endpointURL,omitempty"`
}

// DBMethod selects one time-series recorder backend.
type DBMethod struct {
	Influxdb2 *DBMethodInfluxdb2 `json:"influxdb2,omitempty"`
	Redis     *DBMethodRedis     `json:"redis,omitempty"`
	TDEngine  *DBMethodTDEngine  `json:"tdengine,omitempty"`
	Mysql     *DBMethodMySQL     `json:"mysql,omitempty"`
}

// DBMethodInfluxdb2 configures the InfluxDB2 recorder.
type DBMethodInfluxdb2 struct {
	ConfigData *Influxdb2ClientConfig `json:"influxdb2ClientConfig,omitempty"`
	DataConfig *Influxdb2DataConfig   `json:"influxdb2DataConfig,omitempty"`
}

// Influxdb2ClientConfig carries InfluxDB2 connection settings.
type Influxdb2ClientConfig struct {
	Url    string `json:"url,omitempty"`
	Org    string `json:"org,omitempty"`
	Bucket string `json:"bucket,omitempty"`
}

// Influxdb2DataConfig shapes the written data points.
type Influxdb2DataConfig struct {
	Measurement string            `json:"measurement,omitempty"`
	Tag         map[string]string `json:"tag,omitempty"`
	FieldKey    string            `json:"fieldKey,omitempty"`
}

// DBMethodRedis configures the Redis recorder.
type DBMethodRedis struct {
	ConfigData *RedisClientConfig `json:"redisClientConfig,omitempty"`
}

// RedisClientConfig carries Redis connection settings.
type RedisClientConfig struct {
	Addr         string `json:"addr,omitempty"`
	Db           int32  `json:"db,omitempty"`
	Poolsize     int32  `json:"poolsize,omitempty"`
	MinIdleConns int32  `json:"minIdleConns,omitempty"`
}

// DBMethodTDEngine configures the TDengine recorder.
type DBMethodTDEngine struct {
	ConfigData *TDEngineClientConfig `json:"tdEngineClientConfig,omitempty"`
}

// TDEngineClientConfig carries TDengine connection settings.
type TDEngineClientConfig struct {
	Addr   string `json:"addr,omitempty"`
	DbName string `json:"dbName,omitempty"`
}

// DBMethodMySQL configures the MySQL recorder.
type DBMethodMySQL struct {
	ConfigData *MySQLClientConfig `json:"mysqlClientConfig,omitempty"`
}

// MySQLClientConfig carries MySQL connection settings; the password comes
// from the environment.
type MySQLClientConfig struct {
	Addr     string `json:"addr,omitempty"`
	Database string `json:"database,omitempty"`
	UserName string `json:"userName,omitempty"`
}

// DeviceStatus is the reported state of a device.
type DeviceStatus struct {
	Twins []*Twin `json:"twins,omitempty"`
	State string  `json:"state,omitempty"`
}

// Twin is the wire form of a per-property reconciliation record.
type Twin struct {
	PropertyName    string        `json:"propertyName"`
	ObservedDesired *TwinProperty `json:"observedDesired,omitempty"`
	Reported        *TwinProperty `json:"reported,omitempty"`
}

// TwinProperty is one side of a twin.
type TwinProperty struct {
	Value    string            `json:"value"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RegisterDeviceRequest asks the mapper to manage a device.
type RegisterDeviceRequest struct {
	Device *Device `json:"device"`
}

// RegisterDeviceResponse acknowledges a device registration.
type RegisterDeviceResponse struct {
	DeviceName string `json:"deviceName"`
	Namespace  string `json:"namespace,omitempty"`
}

// RemoveDeviceRequest asks the mapper to stop managing a device.
type RemoveDeviceRequest struct {
	DeviceName string `json:"deviceName"`
	Namespace  string `json:"namespace,omitempty"`
}

// RemoveDeviceResponse acknowledges a device removal.
type RemoveDeviceResponse struct{}

// UpdateDeviceRequest replaces a managed device's desired state.
type UpdateDeviceRequest struct {
	Device *Device `json:"device"`
}

// UpdateDeviceResponse acknowledges a device update.
type UpdateDeviceResponse struct{}

// CreateDeviceModelRequest installs a device model.
type CreateDeviceModelRequest struct {
	Model *DeviceModel `json:"model"`
}

// CreateDeviceModelResponse acknowledges a model creation.
type CreateDeviceModelResponse struct {
	ModelName string `json:"modelName"`
}

// UpdateDeviceModelRequest replaces a device model.
type UpdateDeviceModelRequest struct {
	Model *DeviceModel `json:"model"`
}

// UpdateDeviceModelResponse acknowledges a model update.
type UpdateDeviceModelResponse struct{}

// RemoveDeviceModelRequest removes a device model.
type RemoveDeviceModelRequest struct {
	ModelName string `json:"modelName"`
	Namespace string `json:"namespace,omitempty"`
}

// RemoveDeviceModelResponse acknowledges a model removal.
type RemoveDeviceModelResponse struct{}

// GetDeviceRequest fetches a managed device's status.
type GetDeviceRequest struct {
	DeviceName string `json:"deviceName"`
	Namespace  string `json:"namespace,omitempty"`
}

// GetDeviceResponse returns the device status envelope.
type GetDeviceResponse struct {
	Device *Device `json:"device,omitempty"`
}

// ReportDeviceStatesRequest reports a device state transition.
type ReportDeviceStatesRequest struct {
	Namespace  string `json:"namespace,omitempty"`
	DeviceName string `json:"deviceName"`
	State      string `json:"state"`
}

// ReportDeviceStatesResponse acknowledges a state report.
type ReportDeviceStatesResponse struct{}

// ReportDeviceStatusRequest reports one twin key/value pair.
type ReportDeviceStatusRequest struct {
	Namespace  string `json:"namespace,omitempty"`
	DeviceName string `json:"deviceName"`
	Twin       *Twin  `json:"twin,omitempty"`
}

// ReportDeviceStatusResponse acknowledges a twin report.
type ReportDeviceStatusResponse struct{}
