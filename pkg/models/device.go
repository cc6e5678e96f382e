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

// Package models holds the internal device model shared by the registry,
// the per-device runtime, the control-plane server, and the sinks.
package models

import (
	"encoding/json"
	"unicode"
)

// DefaultNamespace is used whenever a device or model arrives without a
// usable namespace.
const DefaultNamespace = "default"

// SetPropertyMethod is the synthesized write method added to instances that
// arrive without any methods of their own.
const SetPropertyMethod = "SetProperty"

// DeviceModel describes a class of devices and the properties they expose.
type DeviceModel struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Namespace   string          `json:"namespace" yaml:"namespace"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  []ModelProperty `json:"properties" yaml:"properties"`
}

// ModelProperty is one property definition inside a DeviceModel.
type ModelProperty struct {
	Name        string `json:"name" yaml:"name"`
	DataType    string `json:"dataType" yaml:"dataType"`
	AccessMode  string `json:"accessMode" yaml:"accessMode"`
	Minimum     string `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     string `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Unit        string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// CanonicalID returns the registry key for a model or instance.
func CanonicalID(namespace, name string) string {
	return NamespaceOrDefault(namespace) + "/" + name
}

// ID returns the model's canonical "<namespace>/<name>" identity.
func (m *DeviceModel) CanonicalID() string {
	return CanonicalID(m.Namespace, m.Name)
}

// PropertyByName returns the model property with the given name, or nil.
func (m *DeviceModel) PropertyByName(name string) *ModelProperty {
	for i := range m.Properties {
		if m.Properties[i].Name == name {
			return &m.Properties[i]
		}
	}

	return nil
}

// ProtocolConfig carries the protocol selector plus the opaque, driver-owned
// configuration blob. ConfigData is JSON whose values are string-encoded
// scalars produced by the wire layer.
type ProtocolConfig struct {
	ProtocolName string          `json:"protocolName" yaml:"protocolName"`
	ConfigData   json.RawMessage `json:"configData,omitempty" yaml:"configData,omitempty"`
}

// PushMethodConfig aggregates the per-property push channel and the optional
// time-series DB method. Both configs are JSON blobs in the shape the
// matching publisher or recorder consumes.
type PushMethodConfig struct {
	MethodName   string          `json:"methodName" yaml:"methodName"`
	MethodConfig json.RawMessage `json:"methodConfig,omitempty" yaml:"methodConfig,omitempty"`
	DBMethodName string          `json:"dbMethodName,omitempty" yaml:"dbMethodName,omitempty"`
	DBConfig     json.RawMessage `json:"dbConfig,omitempty" yaml:"dbConfig,omitempty"`
}

// DeviceProperty is one property of a device instance.
type DeviceProperty struct {
	Name          string            `json:"name" yaml:"name"`
	ModelName     string            `json:"modelName,omitempty" yaml:"modelName,omitempty"`
	Protocol      string            `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Visitors      json.RawMessage   `json:"visitors,omitempty" yaml:"visitors,omitempty"`
	CollectCycle  int64             `json:"collectCycle,omitempty" yaml:"collectCycle,omitempty"`
	ReportCycle   int64             `json:"reportCycle,omitempty" yaml:"reportCycle,omitempty"`
	ReportToCloud bool              `json:"reportToCloud,omitempty" yaml:"reportToCloud,omitempty"`
	PushMethod    *PushMethodConfig `json:"pushMethod,omitempty" yaml:"pushMethod,omitempty"`
	ModelProperty *ModelProperty    `json:"modelProperty,omitempty" yaml:"modelProperty,omitempty"`
}

// ValueMetadata annotates a twin value.
type ValueMetadata struct {
	Timestamp int64  `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
}

/// TwinValue is one side of a twin: a value plus its metadata.
type TwinValue struct {
	Value    string        `json:"value" yaml:"value"`
	Metadata ValueMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Twin is the per-property reconciliation record. Property is the index of
// the owning instance's property with a matching name, or -1 when no match
// exists; back-references are always by index, never by pointer, so the
// instance remains the single owner of its properties.
type Twin struct {
	PropertyName    string    `json:"propertyName" yaml:"propertyName"`
	Property        int       `json:"-" yaml:"-"`
	ObservedDesired TwinValue `json:"observedDesired" yaml:"observedDesired"`
	Reported        TwinValue `json:"reported" yaml:"reported"`
}

// DeviceMethod is a named operation over a subset of device properties.
type DeviceMethod struct {
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	PropertyNames []string `json:"propertyNames,omitempty" yaml:"propertyNames,omitempty"`
}

// DeviceInstance is the desired-state specification of one managed device.
// The instance owns all of its properties, twins, and methods by value.
type DeviceInstance struct {
	ID         string           `json:"id" yaml:"id"`
	Name       string           `json:"name" yaml:"name"`
	Namespace  string           `json:"namespace" yaml:"namespace"`
	Model      string           `json:"model" yaml:"model"`
	Protocol   ProtocolConfig   `json:"protocol" yaml:"protocol"`
	Properties []DeviceProperty `json:"properties" yaml:"properties"`
	Twins      []Twin           `json:"twins" yaml:"twins"`
	Methods    []DeviceMethod   `json:"methods,omitempty" yaml:"methods,omitempty"`
	Status     string           `json:"status,omitempty" yaml:"status,omitempty"`
}

// CanonicalID returns the "<namespace>/<name>" registry key.
func (d *DeviceInstance) CanonicalID() string {
	return CanonicalID(d.Namespace, d.Name)
}

// PropertyIndex returns the index of the named property, or -1.
func (d *DeviceInstance) PropertyIndex(name string) int {
	for i := range d.Properties {
		if d.Properties[i].Name == name {
			return i
		}
	}

	return -1
}

// PropertyByName returns the named property, or nil.
func (d *DeviceInstance) PropertyByName(name string) *DeviceProperty {
	if i := d.PropertyIndex(name); i >= 0 {
		return &d.Properties[i]
	}

	return nil
}

// TwinByName returns the twin for the named property, or nil.
func (d *DeviceInstance) TwinByName(name string) *Twin {
	for i := range d.Twins {
		if d.Twins[i].PropertyName == name {
			return &d.Twins[i]
		}
	}

	return nil
}

// MethodByName returns the named method, or nil.
func (d *DeviceInstance) MethodByName(name string) *DeviceMethod {
	for i := range d.Methods {
		if d.Methods[i].Name == name {
			return &d.Methods[i]
		}
	}

	return nil
}

// ResolveTwins re-links every twin to its property by index and synthesizes
// the pieces an instance needs to be reconcilable: an instance that arrives
// with properties but no twins gets one twin per property, and an instance
// without methods gets a SetProperty method covering every property.
func (d *DeviceInstance) ResolveTwins() {
	if len(d.Twins) == 0 && len(d.Properties) > 0 {
		d.Twins = make([]Twin, 0, len(d.Properties))
		for i := range d.Properties {
			d.Twins = append(d.Twins, Twin{PropertyName: d.Properties[i].Name})
		}
	}

	for i := range d.Twins {
		d.Twins[i].Property = d.PropertyIndex(d.Twins[i].PropertyName)
	}

	if len(d.Methods) == 0 && len(d.Properties) > 0 {
		names := make([]string, 0, len(d.Properties))
		for i := range d.Properties {
			names = append(names, d.Properties[i].Name)
		}

		d.Methods = []DeviceMethod{{
			Name:          SetPropertyMethod,
			Description:   "set a writable device property",
			PropertyNames: names,
		}}
	}
}

// NamespaceOrDefault normalizes a namespace: empty strings and strings with
// no printable byte collapse to DefaultNamespace.
func NamespaceOrDefault(namespace string) string {
	for _, r := range namespace {
		if unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return namespace
		}
	}

	return DefaultNamespace
}
