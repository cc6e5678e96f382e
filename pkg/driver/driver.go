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

// Package driver defines the protocol-agnostic surface every concrete
// protocol implementation exposes to the device runtime.
package driver

//go:generate mockgen -destination=mock_driver.go -package=driver github.com/carverauto/edgemapper/pkg/driver Client

import (
	"context"
	"encoding/json"

	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
)

// Visitor carries the property-specific addressing hint passed to a driver
// on every read and write.
type Visitor struct {
	PropertyName string          `json:"propertyName"`
	ProtocolName string          `json:"protocolName,omitempty"`
	ConfigData   json.RawMessage `json:"configData,omitempty"`

	// Offset is the resolved register/address offset for the property.
	Offset int `json:"offset,omitempty"`
}

// Client is one connection to one physical or virtual device. A client owns
// its own mutual exclusion for reads and writes; it is the only component
// allowed to touch device-specific resources.
type Client interface {
	// Init establishes the device connection.
	Init() error

	// Read fetches the raw value addressed by the visitor.
	Read(ctx context.Context, visitor *Visitor) ([]byte, error)

	// Write pushes a value to the address the visitor names.
	Write(ctx context.Context, visitor *Visitor, value string) error

	// GetState returns the raw device status string; the runtime
	// normalizes it.
	GetState() (string, error)

	// Stop terminates ongoing device communication.
	Stop() error

	// Free releases all client resources. No method may be called after.
	Free()
}

// Factory builds a Client from an instance's protocol config.
type Factory func(protocol models.ProtocolConfig, log logger.Logger) (Client, error)
