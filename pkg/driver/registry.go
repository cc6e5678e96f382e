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

package driver

import (
	"errors"
	"fmt"
	"sync"

	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
)

var errNoFactory = errors.New("no driver factory registered")

// Registry maps protocol names to driver factories. A fallback factory, when
// set, serves any protocol without a registered factory.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	fallback  Factory
}

// NewRegistry creates an empty driver registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register installs a factory for a protocol name.
func (r *Registry) Register(protocolName string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[protocolName] = factory
}

// RegisterFallback installs the factory used for unknown protocols.
func (r *Registry) RegisterFallback(factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fallback = factory
}

// Protocols lists the registered protocol names.
func (r *Registry) Protocols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	return names
}

// New builds a client for the instance's protocol.
func (r *Registry) New(protocol models.ProtocolConfig, log logger.Logger) (Client, error) {
	r.mu.RLock()
	factory, ok := r.factories[protocol.ProtocolName]

	if !ok {
		factory = r.fallback
	}
	r.mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("%w for protocol %q", errNoFactory, protocol.ProtocolName)
	}

	return factory(protocol, log)
}
