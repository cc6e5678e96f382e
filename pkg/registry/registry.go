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

// Package registry tracks the active device runtimes and known device
// models. It is the single source of truth for what this mapper currently
// manages; the control plane remains the source of truth across restarts.
package registry

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/carverauto/edgemapper/pkg/device"
	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
)

// ErrNotFound is returned when no device matches a lookup id.
var ErrNotFound = errors.New("device not found")

// Registry is a thread-safe list of active devices plus the model catalog.
// The lock covers short critical sections only; it is never held across
// driver or sink calls, and no device is freed while it is held.
type Registry struct {
	mu      sync.RWMutex
	devices []*device.Device
	models  map[string]*models.DeviceModel
	stopped bool
	logger  logger.Logger
}

// New creates an empty registry.
func New(log logger.Logger) *Registry {
	return &Registry{
		models: make(map[string]*models.DeviceModel),
		logger: log,
	}
}

// Add appends a device. Callers replacing an existing runtime must Detach
// the old one first; Add performs no duplicate check.
func (r *Registry) Add(dev *device.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices = append(r.devices, dev)
}

// Get finds a device by canonical "<namespace>/<name>" identity. On a miss
// it retries matching only the suffix after the last '.' or '/', so short
// names and dotted admin-API ids also resolve.
func (r *Registry) Get(id string) (*device.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, dev := range r.devices {
		if dev.ID() == id {
			return dev, nil
		}
	}

	short := shortName(id)

	for _, dev := range r.devices {
		if dev.Name() == short {
			return dev, nil
		}
	}

	return nil, ErrNotFound
}

// Detach removes and returns a device without stopping or freeing it;
// ownership transfers to the caller.
func (r *Registry) Detach(id string) (*device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, dev := range r.devices {
		if dev.ID() == id {
			r.devices = append(r.devices[:i], r.devices[i+1:]...)
			return dev, nil
		}
	}

	short := shortName(id)

	for i, dev := range r.devices {
		if dev.Name() == short {
			r.devices = append(r.devices[:i], r.devices[i+1:]...)
			return dev, nil
		}
	}

	return nil, ErrNotFound
}

// Devices returns a snapshot of the current device list.
func (r *Registry) Devices() []*device.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*device.Device, len(r.devices))
	copy(out, r.devices)

	return out
}

// StartAll starts every registered device. Failures are logged; a device
// that fails to start stays registered so a later update can replace it.
func (r *Registry) StartAll(ctx context.Context) {
	for _, dev := range r.Devices() {
		if err := dev.Start(ctx); err != nil {
			r.logger.Error().Err(err).Str("device", dev.ID()).Msg("failed to start device")
		}
	}
}

// StopAll stops every device once; repeated calls are no-ops.
func (r *Registry) StopAll(ctx context.Context) {
	r.mu.Lock()

	if r.stopped {
		r.mu.Unlock()
		return
	}

	r.stopped = true
	devices := make([]*device.Device, len(r.devices))
	copy(devices, r.devices)
	r.mu.Unlock()

	for _, dev := range devices {
		dev.Stop(ctx)
	}
}

// SetModel stores or replaces a model under its canonical id.
func (r *Registry) SetModel(model *models.DeviceModel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.models[model.CanonicalID()] = model
}

// Model returns the model for a canonical id, or nil.
func (r *Registry) Model(id string) *models.DeviceModel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.models[id]
}

// RemoveModel deletes a model by canonical id.
func (r *Registry) RemoveModel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.models, id)
}

// shortName strips everything up to the last '.' or '/'.
func shortName(id string) string {
	if i := strings.LastIndexAny(id, "./"); i >= 0 {
		return id[i+1:]
	}

	return id
}
