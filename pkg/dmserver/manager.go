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

// Package dmserver serves the device-management plane on a local UNIX-domain
// socket and applies its mutations to the registry and device runtimes.
package dmserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/carverauto/edgemapper/pkg/device"
	"github.com/carverauto/edgemapper/pkg/driver"
	"github.com/carverauto/edgemapper/pkg/events"
	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
	"github.com/carverauto/edgemapper/pkg/registry"
)

// Manager owns the runtime lifecycle: building a device from its spec,
// replacing a running device, and tearing one down. All mutations are
// detach-first so the registry never holds a half-replaced device.
type Manager struct {
	registry *registry.Registry
	drivers  *driver.Registry
	opts     device.Options
	events   *events.Publisher
	logger   logger.Logger
}

// NewManager wires the runtime collaborators. The event publisher may be
// disabled; lifecycle events are best effort either way.
func NewManager(reg *registry.Registry, drivers *driver.Registry, opts device.Options, ev *events.Publisher, log logger.Logger) *Manager {
	return &Manager{
		registry: reg,
		drivers:  drivers,
		opts:     opts,
		events:   ev,
		logger:   log,
	}
}

// BuildDevice constructs an unstarted runtime for an instance.
func (m *Manager) BuildDevice(inst *models.DeviceInstance, model *models.DeviceModel) (*device.Device, error) {
	client, err := m.drivers.New(inst.Protocol, m.opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build driver for %s: %w", inst.CanonicalID(), err)
	}

	return device.New(inst, model, client, m.opts), nil
}

// UpdateDev replaces any runtime with the instance's canonical identity:
// detach, stop, free, then build and start a fresh runtime. A start failure
// leaves the new runtime registered so a later update can replace it.
func (m *Manager) UpdateDev(ctx context.Context, model *models.DeviceModel, inst *models.DeviceInstance) error {
	if model != nil {
		m.registry.SetModel(model)
	}

	if old, err := m.registry.Detach(inst.CanonicalID()); err == nil {
		old.Stop(ctx)
		old.Free()
	}

	dev, err := m.BuildDevice(inst, model)
	if err != nil {
		return err
	}

	m.registry.Add(dev)

	if err := dev.Start(ctx); err != nil {
		m.logger.Error().Err(err).Str("device", inst.CanonicalID()).Msg("failed to start device")
		return err
	}

	if err := m.events.PublishDeviceLifecycle(ctx, inst.Namespace, inst.Name, "updated"); err != nil {
		m.logger.Warn().Err(err).Str("device", inst.CanonicalID()).Msg("lifecycle event publish failed")
	}

	return nil
}

// RemoveDev detaches a device, marks it removing so late reports are
// suppressed, then stops and frees it.
func (m *Manager) RemoveDev(ctx context.Context, id string) error {
	dev, err := m.registry.Detach(id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("cannot remove %s: %w", id, err)
		}

		return err
	}

	dev.MarkRemoving()
	dev.Stop(ctx)
	dev.Free()

	if err := m.events.PublishDeviceLifecycle(ctx, dev.Instance().Namespace, dev.Name(), "removed"); err != nil {
		m.logger.Warn().Err(err).Str("device", id).Msg("lifecycle event publish failed")
	}

	return nil
}

// UpdateModel installs or replaces a model.
func (m *Manager) UpdateModel(model *models.DeviceModel) {
	m.registry.SetModel(model)
}

// RemoveModel drops a model by canonical id. Running devices keep their
// already-linked model properties.
func (m *Manager) RemoveModel(id string) {
	m.registry.RemoveModel(id)
}
