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

// Package device implements the per-device reconciliation runtime: one
// driver client, one background loop, and the twin state machine tying
// desired values to observed device state.
package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/edgemapper/pkg/driver"
	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
	"github.com/carverauto/edgemapper/pkg/sink"
)

const (
	// reconcileInterval is the coarse loop tick. Per-property collect and
	// report cycles are carried on the instance but not yet scheduled
	// individually.
	reconcileInterval = time.Second

	// stopJoinTimeout bounds how long Stop waits for the loop to observe
	// the stop latch before cancelling it.
	stopJoinTimeout = 500 * time.Millisecond
)

// Reporter surfaces device state and reported values to the control plane.
// All reporting is best effort; the runtime logs failures and keeps going.
type Reporter interface {
	ReportDeviceStates(ctx context.Context, namespace, name, state string) error
	ReportTwinKV(ctx context.Context, namespace, name, property, value, valueType string) error
}

// Publishers resolves push channels dynamically by method name and config.
type Publishers interface {
	PublishDynamic(ctx context.Context, methodName string, config []byte, payload *sink.Payload) error
}

// Device is one managed device: the instance spec, its driver client, and
// the reconciliation task that keeps them aligned. One mutex guards all
// mutable state and is held for an entire tick, so RPC-driven writes
// serialize against the loop.
type Device struct {
	mu       sync.Mutex
	instance *models.DeviceInstance
	model    *models.DeviceModel
	client   driver.Client

	reporter   Reporter
	recorders  *sink.Recorders
	publishers Publishers

	clock  Clock
	logger logger.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	cancel    context.CancelFunc

	started    bool
	stopped    bool
	removing   bool
	lastStatus string
}

// Options carries the collaborators a runtime needs beyond its spec.
type Options struct {
	Reporter   Reporter
	Recorders  *sink.Recorders
	Publishers Publishers
	Clock      Clock
	Logger     logger.Logger
}

// New builds a runtime for one instance/model pair. The instance is owned by
// the returned Device from here on.
func New(instance *models.DeviceInstance, model *models.DeviceModel, client driver.Client, opts Options) *Device {
	clock := opts.Clock
	if clock == nil {
		clock = realClock{}
	}

	return &Device{
		instance:   instance,
		model:      model,
		client:     client,
		reporter:   opts.Reporter,
		recorders:  opts.Recorders,
		publishers: opts.Publishers,
		clock:      clock,
		logger: logger.Wrap(opts.Logger.With().
			Str("device", instance.CanonicalID()).
			Logger()),
		done: make(chan struct{}),
	}
}

// ID returns the canonical "<namespace>/<name>" identity.
func (d *Device) ID() string {
	return d.instance.CanonicalID()
}

// Name returns the short device name.
func (d *Device) Name() string {
	return d.instance.Name
}

// Instance returns the owned instance spec. Callers must not retain pointers
// into it across runtime restarts.
func (d *Device) Instance() *models.DeviceInstance {
	return d.instance
}

// Model returns the model the instance references, or nil.
func (d *Device) Model() *models.DeviceModel {
	return d.model
}

// MarkRemoving flags the device as being torn down so late reports are
// suppressed.
func (d *Device) MarkRemoving() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.removing = true
}

// Start synthesizes missing twins and methods, initializes the driver, and
// launches the reconciliation loop. Driver init failure reports the device
// offline and aborts the runtime.
func (d *Device) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return nil
	}

	d.instance.ResolveTwins()
	d.bindRecorders()

	if err := d.client.Init(); err != nil {
		d.instance.Status = models.StatusOffline
		d.reportStatusLocked(ctx, models.StatusOffline)

		return fmt.Errorf("driver init failed for %s: %w", d.instance.CanonicalID(), err)
	}

	// Forced initial report so the control plane sees the device even if
	// the status never changes afterwards.
	status := d.probeStatusLocked()
	d.instance.Status = status
	d.lastStatus = status
	d.reportStatusLocked(ctx, status)

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	d.started = true

	d.wg.Add(1)

	go d.run(loopCtx)

	return nil
}

func (d *Device) run(ctx context.Context) {
	defer d.wg.Done()

	ticker := d.clock.Ticker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			return
		case <-ticker.Chan():
			d.reconcile(ctx)
		}
	}
}

// reconcile runs one tick under the device mutex: status probe first, then,
// only while the device is ok, a read/record/publish/report pass per twin
// followed by desired-state reconciliation.
func (d *Device) reconcile(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	status := d.probeStatusLocked()
	d.instance.Status = status

	if status != d.lastStatus {
		d.lastStatus = status
		d.reportStatusLocked(ctx, status)
	}

	if status != models.StatusOK {
		return
	}

	for i := range d.instance.Twins {
		d.pollTwinLocked(ctx, &d.instance.Twins[i])
		d.dealTwinLocked(ctx, &d.instance.Twins[i])
	}
}

func (d *Device) probeStatusLocked() string {
	raw, err := d.client.GetState()
	if err != nil {
		d.logger.Warn().Err(err).Msg("status probe failed")
		return models.StatusOffline
	}

	return models.NormalizeStatus(raw)
}

func (d *Device) reportStatusLocked(ctx context.Context, status string) {
	if d.removing || d.reporter == nil {
		return
	}

	if err := d.reporter.ReportDeviceStates(ctx, d.instance.Namespace, d.instance.Name, status); err != nil {
		d.logger.Warn().Err(err).Str("status", status).Msg("failed to report device state")
	}

	if err := d.reporter.ReportTwinKV(ctx, d.instance.Namespace, d.instance.Name, "status", status, "string"); err != nil {
		d.logger.Warn().Err(err).Msg("failed to report status twin")
	}
}

// pollTwinLocked reads the property and fans the sample out in fixed order:
// recorder, publisher, twin-KV report.
func (d *Device) pollTwinLocked(ctx context.Context, twin *models.Twin) {
	visitor := d.visitorForLocked(twin)
	if visitor == nil {
		return
	}

	data, err := d.client.Read(ctx, visitor)
	if err != nil {
		d.logger.Warn().Err(err).Str("property", twin.PropertyName).Msg("property read failed")
		return
	}

	value := string(data)
	now := d.clock.Now().UnixMilli()

	twin.Reported = models.TwinValue{
		Value: value,
		Metadata: models.ValueMetadata{
			Timestamp: now,
			Type:      "string",
		},
	}

	prop := d.propertyForLocked(twin)
	if prop != nil && prop.PushMethod != nil {
		d.fanOutLocked(ctx, prop, twin.PropertyName, value, now)
	}

	if d.reporter != nil && !d.removing {
		err := d.reporter.ReportTwinKV(ctx, d.instance.Namespace, d.instance.Name, twin.PropertyName, value, "string")
		if err != nil {
			d.logger.Warn().Err(err).Str("property", twin.PropertyName).Msg("failed to report twin value")
		}
	}
}

func (d *Device) fanOutLocked(ctx context.Context, prop *models.DeviceProperty, property, value string, tsMillis int64) {
	push := prop.PushMethod

	if rec := d.recorders.ForMethod(push.DBMethodName); rec != nil {
		err := rec.Record(ctx, d.instance.Namespace, d.instance.Name, property, value, tsMillis)
		if err != nil {
			d.logger.Warn().Err(err).
				Str("property", property).
				Str("backend", push.DBMethodName).
				Msg("recorder write failed")
		}
	}

	if d.publishers != nil && push.MethodName != "" && push.MethodName != sink.PushMethodUnknown {
		payload := &sink.Payload{
			DeviceName:   d.instance.Name,
			Namespace:    d.instance.Namespace,
			PropertyName: property,
			Value:        value,
			Type:         "string",
			Timestamp:    tsMillis,
		}

		if err := d.publishers.PublishDynamic(ctx, push.MethodName, push.MethodConfig, payload); err != nil {
			d.logger.Warn().Err(err).
				Str("property", property).
				Str("method", push.MethodName).
				Msg("publish failed")
		}
	}
}

// bindRecorders pushes each property's DB config into the matching recorder
// before the loop starts so the first Record does not pay the lazy-init path.
func (d *Device) bindRecorders() {
	for i := range d.instance.Properties {
		push := d.instance.Properties[i].PushMethod
		if push == nil || push.DBMethodName == "" {
			continue
		}

		rec := d.recorders.ForMethod(push.DBMethodName)
		if rec == nil {
			continue
		}

		if err := rec.SetDB(push.DBConfig); err != nil {
			d.logger.Warn().Err(err).
				Str("backend", push.DBMethodName).
				Str("property", d.instance.Properties[i].Name).
				Msg("recorder configuration failed")
		}
	}
}

// Stop latches the loop closed, stops the driver, and reports the device
// offline. The loop gets stopJoinTimeout to observe the latch before being
// cancelled.
func (d *Device) Stop(ctx context.Context) {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.stopped = true

	d.closeOnce.Do(func() { close(d.done) })

	if err := d.client.Stop(); err != nil {
		d.logger.Warn().Err(err).Msg("driver stop failed")
	}

	d.instance.Status = models.StatusOffline
	d.lastStatus = models.StatusOffline
	d.reportStatusLocked(ctx, models.StatusOffline)

	d.mu.Unlock()

	if !d.waitLoop(stopJoinTimeout) {
		if d.cancel != nil {
			d.cancel()
		}

		d.wg.Wait()
	}
}

func (d *Device) waitLoop(timeout time.Duration) bool {
	ch := make(chan struct{})

	go func() {
		d.wg.Wait()
		close(ch)
	}()

	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Free releases the driver client. Only call after Stop; the registry's
// detach flow owns this ordering.
func (d *Device) Free() {
	d.client.Free()
}

func (d *Device) propertyForLocked(twin *models.Twin) *models.DeviceProperty {
	if twin.Property >= 0 && twin.Property < len(d.instance.Properties) {
		return &d.instance.Properties[twin.Property]
	}

	return d.instance.PropertyByName(twin.PropertyName)
}
