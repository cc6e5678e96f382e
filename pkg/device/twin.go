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

package device

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/carverauto/edgemapper/pkg/models"
)

var (
	errEmptyValue      = errors.New("empty value")
	errUnknownTwin     = errors.New("no twin for property")
	errUnknownProperty = errors.New("twin references unknown property")
)

// dealTwinLocked reconciles one twin: when the observed desired value is set
// and differs from the reported value, write it through the driver and
// refresh the reported side. A failed write leaves desired != reported so the
// next tick retries.
func (d *Device) dealTwinLocked(ctx context.Context, twin *models.Twin) {
	desired := twin.ObservedDesired.Value
	if desired == "" || desired == twin.Reported.Value {
		return
	}

	visitor := d.visitorForLocked(twin)
	if visitor == nil {
		return
	}

	if err := d.client.Write(ctx, visitor, desired); err != nil {
		d.logger.Warn().Err(err).Str("property", twin.PropertyName).Msg("desired-state write failed")
		return
	}

	now := d.clock.Now().UnixMilli()

	// Refresh reported by reading back; fall back to the desired value
	// optimistically when the read fails.
	value := desired

	if data, err := d.client.Read(ctx, visitor); err == nil {
		value = string(data)
	} else {
		d.logger.Warn().Err(err).Str("property", twin.PropertyName).Msg("read-back after write failed")
	}

	twin.Reported = models.TwinValue{
		Value:    value,
		Metadata: models.ValueMetadata{Timestamp: now, Type: "string"},
	}
}

// ValidateData checks a candidate value for a twin's property. Empty values
// are rejected; model range bounds are advisory and only logged.
func (d *Device) ValidateData(twin *models.Twin, value string) error {
	if value == "" {
		return errEmptyValue
	}

	prop := d.propertyForLocked(twin)
	if prop == nil || prop.ModelProperty == nil {
		return nil
	}

	mp := prop.ModelProperty
	if mp.Minimum == "" && mp.Maximum == "" {
		return nil
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}

	if mp.Minimum != "" {
		if minV, err := strconv.ParseFloat(mp.Minimum, 64); err == nil && v < minV {
			d.logger.Warn().
				Str("property", twin.PropertyName).
				Str("value", value).
				Str("minimum", mp.Minimum).
				Msg("value below model minimum")
		}
	}

	if mp.Maximum != "" {
		if maxV, err := strconv.ParseFloat(mp.Maximum, 64); err == nil && v > maxV {
			d.logger.Warn().
				Str("property", twin.PropertyName).
				Str("value", value).
				Str("maximum", mp.Maximum).
				Msg("value above model maximum")
		}
	}

	return nil
}

// Set is the admin write path: validate, write through the driver, read back,
// update the twin, and return the observed (or echoed) value.
func (d *Device) Set(ctx context.Context, propertyName, value string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	twin := d.instance.TwinByName(propertyName)
	if twin == nil {
		return "", fmt.Errorf("%w: %s", errUnknownTwin, propertyName)
	}

	if err := d.ValidateData(twin, value); err != nil {
		return "", fmt.Errorf("invalid value for %s: %w", propertyName, err)
	}

	visitor := d.visitorForLocked(twin)
	if visitor == nil {
		return "", fmt.Errorf("%w: %s", errUnknownProperty, propertyName)
	}

	if err := d.client.Write(ctx, visitor, value); err != nil {
		return "", fmt.Errorf("write failed for %s: %w", propertyName, err)
	}

	observed := value

	if data, err := d.client.Read(ctx, visitor); err == nil {
		observed = string(data)
	} else {
		d.logger.Warn().Err(err).Str("property", propertyName).Msg("read-back after set failed")
	}

	now := d.clock.Now().UnixMilli()

	twin.ObservedDesired = models.TwinValue{
		Value:    value,
		Metadata: models.ValueMetadata{Timestamp: now, Type: "string"},
	}
	twin.Reported = models.TwinValue{
		Value:    observed,
		Metadata: models.ValueMetadata{Timestamp: now, Type: "string"},
	}

	return observed, nil
}

// ReportedValue returns the current reported value for a property.
func (d *Device) ReportedValue(propertyName string) (models.TwinValue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	twin := d.instance.TwinByName(propertyName)
	if twin == nil {
		return models.TwinValue{}, fmt.Errorf("%w: %s", errUnknownTwin, propertyName)
	}

	return twin.Reported, nil
}

// SetDesired records a desired value for the loop to reconcile on its next
// tick. Used by control-plane updates that carry twin state.
func (d *Device) SetDesired(propertyName, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	twin := d.instance.TwinByName(propertyName)
	if twin == nil {
		return fmt.Errorf("%w: %s", errUnknownTwin, propertyName)
	}

	twin.ObservedDesired = models.TwinValue{
		Value:    value,
		Metadata: models.ValueMetadata{Timestamp: d.clock.Now().UnixMilli(), Type: "string"},
	}

	return nil
}

// SnapshotTwins returns a copy of the current twins, taken under the device
// mutex so readers never race the loop.
func (d *Device) SnapshotTwins() []models.Twin {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]models.Twin, len(d.instance.Twins))
	copy(out, d.instance.Twins)

	return out
}

// Status returns the last normalized device status.
func (d *Device) Status() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.instance.Status == "" {
		return models.StatusUnknown
	}

	return d.instance.Status
}
