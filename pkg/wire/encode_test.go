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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/edgemapper/pkg/models"
)

func TestDeviceToProtoRoundTrip(t *testing.T) {
	inst := &models.DeviceInstance{
		Name:      "sensor-1",
		Namespace: "factory",
		Model:     "thermostat",
		Status:    models.StatusOK,
		Twins: []models.Twin{
			{
				PropertyName: "temperature",
				Reported: models.TwinValue{
					Value:    "21.5",
					Metadata: models.ValueMetadata{Timestamp: 1700000000000, Type: "string"},
				},
			},
		},
	}

	pd := DeviceToProto(inst, true)

	assert.Equal(t, "sensor-1", pd.Name)
	assert.Equal(t, "factory", pd.Namespace)
	require.NotNil(t, pd.Spec)
	assert.Equal(t, "thermostat", pd.Spec.DeviceModelReference)
	require.NotNil(t, pd.Status)
	assert.Equal(t, models.StatusOK, pd.Status.State)
	require.Len(t, pd.Status.Twins, 1)
	require.NotNil(t, pd.Status.Twins[0].Reported)
	assert.Equal(t, "21.5", pd.Status.Twins[0].Reported.Value)
	assert.Equal(t, "1700000000000", pd.Status.Twins[0].Reported.Metadata["timestamp"])

	// Re-parsing the encoded twins restores the internal values.
	twins := parseTwins(pd.Status.Twins)
	require.Len(t, twins, 1)
	assert.Equal(t, inst.Twins[0].Reported, twins[0].Reported)
}

func TestDeviceStatusWithoutTwins(t *testing.T) {
	inst := &models.DeviceInstance{
		Name:   "sensor-1",
		Status: models.StatusOffline,
		Twins:  []models.Twin{{PropertyName: "temperature"}},
	}

	status := DeviceStatus(inst, false)
	assert.Equal(t, models.StatusOffline, status.State)
	assert.Nil(t, status.Twins)
}

func TestTwinToProtoOmitsEmptySides(t *testing.T) {
	pt := TwinToProto(&models.Twin{
		PropertyName:    "temperature",
		ObservedDesired: models.TwinValue{Value: "25"},
	})

	require.NotNil(t, pt.ObservedDesired)
	assert.Equal(t, "25", pt.ObservedDesired.Value)
	assert.Nil(t, pt.Reported)
}

func TestReportedKV(t *testing.T) {
	pt := ReportedKV("temperature", "21.5", "string", 1700000000000)

	assert.Equal(t, "temperature", pt.PropertyName)
	require.NotNil(t, pt.Reported)
	assert.Equal(t, "21.5", pt.Reported.Value)
	assert.Equal(t, map[string]string{
		"timestamp": "1700000000000",
		"type":      "string",
	}, pt.Reported.Metadata)
	assert.Nil(t, pt.ObservedDesired)
}
