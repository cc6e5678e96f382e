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

package dmserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/carverauto/edgemapper/pkg/device"
	"github.com/carverauto/edgemapper/pkg/driver"
	"github.com/carverauto/edgemapper/pkg/driver/virtual"
	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
	"github.com/carverauto/edgemapper/pkg/registry"
	"github.com/carverauto/edgemapper/proto"
)

func newTestService(t *testing.T) (*Service, *registry.Registry) {
	t.Helper()

	log := logger.NewTestLogger()

	drivers := driver.NewRegistry()
	drivers.Register(virtual.ProtocolName, virtual.Factory)
	drivers.RegisterFallback(virtual.Factory)

	reg := registry.New(log)
	t.Cleanup(func() { reg.StopAll(context.Background()) })

	manager := NewManager(reg, drivers, device.Options{Logger: log}, nil, log)

	return NewService(manager, reg, log), reg
}

func wireDevice(name string) *proto.Device {
	return &proto.Device{
		Name:      name,
		Namespace: "factory",
		Spec: &proto.DeviceSpec{
			Protocol: &proto.ProtocolConfig{ProtocolName: virtual.ProtocolName},
			Properties: []*proto.DeviceProperty{
				{Name: "temperature"},
			},
		},
	}
}

func TestRegisterDeviceStartsRuntime(t *testing.T) {
	svc, reg := newTestService(t)

	resp, err := svc.RegisterDevice(context.Background(), &proto.RegisterDeviceRequest{
		Device: wireDevice("sensor-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "sensor-1", resp.DeviceName)
	assert.Equal(t, "factory", resp.Namespace)

	dev, err := reg.Get("factory/sensor-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, dev.Status())
}

func TestRegisterDeviceNilRequest(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RegisterDevice(context.Background(), &proto.RegisterDeviceRequest{})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestUpdateDeviceReplacesRuntime(t *testing.T) {
	svc, reg := newTestService(t)

	_, err := svc.RegisterDevice(context.Background(), &proto.RegisterDeviceRequest{
		Device: wireDevice("sensor-1"),
	})
	require.NoError(t, err)

	first, err := reg.Get("factory/sensor-1")
	require.NoError(t, err)

	_, err = svc.UpdateDevice(context.Background(), &proto.UpdateDeviceRequest{
		Device: wireDevice("sensor-1"),
	})
	require.NoError(t, err)

	second, err := reg.Get("factory/sensor-1")
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	// No duplicate runtime lingers after the replacement.
	assert.Len(t, reg.Devices(), 1)
}

func TestUpdateDeviceCarriesDesiredTwins(t *testing.T) {
	svc, reg := newTestService(t)

	pd := wireDevice("sensor-1")
	pd.Status = &proto.DeviceStatus{
		Twins: []*proto.Twin{
			{
				PropertyName:    "temperature",
				ObservedDesired: &proto.TwinProperty{Value: "25"},
			},
		},
	}

	_, err := svc.UpdateDevice(context.Background(), &proto.UpdateDeviceRequest{Device: pd})
	require.NoError(t, err)

	dev, err := reg.Get("factory/sensor-1")
	require.NoError(t, err)

	twins := dev.SnapshotTwins()
	require.Len(t, twins, 1)
	assert.Equal(t, "25", twins[0].ObservedDesired.Value)
}

func TestRemoveDevice(t *testing.T) {
	svc, reg := newTestService(t)

	_, err := svc.RegisterDevice(context.Background(), &proto.RegisterDeviceRequest{
		Device: wireDevice("sensor-1"),
	})
	require.NoError(t, err)

	_, err = svc.RemoveDevice(context.Background(), &proto.RemoveDeviceRequest{
		DeviceName: "sensor-1",
		Namespace:  "factory",
	})
	require.NoError(t, err)

	_, err = reg.Get("factory/sensor-1")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestRemoveUnknownDevice(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RemoveDevice(context.Background(), &proto.RemoveDeviceRequest{
		DeviceName: "missing",
		Namespace:  "factory",
	})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestDeviceModelLifecycle(t *testing.T) {
	svc, reg := newTestService(t)

	resp, err := svc.CreateDeviceModel(context.Background(), &proto.CreateDeviceModelRequest{
		Model: &proto.DeviceModel{
			Name:      "thermostat",
			Namespace: "factory",
			Spec: &proto.DeviceModelSpec{
				Properties: []*proto.ModelProperty{
					{Name: "temperature", Type: "float", Maximum: "35"},
				},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "thermostat", resp.ModelName)
	require.NotNil(t, reg.Model("factory/thermostat"))

	// A device referencing the model gets its properties linked.
	pd := wireDevice("sensor-1")
	pd.Spec.DeviceModelReference = "thermostat"

	_, err = svc.RegisterDevice(context.Background(), &proto.RegisterDeviceRequest{Device: pd})
	require.NoError(t, err)

	dev, err := reg.Get("factory/sensor-1")
	require.NoError(t, err)
	require.NotNil(t, dev.Instance().Properties[0].ModelProperty)
	assert.Equal(t, "35", dev.Instance().Properties[0].ModelProperty.Maximum)

	_, err = svc.RemoveDeviceModel(context.Background(), &proto.RemoveDeviceModelRequest{
		ModelName: "thermostat",
		Namespace: "factory",
	})
	require.NoError(t, err)
	assert.Nil(t, reg.Model("factory/thermostat"))
}

func TestCreateDeviceModelNilRequest(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateDeviceModel(context.Background(), &proto.CreateDeviceModelRequest{})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGetDevice(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RegisterDevice(context.Background(), &proto.RegisterDeviceRequest{
		Device: wireDevice("sensor-1"),
	})
	require.NoError(t, err)

	resp, err := svc.GetDevice(context.Background(), &proto.GetDeviceRequest{
		DeviceName: "sensor-1",
		Namespace:  "factory",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Device)
	assert.Equal(t, "sensor-1", resp.Device.Name)
	require.NotNil(t, resp.Device.Status)
	assert.Equal(t, models.StatusOK, resp.Device.Status.State)
	require.Len(t, resp.Device.Status.Twins, 1)
	assert.Equal(t, "temperature", resp.Device.Status.Twins[0].PropertyName)
}

func TestGetUnknownDevice(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetDevice(context.Background(), &proto.GetDeviceRequest{
		DeviceName: "missing",
		Namespace:  "factory",
	})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
