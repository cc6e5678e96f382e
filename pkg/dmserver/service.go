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
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
	"github.com/carverauto/edgemapper/pkg/registry"
	"github.com/carverauto/edgemapper/pkg/wire"
	"github.com/carverauto/edgemapper/proto"
)

var errNilRequestDevice = errors.New("request carries no device")

// Service implements the DeviceManagerService RPC surface over a Manager.
type Service struct {
	manager  *Manager
	registry *registry.Registry
	logger   logger.Logger
}

// NewService builds the RPC service.
func NewService(manager *Manager, reg *registry.Registry, log logger.Logger) *Service {
	return &Service{manager: manager, registry: reg, logger: log}
}

// RegisterDevice builds and starts a runtime for a new device.
func (s *Service) RegisterDevice(ctx context.Context, req *proto.RegisterDeviceRequest) (*proto.RegisterDeviceResponse, error) {
	inst, model, err := s.parseDevice(req.GetDevice())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.logger.Info().Str("device", inst.CanonicalID()).Msg("RegisterDevice")

	if err := s.manager.UpdateDev(ctx, model, inst); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &proto.RegisterDeviceResponse{
		DeviceName: inst.Name,
		Namespace:  inst.Namespace,
	}, nil
}

// UpdateDevice replaces the runtime for an existing device.
func (s *Service) UpdateDevice(ctx context.Context, req *proto.UpdateDeviceRequest) (*proto.UpdateDeviceResponse, error) {
	inst, model, err := s.parseDevice(req.GetDevice())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.logger.Info().Str("device", inst.CanonicalID()).Msg("UpdateDevice")

	if err := s.manager.UpdateDev(ctx, model, inst); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &proto.UpdateDeviceResponse{}, nil
}

// RemoveDevice stops and frees a managed device.
func (s *Service) RemoveDevice(ctx context.Context, req *proto.RemoveDeviceRequest) (*proto.RemoveDeviceResponse, error) {
	id := models.CanonicalID(req.GetNamespace(), req.GetDeviceName())

	s.logger.Info().Str("device", id).Msg("RemoveDevice")

	if err := s.manager.RemoveDev(ctx, id); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, status.Error(codes.NotFound, err.Error())
		}

		return nil, status.Error(codes.Internal, err.Error())
	}

	return &proto.RemoveDeviceResponse{}, nil
}

// CreateDeviceModel installs a model.
func (s *Service) CreateDeviceModel(_ context.Context, req *proto.CreateDeviceModelRequest) (*proto.CreateDeviceModelResponse, error) {
	model := wire.ParseDeviceModel(req.GetModel())
	if model == nil {
		return nil, status.Error(codes.InvalidArgument, "request carries no model")
	}

	s.logger.Info().Str("model", model.CanonicalID()).Msg("CreateDeviceModel")
	s.manager.UpdateModel(model)

	return &proto.CreateDeviceModelResponse{ModelName: model.Name}, nil
}

// UpdateDeviceModel replaces a model.
func (s *Service) UpdateDeviceModel(_ context.Context, req *proto.UpdateDeviceModelRequest) (*proto.UpdateDeviceModelResponse, error) {
	model := wire.ParseDeviceModel(req.GetModel())
	if model == nil {
		return nil, status.Error(codes.InvalidArgument, "request carries no model")
	}

	s.logger.Info().Str("model", model.CanonicalID()).Msg("UpdateDeviceModel")
	s.manager.UpdateModel(model)

	return &proto.UpdateDeviceModelResponse{}, nil
}

// RemoveDeviceModel removes a model by namespace and name.
func (s *Service) RemoveDeviceModel(_ context.Context, req *proto.RemoveDeviceModelRequest) (*proto.RemoveDeviceModelResponse, error) {
	id := models.CanonicalID(req.GetNamespace(), req.GetModelName())

	s.logger.Info().Str("model", id).Msg("RemoveDeviceModel")
	s.manager.RemoveModel(id)

	return &proto.RemoveDeviceModelResponse{}, nil
}

// GetDevice returns the status envelope for a managed device, twins
// included.
func (s *Service) GetDevice(_ context.Context, req *proto.GetDeviceRequest) (*proto.GetDeviceResponse, error) {
	id := models.CanonicalID(req.GetNamespace(), req.GetDeviceName())

	dev, err := s.registry.Get(id)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}

	// Shallow copy with a consistent twin snapshot so the reply never
	// races the reconciliation loop.
	inst := *dev.Instance()
	inst.Twins = dev.SnapshotTwins()
	inst.Status = dev.Status()

	return &proto.GetDeviceResponse{
		Device: wire.DeviceToProto(&inst, true),
	}, nil
}

// parseDevice lowers the wire device into internal form, resolving the model
// it references from the registry catalog.
func (s *Service) parseDevice(pd *proto.Device) (*models.DeviceInstance, *models.DeviceModel, error) {
	if pd == nil {
		return nil, nil, errNilRequestDevice
	}

	var model *models.DeviceModel

	if pd.Spec != nil && pd.Spec.DeviceModelReference != "" {
		ns := models.NamespaceOrDefault(pd.Namespace)
		model = s.registry.Model(models.CanonicalID(ns, pd.Spec.DeviceModelReference))
	}

	inst, err := wire.ParseDevice(pd, model)
	if err != nil {
		return nil, nil, err
	}

	return inst, model, nil
}
