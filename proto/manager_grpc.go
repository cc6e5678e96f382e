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

package proto

import (
	"context"

	"google.golang.org/grpc"
)

// DeviceManagerService is served by the mapper. The control plane calls it
// to mutate the set of managed devices and models.

const (
	DeviceManagerService_RegisterDevice_FullMethodName    = "/v1.DeviceManagerService/RegisterDevice"
	DeviceManagerService_RemoveDevice_FullMethodName      = "/v1.DeviceManagerService/RemoveDevice"
	DeviceManagerService_UpdateDevice_FullMethodName      = "/v1.DeviceManagerService/UpdateDevice"
	DeviceManagerService_CreateDeviceModel_FullMethodName = "/v1.DeviceManagerService/CreateDeviceModel"
	DeviceManagerService_UpdateDeviceModel_FullMethodName = "/v1.DeviceManagerService/UpdateDeviceModel"
	DeviceManagerService_RemoveDeviceModel_FullMethodName = "/v1.DeviceManagerService/RemoveDeviceModel"
	DeviceManagerService_GetDevice_FullMethodName         = "/v1.DeviceManagerService/GetDevice"
)

// DeviceManagerServiceClient is the client API for DeviceManagerService.
type DeviceManagerServiceClient interface {
	RegisterDevice(ctx context.Context, in *RegisterDeviceRequest, opts ...grpc.CallOption) (*RegisterDeviceResponse, error)
	RemoveDevice(ctx context.Context, in *RemoveDeviceRequest, opts ...grpc.CallOption) (*RemoveDeviceResponse, error)
	UpdateDevice(ctx context.Context, in *UpdateDeviceRequest, opts ...grpc.CallOption) (*UpdateDeviceResponse, error)
	CreateDeviceModel(ctx context.Context, in *CreateDeviceModelRequest, opts ...grpc.CallOption) (*CreateDeviceModelResponse, error)
	UpdateDeviceModel(ctx context.Context, in *UpdateDeviceModelRequest, opts ...grpc.CallOption) (*UpdateDeviceModelResponse, error)
	RemoveDeviceModel(ctx context.Context, in *RemoveDeviceModelRequest, opts ...grpc.CallOption) (*RemoveDeviceModelResponse, error)
	GetDevice(ctx context.Context, in *GetDeviceRequest, opts ...grpc.CallOption) (*GetDeviceResponse, error)
}

type deviceManagerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDeviceManagerServiceClient creates a client over an existing connection.
func NewDeviceManagerServiceClient(cc grpc.ClientConnInterface) DeviceManagerServiceClient {
	return &deviceManagerServiceClient{cc}
}

func (c *deviceManagerServiceClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *deviceManagerServiceClient) RegisterDevice(ctx context.Context, in *RegisterDeviceRequest, opts ...grpc.CallOption) (*RegisterDeviceResponse, error) {
	out := new(RegisterDeviceResponse)
	if err := c.invoke(ctx, DeviceManagerService_RegisterDevice_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *deviceManagerServiceClient) RemoveDevice(ctx context.Context, in *RemoveDeviceRequest, opts ...grpc.CallOption) (*RemoveDeviceResponse, error) {
	out := new(RemoveDeviceResponse)
	if err := c.invoke(ctx, DeviceManagerService_RemoveDevice_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *deviceManagerServiceClient) UpdateDevice(ctx context.Context, in *UpdateDeviceRequest, opts ...grpc.CallOption) (*UpdateDeviceResponse, error) {
	out := new(UpdateDeviceResponse)
	if err := c.invoke(ctx, DeviceManagerService_UpdateDevice_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *deviceManagerServiceClient) CreateDeviceModel(ctx context.Context, in *CreateDeviceModelRequest, opts ...grpc.CallOption) (*CreateDeviceModelResponse, error) {
	out := new(CreateDeviceModelResponse)
	if err := c.invoke(ctx, DeviceManagerService_CreateDeviceModel_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *deviceManagerServiceClient) UpdateDeviceModel(ctx context.Context, in *UpdateDeviceModelRequest, opts ...grpc.CallOption) (*UpdateDeviceModelResponse, error) {
	out := new(UpdateDeviceModelResponse)
	if err := c.invoke(ctx, DeviceManagerService_UpdateDeviceModel_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *deviceManagerServiceClient) RemoveDeviceModel(ctx context.Context, in *RemoveDeviceModelRequest, opts ...grpc.CallOption) (*RemoveDeviceModelResponse, error) {
	out := new(RemoveDeviceModelResponse)
	if err := c.invoke(ctx, DeviceManagerService_RemoveDeviceModel_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *deviceManagerServiceClient) GetDevice(ctx context.Context, in *GetDeviceRequest, opts ...grpc.CallOption) (*GetDeviceResponse, error) {
	out := new(GetDeviceResponse)
	if err := c.invoke(ctx, DeviceManagerService_GetDevice_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

// DeviceManagerServiceServer is the server API for DeviceManagerService.
type DeviceManagerServiceServer interface {
	RegisterDevice(context.Context, *RegisterDeviceRequest) (*RegisterDeviceResponse, error)
	RemoveDevice(context.Context, *RemoveDeviceRequest) (*RemoveDeviceResponse, error)
	UpdateDevice(context.Context, *UpdateDeviceRequest) (*UpdateDeviceResponse, error)
	CreateDeviceModel(context.Context, *CreateDeviceModelRequest) (*CreateDeviceModelResponse, error)
	UpdateDeviceModel(context.Context, *UpdateDeviceModelRequest) (*UpdateDeviceModelResponse, error)
	RemoveDeviceModel(context.Context, *RemoveDeviceModelRequest) (*RemoveDeviceModelResponse, error)
	GetDevice(context.Context, *GetDeviceRequest) (*GetDeviceResponse, error)
}

// RegisterDeviceManagerServiceServer registers the service implementation.
func RegisterDeviceManagerServiceServer(s grpc.ServiceRegistrar, srv DeviceManagerServiceServer) {
	s.RegisterService(&DeviceManagerService_ServiceDesc, srv)
}

func _DeviceManagerService_RegisterDevice_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RegisterDeviceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(DeviceManagerServiceServer).RegisterDevice(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeviceManagerService_RegisterDevice_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeviceManagerServiceServer).RegisterDevice(ctx, req.(*RegisterDeviceRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func _DeviceManagerService_RemoveDevice_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RemoveDeviceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(DeviceManagerServiceServer).RemoveDevice(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeviceManagerService_RemoveDevice_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeviceManagerServiceServer).RemoveDevice(ctx, req.(*RemoveDeviceRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func _DeviceManagerService_UpdateDevice_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpdateDeviceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(DeviceManagerServiceServer).UpdateDevice(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeviceManagerService_UpdateDevice_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeviceManagerServiceServer).UpdateDevice(ctx, req.(*UpdateDeviceRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func _DeviceManagerService_CreateDeviceModel_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateDeviceModelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(DeviceManagerServiceServer).CreateDeviceModel(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeviceManagerService_CreateDeviceModel_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeviceManagerServiceServer).CreateDeviceModel(ctx, req.(*CreateDeviceModelRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func _DeviceManagerService_UpdateDeviceModel_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpdateDeviceModelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(DeviceManagerServiceServer).UpdateDeviceModel(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeviceManagerService_UpdateDeviceModel_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeviceManagerServiceServer).UpdateDeviceModel(ctx, req.(*UpdateDeviceModelRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func _DeviceManagerService_RemoveDeviceModel_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RemoveDeviceModelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(DeviceManagerServiceServer).RemoveDeviceModel(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeviceManagerService_RemoveDeviceModel_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeviceManagerServiceServer).RemoveDeviceModel(ctx, req.(*RemoveDeviceModelRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func _DeviceManagerService_GetDevice_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetDeviceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(DeviceManagerServiceServer).GetDevice(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeviceManagerService_GetDevice_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeviceManagerServiceServer).GetDevice(ctx, req.(*GetDeviceRequest))
	}

	return interceptor(ctx, in, info, handler)
}

// DeviceManagerService_ServiceDesc is the grpc.ServiceDesc for
// DeviceManagerService.
var DeviceManagerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "v1.DeviceManagerService",
	HandlerType: (*DeviceManagerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterDevice", Handler: _DeviceManagerService_RegisterDevice_Handler},
		{MethodName: "RemoveDevice", Handler: _DeviceManagerService_RemoveDevice_Handler},
		{MethodName: "UpdateDevice", Handler: _DeviceManagerService_UpdateDevice_Handler},
		{MethodName: "CreateDeviceModel", Handler: _DeviceManagerService_CreateDeviceModel_Handler},
		{MethodName: "UpdateDeviceModel", Handler: _DeviceManagerService_UpdateDeviceModel_Handler},
		{MethodName: "RemoveDeviceModel", Handler: _DeviceManagerService_RemoveDeviceModel_Handler},
		{MethodName: "GetDevice", Handler: _DeviceManagerService_GetDevice_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "devicemanager.proto",
}
