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

// DeviceMapperService is served by the control plane. The mapper calls it to
// register itself and to report device state.

const (
	DeviceMapperService_MapperRegister_FullMethodName     = "/v1.DeviceMapperService/MapperRegister"
	DeviceMapperService_ReportDeviceStates_FullMethodName = "/v1.DeviceMapperService/ReportDeviceStates"
	DeviceMapperService_ReportDeviceStatus_FullMethodName = "/v1.DeviceMapperService/ReportDeviceStatus"
)

// DeviceMapperServiceClient is the client API for DeviceMapperService.
type DeviceMapperServiceClient interface {
	MapperRegister(ctx context.Context, in *MapperRegisterRequest, opts ...grpc.CallOption) (*MapperRegisterResponse, error)
	ReportDeviceStates(ctx context.Context, in *ReportDeviceStatesRequest, opts ...grpc.CallOption) (*ReportDeviceStatesResponse, error)
	ReportDeviceStatus(ctx context.Context, in *ReportDeviceStatusRequest, opts ...grpc.CallOption) (*ReportDeviceStatusResponse, error)
}

type deviceMapperServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDeviceMapperServiceClient creates a client over an existing connection.
func NewDeviceMapperServiceClient(cc grpc.ClientConnInterface) DeviceMapperServiceClient {
	return &deviceMapperServiceClient{cc}
}

func (c *deviceMapperServiceClient) MapperRegister(ctx context.Context, in *MapperRegisterRequest, opts ...grpc.CallOption) (*MapperRegisterResponse, error) {
	out := new(MapperRegisterResponse)

	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := c.cc.Invoke(ctx, DeviceMapperService_MapperRegister_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *deviceMapperServiceClient) ReportDeviceStates(ctx context.Context, in *ReportDeviceStatesRequest, opts ...grpc.CallOption) (*ReportDeviceStatesResponse, error) {
	out := new(ReportDeviceStatesResponse)

	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := c.cc.Invoke(ctx, DeviceMapperService_ReportDeviceStates_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *deviceMapperServiceClient) ReportDeviceStatus(ctx context.Context, in *ReportDeviceStatusRequest, opts ...grpc.CallOption) (*ReportDeviceStatusResponse, error) {
	out := new(ReportDeviceStatusResponse)

	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := c.cc.Invoke(ctx, DeviceMapperService_ReportDeviceStatus_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// DeviceMapperServiceServer is the server API for DeviceMapperService. It is
// implemented by the control plane; the mapper only implements it in tests.
type DeviceMapperServiceServer interface {
	MapperRegister(context.Context, *MapperRegisterRequest) (*MapperRegisterResponse, error)
	ReportDeviceStates(context.Context, *ReportDeviceStatesRequest) (*ReportDeviceStatesResponse, error)
	ReportDeviceStatus(context.Context, *ReportDeviceStatusRequest) (*ReportDeviceStatusResponse, error)
}

// RegisterDeviceMapperServiceServer registers the service implementation.
func RegisterDeviceMapperServiceServer(s grpc.ServiceRegistrar, srv DeviceMapperServiceServer) {
	s.RegisterService(&DeviceMapperService_ServiceDesc, srv)
}

func _DeviceMapperService_MapperRegister_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MapperRegisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(DeviceMapperServiceServer).MapperRegister(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeviceMapperService_MapperRegister_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeviceMapperServiceServer).MapperRegister(ctx, req.(*MapperRegisterRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func _DeviceMapperService_ReportDeviceStates_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReportDeviceStatesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(DeviceMapperServiceServer).ReportDeviceStates(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeviceMapperService_ReportDeviceStates_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeviceMapperServiceServer).ReportDeviceStates(ctx, req.(*ReportDeviceStatesRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func _DeviceMapperService_ReportDeviceStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReportDeviceStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(DeviceMapperServiceServer).ReportDeviceStatus(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeviceMapperService_ReportDeviceStatus_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeviceMapperServiceServer).ReportDeviceStatus(ctx, req.(*ReportDeviceStatusRequest))
	}

	return interceptor(ctx, in, info, handler)
}

// DeviceMapperService_ServiceDesc is the grpc.ServiceDesc for
// DeviceMapperService.
var DeviceMapperService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "v1.DeviceMapperService",
	HandlerType: (*DeviceMapperServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "MapperRegister", Handler: _DeviceMapperService_MapperRegister_Handler},
		{MethodName: "ReportDeviceStates", Handler: _DeviceMapperService_ReportDeviceStates_Handler},
		{MethodName: "ReportDeviceStatus", Handler: _DeviceMapperService_ReportDeviceStatus_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "devicemapper.proto",
}
