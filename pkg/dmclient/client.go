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

// Package dmclient is the mapper's client side of the device-management
// plane: registration on startup plus best-effort state and twin reporting.
package dmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/edgemapper/pkg/config"
	grpcpkg "github.com/carverauto/edgemapper/pkg/grpc"
	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
	"github.com/carverauto/edgemapper/pkg/sink"
	"github.com/carverauto/edgemapper/pkg/wire"
	"github.com/carverauto/edgemapper/proto"
)

// registerTimeout bounds the MapperRegister round trip.
const registerTimeout = 5 * time.Second

// Publishers is the subset of the publisher cache the client needs for
// state publishing.
type Publishers interface {
	PublishDynamic(ctx context.Context, methodName string, config []byte, payload *sink.Payload) error
}

// Client talks to the control plane over its UNIX-domain socket.
type Client struct {
	common config.CommonConfig
	conn   *grpcpkg.Client
	mapper proto.DeviceMapperServiceClient

	// Optional process-level publisher for state reports; selected by
	// PUBLISH_METHOD / PUBLISH_CONFIG.
	publishers    Publishers
	publishMethod string
	publishConfig json.RawMessage

	logger logger.Logger
}

// New dials the control-plane socket. No RPC happens until Register.
func New(ctx context.Context, common config.CommonConfig, publishers Publishers, log logger.Logger) (*Client, error) {
	addr := common.EdgecoreSock
	if !strings.HasPrefix(addr, "unix://") {
		addr = "unix://" + addr
	}

	conn, err := grpcpkg.NewClient(ctx, grpcpkg.ClientConfig{Address: addr, Logger: log})
	if err != nil {
		return nil, fmt.Errorf("failed to dial control plane at %s: %w", common.EdgecoreSock, err)
	}

	c := &Client{
		common: common,
		conn:   conn,
		mapper: proto.NewDeviceMapperServiceClient(conn.GetConnection()),
		logger: log,
	}

	if publishers != nil && common.PublishMethod != "" {
		c.publishers = publishers
		c.publishMethod = common.PublishMethod
		c.publishConfig = json.RawMessage(common.PublishConfig)
	}

	return c, nil
}

// Register announces the mapper and returns the device and model lists the
// control plane has assigned to it.
func (c *Client) Register(ctx context.Context) ([]*proto.Device, []*proto.DeviceModel, error) {
	ctx, cancel := context.WithTimeout(ctx, registerTimeout)
	defer cancel()

	resp, err := c.mapper.MapperRegister(ctx, &proto.MapperRegisterRequest{
		WithData: true,
		Mapper: &proto.MapperInfo{
			Name:       c.common.Name,
			Version:    c.common.Version,
			ApiVersion: c.common.APIVersion,
			Protocol:   c.common.Protocol,
			Address:    c.common.Address,
			State:      models.StatusOK,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("mapper registration failed: %w", err)
	}

	c.logger.Info().
		Int("devices", len(resp.DeviceList)).
		Int("models", len(resp.ModelList)).
		Msg("Mapper registered with control plane")

	return resp.DeviceList, resp.ModelList, nil
}

// ReportDeviceStates reports a device state transition. When a process-level
// publisher is configured the state also goes out as a "status" KV.
func (c *Client) ReportDeviceStates(ctx context.Context, namespace, name, state string) error {
	_, err := c.mapper.ReportDeviceStates(ctx, &proto.ReportDeviceStatesRequest{
		Namespace:  namespace,
		DeviceName: name,
		State:      state,
	})
	if err != nil {
		return fmt.Errorf("failed to report state for %s/%s: %w", namespace, name, err)
	}

	if c.publishers != nil {
		payload := &sink.Payload{
			DeviceName:   name,
			Namespace:    namespace,
			PropertyName: "status",
			Value:        state,
			Type:         "string",
			Timestamp:    time.Now().UnixMilli(),
		}

		if err := c.publishers.PublishDynamic(ctx, c.publishMethod, c.publishConfig, payload); err != nil {
			c.logger.Warn().Err(err).Str("device", name).Msg("state publish failed")
		}
	}

	return nil
}

// ReportTwinKV reports one reported key/value pair for a device.
func (c *Client) ReportTwinKV(ctx context.Context, namespace, name, property, value, valueType string) error {
	_, err := c.mapper.ReportDeviceStatus(ctx, &proto.ReportDeviceStatusRequest{
		Namespace:  namespace,
		DeviceName: name,
		Twin:       wire.ReportedKV(property, value, valueType, time.Now().UnixMilli()),
	})
	if err != nil {
		return fmt.Errorf("failed to report twin %s for %s/%s: %w", property, namespace, name, err)
	}

	return nil
}

// Close tears down the control-plane connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
