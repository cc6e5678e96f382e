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

package grpc

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/carverauto/edgemapper/pkg/logger"
)

const defaultHealthTimeout = 5 * time.Second

// ClientConfig configures an outbound gRPC connection.
type ClientConfig struct {
	// Address is a TCP address, "unix:///path", or a bare filesystem path.
	Address string
	Logger  logger.Logger
}

// Client wraps a gRPC client connection.
type Client struct {
	conn   *grpc.ClientConn
	addr   string
	logger logger.Logger
}

// NewClient dials the configured address. UDS addresses get a passthrough
// resolver with a custom dialer; local sockets carry no TLS.
func NewClient(_ context.Context, cfg ClientConfig) (*Client, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}

	target := cfg.Address

	if path, ok := udsPath(cfg.Address); ok {
		target = "passthrough:///" + path
		opts = append(opts, grpc.WithContextDialer(func(ctx context.Context, addr string) (net.Conn, error) {
			d := &net.Dialer{}
			return d.DialContext(ctx, "unix", strings.TrimPrefix(addr, "passthrough:///"))
		}))
	}

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", cfg.Address, err)
	}

	return &Client{conn: conn, addr: cfg.Address, logger: cfg.Logger}, nil
}

// GetConnection returns the underlying connection.
func (c *Client) GetConnection() *grpc.ClientConn {
	return c.conn
}

// CheckHealth queries the standard health service for the named service.
func (c *Client) CheckHealth(ctx context.Context, service string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultHealthTimeout)
	defer cancel()

	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return false, fmt.Errorf("health check failed: %w", err)
	}

	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}

	return c.conn.Close()
}
