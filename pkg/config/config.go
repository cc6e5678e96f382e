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

// Package config loads the static process configuration for the mapper.
package config

import (
	"errors"
	"fmt"

	"github.com/carverauto/edgemapper/pkg/logger"
)

var (
	errNoMapperName   = errors.New("common.name is required")
	errNoSocketPath   = errors.New("grpc_server.socket_path is required")
	errNoEdgecoreSock = errors.New("common.edgecore_sock is required")
)

// Default paths used when the config file leaves them unset.
const (
	DefaultSocketPath   = "/tmp/mapper_dmi.sock"
	DefaultEdgecoreSock = "/etc/kubeedge/dmi.sock"
	DefaultAPIVersion   = "v1"
	DefaultHTTPPort     = "7777"
)

// Config is the static process configuration. It is loaded once at startup
// and treated as read-only afterwards.
type Config struct {
	GRPCServer GRPCServerConfig `yaml:"grpc_server" json:"grpc_server"`
	Common     CommonConfig     `yaml:"common" json:"common"`
	Database   DatabaseConfig   `yaml:"database" json:"database"`
	Events     EventsConfig     `yaml:"events" json:"events"`
	Logging    *logger.Config   `yaml:"logging" json:"logging"`
}

// GRPCServerConfig configures the control-plane facing UDS server.
type GRPCServerConfig struct {
	SocketPath string `yaml:"socket_path" json:"socket_path"`
}

// CommonConfig identifies the mapper towards the control plane.
type CommonConfig struct {
	Name         string `yaml:"name" json:"name"`
	Version      string `yaml:"version" json:"version"`
	APIVersion   string `yaml:"api_version" json:"api_version"`
	Protocol     string `yaml:"protocol" json:"protocol"`
	Address      string `yaml:"address" json:"address"`
	EdgecoreSock string `yaml:"edgecore_sock" json:"edgecore_sock"`
	HTTPPort     string `yaml:"http_port" json:"http_port"`

	// PublishMethod/PublishConfig select the optional publisher used for
	// device state reports; usually injected via PUBLISH_METHOD and
	// PUBLISH_CONFIG.
	PublishMethod string `yaml:"publish_method" json:"publish_method"`
	PublishConfig string `yaml:"publish_config" json:"publish_config"`
}

// DatabaseConfig holds process-wide recorder defaults.
type DatabaseConfig struct {
	MySQL MySQLConfig `yaml:"mysql" json:"mysql"`
}

// MySQLConfig is the process-wide MySQL recorder default.
type MySQLConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Addr     string `yaml:"addr" json:"addr"`
	Port     string `yaml:"port" json:"port"`
	Database string `yaml:"database" json:"database"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	SSLMode  string `yaml:"ssl_mode" json:"ssl_mode"`
}

// EventsConfig enables the optional NATS JetStream event stream. An empty
// URL disables it.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url" json:"nats_url"`
	Stream  string `yaml:"stream" json:"stream"`
	Subject string `yaml:"subject" json:"subject"`
}

// Validate implements the loader's Validator hook.
func (c *Config) Validate() error {
	if c.Common.Name == "" {
		return errNoMapperName
	}

	if c.GRPCServer.SocketPath == "" {
		return errNoSocketPath
	}

	if c.Common.EdgecoreSock == "" {
		return errNoEdgecoreSock
	}

	return nil
}

// applyDefaults fills optional fields before validation.
func (c *Config) applyDefaults() {
	if c.GRPCServer.SocketPath == "" {
		c.GRPCServer.SocketPath = DefaultSocketPath
	}

	if c.Common.EdgecoreSock == "" {
		c.Common.EdgecoreSock = DefaultEdgecoreSock
	}

	if c.Common.APIVersion == "" {
		c.Common.APIVersion = DefaultAPIVersion
	}

	if c.Common.HTTPPort == "" {
		c.Common.HTTPPort = DefaultHTTPPort
	}

	if c.Events.Stream == "" {
		c.Events.Stream = "MAPPER_EVENTS"
	}

	if c.Events.Subject == "" {
		c.Events.Subject = "mapper.events"
	}
}

// Load reads the YAML config at path, applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	loader := &FileLoader{}
	if err := loader.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
