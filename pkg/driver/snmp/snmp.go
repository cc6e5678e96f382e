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

// Package snmp implements a protocol driver for SNMP v1/v2c devices. The
// visitor's configData names the OID to read or write.
package snmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/carverauto/edgemapper/pkg/driver"
	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
)

// ProtocolName is the protocol this driver serves.
const ProtocolName = "snmp"

const (
	defaultPort    = 161
	defaultTimeout = 5 * time.Second
	defaultRetries = 1

	oidSysUptime = ".1.3.6.1.2.1.1.3.0"
)

var (
	errNoTarget    = errors.New("snmp config has no target")
	errNoOID       = errors.New("visitor config has no oid")
	errEmptyResult = errors.New("snmp get returned no variables")
)

// protocolConfig is the driver side of the instance's protocol configData.
// Values are string-encoded scalars produced by the wire layer.
type protocolConfig struct {
	Target    string `json:"target"`
	Port      string `json:"port"`
	Community string `json:"community"`
	Version   string `json:"version"`
}

// visitorConfig addresses one property.
type visitorConfig struct {
	OID string `json:"oid"`
}

type client struct {
	mu     sync.Mutex
	snmp   *gosnmp.GoSNMP
	logger logger.Logger
}

// Factory builds an SNMP client from the instance's protocol config.
func Factory(protocol models.ProtocolConfig, log logger.Logger) (driver.Client, error) {
	var cfg protocolConfig

	if len(protocol.ConfigData) > 0 {
		if err := json.Unmarshal(protocol.ConfigData, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse snmp protocol config: %w", err)
		}
	}

	if cfg.Target == "" {
		return nil, errNoTarget
	}

	port := defaultPort

	if cfg.Port != "" {
		if p, err := strconv.Atoi(cfg.Port); err == nil && p > 0 && p < 65536 {
			port = p
		}
	}

	community := cfg.Community
	if community == "" {
		community = "public"
	}

	version := gosnmp.Version2c
	if cfg.Version == "v1" || cfg.Version == "1" {
		version = gosnmp.Version1
	}

	g := &gosnmp.GoSNMP{
		Target:    cfg.Target,
		Port:      uint16(port),
		Community: community,
		Version:   version,
		Timeout:   defaultTimeout,
		Retries:   defaultRetries,
	}

	return &client{snmp: g, logger: log}, nil
}

func (c *client) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.snmp.Connect(); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.snmp.Target, err)
	}

	return nil
}

func oidFromVisitor(visitor *driver.Visitor) (string, error) {
	var cfg visitorConfig

	if len(visitor.ConfigData) > 0 {
		if err := json.Unmarshal(visitor.ConfigData, &cfg); err != nil {
			return "", fmt.Errorf("failed to parse visitor config: %w", err)
		}
	}

	if cfg.OID == "" {
		return "", fmt.Errorf("%w for property %s", errNoOID, visitor.PropertyName)
	}

	return cfg.OID, nil
}

func (c *client) Read(_ context.Context, visitor *driver.Visitor) ([]byte, error) {
	oid, err := oidFromVisitor(visitor)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.snmp.Get([]string{oid})
	if err != nil {
		return nil, fmt.Errorf("snmp get %s failed: %w", oid, err)
	}

	if len(result.Variables) == 0 {
		return nil, errEmptyResult
	}

	return []byte(formatPDU(result.Variables[0])), nil
}

func (c *client) Write(_ context.Context, visitor *driver.Visitor, value string) error {
	oid, err := oidFromVisitor(visitor)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pdu := gosnmp.SnmpPDU{
		Name:  oid,
		Type:  gosnmp.OctetString,
		Value: value,
	}

	if _, err := c.snmp.Set([]gosnmp.SnmpPDU{pdu}); err != nil {
		return fmt.Errorf("snmp set %s failed: %w", oid, err)
	}

	return nil
}

func (c *client) GetState() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.snmp.Get([]string{oidSysUptime}); err != nil {
		return models.StatusOffline, nil
	}

	return models.StatusOK, nil
}

func (c *client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snmp.Conn != nil {
		return c.snmp.Conn.Close()
	}

	return nil
}

func (c *client) Free() {
	_ = c.Stop()
}

// formatPDU renders an SNMP variable as the string form the twin machinery
// consumes.
func formatPDU(v gosnmp.SnmpPDU) string {
	switch v.Type {
	case gosnmp.OctetString:
		if b, ok := v.Value.([]byte); ok {
			return string(b)
		}

		return fmt.Sprintf("%v", v.Value)
	case gosnmp.ObjectIdentifier, gosnmp.IPAddress:
		return fmt.Sprintf("%v", v.Value)
	default:
		return gosnmp.ToBigInt(v.Value).String()
	}
}
