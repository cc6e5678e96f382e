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

// Package virtual implements an in-memory protocol driver. It backs devices
// whose protocol has no concrete driver and is the workhorse of the test
// suite.
package virtual

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/carverauto/edgemapper/pkg/driver"
	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
)

// ProtocolName is the protocol this driver serves when selected explicitly.
const ProtocolName = "virtual"

var errClientStopped = errors.New("virtual client stopped")

// client is one simulated device: a register file keyed by visitor offset.
type client struct {
	mu        sync.Mutex
	registers map[int]string
	stopped   bool
	logger    logger.Logger
}

// Factory builds a virtual client. Protocol configData may carry an
// "initial" object of offset->value seeds, e.g. {"initial":{"1":"42"}}.
func Factory(protocol models.ProtocolConfig, log logger.Logger) (driver.Client, error) {
	c := &client{
		registers: make(map[int]string),
		logger:    log,
	}

	if len(protocol.ConfigData) > 0 {
		var cfg struct {
			Initial map[string]string `json:"initial"`
		}

		if err := json.Unmarshal(protocol.ConfigData, &cfg); err == nil {
			for offset, value := range cfg.Initial {
				var idx int
				if err := json.Unmarshal([]byte(offset), &idx); err == nil {
					c.registers[idx] = value
				}
			}
		}
	}

	return c, nil
}

func (c *client) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = false

	return nil
}

func (c *client) Read(_ context.Context, visitor *driver.Visitor) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return nil, errClientStopped
	}

	value, ok := c.registers[visitor.Offset]
	if !ok {
		value = "0"
	}

	return []byte(value), nil
}

func (c *client) Write(_ context.Context, visitor *driver.Visitor, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return errClientStopped
	}

	c.registers[visitor.Offset] = value

	return nil
}

func (c *client) GetState() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return models.StatusOffline, nil
	}

	return models.StatusOK, nil
}

func (c *client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true

	return nil
}

func (c *client) Free() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.registers = nil
	c.stopped = true
}
