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

package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/sink"
)

// cacheCapacity bounds the number of live publisher handles. On overflow the
// handle in slot 0 is closed and replaced.
const cacheCapacity = 8

var errUnknownPushMethod = errors.New("unknown push method")

// New builds a publisher for a push method name and its lowered JSON config.
func New(methodName string, config json.RawMessage, log logger.Logger) (sink.Publisher, error) {
	switch methodName {
	case sink.PushMethodHTTP:
		return NewHTTP(config, log)
	case sink.PushMethodMQTT:
		return NewMQTT(config, log)
	case sink.PushMethodOTEL:
		return NewOTEL(config, log)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownPushMethod, methodName)
	}
}

type cacheEntry struct {
	key       string
	publisher sink.Publisher
}

// Cache memoizes publisher handles by "methodName|configJSON". One mutex
// covers lookup, creation, and the publish itself, so at most one publish is
// in flight per cache.
type Cache struct {
	mu      sync.Mutex
	entries []cacheEntry
	logger  logger.Logger
}

// NewCache creates an empty publisher cache.
func NewCache(log logger.Logger) *Cache {
	return &Cache{
		entries: make([]cacheEntry, 0, cacheCapacity),
		logger:  log,
	}
}

// PublishDynamic resolves the publisher for (methodName, config), creating
// and caching it when absent, and delegates the publish to it.
func (c *Cache) PublishDynamic(ctx context.Context, methodName string, config []byte, payload *sink.Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pub, err := c.resolveLocked(methodName, config)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, payload)
}

func (c *Cache) resolveLocked(methodName string, config json.RawMessage) (sink.Publisher, error) {
	key := methodName + "|" + string(config)

	for _, e := range c.entries {
		if e.key == key {
			return e.publisher, nil
		}
	}

	pub, err := New(methodName, config, c.logger)
	if err != nil {
		return nil, err
	}

	entry := cacheEntry{key: key, publisher: pub}

	if len(c.entries) < cacheCapacity {
		c.entries = append(c.entries, entry)
		return pub, nil
	}

	evicted := c.entries[0]
	if err := evicted.publisher.Close(); err != nil {
		c.logger.Warn().Err(err).Str("key", evicted.key).Msg("failed to close evicted publisher")
	}

	c.entries[0] = entry

	return pub, nil
}

// Close frees every cached publisher.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if err := e.publisher.Close(); err != nil {
			c.logger.Warn().Err(err).Str("key", e.key).Msg("failed to close publisher")
		}
	}

	c.entries = c.entries[:0]

	return nil
}
