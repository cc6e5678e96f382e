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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/sink"
)

func httpConfigFor(endpoint string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"endpoint":%q}`, endpoint))
}

func TestNewFactory(t *testing.T) {
	log := logger.NewTestLogger()

	pub, err := New(sink.PushMethodHTTP, httpConfigFor("http://127.0.0.1:9"), log)
	require.NoError(t, err)
	assert.IsType(t, &HTTP{}, pub)

	pub, err = New(sink.PushMethodOTEL, json.RawMessage(`{"endpointUrl":"http://127.0.0.1:9"}`), log)
	require.NoError(t, err)
	assert.IsType(t, &OTEL{}, pub)

	_, err = New("carrier-pigeon", nil, log)
	assert.ErrorIs(t, err, errUnknownPushMethod)
}

func TestCacheMemoizesByMethodAndConfig(t *testing.T) {
	c := NewCache(logger.NewTestLogger())

	cfg := httpConfigFor("http://127.0.0.1:9")

	first, err := c.resolveLocked(sink.PushMethodHTTP, cfg)
	require.NoError(t, err)

	second, err := c.resolveLocked(sink.PushMethodHTTP, cfg)
	require.NoError(t, err)
	assert.Same(t, first, second)

	third, err := c.resolveLocked(sink.PushMethodHTTP, httpConfigFor("http://127.0.0.1:10"))
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	assert.Len(t, c.entries, 2)
}

func TestCacheEvictsSlotZeroAtCapacity(t *testing.T) {
	c := NewCache(logger.NewTestLogger())

	for i := 0; i < cacheCapacity; i++ {
		_, err := c.resolveLocked(sink.PushMethodHTTP, httpConfigFor(fmt.Sprintf("http://127.0.0.1:%d", 9000+i)))
		require.NoError(t, err)
	}

	require.Len(t, c.entries, cacheCapacity)

	oldestKey := c.entries[0].key

	overflow, err := c.resolveLocked(sink.PushMethodHTTP, httpConfigFor("http://127.0.0.1:9999"))
	require.NoError(t, err)

	// Capacity holds; the overflow entry replaced slot 0.
	assert.Len(t, c.entries, cacheCapacity)
	assert.NotEqual(t, oldestKey, c.entries[0].key)
	assert.Same(t, overflow, c.entries[0].publisher)
}

func TestCacheCreationFailureIsNotCached(t *testing.T) {
	c := NewCache(logger.NewTestLogger())

	err := c.PublishDynamic(context.Background(), sink.PushMethodHTTP, json.RawMessage(`{}`), testPayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoHTTPEndpoint)
	assert.Empty(t, c.entries)
}

func TestCacheClose(t *testing.T) {
	c := NewCache(logger.NewTestLogger())

	_, err := c.resolveLocked(sink.PushMethodHTTP, httpConfigFor("http://127.0.0.1:9"))
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.Empty(t, c.entries)
}
