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

package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/carverauto/edgemapper/pkg/logger"
)

var errNoRedisConfig = errors.New("redis recorder has no usable config")

// redisConfig is the per-property Redis recorder config.
type redisConfig struct {
	Addr         string `json:"addr"`
	DB           int    `json:"db"`
	PoolSize     int    `json:"poolsize"`
	MinIdleConns int    `json:"minIdleConns"`
}

// Redis records samples into a sorted set per device, scored by the sample
// timestamp in seconds.
type Redis struct {
	mu     sync.Mutex
	client *redis.Client
	cfg    *redisConfig
	logger logger.Logger
}

// NewRedis creates an unconnected Redis recorder.
func NewRedis(log logger.Logger) *Redis {
	return &Redis{logger: log}
}

// SetDB implements sink.Recorder.
func (r *Redis) SetDB(config json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.setDBLocked(config)
}

func (r *Redis) setDBLocked(config json.RawMessage) error {
	cfg := &redisConfig{}

	if len(config) > 0 {
		if err := json.Unmarshal(config, cfg); err != nil {
			return fmt.Errorf("failed to parse redis config: %w", err)
		}
	}

	if cfg.Addr == "" {
		cfg.Addr = os.Getenv("REDIS_ADDR")
	}

	if cfg.Addr == "" {
		return errNoRedisConfig
	}

	if r.client != nil {
		_ = r.client.Close()
		r.client = nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	// PING on first connect so a bad address fails here, not on Record.
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	r.cfg = cfg
	r.client = client

	return nil
}

// Record implements sink.Recorder.
func (r *Redis) Record(ctx context.Context, _, device, property, value string, tsMillis int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		if err := r.setDBLocked(nil); err != nil {
			r.logger.Warn().Err(err).Msg("Redis recorder not initialized")
			return err
		}
	}

	tsSeconds := tsMillis / 1000
	member := fmt.Sprintf("TimeStamp: %d PropertyName: %s data: %s", tsMillis, property, value)

	err := r.client.ZAdd(ctx, device, redis.Z{
		Score:  float64(tsSeconds),
		Member: member,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to zadd %s: %w", device, err)
	}

	return nil
}

// Close implements sink.Recorder.
func (r *Redis) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}

	err := r.client.Close()
	r.client = nil

	return err
}
