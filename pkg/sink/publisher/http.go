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

// Package publisher implements the push channels behind the sink contracts:
// HTTP, MQTT, and OTEL, plus the fixed-size handle cache the device runtime
// resolves publishers through.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/sink"
)

const (
	defaultHTTPRetryCount = 3
	defaultHTTPTimeout    = 10 * time.Second
)

var errNoHTTPEndpoint = errors.New("http publisher config has no endpoint")

// httpConfig is the lowered per-property HTTP push config.
type httpConfig struct {
	Endpoint   string `json:"endpoint"`
	Method     string `json:"method"`
	TimeoutMS  int64  `json:"timeout_ms"`
	RetryCount int    `json:"retryCount"`
}

// HTTP publishes payloads as synchronous JSON requests with bounded retry.
type HTTP struct {
	cfg    httpConfig
	client *http.Client
	logger logger.Logger
}

// NewHTTP builds an HTTP publisher from its lowered JSON config.
func NewHTTP(config json.RawMessage, log logger.Logger) (*HTTP, error) {
	cfg := httpConfig{}

	if len(config) > 0 {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse http publisher config: %w", err)
		}
	}

	if cfg.Endpoint == "" {
		return nil, errNoHTTPEndpoint
	}

	switch strings.ToUpper(cfg.Method) {
	case http.MethodPut:
		cfg.Method = http.MethodPut
	default:
		cfg.Method = http.MethodPost
	}

	if cfg.RetryCount <= 0 {
		cfg.RetryCount = defaultHTTPRetryCount
	}

	timeout := defaultHTTPTimeout
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}

	return &HTTP{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: log,
	}, nil
}

// Publish implements sink.Publisher. Transport failures and non-2xx replies
// both count against the retry budget.
func (h *HTTP) Publish(ctx context.Context, payload *sink.Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	var lastErr error

	for attempt := 0; attempt < h.cfg.RetryCount; attempt++ {
		lastErr = h.send(ctx, body)
		if lastErr == nil {
			return nil
		}

		h.logger.Warn().
			Err(lastErr).
			Int("attempt", attempt+1).
			Str("endpoint", h.cfg.Endpoint).
			Msg("HTTP publish attempt failed")

		if ctx.Err() != nil {
			break
		}
	}

	return fmt.Errorf("http publish to %s failed: %w", h.cfg.Endpoint, lastErr)
}

func (h *HTTP) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, h.cfg.Method, h.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}

// Close implements sink.Publisher.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
