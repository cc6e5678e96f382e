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
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/sink"
)

const influxWriteTimeout = 10 * time.Second

var errNoInfluxConfig = errors.New("influxdb2 recorder has no usable config")

// influxConfig is the per-property InfluxDB2 recorder config: connection
// settings plus the data shaping section.
type influxConfig struct {
	URL    string `json:"url"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	Token  string `json:"token"`

	Measurement string            `json:"measurement"`
	Tag         map[string]string `json:"tag"`
	FieldKey    string            `json:"fieldKey"`
}

// Influx writes samples as line protocol over the InfluxDB v2 HTTP API.
type Influx struct {
	mu     sync.Mutex
	cfg    *influxConfig
	client *http.Client
	logger logger.Logger
}

// NewInflux creates an unconfigured InfluxDB2 recorder.
func NewInflux(log logger.Logger) *Influx {
	return &Influx{logger: log}
}

// SetDB implements sink.Recorder.
func (f *Influx) SetDB(config json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.setDBLocked(config)
}

func (f *Influx) setDBLocked(config json.RawMessage) error {
	cfg := &influxConfig{}

	if len(config) > 0 {
		if err := json.Unmarshal(config, cfg); err != nil {
			return fmt.Errorf("failed to parse influxdb2 config: %w", err)
		}
	}

	if cfg.Token == "" {
		cfg.Token = os.Getenv("TOKEN")
	}

	if cfg.URL == "" || cfg.Org == "" || cfg.Bucket == "" {
		return errNoInfluxConfig
	}

	f.cfg = cfg
	f.client = &http.Client{Timeout: influxWriteTimeout}

	return nil
}

// Record implements sink.Recorder.
func (f *Influx) Record(ctx context.Context, namespace, device, property, value string, tsMillis int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client == nil {
		if err := f.setDBLocked(nil); err != nil {
			f.logger.Warn().Err(err).Msg("InfluxDB2 recorder not initialized")
			return err
		}
	}

	measurement := f.cfg.Measurement
	if measurement == "" {
		measurement = fmt.Sprintf("%s_%s",
			sink.SanitizeIdentifier(namespace, identifierFallback),
			sink.SanitizeIdentifier(device, identifierFallback))
	}

	field := f.cfg.FieldKey
	if field == "" {
		field = sink.SanitizeIdentifier(property, identifierFallback)
	}

	var line strings.Builder

	line.WriteString(escapeLineProtocol(measurement))

	for _, k := range sortedTagKeys(f.cfg.Tag) {
		line.WriteByte(',')
		line.WriteString(escapeLineProtocol(k))
		line.WriteByte('=')
		line.WriteString(escapeLineProtocol(f.cfg.Tag[k]))
	}

	fmt.Fprintf(&line, " %s=%q %d", escapeLineProtocol(field), value, tsMillis*int64(time.Millisecond))

	endpoint := fmt.Sprintf("%s/api/v2/write?org=%s&bucket=%s&precision=ns",
		strings.TrimSuffix(f.cfg.URL, "/"), url.QueryEscape(f.cfg.Org), url.QueryEscape(f.cfg.Bucket))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(line.String()))
	if err != nil {
		return fmt.Errorf("failed to build influx write request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+f.cfg.Token)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("influx write failed: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("influx write returned status %d", resp.StatusCode)
	}

	return nil
}

// Close implements sink.Recorder.
func (f *Influx) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.client = nil

	return nil
}

// sortedTagKeys fixes the tag order so identical configs emit identical
// lines.
func sortedTagKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// escapeLineProtocol escapes the characters line protocol reserves in
// identifiers and tag values.
func escapeLineProtocol(s string) string {
	r := strings.NewReplacer(",", `\,`, " ", `\ `, "=", `\=`)
	return r.Replace(s)
}
