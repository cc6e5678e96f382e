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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/sink"
)

const otelExportTimeout = 10 * time.Second

var errNoOTELEndpoint = errors.New("otel publisher config has no endpoint url")

// otelConfig is the lowered per-property OTEL push config.
type otelConfig struct {
	EndpointURL string `json:"endpointUrl"`
}

// OTEL publishes each payload as a one-gauge OTLP metrics export over HTTP.
type OTEL struct {
	cfg    otelConfig
	client *http.Client
	logger logger.Logger
}

// NewOTEL builds an OTEL publisher from its lowered JSON config.
func NewOTEL(config json.RawMessage, log logger.Logger) (*OTEL, error) {
	cfg := otelConfig{}

	if len(config) > 0 {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse otel publisher config: %w", err)
		}
	}

	if cfg.EndpointURL == "" {
		return nil, errNoOTELEndpoint
	}

	return &OTEL{
		cfg:    cfg,
		client: &http.Client{Timeout: otelExportTimeout},
		logger: log,
	}, nil
}

// Publish implements sink.Publisher.
func (o *OTEL) Publish(ctx context.Context, payload *sink.Payload) error {
	export := o.buildExport(payload)

	body, err := protojson.Marshal(export)
	if err != nil {
		return fmt.Errorf("failed to encode otlp export: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.EndpointURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build otlp request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("otlp export to %s failed: %w", o.cfg.EndpointURL, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("otlp export returned status %d", resp.StatusCode)
	}

	return nil
}

// buildExport shapes one gauge data point. Non-numeric values degrade to the
// value's length so the metric keeps cardinality instead of dropping.
func (o *OTEL) buildExport(payload *sink.Payload) *colmetricspb.ExportMetricsServiceRequest {
	asDouble, err := strconv.ParseFloat(payload.Value, 64)
	if err != nil {
		asDouble = float64(len(payload.Value))
	}

	now := uint64(time.Now().UnixNano())

	point := &metricspb.NumberDataPoint{
		TimeUnixNano: now,
		Value:        &metricspb.NumberDataPoint_AsDouble{AsDouble: asDouble},
		Attributes: []*commonpb.KeyValue{
			{
				Key:   "device",
				Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: payload.DeviceName}},
			},
			{
				Key:   "namespace",
				Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: payload.Namespace}},
			},
		},
	}

	metric := &metricspb.Metric{
		Name: fmt.Sprintf("%s.%s", payload.DeviceName, payload.PropertyName),
		Data: &metricspb.Metric_Gauge{
			Gauge: &metricspb.Gauge{DataPoints: []*metricspb.NumberDataPoint{point}},
		},
	}

	return &colmetricspb.ExportMetricsServiceRequest{
		ResourceMetrics: []*metricspb.ResourceMetrics{
			{
				Resource: &resourcepb.Resource{
					Attributes: []*commonpb.KeyValue{
						{
							Key:   "service.name",
							Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "edgemapper"}},
						},
					},
				},
				ScopeMetrics: []*metricspb.ScopeMetrics{
					{Metrics: []*metricspb.Metric{metric}},
				},
			},
		},
	}
}

// Close implements sink.Publisher.
func (o *OTEL) Close() error {
	o.client.CloseIdleConnections()
	return nil
}
