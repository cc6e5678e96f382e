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

// Package events publishes mapper lifecycle events as CloudEvents on NATS
// JetStream. The publisher is optional; with no NATS URL configured every
// publish is a no-op.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/edgemapper/pkg/config"
	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
)

const eventSource = "edgemapper"

// Event types emitted by the mapper.
const (
	TypeDeviceState     = "com.carverauto.edgemapper.device.state"
	TypeDeviceLifecycle = "com.carverauto.edgemapper.device.lifecycle"
)

// CloudEvent is the envelope every event ships in.
type CloudEvent struct {
	SpecVersion     string    `json:"specversion"`
	ID              string    `json:"id"`
	Source          string    `json:"source"`
	Type            string    `json:"type"`
	DataContentType string    `json:"datacontenttype"`
	Subject         string    `json:"subject"`
	Time            time.Time `json:"time"`
	Data            any       `json:"data"`
}

// DeviceStateData is the payload of a state transition event.
type DeviceStateData struct {
	Namespace     string `json:"namespace"`
	DeviceName    string `json:"deviceName"`
	PreviousState string `json:"previousState,omitempty"`
	CurrentState  string `json:"currentState"`
}

// DeviceLifecycleData is the payload of a registration/update/removal event.
type DeviceLifecycleData struct {
	Namespace  string `json:"namespace"`
	DeviceName string `json:"deviceName"`
	Action     string `json:"action"`
}

// Publisher publishes CloudEvents to one JetStream stream. A zero-valued
// Publisher (nil js) is disabled and drops everything silently.
type Publisher struct {
	nc            *nats.Conn
	js            jetstream.JetStream
	subjectPrefix string
	logger        logger.Logger
}

// Connect dials NATS and ensures the configured stream exists. An empty
// NATS URL yields a disabled publisher and no connection.
func Connect(ctx context.Context, cfg config.EventsConfig, log logger.Logger) (*Publisher, error) {
	if cfg.NATSURL == "" {
		return &Publisher{logger: log}, nil
	}

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.Stream(ctx, cfg.Stream); err != nil {
		streamConfig := jetstream.StreamConfig{
			Name:     cfg.Stream,
			Subjects: []string{cfg.Subject + ".>"},
		}

		if _, err := js.CreateOrUpdateStream(ctx, streamConfig); err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to create or get stream %s: %w", cfg.Stream, err)
		}
	}

	log.Info().Str("stream", cfg.Stream).Str("url", cfg.NATSURL).Msg("Connected mapper event stream")

	return &Publisher{
		nc:            nc,
		js:            js,
		subjectPrefix: cfg.Subject,
		logger:        log,
	}, nil
}

// Enabled reports whether events actually go anywhere.
func (p *Publisher) Enabled() bool {
	return p != nil && p.js != nil
}

// PublishDeviceState emits a state transition event for a device.
func (p *Publisher) PublishDeviceState(ctx context.Context, namespace, name, previous, current string) error {
	return p.publish(ctx, TypeDeviceState, namespace, name, DeviceStateData{
		Namespace:     models.NamespaceOrDefault(namespace),
		DeviceName:    name,
		PreviousState: previous,
		CurrentState:  current,
	})
}

// PublishDeviceLifecycle emits a registered/updated/removed event.
func (p *Publisher) PublishDeviceLifecycle(ctx context.Context, namespace, name, action string) error {
	return p.publish(ctx, TypeDeviceLifecycle, namespace, name, DeviceLifecycleData{
		Namespace:  models.NamespaceOrDefault(namespace),
		DeviceName: name,
		Action:     action,
	})
}

func (p *Publisher) publish(ctx context.Context, eventType, namespace, name string, data any) error {
	if !p.Enabled() {
		return nil
	}

	subject := fmt.Sprintf("%s.%s.%s", p.subjectPrefix, models.NamespaceOrDefault(namespace), name)

	event := CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         subject,
		Time:            time.Now().UTC(),
		Data:            data,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, body); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", subject, err)
	}

	return nil
}

// Close drains the NATS connection.
func (p *Publisher) Close() {
	if p != nil && p.nc != nil {
		p.nc.Close()
	}
}
