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

// Package sink defines the contracts for the pluggable sinks a device
// property can fan out to: recorders (time-series databases) and publishers
// (push channels). All sinks are best effort; the device runtime never
// propagates their failures.
package sink

import (
	"context"
	"encoding/json"
)

// Recorder method names accepted in a property's dbMethodName.
const (
	DBMethodMySQL     = "mysql"
	DBMethodRedis     = "redis"
	DBMethodInfluxdb2 = "influxdb2"
	DBMethodTDengine  = "tdengine"
	DBMethodUnknown   = "unknown"
)

// Publisher method names accepted in a property's pushMethod.
const (
	PushMethodHTTP    = "http"
	PushMethodMQTT    = "mqtt"
	PushMethodOTEL    = "otel"
	PushMethodUnknown = "unknown"
)

// Payload is the unit pushed to a publisher.
type Payload struct {
	DeviceName   string `json:"deviceName"`
	Namespace    string `json:"namespace"`
	PropertyName string `json:"propertyName"`
	Value        string `json:"value"`
	Type         string `json:"type"`
	Timestamp    int64  `json:"timestamp"`
}

// Recorder writes time-series rows into one database backend. A recorder
// serializes all of its operations behind a single mutex; at most one
// operation is outstanding at a time.
type Recorder interface {
	// SetDB replaces any existing handle (closing it) and opens a new one
	// from config. An empty config falls back to environment variables.
	SetDB(config json.RawMessage) error

	// Record inserts one sample. It returns an error on failure and never
	// panics; a missing handle triggers exactly one lazy SetDB attempt.
	Record(ctx context.Context, namespace, device, property, value string, tsMillis int64) error

	// Close tears down the handle.
	Close() error
}

// Publisher pushes payloads to one push channel.
type Publisher interface {
	Publish(ctx context.Context, payload *Payload) error
	Close() error
}

// Recorders bundles the per-backend recorders owned by the mapper root.
// Sinks are explicit capabilities passed into each device runtime, not
// process globals.
type Recorders struct {
	MySQL    Recorder
	Redis    Recorder
	Influx   Recorder
	TDengine Recorder
}

// ForMethod returns the recorder for a dbMethodName, or nil.
func (r *Recorders) ForMethod(method string) Recorder {
	if r == nil {
		return nil
	}

	switch method {
	case DBMethodMySQL:
		return r.MySQL
	case DBMethodRedis:
		return r.Redis
	case DBMethodInfluxdb2:
		return r.Influx
	case DBMethodTDengine:
		return r.TDengine
	default:
		return nil
	}
}

// CloseAll closes every configured recorder.
func (r *Recorders) CloseAll() {
	if r == nil {
		return
	}

	for _, rec := range []Recorder{r.MySQL, r.Redis, r.Influx, r.TDengine} {
		if rec != nil {
			_ = rec.Close()
		}
	}
}
