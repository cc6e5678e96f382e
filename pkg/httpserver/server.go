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

// Package httpserver exposes the read-mostly admin surface: twin reads,
// method invocation, model metadata, and a live state stream.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/edgemapper/pkg/device"
	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
	"github.com/carverauto/edgemapper/pkg/registry"
)

const (
	apiVersion = "v1"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server is the admin HTTP server.
type Server struct {
	httpServer *http.Server
	registry   *registry.Registry
	logger     logger.Logger
}

// New builds the admin server listening on the given port.
func New(port string, reg *registry.Registry, log logger.Logger) *Server {
	s := &Server{registry: reg, logger: log}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)
	api.HandleFunc("/device/{namespace}/{name}/{property}", s.handleReadDevice).Methods(http.MethodGet)
	api.HandleFunc("/device/{id}/{property}", s.handleReadDeviceByID).Methods(http.MethodGet)
	api.HandleFunc("/devicemethod/{namespace}/{name}", s.handleListMethods).Methods(http.MethodGet)
	api.HandleFunc("/devicemethod/{namespace}/{name}/{method}/{property}/{data}", s.handleInvokeMethod).Methods(http.MethodGet)
	api.HandleFunc("/meta/model/{namespace}/{name}", s.handleModelMeta).Methods(http.MethodGet)
	api.HandleFunc("/database/{namespace}/{name}", s.handleDatabase).Methods(http.MethodGet)
	api.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start(_ context.Context) error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Starting admin HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin http server failed: %w", err)
	}

	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// envelope is the fixed admin API response shape.
type envelope struct {
	APIVersion string `json:"apiVersion"`
	StatusCode int    `json:"statusCode"`
	TimeStamp  string `json:"timeStamp"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
}

func (s *Server) writeEnvelope(w http.ResponseWriter, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	resp := envelope{
		APIVersion: apiVersion,
		StatusCode: code,
		TimeStamp:  time.Now().UTC().Format(time.RFC3339),
		Message:    message,
		Data:       data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode admin response")
	}
}

func (s *Server) notFound(w http.ResponseWriter, _ *http.Request) {
	s.writeEnvelope(w, http.StatusNotFound, "not found", nil)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	s.writeEnvelope(w, http.StatusMethodNotAllowed, "method not allowed", nil)
}

// lookup resolves a device by namespace and name through the registry's
// canonical and short-name matching.
func (s *Server) lookup(namespace, name string) (*device.Device, error) {
	return s.registry.Get(models.CanonicalID(namespace, name))
}
