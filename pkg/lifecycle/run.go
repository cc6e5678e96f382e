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

// Package lifecycle runs a set of long-lived services under one signal
// handler with ordered shutdown.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carverauto/edgemapper/pkg/logger"
)

// Service is one long-running component. Start blocks until the service
// exits; Stop requests a graceful shutdown.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ServerOptions configures a RunServer invocation.
type ServerOptions struct {
	// Services start concurrently and stop in reverse order.
	Services []Service

	// Cleanup runs after every service has stopped.
	Cleanup func()

	Logger logger.Logger
}

// RunServer starts every service and blocks until one of them fails, the
// context is cancelled, or the process receives SIGINT/SIGTERM. A second
// signal during shutdown exits immediately with the conventional 128+signo
// code.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Broken admin-socket writes must not kill the process.
	signal.Ignore(syscall.SIGPIPE)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(sigCh)

	errCh := make(chan error, len(opts.Services))

	for _, svc := range opts.Services {
		go func(s Service) {
			if err := s.Start(ctx); err != nil {
				errCh <- err
			}
		}(svc)
	}

	var runErr error

	select {
	case sig := <-sigCh:
		opts.Logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

		// A second signal aborts the graceful path.
		go func() {
			s := <-sigCh

			opts.Logger.Error().Str("signal", s.String()).Msg("Forced shutdown")

			if sysSig, ok := s.(syscall.Signal); ok {
				os.Exit(128 + int(sysSig))
			}

			os.Exit(1)
		}()
	case err := <-errCh:
		opts.Logger.Error().Err(err).Msg("Service failed")

		runErr = fmt.Errorf("service failed: %w", err)
	case <-ctx.Done():
		runErr = ctx.Err()
	}

	cancel()

	for i := len(opts.Services) - 1; i >= 0; i-- {
		if err := opts.Services[i].Stop(context.Background()); err != nil {
			opts.Logger.Warn().Err(err).Msg("Service stop failed")
		}
	}

	if opts.Cleanup != nil {
		opts.Cleanup()
	}

	return runErr
}
