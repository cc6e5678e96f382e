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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/carverauto/edgemapper/pkg/config"
	"github.com/carverauto/edgemapper/pkg/device"
	"github.com/carverauto/edgemapper/pkg/dmclient"
	"github.com/carverauto/edgemapper/pkg/dmserver"
	"github.com/carverauto/edgemapper/pkg/driver"
	"github.com/carverauto/edgemapper/pkg/driver/snmp"
	"github.com/carverauto/edgemapper/pkg/driver/virtual"
	"github.com/carverauto/edgemapper/pkg/events"
	grpcpkg "github.com/carverauto/edgemapper/pkg/grpc"
	"github.com/carverauto/edgemapper/pkg/httpserver"
	"github.com/carverauto/edgemapper/pkg/lifecycle"
	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/models"
	"github.com/carverauto/edgemapper/pkg/registry"
	"github.com/carverauto/edgemapper/pkg/sink"
	"github.com/carverauto/edgemapper/pkg/sink/publisher"
	"github.com/carverauto/edgemapper/pkg/sink/recorder"
	"github.com/carverauto/edgemapper/pkg/version"
	"github.com/carverauto/edgemapper/pkg/wire"
	"github.com/carverauto/edgemapper/proto"
)

var errFailedToLoadConfig = fmt.Errorf("failed to load config")

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/edgemapper/config.yaml", "Path to mapper config file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	mapperLogger, err := lifecycle.CreateComponentLogger("edgemapper", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	mapperLogger.Info().
		Str("version", version.GetFullVersion()).
		Str("mapper", cfg.Common.Name).
		Msg("Starting edge mapper")

	drivers := driver.NewRegistry()
	drivers.Register(virtual.ProtocolName, virtual.Factory)
	drivers.Register(snmp.ProtocolName, snmp.Factory)
	drivers.RegisterFallback(virtual.Factory)

	recorders := buildRecorders(cfg, mapperLogger)
	publishers := publisher.NewCache(mapperLogger)

	eventPublisher, err := events.Connect(ctx, cfg.Events, mapperLogger)
	if err != nil {
		return fmt.Errorf("failed to connect event stream: %w", err)
	}

	client, err := dmclient.New(ctx, cfg.Common, publishers, mapperLogger)
	if err != nil {
		return err
	}

	reg := registry.New(mapperLogger)

	manager := dmserver.NewManager(reg, drivers, device.Options{
		Reporter:   &eventingReporter{client: client, events: eventPublisher},
		Recorders:  recorders,
		Publishers: publishers,
		Logger:     mapperLogger,
	}, eventPublisher, mapperLogger)

	if err := bootstrap(ctx, client, reg, manager, mapperLogger); err != nil {
		return err
	}

	grpcServer := grpcpkg.NewServer(cfg.GRPCServer.SocketPath, mapperLogger)
	grpcServer.RegisterService(&proto.DeviceManagerService_ServiceDesc,
		dmserver.NewService(manager, reg, mapperLogger))

	adminServer := httpserver.New(cfg.Common.HTTPPort, reg, mapperLogger)

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		Services: []lifecycle.Service{
			grpcService{grpcServer},
			adminServer,
		},
		Cleanup: func() {
			reg.StopAll(ctx)
			recorders.CloseAll()

			_ = publishers.Close()
			_ = client.Close()

			eventPublisher.Close()
		},
		Logger: mapperLogger,
	})
}

// bootstrap registers the mapper and builds a runtime for every assigned
// device. Per-device failures are logged, not fatal; the control plane can
// re-push a corrected spec later.
func bootstrap(ctx context.Context, client *dmclient.Client, reg *registry.Registry, manager *dmserver.Manager, log logger.Logger) error {
	deviceList, modelList, err := client.Register(ctx)
	if err != nil {
		return err
	}

	for _, pm := range modelList {
		if model := wire.ParseDeviceModel(pm); model != nil {
			reg.SetModel(model)
		}
	}

	for _, pd := range deviceList {
		var model *models.DeviceModel

		if pd.Spec != nil && pd.Spec.DeviceModelReference != "" {
			ns := models.NamespaceOrDefault(pd.Namespace)
			model = reg.Model(models.CanonicalID(ns, pd.Spec.DeviceModelReference))
		}

		inst, err := wire.ParseDevice(pd, model)
		if err != nil {
			log.Warn().Err(err).Msg("skipping malformed device from registration")
			continue
		}

		if err := manager.UpdateDev(ctx, model, inst); err != nil {
			log.Error().Err(err).Str("device", inst.CanonicalID()).Msg("failed to start assigned device")
		}
	}

	return nil
}

// buildRecorders bundles one recorder per backend; the process-wide MySQL
// default from config pre-seeds its handle when enabled.
func buildRecorders(cfg *config.Config, log logger.Logger) *sink.Recorders {
	recorders := &sink.Recorders{
		MySQL:    recorder.NewMySQL(recorder.NewMySQLHandleCache(), log),
		Redis:    recorder.NewRedis(log),
		Influx:   recorder.NewInflux(log),
		TDengine: recorder.NewTDengine(log),
	}

	if cfg.Database.MySQL.Enabled {
		seed, err := json.Marshal(map[string]string{
			"addr":     cfg.Database.MySQL.Addr,
			"port":     cfg.Database.MySQL.Port,
			"database": cfg.Database.MySQL.Database,
			"userName": cfg.Database.MySQL.Username,
			"sslMode":  cfg.Database.MySQL.SSLMode,
		})
		if err == nil {
			if err := recorders.MySQL.SetDB(seed); err != nil {
				log.Warn().Err(err).Msg("MySQL default connection failed")
			}
		}
	}

	return recorders
}

// grpcService adapts the gRPC server to the lifecycle.Service surface.
type grpcService struct {
	srv *grpcpkg.Server
}

func (s grpcService) Start(ctx context.Context) error {
	return s.srv.Start(ctx)
}

func (s grpcService) Stop(ctx context.Context) error {
	s.srv.Stop(ctx)
	return nil
}

// eventingReporter forwards reports to the control plane and mirrors state
// transitions onto the event stream.
type eventingReporter struct {
	client *dmclient.Client
	events *events.Publisher
}

func (r *eventingReporter) ReportDeviceStates(ctx context.Context, namespace, name, state string) error {
	// Event delivery is best effort; the control-plane report still goes
	// out on failure.
	_ = r.events.PublishDeviceState(ctx, namespace, name, "", state)

	return r.client.ReportDeviceStates(ctx, namespace, name, state)
}

func (r *eventingReporter) ReportTwinKV(ctx context.Context, namespace, name, property, value, valueType string) error {
	return r.client.ReportTwinKV(ctx, namespace, name, property, value, valueType)
}
