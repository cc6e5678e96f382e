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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func clearConfigEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"EDGECORE_SOCK", "MYSQL_ENABLED", "MYSQL_PASSWORD", "PASSWORD",
		"MYSQL_SSL_MODE", "PUBLISH_METHOD", "PUBLISH_CONFIG", "NATS_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearConfigEnv(t)

	path := writeConfig(t, `
common:
  name: edgemapper
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "edgemapper", cfg.Common.Name)
	assert.Equal(t, DefaultSocketPath, cfg.GRPCServer.SocketPath)
	assert.Equal(t, DefaultEdgecoreSock, cfg.Common.EdgecoreSock)
	assert.Equal(t, DefaultAPIVersion, cfg.Common.APIVersion)
	assert.Equal(t, DefaultHTTPPort, cfg.Common.HTTPPort)
	assert.Equal(t, "MAPPER_EVENTS", cfg.Events.Stream)
	assert.Equal(t, "mapper.events", cfg.Events.Subject)
}

func TestLoadExplicitValuesWin(t *testing.T) {
	clearConfigEnv(t)

	path := writeConfig(t, `
grpc_server:
  socket_path: /run/mapper.sock
common:
  name: edgemapper
  edgecore_sock: /run/dmi.sock
  http_port: "8888"
database:
  mysql:
    enabled: true
    addr: db.local
    database: telemetry
    username: edge
events:
  nats_url: nats://127.0.0.1:4222
  stream: EDGE_EVENTS
  subject: edge.events
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/run/mapper.sock", cfg.GRPCServer.SocketPath)
	assert.Equal(t, "/run/dmi.sock", cfg.Common.EdgecoreSock)
	assert.Equal(t, "8888", cfg.Common.HTTPPort)
	assert.True(t, cfg.Database.MySQL.Enabled)
	assert.Equal(t, "db.local", cfg.Database.MySQL.Addr)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Events.NATSURL)
	assert.Equal(t, "EDGE_EVENTS", cfg.Events.Stream)
}

func TestLoadRequiresMapperName(t *testing.T) {
	clearConfigEnv(t)

	path := writeConfig(t, `
common:
  version: "1.0"
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, errNoMapperName)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "common: [broken")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("EDGECORE_SOCK", "/env/dmi.sock")
	t.Setenv("MYSQL_ENABLED", "yes")
	t.Setenv("MYSQL_PASSWORD", "hunter2")
	t.Setenv("PUBLISH_METHOD", "mqtt")
	t.Setenv("NATS_URL", "nats://env:4222")

	path := writeConfig(t, `
common:
  name: edgemapper
  edgecore_sock: /file/dmi.sock
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/env/dmi.sock", cfg.Common.EdgecoreSock)
	assert.True(t, cfg.Database.MySQL.Enabled)
	assert.Equal(t, "hunter2", cfg.Database.MySQL.Password)
	assert.Equal(t, "mqtt", cfg.Common.PublishMethod)
	assert.Equal(t, "nats://env:4222", cfg.Events.NATSURL)
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "1", "yes", "on"} {
		assert.True(t, isTruthy(v), v)
	}

	for _, v := range []string{"false", "0", "no", "off", ""} {
		assert.False(t, isTruthy(v), v)
	}
}
