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
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/edgemapper/pkg/logger"
)

func clearBackendEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"MYSQL_ADDR", "MYSQL_DATABASE", "MYSQL_USER",
		"REDIS_ADDR", "TOKEN",
		"TDENGINE_ADDR", "TDENGINE_DBNAME",
	} {
		t.Setenv(key, "")
	}
}

func TestMySQLConfigNormalize(t *testing.T) {
	cfg := &mysqlConfig{Addr: "db.local:3307"}
	cfg.normalize()
	assert.Equal(t, "db.local", cfg.Addr)
	assert.Equal(t, "3307", cfg.Port)

	cfg = &mysqlConfig{Addr: "db.local"}
	cfg.normalize()
	assert.Equal(t, "db.local", cfg.Addr)
	assert.Equal(t, "3306", cfg.Port)

	// An explicit port wins over a combined addr.
	cfg = &mysqlConfig{Addr: "db.local:3307", Port: "3308"}
	cfg.normalize()
	assert.Equal(t, "db.local:3307", cfg.Addr)
	assert.Equal(t, "3308", cfg.Port)
}

func TestMySQLConfigCacheKey(t *testing.T) {
	cfg := &mysqlConfig{Addr: "db.local", Port: "3306", Database: "telemetry", UserName: "edge"}
	assert.Equal(t, "db.local:3306/telemetry@edge", cfg.cacheKey())
}

func TestMySQLSetDBRequiresAddrAndDatabase(t *testing.T) {
	clearBackendEnv(t)

	m := NewMySQL(NewMySQLHandleCache(), logger.NewTestLogger())

	assert.ErrorIs(t, m.SetDB(nil), errNoMySQLConfig)
	assert.ErrorIs(t, m.SetDB(json.RawMessage(`{"addr":"db.local"}`)), errNoMySQLConfig)
}

func TestMySQLSetDBRejectsMalformedConfig(t *testing.T) {
	m := NewMySQL(NewMySQLHandleCache(), logger.NewTestLogger())
	assert.Error(t, m.SetDB(json.RawMessage(`{bad`)))
}

func TestMySQLHandleCacheSharing(t *testing.T) {
	clearBackendEnv(t)

	cache := NewMySQLHandleCache()

	cfg := &mysqlConfig{Addr: "db.local", Port: "3306", Database: "telemetry", UserName: "edge"}

	// sql.Open defers dialing, so acquire succeeds without a server.
	first, err := cache.acquire(cfg)
	require.NoError(t, err)

	second, err := cache.acquire(cfg)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 2, first.refs)

	cache.release(second)
	assert.Len(t, cache.handles, 1)

	cache.release(first)
	assert.Empty(t, cache.handles)
}

func TestRedisSetDBRequiresAddr(t *testing.T) {
	clearBackendEnv(t)

	r := NewRedis(logger.NewTestLogger())
	assert.ErrorIs(t, r.SetDB(nil), errNoRedisConfig)
	require.NoError(t, r.Close())
}

func TestRedisRecordWithoutConfigFails(t *testing.T) {
	clearBackendEnv(t)

	r := NewRedis(logger.NewTestLogger())
	err := r.Record(context.Background(), "factory", "sensor-1", "temperature", "21.5", 1700000000000)
	assert.ErrorIs(t, err, errNoRedisConfig)
}

func TestInfluxSetDBRequiresConnectionFields(t *testing.T) {
	clearBackendEnv(t)

	f := NewInflux(logger.NewTestLogger())
	assert.ErrorIs(t, f.SetDB(nil), errNoInfluxConfig)
	assert.ErrorIs(t, f.SetDB(json.RawMessage(`{"url":"http://influx:8086"}`)), errNoInfluxConfig)
}

func TestInfluxRecordWritesLineProtocol(t *testing.T) {
	clearBackendEnv(t)

	var (
		gotPath  string
		gotQuery string
		gotAuth  string
		gotBody  string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(body)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	f := NewInflux(logger.NewTestLogger())
	require.NoError(t, f.SetDB(json.RawMessage(fmt.Sprintf(
		`{"url":%q,"org":"edge","bucket":"telemetry","token":"secret"}`, srv.URL))))

	tsMillis := int64(1700000000000)
	require.NoError(t, f.Record(context.Background(), "factory", "sensor-1", "temperature", "21.5", tsMillis))

	assert.Equal(t, "/api/v2/write", gotPath)
	assert.Equal(t, "org=edge&bucket=telemetry&precision=ns", gotQuery)
	assert.Equal(t, "Token secret", gotAuth)
	assert.Equal(t, fmt.Sprintf(`factory_sensor-1 temperature="21.5" %d`, tsMillis*1000000), gotBody)
}

func TestInfluxRecordUsesConfiguredShape(t *testing.T) {
	clearBackendEnv(t)

	var gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(body)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	f := NewInflux(logger.NewTestLogger())
	require.NoError(t, f.SetDB(json.RawMessage(fmt.Sprintf(
		`{"url":%q,"org":"edge","bucket":"telemetry","token":"secret",
		  "measurement":"samples","fieldKey":"reading","tag":{"site":"plant 1","zone":"a"}}`, srv.URL))))

	require.NoError(t, f.Record(context.Background(), "factory", "sensor-1", "temperature", "21.5", 1))

	// Tags are sorted and line-protocol escaped.
	assert.Equal(t, `samples,site=plant\ 1,zone=a reading="21.5" 1000000`, gotBody)
}

func TestInfluxRecordRejectsNon2xx(t *testing.T) {
	clearBackendEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewInflux(logger.NewTestLogger())
	require.NoError(t, f.SetDB(json.RawMessage(fmt.Sprintf(
		`{"url":%q,"org":"edge","bucket":"telemetry","token":"secret"}`, srv.URL))))

	err := f.Record(context.Background(), "factory", "sensor-1", "temperature", "21.5", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestEscapeLineProtocol(t *testing.T) {
	assert.Equal(t, `plant\ 1`, escapeLineProtocol("plant 1"))
	assert.Equal(t, `a\,b`, escapeLineProtocol("a,b"))
	assert.Equal(t, `k\=v`, escapeLineProtocol("k=v"))
	assert.Equal(t, "plain", escapeLineProtocol("plain"))
}

func TestSortedTagKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, sortedTagKeys(map[string]string{"c": "", "a": "", "b": ""}))
	assert.Empty(t, sortedTagKeys(nil))
}

func TestTDengineSetDBRequiresAddrAndDB(t *testing.T) {
	clearBackendEnv(t)

	td := NewTDengine(logger.NewTestLogger())
	assert.ErrorIs(t, td.SetDB(nil), errNoTDengineConfig)
	assert.ErrorIs(t, td.SetDB(json.RawMessage(`{"addr":"td:6041"}`)), errNoTDengineConfig)
}

func TestTDengineTableName(t *testing.T) {
	assert.Equal(t, "factory_sensor_1", tdengineTableName("factory", "sensor-1"))
	assert.Equal(t, "sensor_1", tdengineTableName("", "sensor-1"))
	assert.Equal(t, "factory_a_b", tdengineTableName("factory", "a/b"))
}
