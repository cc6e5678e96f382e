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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/taosdata/driver-go/v3/taosRestful" // tdengine driver registration

	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/sink"
)

var errNoTDengineConfig = errors.New("tdengine recorder has no usable config")

// tdengineConfig is the per-property TDengine recorder config.
type tdengineConfig struct {
	Addr   string `json:"addr"`
	DBName string `json:"dbName"`
}

// TDengine records samples into one super table per device.
type TDengine struct {
	mu      sync.Mutex
	db      *sql.DB
	cfg     *tdengineConfig
	stables map[string]bool
	logger  logger.Logger
}

// NewTDengine creates an unconnected TDengine recorder.
func NewTDengine(log logger.Logger) *TDengine {
	return &TDengine{stables: make(map[string]bool), logger: log}
}

// SetDB implements sink.Recorder.
func (t *TDengine) SetDB(config json.RawMessage) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.setDBLocked(config)
}

func (t *TDengine) setDBLocked(config json.RawMessage) error {
	// The TDengine client stack mis-parses timestamps under exotic
	// locales.
	_ = os.Setenv("LC_ALL", "C.UTF-8")

	cfg := &tdengineConfig{}

	if len(config) > 0 {
		if err := json.Unmarshal(config, cfg); err != nil {
			return fmt.Errorf("failed to parse tdengine config: %w", err)
		}
	}

	if cfg.Addr == "" {
		cfg.Addr = os.Getenv("TDENGINE_ADDR")
	}

	if cfg.DBName == "" {
		cfg.DBName = os.Getenv("TDENGINE_DBNAME")
	}

	if cfg.Addr == "" || cfg.DBName == "" {
		return errNoTDengineConfig
	}

	user := os.Getenv("TDENGINE_USER")
	if user == "" {
		user = "root"
	}

	password := os.Getenv("TDENGINE_PASSWORD")
	if password == "" {
		password = "taosdata"
	}

	if t.db != nil {
		_ = t.db.Close()
		t.db = nil
	}

	dsn := fmt.Sprintf("%s:%s@http(%s)/", user, password, cfg.Addr)

	db, err := sql.Open("taosRestful", dsn)
	if err != nil {
		return fmt.Errorf("failed to open tdengine connection: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.DBName)); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create tdengine database %s: %w", cfg.DBName, err)
	}

	if _, err := db.Exec(fmt.Sprintf("USE %s", cfg.DBName)); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to use tdengine database %s: %w", cfg.DBName, err)
	}

	t.cfg = cfg
	t.db = db
	t.stables = make(map[string]bool)

	return nil
}

// Record implements sink.Recorder.
func (t *TDengine) Record(ctx context.Context, namespace, device, property, value string, tsMillis int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.db == nil {
		if err := t.setDBLocked(nil); err != nil {
			t.logger.Warn().Err(err).Msg("TDengine recorder not initialized")
			return err
		}
	}

	stable := tdengineTableName(namespace, device)

	if !t.stables[stable] {
		createStmt := fmt.Sprintf(
			"CREATE STABLE IF NOT EXISTS %s (ts timestamp, deviceid binary(64), propertyname binary(64), data binary(64), type binary(64)) TAGS (location binary(64))",
			stable)

		if _, err := t.db.ExecContext(ctx, createStmt); err != nil {
			return fmt.Errorf("failed to create stable %s: %w", stable, err)
		}

		t.stables[stable] = true
	}

	table := tdengineTableName("", property)
	ts := time.UnixMilli(tsMillis).Format("2006-01-02 15:04:05.000")

	insertStmt := fmt.Sprintf(
		"INSERT INTO %s USING %s TAGS ('%s') VALUES ('%s', '%s', '%s', '%s', '%s')",
		table, stable, table, ts, device, property, value, "string")

	if _, err := t.db.ExecContext(ctx, insertStmt); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	return nil
}

// Close implements sink.Recorder.
func (t *TDengine) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.db == nil {
		return nil
	}

	err := t.db.Close()
	t.db = nil
	t.stables = make(map[string]bool)

	return err
}

// tdengineTableName builds a legal TDengine table name from sanitized
// identifiers; '/' and '-' both become '_'.
func tdengineTableName(namespace, name string) string {
	parts := make([]string, 0, 2)

	if namespace != "" {
		parts = append(parts, sink.SanitizeIdentifier(namespace, identifierFallback))
	}

	parts = append(parts, sink.SanitizeIdentifier(name, identifierFallback))

	joined := strings.Join(parts, "_")
	joined = strings.ReplaceAll(joined, "/", "_")
	joined = strings.ReplaceAll(joined, "-", "_")

	return joined
}
