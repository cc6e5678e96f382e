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

// Package recorder implements the time-series recorders behind the sink
// contracts: MySQL, Redis, InfluxDB2, and TDengine.
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

	_ "github.com/go-sql-driver/mysql" // mysql driver registration

	"github.com/carverauto/edgemapper/pkg/logger"
	"github.com/carverauto/edgemapper/pkg/sink"
)

const (
	mysqlConnTimeout = 10 * time.Second
	mysqlTimeFormat  = "2006-01-02 15:04:05"

	identifierFallback = "unknown"
)

var errNoMySQLConfig = errors.New("mysql recorder has no usable config")

// mysqlConfig is the per-property MySQL recorder config lowered by the wire
// layer.
type mysqlConfig struct {
	Addr     string `json:"addr"`
	Port     string `json:"port"`
	Database string `json:"database"`
	UserName string `json:"userName"`
	SSLMode  string `json:"sslMode"`
}

// cacheKey identifies a shared connection: "addr:port/db@user".
func (c *mysqlConfig) cacheKey() string {
	return fmt.Sprintf("%s:%s/%s@%s", c.Addr, c.Port, c.Database, c.UserName)
}

// normalize splits a combined "host:port" addr and fills defaults.
func (c *mysqlConfig) normalize() {
	if c.Port == "" {
		if host, port, ok := strings.Cut(c.Addr, ":"); ok {
			c.Addr, c.Port = host, port
		} else {
			c.Port = "3306"
		}
	}
}

// mysqlHandle is one refcounted *sql.DB shared between recorders with the
// same cache key.
type mysqlHandle struct {
	db   *sql.DB
	key  string
	refs int
}

// MySQLHandleCache shares connections between properties pointing at the
// same server/database/user triple. Release-on-zero closes the handle.
type MySQLHandleCache struct {
	mu      sync.Mutex
	handles map[string]*mysqlHandle
}

// NewMySQLHandleCache creates an empty handle cache.
func NewMySQLHandleCache() *MySQLHandleCache {
	return &MySQLHandleCache{handles: make(map[string]*mysqlHandle)}
}

func (c *MySQLHandleCache) acquire(cfg *mysqlConfig) (*mysqlHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cfg.cacheKey()

	if h, ok := c.handles[key]; ok {
		h.refs++
		return h, nil
	}

	password := os.Getenv("MYSQL_PASSWORD")
	if password == "" {
		password = os.Getenv("PASSWORD")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?timeout=%s",
		cfg.UserName, password, cfg.Addr, cfg.Port, cfg.Database, mysqlConnTimeout)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = os.Getenv("MYSQL_SSL_MODE")
	}

	if strings.EqualFold(sslMode, "require") || strings.EqualFold(sslMode, "true") {
		dsn += "&tls=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}

	h := &mysqlHandle{db: db, key: key, refs: 1}
	c.handles[key] = h

	return h, nil
}

func (c *MySQLHandleCache) release(h *mysqlHandle) {
	if h == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	h.refs--
	if h.refs <= 0 {
		_ = h.db.Close()
		delete(c.handles, h.key)
	}
}

// MySQL is the MySQL recorder. One mutex serializes every operation,
// including the remote insert.
type MySQL struct {
	mu     sync.Mutex
	cache  *MySQLHandleCache
	cfg    *mysqlConfig
	handle *mysqlHandle
	logger logger.Logger
}

// NewMySQL creates a MySQL recorder sharing handles through cache.
func NewMySQL(cache *MySQLHandleCache, log logger.Logger) *MySQL {
	if cache == nil {
		cache = NewMySQLHandleCache()
	}

	return &MySQL{cache: cache, logger: log}
}

// SetDB implements sink.Recorder. An empty config falls back to environment
// variables for the missing fields.
func (m *MySQL) SetDB(config json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.setDBLocked(config)
}

func (m *MySQL) setDBLocked(config json.RawMessage) error {
	cfg := &mysqlConfig{}

	if len(config) > 0 {
		if err := json.Unmarshal(config, cfg); err != nil {
			return fmt.Errorf("failed to parse mysql config: %w", err)
		}
	}

	if cfg.Addr == "" {
		cfg.Addr = os.Getenv("MYSQL_ADDR")
	}

	if cfg.Database == "" {
		cfg.Database = os.Getenv("MYSQL_DATABASE")
	}

	if cfg.UserName == "" {
		cfg.UserName = os.Getenv("MYSQL_USER")
	}

	if cfg.Addr == "" || cfg.Database == "" {
		return errNoMySQLConfig
	}

	cfg.normalize()

	if m.handle != nil {
		m.cache.release(m.handle)
		m.handle = nil
	}

	handle, err := m.cache.acquire(cfg)
	if err != nil {
		return err
	}

	m.cfg = cfg
	m.handle = handle

	return nil
}

// Record implements sink.Recorder.
func (m *MySQL) Record(ctx context.Context, namespace, device, property, value string, tsMillis int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == nil {
		// Lazy initialization, attempted exactly once per call.
		if err := m.setDBLocked(nil); err != nil {
			m.logger.Warn().Err(err).Msg("MySQL recorder not initialized")
			return err
		}
	}

	table := fmt.Sprintf("%s_%s_%s",
		sink.SanitizeIdentifier(namespace, identifierFallback),
		sink.SanitizeIdentifier(device, identifierFallback),
		sink.SanitizeIdentifier(property, identifierFallback))
	table = strings.ReplaceAll(table, "/", "_")

	createStmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS `%s` (id INT AUTO_INCREMENT PRIMARY KEY, ts DATETIME NOT NULL, field TEXT)", table)

	if _, err := m.handle.db.ExecContext(ctx, createStmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	stmt, err := m.handle.db.PrepareContext(ctx, fmt.Sprintf("INSERT INTO `%s` (ts, field) VALUES (?, ?)", table))
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	ts := time.UnixMilli(tsMillis).Local().Format(mysqlTimeFormat)

	if _, err := stmt.ExecContext(ctx, ts, value); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	return nil
}

// Close implements sink.Recorder.
func (m *MySQL) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		m.cache.release(m.handle)
		m.handle = nil
	}

	return nil
}
