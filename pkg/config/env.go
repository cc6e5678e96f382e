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
	"strings"
)

// applyEnvOverrides layers well-known environment variables over the file
// config. Recorder-specific fallbacks (TDENGINE_*, TOKEN) are consumed by
// the recorders themselves when a property config leaves fields empty.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EDGECORE_SOCK"); v != "" {
		cfg.Common.EdgecoreSock = v
	}

	if v := os.Getenv("MYSQL_ENABLED"); v != "" {
		cfg.Database.MySQL.Enabled = isTruthy(v)
	}

	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		cfg.Database.MySQL.Password = v
	} else if v := os.Getenv("PASSWORD"); v != "" && cfg.Database.MySQL.Password == "" {
		cfg.Database.MySQL.Password = v
	}

	if v := os.Getenv("MYSQL_SSL_MODE"); v != "" {
		cfg.Database.MySQL.SSLMode = v
	}

	if v := os.Getenv("PUBLISH_METHOD"); v != "" {
		cfg.Common.PublishMethod = v
	}

	if v := os.Getenv("PUBLISH_CONFIG"); v != "" {
		cfg.Common.PublishConfig = v
	}

	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.Events.NATSURL = v
	}
}

func isTruthy(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
