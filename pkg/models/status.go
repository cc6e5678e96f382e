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

package models

import "strings"

// Device status values reported to the control plane.
const (
	StatusOK           = "ok"
	StatusOnline       = "online"
	StatusOffline      = "offline"
	StatusDisconnected = "disconnected"
	StatusUnhealthy    = "unhealthy"
	StatusUnknown      = "unknown"
)

// NormalizeStatus maps raw driver state strings onto the canonical status
// set. Unrecognized non-empty values pass through lowercased, so the
// function is idempotent.
func NormalizeStatus(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "OK", "ONLINE":
		return StatusOK
	case "OFFLINE", "DOWN":
		return StatusOffline
	case "":
		return StatusOffline
	default:
		return strings.ToLower(strings.TrimSpace(raw))
	}
}
