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

package device

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/carverauto/edgemapper/pkg/driver"
	"github.com/carverauto/edgemapper/pkg/models"
)

// visitorForLocked builds the driver visitor for a twin's property. Returns
// nil when the twin references no known property.
func (d *Device) visitorForLocked(twin *models.Twin) *driver.Visitor {
	prop := d.propertyForLocked(twin)
	if prop == nil {
		d.logger.Warn().Str("property", twin.PropertyName).Msg("twin references unknown property")
		return nil
	}

	index := twin.Property
	if index < 0 {
		index = d.instance.PropertyIndex(twin.PropertyName)
	}

	return &driver.Visitor{
		PropertyName: twin.PropertyName,
		ProtocolName: d.instance.Protocol.ProtocolName,
		ConfigData:   prop.Visitors,
		Offset:       resolveOffset(d.instance.Protocol, twin.PropertyName, index),
	}
}

// resolveOffset picks the register offset for a property. Precedence: a
// top-level integer in the protocol configData keyed by property name, then
// the same key inside a nested "configData" object, then 1 plus the
// property's index in the instance.
func resolveOffset(protocol models.ProtocolConfig, propertyName string, index int) int {
	if len(protocol.ConfigData) > 0 {
		var top map[string]json.RawMessage

		if err := json.Unmarshal(protocol.ConfigData, &top); err == nil {
			if n, ok := intFromRaw(top[propertyName]); ok {
				return n
			}

			if nested, ok := top["configData"]; ok {
				var inner map[string]json.RawMessage

				if err := json.Unmarshal(nested, &inner); err == nil {
					if n, ok := intFromRaw(inner[propertyName]); ok {
						return n
					}
				}
			}
		}
	}

	return 1 + index
}

// intFromRaw extracts an integer from a JSON number or a string-encoded
// integer, the two shapes the wire layer produces for configData scalars.
func intFromRaw(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}

	return 0, false
}
