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

package wire

import (
	"strconv"

	"github.com/carverauto/edgemapper/pkg/models"
	"github.com/carverauto/edgemapper/proto"
)

// DeviceStatus builds the wire status envelope for a device instance.
func DeviceStatus(inst *models.DeviceInstance, withTwins bool) *proto.DeviceStatus {
	status := &proto.DeviceStatus{State: inst.Status}

	if !withTwins {
		return status
	}

	status.Twins = make([]*proto.Twin, 0, len(inst.Twins))

	for i := range inst.Twins {
		status.Twins = append(status.Twins, TwinToProto(&inst.Twins[i]))
	}

	return status
}

// DeviceToProto builds the wire device envelope used by GetDevice replies.
func DeviceToProto(inst *models.DeviceInstance, withTwins bool) *proto.Device {
	return &proto.Device{
		Name:      inst.Name,
		Namespace: inst.Namespace,
		Spec: &proto.DeviceSpec{
			DeviceModelReference: inst.Model,
		},
		Status: DeviceStatus(inst, withTwins),
	}
}

// TwinToProto converts an internal twin to its wire form.
func TwinToProto(twin *models.Twin) *proto.Twin {
	return &proto.Twin{
		PropertyName:    twin.PropertyName,
		ObservedDesired: twinValueToProto(twin.ObservedDesired),
		Reported:        twinValueToProto(twin.Reported),
	}
}

// ReportedKV builds the wire twin for one reported key/value pair.
func ReportedKV(property, value, valueType string, tsMillis int64) *proto.Twin {
	return &proto.Twin{
		PropertyName: property,
		Reported: &proto.TwinProperty{
			Value: value,
			Metadata: map[string]string{
				"timestamp": strconv.FormatInt(tsMillis, 10),
				"type":      valueType,
			},
		},
	}
}

func twinValueToProto(v models.TwinValue) *proto.TwinProperty {
	if v.Value == "" && v.Metadata.Timestamp == 0 {
		return nil
	}

	meta := map[string]string{}

	if v.Metadata.Timestamp != 0 {
		meta["timestamp"] = strconv.FormatInt(v.Metadata.Timestamp, 10)
	}

	if v.Metadata.Type != "" {
		meta["type"] = v.Metadata.Type
	}

	return &proto.TwinProperty{Value: v.Value, Metadata: meta}
}
