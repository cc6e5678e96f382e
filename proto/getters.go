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

package proto

// Nil-safe accessors in the generated-code shape for the request messages
// the server side consumes.

func (x *RegisterDeviceRequest) GetDevice() *Device {
	if x != nil {
		return x.Device
	}

	return nil
}

func (x *UpdateDeviceRequest) GetDevice() *Device {
	if x != nil {
		return x.Device
	}

	return nil
}

func (x *RemoveDeviceRequest) GetDeviceName() string {
	if x != nil {
		return x.DeviceName
	}

	return ""
}

func (x *RemoveDeviceRequest) GetNamespace() string {
	if x != nil {
		return x.Namespace
	}

	return ""
}

func (x *CreateDeviceModelRequest) GetModel() *DeviceModel {
	if x != nil {
		return x.Model
	}

	return nil
}

func (x *UpdateDeviceModelRequest) GetModel() *DeviceModel {
	if x != nil {
		return x.Model
	}

	return nil
}

func (x *RemoveDeviceModelRequest) GetModelName() string {
	if x != nil {
		return x.ModelName
	}

	return ""
}

func (x *RemoveDeviceModelRequest) GetNamespace() string {
	if x != nil {
		return x.Namespace
	}

	return ""
}

func (x *GetDeviceRequest) GetDeviceName() string {
	if x != nil {
		return x.DeviceName
	}

	return ""
}

func (x *GetDeviceRequest) GetNamespace() string {
	if x != nil {
		return x.Namespace
	}

	return ""
}

func (x *MapperRegisterRequest) GetMapper() *MapperInfo {
	if x != nil {
		return x.Mapper
	}

	return nil
}

func (x *ReportDeviceStatesRequest) GetDeviceName() string {
	if x != nil {
		return x.DeviceName
	}

	return ""
}

func (x *ReportDeviceStatesRequest) GetState() string {
	if x != nil {
		return x.State
	}

	return ""
}

func (x *ReportDeviceStatusRequest) GetTwin() *Twin {
	if x != nil {
		return x.Twin
	}

	return nil
}
