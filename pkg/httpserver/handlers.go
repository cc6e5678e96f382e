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

package httpserver

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/carverauto/edgemapper/pkg/device"
	"github.com/carverauto/edgemapper/pkg/models"
)

// handlePing reports process liveness plus host load.
func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	data := map[string]any{"status": "ok"}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		data["cpuPercent"] = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		data["memoryPercent"] = vm.UsedPercent
	}

	s.writeEnvelope(w, http.StatusOK, "", data)
}

// handleReadDevice returns the current reported value of one property.
func (s *Server) handleReadDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.readProperty(w, vars["namespace"], vars["name"], vars["property"])
}

// handleReadDeviceByID is the dotted "<namespace>.<name>" form of the read
// path.
func (s *Server) handleReadDeviceByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	dev, err := s.registry.Get(vars["id"])
	if err != nil {
		s.writeEnvelope(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	s.writeReported(w, dev, vars["property"])
}

func (s *Server) readProperty(w http.ResponseWriter, namespace, name, property string) {
	dev, err := s.lookup(namespace, name)
	if err != nil {
		s.writeEnvelope(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	s.writeReported(w, dev, property)
}

func (s *Server) writeReported(w http.ResponseWriter, dev *device.Device, property string) {
	value, err := dev.ReportedValue(property)
	if err != nil {
		s.writeEnvelope(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	s.writeEnvelope(w, http.StatusOK, "", map[string]any{
		"propertyName": property,
		"value":        value.Value,
		"type":         value.Metadata.Type,
		"timestamp":    value.Metadata.Timestamp,
	})
}

// handleListMethods lists the device's methods and the properties they
// cover.
func (s *Server) handleListMethods(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	dev, err := s.lookup(vars["namespace"], vars["name"])
	if err != nil {
		s.writeEnvelope(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	inst := dev.Instance()
	properties := make([]string, 0, len(inst.Properties))

	for i := range inst.Properties {
		properties = append(properties, inst.Properties[i].Name)
	}

	s.writeEnvelope(w, http.StatusOK, "", map[string]any{
		"methods":    inst.Methods,
		"properties": properties,
	})
}

// handleInvokeMethod runs a device method: a validated write through the
// driver followed by a read-back.
func (s *Server) handleInvokeMethod(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	dev, err := s.lookup(vars["namespace"], vars["name"])
	if err != nil {
		s.writeEnvelope(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	methodName := vars["method"]
	property := vars["property"]

	method := dev.Instance().MethodByName(methodName)
	if method == nil {
		s.writeEnvelope(w, http.StatusInternalServerError, "unknown method "+methodName, nil)
		return
	}

	if !slices.Contains(method.PropertyNames, property) {
		s.writeEnvelope(w, http.StatusInternalServerError,
			"method "+methodName+" does not cover property "+property, nil)
		return
	}

	observed, err := dev.Set(r.Context(), property, vars["data"])
	if err != nil {
		s.writeEnvelope(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	s.writeEnvelope(w, http.StatusOK, "", map[string]any{
		"propertyName": property,
		"value":        observed,
		"timestamp":    time.Now().UnixMilli(),
	})
}

// handleModelMeta summarizes a model from the catalog.
func (s *Server) handleModelMeta(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	model := s.registry.Model(models.CanonicalID(vars["namespace"], vars["name"]))
	if model == nil {
		s.writeEnvelope(w, http.StatusInternalServerError, "unknown model "+vars["name"], nil)
		return
	}

	s.writeEnvelope(w, http.StatusOK, "", model)
}

// handleDatabase is reserved; it always returns an empty array.
func (s *Server) handleDatabase(w http.ResponseWriter, _ *http.Request) {
	s.writeEnvelope(w, http.StatusOK, "", []any{})
}
