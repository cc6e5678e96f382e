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
	"time"

	"github.com/gorilla/websocket"
)

const (
	streamInterval   = time.Second
	streamWriteLimit = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local admin surface only; no cross-origin callers expected.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// deviceSnapshot is one device's state in a stream frame.
type deviceSnapshot struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Twins  map[string]any `json:"twins"`
}

// handleStream pushes a snapshot of every device once per second until the
// client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	defer func() { _ = conn.Close() }()

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			frame := s.snapshot()

			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteLimit))

			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}

func (s *Server) snapshot() []deviceSnapshot {
	devices := s.registry.Devices()
	out := make([]deviceSnapshot, 0, len(devices))

	for _, dev := range devices {
		snapshot := dev.SnapshotTwins()
		twins := make(map[string]any, len(snapshot))

		for i := range snapshot {
			twin := &snapshot[i]
			twins[twin.PropertyName] = map[string]any{
				"value":     twin.Reported.Value,
				"timestamp": twin.Reported.Metadata.Timestamp,
			}
		}

		out = append(out, deviceSnapshot{
			ID:     dev.ID(),
			Status: dev.Status(),
			Twins:  twins,
		})
	}

	return out
}
