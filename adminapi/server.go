// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package adminapi exposes a service.Clock over HTTP so the virtual-time
// kernel can be driven and inspected from curl or a host's own admin
// surface, mirroring the teacher's internal/ratelimiter/api package.
package adminapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"vclock/service"
)

// Server handles admin HTTP requests against a *service.Clock.
type Server struct {
	clock *service.Clock
}

// NewServer wraps clock for HTTP access.
func NewServer(clock *service.Clock) *Server {
	return &Server{clock: clock}
}

// RegisterRoutes wires the admin endpoints onto mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/now", s.handleNow)
	mux.HandleFunc("/travel", s.handleTravel)
	mux.HandleFunc("/rate", s.handleRate)
	mux.HandleFunc("/pause", s.handlePause)
	mux.HandleFunc("/resume", s.handleResume)
	mux.HandleFunc("/guard", s.handleGuard)
}

func (s *Server) handleNow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"now":    s.clock.Now().Format(time.RFC3339Nano),
		"rate":   s.clock.ClockRate(),
		"paused": s.clock.IsPaused(),
		"state":  s.clock.State(),
	})
}

func (s *Server) handleTravel(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("to")
	if target == "" {
		http.Error(w, "missing required query param: to (RFC3339)", http.StatusBadRequest)
		return
	}
	t, err := time.Parse(time.RFC3339, target)
	if err != nil {
		http.Error(w, "invalid time: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.clock.TimeTravelTo(t)
	s.handleNow(w, r)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("value")
	if raw == "" {
		writeJSON(w, map[string]any{"rate": s.clock.ClockRate()})
		return
	}
	rate, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "invalid rate: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.clock.SetRate(rate); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	writeJSON(w, map[string]any{"rate": s.clock.ClockRate()})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.clock.Pause()
	s.handleNow(w, r)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.clock.Resume()
	s.handleNow(w, r)
}

func (s *Server) handleGuard(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "missing required query param: path", http.StatusBadRequest)
		return
	}
	d := s.clock.Guard(path)
	writeJSON(w, map[string]any{"action": d.Action, "reason": d.Reason})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
