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

package telemetry

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is what an exporter tick logs. Populated on each tick by the
// snapshot function passed to NewExporter.
type Snapshot struct {
	Rate            int
	Paused          bool
	Now             time.Time
	LastFired       map[string]time.Time
	ThrottleDenials int64
}

// Exporter periodically logs a one-line summary produced by SnapshotFunc,
// mirroring the start/stop/ticker-loop shape of the teacher's
// telemetry/churn exporter loop, simplified to a single summary line instead
// of a rolling-window KPI table.
type Exporter struct {
	mu       sync.Mutex
	stop     chan struct{}
	done     chan struct{}
	interval time.Duration
	snapshot func() Snapshot
	log      func(string)
}

// NewExporter constructs an Exporter. log defaults to fmt.Println-equivalent
// behavior via the supplied function; callers typically pass a
// vclock/internal/log.Sink-backed closure instead.
func NewExporter(interval time.Duration, snapshot func() Snapshot, log func(string)) *Exporter {
	if log == nil {
		log = func(msg string) { fmt.Println(msg) }
	}
	return &Exporter{interval: interval, snapshot: snapshot, log: log}
}

// Start launches the periodic logging loop. No-op if interval <= 0 or
// already running.
func (e *Exporter) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.interval <= 0 || e.stop != nil {
		return
	}
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	go e.loop(e.stop, e.done)
}

// Stop halts the loop and waits for it to exit. Safe to call when not
// running.
func (e *Exporter) Stop() {
	e.mu.Lock()
	stop, done := e.stop, e.done
	e.stop, e.done = nil, nil
	e.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (e *Exporter) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.publish()
		case <-stop:
			return
		}
	}
}

func (e *Exporter) publish() {
	s := e.snapshot()
	state := "running"
	if s.Paused {
		state = "paused"
	}
	e.log(fmt.Sprintf("vclock: rate=%dx state=%s now=%s throttle_denials=%d",
		s.Rate, state, s.Now.Format(time.RFC3339), s.ThrottleDenials))
}
