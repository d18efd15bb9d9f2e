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

// Package telemetry provides opt-in, low-overhead Prometheus instrumentation
// for a service.Clock. Like the teacher's telemetry/churn package, every
// exported function is safe to call when telemetry is disabled (they become
// no-ops), so the hot paths (Now, Guard) never pay for metrics unless a host
// opts in.
package telemetry

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	enabled atomic.Bool

	clockRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vclock_rate",
		Help: "Current clock rate multiplier (1 = real time passthrough)",
	})
	clockPaused = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vclock_paused",
		Help: "1 if the clock is currently paused, 0 otherwise",
	})
	eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vclock_events_total",
		Help: "Total boundary events fired, by detector name",
	}, []string{"detector"})
	guardDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vclock_http_guard_decisions_total",
		Help: "Total HTTP guard decisions, by action",
	}, []string{"action"})
	persistenceErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vclock_persistence_errors_total",
		Help: "Total persistence I/O failures (logged and swallowed)",
	})
)

func init() {
	prometheus.MustRegister(clockRate, clockPaused, eventsTotal, guardDecisionsTotal, persistenceErrorsTotal)
}

// Enable turns on metric recording. Safe to call multiple times.
func Enable() { enabled.Store(true) }

// Enabled reports whether recording is currently on.
func Enabled() bool { return enabled.Load() }

// SetRate records the current clock rate.
func SetRate(rate int) {
	if !enabled.Load() {
		return
	}
	clockRate.Set(float64(rate))
}

// SetPaused records the current pause state.
func SetPaused(paused bool) {
	if !enabled.Load() {
		return
	}
	if paused {
		clockPaused.Set(1)
	} else {
		clockPaused.Set(0)
	}
}

// ObserveEvent increments the fired-event counter for detector.
func ObserveEvent(detector string) {
	if !enabled.Load() {
		return
	}
	eventsTotal.WithLabelValues(detector).Inc()
}

// ObserveGuardDecision increments the guard-decision counter for action.
func ObserveGuardDecision(action string) {
	if !enabled.Load() {
		return
	}
	guardDecisionsTotal.WithLabelValues(action).Inc()
}

// ObservePersistenceError increments the persistence-error counter.
func ObservePersistenceError() {
	if !enabled.Load() {
		return
	}
	persistenceErrorsTotal.Inc()
}

// Serve starts a dedicated /metrics listener on addr, mirroring
// churn.Config.MetricsAddr's standalone-exporter option. Returns immediately;
// the listener runs until the process exits or the returned server is
// closed by the caller via http.Server semantics (addr is typically only
// used in the cmd/vclockd reference binary, not in library tests).
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
