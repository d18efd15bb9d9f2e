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

// Package main runs the virtual-time kernel as a standalone, curlable
// service: a reference host for vclock/service.Clock, analogous to how
// cmd/ratelimiter-api exposes the VSA rate limiter core over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vclock/adminapi"
	"vclock/auditlog"
	"vclock/httpguard"
	"vclock/persistence"
	"vclock/service"
	"vclock/telemetry"
)

func main() {
	clockRate := flag.Int("clock_rate", 1, "Clock rate multiplier (1 = real time passthrough)")
	isProduction := flag.Bool("is_production", false, "Reject any clock_rate other than 1")
	appVersion := flag.String("app_version", "", "Version gate for persisted-anchor reuse; empty disables the gate")
	redisAddr := flag.String("redis_addr", "", "Redis address for anchor persistence; empty uses an in-memory store")
	httpAddr := flag.String("http_addr", ":8080", "Admin HTTP listen address")
	httpPolicy := flag.String("http_policy", string(httpguard.Block), "Default HTTP guard action: allow|block|throttle")
	httpThrottleLimit := flag.Int("http_throttle_limit", 10, "Requests admitted per 60-real-second window when throttling")
	metricsAddr := flag.String("metrics_addr", "", "If non-empty, expose Prometheus /metrics on this address")
	auditEnabled := flag.Bool("audit_log", false, "Log every clock mutation to stdout via the demo audit producer")
	flag.Parse()

	var kv persistence.KVStore
	if *redisAddr != "" {
		kv = persistence.NewRedisKV(*redisAddr, "vclockd:")
	} else {
		kv = persistence.NewMemoryKV()
	}

	var audit *auditlog.Log
	if *auditEnabled {
		audit = auditlog.New(auditlog.LoggingProducer{}, "vclock.mutations")
	}

	if *metricsAddr != "" {
		telemetry.Enable()
		telemetry.Serve(*metricsAddr)
	}

	clock := service.New(kv, audit)
	cfg := service.Config{
		ClockRate:         *clockRate,
		IsProduction:      *isProduction,
		AppVersion:        *appVersion,
		HTTPPolicy:        httpguard.Action(*httpPolicy),
		HTTPThrottleLimit: *httpThrottleLimit,
		LogCallback: func(msg, level string) {
			log.Printf("[vclockd] [%s] %s", level, msg)
		},
	}

	if err := clock.Initialize(context.Background(), cfg); err != nil {
		log.Fatalf("failed to initialize clock: %v", err)
	}

	mux := http.NewServeMux()
	adminapi.NewServer(clock).RegisterRoutes(mux)
	httpServer := &http.Server{Addr: *httpAddr, Handler: mux}

	go func() {
		fmt.Printf("vclockd admin server listening on %s\n", *httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not listen on %s: %v", *httpAddr, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	fmt.Println("\nShutting down vclockd...")
	clock.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}
	fmt.Println("vclockd stopped.")
}
