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

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"vclock/events"
	"vclock/httpguard"
	"vclock/persistence"
	"vclock/transform"
)

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Scenario 1 (spec.md §8): rate=100, travel to a target, wait 10ms real,
// expect virtual time to have advanced roughly 1s-2s past the target.
func TestScenario_AcceleratedTravel(t *testing.T) {
	c := New(persistence.NewMemoryKV(), nil)
	if err := c.Initialize(context.Background(), Config{ClockRate: 100}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer c.Dispose()

	target := time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)
	c.TimeTravelTo(target)
	time.Sleep(10 * time.Millisecond)

	now := c.Now()
	low := target.Add(1 * time.Second)
	high := target.Add(2 * time.Second)
	if now.Before(low) || now.After(high) {
		t.Fatalf("Now() = %v, want within [%v, %v]", now, low, high)
	}
}

// Scenario 2: subscribe to new-hour, travel near an hour boundary, fast
// forward past it, and expect the subscriber to fire on a triggered sweep.
func TestScenario_EventFiresAcrossBoundary(t *testing.T) {
	c := New(persistence.NewMemoryKV(), nil)
	if err := c.Initialize(context.Background(), Config{ClockRate: 100}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer c.Dispose()

	fired := make(chan struct{}, 1)
	c.Detector(events.NameNewHour).Subscribe(func(time.Time) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	base := time.Now().Truncate(time.Hour).Add(59*time.Minute + 50*time.Second)
	c.TimeTravelTo(base)
	c.FastForward(2 * time.Minute)
	c.TriggerEventCheck()

	select {
	case <-fired:
	default:
		t.Fatal("new-hour subscriber did not fire after crossing the boundary")
	}
}

// Scenario 3: throttle limit of 3 allows exactly 3 requests, then throttles.
func TestScenario_HTTPThrottleLimit(t *testing.T) {
	c := New(persistence.NewMemoryKV(), nil)
	cfg := Config{ClockRate: 100, HTTPPolicy: httpguard.Throttle, HTTPThrottleLimit: 3}
	if err := c.Initialize(context.Background(), cfg); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer c.Dispose()

	for i := 0; i < 3; i++ {
		if d := c.Guard("/a"); d.Action != httpguard.Allow {
			t.Fatalf("request %d = %v, want Allow", i, d.Action)
		}
	}
	d := c.Guard("/a")
	if d.Action != httpguard.Throttle {
		t.Fatalf("4th request = %v, want Throttle", d.Action)
	}
	if !strings.Contains(strings.ToLower(d.Reason), "throttle") {
		t.Fatalf("Reason = %q, want to mention throttle", d.Reason)
	}
}

// Scenario 4: blocked patterns override allowed patterns.
func TestScenario_HTTPPolicyPrecedence(t *testing.T) {
	c := New(persistence.NewMemoryKV(), nil)
	cfg := Config{
		ClockRate:           100,
		HTTPPolicy:          httpguard.Allow,
		HTTPAllowedPatterns: []string{"/api/*"},
		HTTPBlockedPatterns: []string{"/api/admin*"},
	}
	if err := c.Initialize(context.Background(), cfg); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer c.Dispose()

	if d := c.Guard("/api/users"); d.Action != httpguard.Allow {
		t.Fatalf("Guard(/api/users) = %v, want Allow", d.Action)
	}
	if d := c.Guard("/api/admin/delete"); d.Action != httpguard.Block {
		t.Fatalf("Guard(/api/admin/delete) = %v, want Block", d.Action)
	}
}

// Scenario 5: production mode accepts rate=1 and rejects any other rate.
func TestScenario_ProductionGuard(t *testing.T) {
	c1 := New(persistence.NewMemoryKV(), nil)
	if err := c1.Initialize(context.Background(), Config{ClockRate: 1, IsProduction: true}); err != nil {
		t.Fatalf("Initialize(rate=1, isProduction) failed: %v", err)
	}
	c1.Dispose()

	c2 := New(persistence.NewMemoryKV(), nil)
	err := c2.Initialize(context.Background(), Config{ClockRate: 100, IsProduction: true})
	if !errors.Is(err, transform.ErrProductionViolation) {
		t.Fatalf("Initialize(rate=100, isProduction) = %v, want ErrProductionViolation", err)
	}
}

// Scenario 6: pause freezes Now(), resume strictly advances it again.
func TestScenario_PauseResume(t *testing.T) {
	c := New(persistence.NewMemoryKV(), nil)
	if err := c.Initialize(context.Background(), Config{ClockRate: 100}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer c.Dispose()

	c.Pause()
	before := c.Now()
	time.Sleep(50 * time.Millisecond)
	after := c.Now()
	if !before.Equal(after) {
		t.Fatalf("Now() changed while paused: %v -> %v", before, after)
	}

	c.Resume()
	time.Sleep(10 * time.Millisecond)
	if !c.Now().After(after) {
		t.Fatal("Now() did not advance after Resume")
	}
}

func TestPersistence_RoundTripAndVersionGate(t *testing.T) {
	kv := persistence.NewMemoryKV()
	ctx := context.Background()

	c1 := New(kv, nil)
	if err := c1.Initialize(ctx, Config{AppVersion: "1.0.0"}); err != nil {
		t.Fatalf("Initialize (first run): %v", err)
	}
	target := time.Date(2040, 3, 3, 0, 0, 0, 0, time.UTC)
	c1.TimeTravelTo(target)
	time.Sleep(10 * time.Millisecond) // let the fire-and-forget persistence write land
	c1.Dispose()

	c2 := New(kv, nil)
	if err := c2.Initialize(ctx, Config{AppVersion: "1.0.0"}); err != nil {
		t.Fatalf("Initialize (same version): %v", err)
	}
	if got := absDuration(c2.Now().Sub(target)); got > time.Second {
		t.Fatalf("Now() after reload = %v, want within 1s of %v", c2.Now(), target)
	}
	c2.Dispose()

	c3 := New(kv, nil)
	if err := c3.Initialize(ctx, Config{AppVersion: "2.0.0"}); err != nil {
		t.Fatalf("Initialize (new version): %v", err)
	}
	defer c3.Dispose()
	if got := absDuration(time.Since(c3.Now())); got > time.Second {
		t.Fatalf("Now() after version bump = %v, want near real time (persisted anchor discarded)", c3.Now())
	}
}

func TestReset_ReinitializesDetectorsWithoutRetroactiveFire(t *testing.T) {
	c := New(persistence.NewMemoryKV(), nil)
	if err := c.Initialize(context.Background(), Config{ClockRate: 1}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer c.Dispose()

	fired := false
	c.Detector(events.NameNewDay).Subscribe(func(time.Time) { fired = true })
	c.TimeTravelTo(time.Date(2000, 1, 1, 23, 59, 0, 0, time.UTC))
	c.Reset()
	c.TriggerEventCheck()

	if fired {
		t.Fatal("new-day subscriber fired retroactively after Reset")
	}
}

func TestDispose_ClearsSubscribers(t *testing.T) {
	c := New(persistence.NewMemoryKV(), nil)
	if err := c.Initialize(context.Background(), Config{ClockRate: 1}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	d := c.Detector(events.NameNewDay)
	d.Subscribe(func(time.Time) {})
	c.Dispose()

	if d.HasSubscribers() {
		t.Fatal("detector still has subscribers after Dispose")
	}
	if c.IsInitialized() {
		t.Fatal("IsInitialized() = true after Dispose")
	}
}
