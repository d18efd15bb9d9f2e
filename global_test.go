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

package vclock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestService_BeforeSetup(t *testing.T) {
	Reset()
	if _, err := Service(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Service() before Setup = %v, want ErrNotInitialized", err)
	}
}

func TestSetup_ThenService(t *testing.T) {
	Reset()
	defer Reset()

	if err := Setup(context.Background(), Config{ClockRate: 1}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	svc, err := Service()
	if err != nil {
		t.Fatalf("Service(): %v", err)
	}
	if !svc.IsInitialized() {
		t.Fatal("Service().IsInitialized() = false after Setup")
	}
}

func TestReset_ClearsGlobal(t *testing.T) {
	if err := Setup(context.Background(), Config{ClockRate: 1}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	Reset()
	if _, err := Service(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Service() after Reset = %v, want ErrNotInitialized", err)
	}
}

func TestDatePredicates(t *testing.T) {
	Reset()
	defer Reset()

	if err := Setup(context.Background(), Config{ClockRate: 1}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	svc, _ := Service()
	target := time.Date(2032, 8, 9, 15, 0, 0, 0, time.UTC)
	svc.TimeTravelTo(target)

	if !IsVirtualToday(target) {
		t.Error("IsVirtualToday(target) = false, want true")
	}
	if !IsVirtualYesterday(target.AddDate(0, 0, -1)) {
		t.Error("IsVirtualYesterday(target-1d) = false, want true")
	}
	if !IsInVirtualPast(target.Add(-time.Hour)) {
		t.Error("IsInVirtualPast(target-1h) = false, want true")
	}
	if !IsInVirtualFuture(target.Add(time.Hour)) {
		t.Error("IsInVirtualFuture(target+1h) = false, want true")
	}
	if IsDifferentFromVirtualNow(target) {
		t.Error("IsDifferentFromVirtualNow(target) = true, want false (within tolerance)")
	}
	if !IsDifferentFromVirtualNow(target.Add(10 * time.Second)) {
		t.Error("IsDifferentFromVirtualNow(target+10s) = false, want true")
	}
}

func TestTakeSnapshot(t *testing.T) {
	Reset()
	defer Reset()

	if err := Setup(context.Background(), Config{ClockRate: 50}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	s := TakeSnapshot()
	if s.Rate != 50 {
		t.Fatalf("Snapshot.Rate = %d, want 50", s.Rate)
	}
	if s.Paused {
		t.Fatal("Snapshot.Paused = true, want false")
	}
}
