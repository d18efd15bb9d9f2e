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
	"sync"

	"vclock/service"
)

// global is the process-wide optional service.Clock handle described in
// spec.md §4.7. It is guarded by globalMu rather than an atomic.Pointer so
// Setup can cheaply check-then-set without a second allocation.
var (
	globalMu sync.Mutex
	global   *service.Clock
)

// Setup constructs a fresh process-wide Clock, stores it for Service to
// return, and initializes it with cfg. A prior instance is never reused:
// calling Setup again without an intervening Reset disposes the old instance
// before the new one is initialized, mirroring the teacher's idempotent
// reconfigure-in-place pattern for its global registries.
func Setup(ctx context.Context, cfg Config) error {
	globalMu.Lock()
	prior := global
	c := service.New(nil, nil)
	global = c
	globalMu.Unlock()

	if prior != nil {
		prior.Dispose()
	}
	return c.Initialize(ctx, cfg)
}

// Service returns the process-wide Clock, or ErrNotInitialized if Setup has
// not been called (or a prior instance was Reset).
func Service() (*service.Clock, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		return nil, ErrNotInitialized
	}
	return global, nil
}

// clock is the short-name accessor spec.md §4.7 describes; the date
// predicates below are bound to it. Panics with ErrNotInitialized's message
// if Setup was never called — callers that want the error instead should use
// Service.
func clock() *service.Clock {
	c, err := Service()
	if err != nil {
		panic(err)
	}
	return c
}

// Reset disposes the process-wide Clock (if any) and clears the handle so a
// subsequent Setup starts fresh. Tests rely on this to get deterministic
// global state between cases (spec.md §9: "tests must be able to reset").
func Reset() {
	globalMu.Lock()
	c := global
	global = nil
	globalMu.Unlock()
	if c != nil {
		c.Dispose()
	}
}
