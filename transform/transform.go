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

// Package transform maintains the real/virtual time anchor and projects
// Now() from it. It is the engine at the center of the virtual-time kernel:
// every other subsystem (events, httpguard, vtimer) reads Now() or Rate()
// from a *Transform.
//
// State is protected by a single mutex, following the spec's note that Go
// (always multi-threaded via goroutines) must take the "preemptive runtime"
// path rather than the single-loop fast path: there is no lock-free read
// path here, unlike the striped-atomics style of the teacher's root VSA
// type. This package instead mirrors pkg/vsa's simpler Mutex-guarded
// struct, since the anchor recomputation on every Now() call needs a
// consistent read of multiple fields together.
package transform

import (
	"errors"
	"sync"
	"time"
)

// ErrProductionViolation is returned when a caller attempts to accelerate the
// clock (request a rate other than 1) while the transform was constructed
// with isProduction set.
var ErrProductionViolation = errors.New("transform: rate acceleration rejected, clock is in production mode")

// MinRate and MaxRate bound SetRate, per spec.md §6 ("clockRate ∈ [0, 100_000]").
const (
	MinRate = 0
	MaxRate = 100_000
)

// WarnFunc receives a human-readable message whenever an input is coerced
// rather than rejected (InvalidRate, EnvironmentDowngrade in spec.md §7).
type WarnFunc func(msg string)

// Transform is the real-time <-> virtual-time projection described in
// spec.md §3/§4.1. Zero value is not usable; construct with New.
type Transform struct {
	mu sync.Mutex

	baseReal     time.Time
	baseVirtual  time.Time
	rate         int
	paused       bool
	pausedAt     time.Time
	pausedOffset time.Duration

	// neverAnchored is true until the first mutating operation; while true
	// and rate == 1, Now() returns real time directly (production
	// passthrough, spec.md §4.1).
	neverAnchored bool

	isProduction bool
	warn         WarnFunc

	// onReanchor is called with the new base-virtual value after every
	// operation that re-anchors the transform (time-travel, fast-forward,
	// reset, set-rate). Used by service.Clock to persist the anchor.
	onReanchor func(baseVirtual time.Time)
	// onMutate is called at the tail of every mutating operation. Used by
	// service.Clock to trigger an event-detector sweep (spec.md §4.1,
	// §4.6: "time_travel_to, fast_forward... must trigger an immediate
	// event sweep").
	onMutate func()
}

// New constructs a Transform anchored at the current real time with the
// given initial rate and production guard. warn may be nil.
func New(rate int, isProduction bool, warn WarnFunc) *Transform {
	now := time.Now()
	return &Transform{
		baseReal:      now,
		baseVirtual:   now,
		rate:          rate,
		neverAnchored: true,
		isProduction:  isProduction,
		warn:          warnOrNoop(warn),
	}
}

func warnOrNoop(w WarnFunc) WarnFunc {
	if w != nil {
		return w
	}
	return func(string) {}
}

// SetHooks wires the persistence and event-sweep callbacks. Called once by
// service.Clock during Initialize, after the transform is loaded from the
// KV store (so the very first LoadAnchor doesn't re-trigger a sweep against
// uninitialized detectors).
func (t *Transform) SetHooks(onReanchor func(time.Time), onMutate func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReanchor = onReanchor
	t.onMutate = onMutate
}

// LoadAnchor seeds baseVirtual/baseReal from a persisted value without
// treating it as a fresh anchor event (no onReanchor/onMutate firing). Used
// once at Initialize time by the persistence load rule (spec.md §4.5).
func (t *Transform) LoadAnchor(baseVirtual time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.baseReal = time.Now()
	t.baseVirtual = baseVirtual
	t.neverAnchored = false
}

// Now returns the current virtual time per the invariant in spec.md §3.
func (t *Transform) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nowLocked(time.Now())
}

func (t *Transform) nowLocked(real time.Time) time.Time {
	if t.rate == 1 && t.neverAnchored {
		return real
	}
	var elapsedReal time.Duration
	if t.paused {
		elapsedReal = t.pausedAt.Sub(t.baseReal) - t.pausedOffset
	} else {
		elapsedReal = real.Sub(t.baseReal) - t.pausedOffset
	}
	return t.baseVirtual.Add(time.Duration(t.rate) * elapsedReal)
}

// TimeTravelTo sets the virtual anchor directly to target. Persists the new
// base-virtual and triggers an event sweep at the tail, per spec.md §4.1.
func (t *Transform) TimeTravelTo(target time.Time) {
	t.mu.Lock()
	real := time.Now()
	t.baseReal = real
	t.baseVirtual = target
	t.pausedOffset = 0
	t.neverAnchored = false
	if t.paused {
		t.pausedAt = real
	}
	onReanchor, onMutate := t.onReanchor, t.onMutate
	t.mu.Unlock()

	if onReanchor != nil {
		onReanchor(target)
	}
	if onMutate != nil {
		onMutate()
	}
}

// FastForward is equivalent to TimeTravelTo(Now() + d), per spec.md §4.1.
func (t *Transform) FastForward(d time.Duration) {
	t.TimeTravelTo(t.Now().Add(d))
}

// Pause transitions to the paused state. Idempotent.
func (t *Transform) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused {
		return
	}
	t.paused = true
	t.pausedAt = time.Now()
	t.neverAnchored = false
}

// Resume transitions out of the paused state, folding the elapsed pause
// duration into pausedOffset. Idempotent.
func (t *Transform) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.paused {
		return
	}
	t.pausedOffset += time.Since(t.pausedAt)
	t.paused = false
	t.pausedAt = time.Time{}
}

// Reset re-anchors both axes to the current real time, clears pause state,
// and triggers persistence + an event sweep. It does not touch detectors:
// re-initializing them is the caller's job (service.Clock.Reset does it
// right after this call).
func (t *Transform) Reset() {
	t.mu.Lock()
	real := time.Now()
	t.baseReal = real
	t.baseVirtual = real
	t.paused = false
	t.pausedAt = time.Time{}
	t.pausedOffset = 0
	t.neverAnchored = false
	onReanchor, onMutate := t.onReanchor, t.onMutate
	t.mu.Unlock()

	if onReanchor != nil {
		onReanchor(real)
	}
	if onMutate != nil {
		onMutate()
	}
}

// SetRate changes the rate, re-anchoring both axes to preserve the current
// Now() value (spec.md §4.1). Rejected in production; otherwise clamped to
// [MinRate, MaxRate] with a warning when out of range.
//
// Per the Open Question in spec.md §9, this implementation re-anchors
// pausedAt to the current real time when paused (same as TimeTravelTo) —
// meaning a rate change while paused starts a fresh pause span for the
// purposes of a future Resume. See DESIGN.md for why this reading was chosen
// over the alternative.
func (t *Transform) SetRate(newRate int) error {
	t.mu.Lock()
	if t.isProduction && newRate != 1 {
		t.mu.Unlock()
		return ErrProductionViolation
	}
	clamped := newRate
	if clamped < MinRate {
		t.warn("set_rate: negative rate clamped to 0")
		clamped = MinRate
	}
	if clamped > MaxRate {
		t.warn("set_rate: rate above maximum clamped to 100000")
		clamped = MaxRate
	}

	real := time.Now()
	v := t.nowLocked(real)
	t.rate = clamped
	t.baseVirtual = v
	t.baseReal = real
	t.pausedOffset = 0
	t.neverAnchored = false
	if t.paused {
		t.pausedAt = real
	}
	onReanchor, onMutate := t.onReanchor, t.onMutate
	t.mu.Unlock()

	if onReanchor != nil {
		onReanchor(v)
	}
	if onMutate != nil {
		onMutate()
	}
	return nil
}

// IncreaseRate multiplies the current rate by multiplier (default 2.0 per
// spec.md §6) and applies it via SetRate.
func (t *Transform) IncreaseRate(multiplier float64) error {
	if multiplier <= 0 {
		multiplier = 2.0
	}
	return t.SetRate(int(float64(t.Rate()) * multiplier))
}

// DecreaseRate multiplies the current rate by multiplier (default 0.5 per
// spec.md §6) and applies it via SetRate.
func (t *Transform) DecreaseRate(multiplier float64) error {
	if multiplier <= 0 {
		multiplier = 0.5
	}
	return t.SetRate(int(float64(t.Rate()) * multiplier))
}

// Rate returns the current rate.
func (t *Transform) Rate() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rate
}

// IsPaused reports whether the transform is currently paused.
func (t *Transform) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// BaseVirtual returns the current virtual anchor, for persistence snapshots.
func (t *Transform) BaseVirtual() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.baseVirtual
}
