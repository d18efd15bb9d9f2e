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

// Package events implements the boundary-crossing detectors described in
// spec.md §4.2: a shared subscription/last-fired base plus a pure predicate
// per variant. Variants share the base by composition (a plain func field),
// not inheritance, per the design note in spec.md §9.
package events

import (
	"fmt"
	"sync"
	"time"

	"vclock/internal/log"
)

// Callback is invoked with the current virtual time when a detector fires.
type Callback func(current time.Time)

// Predicate decides whether a boundary was crossed going from prev to curr.
// Implementations must treat prev >= curr (no progress, or a backwards jump)
// as "did not fire" — spec.md §4.2's tie-break rule.
type Predicate func(prev, curr time.Time) bool

// Subscription is the "unsubscribe-handle" spec.md §4.2 returns from
// Subscribe. Cancel is idempotent (spec.md §5: "double-revoke is a no-op").
type Subscription struct {
	d  *Detector
	id uint64
}

// Cancel revokes this subscription. Safe to call more than once.
func (s Subscription) Cancel() {
	s.d.Unsubscribe(s.id)
}

type subEntry struct {
	id uint64
	cb Callback
}

// Detector is a single boundary-crossing event source: new-hour, at-noon,
// new-day, week-start, or week-end. See variants.go for the concrete
// predicates.
type Detector struct {
	mu        sync.Mutex
	name      string
	predicate Predicate
	warn      log.Sink

	subs   []subEntry // insertion order, per spec.md §5 ("notifications... delivered in subscription order")
	nextID uint64

	lastFiredAt    time.Time
	hasLastFiredAt bool
}

// New constructs a Detector with the given name and predicate. warn may be
// nil, in which case internal/log.New falls back to the standard library
// logger.
func New(name string, predicate Predicate, warn log.Sink) *Detector {
	return &Detector{name: name, predicate: predicate, warn: log.New(warn)}
}

// Name returns the detector's name, e.g. "new-hour".
func (d *Detector) Name() string { return d.name }

// Subscribe registers cb and returns a Subscription that can later cancel it.
func (d *Detector) Subscribe(cb Callback) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.subs = append(d.subs, subEntry{id: id, cb: cb})
	return Subscription{d: d, id: id}
}

// Unsubscribe removes the subscription with the given id. No-op if already
// removed (spec.md §5).
func (d *Detector) Unsubscribe(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, e := range d.subs {
		if e.id == id {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Clear removes all subscribers.
func (d *Detector) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = nil
}

// HasSubscribers reports whether any callback is currently registered.
func (d *Detector) HasSubscribers() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs) > 0
}

// SubscriberCount returns the number of currently registered callbacks.
func (d *Detector) SubscriberCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// Initialize seeds lastFiredAt at current so that the next CheckAndTrigger
// doesn't retroactively fire for boundaries already crossed before this
// detector existed (spec.md §4.6: "fire initialize(now) on each detector").
func (d *Detector) Initialize(current time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastFiredAt = current
	d.hasLastFiredAt = true
}

// CheckAndTrigger evaluates the predicate against (lastFiredAt ?? current,
// current) and, if it fires, updates lastFiredAt before notifying
// subscribers in order (spec.md §5: "last_fired_at is updated before
// subscribers run"). A detector with no subscribers is a no-op (spec.md
// §4.2) and does not update lastFiredAt, so a later Subscribe+sweep still
// sees the true previous boundary.
func (d *Detector) CheckAndTrigger(current time.Time) bool {
	d.mu.Lock()
	if len(d.subs) == 0 {
		d.mu.Unlock()
		return false
	}
	prev := current
	if d.hasLastFiredAt {
		prev = d.lastFiredAt
	}
	if !d.predicate(prev, current) {
		d.mu.Unlock()
		return false
	}
	d.lastFiredAt = current
	d.hasLastFiredAt = true
	subs := make([]subEntry, len(d.subs))
	copy(subs, d.subs)
	warn := d.warn
	d.mu.Unlock()

	for _, e := range subs {
		notify(e.cb, current, warn)
	}
	return true
}

// notify invokes cb, isolating panics per spec.md §7 ("CallbackFault...
// caught + logged"). A faulting subscriber never aborts the notification
// loop or the event-check ticker.
func notify(cb Callback, current time.Time, warn log.Sink) {
	defer func() {
		if r := recover(); r != nil {
			warn(fmt.Sprintf("event subscriber panicked: %v", r), log.LevelError)
		}
	}()
	cb(current)
}
