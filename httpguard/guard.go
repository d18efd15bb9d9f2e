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

// Package httpguard implements the glob-policy + wall-clock throttle guard
// described in spec.md §4.3: it prevents an accelerated virtual clock from
// inadvertently amplifying request traffic to real backends. Evaluation
// never raises — PolicyDenied outcomes are returned as a Decision value
// (spec.md §7), the same way the teacher's api.Server returns an HTTP status
// rather than panicking on a rejected request.
package httpguard

import (
	"fmt"
	"sync"
	"time"
)

// Action is the outcome of a guard evaluation.
type Action string

const (
	Allow    Action = "allow"
	Block    Action = "block"
	Throttle Action = "throttle"
)

// DeniedFunc is invoked for every Block/Throttle decision.
type DeniedFunc func(path string, reason string)

// Window is the fixed wall-clock sliding window used by Throttle, per
// spec.md §4.3 ("throttle window fixed at 60 real seconds").
const Window = 60 * time.Second

// Decision is the result of Guard.Guard.
type Decision struct {
	Action Action
	Reason string
}

// RateFunc reports the clock's current rate. When it returns 1, Guard always
// allows (spec.md §4.3: "real-time mode never blocks").
type RateFunc func() int

// Guard evaluates an HTTP path against a glob policy and, for Throttle
// paths, a wall-clock sliding-window request log.
type Guard struct {
	rate RateFunc

	defaultAction Action
	allowed       []*compiledPattern
	blocked       []*compiledPattern

	throttleLimit int
	onDenied      DeniedFunc

	mu      sync.Mutex
	log     []time.Time // FIFO of wall-clock admission times
	nowFunc func() time.Time
}

// Config configures a new Guard.
type Config struct {
	DefaultAction   Action
	AllowedPatterns []string
	BlockedPatterns []string
	ThrottleLimit   int
	OnDenied        DeniedFunc
}

// New builds a Guard. rate supplies the live clock rate; nowFunc defaults to
// time.Now (overridable in tests for deterministic throttle-window checks).
func New(rate RateFunc, cfg Config, nowFunc func() time.Time) *Guard {
	if cfg.ThrottleLimit <= 0 {
		cfg.ThrottleLimit = 10
	}
	if nowFunc == nil {
		nowFunc = time.Now
	}
	g := &Guard{
		rate:          rate,
		defaultAction: cfg.DefaultAction,
		throttleLimit: cfg.ThrottleLimit,
		onDenied:      cfg.OnDenied,
		nowFunc:       nowFunc,
	}
	for _, p := range cfg.AllowedPatterns {
		g.allowed = append(g.allowed, compile(p))
	}
	for _, p := range cfg.BlockedPatterns {
		g.blocked = append(g.blocked, compile(p))
	}
	return g
}

// Guard evaluates path and returns the resulting Decision, calling onDenied
// for Block/Throttle outcomes (spec.md §4.3).
func (g *Guard) Guard(path string) Decision {
	if g.rate() == 1 {
		return Decision{Action: Allow}
	}

	for _, p := range g.blocked {
		if p.match(path) {
			reason := fmt.Sprintf("accelerated mode active (rate=%dx)", g.rate())
			g.deny(path, reason)
			return Decision{Action: Block, Reason: reason}
		}
	}
	for _, p := range g.allowed {
		if p.match(path) {
			return Decision{Action: Allow}
		}
	}

	switch g.defaultAction {
	case Block:
		reason := fmt.Sprintf("accelerated mode active (rate=%dx)", g.rate())
		g.deny(path, reason)
		return Decision{Action: Block, Reason: reason}
	case Throttle:
		return g.throttle(path)
	default:
		return Decision{Action: Allow}
	}
}

// IsAllowed is a convenience wrapper over Guard.
func (g *Guard) IsAllowed(path string) bool {
	return g.Guard(path).Action == Allow
}

// throttle evicts stale entries and admits if the remaining count is below
// the configured limit, per spec.md §4.3. Uses wall-clock time exclusively
// so an accelerated virtual clock cannot inflate the admitted rate.
func (g *Guard) throttle(path string) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.nowFunc()
	cutoff := now.Add(-Window)
	i := 0
	for i < len(g.log) && g.log[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		g.log = g.log[i:]
	}

	if len(g.log) < g.throttleLimit {
		g.log = append(g.log, now)
		return Decision{Action: Allow}
	}

	reason := fmt.Sprintf("Throttle limit (%d/min) exceeded", g.throttleLimit)
	g.deny(path, reason)
	return Decision{Action: Throttle, Reason: reason}
}

// ResetThrottle clears the request log.
func (g *Guard) ResetThrottle() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.log = nil
}

func (g *Guard) deny(path, reason string) {
	if g.onDenied != nil {
		g.onDenied(path, reason)
	}
}
