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

// Package service holds the Clock orchestrator: the component that wires a
// time transform, the five boundary-event detectors, an HTTP guard, a
// virtual-timer scaler, a persistence store, and (optionally) telemetry and
// an audit log into the single object a host initializes and drives
// (spec.md §4.6). Everything else in this module is a leaf package Clock
// composes; only Clock knows about all of them at once.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vclock/auditlog"
	"vclock/events"
	"vclock/httpguard"
	"vclock/internal/log"
	"vclock/persistence"
	"vclock/telemetry"
	"vclock/transform"
	"vclock/vtimer"
)

// State mirrors spec.md §6's `state` accessor.
type State string

const (
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// detectorOrder is the fixed evaluation order spec.md §4.2/§5 requires.
var detectorOrder = []string{
	events.NameNewHour,
	events.NameAtNoon,
	events.NameNewDay,
	events.NameWeekStart,
	events.NameWeekEnd,
}

// Clock is the orchestrator described in spec.md §4.6. The zero value is not
// usable; construct with New and call Initialize.
type Clock struct {
	mu sync.Mutex

	config Config
	log    log.Sink

	transform *transform.Transform
	detectors map[string]*events.Detector
	guard     *httpguard.Guard
	scaler    *vtimer.Scaler
	kv        persistence.KVStore
	audit     *auditlog.Log

	initialized bool

	tickerStop chan struct{}
	tickerDone chan struct{}

	lastEventCheck time.Time

	onChange []func()
}

// New constructs an uninitialized Clock backed by kv (nil defaults to a
// fresh persistence.MemoryKV) and an optional audit sink (nil disables
// audit publishing).
func New(kv persistence.KVStore, audit *auditlog.Log) *Clock {
	if kv == nil {
		kv = persistence.NewMemoryKV()
	}
	return &Clock{kv: kv, audit: audit}
}

// Initialize coerces the rate, applies environment guards, builds the
// transform, detectors, HTTP guard and timer scaler, loads the persisted
// anchor, initializes every detector at the resulting Now(), starts the
// event-check ticker, and emits one change notification at the tail.
func (c *Clock) Initialize(ctx context.Context, cfg Config) error {
	cfg = cfg.WithDefaults()
	sink := log.New(cfg.LogCallback)

	rate, err := coerceConfigRate(cfg.ClockRate, cfg.IsProduction, cfg.ForceEnable, sink)
	if err != nil {
		return err
	}
	cfg.ClockRate = rate

	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return errors.New("service: Clock already initialized, call Dispose first")
	}
	c.config = cfg
	c.log = sink

	warn := func(msg string) { sink(msg, log.LevelWarn) }
	tr := transform.New(cfg.ClockRate, cfg.IsProduction, warn)
	c.transform = tr

	c.detectors = map[string]*events.Detector{
		events.NameNewHour:   events.NewHour(sink),
		events.NameAtNoon:    events.AtNoon(sink),
		events.NameNewDay:    events.NewDay(sink),
		events.NameWeekStart: events.WeekStart(sink),
		events.NameWeekEnd:   events.WeekEnd(sink),
	}

	c.guard = httpguard.New(tr.Rate, httpguard.Config{
		DefaultAction:   cfg.HTTPPolicy,
		AllowedPatterns: cfg.HTTPAllowedPatterns,
		BlockedPatterns: cfg.HTTPBlockedPatterns,
		ThrottleLimit:   cfg.HTTPThrottleLimit,
		OnDenied:        cfg.OnHTTPRequestDenied,
	}, nil)

	c.scaler = vtimer.New(tr.Rate, cfg.IsProduction, nil)
	c.mu.Unlock()

	if err := c.loadPersistedAnchor(ctx, cfg); err != nil {
		sink(fmt.Sprintf("persistence load failed, starting from real time: %v", err), log.LevelError)
	}

	tr.SetHooks(c.onReanchor, c.TriggerEventCheck)

	now := tr.Now()
	c.mu.Lock()
	for _, name := range detectorOrder {
		c.detectors[name].Initialize(now)
	}
	c.initialized = true
	c.mu.Unlock()

	telemetry.SetRate(cfg.ClockRate)
	telemetry.SetPaused(false)
	c.startTicker(cfg.ClockRate)
	c.notifyChange()
	return nil
}

// coerceConfigRate applies spec.md §7's InvalidRate/EnvironmentDowngrade
// rules to a freshly supplied Config.ClockRate, ahead of transform.New.
func coerceConfigRate(rate int, isProduction, forceEnable bool, sink log.Sink) (int, error) {
	if rate < 0 {
		sink(fmt.Sprintf("clockRate %d is negative, coercing to 1", rate), log.LevelWarn)
		rate = 1
	}
	if isProduction && rate != 1 {
		return 0, transform.ErrProductionViolation
	}
	if rate != 1 && !forceEnable && !debugBuild {
		sink(fmt.Sprintf("clockRate %d requested outside a debug build without forceEnable, forcing 1", rate), log.LevelWarn)
		rate = 1
	}
	return rate, nil
}

// loadPersistedAnchor implements spec.md §4.5's load rule.
func (c *Clock) loadPersistedAnchor(ctx context.Context, cfg Config) error {
	persistedVersion, hasVersion, err := c.kv.GetStr(ctx, persistence.KeyAppVersion)
	if err != nil {
		return err
	}

	discard := !hasVersion || (cfg.AppVersion != "" && cfg.AppVersion != persistedVersion)

	var base time.Time
	if discard {
		base = time.Now()
	} else {
		ms, ok, err := c.kv.GetInt(ctx, persistence.KeyBaseTimestamp)
		if err != nil {
			return err
		}
		if ok {
			base = time.UnixMilli(ms)
		} else {
			base = time.Now()
		}
	}

	c.mu.Lock()
	c.transform.LoadAnchor(base)
	c.mu.Unlock()

	c.persistAnchor(ctx, base, cfg.AppVersion)
	return nil
}

// onReanchor is the transform.Transform hook that persists a new anchor
// fire-and-forget, per spec.md §5 ("persistence writes from these are
// fire-and-forget").
func (c *Clock) onReanchor(base time.Time) {
	go c.persistAnchor(context.Background(), base, c.config.AppVersion)
}

func (c *Clock) persistAnchor(ctx context.Context, base time.Time, appVersion string) {
	if err := c.kv.SetInt(ctx, persistence.KeyBaseTimestamp, base.UnixMilli()); err != nil {
		c.logPersistenceFault(err)
	}
	if appVersion != "" {
		if err := c.kv.SetStr(ctx, persistence.KeyAppVersion, appVersion); err != nil {
			c.logPersistenceFault(err)
		}
	}
}

func (c *Clock) logPersistenceFault(err error) {
	c.mu.Lock()
	sink := c.log
	c.mu.Unlock()
	if sink != nil {
		sink(fmt.Sprintf("persistence write failed: %v", err), log.LevelError)
	}
	telemetry.ObservePersistenceError()
}

// startTicker launches the event-check loop at the cadence spec.md §4.6
// defines, restarting any ticker already running (used by SetRate).
func (c *Clock) startTicker(rate int) {
	c.stopTicker()

	stop := make(chan struct{})
	done := make(chan struct{})
	c.mu.Lock()
	c.tickerStop = stop
	c.tickerDone = done
	c.mu.Unlock()

	interval := eventCheckInterval(rate)
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.TriggerEventCheck()
			case <-stop:
				return
			}
		}
	}()
}

func (c *Clock) stopTicker() {
	c.mu.Lock()
	stop, done := c.tickerStop, c.tickerDone
	c.tickerStop, c.tickerDone = nil, nil
	c.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// eventCheckInterval is spec.md §4.6's cadence rule:
// interval_ms = rate > 1 ? clamp(1000/rate, 50, 1000) : 1000.
func eventCheckInterval(rate int) time.Duration {
	if rate <= 1 {
		return time.Second
	}
	ms := 1000 / rate
	if ms < 50 {
		ms = 50
	}
	if ms > 1000 {
		ms = 1000
	}
	return time.Duration(ms) * time.Millisecond
}

// Dispose stops the event-check ticker and clears every detector's
// subscribers, per spec.md §4.6.
func (c *Clock) Dispose() {
	c.stopTicker()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	for _, name := range detectorOrder {
		c.detectors[name].Clear()
	}
	c.onChange = nil
	c.initialized = false
}

// IsInitialized reports whether Initialize has completed without a
// subsequent Dispose.
func (c *Clock) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// IsProduction reports the configured production guard.
func (c *Clock) IsProduction() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.IsProduction
}

// ClockRate returns the transform's current rate.
func (c *Clock) ClockRate() int {
	return c.requireTransform().Rate()
}

// State returns StateRunning or StatePaused.
func (c *Clock) State() State {
	if c.requireTransform().IsPaused() {
		return StatePaused
	}
	return StateRunning
}

// IsPaused reports whether the transform is currently paused.
func (c *Clock) IsPaused() bool {
	return c.requireTransform().IsPaused()
}

// LastEventCheckTime returns the virtual time as of the most recent event
// sweep (periodic or triggered).
func (c *Clock) LastEventCheckTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastEventCheck
}

// Now returns the current virtual time.
func (c *Clock) Now() time.Time {
	return c.requireTransform().Now()
}

// TimeTravelTo jumps the virtual clock directly to target.
func (c *Clock) TimeTravelTo(target time.Time) {
	c.requireTransform().TimeTravelTo(target)
	c.publishMutation("time_travel")
	c.notifyChange()
}

// FastForward advances the virtual clock by d.
func (c *Clock) FastForward(d time.Duration) {
	c.requireTransform().FastForward(d)
	c.publishMutation("fast_forward")
	c.notifyChange()
}

// Pause freezes virtual-time progression.
func (c *Clock) Pause() {
	c.requireTransform().Pause()
	telemetry.SetPaused(true)
	c.publishMutation("pause")
	c.notifyChange()
}

// Resume resumes virtual-time progression.
func (c *Clock) Resume() {
	c.requireTransform().Resume()
	telemetry.SetPaused(false)
	c.publishMutation("resume")
	c.notifyChange()
}

// Reset re-anchors both time axes to the current real time and
// reinitializes every detector so no boundary is retroactively crossed.
func (c *Clock) Reset() {
	tr := c.requireTransform()
	tr.Reset()
	now := tr.Now()
	c.mu.Lock()
	for _, name := range detectorOrder {
		c.detectors[name].Initialize(now)
	}
	c.mu.Unlock()
	c.publishMutation("reset")
	c.notifyChange()
}

// SetRate changes the clock rate, restarting the event-check ticker at the
// new cadence.
func (c *Clock) SetRate(rate int) error {
	tr := c.requireTransform()
	if err := tr.SetRate(rate); err != nil {
		return err
	}
	telemetry.SetRate(tr.Rate())
	c.startTicker(tr.Rate())
	c.publishMutation("set_rate")
	c.notifyChange()
	return nil
}

// IncreaseRate multiplies the current rate by multiplier (0 defaults to 2.0).
func (c *Clock) IncreaseRate(multiplier float64) error {
	tr := c.requireTransform()
	if err := tr.IncreaseRate(multiplier); err != nil {
		return err
	}
	telemetry.SetRate(tr.Rate())
	c.startTicker(tr.Rate())
	c.publishMutation("set_rate")
	c.notifyChange()
	return nil
}

// DecreaseRate multiplies the current rate by multiplier (0 defaults to 0.5).
func (c *Clock) DecreaseRate(multiplier float64) error {
	tr := c.requireTransform()
	if err := tr.DecreaseRate(multiplier); err != nil {
		return err
	}
	telemetry.SetRate(tr.Rate())
	c.startTicker(tr.Rate())
	c.publishMutation("set_rate")
	c.notifyChange()
	return nil
}

func (c *Clock) publishMutation(kind string) {
	c.mu.Lock()
	audit := c.audit
	sink := c.log
	c.mu.Unlock()
	if audit == nil {
		return
	}
	now, rate := c.Now(), c.ClockRate()
	go func() {
		if err := audit.Publish(context.Background(), kind, now, rate); err != nil && sink != nil {
			sink(fmt.Sprintf("audit publish failed: %v", err), log.LevelError)
		}
	}()
}

// Detector returns the named detector (one of the events.Name* constants),
// or nil if Clock has not been initialized.
func (c *Clock) Detector(name string) *events.Detector {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detectors == nil {
		return nil
	}
	return c.detectors[name]
}

// TriggerEventCheck runs an on-demand sweep of every detector with
// subscribers, in the fixed order spec.md §4.2/§5 mandates. No-op while
// paused.
func (c *Clock) TriggerEventCheck() {
	tr := c.requireTransform()
	if tr.IsPaused() {
		return
	}
	current := tr.Now()

	c.mu.Lock()
	c.lastEventCheck = current
	detectors := c.detectors
	c.mu.Unlock()

	for _, name := range detectorOrder {
		if detectors[name].CheckAndTrigger(current) {
			telemetry.ObserveEvent(name)
		}
	}
}

// Guard evaluates path against the HTTP guard policy.
func (c *Clock) Guard(path string) httpguard.Decision {
	d := c.requireGuard().Guard(path)
	telemetry.ObserveGuardDecision(string(d.Action))
	return d
}

// IsAllowed is a convenience wrapper over Guard.
func (c *Clock) IsAllowed(path string) bool {
	return c.Guard(path).Action == httpguard.Allow
}

// ResetThrottle clears the HTTP guard's wall-clock request log.
func (c *Clock) ResetThrottle() {
	c.requireGuard().ResetThrottle()
}

// Periodic schedules cb to run every d of virtual time (scaled by the
// current rate at construction).
func (c *Clock) Periodic(d time.Duration, cb func(h vtimer.Handle)) vtimer.Handle {
	return c.requireScaler().Periodic(d, cb)
}

// Delayed schedules cb to run once after d of virtual time.
func (c *Clock) Delayed(d time.Duration, cb func(h vtimer.Handle)) vtimer.Handle {
	return c.requireScaler().Delayed(d, cb)
}

// Wait returns a channel that fires once after d of virtual time. If ctx is
// cancelled first, the timer is cancelled and the channel never fires.
func (c *Clock) Wait(ctx context.Context, d time.Duration) <-chan time.Time {
	return c.requireScaler().Wait(ctx, d)
}

// ClearAllState removes both persisted keys without mutating the live
// transform, per spec.md §4.5.
func (c *Clock) ClearAllState(ctx context.Context) error {
	c.mu.Lock()
	kv := c.kv
	c.mu.Unlock()
	if err := kv.Remove(ctx, persistence.KeyBaseTimestamp); err != nil {
		return err
	}
	return kv.Remove(ctx, persistence.KeyAppVersion)
}

// OnChange registers cb to be called once at the tail of every mutating
// operation (time-travel, fast-forward, pause, resume, reset, rate change,
// initialize), per the observer pattern in spec.md §9. Returns an unsubscribe
// function.
func (c *Clock) OnChange(cb func()) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, cb)
	idx := len(c.onChange) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < len(c.onChange) {
			c.onChange[idx] = nil
		}
	}
}

func (c *Clock) notifyChange() {
	c.mu.Lock()
	cbs := make([]func(), len(c.onChange))
	copy(cbs, c.onChange)
	c.mu.Unlock()
	for _, cb := range cbs {
		if cb != nil {
			cb()
		}
	}
}

func (c *Clock) requireTransform() *transform.Transform {
	c.mu.Lock()
	tr := c.transform
	c.mu.Unlock()
	if tr == nil {
		panic("service: Clock used before Initialize")
	}
	return tr
}

func (c *Clock) requireGuard() *httpguard.Guard {
	c.mu.Lock()
	g := c.guard
	c.mu.Unlock()
	if g == nil {
		panic("service: Clock used before Initialize")
	}
	return g
}

func (c *Clock) requireScaler() *vtimer.Scaler {
	c.mu.Lock()
	s := c.scaler
	c.mu.Unlock()
	if s == nil {
		panic("service: Clock used before Initialize")
	}
	return s
}
