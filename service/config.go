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

import "vclock/httpguard"

// LogFunc is the single logging callback the kernel reports through. Hosts
// that don't supply one get a bare log.Printf fallback (see internal/log).
type LogFunc func(msg string, level string)

// Config is the immutable configuration record a host supplies to Setup or
// Clock.Initialize. Field names mirror the "Configuration recognized options"
// table in spec.md §6 (clockRate, isProduction, forceEnable, appVersion,
// logCallback, httpPolicy, httpAllowedPatterns, httpBlockedPatterns,
// httpThrottleLimit, onHttpRequestDenied).
type Config struct {
	// ClockRate is the multiplier applied to elapsed real time. 1 is
	// passthrough. Default 1. A ClockRate of 0 is treated as unset and
	// becomes 1 (see WithDefaults), so a Config cannot start the clock
	// frozen; SetRate(0) after Initialize freezes progression.
	ClockRate int

	// IsProduction hard-guards acceleration: any ClockRate != 1 is rejected
	// with ErrProductionViolation.
	IsProduction bool

	// ForceEnable overrides the release-build downgrade (see
	// EnvironmentDowngrade in spec.md §7) to permit acceleration outside of
	// IsProduction even in a non-debug build.
	ForceEnable bool

	// AppVersion, when set, gates persisted-anchor reuse: a mismatch against
	// the last-persisted version discards the stored virtual time.
	AppVersion string

	// LogCallback receives (msg, level) for every log line the kernel emits.
	// Optional; defaults to a plain log.Printf sink.
	LogCallback LogFunc

	// HTTPPolicy is the default action for paths matching neither
	// HTTPAllowedPatterns nor HTTPBlockedPatterns. Default httpguard.Block.
	HTTPPolicy httpguard.Action
	// HTTPAllowedPatterns are glob patterns evaluated after
	// HTTPBlockedPatterns.
	HTTPAllowedPatterns []string
	// HTTPBlockedPatterns are glob patterns evaluated first; a match always
	// blocks regardless of HTTPPolicy or HTTPAllowedPatterns.
	HTTPBlockedPatterns []string
	// HTTPThrottleLimit bounds admissions per 60 real-second window when
	// HTTPPolicy (or a path's resolved policy) is httpguard.Throttle. Default 10.
	HTTPThrottleLimit int
	// OnHTTPRequestDenied is invoked for every block/throttle decision.
	OnHTTPRequestDenied httpguard.DeniedFunc
}

// defaultConfig returns the zero-value-safe defaults described in spec.md §6.
func defaultConfig() Config {
	return Config{
		ClockRate:         1,
		HTTPPolicy:        httpguard.Block,
		HTTPThrottleLimit: 10,
	}
}

// WithDefaults returns a copy of c with unset fields filled to the documented
// defaults. Mirrors the teacher's NewWithOptions pattern of layering a
// caller-supplied Options struct over a zero-value baseline.
func (c Config) WithDefaults() Config {
	d := defaultConfig()
	out := c
	if out.ClockRate == 0 {
		// A zero-value Config means "rate unset" and defaults to 1, not to
		// spec.md's "0 = frozen progression" — a caller that genuinely wants
		// to start frozen calls SetRate(0) after Initialize instead. Flagged
		// as an Open Question decision in DESIGN.md.
		out.ClockRate = d.ClockRate
	}
	if out.HTTPPolicy == "" {
		out.HTTPPolicy = d.HTTPPolicy
	}
	if out.HTTPThrottleLimit <= 0 {
		out.HTTPThrottleLimit = d.HTTPThrottleLimit
	}
	return out
}
