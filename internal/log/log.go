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

// Package log is the single logging indirection the rest of the kernel calls
// through. It never talks to stdout directly — every call is routed to a
// host-supplied callback, falling back to the standard library logger when
// none was configured. This keeps every log line of the core behind one
// replaceable callback, matching how telemetry/churn in the teacher gates all
// of its own output behind a Config.Enabled flag.
package log

import "log"

// Sink is a (msg, level) callback, matching vclock.LogFunc's shape without
// importing the root package (avoids an import cycle — the root package
// imports service, which imports this package).
type Sink func(msg string, level string)

// Levels used throughout the kernel. Not an enum — callers are free to
// ignore level and just print msg.
const (
	LevelDebug = "debug"
	LevelWarn  = "warn"
	LevelError = "error"
)

// New returns fn if non-nil, otherwise a Sink that forwards to the standard
// library logger prefixed with the level.
func New(fn Sink) Sink {
	if fn != nil {
		return fn
	}
	return func(msg string, level string) {
		log.Printf("[vclock] [%s] %s", level, msg)
	}
}
