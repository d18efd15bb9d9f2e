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

// Package vclock provides a virtual-time kernel: a controllable wall clock
// for applications that depend on date/time progression (daily bonuses,
// streaks, scheduled jobs, cache expiry). It lets a host accelerate, pause,
// jump, and rewind "now" deterministically while keeping boundary events,
// virtual timers, and date predicates causally consistent with the jumps.
//
// The package exposes a process-wide accessor (Setup/Service/Reset) on top
// of service.Clock, plus date predicates bound to that global instance. Hosts
// that want multiple independent clocks should construct service.Clock
// directly instead of going through the global accessor.
package vclock
