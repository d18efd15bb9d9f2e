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
	"time"

	"vclock/service"
)

// Snapshot is a read-only dump of the global Clock's current state, for
// hosts that want to render it (a debug panel, a status page) without
// reaching into service.Clock internals. It is the Go realization of the
// "host UIs rebind on every change notification" design note (spec.md §9):
// Go has no reactive-binding primitive, so a host instead calls Snapshot
// from its own OnChange callback.
type Snapshot struct {
	Rate               int
	Paused             bool
	Now                time.Time
	LastEventCheckTime time.Time
}

// TakeSnapshot reads the global Clock's current state. Panics with
// ErrNotInitialized if Setup has not been called; use Service directly for
// an error-returning variant.
func TakeSnapshot() Snapshot {
	c := clock()
	return snapshotOf(c)
}

func snapshotOf(c *service.Clock) Snapshot {
	return Snapshot{
		Rate:               c.ClockRate(),
		Paused:             c.IsPaused(),
		Now:                c.Now(),
		LastEventCheckTime: c.LastEventCheckTime(),
	}
}
