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

import "time"

// virtualDateTolerance is the 1-second tolerance spec.md §6 specifies for
// IsDifferentFromVirtualNow.
const virtualDateTolerance = time.Second

// IsVirtualToday reports whether t falls on the same calendar day as the
// global Clock's current virtual time, in t's own location.
func IsVirtualToday(t time.Time) bool {
	return sameDate(t, clock().Now().In(t.Location()))
}

// IsVirtualYesterday reports whether t falls on the calendar day immediately
// before the global Clock's current virtual time.
func IsVirtualYesterday(t time.Time) bool {
	now := clock().Now().In(t.Location())
	return sameDate(t, now.AddDate(0, 0, -1))
}

// IsInVirtualPast reports whether t is strictly before the global Clock's
// current virtual time.
func IsInVirtualPast(t time.Time) bool {
	return t.Before(clock().Now())
}

// IsInVirtualFuture reports whether t is strictly after the global Clock's
// current virtual time.
func IsInVirtualFuture(t time.Time) bool {
	return t.After(clock().Now())
}

// DifferenceFromVirtualNow returns t minus the global Clock's current
// virtual time (positive when t is in the future).
func DifferenceFromVirtualNow(t time.Time) time.Duration {
	return t.Sub(clock().Now())
}

// IsDifferentFromVirtualNow reports whether t differs from the global
// Clock's current virtual time by more than a 1-second tolerance, per
// spec.md §6.
func IsDifferentFromVirtualNow(t time.Time) bool {
	d := DifferenceFromVirtualNow(t)
	if d < 0 {
		d = -d
	}
	return d > virtualDateTolerance
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
