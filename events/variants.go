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

package events

import (
	"time"

	"vclock/internal/log"
)

// Names of the five built-in detectors. service.Clock evaluates them in
// this fixed order (spec.md §4.2/§5).
const (
	NameNewHour   = "new-hour"
	NameAtNoon    = "at-noon"
	NameNewDay    = "new-day"
	NameWeekStart = "week-start"
	NameWeekEnd   = "week-end"
)

// NewHour fires when curr has crossed into a later hour than prev.
func NewHour(warn log.Sink) *Detector {
	return New(NameNewHour, func(prev, curr time.Time) bool {
		if !curr.After(prev) {
			return false
		}
		return curr.Truncate(time.Hour).After(prev.Truncate(time.Hour))
	}, warn)
}

// AtNoon fires once per calendar day when the transition crosses or lands
// past 12:00, per the precise rule in spec.md §4.2: same calendar day
// requires prev.Hour < 12 <= curr.Hour; a different calendar day fires as
// long as curr.Hour >= 12 (so a fast-forward overshooting noon by days still
// fires exactly once, for the landing day).
func AtNoon(warn log.Sink) *Detector {
	return New(NameAtNoon, func(prev, curr time.Time) bool {
		if !curr.After(prev) {
			return false
		}
		sameDay := prev.Year() == curr.Year() && prev.YearDay() == curr.YearDay()
		if sameDay {
			return prev.Hour() < 12 && curr.Hour() >= 12
		}
		return curr.Hour() >= 12
	}, warn)
}

// NewDay fires when the (year, month, day) triple changes.
func NewDay(warn log.Sink) *Detector {
	return New(NameNewDay, func(prev, curr time.Time) bool {
		if !curr.After(prev) {
			return false
		}
		py, pm, pd := prev.Date()
		cy, cm, cd := curr.Date()
		return py != cy || pm != cm || pd != cd
	}, warn)
}

// WeekStart fires on the Monday boundary: the ISO week number (or year)
// differs between prev and curr.
func WeekStart(warn log.Sink) *Detector {
	return New(NameWeekStart, func(prev, curr time.Time) bool {
		if !curr.After(prev) {
			return false
		}
		py, pw := prev.ISOWeek()
		cy, cw := curr.ISOWeek()
		return py != cy || pw != cw
	}, warn)
}

// WeekEnd fires on the Sunday->Monday transition: the Monday-of-week of prev
// differs from the Monday-of-week of curr, or curr is at least 7 days past
// prev (an upper-bound approximation for jumps that skip entire weeks —
// see spec.md §9's Open Question and DESIGN.md for why both checks are
// kept rather than relying on the jump-distance check alone).
func WeekEnd(warn log.Sink) *Detector {
	return New(NameWeekEnd, func(prev, curr time.Time) bool {
		if !curr.After(prev) {
			return false
		}
		if curr.Sub(prev) >= 7*24*time.Hour {
			return true
		}
		return !mondayOfWeek(prev).Equal(mondayOfWeek(curr))
	}, warn)
}

// mondayOfWeek returns local midnight of the Monday on or before t.
func mondayOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday()) // Sunday = 0
	if weekday == 0 {
		weekday = 7
	}
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -(weekday - 1))
}
