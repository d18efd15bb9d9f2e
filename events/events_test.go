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
	"testing"
	"time"
)

func TestDetector_NoSubscribersIsNoop(t *testing.T) {
	d := New("test", func(prev, curr time.Time) bool { return true }, nil)
	if d.CheckAndTrigger(time.Now()) {
		t.Fatal("CheckAndTrigger fired with no subscribers")
	}
}

func TestDetector_SubscribeAndFire(t *testing.T) {
	d := New("test", func(prev, curr time.Time) bool { return curr.After(prev) }, nil)
	var got time.Time
	calls := 0
	d.Subscribe(func(current time.Time) { calls++; got = current })

	t0 := time.Now()
	d.Initialize(t0)
	t1 := t0.Add(time.Minute)
	if !d.CheckAndTrigger(t1) {
		t.Fatal("CheckAndTrigger did not report firing")
	}
	if calls != 1 || !got.Equal(t1) {
		t.Fatalf("subscriber called %d times with %v, want 1 call with %v", calls, got, t1)
	}
}

func TestDetector_BackwardsJumpNeverFires(t *testing.T) {
	d := New("test", func(prev, curr time.Time) bool { return curr.After(prev) }, nil)
	d.Subscribe(func(time.Time) {})
	t0 := time.Now()
	d.Initialize(t0)
	if d.CheckAndTrigger(t0.Add(-time.Hour)) {
		t.Fatal("CheckAndTrigger fired on a backwards jump")
	}
}

func TestDetector_UnsubscribeIsIdempotent(t *testing.T) {
	d := New("test", func(prev, curr time.Time) bool { return true }, nil)
	sub := d.Subscribe(func(time.Time) {})
	sub.Cancel()
	sub.Cancel()
	if d.HasSubscribers() {
		t.Fatal("HasSubscribers() = true after Cancel")
	}
}

func TestDetector_CallbackPanicIsolated(t *testing.T) {
	d := New("test", func(prev, curr time.Time) bool { return true }, func(msg, level string) {})
	secondRan := false
	d.Subscribe(func(time.Time) { panic("boom") })
	d.Subscribe(func(time.Time) { secondRan = true })
	d.Initialize(time.Now())

	if !d.CheckAndTrigger(time.Now().Add(time.Second)) {
		t.Fatal("CheckAndTrigger reported no fire despite a matching predicate")
	}
	if !secondRan {
		t.Fatal("second subscriber did not run after first panicked")
	}
}

func TestNewHour(t *testing.T) {
	d := NewHour(nil)
	base := time.Date(2026, 1, 1, 10, 59, 0, 0, time.UTC)
	cases := []struct {
		curr time.Time
		want bool
	}{
		{base.Add(time.Minute), true},                // 10:59 -> 11:00
		{base.Add(30 * time.Second), false},           // still within the hour
		{base.Add(-time.Hour), false},                 // backwards
	}
	for _, c := range cases {
		got := d.predicate(base, c.curr)
		if got != c.want {
			t.Errorf("NewHour(%v -> %v) = %v, want %v", base, c.curr, got, c.want)
		}
	}
}

func TestAtNoon(t *testing.T) {
	d := AtNoon(nil)
	sameDay := time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC)
	if !d.predicate(sameDay, sameDay.Add(2*time.Hour)) {
		t.Error("AtNoon did not fire crossing noon on the same day")
	}
	if d.predicate(sameDay, sameDay.Add(30*time.Minute)) {
		t.Error("AtNoon fired before noon")
	}
	overshoot := time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)
	landing := time.Date(2026, 1, 3, 13, 0, 0, 0, time.UTC)
	if !d.predicate(overshoot, landing) {
		t.Error("AtNoon did not fire for a multi-day overshoot landing past noon")
	}
}

func TestNewDay(t *testing.T) {
	d := NewDay(nil)
	midnight := time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC)
	if !d.predicate(midnight, midnight.Add(2*time.Minute)) {
		t.Error("NewDay did not fire crossing midnight")
	}
	if d.predicate(midnight, midnight.Add(30*time.Second)) {
		t.Error("NewDay fired within the same calendar day")
	}
}

func TestWeekStart(t *testing.T) {
	d := WeekStart(nil)
	sunday := time.Date(2026, 2, 1, 23, 0, 0, 0, time.UTC) // Sunday
	monday := sunday.Add(2 * time.Hour)
	if !d.predicate(sunday, monday) {
		t.Error("WeekStart did not fire crossing Sunday->Monday")
	}
}

func TestWeekEnd(t *testing.T) {
	d := WeekEnd(nil)
	monday := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	nextMonday := monday.AddDate(0, 0, 7)
	if !d.predicate(monday, nextMonday) {
		t.Error("WeekEnd did not fire on an exact 7-day jump")
	}
	sunday := time.Date(2026, 2, 8, 23, 0, 0, 0, time.UTC)
	if !d.predicate(monday, sunday.Add(2*time.Hour)) {
		t.Error("WeekEnd did not fire crossing into the following week")
	}
	sameWeek := monday.Add(3 * 24 * time.Hour)
	if d.predicate(monday, sameWeek) {
		t.Error("WeekEnd fired within the same ISO week")
	}
}
