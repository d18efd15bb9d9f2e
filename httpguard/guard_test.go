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

package httpguard

import (
	"strings"
	"testing"
	"time"
)

func rateOf(r int) RateFunc { return func() int { return r } }

func TestGuard_RealTimeNeverBlocks(t *testing.T) {
	g := New(rateOf(1), Config{DefaultAction: Block}, nil)
	if d := g.Guard("/anything"); d.Action != Allow {
		t.Fatalf("Guard() at rate=1 = %v, want Allow", d.Action)
	}
}

func TestGuard_PolicyPrecedence(t *testing.T) {
	g := New(rateOf(100), Config{
		DefaultAction:   Allow,
		AllowedPatterns: []string{"/api/*"},
		BlockedPatterns: []string{"/api/admin*"},
	}, nil)

	if d := g.Guard("/api/users"); d.Action != Allow {
		t.Fatalf("Guard(/api/users) = %v, want Allow", d.Action)
	}
	if d := g.Guard("/api/admin/delete"); d.Action != Block {
		t.Fatalf("Guard(/api/admin/delete) = %v, want Block (blocked overrides allowed)", d.Action)
	}
}

func TestGuard_Throttle(t *testing.T) {
	now := time.Now()
	g := New(rateOf(100), Config{DefaultAction: Throttle, ThrottleLimit: 3}, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if d := g.Guard("/a"); d.Action != Allow {
			t.Fatalf("request %d = %v, want Allow", i, d.Action)
		}
	}
	d := g.Guard("/a")
	if d.Action != Throttle {
		t.Fatalf("4th request = %v, want Throttle", d.Action)
	}
	if !strings.Contains(strings.ToLower(d.Reason), "throttle") {
		t.Fatalf("Reason = %q, want to mention throttle", d.Reason)
	}
}

func TestGuard_ThrottleWindowExpires(t *testing.T) {
	now := time.Now()
	g := New(rateOf(100), Config{DefaultAction: Throttle, ThrottleLimit: 1}, func() time.Time { return now })

	if d := g.Guard("/a"); d.Action != Allow {
		t.Fatalf("first request = %v, want Allow", d.Action)
	}
	if d := g.Guard("/a"); d.Action != Throttle {
		t.Fatalf("second request within window = %v, want Throttle", d.Action)
	}
	now = now.Add(Window + time.Second)
	if d := g.Guard("/a"); d.Action != Allow {
		t.Fatalf("request after window expiry = %v, want Allow", d.Action)
	}
}

func TestGuard_OnDeniedCalled(t *testing.T) {
	var gotPath, gotReason string
	g := New(rateOf(100), Config{
		DefaultAction: Block,
		OnDenied:      func(path, reason string) { gotPath, gotReason = path, reason },
	}, nil)
	g.Guard("/secret")
	if gotPath != "/secret" || gotReason == "" {
		t.Fatalf("OnDenied got (%q, %q), want path=/secret and a non-empty reason", gotPath, gotReason)
	}
}

func TestGlobToRegexp(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/api/*", "/api/users", true},
		{"/api/*", "/api/", true},
		{"/api/?", "/api/x", true},
		{"/api/?", "/api/xy", false},
		{"/api/v1.2/test", "/api/v1.2/test", true},
		{"/api/v1.2/test", "/api/v1X2/test", false},
	}
	for _, c := range cases {
		cp := compile(c.pattern)
		if got := cp.match(c.path); got != c.want {
			t.Errorf("pattern %q matching %q = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}

func TestResetThrottle(t *testing.T) {
	now := time.Now()
	g := New(rateOf(100), Config{DefaultAction: Throttle, ThrottleLimit: 1}, func() time.Time { return now })
	g.Guard("/a")
	if d := g.Guard("/a"); d.Action != Throttle {
		t.Fatalf("expected throttle before reset, got %v", d.Action)
	}
	g.ResetThrottle()
	if d := g.Guard("/a"); d.Action != Allow {
		t.Fatalf("Guard after ResetThrottle = %v, want Allow", d.Action)
	}
}
