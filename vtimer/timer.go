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

package vtimer

import (
	"context"
	"math"
	"time"
)

// RateFunc supplies the clock rate in effect at scheduling time. A Scaler
// reads it exactly once, at construction of each timer — spec.md §4.4: "the
// timer snapshots the rate at construction time; it does not re-scale if
// the rate changes mid-flight... hosts re-create timers after rate changes
// if needed."
type RateFunc func() int

// Handle cancels a scheduled timer or ticker.
type Handle interface {
	Cancel()
}

// Scaler schedules periodic/delayed callbacks and waits whose real-time
// duration is divided by the owning clock's rate, per spec.md §4.4.
type Scaler struct {
	clock        NativeClock
	rate         RateFunc
	isProduction bool
}

// New constructs a Scaler. clock defaults to RealClock{} when nil.
func New(rate RateFunc, isProduction bool, clock NativeClock) *Scaler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scaler{clock: clock, rate: rate, isProduction: isProduction}
}

// scaledDuration divides d by the rate snapshotted at call time. In
// production mode scaling is always a no-op (rate is pinned to 1 upstream,
// but we guard here too per spec.md §4.4's "if is_production, schedule a
// native periodic timer with d").
func (s *Scaler) scaledDuration(d time.Duration) time.Duration {
	if s.isProduction {
		return d
	}
	rate := s.rate()
	if rate <= 0 {
		rate = 1
	}
	return time.Duration(math.Round(float64(d) / float64(rate)))
}

// Periodic schedules cb to run every d (scaled), delivering the native
// timer handle to cb as spec.md §4.4 requires so a callback can cancel its
// own ticker.
func (s *Scaler) Periodic(d time.Duration, cb func(h Handle)) Handle {
	ticker := s.clock.NewTicker(s.scaledDuration(d))
	h := &tickerHandle{t: ticker}
	go func() {
		for range ticker.C() {
			cb(h)
		}
	}()
	return h
}

// Delayed schedules cb to run once after d (scaled).
func (s *Scaler) Delayed(d time.Duration, cb func(h Handle)) Handle {
	timer := s.clock.NewTimer(s.scaledDuration(d))
	h := &timerHandle{t: timer}
	go func() {
		if _, ok := <-timer.C(); ok {
			cb(h)
		}
	}()
	return h
}

// Wait returns a channel that receives once after d (scaled). If ctx is done
// first, the underlying timer is cancelled and the channel is never sent to.
// Implemented via Delayed per spec.md §4.4.
func (s *Scaler) Wait(ctx context.Context, d time.Duration) <-chan time.Time {
	out := make(chan time.Time, 1)
	h := s.Delayed(d, func(Handle) {
		select {
		case out <- s.clock.Now():
		default:
		}
	})
	if ctx != nil {
		go func() {
			<-ctx.Done()
			h.Cancel()
		}()
	}
	return out
}

type tickerHandle struct{ t Ticker }

func (h *tickerHandle) Cancel() { h.t.Stop() }

type timerHandle struct{ t Timer }

func (h *timerHandle) Cancel() { h.t.Stop() }
