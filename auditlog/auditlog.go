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

// Package auditlog publishes every virtual-time mutation
// (TimeTravelTo/FastForward/Pause/Resume/Reset/SetRate) to a durable,
// off-process sink a host can tail for audit or replay. This supplements
// spec.md §9's "notifications propagate on every observable state change"
// design note with a sink that survives past the in-process subscriber
// list — nothing in spec.md forbids it, and it is the direct repurposing of
// the teacher's Kafka commit-log adapter (persistence/kafka.go) onto clock
// mutations instead of rate-limiter counters.
package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// Producer is a minimal abstraction over a message-queue client, with the
// same shape as the teacher's persistence.KafkaProducer: implementations
// should enable idempotent production and use Key for broker-side dedup and
// per-key ordering.
type Producer interface {
	Produce(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error
}

// MutationEvent is the JSON payload published for every mutating operation.
type MutationEvent struct {
	Seq      int64  `json:"seq"`
	Kind     string `json:"kind"` // "time_travel", "fast_forward", "pause", "resume", "reset", "set_rate"
	VirtualNowUnixMs int64 `json:"virtual_now_unix_ms"`
	Rate     int    `json:"rate"`
	TsUnixMs int64  `json:"ts_unix_ms"`
}

// Log publishes MutationEvents to a topic via a Producer. The zero value is
// not usable; construct with New.
type Log struct {
	producer Producer
	topic    string
	seq      atomic.Int64
}

// New constructs a Log. A nil producer makes every Publish call a no-op,
// so hosts that don't configure an audit sink pay nothing.
func New(producer Producer, topic string) *Log {
	return &Log{producer: producer, topic: topic}
}

// Publish emits a MutationEvent of the given kind. Errors are returned to
// the caller (service.Clock logs-and-swallows them, consistent with
// PersistenceFault handling in spec.md §7 — an audit-log outage must never
// destabilize the live transform).
func (l *Log) Publish(ctx context.Context, kind string, virtualNow time.Time, rate int) error {
	if l == nil || l.producer == nil {
		return nil
	}
	seq := l.seq.Add(1)
	evt := MutationEvent{
		Seq:              seq,
		Kind:             kind,
		VirtualNowUnixMs: virtualNow.UnixMilli(),
		Rate:             rate,
		TsUnixMs:         time.Now().UnixMilli(),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal mutation event: %w", err)
	}
	key := fmt.Sprintf("%d", seq)
	headers := map[string]string{"content-type": "application/json"}
	return l.producer.Produce(ctx, l.topic, []byte(key), b, headers)
}

// LoggingProducer is a dependency-free demo producer that just logs the
// published message, mirroring the teacher's LoggingKafkaProducer so the
// reference binary (cmd/vclockd) can demonstrate audit publishing without a
// real broker.
type LoggingProducer struct{}

func (LoggingProducer) Produce(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	fmt.Printf("[auditlog-demo] TOPIC=%s KEY=%s VALUE=%s HEADERS=%v\n", topic, string(key), string(value), headers)
	return nil
}
