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

// Package persistence provides the host-facing KV store abstraction the
// kernel survives process restarts through (spec.md §4.5), plus adapters
// for an in-memory default, Redis, and Postgres. Any string->bytes store
// satisfies KVStore — hosts are free to bring their own.
package persistence

import "context"

// Persisted key names, reproduced verbatim from spec.md §6 ("Persisted
// layout"). KeyBaseTimestamp is written at Initialize and after every
// re-anchoring operation; KeyAppVersion is written alongside it only when
// Config.AppVersion is non-empty.
const (
	KeyBaseTimestamp = "virtual_clock_base_timestamp"
	KeyAppVersion    = "virtual_clock_app_version"
)

// KVStore is the minimal persistence surface the kernel needs: two scalar
// keys, strings and int64 only (spec.md §4.5). Operations may be
// asynchronous from the caller's perspective, but this interface's methods
// block until the context is satisfied or the operation completes — the
// kernel issues persistence writes fire-and-forget from its own goroutines
// (spec.md §5: "persistence writes from these are fire-and-forget").
type KVStore interface {
	GetInt(ctx context.Context, key string) (value int64, ok bool, err error)
	SetInt(ctx context.Context, key string, value int64) error
	GetStr(ctx context.Context, key string) (value string, ok bool, err error)
	SetStr(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}
