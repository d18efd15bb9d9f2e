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

package persistence

import (
	"context"
	"testing"
)

func TestMemoryKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	if _, ok, err := kv.GetInt(ctx, KeyBaseTimestamp); err != nil || ok {
		t.Fatalf("GetInt on empty store = (_, %v, %v), want (_, false, nil)", ok, err)
	}

	if err := kv.SetInt(ctx, KeyBaseTimestamp, 12345); err != nil {
		t.Fatalf("SetInt: %v", err)
	}
	v, ok, err := kv.GetInt(ctx, KeyBaseTimestamp)
	if err != nil || !ok || v != 12345 {
		t.Fatalf("GetInt = (%d, %v, %v), want (12345, true, nil)", v, ok, err)
	}

	if err := kv.SetStr(ctx, KeyAppVersion, "1.2.3"); err != nil {
		t.Fatalf("SetStr: %v", err)
	}
	s, ok, err := kv.GetStr(ctx, KeyAppVersion)
	if err != nil || !ok || s != "1.2.3" {
		t.Fatalf("GetStr = (%q, %v, %v), want (\"1.2.3\", true, nil)", s, ok, err)
	}

	if err := kv.Remove(ctx, KeyBaseTimestamp); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := kv.GetInt(ctx, KeyBaseTimestamp); ok {
		t.Fatal("GetInt after Remove still reports a value")
	}
	if _, ok, _ := kv.GetStr(ctx, KeyAppVersion); !ok {
		t.Fatal("Remove(KeyBaseTimestamp) unexpectedly removed KeyAppVersion")
	}
}
