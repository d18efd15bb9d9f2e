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
	"strconv"

	redis "github.com/redis/go-redis/v9"
)

// RedisKV implements KVStore against a single Redis key per KV key, using
// plain GET/SET/DEL. Unlike the idempotent, Lua-scripted commit path the
// teacher uses for its rate-limiter counters, this KV contract has no
// at-most-once requirement — each key is an independent last-writer-wins
// scalar — so no scripting is needed here (see DESIGN.md).
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV wraps a Redis client reachable at addr. keyPrefix is prepended
// to every key (e.g. "myapp:") to namespace within a shared Redis instance;
// pass "" for none.
func NewRedisKV(addr string, keyPrefix string) *RedisKV {
	return &RedisKV{client: redis.NewClient(&redis.Options{Addr: addr}), prefix: keyPrefix}
}

func (r *RedisKV) key(k string) string { return r.prefix + k }

func (r *RedisKV) GetInt(ctx context.Context, key string) (int64, bool, error) {
	s, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (r *RedisKV) SetInt(ctx context.Context, key string, value int64) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *RedisKV) GetStr(ctx context.Context, key string) (string, bool, error) {
	s, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

func (r *RedisKV) SetStr(ctx context.Context, key string, value string) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *RedisKV) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
