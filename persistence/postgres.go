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
	"database/sql"
	"time"
)

// Postgres schema (reference):
//
// CREATE TABLE IF NOT EXISTS vclock_kv (
//   key        TEXT PRIMARY KEY,
//   int_value  BIGINT,
//   str_value  TEXT
// );
//
// Each Set* is an upsert: INSERT ... ON CONFLICT (key) DO UPDATE. A missing
// row and a present-but-NULL column are both treated as "absent" by the
// corresponding Get*.

// PostgresKV implements KVStore on top of a caller-supplied *sql.DB, mirroring
// the teacher's persistence/postgres.go pattern of taking an already-open DB
// handle rather than owning connection setup.
type PostgresKV struct {
	db             *sql.DB
	defaultTimeout time.Duration
}

// NewPostgresKV wraps db. Callers are responsible for creating the
// vclock_kv table (see the schema comment above) and for the DB's lifecycle.
func NewPostgresKV(db *sql.DB) *PostgresKV {
	return &PostgresKV{db: db, defaultTimeout: 10 * time.Second}
}

func (p *PostgresKV) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok || p.defaultTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.defaultTimeout)
}

func (p *PostgresKV) GetInt(ctx context.Context, key string) (int64, bool, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	var v sql.NullInt64
	err := p.db.QueryRowContext(ctx, `SELECT int_value FROM vclock_kv WHERE key = $1`, key).Scan(&v)
	if err == sql.ErrNoRows || (err == nil && !v.Valid) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v.Int64, true, nil
}

func (p *PostgresKV) SetInt(ctx context.Context, key string, value int64) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO vclock_kv(key, int_value) VALUES ($1, $2)
		   ON CONFLICT (key) DO UPDATE SET int_value = EXCLUDED.int_value`,
		key, value)
	return err
}

func (p *PostgresKV) GetStr(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	var v sql.NullString
	err := p.db.QueryRowContext(ctx, `SELECT str_value FROM vclock_kv WHERE key = $1`, key).Scan(&v)
	if err == sql.ErrNoRows || (err == nil && !v.Valid) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v.String, true, nil
}

func (p *PostgresKV) SetStr(ctx context.Context, key string, value string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO vclock_kv(key, str_value) VALUES ($1, $2)
		   ON CONFLICT (key) DO UPDATE SET str_value = EXCLUDED.str_value`,
		key, value)
	return err
}

func (p *PostgresKV) Remove(ctx context.Context, key string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	_, err := p.db.ExecContext(ctx, `DELETE FROM vclock_kv WHERE key = $1`, key)
	return err
}
