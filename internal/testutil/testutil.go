// Package testutil provides helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/almagid/almagid/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 870042

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops all application tables and reapplies the embedded
// migrations from scratch.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool, databaseURL string) error {
	drop := `
		DROP TABLE IF EXISTS hostels CASCADE;
		DROP TABLE IF EXISTS places CASCADE;
		DROP TABLE IF EXISTS users CASCADE;
		DROP TABLE IF EXISTS goose_db_version CASCADE;
	`
	if _, err := pool.Exec(ctx, drop); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}

	if err := migrations.Up(databaseURL); err != nil {
		return fmt.Errorf("reapply migrations: %w", err)
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

var uniqueCounter atomic.Int64

// UniqueEmail returns an email address unique within the test run.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@test.local", prefix, time.Now().UnixNano(), uniqueCounter.Add(1))
}

// UniquePhone returns a phone number unique within the test run.
func UniquePhone() string {
	return fmt.Sprintf("+7%010d", time.Now().UnixNano()%1e10+uniqueCounter.Add(1))
}
