package data

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Integration tests are enabled when TEST_DATABASE_URL is set.
// Each run works in its own schema and drops it afterwards.

func mustOpenTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	if err := admin.Ping(ctx); err != nil {
		admin.Close()
		t.Skipf("postgres unreachable: %v", err)
	}

	schema := "kv_test_" + uuid.NewString()[:8]
	if _, err := admin.Exec(ctx, fmt.Sprintf(`CREATE SCHEMA %q`, schema)); err != nil {
		admin.Close()
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), fmt.Sprintf(`DROP SCHEMA %q CASCADE`, schema))
		admin.Close()
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	return pool
}

func TestPostgresKV_Contract(t *testing.T) {
	pool := mustOpenTestPool(t)

	kv, err := newPostgresKVFromPool(context.Background(), pool)
	if err != nil {
		t.Fatalf("newPostgresKVFromPool: %v", err)
	}
	defer kv.Close()

	var mu sync.Mutex
	now := time.Now()
	kv.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	runKVSuite(t, kv, func(t time.Time) {
		mu.Lock()
		defer mu.Unlock()
		now = t
	})
}
