package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/squarelan/verify-relay/internal/biz/domain"
	"github.com/squarelan/verify-relay/internal/biz/repo"
)

// postgresKV implements the KV repository on Postgres, for deployments
// running several relay replicas against one database.
type postgresKV struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresKV connects to dsn and ensures the kv_store table exists
func NewPostgresKV(ctx context.Context, dsn string, opts ...KVOption) (repo.KVRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	return newPostgresKVFromPool(ctx, pool, opts...)
}

func newPostgresKVFromPool(ctx context.Context, pool *pgxpool.Pool, opts ...KVOption) (*postgresKV, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value TEXT,
			expires_at BIGINT,
			kind TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = pool.Exec(ctx, `ALTER TABLE kv_store ADD COLUMN IF NOT EXISTS kind TEXT NOT NULL DEFAULT ''`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate table: %w", err)
	}

	_, err = pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_kv_store_expires_at ON kv_store(expires_at)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &postgresKV{pool: pool, now: applyKVOptions(opts).now}, nil
}

func (r *postgresKV) Get(ctx context.Context, key string) (domain.Value, bool, error) {
	var raw *string
	var kind string
	var expiresAt *int64

	err := r.pool.QueryRow(ctx, `
		SELECT value, kind, expires_at FROM kv_store WHERE key = $1
	`, key).Scan(&raw, &kind, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Value{}, false, nil
	}
	if err != nil {
		return domain.Value{}, false, fmt.Errorf("failed to query key: %w", err)
	}

	entry := domain.Entry{Key: key}
	if expiresAt != nil {
		entry.ExpiresAt = unixTime(*expiresAt)
	}
	now := r.now()
	if entry.Expired(now) {
		_, err := r.pool.Exec(ctx, `
			DELETE FROM kv_store WHERE key = $1 AND expires_at IS NOT NULL AND expires_at <= $2
		`, key, now.Unix())
		if err != nil {
			return domain.Value{}, false, fmt.Errorf("failed to evict key: %w", err)
		}
		return domain.Value{}, false, nil
	}

	var text string
	if raw != nil {
		text = *raw
	}
	entry.Value, err = domain.DecodeValue(domain.ValueKind(kind), text)
	if err != nil {
		return domain.Value{}, false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (r *postgresKV) Put(ctx context.Context, key string, value domain.Value, ttl time.Duration) error {
	kind, raw := value.Encode()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value, kind, expires_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			kind = EXCLUDED.kind,
			expires_at = EXCLUDED.expires_at
	`, key, raw, string(kind), r.expiry(ttl))
	if err != nil {
		return fmt.Errorf("failed to put key: %w", err)
	}
	return nil
}

func (r *postgresKV) PutIfAbsent(ctx context.Context, key string, value domain.Value, ttl time.Duration) (bool, error) {
	kind, raw := value.Encode()
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value, kind, expires_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			kind = EXCLUDED.kind,
			expires_at = EXCLUDED.expires_at
		WHERE kv_store.expires_at IS NOT NULL AND kv_store.expires_at <= $5
	`, key, raw, string(kind), r.expiry(ttl), r.now().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to put key: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresKV) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

func (r *postgresKV) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at <= $1
	`, r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired keys: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *postgresKV) Close() error {
	r.pool.Close()
	return nil
}

func (r *postgresKV) expiry(ttl time.Duration) *int64 {
	t := domain.ExpiryFor(r.now(), ttl)
	if t == nil {
		return nil
	}
	unix := t.Unix()
	return &unix
}
