package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/domain"
	"github.com/squarelan/verify-relay/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// sqliteKV implements the KV repository on a single sqlite table
type sqliteKV struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteKV opens (or creates) the kv_store table at dbPath
func NewSQLiteKV(dbPath string, opts ...KVOption) (repo.KVRepo, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	// The relay-mcp process may hold the same file open
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Serialize all access through one connection
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value TEXT,
			expires_at INTEGER,
			kind TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Add kind column (if not exists) - for databases written by earlier versions
	_, _ = db.Exec(`ALTER TABLE kv_store ADD COLUMN kind TEXT NOT NULL DEFAULT ''`)

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_kv_store_expires_at ON kv_store(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &sqliteKV{db: db, now: applyKVOptions(opts).now}, nil
}

// Get reads a value, removing it when expired
func (r *sqliteKV) Get(ctx context.Context, key string) (domain.Value, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT value, kind, expires_at FROM kv_store WHERE key = ?
	`, key)

	var raw sql.NullString
	var kind string
	var expiresAt sql.NullInt64
	err := row.Scan(&raw, &kind, &expiresAt)
	if err == sql.ErrNoRows {
		return domain.Value{}, false, nil
	}
	if err != nil {
		return domain.Value{}, false, fmt.Errorf("failed to query key: %w", err)
	}

	entry := domain.Entry{Key: key}
	if expiresAt.Valid {
		entry.ExpiresAt = unixTime(expiresAt.Int64)
	}
	now := r.now()
	if entry.Expired(now) {
		// Conditional so a concurrent fresh write survives
		_, err := r.db.ExecContext(ctx, `
			DELETE FROM kv_store WHERE key = ? AND expires_at IS NOT NULL AND expires_at <= ?
		`, key, now.Unix())
		if err != nil {
			return domain.Value{}, false, fmt.Errorf("failed to evict key: %w", err)
		}
		return domain.Value{}, false, nil
	}

	entry.Value, err = domain.DecodeValue(domain.ValueKind(kind), raw.String)
	if err != nil {
		return domain.Value{}, false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return entry.Value, true, nil
}

// Put upserts a value
func (r *sqliteKV) Put(ctx context.Context, key string, value domain.Value, ttl time.Duration) error {
	kind, raw := value.Encode()
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO kv_store (key, value, kind, expires_at)
		VALUES (?, ?, ?, ?)
	`, key, raw, string(kind), r.expiry(ttl))
	if err != nil {
		return fmt.Errorf("failed to put key: %w", err)
	}
	return nil
}

// PutIfAbsent writes unless a live entry already holds the key
func (r *sqliteKV) PutIfAbsent(ctx context.Context, key string, value domain.Value, ttl time.Duration) (bool, error) {
	kind, raw := value.Encode()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, kind, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			kind = excluded.kind,
			expires_at = excluded.expires_at
		WHERE kv_store.expires_at IS NOT NULL AND kv_store.expires_at <= ?
	`, key, raw, string(kind), r.expiry(ttl), r.now().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to put key: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// Delete removes a key
func (r *sqliteKV) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// PurgeExpired removes every expired entry
func (r *sqliteKV) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at <= ?
	`, r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired keys: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection
func (r *sqliteKV) Close() error {
	return r.db.Close()
}

func (r *sqliteKV) expiry(ttl time.Duration) any {
	if t := domain.ExpiryFor(r.now(), ttl); t != nil {
		return t.Unix()
	}
	return nil
}

func unixTime(sec int64) *time.Time {
	t := time.Unix(sec, 0)
	return &t
}
