package repo

import (
	"context"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/domain"
)

// KVRepo is the TTL key-value store every component builds on.
// Reads of an expired entry report it absent and remove it.
type KVRepo interface {
	// Get returns the value for key, ok is false when absent or expired
	Get(ctx context.Context, key string) (domain.Value, bool, error)

	// Put upserts a value. ttl <= 0 means the entry never expires
	Put(ctx context.Context, key string, value domain.Value, ttl time.Duration) error

	// PutIfAbsent writes only when no live entry exists for key.
	// It reports whether the write happened.
	PutIfAbsent(ctx context.Context, key string, value domain.Value, ttl time.Duration) (bool, error)

	// Delete removes an entry
	Delete(ctx context.Context, key string) error

	// PurgeExpired removes every expired entry
	PurgeExpired(ctx context.Context) (int64, error)

	// Close releases the underlying storage
	Close() error
}
