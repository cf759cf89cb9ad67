package data

import (
	"context"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/repo"
	"github.com/squarelan/verify-relay/internal/infra/telegram"
)

// Repositories contains all repositories
type Repositories struct {
	KV        repo.KVRepo
	Messenger repo.MessengerRepo
	Webhook   repo.WebhookRegistrar
	Lookup    repo.LookupRepo
}

// StoreOptions selects the KV backend
type StoreOptions struct {
	DBPath      string // sqlite file, used when DatabaseURL is empty
	DatabaseURL string // Postgres DSN
}

// LookupOptions configures the remote fraud and notification sources
type LookupOptions struct {
	FraudURL        string
	NotificationURL string
	Timeout         time.Duration
}

// KVOption customizes a KV store
type KVOption func(*kvOptions)

type kvOptions struct {
	now func() time.Time
}

// WithClock replaces the clock used for expiry decisions
func WithClock(now func() time.Time) KVOption {
	return func(o *kvOptions) {
		o.now = now
	}
}

func applyKVOptions(opts []KVOption) kvOptions {
	o := kvOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewKVRepo opens the configured KV backend
func NewKVRepo(ctx context.Context, opts StoreOptions) (repo.KVRepo, error) {
	if opts.DatabaseURL != "" {
		return NewPostgresKV(ctx, opts.DatabaseURL)
	}
	return NewSQLiteKV(opts.DBPath)
}

// NewRepositories creates all repositories
func NewRepositories(
	ctx context.Context,
	telegramClient *telegram.Client,
	store StoreOptions,
	lookup LookupOptions,
) (*Repositories, error) {
	kv, err := NewKVRepo(ctx, store)
	if err != nil {
		return nil, err
	}

	tg := NewTelegramRepo(telegramClient)
	return &Repositories{
		KV:        kv,
		Messenger: tg,
		Webhook:   tg,
		Lookup:    NewHTTPLookupRepo(lookup.FraudURL, lookup.NotificationURL, lookup.Timeout),
	}, nil
}
