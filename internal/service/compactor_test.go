package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/domain"
	"github.com/squarelan/verify-relay/internal/data"
)

func TestCompactor_RunOnce(t *testing.T) {
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	kv, err := data.NewSQLiteKV(filepath.Join(t.TempDir(), "bot.db"), data.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}
	defer kv.Close()
	ctx := context.Background()

	if err := kv.Put(ctx, "short", domain.TextValue("x"), 500*time.Millisecond); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := kv.Put(ctx, "forever", domain.TextValue("y"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	clock.Advance(time.Second)

	c := NewCompactor(kv, time.Hour, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if n := c.RunOnce(ctx); n != 1 {
		t.Errorf("Expected 1 purged entry, got %d", n)
	}
	if _, ok, _ := kv.Get(ctx, "forever"); !ok {
		t.Error("Entry without expiry must survive")
	}
}

func TestCompactor_DisabledStartStop(t *testing.T) {
	c := NewCompactor(nil, 0, nil, nil)
	c.Start(context.Background())
	c.Stop()
}
