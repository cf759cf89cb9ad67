package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/repo"
	"github.com/squarelan/verify-relay/internal/metrics"
)

// Compactor periodically removes expired entries from the store. Reads
// already ignore expired entries, so this only reclaims space.
type Compactor struct {
	kv       repo.KVRepo
	metrics  *metrics.Metrics
	interval time.Duration
	log      *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCompactor creates a compactor. A non-positive interval disables it.
func NewCompactor(kv repo.KVRepo, interval time.Duration, m *metrics.Metrics, log *slog.Logger) *Compactor {
	if log == nil {
		log = slog.Default()
	}
	return &Compactor{
		kv:       kv,
		metrics:  m,
		interval: interval,
		log:      log.With("component", "compactor"),
	}
}

// Start starts the compaction loop
func (c *Compactor) Start(ctx context.Context) {
	if c.interval <= 0 {
		c.log.Info("compaction disabled")
		return
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.loop(ctx)

	c.log.Info("started", "interval", c.interval)
}

// Stop stops the loop and waits for a running pass to finish
func (c *Compactor) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

func (c *Compactor) loop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single compaction pass
func (c *Compactor) RunOnce(ctx context.Context) int64 {
	n, err := c.kv.PurgeExpired(ctx)
	if err != nil {
		c.log.Error("purge failed", "err", err)
		return 0
	}
	c.metrics.Purged(n)
	if n > 0 {
		c.log.Info("purged expired entries", "count", n)
	}
	return n
}
