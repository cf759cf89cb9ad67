package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/domain"
)

func TestRouting_RecordResolve(t *testing.T) {
	kv := newMockKV()
	uc := NewRoutingUsecase(kv, 0)
	ctx := context.Background()

	for id := 1; id <= 50; id++ {
		if err := uc.RecordRoute(ctx, id, "user-"+strconv.Itoa(id)); err != nil {
			t.Fatal(err)
		}
	}
	for id := 1; id <= 50; id++ {
		got, err := uc.Resolve(ctx, id)
		if err != nil {
			t.Fatalf("Resolve(%d): %v", id, err)
		}
		if got != "user-"+strconv.Itoa(id) {
			t.Errorf("Resolve(%d) = %s", id, got)
		}
	}
}

func TestRouting_Expiry(t *testing.T) {
	kv := newMockKV()
	uc := NewRoutingUsecase(kv, 0)
	ctx := context.Background()

	_ = uc.RecordRoute(ctx, 10, "42")

	kv.advance(DefaultRouteTTL - time.Second)
	if got, err := uc.Resolve(ctx, 10); err != nil || got != "42" {
		t.Errorf("Expected 42 before expiry, got %q %v", got, err)
	}

	kv.advance(time.Second)
	if _, err := uc.Resolve(ctx, 10); !errors.Is(err, domain.ErrRouteNotFound) {
		t.Errorf("Expected ErrRouteNotFound after expiry, got %v", err)
	}
}

func TestRouting_Unknown(t *testing.T) {
	uc := NewRoutingUsecase(newMockKV(), 0)
	if _, err := uc.Resolve(context.Background(), 123); !errors.Is(err, domain.ErrRouteNotFound) {
		t.Errorf("Expected ErrRouteNotFound, got %v", err)
	}
}

func TestModeration_BlockUnblock(t *testing.T) {
	kv := newMockKV()
	uc := NewModerationUsecase(kv, "1")
	ctx := context.Background()

	if blocked, _ := uc.IsBlocked(ctx, "2"); blocked {
		t.Error("Unknown user must not be blocked")
	}

	_ = uc.SetBlocked(ctx, "2", true)
	if blocked, _ := uc.IsBlocked(ctx, "2"); !blocked {
		t.Error("Expected user to be blocked")
	}

	_ = uc.SetBlocked(ctx, "2", false)
	if blocked, _ := uc.IsBlocked(ctx, "2"); blocked {
		t.Error("Expected user to be unblocked")
	}
}

func TestModeration_SelfBlockRejected(t *testing.T) {
	kv := newMockKV()
	uc := NewModerationUsecase(kv, "1")

	err := uc.SetBlocked(context.Background(), "1", true)
	if !errors.Is(err, domain.ErrSelfModeration) {
		t.Errorf("Expected ErrSelfModeration, got %v", err)
	}
	if kv.has(domain.BlockKey("1")) {
		t.Error("Self-block must not write a flag")
	}
}

func TestFraud_Suspect(t *testing.T) {
	lookup := &mockLookup{fraudList: "111\n 222 \n\n333\n"}
	uc := NewFraudUsecase(lookup, newMockKV(), DefaultFraudConfig(), nil)
	ctx := context.Background()

	if v := uc.CheckFraud(ctx, "222"); v != domain.FraudSuspect {
		t.Errorf("Expected suspect, got %s", v)
	}
	if v := uc.CheckFraud(ctx, "22"); v != domain.FraudClear {
		t.Errorf("Partial match must be clear, got %s", v)
	}
}

func TestFraud_FailOpen(t *testing.T) {
	lookup := &mockLookup{fraudList: "222", fraudErr: errors.New("network down")}
	uc := NewFraudUsecase(lookup, newMockKV(), DefaultFraudConfig(), nil)

	if v := uc.CheckFraud(context.Background(), "222"); v != domain.FraudClear {
		t.Errorf("Lookup failure must fail open, got %s", v)
	}
}

func TestFraud_TimeoutApplied(t *testing.T) {
	uc := NewFraudUsecase(deadlineLookup{}, newMockKV(), FraudConfig{LookupTimeout: 20 * time.Millisecond}, nil)

	start := time.Now()
	if v := uc.CheckFraud(context.Background(), "222"); v != domain.FraudClear {
		t.Errorf("Timed out lookup must be clear, got %s", v)
	}
	if time.Since(start) > time.Second {
		t.Error("Lookup was not bounded by the timeout")
	}
}

type deadlineLookup struct{}

func (deadlineLookup) FetchFraudList(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (deadlineLookup) FetchNotificationText(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestNotify_DisabledByDefault(t *testing.T) {
	lookup := &mockLookup{notice: "hello"}
	uc := NewFraudUsecase(lookup, newMockKV(), DefaultFraudConfig(), nil)

	if _, ok := uc.MaybeNotify(context.Background(), "5"); ok {
		t.Error("Notification must be off by default")
	}
	if lookup.noticeHits != 0 {
		t.Error("Disabled notification must not fetch")
	}
}

func TestNotify_Throttled(t *testing.T) {
	kv := newMockKV()
	lookup := &mockLookup{notice: "hello\n"}
	cfg := DefaultFraudConfig()
	cfg.NotifyEnabled = true
	uc := NewFraudUsecase(lookup, kv, cfg, nil)
	clock := kv.now
	uc.now = func() time.Time { return clock }
	ctx := context.Background()

	text, ok := uc.MaybeNotify(ctx, "5")
	if !ok || text != "hello" {
		t.Fatalf("Expected first notice, got %q %v", text, ok)
	}

	clock = clock.Add(time.Hour)
	if _, ok := uc.MaybeNotify(ctx, "5"); ok {
		t.Error("Second notice within interval must be skipped")
	}

	clock = clock.Add(24 * time.Hour)
	if _, ok := uc.MaybeNotify(ctx, "5"); !ok {
		t.Error("Expected notice after interval")
	}
	if lookup.noticeHits != 2 {
		t.Errorf("Expected 2 fetches, got %d", lookup.noticeHits)
	}
}

func TestNotify_FetchFailureSkips(t *testing.T) {
	lookup := &mockLookup{noticeErr: errors.New("boom")}
	cfg := DefaultFraudConfig()
	cfg.NotifyEnabled = true
	uc := NewFraudUsecase(lookup, newMockKV(), cfg, nil)

	if _, ok := uc.MaybeNotify(context.Background(), "5"); ok {
		t.Error("Failed fetch must skip the notice")
	}
}
