package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/domain"
	"github.com/squarelan/verify-relay/internal/biz/repo"
)

// FraudConfig configures the fraud and notification gate
type FraudConfig struct {
	LookupTimeout  time.Duration // Bound on each remote fetch
	NotifyEnabled  bool          // Static feature flag for the periodic notice
	NotifyInterval time.Duration // Minimum gap between notices per user
}

// DefaultFraudConfig returns the stock settings
func DefaultFraudConfig() FraudConfig {
	return FraudConfig{
		LookupTimeout:  10 * time.Second,
		NotifyEnabled:  false,
		NotifyInterval: 24 * time.Hour,
	}
}

// FraudUsecase screens guests against a remote list and throttles the
// operator notification side channel. Every lookup failure fails open.
type FraudUsecase struct {
	lookup repo.LookupRepo
	kv     repo.KVRepo
	config FraudConfig
	now    func() time.Time
	log    *slog.Logger
}

// NewFraudUsecase creates a new fraud usecase
func NewFraudUsecase(lookup repo.LookupRepo, kv repo.KVRepo, config FraudConfig, log *slog.Logger) *FraudUsecase {
	if config.LookupTimeout <= 0 {
		config.LookupTimeout = DefaultFraudConfig().LookupTimeout
	}
	if config.NotifyInterval <= 0 {
		config.NotifyInterval = DefaultFraudConfig().NotifyInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &FraudUsecase{
		lookup: lookup,
		kv:     kv,
		config: config,
		now:    time.Now,
		log:    log.With("component", "fraud"),
	}
}

// CheckFraud reports whether the user appears on the fraud list
func (uc *FraudUsecase) CheckFraud(ctx context.Context, userID string) domain.FraudVerdict {
	if uc.lookup == nil {
		return domain.FraudClear
	}

	ctx, cancel := context.WithTimeout(ctx, uc.config.LookupTimeout)
	defer cancel()

	list, err := uc.lookup.FetchFraudList(ctx)
	if err != nil {
		uc.log.Warn("fraud list lookup failed", "err", err)
		return domain.FraudClear
	}

	for _, line := range strings.Split(list, "\n") {
		if strings.TrimSpace(line) == userID {
			return domain.FraudSuspect
		}
	}
	return domain.FraudClear
}

// MaybeNotify returns the notification text to send to the operator when
// the user's cursor is older than the interval. The cursor is advanced
// before the fetch, so a failed fetch still waits a full interval.
func (uc *FraudUsecase) MaybeNotify(ctx context.Context, userID string) (string, bool) {
	if !uc.config.NotifyEnabled || uc.lookup == nil {
		return "", false
	}

	now := uc.now()
	due, err := uc.notifyDue(ctx, userID, now)
	if err != nil {
		uc.log.Warn("notify cursor read failed", "user_id", userID, "err", err)
		return "", false
	}
	if !due {
		return "", false
	}

	cursor := domain.TextValue(strconv.FormatInt(now.Unix(), 10))
	if err := uc.kv.Put(ctx, domain.NotifyCursorKey(userID), cursor, 0); err != nil {
		uc.log.Warn("notify cursor write failed", "user_id", userID, "err", err)
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, uc.config.LookupTimeout)
	defer cancel()

	text, err := uc.lookup.FetchNotificationText(ctx)
	if err != nil {
		uc.log.Warn("notification lookup failed", "err", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

func (uc *FraudUsecase) notifyDue(ctx context.Context, userID string, now time.Time) (bool, error) {
	v, ok, err := uc.kv.Get(ctx, domain.NotifyCursorKey(userID))
	if err != nil {
		return false, fmt.Errorf("get notify cursor: %w", err)
	}
	if !ok {
		return true, nil
	}

	_, raw := v.Encode()
	// Older deployments stored a float timestamp
	last, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return true, nil
	}
	return now.Sub(time.Unix(int64(last), 0)) > uc.config.NotifyInterval, nil
}
