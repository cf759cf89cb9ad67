package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/domain"
	"github.com/squarelan/verify-relay/internal/biz/repo"
)

// DefaultRouteTTL bounds how long an operator can reply to a relayed message
const DefaultRouteTTL = 30 * 24 * time.Hour

// RoutingUsecase maps relayed message ids back to the guest who sent them
type RoutingUsecase struct {
	kv  repo.KVRepo
	ttl time.Duration
}

// NewRoutingUsecase creates a new routing usecase
func NewRoutingUsecase(kv repo.KVRepo, ttl time.Duration) *RoutingUsecase {
	if ttl <= 0 {
		ttl = DefaultRouteTTL
	}
	return &RoutingUsecase{kv: kv, ttl: ttl}
}

// RecordRoute remembers which guest a relayed message came from
func (uc *RoutingUsecase) RecordRoute(ctx context.Context, relayedMessageID int, userID string) error {
	if err := uc.kv.Put(ctx, domain.RouteKey(relayedMessageID), domain.TextValue(userID), uc.ttl); err != nil {
		return fmt.Errorf("record route: %w", err)
	}
	return nil
}

// Resolve returns the guest for a relayed message id, or ErrRouteNotFound
func (uc *RoutingUsecase) Resolve(ctx context.Context, relayedMessageID int) (string, error) {
	v, ok, err := uc.kv.Get(ctx, domain.RouteKey(relayedMessageID))
	if err != nil {
		return "", fmt.Errorf("resolve route: %w", err)
	}
	if !ok {
		return "", domain.ErrRouteNotFound
	}
	_, userID := v.Encode()
	if userID == "" {
		return "", domain.ErrRouteNotFound
	}
	return userID, nil
}
