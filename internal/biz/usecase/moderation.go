package usecase

import (
	"context"
	"fmt"

	"github.com/squarelan/verify-relay/internal/biz/domain"
	"github.com/squarelan/verify-relay/internal/biz/repo"
)

// ModerationUsecase tracks per-user block flags
type ModerationUsecase struct {
	kv         repo.KVRepo
	operatorID string
}

// NewModerationUsecase creates a new moderation usecase
func NewModerationUsecase(kv repo.KVRepo, operatorID string) *ModerationUsecase {
	return &ModerationUsecase{kv: kv, operatorID: operatorID}
}

// SetBlocked sets or clears the block flag. Blocking the operator is
// rejected with ErrSelfModeration and leaves state untouched.
func (uc *ModerationUsecase) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	if blocked && userID == uc.operatorID {
		return domain.ErrSelfModeration
	}
	if err := uc.kv.Put(ctx, domain.BlockKey(userID), domain.BoolValue(blocked), 0); err != nil {
		return fmt.Errorf("set blocked: %w", err)
	}
	return nil
}

// IsBlocked reports whether the user is blocked
func (uc *ModerationUsecase) IsBlocked(ctx context.Context, userID string) (bool, error) {
	v, ok, err := uc.kv.Get(ctx, domain.BlockKey(userID))
	if err != nil {
		return false, fmt.Errorf("get blocked: %w", err)
	}
	return ok && v.Truthy(), nil
}
