package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/domain"
	"github.com/squarelan/verify-relay/internal/biz/repo"
)

// DefaultGrantTTL is how long a passed challenge keeps a user verified
const DefaultGrantTTL = 72 * time.Hour

// VerificationUsecase runs the per-user challenge state machine:
// NoChallenge -> PendingChallenge -> Verified, back to NoChallenge when
// the grant expires.
type VerificationUsecase struct {
	kv       repo.KVRepo
	rnd      domain.Rand
	grantTTL time.Duration
	log      *slog.Logger
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(kv repo.KVRepo, rnd domain.Rand, grantTTL time.Duration, log *slog.Logger) *VerificationUsecase {
	if rnd == nil {
		rnd = domain.DefaultRand
	}
	if grantTTL <= 0 {
		grantTTL = DefaultGrantTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &VerificationUsecase{
		kv:       kv,
		rnd:      rnd,
		grantTTL: grantTTL,
		log:      log.With("component", "verification"),
	}
}

// IsVerified reports whether the user holds a live grant
func (uc *VerificationUsecase) IsVerified(ctx context.Context, userID string) (bool, error) {
	v, ok, err := uc.kv.Get(ctx, domain.GrantKey(userID))
	if err != nil {
		return false, fmt.Errorf("get grant: %w", err)
	}
	return ok && v.Truthy(), nil
}

// PendingAnswer returns the expected answer of the outstanding challenge
func (uc *VerificationUsecase) PendingAnswer(ctx context.Context, userID string) (int, bool, error) {
	v, ok, err := uc.kv.Get(ctx, domain.ChallengeKey(userID))
	if err != nil {
		return 0, false, fmt.Errorf("get challenge: %w", err)
	}
	if !ok {
		return 0, false, nil
	}
	_, raw := v.Encode()
	answer, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt challenge for %s: %w", userID, err)
	}
	return answer, true, nil
}

// IssueChallenge creates and persists a challenge for the user. An
// existing pending challenge is never overwritten; ErrChallengePending
// is returned instead.
func (uc *VerificationUsecase) IssueChallenge(ctx context.Context, userID string) (*domain.Challenge, error) {
	problem := domain.GenerateProblem(uc.rnd)

	// No ttl: a challenge lives until answered
	written, err := uc.kv.PutIfAbsent(ctx, domain.ChallengeKey(userID), domain.TextValue(strconv.Itoa(problem.Answer)), 0)
	if err != nil {
		return nil, fmt.Errorf("save challenge: %w", err)
	}
	if !written {
		return nil, domain.ErrChallengePending
	}

	return &domain.Challenge{
		UserID:  userID,
		Problem: problem,
		Options: domain.GenerateOptions(uc.rnd, problem.Answer),
	}, nil
}

// WithdrawChallenge drops the pending challenge so the next message
// issues a fresh one
func (uc *VerificationUsecase) WithdrawChallenge(ctx context.Context, userID string) error {
	if err := uc.kv.Delete(ctx, domain.ChallengeKey(userID)); err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}

// SubmitAnswer checks a button press. The persisted answer is the only
// authority: the claimed value from the payload must match it, and so
// must the submitted value.
func (uc *VerificationUsecase) SubmitAnswer(ctx context.Context, userID string, submitted, claimed int) (domain.AnswerResult, error) {
	expected, ok, err := uc.PendingAnswer(ctx, userID)
	if err != nil {
		return domain.AnswerIncorrect, err
	}
	if !ok {
		// Duplicate delivery of an already accepted answer
		verified, err := uc.IsVerified(ctx, userID)
		if err != nil {
			return domain.AnswerIncorrect, err
		}
		if verified {
			return domain.AnswerCorrect, nil
		}
		return domain.AnswerIncorrect, domain.ErrNoPendingChallenge
	}

	if claimed != expected {
		uc.log.Warn("forged answer payload", "user_id", userID, "claimed", claimed)
		return domain.AnswerIncorrect, nil
	}
	if submitted != expected {
		return domain.AnswerIncorrect, nil
	}

	if err := uc.kv.Put(ctx, domain.GrantKey(userID), domain.BoolValue(true), uc.grantTTL); err != nil {
		return domain.AnswerIncorrect, fmt.Errorf("save grant: %w", err)
	}
	if err := uc.kv.Delete(ctx, domain.ChallengeKey(userID)); err != nil {
		return domain.AnswerCorrect, fmt.Errorf("delete challenge: %w", err)
	}
	return domain.AnswerCorrect, nil
}
