package biz

import (
	"log/slog"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/repo"
	"github.com/squarelan/verify-relay/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Verification *usecase.VerificationUsecase
	Routing      *usecase.RoutingUsecase
	Moderation   *usecase.ModerationUsecase
	Fraud        *usecase.FraudUsecase
}

// Options configures the usecase layer
type Options struct {
	OperatorID string
	GrantTTL   time.Duration
	RouteTTL   time.Duration
	Fraud      usecase.FraudConfig
}

// NewUsecases wires every usecase onto one store
func NewUsecases(kv repo.KVRepo, lookup repo.LookupRepo, opts Options, log *slog.Logger) *Usecases {
	return &Usecases{
		Verification: usecase.NewVerificationUsecase(kv, nil, opts.GrantTTL, log),
		Routing:      usecase.NewRoutingUsecase(kv, opts.RouteTTL),
		Moderation:   usecase.NewModerationUsecase(kv, opts.OperatorID),
		Fraud:        usecase.NewFraudUsecase(lookup, kv, opts.Fraud, log),
	}
}
