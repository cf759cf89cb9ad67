package domain

import "errors"

var (
	// ErrRouteNotFound means a relayed message id maps to no known guest
	ErrRouteNotFound = errors.New("cannot find corresponding user")

	// ErrSelfModeration is returned when the operator targets itself
	ErrSelfModeration = errors.New("cannot block yourself")

	// ErrInvalidPayload marks a callback payload of the wrong shape
	ErrInvalidPayload = errors.New("invalid callback payload")

	// ErrChallengePending means a challenge is already outstanding
	ErrChallengePending = errors.New("challenge already pending")

	// ErrNoPendingChallenge means an answer arrived with nothing to answer
	ErrNoPendingChallenge = errors.New("no pending challenge")
)
