package repo

import "context"

// LookupRepo fetches remote text used by the fraud and notification gate
type LookupRepo interface {
	// FetchFraudList returns newline-delimited suspect identifiers
	FetchFraudList(ctx context.Context) (string, error)

	// FetchNotificationText returns the operator notification text
	FetchNotificationText(ctx context.Context) (string, error)
}
