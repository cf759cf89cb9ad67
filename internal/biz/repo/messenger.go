package repo

import (
	"context"

	"github.com/squarelan/verify-relay/internal/biz/domain"
)

// MessengerRepo is the outbound side of the messaging platform
type MessengerRepo interface {
	// SendText sends a text message, opts may be nil
	SendText(ctx context.Context, chatID, text string, opts *domain.SendOptions) error

	// RelayCopy copies a message without the forward header (operator -> guest)
	RelayCopy(ctx context.Context, toChatID, fromChatID string, messageID int) error

	// Relay forwards a message and returns the id of the relayed copy (guest -> operator)
	Relay(ctx context.Context, toChatID, fromChatID string, messageID int) (int, error)

	// EditText replaces the text of a sent message
	EditText(ctx context.Context, chatID string, messageID int, text string) error

	// AckCallback answers a button press
	AckCallback(ctx context.Context, callbackID, text string, alert bool) error
}

// WebhookRegistrar manages the platform-side webhook registration
type WebhookRegistrar interface {
	SetWebhook(ctx context.Context, url, secret string) (string, error)
	DeleteWebhook(ctx context.Context) (string, error)
}
