package data

import (
	"context"
	"fmt"
	"strconv"

	"github.com/squarelan/verify-relay/internal/biz/domain"
	"github.com/squarelan/verify-relay/internal/biz/repo"
	"github.com/squarelan/verify-relay/internal/infra/telegram"
)

// telegramAPI is the subset of the Telegram client used by the repository
type telegramAPI interface {
	SendText(ctx context.Context, chatID int64, text string, keyboard [][]telegram.Button) (int, error)
	ForwardMessage(ctx context.Context, chatID, fromChatID int64, messageID int) (int, error)
	CopyMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string, alert bool) error
	SetWebhook(ctx context.Context, url, secret string) (string, error)
	DeleteWebhook(ctx context.Context) (string, error)
}

// TelegramRepo implements the messenger repository on the Bot API
type TelegramRepo struct {
	client telegramAPI
}

// NewTelegramRepo creates a new Telegram repository
func NewTelegramRepo(client *telegram.Client) *TelegramRepo {
	return &TelegramRepo{client: client}
}

var (
	_ repo.MessengerRepo    = (*TelegramRepo)(nil)
	_ repo.WebhookRegistrar = (*TelegramRepo)(nil)
)

// SendText sends a text message
func (r *TelegramRepo) SendText(ctx context.Context, chatID, text string, opts *domain.SendOptions) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	var keyboard [][]telegram.Button
	if opts != nil {
		for _, row := range opts.Keyboard {
			buttons := make([]telegram.Button, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, telegram.Button{Text: b.Text, Data: b.Data})
			}
			keyboard = append(keyboard, buttons)
		}
	}

	_, err = r.client.SendText(ctx, id, text, keyboard)
	return err
}

// RelayCopy copies an operator reply into the guest chat
func (r *TelegramRepo) RelayCopy(ctx context.Context, toChatID, fromChatID string, messageID int) error {
	to, err := parseChatID(toChatID)
	if err != nil {
		return err
	}
	from, err := parseChatID(fromChatID)
	if err != nil {
		return err
	}
	return r.client.CopyMessage(ctx, to, from, messageID)
}

// Relay forwards a guest message to the operator
func (r *TelegramRepo) Relay(ctx context.Context, toChatID, fromChatID string, messageID int) (int, error) {
	to, err := parseChatID(toChatID)
	if err != nil {
		return 0, err
	}
	from, err := parseChatID(fromChatID)
	if err != nil {
		return 0, err
	}
	return r.client.ForwardMessage(ctx, to, from, messageID)
}

// EditText edits a sent message
func (r *TelegramRepo) EditText(ctx context.Context, chatID string, messageID int, text string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	return r.client.EditMessageText(ctx, id, messageID, text)
}

// AckCallback answers a callback query
func (r *TelegramRepo) AckCallback(ctx context.Context, callbackID, text string, alert bool) error {
	return r.client.AnswerCallbackQuery(ctx, callbackID, text, alert)
}

// SetWebhook registers the webhook url
func (r *TelegramRepo) SetWebhook(ctx context.Context, url, secret string) (string, error) {
	return r.client.SetWebhook(ctx, url, secret)
}

// DeleteWebhook removes the webhook
func (r *TelegramRepo) DeleteWebhook(ctx context.Context) (string, error) {
	return r.client.DeleteWebhook(ctx)
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	return id, nil
}
