package data

import (
	"context"
	"testing"

	"github.com/squarelan/verify-relay/internal/biz/domain"
	"github.com/squarelan/verify-relay/internal/infra/telegram"
)

type mockTelegramAPI struct {
	sentChat   int64
	sentText   string
	keyboard   [][]telegram.Button
	forwardTo  int64
	forwardSrc int64
	forwardID  int
	copied     bool
}

func (m *mockTelegramAPI) SendText(ctx context.Context, chatID int64, text string, keyboard [][]telegram.Button) (int, error) {
	m.sentChat, m.sentText, m.keyboard = chatID, text, keyboard
	return 1, nil
}

func (m *mockTelegramAPI) ForwardMessage(ctx context.Context, chatID, fromChatID int64, messageID int) (int, error) {
	m.forwardTo, m.forwardSrc, m.forwardID = chatID, fromChatID, messageID
	return 777, nil
}

func (m *mockTelegramAPI) CopyMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error {
	m.copied = true
	return nil
}

func (m *mockTelegramAPI) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	return nil
}

func (m *mockTelegramAPI) AnswerCallbackQuery(ctx context.Context, callbackID, text string, alert bool) error {
	return nil
}

func (m *mockTelegramAPI) SetWebhook(ctx context.Context, url, secret string) (string, error) {
	return "Webhook was set", nil
}

func (m *mockTelegramAPI) DeleteWebhook(ctx context.Context) (string, error) {
	return "Webhook was deleted", nil
}

func TestTelegramRepo_SendTextKeyboard(t *testing.T) {
	api := &mockTelegramAPI{}
	r := &TelegramRepo{client: api}

	opts := &domain.SendOptions{Keyboard: [][]domain.Button{
		{{Text: "1", Data: "verify_1_2"}, {Text: "2", Data: "verify_2_2"}},
	}}
	if err := r.SendText(context.Background(), "-100123", "hi", opts); err != nil {
		t.Fatal(err)
	}

	if api.sentChat != -100123 || api.sentText != "hi" {
		t.Errorf("Unexpected send: %d %q", api.sentChat, api.sentText)
	}
	if len(api.keyboard) != 1 || len(api.keyboard[0]) != 2 || api.keyboard[0][1].Data != "verify_2_2" {
		t.Errorf("Keyboard not mapped: %+v", api.keyboard)
	}
}

func TestTelegramRepo_Relay(t *testing.T) {
	api := &mockTelegramAPI{}
	r := &TelegramRepo{client: api}

	id, err := r.Relay(context.Background(), "1", "2", 3)
	if err != nil {
		t.Fatal(err)
	}
	if id != 777 {
		t.Errorf("Expected relayed id 777, got %d", id)
	}
	if api.forwardTo != 1 || api.forwardSrc != 2 || api.forwardID != 3 {
		t.Errorf("Unexpected forward %d %d %d", api.forwardTo, api.forwardSrc, api.forwardID)
	}
}

func TestTelegramRepo_BadChatID(t *testing.T) {
	r := &TelegramRepo{client: &mockTelegramAPI{}}

	if err := r.SendText(context.Background(), "abc", "hi", nil); err == nil {
		t.Error("Expected error for non-numeric chat id")
	}
	if err := r.RelayCopy(context.Background(), "1", "x", 1); err == nil {
		t.Error("Expected error for non-numeric source chat")
	}
}
