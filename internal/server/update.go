package server

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/squarelan/verify-relay/internal/biz/domain"
)

// toEvent converts a Telegram update into a dispatcher event. Updates
// the relay does not handle yield nil.
func toEvent(update *tgbotapi.Update, operatorID string) domain.Event {
	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.Chat == nil {
			return nil
		}
		chatID := strconv.FormatInt(msg.Chat.ID, 10)

		ev := &domain.Message{
			ChatID:           chatID,
			MessageID:        msg.MessageID,
			Text:             msg.Text,
			SenderIsOperator: chatID == operatorID,
		}
		if msg.ReplyToMessage != nil {
			ev.ReplyToMessageID = msg.ReplyToMessage.MessageID
		}
		return ev

	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.From == nil {
			return nil
		}
		ev := &domain.CallbackAnswer{
			CallbackID: cb.ID,
			FromUserID: strconv.FormatInt(cb.From.ID, 10),
			Payload:    cb.Data,
		}
		if cb.Message != nil {
			ev.OriginMessageID = cb.Message.MessageID
		}
		return ev
	}
	return nil
}
