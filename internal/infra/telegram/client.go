package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Button is an inline keyboard button
type Button struct {
	Text string
	Data string
}

// Client is the Telegram Bot API client. Every call is bounded by the
// HTTP client timeout.
type Client struct {
	bot *tgbotapi.BotAPI
}

// NewClient creates a client and checks the token with getMe
func NewClient(token string, timeout time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return &Client{bot: bot}, nil
}

// Username returns the bot's username
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// SendText sends a text message with an optional inline keyboard
func (c *Client) SendText(ctx context.Context, chatID int64, text string, keyboard [][]Button) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if len(keyboard) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
		for _, row := range keyboard {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("sendMessage: %w", err)
	}
	return sent.MessageID, nil
}

// ForwardMessage forwards a message and returns the new message id
func (c *Client) ForwardMessage(ctx context.Context, chatID, fromChatID int64, messageID int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	sent, err := c.bot.Send(tgbotapi.NewForward(chatID, fromChatID, messageID))
	if err != nil {
		return 0, fmt.Errorf("forwardMessage: %w", err)
	}
	return sent.MessageID, nil
}

// CopyMessage copies a message without the forward header
func (c *Client) CopyMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Request(tgbotapi.NewCopyMessage(chatID, fromChatID, messageID)); err != nil {
		return fmt.Errorf("copyMessage: %w", err)
	}
	return nil
}

// EditMessageText replaces the text of a message
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Request(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("editMessageText: %w", err)
	}
	return nil
}

// AnswerCallbackQuery acknowledges a button press
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	if _, err := c.bot.Request(cb); err != nil {
		return fmt.Errorf("answerCallbackQuery: %w", err)
	}
	return nil
}

// SetWebhook registers url with a secret token and returns the API description
func (c *Client) SetWebhook(ctx context.Context, url, secret string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := tgbotapi.Params{"url": url}
	if secret != "" {
		params["secret_token"] = secret
	}
	resp, err := c.bot.MakeRequest("setWebhook", params)
	if err != nil {
		return "", fmt.Errorf("setWebhook: %w", err)
	}
	return resp.Description, nil
}

// DeleteWebhook removes the webhook registration
func (c *Client) DeleteWebhook(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		return "", fmt.Errorf("deleteWebhook: %w", err)
	}
	return resp.Description, nil
}

// ParseUpdate decodes a webhook body
func ParseUpdate(body []byte) (*tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return nil, fmt.Errorf("decode update: %w", err)
	}
	return &update, nil
}
