package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"redwatch/internal/model"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender delivers match notifications to a Telegram chat.
type TelegramSender struct {
	api    telegramAPI
	chatID int64
	log    *slog.Logger
}

// NewTelegramSender creates a TelegramSender with the given bot token.
func NewTelegramSender(token string, chatID int64, log *slog.Logger) (*TelegramSender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &TelegramSender{api: api, chatID: chatID, log: log}, nil
}

// Send delivers a formatted match message to the configured chat.
func (s *TelegramSender) Send(_ context.Context, m model.Match) error {
	msg := tgbotapi.NewMessage(s.chatID, FormatMatch(m))
	msg.DisableWebPagePreview = true
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	s.log.Debug("sent telegram notification", "rule_id", m.RuleID, "item_id", m.Item.ID)
	return nil
}
