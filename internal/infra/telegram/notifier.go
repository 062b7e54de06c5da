package telegram

import (
	"context"
	"fmt"

	"tariff-billing-service/internal/domain/ports/adapter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Ensure interface compliance
var (
	_ adapter.NotifierAdapter = (*Notifier)(nil)
	_ adapter.NotifierAdapter = (*NoopNotifier)(nil)
)

// Notifier delivers billing messages to subscribers over Telegram.
type Notifier struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewNotifier(token string, logger *zerolog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	compLog := logger.With().Str("component", "TelegramNotifier").Logger()
	return &Notifier{bot: bot, log: &compLog}, nil
}

func (n *Notifier) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
		return err
	}
	return nil
}

// NoopNotifier is wired when no bot token is configured.
type NoopNotifier struct{}

func (NoopNotifier) SendMessage(ctx context.Context, chatID int64, text string) error { return nil }
