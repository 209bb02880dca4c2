package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

// sender is the slice of tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	api      sender
	adminIDs []int64
	log      *zap.Logger
}

// NewTelegram sends generation reports through api to every admin chat.
func NewTelegram(api sender, adminIDs []int64, log *zap.Logger) *Telegram {
	return &Telegram{api: api, adminIDs: adminIDs, log: log}
}

// PaymentsGenerated sends one message to every admin chat. A failing chat
// does not stop delivery to the others; all failures are returned joined.
func (t *Telegram) PaymentsGenerated(ctx context.Context, payments []GeneratedPayment) error {
	if len(payments) == 0 {
		return nil
	}
	text := FormatGenerated(payments)

	var errs []error
	for _, chatID := range t.adminIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := t.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			t.log.Warn("telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}
