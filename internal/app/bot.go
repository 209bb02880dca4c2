package app

import (
	"context"

	"subscription-tracker/internal/bot"
	"subscription-tracker/internal/models/config"
	"subscription-tracker/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Bot runs the admin Telegram bot next to the HTTP server when a token
// is configured.
var Bot = fx.Options(
	fx.Invoke(runBot),
)

func runBot(
	lc fx.Lifecycle,
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	subscriptions service.SubscriptionService,
	payments service.PaymentService,
	log *zap.Logger,
) {
	if api == nil {
		return
	}

	b := bot.NewBot(api, subscriptions, payments, cfg.Bot.AdminIDs, log)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := b.Start(ctx); err != nil {
					log.Error("bot stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
