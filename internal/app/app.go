// Package app holds the fx wiring shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"subscription-tracker/internal/logger"
	"subscription-tracker/internal/metrics"
	"subscription-tracker/internal/models/config"
	"subscription-tracker/internal/notify"
	"subscription-tracker/internal/repository"
	"subscription-tracker/internal/repository/memory"
	"subscription-tracker/internal/repository/payment"
	"subscription-tracker/internal/repository/subscription"
	"subscription-tracker/internal/service"
	payment_service "subscription-tracker/internal/service/payment"
	subscription_service "subscription-tracker/internal/service/subscription"
	database "subscription-tracker/pkg"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// Core provides configuration, logging, metrics, the store and the services.
var Core = fx.Options(
	fx.Provide(
		config.Load,
		logger.New,
		metrics.New,
		provideDB,
		provideRepositories,
		provideBotAPI,
		provideNotifier,
		subscription_service.NewSubscriptionService,
		providePaymentService,
	),
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	}),
)

// provideDB returns nil for the memory driver.
func provideDB(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*sqlx.DB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return db.Close()
		},
	})

	if cfg.Database.AutoMigrate {
		if err := database.NewMigrator(db, log).Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
	}
	return db, nil
}

type repositories struct {
	fx.Out

	Subscriptions repository.SubscriptionRepository
	Payments      repository.PaymentRepository
}

func provideRepositories(db *sqlx.DB, cfg *config.Config, log *zap.Logger) repositories {
	if db == nil {
		log.Warn("using in-memory store, data will not survive a restart", zap.String("driver", cfg.Database.Driver))
		store := memory.NewStore()
		return repositories{
			Subscriptions: store.Subscriptions(),
			Payments:      store.Payments(),
		}
	}
	return repositories{
		Subscriptions: subscription.NewSubscriptionRepository(db),
		Payments:      payment.NewPaymentRepository(db),
	}
}

// provideBotAPI returns nil when BOT_TOKEN is empty.
func provideBotAPI(cfg *config.Config, log *zap.Logger) (*tgbotapi.BotAPI, error) {
	if cfg.Bot.Token == "" {
		log.Info("BOT_TOKEN not set, telegram disabled")
		return nil, nil
	}

	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	api.Debug = cfg.Bot.Debug

	log.Info("🤖 telegram ready",
		zap.String("bot", api.Self.UserName),
		zap.Int64s("admin_ids", cfg.Bot.AdminIDs))
	return api, nil
}

func provideNotifier(api *tgbotapi.BotAPI, cfg *config.Config, log *zap.Logger) notify.Notifier {
	if api == nil {
		return notify.Nop{}
	}
	return notify.NewTelegram(api, cfg.Bot.AdminIDs, log.Named("notify"))
}

func providePaymentService(
	subscriptions repository.SubscriptionRepository,
	payments repository.PaymentRepository,
	notifier notify.Notifier,
	m *metrics.Metrics,
	log *zap.Logger,
) service.PaymentService {
	return payment_service.NewPaymentService(subscriptions, payments, notifier, m, log)
}
