// Package bot is the admin Telegram front-end: month view, generation,
// paid flags, amounts and subscription add/delete.
package bot

import (
	"context"
	"sync"
	"time"

	"subscription-tracker/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

const (
	handleTimeout = 30 * time.Second
	chatQueueSize = 16
)

// botAPI is the part of tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) (tgbotapi.UpdatesChannel, error)
}

type Bot struct {
	api                 botAPI
	SubscriptionService service.SubscriptionService
	PaymentService      service.PaymentService
	adminIDs            map[int64]bool
	log                 *zap.Logger
	now                 func() time.Time

	userSessions map[int64]*UserSession // chatID -> session
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

func NewBot(
	api botAPI,
	subscriptionService service.SubscriptionService,
	paymentService service.PaymentService,
	adminIDs []int64,
	log *zap.Logger,
) *Bot {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}

	return &Bot{
		api:                 api,
		SubscriptionService: subscriptionService,
		PaymentService:      paymentService,
		adminIDs:            admins,
		log:                 log.Named("bot"),
		now:                 time.Now,
		userSessions:        make(map[int64]*UserSession),
	}
}

// Start polls for updates until ctx is cancelled and then waits for the
// messages already queued. Each chat gets its own worker, so the messages of
// one chat are handled one at a time and in order.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return err
	}
	b.log.Info("🤖 bot is polling for updates", zap.Int("admins", len(b.adminIDs)))

	queues := make(map[int64]chan *tgbotapi.Message)
	defer func() {
		for _, queue := range queues {
			close(queue)
		}
		b.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			message := update.Message
			if message == nil || message.Chat == nil {
				continue
			}

			queue, exists := queues[message.Chat.ID]
			if !exists {
				queue = make(chan *tgbotapi.Message, chatQueueSize)
				queues[message.Chat.ID] = queue
				b.wg.Add(1)
				go b.serveChat(ctx, queue)
			}

			select {
			case queue <- message:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (b *Bot) serveChat(ctx context.Context, queue <-chan *tgbotapi.Message) {
	defer b.wg.Done()
	for message := range queue {
		msgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handleTimeout)
		b.handleMessage(msgCtx, message)
		cancel()
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.adminIDs[userID]
}

func (b *Bot) getOrCreateSession(chatID int64) *UserSession {
	b.mu.Lock()
	defer b.mu.Unlock()

	if session, exists := b.userSessions[chatID]; exists {
		return session
	}

	session := &UserSession{State: StateDefault}
	b.userSessions[chatID] = session
	return session
}

func (b *Bot) resetSession(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.userSessions, chatID)
}
