package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

func (b *Bot) handleDeleteSubscription(ctx context.Context, chatID int64) {
	subscriptions, err := b.SubscriptionService.GetAll(ctx)
	if err != nil {
		b.replyError(chatID, "получения подписок", err)
		return
	}
	if len(subscriptions) == 0 {
		b.sendError(chatID, "📝 Нет подписок для удаления")
		b.resetSession(chatID)
		return
	}

	// Сохраняем подписки в сессии
	session := b.getOrCreateSession(chatID)
	session.State = StateSelectingSubscriptionForDeletion
	session.AvailableSubscriptions = subscriptions

	var sb strings.Builder
	sb.WriteString("🗑 Выберите подписку для удаления:\n\n")
	for i, sub := range subscriptions {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatSubscription(sub)))
	}
	sb.WriteString("\nВведите номер подписки или отправьте '❌ Отмена'")

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = createCancelKeyboard()
	b.send(msg)
}

func (b *Bot) handleSubscriptionSelectionForDeletion(chatID int64, text string) {
	session := b.getOrCreateSession(chatID)

	// Парсим номер подписки
	index, err := strconv.Atoi(text)
	if err != nil || index < 1 || index > len(session.AvailableSubscriptions) {
		b.sendError(chatID, "❌ Пожалуйста, введите корректный номер подписки")
		return
	}

	selected := session.AvailableSubscriptions[index-1]
	session.SelectedSubscription = selected
	session.State = StateConfirmingSubscriptionDeletion

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"🚨 Подтвердите удаление подписки:\n\n%s\n\n"+
			"Все её платежи тоже будут удалены. Это действие нельзя отменить!",
		formatSubscription(selected)))
	msg.ReplyMarkup = createConfirmKeyboard(btnConfirmDelete)
	b.send(msg)
}

func (b *Bot) handleSubscriptionDeletionConfirmation(ctx context.Context, chatID int64, text string) {
	session := b.getOrCreateSession(chatID)
	if text != btnConfirmDelete {
		b.sendError(chatID, "❌ Неизвестная команда")
		return
	}

	deleted, err := b.SubscriptionService.DeleteSubscription(ctx, session.SelectedSubscription.ID)
	if err != nil {
		b.replyError(chatID, "удаления подписки", err)
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Подписка %s удалена", deleted.Name))
	msg.ReplyMarkup = createMainKeyboard()
	b.send(msg)
	b.resetSession(chatID)
}
