package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"subscription-tracker/internal/models"
	"subscription-tracker/internal/report"
	"subscription-tracker/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

// Обработка сообщения здесь
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil {
		return
	}
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	b.log.Debug("message",
		zap.String("from", message.From.UserName),
		zap.Int64("chat_id", chatID),
		zap.String("text", text))

	if !b.isAdmin(int64(message.From.ID)) {
		b.sendMessage(chatID, "⛔ Бот доступен только администраторам")
		return
	}

	// Проверяем состояние пользователя ПРЕЖДЕ обработки команд
	session := b.getOrCreateSession(chatID)
	if session.State != StateDefault {
		if text == btnCancel {
			b.cancelOperation(chatID)
			return
		}
		switch session.State {
		case StateEnteringSubscriptionName:
			b.handleSubscriptionName(chatID, text)
		case StateSelectingBillingCycle:
			b.handleBillingCycleSelection(chatID, text)
		case StateEnteringPrice:
			b.handlePriceInput(chatID, text)
		case StateEnteringStartDate:
			b.handleStartDateInput(chatID, text)
		case StateConfirmingSubscription:
			b.handleSubscriptionConfirmation(ctx, chatID, text)
		case StateSelectingSubscriptionForDeletion:
			b.handleSubscriptionSelectionForDeletion(chatID, text)
		case StateConfirmingSubscriptionDeletion:
			b.handleSubscriptionDeletionConfirmation(ctx, chatID, text)
		case StateSelectingPaymentToPay:
			b.handlePaymentSelectionToPay(ctx, chatID, text)
		case StateSelectingPaymentForAmount:
			b.handlePaymentSelectionForAmount(ctx, chatID, text)
		case StateEnteringAmount:
			b.handleAmountInput(ctx, chatID, text)
		}
		return
	}

	// Обрабатываем команды (только если нет активной сессии)
	if message.IsCommand() {
		switch message.Command() {
		case "start", "help":
			b.handleStartCommand(chatID)
		case "month":
			b.handleMonthCommand(ctx, chatID, message.CommandArguments())
		case "generate":
			b.handleGenerate(ctx, chatID)
		case "subs":
			b.showSubscriptions(ctx, chatID)
		default:
			b.sendMessage(chatID, "❓ Неизвестная команда, см. /help")
		}
		return
	}

	switch text {
	case btnMonth:
		b.handleMonthCommand(ctx, chatID, "")
	case btnGenerate:
		b.handleGenerate(ctx, chatID)
	case btnMarkPaid:
		b.handleMarkPaid(ctx, chatID)
	case btnSetAmount:
		b.handleSetAmount(ctx, chatID)
	case btnSubscriptions:
		b.showSubscriptions(ctx, chatID)
	case btnAdd:
		b.handleAddSubscription(chatID)
	case btnDelete:
		b.handleDeleteSubscription(ctx, chatID)
	default:
		b.handleStartCommand(chatID)
	}
}

func (b *Bot) handleStartCommand(chatID int64) {
	msg := tgbotapi.NewMessage(chatID,
		"👋 Учёт подписок\n\n"+
			"/month [ГГГГ-ММ] - платежи за месяц\n"+
			"/generate - создать следующие платежи\n"+
			"/subs - список подписок\n\n"+
			"Или выберите действие в меню 👇")
	msg.ReplyMarkup = createMainKeyboard()
	b.send(msg)
}

// handleMonthCommand принимает "2024-03" или пустую строку (текущий месяц).
func (b *Bot) handleMonthCommand(ctx context.Context, chatID int64, args string) {
	year, month, err := b.parseMonth(args)
	if err != nil {
		b.sendError(chatID, "❌ Укажите месяц в формате ГГГГ-ММ, например /month 2024-03")
		return
	}

	summary, rows, err := b.PaymentService.GetMonthSummary(ctx, year, month)
	if err != nil {
		b.replyError(chatID, "получения платежей", err)
		return
	}
	b.sendMessage(chatID, formatMonth(rows, *summary))
}

func (b *Bot) handleGenerate(ctx context.Context, chatID int64) {
	result, err := b.PaymentService.Generate(ctx)
	if err != nil {
		b.replyError(chatID, "генерации платежей", err)
		return
	}

	text := fmt.Sprintf("⚙️ Генерация завершена\n\nСоздано: %d\nОшибок: %d", result.Created, result.Failed)
	for _, p := range result.Payments {
		text += fmt.Sprintf("\n• #%d %s · %s", p.ID, p.DueDate, p.AmountDue.StringFixed(2))
	}
	b.sendMessage(chatID, text)
}

func (b *Bot) showSubscriptions(ctx context.Context, chatID int64) {
	subscriptions, err := b.SubscriptionService.GetAll(ctx)
	if err != nil {
		b.replyError(chatID, "получения подписок", err)
		return
	}
	if len(subscriptions) == 0 {
		b.sendMessage(chatID, "📝 Подписок пока нет")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Подписки:\n\n")
	for i, sub := range subscriptions {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatSubscription(sub)))
	}
	b.sendMessage(chatID, sb.String())
}

func (b *Bot) parseMonth(args string) (int, time.Month, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		now := b.now()
		return now.Year(), now.Month(), nil
	}
	first, err := models.ParseDate(args + "-01")
	if err != nil {
		return 0, 0, err
	}
	return first.Year, first.Month, nil
}

func formatMonth(rows []*models.PaymentWithSubscription, summary models.MonthSummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 Платежи за %s\n\n", report.Period(summary.Year, time.Month(summary.Month))))
	if len(rows) == 0 {
		sb.WriteString("Платежей нет\n")
	}
	for _, row := range rows {
		status := "⏳"
		if row.IsPaid {
			status = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s %s %s · %s\n", status, row.DueDate, row.SubscriptionName, row.AmountDue.StringFixed(2)))
	}
	sb.WriteString(fmt.Sprintf("\nИтого: %s\nОплачено: %s (%d/%d)\nОсталось: %s",
		summary.TotalDue.StringFixed(2),
		summary.TotalPaid.StringFixed(2),
		summary.PaidCount,
		summary.Count,
		summary.Remaining.StringFixed(2)))
	return sb.String()
}

func formatSubscription(sub *models.Subscription) string {
	price := "переменная сумма"
	if sub.DefaultPrice.Valid {
		price = sub.DefaultPrice.Decimal.StringFixed(2)
	}
	return fmt.Sprintf("%s · %s · %s · с %s", sub.Name, sub.BillingCycle, price, sub.StartDate)
}

func formatPayment(p *models.PaymentWithSubscription) string {
	return fmt.Sprintf("%s %s · %s", p.DueDate, p.SubscriptionName, p.AmountDue.StringFixed(2))
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("telegram send failed", zap.Error(err))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendMessage(chatID, text)
}

// replyError shows validation problems to the user as is and hides
// store failures behind a generic message.
func (b *Bot) replyError(chatID int64, action string, err error) {
	var validation *service.ValidationError
	var validations service.ValidationErrors

	switch {
	case errors.As(err, &validations), errors.As(err, &validation):
		b.sendError(chatID, "❌ "+err.Error())
	case errors.Is(err, service.ErrNotFound):
		b.sendError(chatID, "❌ Запись не найдена, возможно её уже удалили")
		b.resetSession(chatID)
	default:
		b.log.Error("bot action failed", zap.String("action", action), zap.Error(err))
		b.sendError(chatID, "❌ Ошибка "+action)
		b.resetSession(chatID)
	}
}

func (b *Bot) cancelOperation(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "❌ Операция отменена")
	msg.ReplyMarkup = createMainKeyboard()
	b.send(msg)
	b.resetSession(chatID)
}
