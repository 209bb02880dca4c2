package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"subscription-tracker/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// handleMarkPaid lists the unpaid payments of the current month.
func (b *Bot) handleMarkPaid(ctx context.Context, chatID int64) {
	now := b.now()
	rows, err := b.PaymentService.GetMonth(ctx, now.Year(), now.Month())
	if err != nil {
		b.replyError(chatID, "получения платежей", err)
		return
	}

	unpaid := make([]*models.PaymentWithSubscription, 0, len(rows))
	for _, row := range rows {
		if !row.IsPaid {
			unpaid = append(unpaid, row)
		}
	}
	if len(unpaid) == 0 {
		b.sendMessage(chatID, "🎉 Все платежи этого месяца оплачены")
		return
	}

	session := b.getOrCreateSession(chatID)
	session.State = StateSelectingPaymentToPay
	session.AvailablePayments = unpaid
	b.showPayments(chatID, "✅ Какой платёж оплачен?", unpaid)
}

func (b *Bot) handlePaymentSelectionToPay(ctx context.Context, chatID int64, text string) {
	session := b.getOrCreateSession(chatID)
	selected, ok := pickPayment(session.AvailablePayments, text)
	if !ok {
		b.sendError(chatID, "❌ Пожалуйста, введите корректный номер платежа")
		return
	}

	payment, err := b.PaymentService.SetPaid(ctx, selected.ID, true)
	if err != nil {
		b.replyError(chatID, "отметки оплаты", err)
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ %s оплачен %s", selected.SubscriptionName, payment.PaidDate))
	msg.ReplyMarkup = createMainKeyboard()
	b.send(msg)
	b.resetSession(chatID)
}

// handleSetAmount lists every payment of the current month; variable bills
// are usually corrected after they arrive.
func (b *Bot) handleSetAmount(ctx context.Context, chatID int64) {
	now := b.now()
	rows, err := b.PaymentService.GetMonth(ctx, now.Year(), now.Month())
	if err != nil {
		b.replyError(chatID, "получения платежей", err)
		return
	}
	if len(rows) == 0 {
		b.sendMessage(chatID, "📝 В этом месяце платежей нет")
		return
	}

	session := b.getOrCreateSession(chatID)
	session.State = StateSelectingPaymentForAmount
	session.AvailablePayments = rows
	b.showPayments(chatID, "✏️ У какого платежа изменить сумму?", rows)
}

// handlePaymentSelectionForAmount перечитывает платёж: список мог устареть,
// пока администратор выбирал.
func (b *Bot) handlePaymentSelectionForAmount(ctx context.Context, chatID int64, text string) {
	session := b.getOrCreateSession(chatID)
	selected, ok := pickPayment(session.AvailablePayments, text)
	if !ok {
		b.sendError(chatID, "❌ Пожалуйста, введите корректный номер платежа")
		return
	}

	current, err := b.PaymentService.GetPayment(ctx, selected.ID)
	if err != nil {
		b.replyError(chatID, "получения платежа", err)
		return
	}
	selected.AmountDue = current.AmountDue

	session.SelectedPayment = selected
	session.State = StateEnteringAmount

	b.sendMessage(chatID, fmt.Sprintf("💰 Новая сумма для %s (сейчас %s)?",
		selected.SubscriptionName, current.AmountDue.StringFixed(2)))
}

func (b *Bot) handleAmountInput(ctx context.Context, chatID int64, text string) {
	session := b.getOrCreateSession(chatID)
	amount, err := parseAmount(text)
	if err != nil {
		b.sendError(chatID, "❌ Введите неотрицательное число, например 87.13")
		return
	}

	payment, err := b.PaymentService.SetAmount(ctx, session.SelectedPayment.ID, amount)
	if err != nil {
		b.replyError(chatID, "изменения суммы", err)
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ %s: сумма %s",
		session.SelectedPayment.SubscriptionName, payment.AmountDue.StringFixed(2)))
	msg.ReplyMarkup = createMainKeyboard()
	b.send(msg)
	b.resetSession(chatID)
}

func (b *Bot) showPayments(chatID int64, title string, payments []*models.PaymentWithSubscription) {
	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	for i, p := range payments {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatPayment(p)))
	}
	sb.WriteString("\nВведите номер платежа или отправьте '❌ Отмена'")

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = createCancelKeyboard()
	b.send(msg)
}

func pickPayment(payments []*models.PaymentWithSubscription, text string) (*models.PaymentWithSubscription, bool) {
	index, err := strconv.Atoi(text)
	if err != nil || index < 1 || index > len(payments) {
		return nil, false
	}
	return payments[index-1], true
}
