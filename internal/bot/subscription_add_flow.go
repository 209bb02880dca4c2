package bot

import (
	"context"
	"fmt"
	"strings"

	"subscription-tracker/internal/models"
	"subscription-tracker/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/shopspring/decimal"
)

func (b *Bot) handleAddSubscription(chatID int64) {
	session := b.getOrCreateSession(chatID)
	session.State = StateEnteringSubscriptionName
	session.Draft = service.SubscriptionInput{}

	msg := tgbotapi.NewMessage(chatID, "➕ Название подписки?")
	msg.ReplyMarkup = createCancelKeyboard()
	b.send(msg)
}

func (b *Bot) handleSubscriptionName(chatID int64, text string) {
	session := b.getOrCreateSession(chatID)
	if text == "" {
		b.sendError(chatID, "❌ Название не может быть пустым")
		return
	}
	session.Draft.Name = text
	session.State = StateSelectingBillingCycle

	msg := tgbotapi.NewMessage(chatID, "🔁 Как часто списывается оплата?")
	msg.ReplyMarkup = createBillingCycleKeyboard()
	b.send(msg)
}

func (b *Bot) handleBillingCycleSelection(chatID int64, text string) {
	session := b.getOrCreateSession(chatID)
	cycle := models.BillingCycle(text)
	if !cycle.Valid() {
		b.sendError(chatID, "❌ Выберите период на клавиатуре")
		return
	}
	session.Draft.BillingCycle = cycle
	session.State = StateEnteringPrice

	msg := tgbotapi.NewMessage(chatID, "💰 Сумма платежа (например 9.99)? Для переменной суммы нажмите «Пропустить»")
	msg.ReplyMarkup = createSkipKeyboard()
	b.send(msg)
}

func (b *Bot) handlePriceInput(chatID int64, text string) {
	session := b.getOrCreateSession(chatID)
	if text == btnSkip {
		session.Draft.DefaultPrice = nil
		session.Draft.IsVariable = true
	} else {
		price, err := parseAmount(text)
		if err != nil {
			b.sendError(chatID, "❌ Введите неотрицательное число, например 9.99")
			return
		}
		session.Draft.DefaultPrice = &price
	}
	session.State = StateEnteringStartDate

	msg := tgbotapi.NewMessage(chatID, "📅 Дата первого платежа (ГГГГ-ММ-ДД)?")
	msg.ReplyMarkup = createCancelKeyboard()
	b.send(msg)
}

func (b *Bot) handleStartDateInput(chatID int64, text string) {
	session := b.getOrCreateSession(chatID)
	start, err := models.ParseDate(text)
	if err != nil {
		b.sendError(chatID, "❌ Введите дату в формате ГГГГ-ММ-ДД")
		return
	}
	session.Draft.StartDate = &start
	session.State = StateConfirmingSubscription

	price := "переменная"
	if session.Draft.DefaultPrice != nil {
		price = session.Draft.DefaultPrice.StringFixed(2)
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"📝 Проверьте подписку:\n\n"+
			"Название: %s\n"+
			"Период: %s\n"+
			"Сумма: %s\n"+
			"Первый платёж: %s",
		session.Draft.Name,
		session.Draft.BillingCycle,
		price,
		start,
	))
	msg.ReplyMarkup = createConfirmKeyboard(btnSave)
	b.send(msg)
}

func (b *Bot) handleSubscriptionConfirmation(ctx context.Context, chatID int64, text string) {
	session := b.getOrCreateSession(chatID)
	if text != btnSave {
		b.sendError(chatID, "❌ Неизвестная команда")
		return
	}

	subscription, err := b.SubscriptionService.CreateSubscription(ctx, session.Draft)
	if err != nil {
		b.replyError(chatID, "создания подписки", err)
		b.resetSession(chatID)
		return
	}

	msg := tgbotapi.NewMessage(chatID, "✅ Подписка добавлена: "+formatSubscription(subscription))
	msg.ReplyMarkup = createMainKeyboard()
	b.send(msg)
	b.resetSession(chatID)
}

// parseAmount accepts both "9.99" and "9,99".
func parseAmount(text string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(text), ",", ".", 1))
	if err != nil {
		return decimal.Decimal{}, err
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("negative amount %s", amount)
	}
	return amount, nil
}
