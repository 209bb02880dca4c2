package bot

import (
	"subscription-tracker/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const (
	btnMonth         = "📅 Платежи за месяц"
	btnGenerate      = "⚙️ Сгенерировать платежи"
	btnMarkPaid      = "✅ Отметить оплату"
	btnSetAmount     = "✏️ Изменить сумму"
	btnSubscriptions = "📋 Подписки"
	btnAdd           = "➕ Добавить подписку"
	btnDelete        = "🗑 Удалить подписку"
	btnCancel        = "❌ Отмена"
	btnSkip          = "⏭ Пропустить"
	btnSave          = "💾 Сохранить"
	btnConfirmDelete = "✅ Удалить подписку"
)

func createMainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMonth),
			tgbotapi.NewKeyboardButton(btnGenerate),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMarkPaid),
			tgbotapi.NewKeyboardButton(btnSetAmount),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSubscriptions),
			tgbotapi.NewKeyboardButton(btnAdd),
			tgbotapi.NewKeyboardButton(btnDelete),
		),
	)
}

func createCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

func createSkipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

func createBillingCycleKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(string(models.BillingCycleMonthly)),
			tgbotapi.NewKeyboardButton(string(models.BillingCycleQuarterly)),
			tgbotapi.NewKeyboardButton(string(models.BillingCycleAnnually)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

func createConfirmKeyboard(confirm string) tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(confirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}
