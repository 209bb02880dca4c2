package bot

import (
	"subscription-tracker/internal/models"
	"subscription-tracker/internal/service"
)

type BotState int

const (
	StateDefault BotState = iota

	// Состояния для добавления подписки
	StateEnteringSubscriptionName
	StateSelectingBillingCycle
	StateEnteringPrice
	StateEnteringStartDate
	StateConfirmingSubscription

	// Состояния для удаления подписки
	StateSelectingSubscriptionForDeletion
	StateConfirmingSubscriptionDeletion

	// Отметка оплаты
	StateSelectingPaymentToPay

	// Изменение суммы платежа
	StateSelectingPaymentForAmount
	StateEnteringAmount
)

type UserSession struct {
	State BotState

	// Черновик новой подписки
	Draft service.SubscriptionInput

	AvailableSubscriptions []*models.Subscription
	SelectedSubscription   *models.Subscription

	AvailablePayments []*models.PaymentWithSubscription
	SelectedPayment   *models.PaymentWithSubscription
}
