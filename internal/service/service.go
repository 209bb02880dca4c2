package service

import (
	"context"
	"time"

	"subscription-tracker/internal/models"

	"github.com/shopspring/decimal"
)

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, input SubscriptionInput) (*models.Subscription, error)
	GetAll(ctx context.Context) ([]*models.Subscription, error)
	GetSubscription(ctx context.Context, id int64) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, id int64, input SubscriptionInput) (*models.Subscription, error)
	DeleteSubscription(ctx context.Context, id int64) (*models.Subscription, error)
}

type PaymentService interface {
	GetMonth(ctx context.Context, year int, month time.Month) ([]*models.PaymentWithSubscription, error)
	GetMonthSummary(ctx context.Context, year int, month time.Month) (*models.MonthSummary, []*models.PaymentWithSubscription, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	// GetSubscriptionPayments returns the ledger of one subscription, oldest
	// first. It fails with ErrNotFound for an unknown subscription.
	GetSubscriptionPayments(ctx context.Context, subscriptionID int64) ([]*models.Payment, error)
	CreatePayment(ctx context.Context, input PaymentInput) (*models.Payment, error)
	SetAmount(ctx context.Context, id int64, amount decimal.Decimal) (*models.Payment, error)
	SetPaid(ctx context.Context, id int64, paid bool) (*models.Payment, error)

	// Generate materializes the next unpaid payment of every subscription,
	// one billing cycle after its latest payment. A (subscription, due date)
	// row is never duplicated: a candidate already in the ledger is skipped.
	Generate(ctx context.Context) (*GenerationReport, error)
}

// SubscriptionInput is the full, replaceable field set of a subscription.
// Pointer fields are optional.
type SubscriptionInput struct {
	Name         string
	Category     *string
	DefaultPrice *decimal.Decimal
	IsVariable   bool
	BillingCycle models.BillingCycle
	StartDate    *models.Date
	RenewalPrice *decimal.Decimal
	TrialEndDate *models.Date
}

type PaymentInput struct {
	SubscriptionID int64
	DueDate        *models.Date
	AmountDue      *decimal.Decimal
	IsPaid         bool
	PaidDate       *models.Date
}

type GenerationReport struct {
	Created  int               `json:"generated"`
	Failed   int               `json:"failed"`
	Payments []*models.Payment `json:"-"`
}
