package repository

import (
	"context"
	"errors"
	"time"

	"subscription-tracker/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *models.Subscription) error
	GetAll(ctx context.Context) ([]*models.Subscription, error)
	GetByID(ctx context.Context, id int64) (*models.Subscription, error)
	Update(ctx context.Context, subscription *models.Subscription) error
	// Delete removes the subscription together with its payments and
	// returns the deleted row.
	Delete(ctx context.Context, id int64) (*models.Subscription, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	// CreateIfAbsent inserts payment unless a row for the same subscription
	// and due date exists; the check and the insert happen atomically.
	CreateIfAbsent(ctx context.Context, payment *models.Payment) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Payment, error)
	GetByMonth(ctx context.Context, year int, month time.Month) ([]*models.PaymentWithSubscription, error)
	GetBySubscription(ctx context.Context, subscriptionID int64) ([]*models.Payment, error)
	// GetLatestBySubscription returns nil, nil when the subscription has no payments.
	GetLatestBySubscription(ctx context.Context, subscriptionID int64) (*models.Payment, error)
	UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) (*models.Payment, error)
	UpdatePaid(ctx context.Context, id int64, paid bool, paidDate *models.Date) (*models.Payment, error)
}
