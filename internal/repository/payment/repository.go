package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"subscription-tracker/internal/models"
	"subscription-tracker/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const columns = `payment_id, subscription_id, due_date, amount_due, is_paid, paid_date`

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO monthly_payments (subscription_id, due_date, amount_due, is_paid, paid_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING payment_id
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		payment.SubscriptionID,
		payment.DueDate,
		payment.AmountDue,
		payment.IsPaid,
		payment.PaidDate,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("insert payment: %w", repository.Translate(err))
	}
	return nil
}

// CreateIfAbsent locks the owning subscription row so two concurrent
// generator runs serialize on it; the unique constraint backs this up.
func (r *paymentRepository) CreateIfAbsent(ctx context.Context, payment *models.Payment) (created bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var locked int64
	err = tx.QueryRowContext(ctx,
		`SELECT subscription_id FROM subscriptions WHERE subscription_id = $1 FOR UPDATE`,
		payment.SubscriptionID,
	).Scan(&locked)
	if err != nil {
		return false, fmt.Errorf("lock subscription %d: %w", payment.SubscriptionID, repository.Translate(err))
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM monthly_payments WHERE subscription_id = $1 AND due_date = $2)`,
		payment.SubscriptionID, payment.DueDate,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check payment exists: %w", err)
	}
	if exists {
		return false, tx.Commit()
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO monthly_payments (subscription_id, due_date, amount_due, is_paid, paid_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (subscription_id, due_date) DO NOTHING
		RETURNING payment_id`,
		payment.SubscriptionID,
		payment.DueDate,
		payment.AmountDue,
		payment.IsPaid,
		payment.PaidDate,
	).Scan(&payment.ID)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return false, tx.Commit()
	}
	if err != nil {
		return false, fmt.Errorf("insert payment: %w", repository.Translate(err))
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit payment: %w", err)
	}
	return true, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT ` + columns + ` FROM monthly_payments WHERE payment_id = $1`

	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, fmt.Errorf("get payment %d: %w", id, repository.Translate(err))
	}
	return &payment, nil
}

func (r *paymentRepository) GetByMonth(ctx context.Context, year int, month time.Month) ([]*models.PaymentWithSubscription, error) {
	query := `
		SELECT
			mp.payment_id, mp.subscription_id, mp.due_date, mp.amount_due, mp.is_paid, mp.paid_date,
			s.name AS subscription_name, s.category, s.trial_end_date, s.renewal_price
		FROM monthly_payments mp
		JOIN subscriptions s ON mp.subscription_id = s.subscription_id
		WHERE mp.due_date >= $1 AND mp.due_date < $2
		ORDER BY mp.due_date ASC, mp.payment_id ASC
	`
	first := models.NewDate(year, month, 1)
	next := first.AddMonths(1)

	payments := []*models.PaymentWithSubscription{}
	if err := r.db.SelectContext(ctx, &payments, query, first, next); err != nil {
		return nil, fmt.Errorf("select payments for %d-%02d: %w", year, month, err)
	}
	return payments, nil
}

func (r *paymentRepository) GetBySubscription(ctx context.Context, subscriptionID int64) ([]*models.Payment, error) {
	payments := []*models.Payment{}
	query := `SELECT ` + columns + ` FROM monthly_payments WHERE subscription_id = $1 ORDER BY due_date ASC`

	if err := r.db.SelectContext(ctx, &payments, query, subscriptionID); err != nil {
		return nil, fmt.Errorf("select payments of subscription %d: %w", subscriptionID, err)
	}
	return payments, nil
}

func (r *paymentRepository) GetLatestBySubscription(ctx context.Context, subscriptionID int64) (*models.Payment, error) {
	var payment models.Payment
	query := `
		SELECT ` + columns + `
		FROM monthly_payments
		WHERE subscription_id = $1
		ORDER BY due_date DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &payment, query, subscriptionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest payment of subscription %d: %w", subscriptionID, err)
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) (*models.Payment, error) {
	var payment models.Payment
	query := `
		UPDATE monthly_payments
		SET amount_due = $1
		WHERE payment_id = $2
		RETURNING ` + columns

	if err := r.db.GetContext(ctx, &payment, query, amount, id); err != nil {
		return nil, fmt.Errorf("update amount of payment %d: %w", id, repository.Translate(err))
	}
	return &payment, nil
}

func (r *paymentRepository) UpdatePaid(ctx context.Context, id int64, paid bool, paidDate *models.Date) (*models.Payment, error) {
	var payment models.Payment
	query := `
		UPDATE monthly_payments
		SET is_paid = $1, paid_date = $2
		WHERE payment_id = $3
		RETURNING ` + columns

	if err := r.db.GetContext(ctx, &payment, query, paid, paidDate, id); err != nil {
		return nil, fmt.Errorf("update paid status of payment %d: %w", id, repository.Translate(err))
	}
	return &payment, nil
}
