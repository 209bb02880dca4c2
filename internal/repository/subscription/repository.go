package subscription

import (
	"context"
	"fmt"

	"subscription-tracker/internal/models"
	"subscription-tracker/internal/repository"

	"github.com/jmoiron/sqlx"
)

type subscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) repository.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

const columns = `subscription_id, name, category, default_price, is_variable,
	billing_cycle, start_date, renewal_price, trial_end_date`

func (r *subscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) error {
	query := `
		INSERT INTO subscriptions
		(name, category, default_price, is_variable, billing_cycle, start_date, renewal_price, trial_end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING subscription_id
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		subscription.Name,
		subscription.Category,
		subscription.DefaultPrice,
		subscription.IsVariable,
		subscription.BillingCycle,
		subscription.StartDate,
		subscription.RenewalPrice,
		subscription.TrialEndDate,
	).Scan(&subscription.ID)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", repository.Translate(err))
	}
	return nil
}

func (r *subscriptionRepository) GetAll(ctx context.Context) ([]*models.Subscription, error) {
	subscriptions := []*models.Subscription{}
	query := `SELECT ` + columns + ` FROM subscriptions ORDER BY name ASC, subscription_id ASC`

	if err := r.db.SelectContext(ctx, &subscriptions, query); err != nil {
		return nil, fmt.Errorf("select subscriptions: %w", err)
	}
	return subscriptions, nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id int64) (*models.Subscription, error) {
	var subscription models.Subscription
	query := `SELECT ` + columns + ` FROM subscriptions WHERE subscription_id = $1`

	if err := r.db.GetContext(ctx, &subscription, query, id); err != nil {
		return nil, fmt.Errorf("get subscription %d: %w", id, repository.Translate(err))
	}
	return &subscription, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, subscription *models.Subscription) error {
	query := `
		UPDATE subscriptions
		SET name = $1, category = $2, default_price = $3, is_variable = $4,
			billing_cycle = $5, start_date = $6, renewal_price = $7, trial_end_date = $8
		WHERE subscription_id = $9
		RETURNING ` + columns

	err := r.db.QueryRowxContext(
		ctx,
		query,
		subscription.Name,
		subscription.Category,
		subscription.DefaultPrice,
		subscription.IsVariable,
		subscription.BillingCycle,
		subscription.StartDate,
		subscription.RenewalPrice,
		subscription.TrialEndDate,
		subscription.ID,
	).StructScan(subscription)
	if err != nil {
		return fmt.Errorf("update subscription %d: %w", subscription.ID, repository.Translate(err))
	}
	return nil
}

// Payments go with the subscription through ON DELETE CASCADE.
func (r *subscriptionRepository) Delete(ctx context.Context, id int64) (*models.Subscription, error) {
	var deleted models.Subscription
	query := `DELETE FROM subscriptions WHERE subscription_id = $1 RETURNING ` + columns

	if err := r.db.GetContext(ctx, &deleted, query, id); err != nil {
		return nil, fmt.Errorf("delete subscription %d: %w", id, repository.Translate(err))
	}
	return &deleted, nil
}
