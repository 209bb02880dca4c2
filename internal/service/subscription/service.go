package subscription_service

import (
	"context"
	"strings"

	"subscription-tracker/internal/models"
	"subscription-tracker/internal/repository"
	"subscription-tracker/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	log              *zap.Logger
}

func NewSubscriptionService(subscriptionRepo repository.SubscriptionRepository, log *zap.Logger) service.SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		log:              log.Named("subscriptions"),
	}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, input service.SubscriptionInput) (*models.Subscription, error) {
	subscription, err := buildSubscription(input)
	if err != nil {
		return nil, err
	}
	if err := s.subscriptionRepo.Create(ctx, subscription); err != nil {
		return nil, err
	}
	s.log.Info("subscription created",
		zap.Int64("subscription_id", subscription.ID),
		zap.String("name", subscription.Name),
		zap.String("billing_cycle", string(subscription.BillingCycle)))
	return subscription, nil
}

func (s *subscriptionService) GetAll(ctx context.Context) ([]*models.Subscription, error) {
	return s.subscriptionRepo.GetAll(ctx)
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	return s.subscriptionRepo.GetByID(ctx, id)
}

func (s *subscriptionService) UpdateSubscription(ctx context.Context, id int64, input service.SubscriptionInput) (*models.Subscription, error) {
	subscription, err := buildSubscription(input)
	if err != nil {
		return nil, err
	}
	subscription.ID = id
	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		return nil, err
	}
	return subscription, nil
}

func (s *subscriptionService) DeleteSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	deleted, err := s.subscriptionRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("subscription deleted", zap.Int64("subscription_id", id), zap.String("name", deleted.Name))
	return deleted, nil
}

// buildSubscription validates input and fills defaults. A missing billing
// cycle means Monthly.
func buildSubscription(input service.SubscriptionInput) (*models.Subscription, error) {
	var errs service.ValidationErrors

	name := strings.TrimSpace(input.Name)
	if name == "" {
		errs = append(errs, service.Invalid("name", "is required"))
	}
	if input.StartDate == nil {
		errs = append(errs, service.Invalid("start_date", "is required"))
	}

	cycle := input.BillingCycle
	if cycle == "" {
		cycle = models.BillingCycleMonthly
	}
	if !cycle.Valid() {
		errs = append(errs, service.Invalid("billing_cycle", "must be one of Monthly, Quarterly, Annually"))
	}

	if input.DefaultPrice != nil {
		if err := service.CheckAmount("default_price", *input.DefaultPrice); err != nil {
			errs = append(errs, err)
		}
	}
	if input.RenewalPrice != nil {
		if err := service.CheckAmount("renewal_price", *input.RenewalPrice); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}

	subscription := &models.Subscription{
		Name:         name,
		Category:     normalizeCategory(input.Category),
		DefaultPrice: nullDecimal(input.DefaultPrice),
		IsVariable:   input.IsVariable,
		BillingCycle: cycle,
		StartDate:    *input.StartDate,
		RenewalPrice: nullDecimal(input.RenewalPrice),
		TrialEndDate: input.TrialEndDate,
	}
	return subscription, nil
}

func normalizeCategory(category *string) *string {
	if category == nil {
		return nil
	}
	c := strings.TrimSpace(*category)
	if c == "" {
		return nil
	}
	return &c
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
