package payment_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subscription-tracker/internal/metrics"
	"subscription-tracker/internal/models"
	"subscription-tracker/internal/notify"
	"subscription-tracker/internal/repository"
	"subscription-tracker/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type paymentService struct {
	subscriptionRepo repository.SubscriptionRepository
	paymentRepo      repository.PaymentRepository
	notifier         notify.Notifier
	metrics          *metrics.Metrics
	log              *zap.Logger
	now              func() time.Time
}

type Option func(*paymentService)

// WithClock replaces time.Now; paid dates are taken from it.
func WithClock(now func() time.Time) Option {
	return func(s *paymentService) { s.now = now }
}

func NewPaymentService(
	subscriptionRepo repository.SubscriptionRepository,
	paymentRepo repository.PaymentRepository,
	notifier notify.Notifier,
	m *metrics.Metrics,
	log *zap.Logger,
	opts ...Option,
) service.PaymentService {
	s := &paymentService{
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		notifier:         notifier,
		metrics:          m,
		log:              log.Named("payments"),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *paymentService) GetMonth(ctx context.Context, year int, month time.Month) ([]*models.PaymentWithSubscription, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByMonth(ctx, year, month)
}

func (s *paymentService) GetMonthSummary(ctx context.Context, year int, month time.Month) (*models.MonthSummary, []*models.PaymentWithSubscription, error) {
	rows, err := s.GetMonth(ctx, year, month)
	if err != nil {
		return nil, nil, err
	}
	summary := Summarize(year, month, rows)
	return &summary, rows, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *paymentService) GetSubscriptionPayments(ctx context.Context, subscriptionID int64) ([]*models.Payment, error) {
	if _, err := s.subscriptionRepo.GetByID(ctx, subscriptionID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetBySubscription(ctx, subscriptionID)
}

func (s *paymentService) CreatePayment(ctx context.Context, input service.PaymentInput) (*models.Payment, error) {
	var errs service.ValidationErrors
	if input.SubscriptionID <= 0 {
		errs = append(errs, service.Invalid("subscription_id", "is required"))
	}
	if input.DueDate == nil {
		errs = append(errs, service.Invalid("due_date", "is required"))
	}
	amount := decimal.Zero
	if input.AmountDue != nil {
		if err := service.CheckAmount("amount_due", *input.AmountDue); err != nil {
			errs = append(errs, err)
		}
		amount = *input.AmountDue
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		SubscriptionID: input.SubscriptionID,
		DueDate:        *input.DueDate,
		AmountDue:      amount,
		IsPaid:         input.IsPaid,
	}
	if input.IsPaid {
		paidDate := s.today()
		if input.PaidDate != nil {
			paidDate = *input.PaidDate
		}
		payment.PaidDate = &paidDate
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) SetAmount(ctx context.Context, id int64, amount decimal.Decimal) (*models.Payment, error) {
	if err := service.CheckAmount("amount_due", amount); err != nil {
		return nil, err
	}
	return s.paymentRepo.UpdateAmount(ctx, id, amount)
}

// SetPaid stamps today's date when marking paid, also when the payment was
// already paid, and clears the date when marking unpaid.
func (s *paymentService) SetPaid(ctx context.Context, id int64, paid bool) (*models.Payment, error) {
	var paidDate *models.Date
	if paid {
		today := s.today()
		paidDate = &today
	}
	return s.paymentRepo.UpdatePaid(ctx, id, paid, paidDate)
}

// Generate walks every subscription and inserts its next payment instance
// when it is not in the ledger yet. The ledger is the only record of what
// was generated, so the routine can be re-run on any schedule.
func (s *paymentService) Generate(ctx context.Context) (*service.GenerationReport, error) {
	s.metrics.GenerationRuns.Inc()

	subscriptions, err := s.subscriptionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	report := &service.GenerationReport{}
	var generated []notify.GeneratedPayment

	for _, sub := range subscriptions {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		payment, created, err := s.generateNext(ctx, sub)
		if err != nil {
			report.Failed++
			s.metrics.GenerationFailures.Inc()
			s.log.Warn("generation skipped subscription",
				zap.Int64("subscription_id", sub.ID),
				zap.String("name", sub.Name),
				zap.Error(err))
			continue
		}
		if !created {
			continue
		}

		report.Created++
		report.Payments = append(report.Payments, payment)
		generated = append(generated, notify.GeneratedPayment{
			PaymentID:        payment.ID,
			SubscriptionName: sub.Name,
			DueDate:          payment.DueDate,
			AmountDue:        payment.AmountDue,
		})
		s.log.Debug("payment generated",
			zap.Int64("subscription_id", sub.ID),
			zap.Int64("payment_id", payment.ID),
			zap.Stringer("due_date", payment.DueDate))
	}

	s.metrics.PaymentsGenerated.Add(float64(report.Created))
	s.log.Info("payment generation complete",
		zap.Int("subscriptions", len(subscriptions)),
		zap.Int("created", report.Created),
		zap.Int("failed", report.Failed))

	if len(generated) > 0 {
		if err := s.notifier.PaymentsGenerated(ctx, generated); err != nil {
			s.log.Warn("generation notification failed", zap.Error(err))
		}
	}

	return report, nil
}

// generateNext reports created=false when the candidate instance already
// exists, whether found by the check or by the unique constraint.
func (s *paymentService) generateNext(ctx context.Context, sub *models.Subscription) (*models.Payment, bool, error) {
	latest, err := s.paymentRepo.GetLatestBySubscription(ctx, sub.ID)
	if err != nil {
		return nil, false, err
	}

	dueDate := sub.StartDate
	if latest != nil {
		dueDate, err = models.NextDueDate(sub.BillingCycle, latest.DueDate)
		if err != nil {
			return nil, false, err
		}
	}

	payment := &models.Payment{
		SubscriptionID: sub.ID,
		DueDate:        dueDate,
		AmountDue:      sub.AmountForNewPayment(),
		IsPaid:         false,
	}

	created, err := s.paymentRepo.CreateIfAbsent(ctx, payment)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payment, created, nil
}

func (s *paymentService) today() models.Date {
	return models.DateOf(s.now())
}

func validatePeriod(year int, month time.Month) error {
	var errs service.ValidationErrors
	if year < 1 || year > 9999 {
		errs = append(errs, service.Invalid("year", "must be between 1 and 9999"))
	}
	if month < time.January || month > time.December {
		errs = append(errs, service.Invalid("month", "must be between 1 and 12"))
	}
	return errs.Err()
}
