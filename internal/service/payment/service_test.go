package payment_service

import (
	"context"
	"errors"
	"testing"
	"time"

	"subscription-tracker/internal/metrics"
	"subscription-tracker/internal/models"
	"subscription-tracker/internal/notify"
	"subscription-tracker/internal/repository"
	"subscription-tracker/internal/repository/memory"
	"subscription-tracker/internal/service"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	calls [][]notify.GeneratedPayment
	err   error
}

func (n *recordingNotifier) PaymentsGenerated(_ context.Context, payments []notify.GeneratedPayment) error {
	n.calls = append(n.calls, payments)
	return n.err
}

// flakyPayments fails CreateIfAbsent for one subscription.
type flakyPayments struct {
	repository.PaymentRepository
	failFor int64
}

func (f *flakyPayments) CreateIfAbsent(ctx context.Context, p *models.Payment) (bool, error) {
	if p.SubscriptionID == f.failFor {
		return false, errors.New("connection reset by peer")
	}
	return f.PaymentRepository.CreateIfAbsent(ctx, p)
}

// racingPayments lets another writer insert the candidate between the
// latest-row lookup and CreateIfAbsent.
type racingPayments struct {
	repository.PaymentRepository
	asDuplicateError bool
}

func (r *racingPayments) CreateIfAbsent(ctx context.Context, p *models.Payment) (bool, error) {
	other := *p
	if err := r.PaymentRepository.Create(ctx, &other); err != nil {
		return false, err
	}
	if r.asDuplicateError {
		return false, repository.ErrDuplicate
	}
	return r.PaymentRepository.CreateIfAbsent(ctx, p)
}

type PaymentServiceSuite struct {
	suite.Suite

	ctx      context.Context
	store    *memory.Store
	notifier *recordingNotifier
	metrics  *metrics.Metrics
	now      time.Time
	service  service.PaymentService
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.notifier = &recordingNotifier{}
	s.metrics = metrics.New()
	s.now = time.Date(2024, time.March, 10, 18, 0, 0, 0, time.UTC)
	s.service = s.newService(s.store.Payments())
}

func (s *PaymentServiceSuite) newService(payments repository.PaymentRepository) service.PaymentService {
	return NewPaymentService(
		s.store.Subscriptions(),
		payments,
		s.notifier,
		s.metrics,
		zap.NewNop(),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *PaymentServiceSuite) addSubscription(name string, cycle models.BillingCycle, start models.Date, price string) *models.Subscription {
	sub := &models.Subscription{
		Name:         name,
		BillingCycle: cycle,
		StartDate:    start,
	}
	if price != "" {
		sub.DefaultPrice = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	s.Require().NoError(s.store.Subscriptions().Create(s.ctx, sub))
	return sub
}

func (s *PaymentServiceSuite) ledger(subscriptionID int64) []*models.Payment {
	payments, err := s.store.Payments().GetBySubscription(s.ctx, subscriptionID)
	s.Require().NoError(err)
	return payments
}

func (s *PaymentServiceSuite) TestGenerate_FirstRunUsesStartDate() {
	sub := s.addSubscription("Netflix", models.BillingCycleMonthly, models.NewDate(2024, time.January, 31), "15.49")

	report, err := s.service.Generate(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Created)
	s.Equal(0, report.Failed)

	payments := s.ledger(sub.ID)
	s.Require().Len(payments, 1)
	s.Equal(models.NewDate(2024, time.January, 31), payments[0].DueDate)
	s.Equal("15.49", payments[0].AmountDue.StringFixed(2))
	s.False(payments[0].IsPaid)
	s.Nil(payments[0].PaidDate)
}

func (s *PaymentServiceSuite) TestGenerate_AdvancesFromLatestDueDate() {
	sub := s.addSubscription("Netflix", models.BillingCycleMonthly, models.NewDate(2024, time.January, 31), "15.49")

	for range 3 {
		_, err := s.service.Generate(s.ctx)
		s.Require().NoError(err)
	}

	payments := s.ledger(sub.ID)
	s.Require().Len(payments, 3)
	s.Equal(models.NewDate(2024, time.January, 31), payments[0].DueDate)
	s.Equal(models.NewDate(2024, time.February, 29), payments[1].DueDate)
	s.Equal(models.NewDate(2024, time.March, 29), payments[2].DueDate)
}

func (s *PaymentServiceSuite) TestGenerate_ExistingCandidateIsSkipped() {
	for _, asDuplicateError := range []bool{false, true} {
		s.SetupTest()
		sub := s.addSubscription("Gym", models.BillingCycleMonthly, models.NewDate(2024, time.March, 1), "40")

		svc := s.newService(&racingPayments{PaymentRepository: s.store.Payments(), asDuplicateError: asDuplicateError})
		report, err := svc.Generate(s.ctx)
		s.Require().NoError(err)
		s.Equal(0, report.Created)
		s.Equal(0, report.Failed)
		s.Empty(s.notifier.calls)
		s.Len(s.ledger(sub.ID), 1)
	}
}

func (s *PaymentServiceSuite) TestGenerate_QuarterlyAndAnnual() {
	quarterly := s.addSubscription("Cloud", models.BillingCycleQuarterly, models.NewDate(2024, time.January, 31), "30")
	annual := s.addSubscription("Domain", models.BillingCycleAnnually, models.NewDate(2024, time.February, 29), "12")

	for range 2 {
		_, err := s.service.Generate(s.ctx)
		s.Require().NoError(err)
	}

	q := s.ledger(quarterly.ID)
	s.Require().Len(q, 2)
	s.Equal(models.NewDate(2024, time.April, 30), q[1].DueDate)

	a := s.ledger(annual.ID)
	s.Require().Len(a, 2)
	s.Equal(models.NewDate(2025, time.February, 28), a[1].DueDate)
}

func (s *PaymentServiceSuite) TestGenerate_ManualEntryIsTheAnchor() {
	sub := s.addSubscription("Gym", models.BillingCycleMonthly, models.NewDate(2024, time.March, 1), "40")

	// A manual entry at the start date makes the next run compute April.
	due := models.NewDate(2024, time.March, 1)
	_, err := s.service.CreatePayment(s.ctx, service.PaymentInput{SubscriptionID: sub.ID, DueDate: &due})
	s.Require().NoError(err)

	report, err := s.service.Generate(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Created)
	s.Equal(models.NewDate(2024, time.April, 1), report.Payments[0].DueDate)

	s.Len(s.ledger(sub.ID), 2)
}

func (s *PaymentServiceSuite) TestGenerate_VariableWithoutPriceDefaultsToZero() {
	sub := s.addSubscription("Electricity", models.BillingCycleMonthly, models.NewDate(2024, time.March, 5), "")

	_, err := s.service.Generate(s.ctx)
	s.Require().NoError(err)

	payments := s.ledger(sub.ID)
	s.Require().Len(payments, 1)
	s.True(payments[0].AmountDue.IsZero())
}

func (s *PaymentServiceSuite) TestGenerate_ContinuesAfterFailure() {
	broken := s.addSubscription("Broken", models.BillingCycleMonthly, models.NewDate(2024, time.March, 1), "1")
	ok := s.addSubscription("Working", models.BillingCycleMonthly, models.NewDate(2024, time.March, 2), "2")

	svc := s.newService(&flakyPayments{PaymentRepository: s.store.Payments(), failFor: broken.ID})
	report, err := svc.Generate(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Created)
	s.Equal(1, report.Failed)

	s.Empty(s.ledger(broken.ID))
	s.Len(s.ledger(ok.ID), 1)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.GenerationFailures))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.PaymentsGenerated))
}

func (s *PaymentServiceSuite) TestGenerate_UnknownCycleCountsAsFailure() {
	sub := s.addSubscription("Odd", "Weekly", models.NewDate(2024, time.March, 1), "1")

	// The first instance only needs the start date.
	report, err := s.service.Generate(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Created)

	report, err = s.service.Generate(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, report.Created)
	s.Equal(1, report.Failed)
	s.Len(s.ledger(sub.ID), 1)
}

func (s *PaymentServiceSuite) TestGenerate_NotifiesOnlyWhenCreated() {
	s.addSubscription("Music", models.BillingCycleMonthly, models.NewDate(2024, time.March, 3), "9.99")

	_, err := s.service.Generate(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(s.notifier.calls, 1)
	s.Equal("Music", s.notifier.calls[0][0].SubscriptionName)

	// An empty store generates nothing and sends nothing.
	s.store = memory.NewStore()
	s.service = s.newService(s.store.Payments())
	_, err = s.service.Generate(s.ctx)
	s.Require().NoError(err)
	s.Len(s.notifier.calls, 1)
}

func (s *PaymentServiceSuite) TestGenerate_NotifierErrorIsNotFatal() {
	s.addSubscription("Music", models.BillingCycleMonthly, models.NewDate(2024, time.March, 3), "9.99")
	s.notifier.err = errors.New("telegram is down")

	report, err := s.service.Generate(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Created)
}

type brokenSubscriptions struct {
	repository.SubscriptionRepository
	err error
}

func (b brokenSubscriptions) GetAll(context.Context) ([]*models.Subscription, error) {
	return nil, b.err
}

func (s *PaymentServiceSuite) TestGenerate_ListFailureAborts() {
	storeDown := errors.New("connection refused")
	svc := NewPaymentService(
		brokenSubscriptions{SubscriptionRepository: s.store.Subscriptions(), err: storeDown},
		s.store.Payments(), s.notifier, s.metrics, zap.NewNop(),
	)

	_, err := svc.Generate(s.ctx)
	s.ErrorIs(err, storeDown)
	s.EqualError(err, "list subscriptions: connection refused")
}

func (s *PaymentServiceSuite) TestGenerate_CancelledContext() {
	s.addSubscription("Music", models.BillingCycleMonthly, models.NewDate(2024, time.March, 3), "9.99")

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.service.Generate(ctx)
	s.ErrorIs(err, context.Canceled)
}

func (s *PaymentServiceSuite) TestCreatePayment_Validation() {
	_, err := s.service.CreatePayment(s.ctx, service.PaymentInput{})
	var errs service.ValidationErrors
	s.Require().ErrorAs(err, &errs)
	s.Len(errs, 2)

	sub := s.addSubscription("Gym", models.BillingCycleMonthly, models.NewDate(2024, time.March, 1), "40")
	due := models.NewDate(2024, time.March, 1)
	negative := decimal.RequireFromString("-1")
	_, err = s.service.CreatePayment(s.ctx, service.PaymentInput{SubscriptionID: sub.ID, DueDate: &due, AmountDue: &negative})
	var verr service.ValidationErrors
	s.Require().ErrorAs(err, &verr)
	s.Equal("amount_due", verr[0].Field)
}

func (s *PaymentServiceSuite) TestCreatePayment_UnknownSubscriptionAndDuplicate() {
	due := models.NewDate(2024, time.March, 1)
	_, err := s.service.CreatePayment(s.ctx, service.PaymentInput{SubscriptionID: 999, DueDate: &due})
	s.ErrorIs(err, service.ErrNotFound)

	sub := s.addSubscription("Gym", models.BillingCycleMonthly, due, "40")
	_, err = s.service.CreatePayment(s.ctx, service.PaymentInput{SubscriptionID: sub.ID, DueDate: &due})
	s.Require().NoError(err)
	_, err = s.service.CreatePayment(s.ctx, service.PaymentInput{SubscriptionID: sub.ID, DueDate: &due})
	s.ErrorIs(err, service.ErrConflict)
}

func (s *PaymentServiceSuite) TestCreatePayment_PaidDefaultsToToday() {
	sub := s.addSubscription("Gym", models.BillingCycleMonthly, models.NewDate(2024, time.March, 1), "40")
	due := models.NewDate(2024, time.March, 1)

	p, err := s.service.CreatePayment(s.ctx, service.PaymentInput{SubscriptionID: sub.ID, DueDate: &due, IsPaid: true})
	s.Require().NoError(err)
	s.True(p.IsPaid)
	s.Require().NotNil(p.PaidDate)
	s.Equal(models.NewDate(2024, time.March, 10), *p.PaidDate)
	s.True(p.AmountDue.IsZero())
}

func (s *PaymentServiceSuite) TestSetPaid() {
	sub := s.addSubscription("Gym", models.BillingCycleMonthly, models.NewDate(2024, time.March, 1), "40")
	_, err := s.service.Generate(s.ctx)
	s.Require().NoError(err)
	id := s.ledger(sub.ID)[0].ID

	p, err := s.service.SetPaid(s.ctx, id, true)
	s.Require().NoError(err)
	s.True(p.IsPaid)
	s.Equal(models.NewDate(2024, time.March, 10), *p.PaidDate)

	// Marking paid again re-stamps the date.
	s.now = s.now.AddDate(0, 0, 5)
	p, err = s.service.SetPaid(s.ctx, id, true)
	s.Require().NoError(err)
	s.Equal(models.NewDate(2024, time.March, 15), *p.PaidDate)

	p, err = s.service.SetPaid(s.ctx, id, false)
	s.Require().NoError(err)
	s.False(p.IsPaid)
	s.Nil(p.PaidDate)

	_, err = s.service.SetPaid(s.ctx, 12345, true)
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *PaymentServiceSuite) TestSetAmount() {
	sub := s.addSubscription("Electricity", models.BillingCycleMonthly, models.NewDate(2024, time.March, 5), "")
	_, err := s.service.Generate(s.ctx)
	s.Require().NoError(err)
	id := s.ledger(sub.ID)[0].ID

	p, err := s.service.SetAmount(s.ctx, id, decimal.RequireFromString("87.13"))
	s.Require().NoError(err)
	s.Equal("87.13", p.AmountDue.StringFixed(2))

	_, err = s.service.SetAmount(s.ctx, id, decimal.RequireFromString("-0.01"))
	var verr *service.ValidationError
	s.ErrorAs(err, &verr)

	for _, amount := range []string{"12.345", "10000000000"} {
		_, err = s.service.SetAmount(s.ctx, id, decimal.RequireFromString(amount))
		s.ErrorAs(err, &verr, amount)
	}
	s.Equal("87.13", s.ledger(sub.ID)[0].AmountDue.StringFixed(2))

	_, err = s.service.SetAmount(s.ctx, 12345, decimal.Zero)
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *PaymentServiceSuite) TestCreatePayment_RejectsUnstorableAmount() {
	sub := s.addSubscription("Gym", models.BillingCycleMonthly, models.NewDate(2024, time.March, 1), "40")
	due := models.NewDate(2024, time.March, 1)

	for _, raw := range []string{"40.001", "12345678901.5"} {
		amount := decimal.RequireFromString(raw)
		_, err := s.service.CreatePayment(s.ctx, service.PaymentInput{SubscriptionID: sub.ID, DueDate: &due, AmountDue: &amount})
		var verr service.ValidationErrors
		s.Require().ErrorAs(err, &verr, raw)
		s.Equal("amount_due", verr[0].Field)
	}
	s.Empty(s.ledger(sub.ID))
}

func (s *PaymentServiceSuite) TestGetPaymentAndSubscriptionPayments() {
	sub := s.addSubscription("Gym", models.BillingCycleMonthly, models.NewDate(2024, time.January, 31), "40")
	for range 2 {
		_, err := s.service.Generate(s.ctx)
		s.Require().NoError(err)
	}

	payments, err := s.service.GetSubscriptionPayments(s.ctx, sub.ID)
	s.Require().NoError(err)
	s.Require().Len(payments, 2)
	s.Equal(models.NewDate(2024, time.January, 31), payments[0].DueDate)
	s.Equal(models.NewDate(2024, time.February, 29), payments[1].DueDate)

	p, err := s.service.GetPayment(s.ctx, payments[1].ID)
	s.Require().NoError(err)
	s.Equal(payments[1].DueDate, p.DueDate)

	_, err = s.service.GetPayment(s.ctx, 999)
	s.ErrorIs(err, service.ErrNotFound)

	_, err = s.service.GetSubscriptionPayments(s.ctx, 999)
	s.ErrorIs(err, service.ErrNotFound)

	// A subscription without payments has an empty ledger, not a missing one.
	other := s.addSubscription("Music", models.BillingCycleMonthly, models.NewDate(2024, time.May, 1), "")
	payments, err = s.service.GetSubscriptionPayments(s.ctx, other.ID)
	s.Require().NoError(err)
	s.NotNil(payments)
	s.Empty(payments)
}

func (s *PaymentServiceSuite) TestGetMonthSummary() {
	a := s.addSubscription("A", models.BillingCycleMonthly, models.NewDate(2024, time.March, 1), "0.10")
	s.addSubscription("B", models.BillingCycleMonthly, models.NewDate(2024, time.March, 20), "0.20")
	s.addSubscription("C", models.BillingCycleMonthly, models.NewDate(2024, time.April, 1), "100")
	_, err := s.service.Generate(s.ctx)
	s.Require().NoError(err)

	_, err = s.service.SetPaid(s.ctx, s.ledger(a.ID)[0].ID, true)
	s.Require().NoError(err)

	summary, rows, err := s.service.GetMonthSummary(s.ctx, 2024, time.March)
	s.Require().NoError(err)
	s.Len(rows, 2)
	s.Equal("A", rows[0].SubscriptionName)
	s.Equal(2, summary.Count)
	s.Equal(1, summary.PaidCount)
	s.Equal("0.30", summary.TotalDue.StringFixed(2))
	s.Equal("0.10", summary.TotalPaid.StringFixed(2))
	s.Equal("0.20", summary.Remaining.StringFixed(2))
}

func (s *PaymentServiceSuite) TestGetMonth_InvalidPeriod() {
	_, err := s.service.GetMonth(s.ctx, 2024, 13)
	var errs service.ValidationErrors
	s.Require().ErrorAs(err, &errs)
	s.Equal("month", errs[0].Field)

	_, err = s.service.GetMonth(s.ctx, 0, time.January)
	s.Require().ErrorAs(err, &errs)
	s.Equal("year", errs[0].Field)
}

func (s *PaymentServiceSuite) TestGetMonth_EmptyIsNotNil() {
	rows, err := s.service.GetMonth(s.ctx, 2030, time.January)
	s.Require().NoError(err)
	s.NotNil(rows)
	s.Empty(rows)
}
