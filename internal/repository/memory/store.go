// Package memory is an in-process store used when DB_DRIVER=memory and by tests.
// It upholds the same invariants as the Postgres schema: unique
// (subscription_id, due_date), a foreign key from payments to subscriptions
// and cascading deletes.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"subscription-tracker/internal/models"
	"subscription-tracker/internal/repository"

	"github.com/shopspring/decimal"
)

type paymentKey struct {
	subscriptionID int64
	dueDate        models.Date
}

type Store struct {
	mu            sync.RWMutex
	subscriptions map[int64]models.Subscription
	payments      map[int64]models.Payment
	byKey         map[paymentKey]int64
	nextSubID     int64
	nextPaymentID int64
}

func NewStore() *Store {
	return &Store{
		subscriptions: make(map[int64]models.Subscription),
		payments:      make(map[int64]models.Payment),
		byKey:         make(map[paymentKey]int64),
	}
}

func (s *Store) Subscriptions() repository.SubscriptionRepository {
	return &subscriptionRepository{store: s}
}

func (s *Store) Payments() repository.PaymentRepository {
	return &paymentRepository{store: s}
}

type subscriptionRepository struct {
	store *Store
}

func (r *subscriptionRepository) Create(_ context.Context, subscription *models.Subscription) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	subscription.ID = s.nextSubID
	s.subscriptions[subscription.ID] = cloneSubscription(*subscription)
	return nil
}

func (r *subscriptionRepository) GetAll(_ context.Context) ([]*models.Subscription, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Subscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		sub = cloneSubscription(sub)
		result = append(result, &sub)
	}
	sort.Slice(result, func(i, j int) bool {
		if c := strings.Compare(result[i].Name, result[j].Name); c != 0 {
			return c < 0
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *subscriptionRepository) GetByID(_ context.Context, id int64) (*models.Subscription, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	sub = cloneSubscription(sub)
	return &sub, nil
}

func (r *subscriptionRepository) Update(_ context.Context, subscription *models.Subscription) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[subscription.ID]; !ok {
		return repository.ErrNotFound
	}
	s.subscriptions[subscription.ID] = cloneSubscription(*subscription)
	return nil
}

func (r *subscriptionRepository) Delete(_ context.Context, id int64) (*models.Subscription, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(s.subscriptions, id)
	for pid, p := range s.payments {
		if p.SubscriptionID == id {
			delete(s.payments, pid)
			delete(s.byKey, paymentKey{p.SubscriptionID, p.DueDate})
		}
	}
	return &sub, nil
}

type paymentRepository struct {
	store *Store
}

func (r *paymentRepository) Create(_ context.Context, payment *models.Payment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(payment)
}

func (r *paymentRepository) CreateIfAbsent(_ context.Context, payment *models.Payment) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byKey[paymentKey{payment.SubscriptionID, payment.DueDate}]; ok {
		return false, nil
	}
	if err := s.insertLocked(payment); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) insertLocked(payment *models.Payment) error {
	if _, ok := s.subscriptions[payment.SubscriptionID]; !ok {
		return repository.ErrNotFound
	}
	key := paymentKey{payment.SubscriptionID, payment.DueDate}
	if _, ok := s.byKey[key]; ok {
		return repository.ErrDuplicate
	}
	s.nextPaymentID++
	payment.ID = s.nextPaymentID
	s.payments[payment.ID] = clonePayment(*payment)
	s.byKey[key] = payment.ID
	return nil
}

func (r *paymentRepository) GetByID(_ context.Context, id int64) (*models.Payment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = clonePayment(p)
	return &p, nil
}

func (r *paymentRepository) GetByMonth(_ context.Context, year int, month time.Month) ([]*models.PaymentWithSubscription, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.PaymentWithSubscription{}
	for _, p := range s.payments {
		if !p.DueDate.InMonth(year, month) {
			continue
		}
		sub := s.subscriptions[p.SubscriptionID]
		result = append(result, &models.PaymentWithSubscription{
			Payment:          clonePayment(p),
			SubscriptionName: sub.Name,
			Category:         sub.Category,
			TrialEndDate:     sub.TrialEndDate,
			RenewalPrice:     sub.RenewalPrice,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].DueDate, result[j].DueDate
		if a != b {
			return a.Before(b)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *paymentRepository) GetBySubscription(_ context.Context, subscriptionID int64) ([]*models.Payment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.Payment{}
	for _, p := range s.payments {
		if p.SubscriptionID == subscriptionID {
			p = clonePayment(p)
			result = append(result, &p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

func (r *paymentRepository) GetLatestBySubscription(_ context.Context, subscriptionID int64) (*models.Payment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.Payment
	for _, p := range s.payments {
		if p.SubscriptionID != subscriptionID {
			continue
		}
		if latest == nil || p.DueDate.After(latest.DueDate) {
			p = clonePayment(p)
			latest = &p
		}
	}
	return latest, nil
}

func (r *paymentRepository) UpdateAmount(_ context.Context, id int64, amount decimal.Decimal) (*models.Payment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.AmountDue = amount
	s.payments[id] = p
	p = clonePayment(p)
	return &p, nil
}

func (r *paymentRepository) UpdatePaid(_ context.Context, id int64, paid bool, paidDate *models.Date) (*models.Payment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.IsPaid = paid
	p.PaidDate = nil
	if paidDate != nil {
		d := *paidDate
		p.PaidDate = &d
	}
	s.payments[id] = p
	p = clonePayment(p)
	return &p, nil
}

func clonePayment(p models.Payment) models.Payment {
	if p.PaidDate != nil {
		d := *p.PaidDate
		p.PaidDate = &d
	}
	return p
}

func cloneSubscription(sub models.Subscription) models.Subscription {
	if sub.Category != nil {
		c := *sub.Category
		sub.Category = &c
	}
	if sub.TrialEndDate != nil {
		d := *sub.TrialEndDate
		sub.TrialEndDate = &d
	}
	return sub
}
