package models

import "github.com/shopspring/decimal"

// Payment is one due (and possibly paid) instance of a subscription.
// PaidDate is non-nil exactly when IsPaid is true.
type Payment struct {
	ID             int64           `db:"payment_id" json:"payment_id"`
	SubscriptionID int64           `db:"subscription_id" json:"subscription_id"`
	DueDate        Date            `db:"due_date" json:"due_date"`
	AmountDue      decimal.Decimal `db:"amount_due" json:"amount_due"`
	IsPaid         bool            `db:"is_paid" json:"is_paid"`
	PaidDate       *Date           `db:"paid_date" json:"paid_date"`
}

// PaymentWithSubscription is a ledger row joined with the owning
// subscription's display fields, as listed on the monthly dashboard.
type PaymentWithSubscription struct {
	Payment
	SubscriptionName string              `db:"subscription_name" json:"subscription_name"`
	Category         *string             `db:"category" json:"category"`
	TrialEndDate     *Date               `db:"trial_end_date" json:"trial_end_date"`
	RenewalPrice     decimal.NullDecimal `db:"renewal_price" json:"renewal_price"`
}

// MonthSummary carries the dashboard totals for one month.
type MonthSummary struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Count     int             `json:"count"`
	PaidCount int             `json:"paid_count"`
	TotalDue  decimal.Decimal `json:"total_due"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Remaining decimal.Decimal `json:"remaining"`
}

// CREATE TABLE monthly_payments (
//     payment_id SERIAL PRIMARY KEY,
//     subscription_id INTEGER NOT NULL REFERENCES subscriptions(subscription_id) ON DELETE CASCADE,
//     due_date DATE NOT NULL,
//     amount_due NUMERIC(12,2) NOT NULL DEFAULT 0,
//     is_paid BOOLEAN NOT NULL DEFAULT FALSE,
//     paid_date DATE,
//     UNIQUE (subscription_id, due_date)
// );
