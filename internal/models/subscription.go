package models

import "github.com/shopspring/decimal"

type Subscription struct {
	ID           int64               `db:"subscription_id" json:"subscription_id"`
	Name         string              `db:"name" json:"name"`
	Category     *string             `db:"category" json:"category"`
	DefaultPrice decimal.NullDecimal `db:"default_price" json:"default_price"`
	IsVariable   bool                `db:"is_variable" json:"is_variable"`
	BillingCycle BillingCycle        `db:"billing_cycle" json:"billing_cycle"`
	StartDate    Date                `db:"start_date" json:"start_date"`
	RenewalPrice decimal.NullDecimal `db:"renewal_price" json:"renewal_price"`
	TrialEndDate *Date               `db:"trial_end_date" json:"trial_end_date"`
}

// AmountForNewPayment is what a generated payment instance is charged:
// the default price, or zero when there is none.
func (s *Subscription) AmountForNewPayment() decimal.Decimal {
	if s.DefaultPrice.Valid {
		return s.DefaultPrice.Decimal
	}
	return decimal.Zero
}

// CREATE TABLE subscriptions (
//     subscription_id SERIAL PRIMARY KEY,
//     name TEXT NOT NULL,
//     category TEXT,
//     default_price NUMERIC(12,2),
//     is_variable BOOLEAN NOT NULL DEFAULT FALSE,
//     billing_cycle TEXT NOT NULL DEFAULT 'Monthly',
//     start_date DATE NOT NULL,
//     renewal_price NUMERIC(12,2),
//     trial_end_date DATE
// );
