package service

import "github.com/shopspring/decimal"

// Money columns are NUMERIC(12,2).
const amountScale = 2

var amountLimit = decimal.New(1, 10)

// CheckAmount rejects amounts the store cannot hold exactly. It returns nil
// for a valid amount.
func CheckAmount(field string, amount decimal.Decimal) *ValidationError {
	switch {
	case amount.IsNegative():
		return Invalid(field, "must not be negative")
	case !amount.Equal(amount.Truncate(amountScale)):
		return Invalid(field, "must have at most 2 decimal places")
	case amount.GreaterThanOrEqual(amountLimit):
		return Invalid(field, "must be less than 10000000000")
	}
	return nil
}
