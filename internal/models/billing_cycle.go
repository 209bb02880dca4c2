package models

import (
	"errors"
	"fmt"
)

// BillingCycle is the recurrence period of a subscription.
type BillingCycle string

const (
	BillingCycleMonthly   BillingCycle = "Monthly"
	BillingCycleQuarterly BillingCycle = "Quarterly"
	BillingCycleAnnually  BillingCycle = "Annually"
)

var ErrUnknownBillingCycle = errors.New("unknown billing cycle")

func (c BillingCycle) Valid() bool {
	switch c {
	case BillingCycleMonthly, BillingCycleQuarterly, BillingCycleAnnually:
		return true
	}
	return false
}

// NextDueDate returns the due date one billing period after anchor.
// Month-based cycles clamp to the last day of the target month.
func NextDueDate(cycle BillingCycle, anchor Date) (Date, error) {
	switch cycle {
	case BillingCycleMonthly:
		return anchor.AddMonths(1), nil
	case BillingCycleQuarterly:
		return anchor.AddMonths(3), nil
	case BillingCycleAnnually:
		return anchor.AddYears(1), nil
	default:
		return Date{}, fmt.Errorf("%w: %q", ErrUnknownBillingCycle, string(cycle))
	}
}
