package payment_service

import (
	"time"

	"subscription-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// Summarize computes the dashboard totals. Remaining is TotalDue-TotalPaid,
// which with decimal arithmetic equals the sum over unpaid rows exactly.
func Summarize(year int, month time.Month, rows []*models.PaymentWithSubscription) models.MonthSummary {
	summary := models.MonthSummary{
		Year:      year,
		Month:     int(month),
		Count:     len(rows),
		TotalDue:  decimal.Zero,
		TotalPaid: decimal.Zero,
	}
	for _, row := range rows {
		summary.TotalDue = summary.TotalDue.Add(row.AmountDue)
		if row.IsPaid {
			summary.PaidCount++
			summary.TotalPaid = summary.TotalPaid.Add(row.AmountDue)
		}
	}
	summary.Remaining = summary.TotalDue.Sub(summary.TotalPaid)
	return summary
}
