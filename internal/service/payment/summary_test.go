package payment_service

import (
	"testing"
	"time"

	"subscription-tracker/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func row(amount string, paid bool) *models.PaymentWithSubscription {
	return &models.PaymentWithSubscription{
		Payment: models.Payment{AmountDue: decimal.RequireFromString(amount), IsPaid: paid},
	}
}

func TestSummarize(t *testing.T) {
	rows := []*models.PaymentWithSubscription{
		row("0.10", true),
		row("0.20", false),
		row("19.99", false),
		row("5.01", true),
	}

	got := Summarize(2024, time.February, rows)
	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, 2, got.Month)
	assert.Equal(t, 4, got.Count)
	assert.Equal(t, 2, got.PaidCount)
	assert.True(t, decimal.RequireFromString("25.30").Equal(got.TotalDue))
	assert.True(t, decimal.RequireFromString("5.11").Equal(got.TotalPaid))
	assert.True(t, decimal.RequireFromString("20.19").Equal(got.Remaining))
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(2024, time.March, nil)
	assert.Zero(t, got.Count)
	assert.True(t, got.TotalDue.IsZero())
	assert.True(t, got.Remaining.IsZero())
}
