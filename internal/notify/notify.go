package notify

import (
	"context"
	"fmt"
	"strings"

	"subscription-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// GeneratedPayment describes one instance created by the generator.
type GeneratedPayment struct {
	PaymentID        int64
	SubscriptionName string
	DueDate          models.Date
	AmountDue        decimal.Decimal
}

type Notifier interface {
	PaymentsGenerated(ctx context.Context, payments []GeneratedPayment) error
}

// Nop is used when no bot token is configured.
type Nop struct{}

func (Nop) PaymentsGenerated(context.Context, []GeneratedPayment) error { return nil }

// FormatGenerated renders the message sent to admins after a generation run.
func FormatGenerated(payments []GeneratedPayment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Новые платежи: %d\n\n", len(payments))
	total := decimal.Zero
	for _, p := range payments {
		fmt.Fprintf(&b, "• %s · %s · %s\n", p.SubscriptionName, p.DueDate, p.AmountDue.StringFixed(2))
		total = total.Add(p.AmountDue)
	}
	fmt.Fprintf(&b, "\nИтого: %s", total.StringFixed(2))
	return b.String()
}
