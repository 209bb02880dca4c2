package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"subscription-tracker/internal/models"
	"subscription-tracker/internal/service"

	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

type subscriptionRequest struct {
	Name         string              `json:"name"`
	Category     *string             `json:"category"`
	DefaultPrice *decimal.Decimal    `json:"default_price"`
	IsVariable   bool                `json:"is_variable"`
	BillingCycle models.BillingCycle `json:"billing_cycle"`
	StartDate    *models.Date        `json:"start_date"`
	RenewalPrice *decimal.Decimal    `json:"renewal_price"`
	TrialEndDate *models.Date        `json:"trial_end_date"`
}

func (req subscriptionRequest) input() service.SubscriptionInput {
	return service.SubscriptionInput{
		Name:         req.Name,
		Category:     req.Category,
		DefaultPrice: req.DefaultPrice,
		IsVariable:   req.IsVariable,
		BillingCycle: req.BillingCycle,
		StartDate:    req.StartDate,
		RenewalPrice: req.RenewalPrice,
		TrialEndDate: req.TrialEndDate,
	}
}

type paymentRequest struct {
	SubscriptionID int64            `json:"subscription_id"`
	DueDate        *models.Date     `json:"due_date"`
	AmountDue      *decimal.Decimal `json:"amount_due"`
	IsPaid         *bool            `json:"is_paid"`
	PaidDate       *models.Date     `json:"paid_date"`
}

func (req paymentRequest) input() service.PaymentInput {
	return service.PaymentInput{
		SubscriptionID: req.SubscriptionID,
		DueDate:        req.DueDate,
		AmountDue:      req.AmountDue,
		IsPaid:         req.IsPaid != nil && *req.IsPaid,
		PaidDate:       req.PaidDate,
	}
}

type amountRequest struct {
	AmountDue *decimal.Decimal `json:"amount_due"`
}

type paidRequest struct {
	IsPaid *bool `json:"is_paid"`
}

// decodeJSON rejects malformed bodies, wrong field types (a non-numeric
// price, a badly formatted date) and trailing data with a ValidationError.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return service.Invalid(typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type))
		}
		if errors.Is(err, io.EOF) {
			return service.Invalid("body", "is required")
		}
		return service.Invalid("body", "is invalid: "+err.Error())
	}
	if dec.More() {
		return service.Invalid("body", "must contain a single JSON object")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

func pathPeriod(r *http.Request) (int, time.Month, error) {
	var errs service.ValidationErrors
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		errs = append(errs, service.Invalid("year", "must be a number"))
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil {
		errs = append(errs, service.Invalid("month", "must be a number"))
	}
	return year, time.Month(month), errs.Err()
}
