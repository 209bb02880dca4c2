package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"subscription-tracker/internal/report"
	"subscription-tracker/internal/service"

	"go.uber.org/zap"
)

type Handler struct {
	subscriptionService service.SubscriptionService
	paymentService      service.PaymentService
	log                 *zap.Logger
}

func NewHandler(
	subscriptionService service.SubscriptionService,
	paymentService service.PaymentService,
	log *zap.Logger,
) *Handler {
	return &Handler{
		subscriptionService: subscriptionService,
		paymentService:      paymentService,
		log:                 log.Named("web"),
	}
}

// ==========================================
// Subscriptions (/api/subscriptions)
// ==========================================

func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err, "Subscription", "creating subscription")
		return
	}

	subscription, err := h.subscriptionService.CreateSubscription(r.Context(), req.input())
	if err != nil {
		h.writeError(w, r, err, "Subscription", "creating subscription")
		return
	}
	writeJSON(w, http.StatusCreated, subscription)
}

func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subscriptions, err := h.subscriptionService.GetAll(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Subscription", "fetching subscriptions")
		return
	}
	writeJSON(w, http.StatusOK, subscriptions)
}

func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err, "Subscription", "fetching subscription")
		return
	}

	subscription, err := h.subscriptionService.GetSubscription(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Subscription", "fetching subscription")
		return
	}
	writeJSON(w, http.StatusOK, subscription)
}

func (h *Handler) ListSubscriptionPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err, "Subscription", "fetching payments")
		return
	}

	payments, err := h.paymentService.GetSubscriptionPayments(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Subscription", "fetching payments")
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *Handler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err, "Subscription", "updating subscription")
		return
	}

	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err, "Subscription", "updating subscription")
		return
	}

	subscription, err := h.subscriptionService.UpdateSubscription(r.Context(), id, req.input())
	if err != nil {
		h.writeError(w, r, err, "Subscription", "updating subscription")
		return
	}
	writeJSON(w, http.StatusOK, subscription)
}

func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err, "Subscription", "deleting subscription")
		return
	}

	deleted, err := h.subscriptionService.DeleteSubscription(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Subscription", "deleting subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":             "Subscription deleted successfully",
		"deletedSubscription": deleted,
	})
}

// ==========================================
// Payments (/api/payments)
// ==========================================

func (h *Handler) ListMonthPayments(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathPeriod(r)
	if err != nil {
		h.writeError(w, r, err, "Payment", "fetching payments")
		return
	}

	payments, err := h.paymentService.GetMonth(r.Context(), year, month)
	if err != nil {
		h.writeError(w, r, err, "Payment", "fetching payments")
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *Handler) MonthSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathPeriod(r)
	if err != nil {
		h.writeError(w, r, err, "Payment", "summarizing payments")
		return
	}

	summary, _, err := h.paymentService.GetMonthSummary(r.Context(), year, month)
	if err != nil {
		h.writeError(w, r, err, "Payment", "summarizing payments")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) ExportMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathPeriod(r)
	if err != nil {
		h.writeError(w, r, err, "Payment", "exporting payments")
		return
	}

	summary, rows, err := h.paymentService.GetMonthSummary(r.Context(), year, month)
	if err != nil {
		h.writeError(w, r, err, "Payment", "exporting payments")
		return
	}

	// Buffer so a failed export still gets a JSON error instead of half a file.
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, rows, *summary); err != nil {
		h.writeError(w, r, err, "Payment", "exporting payments")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="payments-%s.xlsx"`, report.Period(year, month)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err, "Payment record", "fetching payment")
		return
	}

	payment, err := h.paymentService.GetPayment(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Payment record", "fetching payment")
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err, "Payment", "creating payment")
		return
	}

	payment, err := h.paymentService.CreatePayment(r.Context(), req.input())
	if errors.Is(err, service.ErrNotFound) {
		h.writeError(w, r, err, "Subscription", "creating payment")
		return
	}
	if err != nil {
		h.writeError(w, r, err, "Payment for this due date", "creating payment")
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (h *Handler) GeneratePayments(w http.ResponseWriter, r *http.Request) {
	result, err := h.paymentService.Generate(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Payment", "generating payments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Payment generation complete",
		"generated": result.Created,
		"failed":    result.Failed,
	})
}

func (h *Handler) UpdatePaymentAmount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err, "Payment record", "updating payment amount")
		return
	}

	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err, "Payment record", "updating payment amount")
		return
	}
	if req.AmountDue == nil {
		h.writeError(w, r, service.Invalid("amount_due", "is required"), "Payment record", "updating payment amount")
		return
	}

	payment, err := h.paymentService.SetAmount(r.Context(), id, *req.AmountDue)
	if err != nil {
		h.writeError(w, r, err, "Payment record", "updating payment amount")
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) UpdatePaymentPaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err, "Payment record", "updating payment status")
		return
	}

	var req paidRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err, "Payment record", "updating payment status")
		return
	}
	if req.IsPaid == nil {
		h.writeError(w, r, service.Invalid("is_paid", "status is required"), "Payment record", "updating payment status")
		return
	}

	payment, err := h.paymentService.SetPaid(r.Context(), id, *req.IsPaid)
	if err != nil {
		h.writeError(w, r, err, "Payment record", "updating payment status")
		return
	}
	writeJSON(w, http.StatusOK, payment)
}
