package web

import (
	"net/http"
	"time"

	"subscription-tracker/internal/metrics"

	"go.uber.org/zap"
)

// NewRouter registers the API on a ServeMux and wraps it in the request
// middleware chain.
func NewRouter(h *Handler, m *metrics.Metrics, log *zap.Logger, requestTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Subscription Tracker API is running!"))
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.Handle("GET /metrics", m.Handler())

	mux.HandleFunc("POST /api/subscriptions", h.CreateSubscription)
	mux.HandleFunc("GET /api/subscriptions", h.ListSubscriptions)
	mux.HandleFunc("GET /api/subscriptions/{id}", h.GetSubscription)
	mux.HandleFunc("GET /api/subscriptions/{id}/payments", h.ListSubscriptionPayments)
	mux.HandleFunc("PUT /api/subscriptions/{id}", h.UpdateSubscription)
	mux.HandleFunc("DELETE /api/subscriptions/{id}", h.DeleteSubscription)

	mux.HandleFunc("GET /api/payments/month/{year}/{month}", h.ListMonthPayments)
	mux.HandleFunc("GET /api/payments/month/{year}/{month}/summary", h.MonthSummary)
	mux.HandleFunc("GET /api/payments/month/{year}/{month}/export", h.ExportMonth)
	mux.HandleFunc("GET /api/payments/{id}", h.GetPayment)
	mux.HandleFunc("POST /api/payments", h.CreatePayment)
	mux.HandleFunc("POST /api/payments/generate", h.GeneratePayments)
	mux.HandleFunc("PUT /api/payments/{id}/amount", h.UpdatePaymentAmount)
	mux.HandleFunc("PUT /api/payments/{id}/paid", h.UpdatePaymentPaid)

	// withMetrics must see the same *http.Request the mux routes.
	handler := withMetrics(mux, m)
	handler = withTimeout(handler, requestTimeout)
	handler = withLogging(handler, log.Named("http"))
	handler = withRequestID(handler)
	handler = withRecover(handler, log)
	return handler
}
