package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"subscription-tracker/internal/service"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the service error taxonomy onto HTTP statuses. Store
// failures are logged and answered with a generic message naming action.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, resource, action string) {
	var validation *service.ValidationError
	var validations service.ValidationErrors

	switch {
	case errors.As(err, &validations):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": validations.Error(), "fields": fieldMessages(validations)})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": validation.Error(), "fields": fieldMessages(service.ValidationErrors{validation})})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": resource + " not found"})
	case errors.Is(err, service.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": resource + " already exists"})
	default:
		h.log.Error("request failed",
			zap.String("action", action),
			zap.String("request_id", requestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error " + action})
	}
}

func fieldMessages(errs service.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		fields[e.Field] = e.Message
	}
	return fields
}
