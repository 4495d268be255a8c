package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"token-ledger-go/internal/store"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("Failed to encode response", zap.Error(err))
	}
}

func writeMessage(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeError maps a ledger error onto its status code. Unclassified errors
// are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeMessage(w, status, "internal error", code)
		return
	}
	if status == http.StatusServiceUnavailable {
		zap.L().Warn("Request aborted by storage contention",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeMessage(w, status, "temporarily unavailable, retry later", code)
		return
	}
	writeMessage(w, status, err.Error(), code)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, store.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient_funds"
	case errors.Is(err, store.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "invalid_amount"
	case errors.Is(err, store.ErrAlreadyClaimed):
		return http.StatusTooManyRequests, "already_claimed"
	case store.IsRetryable(err):
		return http.StatusServiceUnavailable, "transient"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
