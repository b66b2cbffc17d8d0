package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/apperr"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, map[string]string{"error": message}, logger)
}

// writeServiceError maps a service error to its response. Errors without a
// classification are treated as internal.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Wrap(apperr.KindInternal, err, "unexpected error")
	}

	status := appErr.Status()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "kind", appErr.Kind.String(), "error", err)
	} else {
		logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "kind", appErr.Kind.String(), "error", err)
	}

	WriteError(w, status, appErr.ClientMessage(), logger)
}

// decodeJSON reads the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, logger *slog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Warn("failed to decode request body", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", logger)
		return false
	}
	return true
}

// pathID reads a document ID from the URL, answering 400 when it is not a
// UUID.
func pathID(w http.ResponseWriter, r *http.Request, param string, logger *slog.Logger) (string, bool) {
	id := chi.URLParam(r, param)
	if _, err := uuid.Parse(id); err != nil {
		logger.Warn("invalid ID format", param, id)
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", logger)
		return "", false
	}
	return id, true
}
