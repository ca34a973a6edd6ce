package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"reisekosten/internal/core"
	"reisekosten/internal/routing"
	"reisekosten/internal/services"
	"reisekosten/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, routing.ErrNoRoute):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEndBeforeStart),
		errors.Is(err, core.ErrMissingTrip),
		errors.Is(err, core.ErrUnknownCategory),
		errors.Is(err, core.ErrInvalidDirection),
		errors.Is(err, core.ErrInvalidDistance),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrInvalidAmount):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrStatusTransition):
		status = http.StatusConflict
	case errors.Is(err, services.ErrExportUnavailable),
		errors.Is(err, routing.ErrNoAPIKey),
		errors.Is(err, routing.ErrQuotaExceeded):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "url", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// parseDate accepts YYYY-MM-DD.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// parseDateTime accepts RFC 3339 timestamps.
func parseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: expected RFC 3339", s)
	}
	return t, nil
}
