package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"rp-pay-dashboard/internal/views"
)

// writeJSON sends v with status.
func writeJSON(w http.ResponseWriter, v any, status int, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to write JSON response", "error", err)
	}
}

// writeJSONError is a helper function for sending JSON errors.
func writeJSONError(w http.ResponseWriter, message string, status int, logger *slog.Logger) {
	writeJSON(w, map[string]string{"error": message}, status, logger)
}

type errorBody struct {
	Error string            `json:"error"`
	Kind  views.FailureKind `json:"kind"`
	Field string            `json:"field,omitempty"`
}

// statusFor maps a failure to its HTTP status.
func statusFor(f *views.Failure) int {
	if f == nil {
		return http.StatusOK
	}
	switch f.Kind {
	case views.FailureTransport:
		return http.StatusServiceUnavailable
	case views.FailureNotFound:
		return http.StatusNotFound
	case views.FailureValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// writeError classifies err and sends it as a JSON error.
func writeError(w http.ResponseWriter, err error, logger *slog.Logger) {
	f := views.Classify(err)
	status := statusFor(f)
	if status >= http.StatusInternalServerError {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, errorBody{Error: f.Message, Kind: f.Kind, Field: f.Field}, status, logger)
}

// writeSnapshot sends a screen snapshot with the status its state implies.
func writeSnapshot(w http.ResponseWriter, v any, failure *views.Failure, logger *slog.Logger) {
	writeJSON(w, v, statusFor(failure), logger)
}

// writeSuperseded answers a load that a newer request in the same session
// replaced. The newer request carries the result.
func writeSuperseded(w http.ResponseWriter, logger *slog.Logger) {
	writeJSONError(w, "superseded by a newer request", http.StatusConflict, logger)
}
