package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, errorBody(message), logger)
}

// writeResponse copies a dispatched response onto w.
func writeResponse(w http.ResponseWriter, resp Response, logger *slog.Logger) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)

	if resp.Body == "" {
		return
	}
	if _, err := io.WriteString(w, resp.Body); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}
