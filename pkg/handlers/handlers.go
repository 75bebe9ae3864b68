// Package handlers provides shared HTTP response helpers for JSON APIs.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as an {"error": "..."} JSON body.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("handler error", "error", err, "status", status)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// RespondErrorMessage logs err and writes msg as the {"error": "..."} body.
// Used where a sentinel error has a separate client-facing message.
func RespondErrorMessage(w http.ResponseWriter, logger *slog.Logger, status int, err error, msg string) {
	logger.Error("handler error", "error", err, "status", status)
	RespondMessage(w, status, msg)
}

// RespondMessage writes a fixed {"error": msg} JSON body without logging.
// Used where the client-facing message differs from the logged cause.
func RespondMessage(w http.ResponseWriter, status int, msg string) {
	RespondJSON(w, status, map[string]string{"error": msg})
}
