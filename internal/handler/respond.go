package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeInternalError logs err and answers with a body that leaks nothing.
func writeInternalError(w http.ResponseWriter, r *http.Request, msg string, err error, attrs ...any) {
	attrs = append([]any{"error", err, "method", r.Method, "path", r.URL.Path}, attrs...)
	slog.Error(msg, attrs...)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
