package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// problem is the body of every non-2xx JSON response.
type problem struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
	Path   string `json:"path,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, path, msg string) {
	writeJSON(w, status, problem{Status: status, Error: msg, Path: path})
}
