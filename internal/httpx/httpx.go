// Package httpx holds the JSON response helpers shared by the handlers.
package httpx

import (
	"encoding/json"
	"io"
	"net/http"
)

// MaxBody caps request bodies.
const MaxBody = 64 << 10

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

func OK(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Decode reads one JSON value from a size-limited body.
func Decode(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, MaxBody)).Decode(v)
}
