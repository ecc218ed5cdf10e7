package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// Envelope is the {status, message, data} wrapper the finance API uses.
type Envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteStatus writes an Envelope without data.
func WriteStatus(w http.ResponseWriter, code int, ok bool, message string) {
	WriteJSON(w, code, Envelope{Status: ok, Message: message})
}

// WriteData writes a successful Envelope carrying data.
func WriteData(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, Envelope{Status: true, Data: data})
}
