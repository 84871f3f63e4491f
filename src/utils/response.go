package utils

import (
	"encoding/json"
	"net/http"

	"github.com/username/nepsefolio/backend/src/logger"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.L.Error("Failed to encode JSON response", "error", err)
	}
}

func SendJSON(w http.ResponseWriter, data any, status int) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func SendJSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, Envelope{Success: false, Error: message})
}

// SendRawJSON wraps an already encoded JSON document as the data field.
func SendRawJSON(w http.ResponseWriter, raw []byte, status int) {
	writeJSON(w, status, Envelope{Success: true, Data: json.RawMessage(raw)})
}
