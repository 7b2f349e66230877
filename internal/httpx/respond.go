// Package httpx carries the JSON response envelope shared by all handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Response is the canonical API envelope.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta carries pagination info for list responses.
type Meta struct {
	Total int64 `json:"total"`
	Page  int32 `json:"page"`
	Limit int32 `json:"limit"`
}

// WriteJSON writes a success envelope with the given payload.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Response{Success: true, Data: data})
}

// WriteList writes a success envelope with pagination metadata.
func WriteList(w http.ResponseWriter, status int, data interface{}, meta Meta) {
	write(w, status, Response{Success: true, Data: data, Meta: &meta})
}

// WriteMessage writes a success envelope carrying only a message.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	write(w, status, Response{Success: true, Message: message})
}

// WriteError writes a failure envelope with a human-readable message.
func WriteError(w http.ResponseWriter, status int, message string) {
	write(w, status, Response{Success: false, Message: message})
}

func write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
