package http

import (
	"encoding/json"
	"net/http"
)

// SuccessResponse wraps a mutation result with a human message.
type SuccessResponse struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ListResponse is an unpaginated list plus the filters that produced it.
type ListResponse[T any] struct {
	Data   []T               `json:"data"`
	Count  int               `json:"count"`
	Filter map[string]string `json:"filter,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// the header is already sent, nothing useful to do on encode failure
	_ = json.NewEncoder(w).Encode(v)
}

func WriteSuccess(w http.ResponseWriter, data any, message string) {
	WriteJSON(w, http.StatusOK, SuccessResponse{Data: data, Message: message})
}

func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WriteList writes data, never as null, with any applied filters echoed.
func WriteList[T any](w http.ResponseWriter, data []T, filter map[string]string) {
	if data == nil {
		data = []T{}
	}
	WriteJSON(w, http.StatusOK, ListResponse[T]{Data: data, Count: len(data), Filter: filter})
}
