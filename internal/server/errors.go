package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chasedovey/tokencounter/internal/domain"
)

// errorResponse is the JSON error envelope for all failed requests.
type errorResponse struct {
	Error *domain.APIError `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps err to its HTTP status and writes the JSON error
// envelope. Unexpected errors become a generic 500 so internals never
// leak to the client.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		apiErr = domain.ErrServer("internal server error")
	}
	WriteJSON(w, apiErr.HTTPStatusCode(), errorResponse{Error: apiErr})
}
