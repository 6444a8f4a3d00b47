package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"venturevet/internal/validate"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes a generic error body. Detail stays server-side.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"error": message})
}

// respondValidationError writes field-level validation messages with a 400
// when err is a validation error; returns false otherwise.
func respondValidationError(w http.ResponseWriter, err error) bool {
	var verrs validate.Errors
	if !errors.As(err, &verrs) {
		return false
	}
	respondJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": verrs.Fields(),
	})
	return true
}

// decodeJSON parses the request body into v, limiting the body size to keep
// hostile payloads bounded.
func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
