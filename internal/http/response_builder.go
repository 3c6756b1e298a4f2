// Package http serves the ledger over a JSON API.
//
// This file holds the response helpers: every handler writes through
// writeJSON or writeError so status codes and error bodies stay uniform.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string         `json:"error"`
	Kind  core.ErrorKind `json:"kind"`
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(kind core.ErrorKind) int {
	switch kind {
	case core.ErrorKindValidation, core.ErrorKindReference:
		return http.StatusBadRequest
	case core.ErrorKindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Default(log.ComponentHTTP).Error("Failed to encode response", log.FieldError, err)
	}
}

// writeError renders err with the status its kind maps to. Storage and
// internal failures are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.KindOf(err)
	status := statusFor(kind)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorBody{Error: msg, Kind: kind})
}

// badRequest reports a malformed request before it reaches the core.
func badRequest(w http.ResponseWriter, r *http.Request, field string, err error) {
	writeError(w, r, core.NewValidationError(field, err))
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

var errMalformedBody = errors.New("request body is not valid JSON")
