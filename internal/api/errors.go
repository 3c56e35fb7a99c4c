package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is the failure envelope.
type Error struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeNotFound           = "not_found"
	ErrCodeInvalidValue       = "invalid_value"
	ErrCodeOutOfRange         = "out_of_range"
	ErrCodeInvalidChoice      = "invalid_choice"
	ErrCodeUnavailable        = "unavailable"
	ErrCodeInternal           = "internal_error"
)

// errNotObject is returned when a request body is not a JSON object.
var errNotObject = errors.New("request body must be a JSON object")

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeOK writes {"success": true} merged with fields.
func writeOK(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Success: false, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeUnauthorized, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// decodeObject reads the body as a JSON object. Numbers decode as float64.
func decodeObject(r *http.Request) (map[string]any, error) {
	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %w", errNotObject, err)
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// stringField returns body[key] when it is a string.
func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string) //nolint:errcheck // non-strings read as empty
	return s
}
