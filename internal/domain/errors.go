package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the requested resource does not exist,
// either locally or at the platform API.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. end date before start date, missing required field).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUpstream is returned when the platform API cannot be reached or
// responds with something other than a well-formed success or validation
// body. Handlers should map this to HTTP 502.
var ErrUpstream = errors.New("upstream error")

// FieldErrors carries field-by-field validation messages from the platform
// API's error body, so forms can map each message back onto its input.
// The map key is the field name as the API names it (e.g. "email").
type FieldErrors map[string][]string

// Error implements the error interface. It renders a compact summary of
// all field messages, sorted order not guaranteed.
func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation failed"
	}
	var parts []string
	for field, msgs := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	return strings.Join(parts, ", ")
}

// Is makes errors.Is(err, ErrValidation) true for FieldErrors, so handlers
// can treat field-mapped and plain validation failures uniformly.
func (fe FieldErrors) Is(target error) bool {
	return target == ErrValidation
}
