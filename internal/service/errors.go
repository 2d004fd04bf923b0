package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidPayload is returned when the request body is not a JSON document.
	ErrInvalidPayload = errors.New("request body must be valid JSON")
	// ErrStorage wraps any failure of the backing reading or settings store.
	ErrStorage = errors.New("storage error")
)

// ValidationError lists every field that failed validation, not just the first.
// FormErrors holds problems that are not tied to a single field.
type ValidationError struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func newValidationError() *ValidationError {
	return &ValidationError{
		FormErrors:  []string{},
		FieldErrors: map[string][]string{},
	}
}

func (e *ValidationError) addForm(msg string) {
	e.FormErrors = append(e.FormErrors, msg)
}

func (e *ValidationError) addField(field, msg string) {
	e.FieldErrors[field] = append(e.FieldErrors[field], msg)
}

func (e *ValidationError) hasField(field string) bool {
	_, ok := e.FieldErrors[field]
	return ok
}

func (e *ValidationError) empty() bool {
	return len(e.FormErrors) == 0 && len(e.FieldErrors) == 0
}

// Fields returns the failing field paths in sorted order.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (e *ValidationError) Error() string {
	parts := append([]string{}, e.FormErrors...)
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+strings.Join(e.FieldErrors[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ErrInvalidTimeRange is returned when a history query has start after end.
var ErrInvalidTimeRange = errors.New("invalid time range: start must be <= end")
