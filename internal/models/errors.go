package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors. Handlers map these to HTTP statuses; everything else
// collapses to a generic 500.
var (
	ErrEventNotFound         = errors.New("event not found")
	ErrAttendeeNotFound      = errors.New("attendee not found")
	ErrEventFull             = errors.New("event is fully booked")
	ErrDuplicateRegistration = errors.New("email already registered for this event")
	ErrServiceUnavailable    = errors.New("service temporarily unavailable")
)

// ValidationError carries field-level messages for malformed input. It is
// always produced before any storage access.
type ValidationError struct {
	Fields map[string]string
}

func (ve *ValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "invalid input"
	}
	keys := make([]string, 0, len(ve.Fields))
	for k := range ve.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, ve.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}
