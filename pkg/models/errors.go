package models

import (
	"errors"
	"fmt"
)

// ErrInfeasible is returned when no assignment satisfies the hard constraints
// for a requested placement. The caller's schedule is left unchanged.
var ErrInfeasible = errors.New("infeasible")

// InputError rejects malformed roster or request data before solving starts
type InputError struct {
	Record string `json:"record"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

func (e *InputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s (%s): %s", e.Record, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Record, e.Reason)
}

// NewInputError is a shorthand constructor
func NewInputError(record, field, reason string, args ...any) *InputError {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &InputError{Record: record, Field: field, Reason: reason}
}
