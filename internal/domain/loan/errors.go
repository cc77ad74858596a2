package loan

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("loan not found")
	ErrEntryNotFound      = errors.New("schedule entry not found")
	ErrInvalidTransition  = errors.New("invalid loan status transition")
	ErrIncompleteSchedule = errors.New("loan has unpaid schedule entries")
	ErrAlreadyPaid        = errors.New("schedule entry already settled")
	ErrAmountMismatch     = errors.New("payment amount must match the scheduled installment")
)

// ValidationError rejects malformed input before any write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

// Invalid builds a field-level validation error.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
