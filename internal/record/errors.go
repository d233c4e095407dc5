package record

import (
	"errors"
	"fmt"
)

// Error kinds shared by the store and its callers. Match with errors.Is.
var (
	ErrValidation        = errors.New("invalid record")
	ErrNotFound          = errors.New("record not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrImmutableField    = errors.New("field is immutable")
)

// Validation errors.
var (
	ErrEmptyBody       = fmt.Errorf("%w: body is required", ErrValidation)
	ErrTaskFieldOnNote = fmt.Errorf("%w: due, priority and done only apply to tasks", ErrValidation)
)

// TransitionError describes a rejected status change.
type TransitionError struct {
	ID   int64
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("record %d: cannot move from %s to %s", e.ID, e.From, e.To)
}

// Unwrap lets errors.Is match ErrInvalidTransition.
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NotFound builds an ErrNotFound error for the given id.
func NotFound(id int64) error {
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}
