package dispatch

import (
	"fmt"

	"busstation-backend/internal/model"
)

// ValidationError reports a malformed or missing input field.
// The record is left untouched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// TransitionError reports a status change outside the workflow graph.
type TransitionError struct {
	From model.DispatchStatus
	To   model.DispatchStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move dispatch record from %s to %s", e.From, e.To)
}

// NotFoundError reports a missing dispatch record or source entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError reports that the record changed between read and write.
// The caller may reload and retry.
type ConflictError struct {
	ID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("dispatch record %s was modified concurrently", e.ID)
}
