package scheduling

import (
	"fmt"

	"lexbook/models"
)

// ValidationError reports a violated business rule on input data.
// Rule names the violated rule ("time_order", "max_duration", "future_start",
// "transition", ...); Field points at the offending input when there is one.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s (%s): %s", e.Field, e.Rule, e.Message)
	}
	return fmt.Sprintf("validation failed (%s): %s", e.Rule, e.Message)
}

// ConflictError carries the overlapping appointments so the caller can offer
// alternative slots.
type ConflictError struct {
	Conflicts []models.AppointmentSummary
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("requested time conflicts with %d existing appointment(s)", len(e.Conflicts))
}

// NotFoundError covers unknown ids and records hidden from the caller's scope.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// AuthorizationError means the record exists but the caller's role may not
// perform the operation on it.
type AuthorizationError struct {
	Operation Operation
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("caller is not allowed to %s this appointment", e.Operation)
}

// FinalizedStateError is returned for any transition attempt on an
// appointment already in a terminal status.
type FinalizedStateError struct {
	ID     string
	Status models.AppointmentStatus
}

func (e *FinalizedStateError) Error() string {
	return fmt.Sprintf("appointment %s is already finalized (%s)", e.ID, e.Status)
}
