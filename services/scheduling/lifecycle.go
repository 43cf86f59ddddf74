package scheduling

import (
	"fmt"
	"time"

	"lexbook/models"
)

// Policy carries the scheduling rules every create and time-changing update
// is validated against. Business-hour boundaries are minutes from midnight
// in the canonical timezone.
type Policy struct {
	BusinessOpenMin  int
	BusinessCloseMin int
	SlotStepMin      int
	MinLeadTimeMin   int
	MaxDurationMin   int
	Location         *time.Location
}

// transitions is the appointment state machine. Terminal statuses have no
// outgoing edges.
var transitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusScheduled:  {models.StatusConfirmed, models.StatusInProgress, models.StatusCompleted, models.StatusCancelled, models.StatusNoShow},
	models.StatusConfirmed:  {models.StatusInProgress, models.StatusCompleted, models.StatusCancelled, models.StatusNoShow},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to models.AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// validateInterval enforces the static time rules: positive duration capped
// at the policy maximum and, at creation only, a strictly-future start.
func validateInterval(start, end, now time.Time, creating bool, p Policy) *ValidationError {
	if !end.After(start) {
		return &ValidationError{
			Field:   "endTime",
			Rule:    "time_order",
			Message: "endTime must be after startTime",
		}
	}
	maxDur := time.Duration(p.MaxDurationMin) * time.Minute
	if end.Sub(start) > maxDur {
		return &ValidationError{
			Field:   "endTime",
			Rule:    "max_duration",
			Message: fmt.Sprintf("appointment may not exceed %d minutes", p.MaxDurationMin),
		}
	}
	if creating && !start.After(now) {
		return &ValidationError{
			Field:   "startTime",
			Rule:    "future_start",
			Message: "startTime must be in the future",
		}
	}
	return nil
}

// applyTransition mutates the appointment into the target status, filling
// the status-specific fields. Authorization and the terminal check happen
// before this is called; transition legality is checked here.
func applyTransition(appt *models.Appointment, to models.AppointmentStatus, actor string, outcome, reason string, now time.Time) error {
	if appt.Status.Terminal() {
		return &FinalizedStateError{ID: appt.ID, Status: appt.Status}
	}
	if !CanTransition(appt.Status, to) {
		return &ValidationError{
			Field:   "status",
			Rule:    "transition",
			Message: fmt.Sprintf("cannot transition from %s to %s", appt.Status, to),
		}
	}

	switch to {
	case models.StatusCompleted:
		if outcome == "" {
			return &ValidationError{Field: "outcome", Rule: "required", Message: "completing an appointment requires an outcome"}
		}
		appt.Outcome = outcome
		completedAt := now
		appt.CompletedAt = &completedAt
	case models.StatusCancelled:
		if reason == "" {
			return &ValidationError{Field: "reason", Rule: "required", Message: "cancelling an appointment requires a reason"}
		}
		appt.CancelledBy = actor
		cancelledAt := now
		appt.CancelledAt = &cancelledAt
		appt.CancellationReason = reason
	case models.StatusNoShow:
		if now.Before(appt.StartTime) {
			return &ValidationError{Field: "status", Rule: "no_show_too_early", Message: "cannot mark no-show before the appointment start time"}
		}
	}

	appt.Status = to
	return nil
}
