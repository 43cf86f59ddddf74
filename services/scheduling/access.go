package scheduling

import (
	appointmentRepo "lexbook/database/repository/appointment"
	"lexbook/models"
)

// Role is the closed set of caller roles known to the scheduling core.
type Role string

const (
	RoleClient       Role = "client"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// ParseRole maps a directory role string onto the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleClient, RoleProfessional, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Caller identifies who is making a request.
type Caller struct {
	ID   string
	Role Role
}

// Operation names an action on an appointment.
type Operation string

const (
	OpCreate     Operation = "create"
	OpView       Operation = "view"
	OpUpdate     Operation = "update"
	OpCancel     Operation = "cancel"
	OpConfirm    Operation = "confirm"
	OpStart      Operation = "start"
	OpComplete   Operation = "complete"
	OpMarkNoShow Operation = "mark_no_show"
)

// professionalJudgment lists operations reserved for the appointment's
// professional (or an admin): they assert professional judgment about how
// the meeting went, not mere participation.
var professionalJudgment = map[Operation]bool{
	OpConfirm:    true,
	OpStart:      true,
	OpComplete:   true,
	OpMarkNoShow: true,
}

// operationForTransition maps a requested target status onto the operation
// that authorizes it.
func operationForTransition(to models.AppointmentStatus) Operation {
	switch to {
	case models.StatusConfirmed:
		return OpConfirm
	case models.StatusInProgress:
		return OpStart
	case models.StatusCompleted:
		return OpComplete
	case models.StatusCancelled:
		return OpCancel
	case models.StatusNoShow:
		return OpMarkNoShow
	}
	return OpUpdate
}

// Visible reports whether the caller may see the appointment at all.
// Invisible records are presented as absent, never as forbidden, so a
// caller cannot probe for existence.
func Visible(caller Caller, appt *models.Appointment) bool {
	if caller.Role == RoleAdmin {
		return true
	}
	return caller.ID == appt.ClientID || caller.ID == appt.ProfessionalID
}

// Authorize decides whether the caller may perform op on the appointment.
func Authorize(caller Caller, appt *models.Appointment, op Operation) error {
	if caller.Role == RoleAdmin {
		return nil
	}
	if caller.ID != appt.ClientID && caller.ID != appt.ProfessionalID {
		return &AuthorizationError{Operation: op}
	}
	if professionalJudgment[op] {
		if caller.Role != RoleProfessional || caller.ID != appt.ProfessionalID {
			return &AuthorizationError{Operation: op}
		}
	}
	return nil
}

// ScopeFilter restricts a list filter to what the caller may see: clients
// to their own bookings, professionals to their own calendar, admins
// unrestricted.
func ScopeFilter(caller Caller, f appointmentRepo.ListFilter) appointmentRepo.ListFilter {
	switch caller.Role {
	case RoleClient:
		f.ClientID = caller.ID
	case RoleProfessional:
		f.ProfessionalID = caller.ID
	case RoleAdmin:
		// unrestricted
	}
	return f
}
