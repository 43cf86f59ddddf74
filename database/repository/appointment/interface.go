package appointmentRepo

import (
	"context"
	"time"

	"lexbook/models"
)

// ListFilter narrows List results. Zero values mean "no restriction".
// ClientID / ProfessionalID are set by the access filter, never by callers.
type ListFilter struct {
	ClientID       string
	ProfessionalID string
	Status         models.AppointmentStatus
	Type           models.AppointmentType
	Search         string // case-insensitive match on title/description
	StartDate      time.Time
	EndDate        time.Time
}

// CalendarRepository is the persistent appointment collection for all
// professionals: range queries plus inserts/updates keyed by appointment ID.
// Serialization of the booking write path is owned by the scheduling
// service, which wraps conflict-check + write in a per-professional lock.
type CalendarRepository interface {
	Insert(ctx context.Context, appt *models.Appointment) error
	Update(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]models.Appointment, error)
	// FindOverlapping returns non-cancelled appointments for the professional
	// whose [startTime, endTime) interval overlaps [start, end), excluding
	// excludeID when non-empty.
	FindOverlapping(ctx context.Context, professionalID string, start, end time.Time, excludeID string) ([]models.Appointment, error)
}
