package scheduling

import (
	"context"
	"time"

	"lexbook/models"
)

// CreateRequest is a booking request; lifecycle fields are owned by the core.
type CreateRequest struct {
	Title            string                     `json:"title"`
	Description      string                     `json:"description"`
	ClientID         string                     `json:"clientId"`
	ProfessionalID   string                     `json:"professionalId"`
	CaseID           string                     `json:"caseId"`
	StartTime        time.Time                  `json:"startTime"`
	EndTime          time.Time                  `json:"endTime"`
	Type             models.AppointmentType     `json:"type"`
	Priority         models.AppointmentPriority `json:"priority"`
	Location         models.Location            `json:"location"`
	ReminderSettings models.ReminderSettings    `json:"reminderSettings"`
}

// UpdateRequest carries a partial update; nil pointers leave fields alone.
// Setting Status requests a lifecycle transition; Outcome and Reason feed
// the completed / cancelled transitions.
type UpdateRequest struct {
	Title            *string                     `json:"title"`
	Description      *string                     `json:"description"`
	Priority         *models.AppointmentPriority `json:"priority"`
	Location         *models.Location            `json:"location"`
	ReminderSettings *models.ReminderSettings    `json:"reminderSettings"`
	StartTime        *time.Time                  `json:"startTime"`
	EndTime          *time.Time                  `json:"endTime"`
	Status           *models.AppointmentStatus   `json:"status"`
	Outcome          string                      `json:"outcome"`
	Reason           string                      `json:"reason"`
}

// ListQuery is the caller-supplied portion of a listing; the access filter
// adds the identity scoping before it reaches the store.
type ListQuery struct {
	Status    models.AppointmentStatus
	Type      models.AppointmentType
	Search    string
	StartDate time.Time
	EndDate   time.Time
}

// Locker serializes the booking write path per professional. The production
// implementation is a redis SETNX lock; tests use an in-process keyed mutex.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// ReminderScheduler hands a finalized appointment to the external
// notification subsystem. The core never interprets reminderSettings.
type ReminderScheduler interface {
	ScheduleReminders(ctx context.Context, appt *models.Appointment) error
}

// SchedulingService is the appointment scheduling core: availability,
// conflict-safe booking, lifecycle transitions and role-scoped access.
type SchedulingService interface {
	ComputeAvailability(ctx context.Context, professionalID, date string, durationMinutes int) ([]models.Slot, error)
	CreateAppointment(ctx context.Context, caller Caller, req CreateRequest) (*models.Appointment, error)
	GetAppointment(ctx context.Context, caller Caller, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, caller Caller, q ListQuery) ([]models.Appointment, error)
	UpdateAppointment(ctx context.Context, caller Caller, id string, req UpdateRequest) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, caller Caller, id, reason string) (*models.Appointment, error)
}
