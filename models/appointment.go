package models

import "time"

// AppointmentType classifies what the meeting is for.
type AppointmentType string

const (
	TypeConsultation     AppointmentType = "consultation"
	TypeFollowUp         AppointmentType = "follow_up"
	TypeCourtPreparation AppointmentType = "court_preparation"
	TypeDocumentReview   AppointmentType = "document_review"
	TypeMediation        AppointmentType = "mediation"
	TypeOther            AppointmentType = "other"
)

// ValidAppointmentType reports whether t is a known appointment type.
func ValidAppointmentType(t AppointmentType) bool {
	switch t {
	case TypeConsultation, TypeFollowUp, TypeCourtPreparation, TypeDocumentReview, TypeMediation, TypeOther:
		return true
	}
	return false
}

// AppointmentPriority is informational only; it never affects slot math.
type AppointmentPriority string

const (
	PriorityLow    AppointmentPriority = "low"
	PriorityMedium AppointmentPriority = "medium"
	PriorityHigh   AppointmentPriority = "high"
	PriorityUrgent AppointmentPriority = "urgent"
)

// ValidAppointmentPriority reports whether p is a known priority.
func ValidAppointmentPriority(p AppointmentPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// AppointmentStatus drives the lifecycle state machine.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

// Terminal reports whether s permits no further transitions.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// LocationKind is the discriminator of the location variant.
type LocationKind string

const (
	LocationOffice         LocationKind = "office"
	LocationVirtual        LocationKind = "virtual"
	LocationCourt          LocationKind = "court"
	LocationClientLocation LocationKind = "client_location"
	LocationOther          LocationKind = "other"
)

// Location describes where the appointment takes place.
// MeetingLink is set for virtual meetings; Address for client_location and other.
type Location struct {
	Kind         LocationKind `bson:"kind" json:"kind"`
	MeetingLink  string       `bson:"meetingLink,omitempty" json:"meetingLink,omitempty"`
	Address      string       `bson:"address,omitempty" json:"address,omitempty"`
	Instructions string       `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

// ValidLocationKind reports whether k is a known location kind.
func ValidLocationKind(k LocationKind) bool {
	switch k {
	case LocationOffice, LocationVirtual, LocationCourt, LocationClientLocation, LocationOther:
		return true
	}
	return false
}

// ReminderSettings is carried on the appointment for the notification
// subsystem; the scheduling core never interprets it.
type ReminderSettings struct {
	Enabled   bool     `bson:"enabled" json:"enabled"`
	Intervals []int    `bson:"intervals,omitempty" json:"intervals,omitempty"` // minutes before start, ascending
	Methods   []string `bson:"methods,omitempty" json:"methods,omitempty"`     // e.g. "push", "email", "sms"
}

// Appointment is the central calendar record.
type Appointment struct {
	ID             string              `bson:"id" json:"id"`
	Title          string              `bson:"title" json:"title"`
	Description    string              `bson:"description,omitempty" json:"description,omitempty"`
	ClientID       string              `bson:"clientId" json:"clientId"`
	ProfessionalID string              `bson:"professionalId" json:"professionalId"`
	CaseID         string              `bson:"caseId,omitempty" json:"caseId,omitempty"`
	StartTime      time.Time           `bson:"startTime" json:"startTime"`
	EndTime        time.Time           `bson:"endTime" json:"endTime"`
	Type           AppointmentType     `bson:"type" json:"type"`
	Priority       AppointmentPriority `bson:"priority" json:"priority"`
	Location       Location            `bson:"location" json:"location"`
	Status         AppointmentStatus   `bson:"status" json:"status"`
	BookedBy       string              `bson:"bookedBy" json:"bookedBy"`

	CancelledBy        string     `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancellationReason string     `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`

	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Outcome     string     `bson:"outcome,omitempty" json:"outcome,omitempty"`

	ReminderSettings ReminderSettings `bson:"reminderSettings" json:"reminderSettings"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Duration returns the appointment length.
func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// Summary returns the compact view used in conflict payloads.
func (a *Appointment) Summary() AppointmentSummary {
	return AppointmentSummary{
		ID:        a.ID,
		Title:     a.Title,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Status:    a.Status,
	}
}

// AppointmentSummary is what a caller sees when their requested interval
// collides with an existing booking.
type AppointmentSummary struct {
	ID        string            `bson:"id" json:"id"`
	Title     string            `bson:"title" json:"title"`
	StartTime time.Time         `bson:"startTime" json:"startTime"`
	EndTime   time.Time         `bson:"endTime" json:"endTime"`
	Status    AppointmentStatus `bson:"status" json:"status"`
}

// Slot is an open interval of the requested duration within business hours.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
