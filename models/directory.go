package models

// DirectoryUser is the slice of the external user directory the scheduling
// core needs: identity, role, and enough to address notifications.
type DirectoryUser struct {
	ID       string `bson:"id" json:"id"`
	Role     string `bson:"role" json:"role"` // "client", "professional" or "admin"
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
	FCMToken string `bson:"fcmToken,omitempty" json:"-"`
}

// CaseRecord is the display slice of an external case; the core never uses
// it for scheduling decisions.
type CaseRecord struct {
	ID    string `bson:"id" json:"id"`
	Title string `bson:"title" json:"title"`
}

// ReminderPayload is the asynq task body for a scheduled reminder push.
type ReminderPayload struct {
	AppointmentID string   `json:"appointmentId"`
	Target        string   `json:"target"` // "client" or "professional"
	TargetID      string   `json:"targetId"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	FireDate      string   `json:"fireDate"`
	Methods       []string `json:"methods,omitempty"`
}
