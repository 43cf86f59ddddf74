package notification

import "context"

// NotificationService sends pushes to directory users. It is the external
// collaborator that consumes appointment reminder settings; the scheduling
// core only hands records over.
type NotificationService interface {
	SendPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
}
