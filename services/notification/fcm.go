package notification

import (
	"context"
	"fmt"

	directoryRepo "lexbook/database/repository/directory"
	"lexbook/utils"

	"firebase.google.com/go/v4/messaging"
)

// DefaultNotificationService sends FCM pushes, resolving the target's token
// through the user directory.
type DefaultNotificationService struct {
	Directory directoryRepo.UserDirectory
}

func NewDefaultNotificationService(dir directoryRepo.UserDirectory) (*DefaultNotificationService, error) {
	if dir == nil {
		return nil, fmt.Errorf("notification service initialization error: user directory is nil")
	}
	return &DefaultNotificationService{Directory: dir}, nil
}

// SendPushNotification looks up the user's FCM token and sends a push.
func (s *DefaultNotificationService) SendPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error {
	usr, err := s.Directory.ResolveUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("SendPushNotification: could not find user %s: %w", userID, err)
	}
	if usr.FCMToken == "" {
		return fmt.Errorf("SendPushNotification: user %s has no FCM token", userID)
	}

	msg := &messaging.Message{
		Token: usr.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendPushNotification: failed to send FCM message: %w", err)
	}
	return nil
}
