package notification

import (
	"context"
	"fmt"
	"time"

	"lexbook/models"
	"lexbook/services/tasks"
	"lexbook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqReminderScheduler turns an appointment's reminder settings into
// delayed asynq tasks, one per configured offset per participant, plus an
// immediate booking notice. The worker in cron/ consumes them.
type AsynqReminderScheduler struct {
	Client *asynq.Client
	Loc    *time.Location
}

func NewAsynqReminderScheduler(client *asynq.Client, loc *time.Location) *AsynqReminderScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &AsynqReminderScheduler{Client: client, Loc: loc}
}

func (s *AsynqReminderScheduler) ScheduleReminders(ctx context.Context, appt *models.Appointment) error {
	logger := utils.GetLogger()
	startLocal := appt.StartTime.In(s.Loc)

	type target struct {
		kind string
		id   string
	}
	targets := []target{
		{kind: "client", id: appt.ClientID},
		{kind: "professional", id: appt.ProfessionalID},
	}

	// Immediate booking notice.
	for _, t := range targets {
		payload := models.ReminderPayload{
			AppointmentID: appt.ID,
			Target:        t.kind,
			TargetID:      t.id,
			Title:         "Appointment booked",
			Body:          fmt.Sprintf("%s on %s", appt.Title, startLocal.Format("Mon Jan 2 at 15:04")),
			FireDate:      time.Now().Format(time.RFC3339),
			Methods:       appt.ReminderSettings.Methods,
		}
		if err := s.enqueue(ctx, payload, time.Now()); err != nil {
			return err
		}
	}

	now := time.Now()
	for _, offset := range appt.ReminderSettings.Intervals {
		fireAt := appt.StartTime.Add(-time.Duration(offset) * time.Minute)
		if !fireAt.After(now) {
			// Offsets already in the past are dropped, not backdated.
			continue
		}
		for _, t := range targets {
			payload := models.ReminderPayload{
				AppointmentID: appt.ID,
				Target:        t.kind,
				TargetID:      t.id,
				Title:         "Upcoming appointment",
				Body:          fmt.Sprintf("%s starts at %s", appt.Title, startLocal.Format("15:04")),
				FireDate:      fireAt.Format(time.RFC3339),
				Methods:       appt.ReminderSettings.Methods,
			}
			if err := s.enqueue(ctx, payload, fireAt); err != nil {
				return err
			}
		}
	}

	logger.Debug("reminders scheduled",
		zap.String("appointmentId", appt.ID),
		zap.Int("intervals", len(appt.ReminderSettings.Intervals)))
	return nil
}

func (s *AsynqReminderScheduler) enqueue(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	task, opts, err := tasks.NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder task: %w", err)
	}
	return nil
}
