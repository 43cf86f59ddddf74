package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"lexbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consultationRequest() CreateRequest {
	return CreateRequest{
		Title:          "Initial consultation",
		Description:    "First meeting on the property dispute",
		ClientID:       "client-1",
		ProfessionalID: "pro-1",
		StartTime:      at("2025-06-10", 9, 0),
		EndTime:        at("2025-06-10", 10, 0),
	}
}

func TestCreateAppointment(t *testing.T) {
	ctx := context.Background()
	svc, repo, reminders := newTestService()
	client := Caller{ID: "client-1", Role: RoleClient}

	appt, err := svc.CreateAppointment(ctx, client, consultationRequest())
	require.NoError(t, err)
	require.NotEmpty(t, appt.ID)

	assert.Equal(t, models.StatusScheduled, appt.Status)
	assert.Equal(t, "client-1", appt.BookedBy)
	assert.Equal(t, models.TypeOther, appt.Type)
	assert.Equal(t, models.PriorityMedium, appt.Priority)
	assert.Equal(t, models.LocationOffice, appt.Location.Kind)

	stored, err := repo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartTime.Equal(at("2025-06-10", 9, 0)))

	// Reminders default to disabled, so nothing was scheduled.
	assert.Equal(t, 0, reminders.callCount())
}

func TestCreateAppointmentValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	client := Caller{ID: "client-1", Role: RoleClient}
	var verr *ValidationError

	t.Run("missing title", func(t *testing.T) {
		req := consultationRequest()
		req.Title = ""
		_, err := svc.CreateAppointment(ctx, client, req)
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "title", verr.Field)
	})

	t.Run("unknown type", func(t *testing.T) {
		req := consultationRequest()
		req.Type = "webinar"
		_, err := svc.CreateAppointment(ctx, client, req)
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "type", verr.Field)
	})

	t.Run("end before start", func(t *testing.T) {
		req := consultationRequest()
		req.EndTime = req.StartTime.Add(-time.Hour)
		_, err := svc.CreateAppointment(ctx, client, req)
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "time_order", verr.Rule)
	})

	t.Run("too long", func(t *testing.T) {
		req := consultationRequest()
		req.EndTime = req.StartTime.Add(5 * time.Hour)
		_, err := svc.CreateAppointment(ctx, client, req)
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "max_duration", verr.Rule)
	})

	t.Run("past start", func(t *testing.T) {
		req := consultationRequest()
		req.StartTime = testNow.Add(-2 * time.Hour)
		req.EndTime = testNow.Add(-time.Hour)
		_, err := svc.CreateAppointment(ctx, client, req)
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "future_start", verr.Rule)
	})
}

func TestCreateAppointmentCallerScope(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	var aerr *AuthorizationError

	t.Run("client may not book for another client", func(t *testing.T) {
		_, err := svc.CreateAppointment(ctx, Caller{ID: "client-2", Role: RoleClient}, consultationRequest())
		require.ErrorAs(t, err, &aerr)
	})

	t.Run("professional may not book another calendar", func(t *testing.T) {
		_, err := svc.CreateAppointment(ctx, Caller{ID: "pro-2", Role: RoleProfessional}, consultationRequest())
		require.ErrorAs(t, err, &aerr)
	})

	t.Run("professional books own calendar", func(t *testing.T) {
		_, err := svc.CreateAppointment(ctx, Caller{ID: "pro-1", Role: RoleProfessional}, consultationRequest())
		require.NoError(t, err)
	})

	t.Run("admin books on behalf of anyone", func(t *testing.T) {
		req := consultationRequest()
		req.StartTime = at("2025-06-10", 11, 0)
		req.EndTime = at("2025-06-10", 12, 0)
		_, err := svc.CreateAppointment(ctx, Caller{ID: "admin-1", Role: RoleAdmin}, req)
		require.NoError(t, err)
	})
}

func TestCreateAppointmentUnknownParticipants(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	admin := Caller{ID: "admin-1", Role: RoleAdmin}
	var nferr *NotFoundError

	t.Run("unknown professional", func(t *testing.T) {
		req := consultationRequest()
		req.ProfessionalID = "pro-99"
		_, err := svc.CreateAppointment(ctx, admin, req)
		require.ErrorAs(t, err, &nferr)
		assert.Equal(t, "professional", nferr.Resource)
	})

	t.Run("unknown client", func(t *testing.T) {
		req := consultationRequest()
		req.ClientID = "client-99"
		_, err := svc.CreateAppointment(ctx, admin, req)
		require.ErrorAs(t, err, &nferr)
		assert.Equal(t, "client", nferr.Resource)
	})

	t.Run("client id in the professional slot", func(t *testing.T) {
		req := consultationRequest()
		req.ProfessionalID = "client-2"
		_, err := svc.CreateAppointment(ctx, admin, req)
		require.ErrorAs(t, err, &nferr)
		assert.Equal(t, "professional", nferr.Resource)
	})
}

func TestCreateAppointmentConflict(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	client := Caller{ID: "client-1", Role: RoleClient}

	_, err := svc.CreateAppointment(ctx, client, consultationRequest())
	require.NoError(t, err)

	t.Run("overlapping interval rejected with conflicts", func(t *testing.T) {
		req := consultationRequest()
		req.StartTime = at("2025-06-10", 9, 30)
		req.EndTime = at("2025-06-10", 10, 30)
		_, err := svc.CreateAppointment(ctx, client, req)
		var cerr *ConflictError
		require.ErrorAs(t, err, &cerr)
		require.Len(t, cerr.Conflicts, 1)
		assert.Equal(t, "Initial consultation", cerr.Conflicts[0].Title)
	})

	t.Run("same interval on another professional is fine", func(t *testing.T) {
		req := consultationRequest()
		req.ProfessionalID = "pro-2"
		_, err := svc.CreateAppointment(ctx, client, req)
		require.NoError(t, err)
	})

	t.Run("back to back is fine", func(t *testing.T) {
		req := consultationRequest()
		req.StartTime = at("2025-06-10", 10, 0)
		req.EndTime = at("2025-06-10", 11, 0)
		_, err := svc.CreateAppointment(ctx, client, req)
		require.NoError(t, err)
	})
}

func TestCreateAppointmentConcurrentRace(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	client := Caller{ID: "client-1", Role: RoleClient}

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateAppointment(ctx, client, consultationRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var cerr *ConflictError
		require.ErrorAs(t, err, &cerr)
		conflicts++
	}
	assert.Equal(t, 1, wins, "exactly one concurrent booking may win")
	assert.Equal(t, attempts-1, conflicts)
}

func TestCreateAppointmentDispatchesReminders(t *testing.T) {
	ctx := context.Background()
	svc, _, reminders := newTestService()
	client := Caller{ID: "client-1", Role: RoleClient}

	req := consultationRequest()
	req.ReminderSettings = models.ReminderSettings{Enabled: true, Intervals: []int{60}, Methods: []string{"push"}}
	_, err := svc.CreateAppointment(ctx, client, req)
	require.NoError(t, err)
	assert.Equal(t, 1, reminders.callCount())

	// A failing scheduler never fails the booking itself.
	reminders.Err = assert.AnError
	req.StartTime = at("2025-06-10", 11, 0)
	req.EndTime = at("2025-06-10", 12, 0)
	_, err = svc.CreateAppointment(ctx, client, req)
	require.NoError(t, err)
	assert.Equal(t, 2, reminders.callCount())
}

func TestGetAppointmentVisibility(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	client := Caller{ID: "client-1", Role: RoleClient}

	appt, err := svc.CreateAppointment(ctx, client, consultationRequest())
	require.NoError(t, err)

	t.Run("participants and admin see it", func(t *testing.T) {
		for _, caller := range []Caller{
			client,
			{ID: "pro-1", Role: RoleProfessional},
			{ID: "admin-1", Role: RoleAdmin},
		} {
			got, err := svc.GetAppointment(ctx, caller, appt.ID)
			require.NoError(t, err)
			assert.Equal(t, appt.ID, got.ID)
		}
	})

	t.Run("outsiders get not found, not forbidden", func(t *testing.T) {
		_, err := svc.GetAppointment(ctx, Caller{ID: "client-2", Role: RoleClient}, appt.ID)
		var nferr *NotFoundError
		require.ErrorAs(t, err, &nferr)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GetAppointment(ctx, client, "nope")
		var nferr *NotFoundError
		require.ErrorAs(t, err, &nferr)
	})
}

func TestListAppointmentsScoping(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.CreateAppointment(ctx, Caller{ID: "client-1", Role: RoleClient}, consultationRequest())
	require.NoError(t, err)

	other := consultationRequest()
	other.ClientID = "client-2"
	other.ProfessionalID = "pro-2"
	other.Title = "Contract review"
	_, err = svc.CreateAppointment(ctx, Caller{ID: "client-2", Role: RoleClient}, other)
	require.NoError(t, err)

	t.Run("client sees only own bookings", func(t *testing.T) {
		appts, err := svc.ListAppointments(ctx, Caller{ID: "client-1", Role: RoleClient}, ListQuery{})
		require.NoError(t, err)
		require.Len(t, appts, 1)
		assert.Equal(t, "client-1", appts[0].ClientID)
	})

	t.Run("professional sees only own calendar", func(t *testing.T) {
		appts, err := svc.ListAppointments(ctx, Caller{ID: "pro-2", Role: RoleProfessional}, ListQuery{})
		require.NoError(t, err)
		require.Len(t, appts, 1)
		assert.Equal(t, "pro-2", appts[0].ProfessionalID)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		appts, err := svc.ListAppointments(ctx, Caller{ID: "admin-1", Role: RoleAdmin}, ListQuery{})
		require.NoError(t, err)
		assert.Len(t, appts, 2)
	})

	t.Run("search narrows results", func(t *testing.T) {
		appts, err := svc.ListAppointments(ctx, Caller{ID: "admin-1", Role: RoleAdmin}, ListQuery{Search: "contract"})
		require.NoError(t, err)
		require.Len(t, appts, 1)
		assert.Equal(t, "Contract review", appts[0].Title)
	})
}

func TestUpdateAppointmentContentAndStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	client := Caller{ID: "client-1", Role: RoleClient}
	pro := Caller{ID: "pro-1", Role: RoleProfessional}

	appt, err := svc.CreateAppointment(ctx, client, consultationRequest())
	require.NoError(t, err)

	t.Run("content edit", func(t *testing.T) {
		title := "Initial consultation (rescoped)"
		got, err := svc.UpdateAppointment(ctx, client, appt.ID, UpdateRequest{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)
	})

	t.Run("outsider update is forbidden", func(t *testing.T) {
		title := "hijacked"
		_, err := svc.UpdateAppointment(ctx, Caller{ID: "client-2", Role: RoleClient}, appt.ID, UpdateRequest{Title: &title})
		var aerr *AuthorizationError
		require.ErrorAs(t, err, &aerr)
	})

	t.Run("client may not confirm", func(t *testing.T) {
		status := models.StatusConfirmed
		_, err := svc.UpdateAppointment(ctx, client, appt.ID, UpdateRequest{Status: &status})
		var aerr *AuthorizationError
		require.ErrorAs(t, err, &aerr)
	})

	t.Run("professional confirms then completes", func(t *testing.T) {
		status := models.StatusConfirmed
		got, err := svc.UpdateAppointment(ctx, pro, appt.ID, UpdateRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, got.Status)

		done := models.StatusCompleted
		_, err = svc.UpdateAppointment(ctx, pro, appt.ID, UpdateRequest{Status: &done})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "completion without outcome")
		assert.Equal(t, "outcome", verr.Field)

		got, err = svc.UpdateAppointment(ctx, pro, appt.ID, UpdateRequest{Status: &done, Outcome: "retainer signed"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, got.Status)
		assert.Equal(t, "retainer signed", got.Outcome)
		require.NotNil(t, got.CompletedAt)
	})

	t.Run("terminal appointment still accepts content edits", func(t *testing.T) {
		desc := "notes attached after the fact"
		got, err := svc.UpdateAppointment(ctx, pro, appt.ID, UpdateRequest{Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, desc, got.Description)
	})

	t.Run("terminal appointment rejects transitions", func(t *testing.T) {
		status := models.StatusCancelled
		_, err := svc.UpdateAppointment(ctx, pro, appt.ID, UpdateRequest{Status: &status})
		var ferr *FinalizedStateError
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, models.StatusCompleted, ferr.Status)
	})

	t.Run("terminal appointment rejects time changes", func(t *testing.T) {
		start := at("2025-06-10", 14, 0)
		_, err := svc.UpdateAppointment(ctx, pro, appt.ID, UpdateRequest{StartTime: &start})
		var ferr *FinalizedStateError
		require.ErrorAs(t, err, &ferr)
	})
}

func TestUpdateAppointmentTimeChange(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	client := Caller{ID: "client-1", Role: RoleClient}

	first, err := svc.CreateAppointment(ctx, client, consultationRequest())
	require.NoError(t, err)

	second := consultationRequest()
	second.StartTime = at("2025-06-10", 11, 0)
	second.EndTime = at("2025-06-10", 12, 0)
	_, err = svc.CreateAppointment(ctx, client, second)
	require.NoError(t, err)

	t.Run("move into occupied interval conflicts", func(t *testing.T) {
		start := at("2025-06-10", 11, 30)
		end := at("2025-06-10", 12, 30)
		_, err := svc.UpdateAppointment(ctx, client, first.ID, UpdateRequest{StartTime: &start, EndTime: &end})
		var cerr *ConflictError
		require.ErrorAs(t, err, &cerr)
		require.Len(t, cerr.Conflicts, 1)
	})

	t.Run("shift within own interval does not self-conflict", func(t *testing.T) {
		start := at("2025-06-10", 9, 30)
		end := at("2025-06-10", 10, 30)
		got, err := svc.UpdateAppointment(ctx, client, first.ID, UpdateRequest{StartTime: &start, EndTime: &end})
		require.NoError(t, err)
		assert.True(t, got.StartTime.Equal(start))
		assert.True(t, got.EndTime.Equal(end))
	})

	t.Run("time change still validates statically", func(t *testing.T) {
		start := at("2025-06-10", 9, 0)
		end := at("2025-06-10", 15, 0)
		_, err := svc.UpdateAppointment(ctx, client, first.ID, UpdateRequest{StartTime: &start, EndTime: &end})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "max_duration", verr.Rule)
	})
}

func TestCancelAppointment(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	client := Caller{ID: "client-1", Role: RoleClient}

	appt, err := svc.CreateAppointment(ctx, client, consultationRequest())
	require.NoError(t, err)

	t.Run("reason is mandatory", func(t *testing.T) {
		_, err := svc.CancelAppointment(ctx, client, appt.ID, "")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "reason", verr.Field)
	})

	t.Run("outsider cancel is forbidden, not hidden", func(t *testing.T) {
		_, err := svc.CancelAppointment(ctx, Caller{ID: "client-2", Role: RoleClient}, appt.ID, "sabotage")
		var aerr *AuthorizationError
		require.ErrorAs(t, err, &aerr)
	})

	t.Run("participant cancels with reason", func(t *testing.T) {
		got, err := svc.CancelAppointment(ctx, client, appt.ID, "client unavailable")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, got.Status)
		assert.Equal(t, "client-1", got.CancelledBy)
		assert.Equal(t, "client unavailable", got.CancellationReason)
		require.NotNil(t, got.CancelledAt)
	})

	t.Run("cancelling twice is finalized", func(t *testing.T) {
		_, err := svc.CancelAppointment(ctx, client, appt.ID, "again")
		var ferr *FinalizedStateError
		require.ErrorAs(t, err, &ferr)
	})

	t.Run("cancelled slot frees the calendar", func(t *testing.T) {
		_, err := svc.CreateAppointment(ctx, client, consultationRequest())
		require.NoError(t, err)
	})
}

func TestComputeAvailabilityThroughService(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	client := Caller{ID: "client-1", Role: RoleClient}

	_, err := svc.CreateAppointment(ctx, client, consultationRequest())
	require.NoError(t, err)

	slots, err := svc.ComputeAvailability(ctx, "pro-1", "2025-06-10", 60)
	require.NoError(t, err)
	assert.Len(t, slots, 16)

	_, err = svc.ComputeAvailability(ctx, "pro-99", "2025-06-10", 60)
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}
