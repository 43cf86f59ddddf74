package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "lexbook/database/repository/appointment"
	directoryRepo "lexbook/database/repository/directory"
	"lexbook/models"
	"lexbook/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const bookingLockPrefix = "booklock:"

// DefaultSchedulingService is the production scheduling core. The calendar
// store, user directory, locker and policy are injected so the whole service
// runs deterministically in unit tests without a live database.
type DefaultSchedulingService struct {
	Repo      appointmentRepo.CalendarRepository
	Directory directoryRepo.UserDirectory
	Locker    Locker
	Policy    Policy
	Reminders ReminderScheduler // optional; nil disables reminder dispatch
	NowFn     func() time.Time  // optional clock override
}

func (s *DefaultSchedulingService) now() time.Time {
	if s.NowFn != nil {
		return s.NowFn()
	}
	return time.Now()
}

func (s *DefaultSchedulingService) detector() *ConflictDetector {
	return &ConflictDetector{Repo: s.Repo}
}

// ComputeAvailability returns the open slots for a professional on a date.
func (s *DefaultSchedulingService) ComputeAvailability(ctx context.Context, professionalID, date string, durationMinutes int) ([]models.Slot, error) {
	if professionalID == "" {
		return nil, &ValidationError{Field: "professionalId", Rule: "required", Message: "professionalId is required"}
	}
	if _, err := s.resolveWithRole(ctx, professionalID, "professional"); err != nil {
		return nil, err
	}
	engine := &AvailabilityEngine{Repo: s.Repo, Policy: s.Policy, Now: s.NowFn}
	return engine.ComputeSlots(ctx, professionalID, date, durationMinutes)
}

// CreateAppointment validates, checks conflicts under the professional's
// booking lock, and inserts the new record with status "scheduled".
func (s *DefaultSchedulingService) CreateAppointment(ctx context.Context, caller Caller, req CreateRequest) (*models.Appointment, error) {
	if err := validateCreateRequest(&req); err != nil {
		return nil, err
	}

	// A client may only book for themselves, a professional only onto their
	// own calendar; admins book on behalf of either.
	switch caller.Role {
	case RoleClient:
		if req.ClientID != caller.ID {
			return nil, &AuthorizationError{Operation: OpCreate}
		}
	case RoleProfessional:
		if req.ProfessionalID != caller.ID {
			return nil, &AuthorizationError{Operation: OpCreate}
		}
	}

	if _, err := s.resolveWithRole(ctx, req.ClientID, "client"); err != nil {
		return nil, err
	}
	if _, err := s.resolveWithRole(ctx, req.ProfessionalID, "professional"); err != nil {
		return nil, err
	}

	now := s.now()
	if verr := validateInterval(req.StartTime, req.EndTime, now, true, s.Policy); verr != nil {
		return nil, verr
	}

	release, err := s.Locker.Lock(ctx, bookingLockPrefix+req.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("could not acquire booking lock for professional %s: %w", req.ProfessionalID, err)
	}
	defer release()

	conflicts, err := s.detector().FindConflicts(ctx, req.ProfessionalID, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	appt := &models.Appointment{
		Title:            req.Title,
		Description:      req.Description,
		ClientID:         req.ClientID,
		ProfessionalID:   req.ProfessionalID,
		CaseID:           req.CaseID,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Type:             req.Type,
		Priority:         req.Priority,
		Location:         req.Location,
		Status:           models.StatusScheduled,
		BookedBy:         caller.ID,
		ReminderSettings: req.ReminderSettings,
	}

	if err := s.Repo.Insert(ctx, appt); err != nil {
		// A write racing past the lock (e.g. an expired lock TTL) is retried
		// once against current data before giving up as a conflict.
		conflicts, cerr := s.detector().FindConflicts(ctx, req.ProfessionalID, req.StartTime, req.EndTime, "")
		if cerr == nil && len(conflicts) > 0 {
			return nil, &ConflictError{Conflicts: conflicts}
		}
		if rerr := s.Repo.Insert(ctx, appt); rerr != nil {
			return nil, fmt.Errorf("failed to persist appointment: %w", rerr)
		}
	}

	s.dispatchReminders(ctx, appt)
	return appt, nil
}

// GetAppointment loads one appointment; records outside the caller's scope
// are reported as absent.
func (s *DefaultSchedulingService) GetAppointment(ctx context.Context, caller Caller, id string) (*models.Appointment, error) {
	return s.loadVisible(ctx, caller, id)
}

// ListAppointments applies the caller's scope and then the query filters.
func (s *DefaultSchedulingService) ListAppointments(ctx context.Context, caller Caller, q ListQuery) ([]models.Appointment, error) {
	filter := ScopeFilter(caller, appointmentRepo.ListFilter{
		Status:    q.Status,
		Type:      q.Type,
		Search:    q.Search,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	})
	appts, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("appointment listing failed: %w", err)
	}
	return appts, nil
}

// UpdateAppointment applies content edits, lifecycle transitions and time
// changes. Time changes rerun the full conflict pipeline under the booking
// lock; terminal appointments reject any transition or time change.
func (s *DefaultSchedulingService) UpdateAppointment(ctx context.Context, caller Caller, id string, req UpdateRequest) (*models.Appointment, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	newStart, newEnd := appt.StartTime, appt.EndTime
	if req.StartTime != nil {
		newStart = *req.StartTime
	}
	if req.EndTime != nil {
		newEnd = *req.EndTime
	}
	timeChange := !newStart.Equal(appt.StartTime) || !newEnd.Equal(appt.EndTime)

	op := OpUpdate
	if req.Status != nil {
		op = operationForTransition(*req.Status)
	}
	if err := Authorize(caller, appt, op); err != nil {
		return nil, err
	}

	if appt.Status.Terminal() && (req.Status != nil || timeChange) {
		return nil, &FinalizedStateError{ID: appt.ID, Status: appt.Status}
	}

	if req.Title != nil {
		appt.Title = *req.Title
	}
	if req.Description != nil {
		appt.Description = *req.Description
	}
	if req.Priority != nil {
		if !models.ValidAppointmentPriority(*req.Priority) {
			return nil, &ValidationError{Field: "priority", Rule: "enum", Message: "unknown priority"}
		}
		appt.Priority = *req.Priority
	}
	if req.Location != nil {
		if !models.ValidLocationKind(req.Location.Kind) {
			return nil, &ValidationError{Field: "location.kind", Rule: "enum", Message: "unknown location kind"}
		}
		appt.Location = *req.Location
	}
	if req.ReminderSettings != nil {
		appt.ReminderSettings = *req.ReminderSettings
	}

	now := s.now()
	if req.Status != nil {
		if err := applyTransition(appt, *req.Status, caller.ID, req.Outcome, req.Reason, now); err != nil {
			return nil, err
		}
	}

	if !timeChange {
		if err := s.persist(ctx, appt); err != nil {
			return nil, err
		}
		return appt, nil
	}

	// Time change: static validation, then conflict re-check (excluding this
	// appointment) under the professional's booking lock.
	if verr := validateInterval(newStart, newEnd, now, false, s.Policy); verr != nil {
		return nil, verr
	}

	release, err := s.Locker.Lock(ctx, bookingLockPrefix+appt.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("could not acquire booking lock for professional %s: %w", appt.ProfessionalID, err)
	}
	defer release()

	conflicts, err := s.detector().FindConflicts(ctx, appt.ProfessionalID, newStart, newEnd, appt.ID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	appt.StartTime = newStart
	appt.EndTime = newEnd
	if err := s.persist(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// CancelAppointment is the soft-delete path: any participant or an admin may
// cancel a non-terminal appointment with a reason.
func (s *DefaultSchedulingService) CancelAppointment(ctx context.Context, caller Caller, id, reason string) (*models.Appointment, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller, appt, OpCancel); err != nil {
		return nil, err
	}
	if err := applyTransition(appt, models.StatusCancelled, caller.ID, "", reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *DefaultSchedulingService) load(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{Resource: "appointment", ID: id}
		}
		return nil, fmt.Errorf("failed to load appointment %s: %w", id, err)
	}
	return appt, nil
}

// loadVisible presents records outside the caller's scope as absent, so a
// read cannot probe for existence. Mutations instead load unconditionally
// and let Authorize report forbidden.
func (s *DefaultSchedulingService) loadVisible(ctx context.Context, caller Caller, id string) (*models.Appointment, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Visible(caller, appt) {
		return nil, &NotFoundError{Resource: "appointment", ID: id}
	}
	return appt, nil
}

func (s *DefaultSchedulingService) persist(ctx context.Context, appt *models.Appointment) error {
	if err := s.Repo.Update(ctx, appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &NotFoundError{Resource: "appointment", ID: appt.ID}
		}
		return fmt.Errorf("failed to persist appointment %s: %w", appt.ID, err)
	}
	return nil
}

// resolveWithRole looks up a directory user and checks their role.
func (s *DefaultSchedulingService) resolveWithRole(ctx context.Context, id, role string) (*models.DirectoryUser, error) {
	usr, err := s.Directory.ResolveUser(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Resource: role, ID: id}
	}
	if usr.Role != role {
		return nil, &NotFoundError{Resource: role, ID: id}
	}
	return usr, nil
}

// dispatchReminders hands the booked appointment to the notification
// collaborator. Failures are logged, never surfaced: the booking already
// committed and reminders are external to the core.
func (s *DefaultSchedulingService) dispatchReminders(ctx context.Context, appt *models.Appointment) {
	if s.Reminders == nil || !appt.ReminderSettings.Enabled {
		return
	}
	if err := s.Reminders.ScheduleReminders(ctx, appt); err != nil {
		utils.GetLogger().Warn("failed to schedule reminders",
			zap.String("appointmentId", appt.ID), zap.Error(err))
	}
}

func validateCreateRequest(req *CreateRequest) error {
	if req.Title == "" {
		return &ValidationError{Field: "title", Rule: "required", Message: "title is required"}
	}
	if req.ClientID == "" {
		return &ValidationError{Field: "clientId", Rule: "required", Message: "clientId is required"}
	}
	if req.ProfessionalID == "" {
		return &ValidationError{Field: "professionalId", Rule: "required", Message: "professionalId is required"}
	}
	if req.Type == "" {
		req.Type = models.TypeOther
	} else if !models.ValidAppointmentType(req.Type) {
		return &ValidationError{Field: "type", Rule: "enum", Message: "unknown appointment type"}
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	} else if !models.ValidAppointmentPriority(req.Priority) {
		return &ValidationError{Field: "priority", Rule: "enum", Message: "unknown priority"}
	}
	if req.Location.Kind == "" {
		req.Location.Kind = models.LocationOffice
	} else if !models.ValidLocationKind(req.Location.Kind) {
		return &ValidationError{Field: "location.kind", Rule: "enum", Message: "unknown location kind"}
	}
	return nil
}
