package scheduling

import (
	"context"
	"fmt"
	"time"

	appointmentRepo "lexbook/database/repository/appointment"
	"lexbook/models"
)

// AvailabilityEngine computes open slots within business hours for one
// professional on one calendar date. It is read-only against the calendar;
// an empty result means no open capacity, never an error.
type AvailabilityEngine struct {
	Repo   appointmentRepo.CalendarRepository
	Policy Policy
	Now    func() time.Time
}

func (e *AvailabilityEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// ComputeSlots walks candidate start times across business hours at the
// configured step, forms [start, start+duration) for each, and drops
// candidates that run past close, start before the lead-time cutoff when
// the date is today, or overlap an existing non-cancelled appointment.
// Survivors come back in chronological order.
func (e *AvailabilityEngine) ComputeSlots(ctx context.Context, professionalID, date string, durationMinutes int) ([]models.Slot, error) {
	if professionalID == "" {
		return nil, &ValidationError{Field: "professionalId", Rule: "required", Message: "professionalId is required"}
	}
	if durationMinutes <= 0 || durationMinutes > e.Policy.MaxDurationMin {
		return nil, &ValidationError{
			Field:   "duration",
			Rule:    "duration_range",
			Message: fmt.Sprintf("duration must be between 1 and %d minutes", e.Policy.MaxDurationMin),
		}
	}
	day, err := time.ParseInLocation("2006-01-02", date, e.Policy.Location)
	if err != nil {
		return nil, &ValidationError{Field: "date", Rule: "format", Message: "date must be formatted as YYYY-MM-DD"}
	}

	dayOpen := day.Add(time.Duration(e.Policy.BusinessOpenMin) * time.Minute)
	dayClose := day.Add(time.Duration(e.Policy.BusinessCloseMin) * time.Minute)
	duration := time.Duration(durationMinutes) * time.Minute
	step := time.Duration(e.Policy.SlotStepMin) * time.Minute

	// One range query covers the whole business day; candidates are then
	// filtered in memory with the same overlap predicate the conflict
	// detector uses.
	existing, err := e.Repo.FindOverlapping(ctx, professionalID, dayOpen, dayClose, "")
	if err != nil {
		return nil, fmt.Errorf("availability lookup for professional %s failed: %w", professionalID, err)
	}

	now := e.now().In(e.Policy.Location)
	isToday := day.Year() == now.Year() && day.YearDay() == now.YearDay()
	leadCutoff := now.Add(time.Duration(e.Policy.MinLeadTimeMin) * time.Minute)

	var slots []models.Slot
	for start := dayOpen; !start.Add(duration).After(dayClose); start = start.Add(step) {
		end := start.Add(duration)
		if isToday && !start.After(leadCutoff) {
			continue
		}
		taken := false
		for i := range existing {
			if overlaps(start, end, existing[i].StartTime, existing[i].EndTime) {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		slots = append(slots, models.Slot{Start: start, End: end})
	}
	return slots, nil
}
