package scheduling

import (
	"context"
	"fmt"
	"time"

	appointmentRepo "lexbook/database/repository/appointment"
	"lexbook/models"
)

// overlaps is the half-open interval test: [s1,e1) and [s2,e2) conflict
// iff s1 < e2 && s2 < e1.
func overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// ConflictDetector finds existing non-cancelled appointments on a
// professional's calendar that collide with a candidate interval. The check
// is professional-scoped only: two professionals may hold overlapping
// appointments, and a client's own double-booking is not constrained here.
type ConflictDetector struct {
	Repo appointmentRepo.CalendarRepository
}

// FindConflicts returns summaries of the professional's non-cancelled
// appointments overlapping [start, end). excludeID lets a time-changing
// update re-validate without flagging itself.
func (d *ConflictDetector) FindConflicts(ctx context.Context, professionalID string, start, end time.Time, excludeID string) ([]models.AppointmentSummary, error) {
	existing, err := d.Repo.FindOverlapping(ctx, professionalID, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("conflict lookup for professional %s failed: %w", professionalID, err)
	}
	summaries := make([]models.AppointmentSummary, 0, len(existing))
	for i := range existing {
		summaries = append(summaries, existing[i].Summary())
	}
	return summaries, nil
}
