package scheduling

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	appointmentRepo "lexbook/database/repository/appointment"
	"lexbook/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// memCalendarRepo is an in-memory CalendarRepository with the same contract
// as the mongo implementation, including mongo.ErrNoDocuments on misses.
type memCalendarRepo struct {
	mu    sync.Mutex
	store map[string]models.Appointment
}

func newMemCalendarRepo() *memCalendarRepo {
	return &memCalendarRepo{store: make(map[string]models.Appointment)}
}

func (r *memCalendarRepo) Insert(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	r.store[appt.ID] = *appt
	return nil
}

func (r *memCalendarRepo) Update(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[appt.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	r.store[appt.ID] = *appt
	return nil
}

func (r *memCalendarRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.store[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	out := appt
	return &out, nil
}

func (r *memCalendarRepo) FindOverlapping(ctx context.Context, professionalID string, start, end time.Time, excludeID string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, appt := range r.store {
		if appt.ProfessionalID != professionalID || appt.ID == excludeID {
			continue
		}
		if appt.Status == models.StatusCancelled {
			continue
		}
		if appt.StartTime.Before(end) && start.Before(appt.EndTime) {
			out = append(out, appt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *memCalendarRepo) List(ctx context.Context, f appointmentRepo.ListFilter) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, appt := range r.store {
		if f.ClientID != "" && appt.ClientID != f.ClientID {
			continue
		}
		if f.ProfessionalID != "" && appt.ProfessionalID != f.ProfessionalID {
			continue
		}
		if f.Status != "" && appt.Status != f.Status {
			continue
		}
		if f.Type != "" && appt.Type != f.Type {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(appt.Title), needle) &&
				!strings.Contains(strings.ToLower(appt.Description), needle) {
				continue
			}
		}
		if !f.StartDate.IsZero() && appt.StartTime.Before(f.StartDate) {
			continue
		}
		if !f.EndDate.IsZero() && !appt.StartTime.Before(f.EndDate) {
			continue
		}
		out = append(out, appt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// keyedLocker serializes per key with plain mutexes.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *keyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock, nil
}

// stubDirectory resolves from a fixed user set.
type stubDirectory struct {
	users map[string]models.DirectoryUser
}

func newStubDirectory(users ...models.DirectoryUser) *stubDirectory {
	d := &stubDirectory{users: make(map[string]models.DirectoryUser)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *stubDirectory) ResolveUser(ctx context.Context, id string) (*models.DirectoryUser, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	out := u
	return &out, nil
}

// recordingReminderScheduler counts dispatches; Err makes every call fail.
type recordingReminderScheduler struct {
	mu    sync.Mutex
	calls int
	Err   error
}

func (s *recordingReminderScheduler) ScheduleReminders(ctx context.Context, appt *models.Appointment) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.Err
}

func (s *recordingReminderScheduler) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testPolicy() Policy {
	return Policy{
		BusinessOpenMin:  480,
		BusinessCloseMin: 1080,
		SlotStepMin:      30,
		MinLeadTimeMin:   30,
		MaxDurationMin:   240,
		Location:         time.UTC,
	}
}

// testNow is the fixed clock for service tests: the day before the
// appointments the tests book.
var testNow = time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)

func at(day string, hour, min int) time.Time {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func newTestService(extraUsers ...models.DirectoryUser) (*DefaultSchedulingService, *memCalendarRepo, *recordingReminderScheduler) {
	users := []models.DirectoryUser{
		{ID: "client-1", Role: "client", Name: "Ada Client"},
		{ID: "client-2", Role: "client", Name: "Ben Client"},
		{ID: "pro-1", Role: "professional", Name: "Carol Counsel"},
		{ID: "pro-2", Role: "professional", Name: "Dan Defender"},
	}
	users = append(users, extraUsers...)

	repo := newMemCalendarRepo()
	reminders := &recordingReminderScheduler{}
	svc := &DefaultSchedulingService{
		Repo:      repo,
		Directory: newStubDirectory(users...),
		Locker:    newKeyedLocker(),
		Policy:    testPolicy(),
		Reminders: reminders,
		NowFn:     func() time.Time { return testNow },
	}
	return svc, repo, reminders
}
