// Package memory provides a thread-safe in-memory persistence layer
// implementing the storage interfaces. It backs the test suite and serves as
// the default store when no database is configured.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/campusworks/workstudy/internal/app/domain/application"
	"github.com/campusworks/workstudy/internal/app/domain/feedback"
	"github.com/campusworks/workstudy/internal/app/domain/job"
	"github.com/campusworks/workstudy/internal/app/domain/user"
	"github.com/campusworks/workstudy/internal/app/domain/workhours"
	"github.com/campusworks/workstudy/internal/errors"
)

// Memory keeps every record behind a single mutex, which makes the
// cross-entity approval write trivially atomic.
type Memory struct {
	mu           sync.RWMutex
	nextID       int64
	users        map[string]user.User
	jobs         map[string]job.Posting
	applications map[string]application.Record
	workHours    map[string]workhours.Entry
	feedback     map[string]feedback.Record
}

// New creates an empty in-memory store.
func New() *Memory {
	return &Memory{
		nextID:       1,
		users:        make(map[string]user.User),
		jobs:         make(map[string]job.Posting),
		applications: make(map[string]application.Record),
		workHours:    make(map[string]workhours.Entry),
		feedback:     make(map[string]feedback.Record),
	}
}

func (m *Memory) nextIDLocked() string {
	id := m.nextID
	m.nextID++
	return strconv.FormatInt(id, 10)
}

// UserStore implementation ----------------------------------------------------

func (m *Memory) CreateUser(_ context.Context, u user.User) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return user.User{}, errors.Conflict("username %s already exists", u.Username)
		}
		if existing.Email == u.Email {
			return user.User{}, errors.Conflict("email %s already exists", u.Email)
		}
	}

	if u.ID == "" {
		u.ID = m.nextIDLocked()
	} else if _, exists := m.users[u.ID]; exists {
		return user.User{}, errors.Conflict("user %s already exists", u.ID)
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	m.users[u.ID] = u
	return u, nil
}

func (m *Memory) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.users[u.ID]
	if !ok {
		return user.User{}, errors.NotFound("user %s not found", u.ID)
	}

	u.CreatedAt = original.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	m.users[u.ID] = u
	return u, nil
}

func (m *Memory) GetUser(_ context.Context, id string) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return user.User{}, errors.NotFound("user %s not found", id)
	}
	return u, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, errors.NotFound("user %s not found", username)
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, errors.NotFound("user with email %s not found", email)
}

func (m *Memory) ListUsersByRole(_ context.Context, role user.Role) ([]user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]user.User, 0)
	for _, u := range m.users {
		if role == "" || u.Role == role {
			result = append(result, u)
		}
	}
	return result, nil
}

// JobStore implementation -----------------------------------------------------

func (m *Memory) CreateJob(_ context.Context, p job.Posting) (job.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = m.nextIDLocked()
	} else if _, exists := m.jobs[p.ID]; exists {
		return job.Posting{}, errors.Conflict("job %s already exists", p.ID)
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	m.jobs[p.ID] = p
	return p, nil
}

func (m *Memory) UpdateJob(_ context.Context, p job.Posting) (job.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.jobs[p.ID]
	if !ok {
		return job.Posting{}, errors.NotFound("job %s not found", p.ID)
	}

	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	m.jobs[p.ID] = p
	return p, nil
}

func (m *Memory) GetJob(_ context.Context, id string) (job.Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.jobs[id]
	if !ok {
		return job.Posting{}, errors.NotFound("job %s not found", id)
	}
	return p, nil
}

func (m *Memory) ListJobs(_ context.Context) ([]job.Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]job.Posting, 0, len(m.jobs))
	for _, p := range m.jobs {
		result = append(result, p)
	}
	return result, nil
}

func (m *Memory) ListJobsByStatus(_ context.Context, status job.Status) ([]job.Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]job.Posting, 0)
	for _, p := range m.jobs {
		if p.Status == status {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *Memory) ListJobsByDepartment(_ context.Context, department string) ([]job.Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]job.Posting, 0)
	for _, p := range m.jobs {
		if p.Department == department {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *Memory) FillPosition(_ context.Context, id string, expectedFilled int) (job.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.fillPositionLocked(id, expectedFilled)
}

func (m *Memory) fillPositionLocked(id string, expectedFilled int) (job.Posting, error) {
	p, ok := m.jobs[id]
	if !ok {
		return job.Posting{}, errors.NotFound("job %s not found", id)
	}
	if p.Status != job.StatusActive || !p.Open() {
		return job.Posting{}, errors.Conflict("job %s has no open positions", id)
	}
	if p.FilledPositions != expectedFilled {
		return job.Posting{}, errors.Conflict("job %s was modified concurrently", id)
	}

	p.FilledPositions++
	if p.FilledPositions >= p.TotalPositions {
		p.Status = job.StatusFilled
	}
	p.UpdatedAt = time.Now().UTC()

	m.jobs[id] = p
	return p, nil
}

func (m *Memory) DeleteJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[id]; !ok {
		return errors.NotFound("job %s not found", id)
	}
	delete(m.jobs, id)
	return nil
}

// ApplicationStore implementation ---------------------------------------------

func (m *Memory) CreateApplication(_ context.Context, rec application.Record) (application.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.applications {
		if existing.StudentID == rec.StudentID && existing.JobID == rec.JobID {
			return application.Record{}, errors.Conflict("student %s has already applied for job %s", rec.StudentID, rec.JobID)
		}
	}

	if rec.ID == "" {
		rec.ID = m.nextIDLocked()
	} else if _, exists := m.applications[rec.ID]; exists {
		return application.Record{}, errors.Conflict("application %s already exists", rec.ID)
	}

	if rec.AppliedAt.IsZero() {
		rec.AppliedAt = time.Now().UTC()
	}

	m.applications[rec.ID] = rec
	return rec, nil
}

func (m *Memory) UpdateApplication(_ context.Context, rec application.Record) (application.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.applications[rec.ID]
	if !ok {
		return application.Record{}, errors.NotFound("application %s not found", rec.ID)
	}

	rec.AppliedAt = original.AppliedAt

	m.applications[rec.ID] = rec
	return rec, nil
}

func (m *Memory) GetApplication(_ context.Context, id string) (application.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.applications[id]
	if !ok {
		return application.Record{}, errors.NotFound("application %s not found", id)
	}
	return rec, nil
}

func (m *Memory) GetApplicationByStudentAndJob(_ context.Context, studentID, jobID string) (application.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.applications {
		if rec.StudentID == studentID && rec.JobID == jobID {
			return rec, nil
		}
	}
	return application.Record{}, errors.NotFound("application for student %s and job %s not found", studentID, jobID)
}

func (m *Memory) ListApplications(_ context.Context) ([]application.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]application.Record, 0, len(m.applications))
	for _, rec := range m.applications {
		result = append(result, rec)
	}
	return result, nil
}

func (m *Memory) ListApplicationsByStudent(_ context.Context, studentID string) ([]application.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]application.Record, 0)
	for _, rec := range m.applications {
		if rec.StudentID == studentID {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (m *Memory) ListApplicationsByJob(_ context.Context, jobID string) ([]application.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]application.Record, 0)
	for _, rec := range m.applications {
		if rec.JobID == jobID {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (m *Memory) ListApplicationsByStatus(_ context.Context, status application.Status) ([]application.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]application.Record, 0)
	for _, rec := range m.applications {
		if rec.Status == status {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (m *Memory) ApproveApplication(_ context.Context, id, reviewerID, notes string, reviewedAt time.Time) (application.Record, job.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.applications[id]
	if !ok {
		return application.Record{}, job.Posting{}, errors.NotFound("application %s not found", id)
	}
	if rec.Status.Terminal() {
		return application.Record{}, job.Posting{}, errors.InvalidState("application %s is already %s", id, rec.Status)
	}

	current, ok := m.jobs[rec.JobID]
	if !ok {
		return application.Record{}, job.Posting{}, errors.NotFound("job %s not found", rec.JobID)
	}

	// Both writes happen under the same lock; a failed fill leaves the
	// application untouched.
	updatedJob, err := m.fillPositionLocked(rec.JobID, current.FilledPositions)
	if err != nil {
		return application.Record{}, job.Posting{}, err
	}

	rec.Status = application.StatusApproved
	rec.AdminNotes = notes
	rec.ReviewedBy = reviewerID
	rec.ReviewedAt = &reviewedAt

	m.applications[id] = rec
	return rec, updatedJob, nil
}

// WorkHoursStore implementation -----------------------------------------------

func (m *Memory) CreateWorkHours(_ context.Context, entry workhours.Entry) (workhours.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = m.nextIDLocked()
	} else if _, exists := m.workHours[entry.ID]; exists {
		return workhours.Entry{}, errors.Conflict("work hours entry %s already exists", entry.ID)
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	m.workHours[entry.ID] = entry
	return entry, nil
}

func (m *Memory) UpdateWorkHours(_ context.Context, entry workhours.Entry) (workhours.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.workHours[entry.ID]
	if !ok {
		return workhours.Entry{}, errors.NotFound("work hours entry %s not found", entry.ID)
	}

	entry.CreatedAt = original.CreatedAt

	m.workHours[entry.ID] = entry
	return entry, nil
}

func (m *Memory) GetWorkHours(_ context.Context, id string) (workhours.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.workHours[id]
	if !ok {
		return workhours.Entry{}, errors.NotFound("work hours entry %s not found", id)
	}
	return entry, nil
}

func (m *Memory) ListWorkHours(_ context.Context) ([]workhours.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]workhours.Entry, 0, len(m.workHours))
	for _, entry := range m.workHours {
		result = append(result, entry)
	}
	return result, nil
}

func (m *Memory) ListWorkHoursByStudent(_ context.Context, studentID string) ([]workhours.Entry, error) {
	return m.listWorkHours(func(e workhours.Entry) bool { return e.StudentID == studentID })
}

func (m *Memory) ListWorkHoursByJob(_ context.Context, jobID string) ([]workhours.Entry, error) {
	return m.listWorkHours(func(e workhours.Entry) bool { return e.JobID == jobID })
}

func (m *Memory) ListWorkHoursByStudentAndJob(_ context.Context, studentID, jobID string) ([]workhours.Entry, error) {
	return m.listWorkHours(func(e workhours.Entry) bool {
		return e.StudentID == studentID && e.JobID == jobID
	})
}

func (m *Memory) ListWorkHoursByStatus(_ context.Context, status workhours.Status) ([]workhours.Entry, error) {
	return m.listWorkHours(func(e workhours.Entry) bool { return e.Status == status })
}

func (m *Memory) ListWorkHoursByStudentAndDateRange(_ context.Context, studentID, startDate, endDate string) ([]workhours.Entry, error) {
	// ISO dates order lexicographically; both bounds inclusive.
	return m.listWorkHours(func(e workhours.Entry) bool {
		return e.StudentID == studentID && e.WorkDate >= startDate && e.WorkDate <= endDate
	})
}

func (m *Memory) listWorkHours(match func(workhours.Entry) bool) ([]workhours.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]workhours.Entry, 0)
	for _, entry := range m.workHours {
		if match(entry) {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (m *Memory) DeleteWorkHours(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workHours[id]; !ok {
		return errors.NotFound("work hours entry %s not found", id)
	}
	delete(m.workHours, id)
	return nil
}

// FeedbackStore implementation ------------------------------------------------

func (m *Memory) CreateFeedback(_ context.Context, rec feedback.Record) (feedback.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = m.nextIDLocked()
	} else if _, exists := m.feedback[rec.ID]; exists {
		return feedback.Record{}, errors.Conflict("feedback %s already exists", rec.ID)
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	m.feedback[rec.ID] = rec
	return rec, nil
}

func (m *Memory) GetFeedback(_ context.Context, id string) (feedback.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.feedback[id]
	if !ok {
		return feedback.Record{}, errors.NotFound("feedback %s not found", id)
	}
	return rec, nil
}

func (m *Memory) ListFeedback(_ context.Context) ([]feedback.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]feedback.Record, 0, len(m.feedback))
	for _, rec := range m.feedback {
		result = append(result, rec)
	}
	return result, nil
}

func (m *Memory) ListFeedbackByStudent(_ context.Context, studentID string) ([]feedback.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]feedback.Record, 0)
	for _, rec := range m.feedback {
		if rec.StudentID == studentID {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (m *Memory) ListFeedbackByJob(_ context.Context, jobID string) ([]feedback.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]feedback.Record, 0)
	for _, rec := range m.feedback {
		if rec.JobID == jobID {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (m *Memory) DeleteFeedback(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.feedback[id]; !ok {
		return errors.NotFound("feedback %s not found", id)
	}
	delete(m.feedback, id)
	return nil
}
