// Package workhours manages the work hour ledger: students log time against
// jobs, admins review it, and approved totals feed reporting.
package workhours

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/campusworks/workstudy/internal/app/domain/workhours"
	"github.com/campusworks/workstudy/internal/app/metrics"
	"github.com/campusworks/workstudy/internal/app/storage"
	"github.com/campusworks/workstudy/internal/errors"
	"github.com/campusworks/workstudy/pkg/logger"
)

const maxDescriptionLen = 1000

// Entry carries the caller-supplied fields when logging or editing time.
type Entry struct {
	JobID       string `json:"job_id"`
	WorkDate    string `json:"work_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}

// Service manages work hour entries.
type Service struct {
	jobs  storage.JobStore
	store storage.WorkHoursStore
	log   *logger.Logger
}

// New constructs a work hours service.
func New(jobs storage.JobStore, store storage.WorkHoursStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("workhours")
	}
	return &Service{jobs: jobs, store: store, log: log}
}

// Log records a PENDING work hour entry for a student. Hours are derived from
// the start and end times, never taken from the caller.
func (s *Service) Log(ctx context.Context, studentID string, in Entry) (workhours.Entry, error) {
	if err := validateEntry(&in); err != nil {
		return workhours.Entry{}, err
	}
	if _, err := s.jobs.GetJob(ctx, in.JobID); err != nil {
		return workhours.Entry{}, err
	}
	hours, err := workhours.ComputeHours(in.StartTime, in.EndTime)
	if err != nil {
		return workhours.Entry{}, err
	}

	created, err := s.store.CreateWorkHours(ctx, workhours.Entry{
		StudentID:   studentID,
		JobID:       in.JobID,
		WorkDate:    in.WorkDate,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		HoursWorked: hours,
		Description: in.Description,
		Status:      workhours.StatusPending,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return workhours.Entry{}, err
	}

	metrics.RecordWorkHoursLogged()
	s.log.WithField("entry_id", created.ID).
		WithField("student_id", studentID).
		WithField("job_id", in.JobID).
		WithField("hours", hours).
		Info("work hours logged")
	return created, nil
}

// Update rewrites a student's own PENDING entry. Reviewed entries are locked.
// Hours are recomputed from the new times.
func (s *Service) Update(ctx context.Context, id, requestingStudent string, in Entry) (workhours.Entry, error) {
	entry, err := s.store.GetWorkHours(ctx, id)
	if err != nil {
		return workhours.Entry{}, err
	}
	if entry.StudentID != requestingStudent {
		return workhours.Entry{}, errors.Forbidden("students may only edit their own work hours")
	}
	if entry.Status.Terminal() {
		return workhours.Entry{}, errors.InvalidState("entry %s has been reviewed and is locked", id)
	}

	if err := validateEntry(&in); err != nil {
		return workhours.Entry{}, err
	}
	if in.JobID != entry.JobID {
		if _, err := s.jobs.GetJob(ctx, in.JobID); err != nil {
			return workhours.Entry{}, err
		}
	}
	hours, err := workhours.ComputeHours(in.StartTime, in.EndTime)
	if err != nil {
		return workhours.Entry{}, err
	}

	entry.JobID = in.JobID
	entry.WorkDate = in.WorkDate
	entry.StartTime = in.StartTime
	entry.EndTime = in.EndTime
	entry.HoursWorked = hours
	entry.Description = in.Description

	return s.store.UpdateWorkHours(ctx, entry)
}

// Delete removes a student's own PENDING entry. Reviewed entries are locked.
func (s *Service) Delete(ctx context.Context, id, requestingStudent string) error {
	entry, err := s.store.GetWorkHours(ctx, id)
	if err != nil {
		return err
	}
	if entry.StudentID != requestingStudent {
		return errors.Forbidden("students may only delete their own work hours")
	}
	if entry.Status.Terminal() {
		return errors.InvalidState("entry %s has been reviewed and is locked", id)
	}
	return s.store.DeleteWorkHours(ctx, id)
}

// Review records an admin decision on a PENDING entry.
func (s *Service) Review(ctx context.Context, id string, newStatus workhours.Status, notes, reviewerID string) (workhours.Entry, error) {
	if newStatus != workhours.StatusApproved && newStatus != workhours.StatusRejected {
		return workhours.Entry{}, errors.InvalidInput("review status must be %s or %s", workhours.StatusApproved, workhours.StatusRejected)
	}

	entry, err := s.store.GetWorkHours(ctx, id)
	if err != nil {
		return workhours.Entry{}, err
	}
	if entry.Status.Terminal() {
		return workhours.Entry{}, errors.InvalidState("entry %s is already %s", id, entry.Status)
	}

	now := time.Now().UTC()
	entry.Status = newStatus
	entry.SupervisorNotes = notes
	entry.ApprovedBy = reviewerID
	entry.ApprovedAt = &now

	updated, err := s.store.UpdateWorkHours(ctx, entry)
	if err != nil {
		return workhours.Entry{}, err
	}
	metrics.RecordWorkHoursReviewed(string(newStatus))
	s.log.WithField("entry_id", id).
		WithField("status", newStatus).
		WithField("reviewed_by", reviewerID).
		Info("work hours reviewed")
	return updated, nil
}

// Get returns an entry by id.
func (s *Service) Get(ctx context.Context, id string) (workhours.Entry, error) {
	return s.store.GetWorkHours(ctx, id)
}

// List returns every logged entry.
func (s *Service) List(ctx context.Context) ([]workhours.Entry, error) {
	return s.store.ListWorkHours(ctx)
}

// ListByStudent returns a student's entries.
func (s *Service) ListByStudent(ctx context.Context, studentID string) ([]workhours.Entry, error) {
	return s.store.ListWorkHoursByStudent(ctx, studentID)
}

// ListByJob returns the entries logged against one posting.
func (s *Service) ListByJob(ctx context.Context, jobID string) ([]workhours.Entry, error) {
	return s.store.ListWorkHoursByJob(ctx, jobID)
}

// ListByStudentAndJob returns a student's entries for one posting.
func (s *Service) ListByStudentAndJob(ctx context.Context, studentID, jobID string) ([]workhours.Entry, error) {
	return s.store.ListWorkHoursByStudentAndJob(ctx, studentID, jobID)
}

// ListByStatus returns entries in one review state.
func (s *Service) ListByStatus(ctx context.Context, status workhours.Status) ([]workhours.Entry, error) {
	if !status.Valid() {
		return nil, errors.InvalidInput("unknown work hours status %q", status)
	}
	return s.store.ListWorkHoursByStatus(ctx, status)
}

// ListByStudentAndDateRange returns a student's entries with work dates inside
// the inclusive range.
func (s *Service) ListByStudentAndDateRange(ctx context.Context, studentID, startDate, endDate string) ([]workhours.Entry, error) {
	start, err := workhours.ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := workhours.ParseDate(endDate)
	if err != nil {
		return nil, err
	}
	// ISO dates order lexicographically.
	if end < start {
		return nil, errors.InvalidInput("end date must not precede start date")
	}
	return s.store.ListWorkHoursByStudentAndDateRange(ctx, studentID, start, end)
}

// TotalApprovedForStudent sums a student's APPROVED hours.
func (s *Service) TotalApprovedForStudent(ctx context.Context, studentID string) (float64, error) {
	entries, err := s.store.ListWorkHoursByStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return sumApproved(entries), nil
}

// TotalApprovedForStudentAndJob sums a student's APPROVED hours on one posting.
func (s *Service) TotalApprovedForStudentAndJob(ctx context.Context, studentID, jobID string) (float64, error) {
	entries, err := s.store.ListWorkHoursByStudentAndJob(ctx, studentID, jobID)
	if err != nil {
		return 0, err
	}
	return sumApproved(entries), nil
}

// sumApproved accumulates in hundredths of an hour so repeated float addition
// cannot drift the total.
func sumApproved(entries []workhours.Entry) float64 {
	var hundredths int64
	for _, e := range entries {
		if e.Status != workhours.StatusApproved {
			continue
		}
		hundredths += int64(math.Round(e.HoursWorked * 100))
	}
	return float64(hundredths) / 100
}

func validateEntry(in *Entry) error {
	in.JobID = strings.TrimSpace(in.JobID)
	in.WorkDate = strings.TrimSpace(in.WorkDate)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	in.Description = strings.TrimSpace(in.Description)

	switch {
	case in.JobID == "":
		return errors.InvalidInput("job id is required")
	case in.WorkDate == "":
		return errors.InvalidInput("work date is required")
	case in.StartTime == "":
		return errors.InvalidInput("start time is required")
	case in.EndTime == "":
		return errors.InvalidInput("end time is required")
	case len(in.Description) > maxDescriptionLen:
		return errors.InvalidInput("description must be at most %d characters", maxDescriptionLen)
	}
	if _, err := workhours.ParseDate(in.WorkDate); err != nil {
		return err
	}
	return nil
}
