// Package applications implements the student application workflow and its
// coupling to job posting capacity.
package applications

import (
	"context"
	"strings"
	"time"

	"github.com/campusworks/workstudy/internal/app/domain/application"
	"github.com/campusworks/workstudy/internal/app/domain/job"
	"github.com/campusworks/workstudy/internal/app/metrics"
	"github.com/campusworks/workstudy/internal/app/storage"
	"github.com/campusworks/workstudy/internal/errors"
	"github.com/campusworks/workstudy/pkg/logger"
)

const maxCoverLetterLen = 2000

// Service manages the application lifecycle.
type Service struct {
	jobs  storage.JobStore
	store storage.ApplicationStore
	log   *logger.Logger
}

// New constructs an application workflow service.
func New(jobs storage.JobStore, store storage.ApplicationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("applications")
	}
	return &Service{jobs: jobs, store: store, log: log}
}

// Submit files a PENDING application against an ACTIVE posting. A student may
// hold at most one application per posting; any prior application for the
// pair, whatever its status, blocks a new one.
func (s *Service) Submit(ctx context.Context, jobID, studentID, coverLetter, resumeURL string) (application.Record, error) {
	coverLetter = strings.TrimSpace(coverLetter)
	if coverLetter == "" {
		return application.Record{}, errors.InvalidInput("cover letter is required")
	}
	if len(coverLetter) > maxCoverLetterLen {
		return application.Record{}, errors.InvalidInput("cover letter must be at most %d characters", maxCoverLetterLen)
	}

	target, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return application.Record{}, err
	}
	if target.Status != job.StatusActive {
		return application.Record{}, errors.InvalidState("job %s is no longer accepting applications", jobID)
	}

	if _, err := s.store.GetApplicationByStudentAndJob(ctx, studentID, jobID); err == nil {
		return application.Record{}, errors.Conflict("student %s has already applied for job %s", studentID, jobID)
	} else if !errors.IsCode(err, errors.CodeNotFound) {
		return application.Record{}, err
	}

	created, err := s.store.CreateApplication(ctx, application.Record{
		StudentID:   studentID,
		JobID:       jobID,
		CoverLetter: coverLetter,
		ResumeURL:   strings.TrimSpace(resumeURL),
		Status:      application.StatusPending,
		AppliedAt:   time.Now().UTC(),
	})
	if err != nil {
		return application.Record{}, err
	}

	metrics.RecordApplicationSubmitted()
	s.log.WithField("application_id", created.ID).
		WithField("student_id", studentID).
		WithField("job_id", jobID).
		Info("application submitted")
	return created, nil
}

// Review records an admin decision on a PENDING application. Approval and the
// job's filled-count increment commit as one atomic unit: a posting without
// open positions rejects the approval and leaves the application PENDING.
func (s *Service) Review(ctx context.Context, id string, newStatus application.Status, notes, reviewerID string) (application.Record, error) {
	if !newStatus.ReviewOutcome() {
		return application.Record{}, errors.InvalidInput("review status must be %s or %s", application.StatusApproved, application.StatusRejected)
	}

	now := time.Now().UTC()

	if newStatus == application.StatusApproved {
		rec, posting, err := s.store.ApproveApplication(ctx, id, reviewerID, notes, now)
		if err != nil {
			return application.Record{}, err
		}
		metrics.RecordApplicationReviewed(string(application.StatusApproved))
		metrics.RecordPositionFilled()
		s.log.WithField("application_id", id).
			WithField("reviewed_by", reviewerID).
			WithField("job_id", rec.JobID).
			WithField("job_status", posting.Status).
			Info("application approved")
		return rec, nil
	}

	rec, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return application.Record{}, err
	}
	if rec.Status.Terminal() {
		return application.Record{}, errors.InvalidState("application %s is already %s", id, rec.Status)
	}

	rec.Status = application.StatusRejected
	rec.AdminNotes = notes
	rec.ReviewedBy = reviewerID
	rec.ReviewedAt = &now

	updated, err := s.store.UpdateApplication(ctx, rec)
	if err != nil {
		return application.Record{}, err
	}
	metrics.RecordApplicationReviewed(string(application.StatusRejected))
	s.log.WithField("application_id", id).
		WithField("reviewed_by", reviewerID).
		Info("application rejected")
	return updated, nil
}

// Withdraw moves a student's own PENDING application to WITHDRAWN. The job's
// filled count is never decremented by a withdrawal.
func (s *Service) Withdraw(ctx context.Context, id, requestingStudent string) (application.Record, error) {
	rec, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return application.Record{}, err
	}
	if rec.StudentID != requestingStudent {
		return application.Record{}, errors.Forbidden("students may only withdraw their own applications")
	}
	if rec.Status.Terminal() {
		return application.Record{}, errors.InvalidState("application %s is already %s", id, rec.Status)
	}

	rec.Status = application.StatusWithdrawn
	updated, err := s.store.UpdateApplication(ctx, rec)
	if err != nil {
		return application.Record{}, err
	}
	s.log.WithField("application_id", id).
		WithField("student_id", requestingStudent).
		Info("application withdrawn")
	return updated, nil
}

// Get returns an application by id.
func (s *Service) Get(ctx context.Context, id string) (application.Record, error) {
	return s.store.GetApplication(ctx, id)
}

// List returns every application.
func (s *Service) List(ctx context.Context) ([]application.Record, error) {
	return s.store.ListApplications(ctx)
}

// ListByStudent returns a student's applications.
func (s *Service) ListByStudent(ctx context.Context, studentID string) ([]application.Record, error) {
	return s.store.ListApplicationsByStudent(ctx, studentID)
}

// ListByJob returns the applications filed against one posting.
func (s *Service) ListByJob(ctx context.Context, jobID string) ([]application.Record, error) {
	return s.store.ListApplicationsByJob(ctx, jobID)
}

// ListByStatus returns applications in one lifecycle state.
func (s *Service) ListByStatus(ctx context.Context, status application.Status) ([]application.Record, error) {
	if !status.Valid() {
		return nil, errors.InvalidInput("unknown application status %q", status)
	}
	return s.store.ListApplicationsByStatus(ctx, status)
}
