// Package jobs implements the job posting ledger: posting lifecycle and the
// filled-position counter.
package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/campusworks/workstudy/internal/app/domain/job"
	"github.com/campusworks/workstudy/internal/app/storage"
	"github.com/campusworks/workstudy/internal/errors"
	"github.com/campusworks/workstudy/pkg/logger"
)

const (
	maxDescriptionLen = 2000

	// Attempts before a stale compare-and-swap surfaces as Conflict.
	maxFillAttempts = 3
)

// Service manages job postings.
type Service struct {
	store storage.JobStore
	log   *logger.Logger
}

// New constructs a job posting service.
func New(store storage.JobStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("jobs")
	}
	return &Service{store: store, log: log}
}

// Create opens a new posting. It starts ACTIVE with no positions consumed.
func (s *Service) Create(ctx context.Context, spec job.Spec, postedBy string) (job.Posting, error) {
	if err := validateSpec(&spec); err != nil {
		return job.Posting{}, err
	}
	if strings.TrimSpace(postedBy) == "" {
		return job.Posting{}, errors.InvalidInput("posting actor is required")
	}

	created, err := s.store.CreateJob(ctx, job.Posting{
		Title:               spec.Title,
		Description:         spec.Description,
		Department:          spec.Department,
		Location:            spec.Location,
		HourlyRate:          spec.HourlyRate,
		MaxHoursPerWeek:     spec.MaxHoursPerWeek,
		TotalPositions:      spec.TotalPositions,
		FilledPositions:     0,
		ApplicationDeadline: spec.ApplicationDeadline,
		Status:              job.StatusActive,
		PostedBy:            postedBy,
	})
	if err != nil {
		return job.Posting{}, err
	}
	s.log.WithField("job_id", created.ID).
		WithField("department", created.Department).
		Info("job posting created")
	return created, nil
}

// Update replaces the caller-editable fields of a posting. The id, the
// poster, the filled count and the lifecycle status are untouched.
func (s *Service) Update(ctx context.Context, id string, spec job.Spec) (job.Posting, error) {
	if err := validateSpec(&spec); err != nil {
		return job.Posting{}, err
	}

	existing, err := s.store.GetJob(ctx, id)
	if err != nil {
		return job.Posting{}, err
	}
	if spec.TotalPositions < existing.FilledPositions {
		return job.Posting{}, errors.InvalidInput("total positions must not drop below the %d already filled", existing.FilledPositions)
	}

	existing.Title = spec.Title
	existing.Description = spec.Description
	existing.Department = spec.Department
	existing.Location = spec.Location
	existing.HourlyRate = spec.HourlyRate
	existing.MaxHoursPerWeek = spec.MaxHoursPerWeek
	existing.TotalPositions = spec.TotalPositions
	existing.ApplicationDeadline = spec.ApplicationDeadline

	return s.store.UpdateJob(ctx, existing)
}

// Close forces a posting to CLOSED. Closing an already-closed posting is a
// no-op returning the same terminal state.
func (s *Service) Close(ctx context.Context, id string) (job.Posting, error) {
	existing, err := s.store.GetJob(ctx, id)
	if err != nil {
		return job.Posting{}, err
	}
	if existing.Status == job.StatusClosed {
		return existing, nil
	}

	existing.Status = job.StatusClosed
	updated, err := s.store.UpdateJob(ctx, existing)
	if err != nil {
		return job.Posting{}, err
	}
	s.log.WithField("job_id", id).Info("job posting closed")
	return updated, nil
}

// IncrementFilled consumes one position, flipping the posting to FILLED when
// capacity is reached. Concurrent increments are serialized by a
// compare-and-swap on the current filled count, retried a bounded number of
// times before surfacing Conflict. The counter can never pass the total.
func (s *Service) IncrementFilled(ctx context.Context, id string) (job.Posting, error) {
	for attempt := 0; attempt < maxFillAttempts; attempt++ {
		current, err := s.store.GetJob(ctx, id)
		if err != nil {
			return job.Posting{}, err
		}
		if !current.Open() {
			return job.Posting{}, errors.Conflict("job %s has no open positions", id)
		}

		updated, err := s.store.FillPosition(ctx, id, current.FilledPositions)
		if err == nil {
			s.log.WithField("job_id", id).
				WithField("filled_positions", updated.FilledPositions).
				WithField("status", updated.Status).
				Info("position filled")
			return updated, nil
		}
		if !errors.IsCode(err, errors.CodeConflict) {
			return job.Posting{}, err
		}
		// Lost the race against another fill; re-read and try again.
	}
	return job.Posting{}, errors.Conflict("job %s is under concurrent modification", id)
}

// Get returns a posting by id.
func (s *Service) Get(ctx context.Context, id string) (job.Posting, error) {
	return s.store.GetJob(ctx, id)
}

// List returns every posting.
func (s *Service) List(ctx context.Context) ([]job.Posting, error) {
	return s.store.ListJobs(ctx)
}

// ListActive returns postings still accepting applications.
func (s *Service) ListActive(ctx context.Context) ([]job.Posting, error) {
	return s.store.ListJobsByStatus(ctx, job.StatusActive)
}

// ListByDepartment returns postings for one department.
func (s *Service) ListByDepartment(ctx context.Context, department string) ([]job.Posting, error) {
	return s.store.ListJobsByDepartment(ctx, department)
}

// Delete removes a posting.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteJob(ctx, id); err != nil {
		return err
	}
	s.log.WithField("job_id", id).Info("job posting deleted")
	return nil
}

func validateSpec(spec *job.Spec) error {
	spec.Title = strings.TrimSpace(spec.Title)
	spec.Description = strings.TrimSpace(spec.Description)
	spec.Department = strings.TrimSpace(spec.Department)
	spec.Location = strings.TrimSpace(spec.Location)
	spec.ApplicationDeadline = strings.TrimSpace(spec.ApplicationDeadline)

	switch {
	case spec.Title == "":
		return errors.InvalidInput("title is required")
	case spec.Description == "":
		return errors.InvalidInput("description is required")
	case len(spec.Description) > maxDescriptionLen:
		return errors.InvalidInput("description must be at most %d characters", maxDescriptionLen)
	case spec.Department == "":
		return errors.InvalidInput("department is required")
	case spec.Location == "":
		return errors.InvalidInput("location is required")
	case spec.HourlyRate < 0:
		return errors.InvalidInput("hourly rate must not be negative")
	case spec.MaxHoursPerWeek < 1 || spec.MaxHoursPerWeek > 40:
		return errors.InvalidInput("max hours per week must be between 1 and 40")
	case spec.TotalPositions < 1:
		return errors.InvalidInput("total positions must be at least 1")
	case spec.ApplicationDeadline == "":
		return errors.InvalidInput("application deadline is required")
	}

	if _, err := time.Parse("2006-01-02", spec.ApplicationDeadline); err != nil {
		return errors.InvalidInput("application deadline must be formatted as 2006-01-02")
	}
	return nil
}
