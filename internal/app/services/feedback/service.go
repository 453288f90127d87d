// Package feedback manages admin-authored performance ratings.
package feedback

import (
	"context"
	"strings"
	"time"

	"github.com/campusworks/workstudy/internal/app/domain/feedback"
	"github.com/campusworks/workstudy/internal/app/domain/user"
	"github.com/campusworks/workstudy/internal/app/storage"
	"github.com/campusworks/workstudy/internal/errors"
	"github.com/campusworks/workstudy/pkg/logger"
)

const maxCommentsLen = 2000

// Input carries the caller-supplied fields for a new rating.
type Input struct {
	StudentID        string `json:"student_id"`
	JobID            string `json:"job_id"`
	Rating           int    `json:"rating"`
	Comments         string `json:"comments"`
	PerformanceAreas string `json:"performance_areas"`
}

// Service manages feedback records.
type Service struct {
	users storage.UserStore
	jobs  storage.JobStore
	store storage.FeedbackStore
	log   *logger.Logger
}

// New constructs a feedback service.
func New(users storage.UserStore, jobs storage.JobStore, store storage.FeedbackStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("feedback")
	}
	return &Service{users: users, jobs: jobs, store: store, log: log}
}

// Create files an immutable rating against a (student, job) pair. Both sides
// of the pair must exist and the rated account must be a student.
func (s *Service) Create(ctx context.Context, givenBy string, in Input) (feedback.Record, error) {
	in.Comments = strings.TrimSpace(in.Comments)
	in.PerformanceAreas = strings.TrimSpace(in.PerformanceAreas)

	switch {
	case in.StudentID == "":
		return feedback.Record{}, errors.InvalidInput("student id is required")
	case in.JobID == "":
		return feedback.Record{}, errors.InvalidInput("job id is required")
	case in.Rating < feedback.MinRating || in.Rating > feedback.MaxRating:
		return feedback.Record{}, errors.InvalidInput("rating must be between %d and %d", feedback.MinRating, feedback.MaxRating)
	case in.Comments == "":
		return feedback.Record{}, errors.InvalidInput("comments are required")
	case len(in.Comments) > maxCommentsLen:
		return feedback.Record{}, errors.InvalidInput("comments must be at most %d characters", maxCommentsLen)
	}

	student, err := s.users.GetUser(ctx, in.StudentID)
	if err != nil {
		return feedback.Record{}, err
	}
	if student.Role != user.RoleStudent {
		return feedback.Record{}, errors.InvalidInput("feedback may only target student accounts")
	}
	if _, err := s.jobs.GetJob(ctx, in.JobID); err != nil {
		return feedback.Record{}, err
	}

	created, err := s.store.CreateFeedback(ctx, feedback.Record{
		StudentID:        in.StudentID,
		JobID:            in.JobID,
		GivenBy:          givenBy,
		Rating:           in.Rating,
		Comments:         in.Comments,
		PerformanceAreas: in.PerformanceAreas,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		return feedback.Record{}, err
	}

	s.log.WithField("feedback_id", created.ID).
		WithField("student_id", in.StudentID).
		WithField("job_id", in.JobID).
		WithField("rating", in.Rating).
		Info("feedback recorded")
	return created, nil
}

// Get returns a rating by id.
func (s *Service) Get(ctx context.Context, id string) (feedback.Record, error) {
	return s.store.GetFeedback(ctx, id)
}

// List returns every rating.
func (s *Service) List(ctx context.Context) ([]feedback.Record, error) {
	return s.store.ListFeedback(ctx)
}

// ListByStudent returns the ratings given to one student.
func (s *Service) ListByStudent(ctx context.Context, studentID string) ([]feedback.Record, error) {
	return s.store.ListFeedbackByStudent(ctx, studentID)
}

// ListByJob returns the ratings given on one posting.
func (s *Service) ListByJob(ctx context.Context, jobID string) ([]feedback.Record, error) {
	return s.store.ListFeedbackByJob(ctx, jobID)
}

// Delete removes a rating. Records are immutable, so a correction is delete
// plus recreate.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteFeedback(ctx, id); err != nil {
		return err
	}
	s.log.WithField("feedback_id", id).Info("feedback deleted")
	return nil
}
