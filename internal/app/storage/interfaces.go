package storage

import (
	"context"
	"time"

	"github.com/campusworks/workstudy/internal/app/domain/application"
	"github.com/campusworks/workstudy/internal/app/domain/feedback"
	"github.com/campusworks/workstudy/internal/app/domain/job"
	"github.com/campusworks/workstudy/internal/app/domain/user"
	"github.com/campusworks/workstudy/internal/app/domain/workhours"
)

// UserStore persists identity records.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	ListUsersByRole(ctx context.Context, role user.Role) ([]user.User, error)
}

// JobStore persists job postings and owns the filled-position counter.
//
// FillPosition is a compare-and-swap: it consumes one position only if the
// stored filled count still equals expectedFilled, flipping the posting to
// FILLED when capacity is reached. A stale expectation or an exhausted
// posting fails with Conflict and changes nothing.
type JobStore interface {
	CreateJob(ctx context.Context, p job.Posting) (job.Posting, error)
	UpdateJob(ctx context.Context, p job.Posting) (job.Posting, error)
	GetJob(ctx context.Context, id string) (job.Posting, error)
	ListJobs(ctx context.Context) ([]job.Posting, error)
	ListJobsByStatus(ctx context.Context, status job.Status) ([]job.Posting, error)
	ListJobsByDepartment(ctx context.Context, department string) ([]job.Posting, error)
	FillPosition(ctx context.Context, id string, expectedFilled int) (job.Posting, error)
	DeleteJob(ctx context.Context, id string) error
}

// ApplicationStore persists student applications.
//
// ApproveApplication is the atomic unit-of-work for an approval: it sets the
// application to APPROVED (with reviewer, notes and timestamp) and increments
// the job's filled count in a single transaction. Either both writes land or
// neither does. It fails with InvalidState when the application is not
// PENDING and with Conflict when the job has no open positions.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, rec application.Record) (application.Record, error)
	UpdateApplication(ctx context.Context, rec application.Record) (application.Record, error)
	GetApplication(ctx context.Context, id string) (application.Record, error)
	GetApplicationByStudentAndJob(ctx context.Context, studentID, jobID string) (application.Record, error)
	ListApplications(ctx context.Context) ([]application.Record, error)
	ListApplicationsByStudent(ctx context.Context, studentID string) ([]application.Record, error)
	ListApplicationsByJob(ctx context.Context, jobID string) ([]application.Record, error)
	ListApplicationsByStatus(ctx context.Context, status application.Status) ([]application.Record, error)
	ApproveApplication(ctx context.Context, id, reviewerID, notes string, reviewedAt time.Time) (application.Record, job.Posting, error)
}

// WorkHoursStore persists logged time entries. The date-range lookup is
// inclusive on both ends.
type WorkHoursStore interface {
	CreateWorkHours(ctx context.Context, entry workhours.Entry) (workhours.Entry, error)
	UpdateWorkHours(ctx context.Context, entry workhours.Entry) (workhours.Entry, error)
	GetWorkHours(ctx context.Context, id string) (workhours.Entry, error)
	ListWorkHours(ctx context.Context) ([]workhours.Entry, error)
	ListWorkHoursByStudent(ctx context.Context, studentID string) ([]workhours.Entry, error)
	ListWorkHoursByJob(ctx context.Context, jobID string) ([]workhours.Entry, error)
	ListWorkHoursByStudentAndJob(ctx context.Context, studentID, jobID string) ([]workhours.Entry, error)
	ListWorkHoursByStatus(ctx context.Context, status workhours.Status) ([]workhours.Entry, error)
	ListWorkHoursByStudentAndDateRange(ctx context.Context, studentID, startDate, endDate string) ([]workhours.Entry, error)
	DeleteWorkHours(ctx context.Context, id string) error
}

// FeedbackStore persists append-only feedback records.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, rec feedback.Record) (feedback.Record, error)
	GetFeedback(ctx context.Context, id string) (feedback.Record, error)
	ListFeedback(ctx context.Context) ([]feedback.Record, error)
	ListFeedbackByStudent(ctx context.Context, studentID string) ([]feedback.Record, error)
	ListFeedbackByJob(ctx context.Context, jobID string) ([]feedback.Record, error)
	DeleteFeedback(ctx context.Context, id string) error
}
