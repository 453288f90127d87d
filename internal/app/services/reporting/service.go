// Package reporting aggregates ledger state into dashboard summaries.
package reporting

import (
	"context"
	"math"

	"github.com/campusworks/workstudy/internal/app/domain/application"
	"github.com/campusworks/workstudy/internal/app/domain/job"
	"github.com/campusworks/workstudy/internal/app/domain/user"
	"github.com/campusworks/workstudy/internal/app/domain/workhours"
	"github.com/campusworks/workstudy/internal/app/storage"
	"github.com/campusworks/workstudy/pkg/logger"
)

// AdminDashboard is the program-wide summary shown to admins.
type AdminDashboard struct {
	TotalStudents       int     `json:"total_students"`
	TotalJobs           int     `json:"total_jobs"`
	ActiveJobs          int     `json:"active_jobs"`
	TotalApplications   int     `json:"total_applications"`
	PendingApplications int     `json:"pending_applications"`
	TotalApprovedHours  float64 `json:"total_approved_hours"`
}

// StudentDashboard is the personal summary shown to one student.
type StudentDashboard struct {
	MyApplications  int     `json:"my_applications"`
	MyApprovedHours float64 `json:"my_approved_hours"`
	MyFeedback      int     `json:"my_feedback"`
	AvailableJobs   int     `json:"available_jobs"`
}

// Service computes dashboard summaries from the stores.
type Service struct {
	users        storage.UserStore
	jobs         storage.JobStore
	applications storage.ApplicationStore
	hours        storage.WorkHoursStore
	feedback     storage.FeedbackStore
	log          *logger.Logger
}

// New constructs a reporting service.
func New(users storage.UserStore, jobs storage.JobStore, applications storage.ApplicationStore, hours storage.WorkHoursStore, feedback storage.FeedbackStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reporting")
	}
	return &Service{
		users:        users,
		jobs:         jobs,
		applications: applications,
		hours:        hours,
		feedback:     feedback,
		log:          log,
	}
}

// Admin builds the program-wide dashboard.
func (s *Service) Admin(ctx context.Context) (AdminDashboard, error) {
	students, err := s.users.ListUsersByRole(ctx, user.RoleStudent)
	if err != nil {
		return AdminDashboard{}, err
	}
	allJobs, err := s.jobs.ListJobs(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}
	activeJobs, err := s.jobs.ListJobsByStatus(ctx, job.StatusActive)
	if err != nil {
		return AdminDashboard{}, err
	}
	allApps, err := s.applications.ListApplications(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}
	pendingApps, err := s.applications.ListApplicationsByStatus(ctx, application.StatusPending)
	if err != nil {
		return AdminDashboard{}, err
	}
	approved, err := s.hours.ListWorkHoursByStatus(ctx, workhours.StatusApproved)
	if err != nil {
		return AdminDashboard{}, err
	}

	return AdminDashboard{
		TotalStudents:       len(students),
		TotalJobs:           len(allJobs),
		ActiveJobs:          len(activeJobs),
		TotalApplications:   len(allApps),
		PendingApplications: len(pendingApps),
		TotalApprovedHours:  sumHours(approved),
	}, nil
}

// Student builds the personal dashboard for one student.
func (s *Service) Student(ctx context.Context, studentID string) (StudentDashboard, error) {
	apps, err := s.applications.ListApplicationsByStudent(ctx, studentID)
	if err != nil {
		return StudentDashboard{}, err
	}
	entries, err := s.hours.ListWorkHoursByStudent(ctx, studentID)
	if err != nil {
		return StudentDashboard{}, err
	}
	var approved []workhours.Entry
	for _, e := range entries {
		if e.Status == workhours.StatusApproved {
			approved = append(approved, e)
		}
	}
	ratings, err := s.feedback.ListFeedbackByStudent(ctx, studentID)
	if err != nil {
		return StudentDashboard{}, err
	}
	activeJobs, err := s.jobs.ListJobsByStatus(ctx, job.StatusActive)
	if err != nil {
		return StudentDashboard{}, err
	}

	return StudentDashboard{
		MyApplications:  len(apps),
		MyApprovedHours: sumHours(approved),
		MyFeedback:      len(ratings),
		AvailableJobs:   len(activeJobs),
	}, nil
}

// sumHours accumulates in hundredths of an hour so repeated float addition
// cannot drift the total.
func sumHours(entries []workhours.Entry) float64 {
	var hundredths int64
	for _, e := range entries {
		hundredths += int64(math.Round(e.HoursWorked * 100))
	}
	return float64(hundredths) / 100
}
