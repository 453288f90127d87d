package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/campusworks/workstudy/internal/app/domain/application"
	"github.com/campusworks/workstudy/internal/app/domain/feedback"
	"github.com/campusworks/workstudy/internal/app/domain/job"
	"github.com/campusworks/workstudy/internal/app/domain/user"
	"github.com/campusworks/workstudy/internal/app/domain/workhours"
	"github.com/campusworks/workstudy/internal/app/storage/memory"
)

func TestService_Dashboards(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := New(store, store, store, store, store, nil)

	student, err := store.CreateUser(ctx, user.User{
		Username: "jdoe", Email: "jdoe@campus.edu", FullName: "Jordan Doe",
		Role: user.RoleStudent, Active: true,
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	if _, err := store.CreateUser(ctx, user.User{
		Username: "boss", Email: "boss@campus.edu", FullName: "The Boss",
		Role: user.RoleAdmin, Active: true,
	}); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	active, err := store.CreateJob(ctx, job.Posting{
		Title: "Tutor", Description: "d", Department: "Math", Location: "LC",
		TotalPositions: 1, ApplicationDeadline: "2026-12-01",
		Status: job.StatusActive, PostedBy: "admin-1",
	})
	if err != nil {
		t.Fatalf("create active job: %v", err)
	}
	if _, err := store.CreateJob(ctx, job.Posting{
		Title: "Archivist", Description: "d", Department: "Library", Location: "ML",
		TotalPositions: 1, ApplicationDeadline: "2026-12-01",
		Status: job.StatusClosed, PostedBy: "admin-1",
	}); err != nil {
		t.Fatalf("create closed job: %v", err)
	}

	if _, err := store.CreateApplication(ctx, application.Record{
		StudentID: student.ID, JobID: active.ID, CoverLetter: "hi",
		Status: application.StatusPending, AppliedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create application: %v", err)
	}

	for _, e := range []workhours.Entry{
		{StudentID: student.ID, JobID: active.ID, WorkDate: "2026-03-02", StartTime: "09:00", EndTime: "12:30", HoursWorked: 3.50, Status: workhours.StatusApproved},
		{StudentID: student.ID, JobID: active.ID, WorkDate: "2026-03-03", StartTime: "09:00", EndTime: "11:00", HoursWorked: 2.00, Status: workhours.StatusPending},
	} {
		if _, err := store.CreateWorkHours(ctx, e); err != nil {
			t.Fatalf("create work hours: %v", err)
		}
	}

	if _, err := store.CreateFeedback(ctx, feedback.Record{
		StudentID: student.ID, JobID: active.ID, GivenBy: "admin-1",
		Rating: 4, Comments: "good",
	}); err != nil {
		t.Fatalf("create feedback: %v", err)
	}

	admin, err := svc.Admin(ctx)
	if err != nil {
		t.Fatalf("admin dashboard: %v", err)
	}
	want := AdminDashboard{
		TotalStudents:       1,
		TotalJobs:           2,
		ActiveJobs:          1,
		TotalApplications:   1,
		PendingApplications: 1,
		TotalApprovedHours:  3.50,
	}
	if admin != want {
		t.Fatalf("admin dashboard = %+v, want %+v", admin, want)
	}

	mine, err := svc.Student(ctx, student.ID)
	if err != nil {
		t.Fatalf("student dashboard: %v", err)
	}
	wantMine := StudentDashboard{
		MyApplications:  1,
		MyApprovedHours: 3.50,
		MyFeedback:      1,
		AvailableJobs:   1,
	}
	if mine != wantMine {
		t.Fatalf("student dashboard = %+v, want %+v", mine, wantMine)
	}
}
