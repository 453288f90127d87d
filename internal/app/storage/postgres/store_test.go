package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/campusworks/workstudy/internal/app/domain/application"
	"github.com/campusworks/workstudy/internal/app/domain/job"
	"github.com/campusworks/workstudy/internal/app/domain/user"
	"github.com/campusworks/workstudy/internal/app/domain/workhours"
	"github.com/campusworks/workstudy/internal/errors"
)

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	store := New(db)

	admin, err := store.CreateUser(ctx, user.User{
		Username: "it-admin", Email: "it-admin@campus.edu", FullName: "IT Admin",
		PasswordHash: "x", Role: user.RoleAdmin, Active: true,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	student, err := store.CreateUser(ctx, user.User{
		Username: "it-student", Email: "it-student@campus.edu", FullName: "IT Student",
		PasswordHash: "x", Role: user.RoleStudent, Active: true,
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}

	posting, err := store.CreateJob(ctx, job.Posting{
		Title: "Integration Job", Description: "d", Department: "IT", Location: "L",
		HourlyRate: 12, MaxHoursPerWeek: 10, TotalPositions: 1,
		ApplicationDeadline: "2026-12-01", Status: job.StatusActive, PostedBy: admin.ID,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	rec, err := store.CreateApplication(ctx, application.Record{
		StudentID: student.ID, JobID: posting.ID, CoverLetter: "hi",
		Status: application.StatusPending, AppliedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}

	approved, filled, err := store.ApproveApplication(ctx, rec.ID, admin.ID, "ok", time.Now().UTC())
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != application.StatusApproved || filled.Status != job.StatusFilled {
		t.Fatalf("unexpected approval result %+v %+v", approved, filled)
	}

	entry, err := store.CreateWorkHours(ctx, workhours.Entry{
		StudentID: student.ID, JobID: posting.ID, WorkDate: "2026-03-02",
		StartTime: "09:00", EndTime: "12:30", HoursWorked: 3.50,
		Status: workhours.StatusPending,
	})
	if err != nil {
		t.Fatalf("create work hours: %v", err)
	}
	if err := store.DeleteWorkHours(ctx, entry.ID); err != nil {
		t.Fatalf("delete work hours: %v", err)
	}
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return New(db), mock, func() { db.Close() }
}

func TestFillPosition_GuardedUpdate(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec(`UPDATE job_postings`).
		WithArgs("job-1", 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .+ FROM job_postings WHERE id = \$1`).
		WithArgs("job-1").
		WillReturnRows(jobRows("job-1", 1, 1, job.StatusFilled))

	posting, err := store.FillPosition(context.Background(), "job-1", 0)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if posting.FilledPositions != 1 || posting.Status != job.StatusFilled {
		t.Fatalf("unexpected posting %+v", posting)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFillPosition_StaleExpectationConflicts(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	// Guard matches no rows, then the current row shows an open, active job:
	// the expectation was stale.
	mock.ExpectExec(`UPDATE job_postings`).
		WithArgs("job-1", 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ FROM job_postings WHERE id = \$1`).
		WithArgs("job-1").
		WillReturnRows(jobRows("job-1", 1, 3, job.StatusActive))

	if _, err := store.FillPosition(context.Background(), "job-1", 0); !errors.IsCode(err, errors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFillPosition_ExhaustedConflicts(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec(`UPDATE job_postings`).
		WithArgs("job-1", 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ FROM job_postings WHERE id = \$1`).
		WithArgs("job-1").
		WillReturnRows(jobRows("job-1", 2, 2, job.StatusFilled))

	if _, err := store.FillPosition(context.Background(), "job-1", 2); !errors.IsCode(err, errors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery(`SELECT .+ FROM job_postings WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := store.GetJob(context.Background(), "missing"); !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApproveApplication_RollsBackWhenFull(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM applications WHERE id = \$1 FOR UPDATE`).
		WithArgs("app-1").
		WillReturnRows(applicationRows("app-1", "student-1", "job-1", application.StatusPending))
	mock.ExpectQuery(`SELECT .+ FROM job_postings WHERE id = \$1 FOR UPDATE`).
		WithArgs("job-1").
		WillReturnRows(jobRows("job-1", 1, 1, job.StatusFilled))
	mock.ExpectRollback()

	if _, _, err := store.ApproveApplication(context.Background(), "app-1", "admin-1", "", time.Now().UTC()); !errors.IsCode(err, errors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApproveApplication_Commits(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM applications WHERE id = \$1 FOR UPDATE`).
		WithArgs("app-1").
		WillReturnRows(applicationRows("app-1", "student-1", "job-1", application.StatusPending))
	mock.ExpectQuery(`SELECT .+ FROM job_postings WHERE id = \$1 FOR UPDATE`).
		WithArgs("job-1").
		WillReturnRows(jobRows("job-1", 0, 1, job.StatusActive))
	mock.ExpectExec(`UPDATE job_postings SET filled_positions`).
		WithArgs("job-1", 1, string(job.StatusFilled), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE applications SET status`).
		WithArgs("app-1", string(application.StatusApproved), "ok", sqlmock.AnyArg(), "admin-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, posting, err := store.ApproveApplication(context.Background(), "app-1", "admin-1", "ok", time.Now().UTC())
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if rec.Status != application.StatusApproved || posting.Status != job.StatusFilled {
		t.Fatalf("unexpected result %+v %+v", rec, posting)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateUser_UniqueViolationMapsToConflict(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	if _, err := store.CreateUser(context.Background(), user.User{Username: "jdoe", Email: "jdoe@campus.edu"}); !errors.IsCode(err, errors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func jobRows(id string, filled, total int, status job.Status) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "title", "description", "department", "location", "hourly_rate",
		"max_hours_per_week", "total_positions", "filled_positions",
		"application_deadline", "status", "posted_by", "created_at", "updated_at",
	}).AddRow(id, "Job", "d", "Dept", "Loc", 12.5, 10, total, filled, "2026-12-01", string(status), "admin-1", now, now)
}

func applicationRows(id, studentID, jobID string, status application.Status) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "student_id", "job_id", "cover_letter", "resume_url", "status",
		"admin_notes", "applied_at", "reviewed_at", "reviewed_by",
	}).AddRow(id, studentID, jobID, "hi", "", string(status), nil, now, nil, nil)
}
