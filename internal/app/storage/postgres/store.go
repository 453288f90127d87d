// Package postgres implements the storage interfaces on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/campusworks/workstudy/internal/app/domain/application"
	"github.com/campusworks/workstudy/internal/app/domain/feedback"
	"github.com/campusworks/workstudy/internal/app/domain/job"
	"github.com/campusworks/workstudy/internal/app/domain/user"
	"github.com/campusworks/workstudy/internal/app/domain/workhours"
	"github.com/campusworks/workstudy/internal/app/storage"
	apperrors "github.com/campusworks/workstudy/internal/errors"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.JobStore = (*Store)(nil)
var _ storage.ApplicationStore = (*Store)(nil)
var _ storage.WorkHoursStore = (*Store)(nil)
var _ storage.FeedbackStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, email, full_name, phone, department, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, u.ID, u.Username, u.PasswordHash, u.Email, u.FullName, u.Phone, u.Department, u.Role, u.Active, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, apperrors.Conflict("username or email already registered")
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	u.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = $2, full_name = $3, phone = $4, department = $5, active = $6, updated_at = $7
		WHERE id = $1
	`, u.ID, u.Email, u.FullName, u.Phone, u.Department, u.Active, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, apperrors.Conflict("email already registered")
		}
		return user.User{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, apperrors.NotFound("user %s not found", u.ID)
	}
	return u, nil
}

const userColumns = `id, username, password_hash, email, full_name, phone, department, role, active, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FullName, &u.Phone, &u.Department, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) getUserWhere(ctx context.Context, clause, arg, what string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+clause, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, apperrors.NotFound("user %s not found", what)
	}
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.getUserWhere(ctx, "id = $1", id, id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return s.getUserWhere(ctx, "username = $1", username, username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.getUserWhere(ctx, "email = $1", email, email)
}

func (s *Store) ListUsersByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// --- JobStore ---------------------------------------------------------------

const jobColumns = `id, title, description, department, location, hourly_rate, max_hours_per_week, total_positions, filled_positions, application_deadline, status, posted_by, created_at, updated_at`

func scanJob(row interface{ Scan(...interface{}) error }) (job.Posting, error) {
	var p job.Posting
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Department, &p.Location, &p.HourlyRate, &p.MaxHoursPerWeek, &p.TotalPositions, &p.FilledPositions, &p.ApplicationDeadline, &p.Status, &p.PostedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) CreateJob(ctx context.Context, p job.Posting) (job.Posting, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_postings (id, title, description, department, location, hourly_rate, max_hours_per_week, total_positions, filled_positions, application_deadline, status, posted_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, p.ID, p.Title, p.Description, p.Department, p.Location, p.HourlyRate, p.MaxHoursPerWeek, p.TotalPositions, p.FilledPositions, p.ApplicationDeadline, p.Status, p.PostedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return job.Posting{}, err
	}
	return p, nil
}

func (s *Store) UpdateJob(ctx context.Context, p job.Posting) (job.Posting, error) {
	p.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE job_postings
		SET title = $2, description = $3, department = $4, location = $5, hourly_rate = $6,
		    max_hours_per_week = $7, total_positions = $8, application_deadline = $9, status = $10, updated_at = $11
		WHERE id = $1
	`, p.ID, p.Title, p.Description, p.Department, p.Location, p.HourlyRate, p.MaxHoursPerWeek, p.TotalPositions, p.ApplicationDeadline, p.Status, p.UpdatedAt)
	if err != nil {
		return job.Posting{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return job.Posting{}, apperrors.NotFound("job %s not found", p.ID)
	}
	return s.GetJob(ctx, p.ID)
}

func (s *Store) GetJob(ctx context.Context, id string) (job.Posting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM job_postings WHERE id = $1`, id)
	p, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return job.Posting{}, apperrors.NotFound("job %s not found", id)
	}
	if err != nil {
		return job.Posting{}, err
	}
	return p, nil
}

func (s *Store) listJobs(ctx context.Context, query string, args ...interface{}) ([]job.Posting, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []job.Posting
	for rows.Next() {
		p, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListJobs(ctx context.Context) ([]job.Posting, error) {
	return s.listJobs(ctx, `SELECT `+jobColumns+` FROM job_postings ORDER BY created_at DESC`)
}

func (s *Store) ListJobsByStatus(ctx context.Context, status job.Status) ([]job.Posting, error) {
	return s.listJobs(ctx, `SELECT `+jobColumns+` FROM job_postings WHERE status = $1 ORDER BY created_at DESC`, status)
}

func (s *Store) ListJobsByDepartment(ctx context.Context, department string) ([]job.Posting, error) {
	return s.listJobs(ctx, `SELECT `+jobColumns+` FROM job_postings WHERE department = $1 ORDER BY created_at DESC`, department)
}

// FillPosition consumes one position with a guarded update: the write lands
// only if the stored filled count still matches the caller's expectation and
// the posting is still open.
func (s *Store) FillPosition(ctx context.Context, id string, expectedFilled int) (job.Posting, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE job_postings
		SET filled_positions = filled_positions + 1,
		    status = CASE WHEN filled_positions + 1 >= total_positions THEN 'FILLED' ELSE status END,
		    updated_at = $3
		WHERE id = $1
		  AND filled_positions = $2
		  AND status = 'ACTIVE'
		  AND filled_positions < total_positions
	`, id, expectedFilled, time.Now().UTC())
	if err != nil {
		return job.Posting{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		current, err := s.GetJob(ctx, id)
		if err != nil {
			return job.Posting{}, err
		}
		if current.Status != job.StatusActive || !current.Open() {
			return job.Posting{}, apperrors.Conflict("job %s has no open positions", id)
		}
		return job.Posting{}, apperrors.Conflict("job %s was modified concurrently", id)
	}
	return s.GetJob(ctx, id)
}

func (s *Store) DeleteJob(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("job %s not found", id)
	}
	return nil
}

// --- ApplicationStore -------------------------------------------------------

const applicationColumns = `id, student_id, job_id, cover_letter, resume_url, status, admin_notes, applied_at, reviewed_at, reviewed_by`

func scanApplication(row interface{ Scan(...interface{}) error }) (application.Record, error) {
	var (
		rec        application.Record
		notes      sql.NullString
		reviewedBy sql.NullString
		reviewedAt sql.NullTime
	)
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.JobID, &rec.CoverLetter, &rec.ResumeURL, &rec.Status, &notes, &rec.AppliedAt, &reviewedAt, &reviewedBy)
	if err != nil {
		return application.Record{}, err
	}
	rec.AdminNotes = notes.String
	rec.ReviewedBy = reviewedBy.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		rec.ReviewedAt = &t
	}
	return rec, nil
}

func (s *Store) CreateApplication(ctx context.Context, rec application.Record) (application.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.AppliedAt.IsZero() {
		rec.AppliedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (id, student_id, job_id, cover_letter, resume_url, status, admin_notes, applied_at, reviewed_at, reviewed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rec.ID, rec.StudentID, rec.JobID, rec.CoverLetter, rec.ResumeURL, rec.Status, rec.AdminNotes, rec.AppliedAt, rec.ReviewedAt, rec.ReviewedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return application.Record{}, apperrors.Conflict("student %s has already applied for job %s", rec.StudentID, rec.JobID)
		}
		return application.Record{}, err
	}
	return rec, nil
}

func (s *Store) UpdateApplication(ctx context.Context, rec application.Record) (application.Record, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, admin_notes = $3, reviewed_at = $4, reviewed_by = $5
		WHERE id = $1
	`, rec.ID, rec.Status, rec.AdminNotes, rec.ReviewedAt, rec.ReviewedBy)
	if err != nil {
		return application.Record{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return application.Record{}, apperrors.NotFound("application %s not found", rec.ID)
	}
	return rec, nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (application.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	rec, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return application.Record{}, apperrors.NotFound("application %s not found", id)
	}
	if err != nil {
		return application.Record{}, err
	}
	return rec, nil
}

func (s *Store) GetApplicationByStudentAndJob(ctx context.Context, studentID, jobID string) (application.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE student_id = $1 AND job_id = $2`, studentID, jobID)
	rec, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return application.Record{}, apperrors.NotFound("application for student %s and job %s not found", studentID, jobID)
	}
	if err != nil {
		return application.Record{}, err
	}
	return rec, nil
}

func (s *Store) listApplications(ctx context.Context, query string, args ...interface{}) ([]application.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []application.Record
	for rows.Next() {
		rec, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) ListApplications(ctx context.Context) ([]application.Record, error) {
	return s.listApplications(ctx, `SELECT `+applicationColumns+` FROM applications ORDER BY applied_at DESC`)
}

func (s *Store) ListApplicationsByStudent(ctx context.Context, studentID string) ([]application.Record, error) {
	return s.listApplications(ctx, `SELECT `+applicationColumns+` FROM applications WHERE student_id = $1 ORDER BY applied_at DESC`, studentID)
}

func (s *Store) ListApplicationsByJob(ctx context.Context, jobID string) ([]application.Record, error) {
	return s.listApplications(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY applied_at DESC`, jobID)
}

func (s *Store) ListApplicationsByStatus(ctx context.Context, status application.Status) ([]application.Record, error) {
	return s.listApplications(ctx, `SELECT `+applicationColumns+` FROM applications WHERE status = $1 ORDER BY applied_at DESC`, status)
}

// ApproveApplication runs the approval and the position fill inside one
// transaction, locking both rows first so concurrent approvals serialize.
func (s *Store) ApproveApplication(ctx context.Context, id, reviewerID, notes string, reviewedAt time.Time) (application.Record, job.Posting, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return application.Record{}, job.Posting{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id)
	rec, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return application.Record{}, job.Posting{}, apperrors.NotFound("application %s not found", id)
	}
	if err != nil {
		return application.Record{}, job.Posting{}, err
	}
	if rec.Status.Terminal() {
		return application.Record{}, job.Posting{}, apperrors.InvalidState("application %s is already %s", id, rec.Status)
	}

	row = tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM job_postings WHERE id = $1 FOR UPDATE`, rec.JobID)
	posting, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return application.Record{}, job.Posting{}, apperrors.NotFound("job %s not found", rec.JobID)
	}
	if err != nil {
		return application.Record{}, job.Posting{}, err
	}
	if posting.Status != job.StatusActive || !posting.Open() {
		return application.Record{}, job.Posting{}, apperrors.Conflict("job %s has no open positions", posting.ID)
	}

	posting.FilledPositions++
	if !posting.Open() {
		posting.Status = job.StatusFilled
	}
	posting.UpdatedAt = time.Now().UTC()

	if _, err := tx.ExecContext(ctx, `
		UPDATE job_postings SET filled_positions = $2, status = $3, updated_at = $4 WHERE id = $1
	`, posting.ID, posting.FilledPositions, posting.Status, posting.UpdatedAt); err != nil {
		return application.Record{}, job.Posting{}, err
	}

	rec.Status = application.StatusApproved
	rec.AdminNotes = notes
	rec.ReviewedBy = reviewerID
	rec.ReviewedAt = &reviewedAt

	if _, err := tx.ExecContext(ctx, `
		UPDATE applications SET status = $2, admin_notes = $3, reviewed_at = $4, reviewed_by = $5 WHERE id = $1
	`, rec.ID, rec.Status, rec.AdminNotes, rec.ReviewedAt, rec.ReviewedBy); err != nil {
		return application.Record{}, job.Posting{}, err
	}

	if err := tx.Commit(); err != nil {
		return application.Record{}, job.Posting{}, err
	}
	return rec, posting, nil
}

// --- WorkHoursStore ---------------------------------------------------------

const workHoursColumns = `id, student_id, job_id, work_date, start_time, end_time, hours_worked, description, status, supervisor_notes, approved_by, approved_at, created_at`

func scanWorkHours(row interface{ Scan(...interface{}) error }) (workhours.Entry, error) {
	var (
		e          workhours.Entry
		notes      sql.NullString
		approvedBy sql.NullString
		approvedAt sql.NullTime
	)
	err := row.Scan(&e.ID, &e.StudentID, &e.JobID, &e.WorkDate, &e.StartTime, &e.EndTime, &e.HoursWorked, &e.Description, &e.Status, &notes, &approvedBy, &approvedAt, &e.CreatedAt)
	if err != nil {
		return workhours.Entry{}, err
	}
	e.SupervisorNotes = notes.String
	e.ApprovedBy = approvedBy.String
	if approvedAt.Valid {
		t := approvedAt.Time
		e.ApprovedAt = &t
	}
	return e, nil
}

func (s *Store) CreateWorkHours(ctx context.Context, entry workhours.Entry) (workhours.Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_hours (id, student_id, job_id, work_date, start_time, end_time, hours_worked, description, status, supervisor_notes, approved_by, approved_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, entry.ID, entry.StudentID, entry.JobID, entry.WorkDate, entry.StartTime, entry.EndTime, entry.HoursWorked, entry.Description, entry.Status, entry.SupervisorNotes, entry.ApprovedBy, entry.ApprovedAt, entry.CreatedAt)
	if err != nil {
		return workhours.Entry{}, err
	}
	return entry, nil
}

func (s *Store) UpdateWorkHours(ctx context.Context, entry workhours.Entry) (workhours.Entry, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE work_hours
		SET job_id = $2, work_date = $3, start_time = $4, end_time = $5, hours_worked = $6,
		    description = $7, status = $8, supervisor_notes = $9, approved_by = $10, approved_at = $11
		WHERE id = $1
	`, entry.ID, entry.JobID, entry.WorkDate, entry.StartTime, entry.EndTime, entry.HoursWorked, entry.Description, entry.Status, entry.SupervisorNotes, entry.ApprovedBy, entry.ApprovedAt)
	if err != nil {
		return workhours.Entry{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return workhours.Entry{}, apperrors.NotFound("work hours entry %s not found", entry.ID)
	}
	return entry, nil
}

func (s *Store) GetWorkHours(ctx context.Context, id string) (workhours.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+workHoursColumns+` FROM work_hours WHERE id = $1`, id)
	entry, err := scanWorkHours(row)
	if errors.Is(err, sql.ErrNoRows) {
		return workhours.Entry{}, apperrors.NotFound("work hours entry %s not found", id)
	}
	if err != nil {
		return workhours.Entry{}, err
	}
	return entry, nil
}

func (s *Store) listWorkHours(ctx context.Context, query string, args ...interface{}) ([]workhours.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []workhours.Entry
	for rows.Next() {
		entry, err := scanWorkHours(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) ListWorkHours(ctx context.Context) ([]workhours.Entry, error) {
	return s.listWorkHours(ctx, `SELECT `+workHoursColumns+` FROM work_hours ORDER BY work_date DESC`)
}

func (s *Store) ListWorkHoursByStudent(ctx context.Context, studentID string) ([]workhours.Entry, error) {
	return s.listWorkHours(ctx, `SELECT `+workHoursColumns+` FROM work_hours WHERE student_id = $1 ORDER BY work_date DESC`, studentID)
}

func (s *Store) ListWorkHoursByJob(ctx context.Context, jobID string) ([]workhours.Entry, error) {
	return s.listWorkHours(ctx, `SELECT `+workHoursColumns+` FROM work_hours WHERE job_id = $1 ORDER BY work_date DESC`, jobID)
}

func (s *Store) ListWorkHoursByStudentAndJob(ctx context.Context, studentID, jobID string) ([]workhours.Entry, error) {
	return s.listWorkHours(ctx, `SELECT `+workHoursColumns+` FROM work_hours WHERE student_id = $1 AND job_id = $2 ORDER BY work_date DESC`, studentID, jobID)
}

func (s *Store) ListWorkHoursByStatus(ctx context.Context, status workhours.Status) ([]workhours.Entry, error) {
	return s.listWorkHours(ctx, `SELECT `+workHoursColumns+` FROM work_hours WHERE status = $1 ORDER BY work_date DESC`, status)
}

func (s *Store) ListWorkHoursByStudentAndDateRange(ctx context.Context, studentID, startDate, endDate string) ([]workhours.Entry, error) {
	return s.listWorkHours(ctx, `
		SELECT `+workHoursColumns+` FROM work_hours
		WHERE student_id = $1 AND work_date >= $2 AND work_date <= $3
		ORDER BY work_date
	`, studentID, startDate, endDate)
}

func (s *Store) DeleteWorkHours(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM work_hours WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("work hours entry %s not found", id)
	}
	return nil
}

// --- FeedbackStore ----------------------------------------------------------

const feedbackColumns = `id, student_id, job_id, given_by, rating, comments, performance_areas, created_at`

func scanFeedback(row interface{ Scan(...interface{}) error }) (feedback.Record, error) {
	var (
		rec   feedback.Record
		areas sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.JobID, &rec.GivenBy, &rec.Rating, &rec.Comments, &areas, &rec.CreatedAt)
	if err != nil {
		return feedback.Record{}, err
	}
	rec.PerformanceAreas = areas.String
	return rec, nil
}

func (s *Store) CreateFeedback(ctx context.Context, rec feedback.Record) (feedback.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, student_id, job_id, given_by, rating, comments, performance_areas, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.StudentID, rec.JobID, rec.GivenBy, rec.Rating, rec.Comments, rec.PerformanceAreas, rec.CreatedAt)
	if err != nil {
		return feedback.Record{}, err
	}
	return rec, nil
}

func (s *Store) GetFeedback(ctx context.Context, id string) (feedback.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE id = $1`, id)
	rec, err := scanFeedback(row)
	if errors.Is(err, sql.ErrNoRows) {
		return feedback.Record{}, apperrors.NotFound("feedback %s not found", id)
	}
	if err != nil {
		return feedback.Record{}, err
	}
	return rec, nil
}

func (s *Store) listFeedback(ctx context.Context, query string, args ...interface{}) ([]feedback.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []feedback.Record
	for rows.Next() {
		rec, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) ListFeedback(ctx context.Context) ([]feedback.Record, error) {
	return s.listFeedback(ctx, `SELECT `+feedbackColumns+` FROM feedback ORDER BY created_at DESC`)
}

func (s *Store) ListFeedbackByStudent(ctx context.Context, studentID string) ([]feedback.Record, error) {
	return s.listFeedback(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
}

func (s *Store) ListFeedbackByJob(ctx context.Context, jobID string) ([]feedback.Record, error) {
	return s.listFeedback(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE job_id = $1 ORDER BY created_at DESC`, jobID)
}

func (s *Store) DeleteFeedback(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("feedback %s not found", id)
	}
	return nil
}
