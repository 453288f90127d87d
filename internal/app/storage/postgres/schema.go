package postgres

import (
	"context"
	"database/sql"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		full_name     TEXT NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		department    TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL,
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS job_postings (
		id                   TEXT PRIMARY KEY,
		title                TEXT NOT NULL,
		description          TEXT NOT NULL,
		department           TEXT NOT NULL,
		location             TEXT NOT NULL,
		hourly_rate          NUMERIC(10,2) NOT NULL,
		max_hours_per_week   INTEGER NOT NULL,
		total_positions      INTEGER NOT NULL,
		filled_positions     INTEGER NOT NULL DEFAULT 0,
		application_deadline TEXT NOT NULL,
		status               TEXT NOT NULL,
		posted_by            TEXT NOT NULL REFERENCES users (id),
		created_at           TIMESTAMPTZ NOT NULL,
		updated_at           TIMESTAMPTZ NOT NULL,
		CHECK (filled_positions >= 0),
		CHECK (filled_positions <= total_positions)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_job_postings_status ON job_postings (status)`,
	`CREATE INDEX IF NOT EXISTS idx_job_postings_department ON job_postings (department)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id           TEXT PRIMARY KEY,
		student_id   TEXT NOT NULL REFERENCES users (id),
		job_id       TEXT NOT NULL REFERENCES job_postings (id),
		cover_letter TEXT NOT NULL,
		resume_url   TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL,
		admin_notes  TEXT,
		applied_at   TIMESTAMPTZ NOT NULL,
		reviewed_at  TIMESTAMPTZ,
		reviewed_by  TEXT,
		UNIQUE (student_id, job_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_status ON applications (status)`,
	`CREATE TABLE IF NOT EXISTS work_hours (
		id               TEXT PRIMARY KEY,
		student_id       TEXT NOT NULL REFERENCES users (id),
		job_id           TEXT NOT NULL REFERENCES job_postings (id),
		work_date        TEXT NOT NULL,
		start_time       TEXT NOT NULL,
		end_time         TEXT NOT NULL,
		hours_worked     NUMERIC(6,2) NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL,
		supervisor_notes TEXT,
		approved_by      TEXT,
		approved_at      TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_hours_student ON work_hours (student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_hours_student_date ON work_hours (student_id, work_date)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id                TEXT PRIMARY KEY,
		student_id        TEXT NOT NULL REFERENCES users (id),
		job_id            TEXT NOT NULL REFERENCES job_postings (id),
		given_by          TEXT NOT NULL REFERENCES users (id),
		rating            INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comments          TEXT NOT NULL,
		performance_areas TEXT,
		created_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_student ON feedback (student_id)`,
}

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
