// Package workhours defines logged time entries and their duration rules.
package workhours

import (
	"time"

	"github.com/campusworks/workstudy/internal/errors"
)

// Status is the entry approval state. PENDING entries may be edited or
// deleted by the owning student; an admin review to APPROVED or REJECTED is
// terminal and locks the entry.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Valid reports whether s is one of the enumerated entry states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether an admin decision has locked the entry.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// Entry is a student-reported block of worked time pending supervisor
// approval. WorkDate is an ISO date (2006-01-02); StartTime and EndTime are
// wall-clock times (15:04). HoursWorked is derived, never caller-supplied.
type Entry struct {
	ID              string     `json:"id"`
	StudentID       string     `json:"student_id"`
	JobID           string     `json:"job_id"`
	WorkDate        string     `json:"work_date"`
	StartTime       string     `json:"start_time"`
	EndTime         string     `json:"end_time"`
	HoursWorked     float64    `json:"hours_worked"`
	Description     string     `json:"description,omitempty"`
	Status          Status     `json:"status"`
	SupervisorNotes string     `json:"supervisor_notes,omitempty"`
	ApprovedBy      string     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ParseDate validates an ISO work date.
func ParseDate(value string) (string, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return "", errors.InvalidInput("work date must be formatted as %s", dateLayout)
	}
	return t.Format(dateLayout), nil
}

// ComputeHours derives the worked duration from two wall-clock times:
// whole minutes between start and end, divided by 60, rounded half-up to two
// decimal places. End must be strictly after start.
func ComputeHours(startTime, endTime string) (float64, error) {
	start, err := time.Parse(timeLayout, startTime)
	if err != nil {
		return 0, errors.InvalidInput("start time must be formatted as %s", timeLayout)
	}
	end, err := time.Parse(timeLayout, endTime)
	if err != nil {
		return 0, errors.InvalidInput("end time must be formatted as %s", timeLayout)
	}

	minutes := int64(end.Sub(start) / time.Minute)
	if minutes <= 0 {
		return 0, errors.InvalidInput("end time must be after start time")
	}

	// Round in hundredths of an hour to keep the half-up rule exact.
	hundredths := (minutes*100 + 30) / 60
	return float64(hundredths) / 100, nil
}
