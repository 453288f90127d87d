// Package application defines the student application record and its
// review lifecycle.
package application

import "time"

// Status is the application lifecycle state. PENDING is the only state with
// outgoing transitions: an admin review moves it to APPROVED or REJECTED, the
// owning student may move it to WITHDRAWN. All three are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusWithdrawn Status = "WITHDRAWN"
)

// Valid reports whether s is one of the enumerated application states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// ReviewOutcome reports whether s is a state an admin review may assign.
func (s Status) ReviewOutcome() bool {
	return s == StatusApproved || s == StatusRejected
}

// Record is a student's request to fill one position of a posting.
type Record struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"student_id"`
	JobID       string     `json:"job_id"`
	CoverLetter string     `json:"cover_letter"`
	ResumeURL   string     `json:"resume_url,omitempty"`
	Status      Status     `json:"status"`
	AdminNotes  string     `json:"admin_notes,omitempty"`
	AppliedAt   time.Time  `json:"applied_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  string     `json:"reviewed_by,omitempty"`
}
