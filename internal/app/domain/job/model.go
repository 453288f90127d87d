// Package job defines the job posting record and its capacity lifecycle.
package job

import "time"

// Status is the posting lifecycle state. A posting starts ACTIVE, flips to
// FILLED automatically when every position is consumed, and is CLOSED only by
// explicit admin action. Neither CLOSED nor FILLED ever reverts to ACTIVE.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
	StatusFilled Status = "FILLED"
)

// Valid reports whether s is one of the enumerated posting states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusClosed, StatusFilled:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusFilled
}

// Posting is an advertised work-study position with fixed capacity.
// FilledPositions is owned exclusively by this record; only the application
// approval path may increment it, and it is never decremented.
type Posting struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Department          string    `json:"department"`
	Location            string    `json:"location"`
	HourlyRate          float64   `json:"hourly_rate"`
	MaxHoursPerWeek     int       `json:"max_hours_per_week"`
	TotalPositions      int       `json:"total_positions"`
	FilledPositions     int       `json:"filled_positions"`
	ApplicationDeadline string    `json:"application_deadline"`
	Status              Status    `json:"status"`
	PostedBy            string    `json:"posted_by"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Open reports whether the posting still has unconsumed positions.
func (p Posting) Open() bool {
	return p.FilledPositions < p.TotalPositions
}

// Spec carries the caller-supplied posting fields for create and update.
// ID, PostedBy, FilledPositions and Status are never taken from a Spec.
type Spec struct {
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	Department          string  `json:"department"`
	Location            string  `json:"location"`
	HourlyRate          float64 `json:"hourly_rate"`
	MaxHoursPerWeek     int     `json:"max_hours_per_week"`
	TotalPositions      int     `json:"total_positions"`
	ApplicationDeadline string  `json:"application_deadline"`
}
