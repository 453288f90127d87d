// Package feedback defines admin-authored performance ratings.
package feedback

import "time"

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// Record is an immutable rating tied to a (student, job) pair. There is no
// update operation; a correction is delete plus recreate.
type Record struct {
	ID               string    `json:"id"`
	StudentID        string    `json:"student_id"`
	JobID            string    `json:"job_id"`
	GivenBy          string    `json:"given_by"`
	Rating           int       `json:"rating"`
	Comments         string    `json:"comments"`
	PerformanceAreas string    `json:"performance_areas,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
