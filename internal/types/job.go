//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// JobStatus is the lifecycle state of a field service job.
type JobStatus string

// JobStatus values
const (
	JobScheduled  JobStatus = "scheduled"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobScheduled, JobInProgress, JobCompleted, JobCancelled:
		return true
	default:
		return false
	}
}

// Job is a field service visit assigned to a technician.
// JSON names follow the mobile client.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Customer    string    `json:"customer"`
	Address     string    `json:"address"`
	Status      JobStatus `json:"status"`
	ScheduledAt time.Time `json:"scheduledAt"`
	ModelURL    *string   `json:"modelUrl,omitempty"`
	Description *string   `json:"description,omitempty"`
}

// Paging limits for job listings
const (
	DefaultJobsLimit = 50
	MaxJobsLimit     = 200
)

// NormalizePage clamps a job listing limit and offset into range.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultJobsLimit
	}
	if limit > MaxJobsLimit {
		limit = MaxJobsLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
