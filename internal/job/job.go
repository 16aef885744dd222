// Package job defines the job application record and its enumerations.
package job

import "time"

// Status is the application progress state of a job record.
type Status string

// Allowed Status values.
const (
	StatusPending   Status = "pending"
	StatusInterview Status = "interview"
	StatusRejected  Status = "rejected"
)

// KnownStatuses lists every valid Status in presentation order.
var KnownStatuses = []Status{StatusPending, StatusInterview, StatusRejected}

// WorkType is the employment form of a job record.
type WorkType string

// Allowed WorkType values.
const (
	WorkTypeFullTime   WorkType = "full-time"
	WorkTypePartTime   WorkType = "part-time"
	WorkTypeRemote     WorkType = "remote"
	WorkTypeInternship WorkType = "internship"
)

// Job represents a single tracked job application.
// CreatedBy is the ID of the owning user and is the sole link
// between a job and its owner.
type Job struct {
	ID        string    `json:"id"`
	Company   string    `json:"company"`
	Position  string    `json:"position"`
	Status    Status    `json:"status"`
	WorkType  WorkType  `json:"workType"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// OwnedBy reports whether the record belongs to the given user.
// Every mutating operation must consult this predicate before proceeding.
func (j *Job) OwnedBy(userID string) bool {
	return j.CreatedBy == userID
}
