package models

import (
	"errors"
	"time"

	"github.com/patric-chuzhbe/jobtrack/internal/job"
	"github.com/patric-chuzhbe/jobtrack/internal/user"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	LastName string `json:"lastName"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Location string `json:"location"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	LastName string `json:"lastName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Location string `json:"location" validate:"required"`
}

// AuthResponse is returned by register, login and update-user.
type AuthResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	User    *user.User `json:"user"`
	Token   string     `json:"token"`
}

type JobRequest struct {
	Company  string `json:"company" validate:"required"`
	Position string `json:"position" validate:"required"`
	Status   string `json:"status" validate:"omitempty,oneof=pending interview rejected"`
	WorkType string `json:"workType" validate:"omitempty,oneof=full-time part-time remote internship"`
}

// Sort orders accepted by the job listing. Any other value
// leaves the listing in store-natural order.
const (
	SortLatest = "latest"
	SortOldest = "oldest"
	SortAZ     = "a-z"
	SortZA     = "z-a"
)

// KnownSorts lists the recognized sort keys for the job listing.
var KnownSorts = []string{SortLatest, SortOldest, SortAZ, SortZA}

// FilterAll is the sentinel query value that disables a status or
// workType equality filter.
const FilterAll = "all"

// JobsFilter carries the parsed query parameters of the job listing.
type JobsFilter struct {
	Status   string
	WorkType string
	Search   string
	Sort     string
	Page     int
	Limit    int
}

type JobsListResponse struct {
	TotalJobs int64      `json:"totalJobs"`
	Jobs      []*job.Job `json:"jobs"`
	NumOfPage int64      `json:"numOfPage"`
}

type CreateJobResponse struct {
	Job *job.Job `json:"job"`
}

type UpdateJobResponse struct {
	UpdateJob *job.Job `json:"updateJob"`
}

// DefaultStats carries per-status counts with every known bucket
// present, zero-filled when the user has no jobs in it.
type DefaultStats struct {
	Pending   int64 `json:"pending"`
	Interview int64 `json:"interview"`
	Rejected  int64 `json:"rejected"`
}

// MonthlyCount is a raw (year, month) aggregation row from storage.
type MonthlyCount struct {
	Year  int
	Month time.Month
	Count int64
}

// MonthlyApplication pairs a human-readable month label with a count.
type MonthlyApplication struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type JobStatsResponse struct {
	TotalJob            int                  `json:"totalJob"`
	DefaultStats        DefaultStats         `json:"defaultStats"`
	MonthlyApplications []MonthlyApplication `json:"monthlyApplications"`
}

// APIError is the uniform error body of every failed request.
type APIError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// APIMessage is the body of confirmations that carry no payload.
type APIMessage struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

// ErrEmailAlreadyTaken is returned by storage when the unique email
// constraint is violated on user creation or update.
var ErrEmailAlreadyTaken = errors.New("email field has to be unique")
