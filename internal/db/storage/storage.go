// Package storage declares the persistence interface implemented by the
// postgres, file and in-memory backends.
package storage

import (
	"context"
	"database/sql"

	"github.com/patric-chuzhbe/jobtrack/internal/job"
	"github.com/patric-chuzhbe/jobtrack/internal/models"
	"github.com/patric-chuzhbe/jobtrack/internal/user"
)

// Storage is the full persistence contract. Methods taking a *sql.Tx run
// inside the given transaction when it is non-nil; file and memory backends
// ignore it.
type Storage interface {
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error)

	FindUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, bool, error)

	GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error)

	UpdateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) error

	InsertJob(ctx context.Context, theJob *job.Job, transaction *sql.Tx) error

	GetJobByID(ctx context.Context, jobID string, transaction *sql.Tx) (*job.Job, error)

	FindJobs(
		ctx context.Context,
		userID string,
		filter models.JobsFilter,
	) ([]*job.Job, int64, error)

	UpdateJob(ctx context.Context, theJob *job.Job, transaction *sql.Tx) error

	DeleteJob(ctx context.Context, jobID string, transaction *sql.Tx) error

	CountJobsByStatus(ctx context.Context, userID string) (map[job.Status]int64, error)

	CountJobsByMonth(ctx context.Context, userID string) ([]models.MonthlyCount, error)

	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error

	Ping(ctx context.Context) error

	Close() error
}
