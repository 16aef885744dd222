// Package mockstorage provides a testify-based mock implementation
// of the storage interface. It is used for unit testing the service
// layer by simulating storage behavior and failures.
package mockstorage

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/jobtrack/internal/job"
	"github.com/patric-chuzhbe/jobtrack/internal/models"
	"github.com/patric-chuzhbe/jobtrack/internal/user"
)

// StorageMock is a testify mock implementing the full storage interface.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks user creation and returns a generated ID.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User, tx *sql.Tx) (string, error) {
	args := m.Called(ctx, usr, tx)
	return args.String(0), args.Error(1)
}

// FindUserByEmail mocks the secret-including lookup used by the login flow.
func (m *StorageMock) FindUserByEmail(ctx context.Context, email string, tx *sql.Tx) (*user.User, bool, error) {
	args := m.Called(ctx, email, tx)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// GetUserByID mocks fetching a user by their ID.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string, tx *sql.Tx) (*user.User, error) {
	args := m.Called(ctx, userID, tx)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// UpdateUser mocks persisting profile changes.
func (m *StorageMock) UpdateUser(ctx context.Context, usr *user.User, tx *sql.Tx) error {
	args := m.Called(ctx, usr, tx)
	return args.Error(0)
}

// InsertJob mocks persisting a new job record.
func (m *StorageMock) InsertJob(ctx context.Context, theJob *job.Job, tx *sql.Tx) error {
	args := m.Called(ctx, theJob, tx)
	return args.Error(0)
}

// GetJobByID mocks fetching a job record by id.
func (m *StorageMock) GetJobByID(ctx context.Context, jobID string, tx *sql.Tx) (*job.Job, error) {
	args := m.Called(ctx, jobID, tx)
	theJob, _ := args.Get(0).(*job.Job)
	return theJob, args.Error(1)
}

// FindJobs mocks the filtered, paginated listing.
func (m *StorageMock) FindJobs(
	ctx context.Context,
	userID string,
	filter models.JobsFilter,
) ([]*job.Job, int64, error) {
	args := m.Called(ctx, userID, filter)
	jobs, _ := args.Get(0).([]*job.Job)
	return jobs, args.Get(1).(int64), args.Error(2)
}

// UpdateJob mocks persisting job mutations.
func (m *StorageMock) UpdateJob(ctx context.Context, theJob *job.Job, tx *sql.Tx) error {
	args := m.Called(ctx, theJob, tx)
	return args.Error(0)
}

// DeleteJob mocks removing a job record.
func (m *StorageMock) DeleteJob(ctx context.Context, jobID string, tx *sql.Tx) error {
	args := m.Called(ctx, jobID, tx)
	return args.Error(0)
}

// CountJobsByStatus mocks the per-status aggregation.
func (m *StorageMock) CountJobsByStatus(ctx context.Context, userID string) (map[job.Status]int64, error) {
	args := m.Called(ctx, userID)
	counts, _ := args.Get(0).(map[job.Status]int64)
	return counts, args.Error(1)
}

// CountJobsByMonth mocks the per-month aggregation.
func (m *StorageMock) CountJobsByMonth(ctx context.Context, userID string) ([]models.MonthlyCount, error) {
	args := m.Called(ctx, userID)
	counts, _ := args.Get(0).([]models.MonthlyCount)
	return counts, args.Error(1)
}

// BeginTransaction mocks the beginning of a transaction.
func (m *StorageMock) BeginTransaction() (*sql.Tx, error) {
	args := m.Called()
	tx, _ := args.Get(0).(*sql.Tx)
	return tx, args.Error(1)
}

// CommitTransaction mocks committing a transaction.
func (m *StorageMock) CommitTransaction(tx *sql.Tx) error {
	args := m.Called(tx)
	return args.Error(0)
}

// RollbackTransaction mocks rolling back a transaction.
func (m *StorageMock) RollbackTransaction(tx *sql.Tx) error {
	args := m.Called(tx)
	return args.Error(0)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the storage and releasing resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
