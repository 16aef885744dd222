// Package service implements the application's business logic: the
// registration and login flows, profile updates, and the ownership-enforced
// job record operations.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/jobtrack/internal/job"
	"github.com/patric-chuzhbe/jobtrack/internal/models"
	"github.com/patric-chuzhbe/jobtrack/internal/user"
)

type transactioner interface {
	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error
}

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error)

	FindUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, bool, error)

	GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error)

	UpdateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) error
}

type jobKeeper interface {
	InsertJob(ctx context.Context, theJob *job.Job, transaction *sql.Tx) error

	GetJobByID(ctx context.Context, jobID string, transaction *sql.Tx) (*job.Job, error)

	FindJobs(
		ctx context.Context,
		userID string,
		filter models.JobsFilter,
	) ([]*job.Job, int64, error)

	UpdateJob(ctx context.Context, theJob *job.Job, transaction *sql.Tx) error

	DeleteJob(ctx context.Context, jobID string, transaction *sql.Tx) error
}

type statsKeeper interface {
	CountJobsByStatus(ctx context.Context, userID string) (map[job.Status]int64, error)

	CountJobsByMonth(ctx context.Context, userID string) ([]models.MonthlyCount, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	transactioner
	userKeeper
	jobKeeper
	statsKeeper
	pinger
}

// ErrInvalidCredentials is returned by Login for an unknown email or a
// password that does not match the stored hash. The two cases are kept
// indistinguishable on purpose.
var ErrInvalidCredentials = errors.New("Invalid Username or Password")

// ErrUserNotFound is returned when the requester's identity no longer
// resolves to a stored user.
var ErrUserNotFound = errors.New("user not found")

// ErrJobNotFound is returned when a job id does not resolve to a record.
var ErrJobNotFound = errors.New("no job found with the given id")

// ErrNotJobOwner is returned when the requesting identity does not own the
// record it tries to mutate.
var ErrNotJobOwner = errors.New("you're not authorized to modify this job")

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Service exposes the application operations over a storage backend.
type Service struct {
	db storage
}

// New creates a Service over the given storage backend.
func New(db storage) *Service {
	return &Service{db: db}
}

// Register creates a new identity. The password is hashed inside user.New
// before anything reaches storage; a taken email surfaces unchanged as
// models.ErrEmailAlreadyTaken.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*user.User, error) {
	usr, err := user.New(req.Name, req.LastName, req.Email, req.Location, req.Password)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.CreateUser(ctx, usr, nil); err != nil {
		return nil, err
	}

	return usr.Sanitized(), nil
}

// Login verifies the email/password pair against the stored credential.
// Both the unknown-email and the wrong-password case short-circuit with
// ErrInvalidCredentials; the hash never leaves this function.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, error) {
	usr, found, err := s.db.FindUserByEmail(ctx, email, nil)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInvalidCredentials
	}

	if !usr.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return usr.Sanitized(), nil
}

// UpdateUser applies profile fields to the requester's identity and returns
// the new state. The password hash is never touched by this flow.
func (s *Service) UpdateUser(ctx context.Context, userID string, req models.UpdateUserRequest) (*user.User, error) {
	tx, err := s.db.BeginTransaction()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = s.db.RollbackTransaction(tx)
	}()

	usr, err := s.db.GetUserByID(ctx, userID, tx)
	if err != nil {
		return nil, err
	}
	if usr == nil {
		return nil, ErrUserNotFound
	}

	usr.Name = req.Name
	usr.LastName = req.LastName
	usr.Email = req.Email
	usr.Location = req.Location

	if err := s.db.UpdateUser(ctx, usr, tx); err != nil {
		return nil, err
	}

	if err := s.db.CommitTransaction(tx); err != nil {
		return nil, err
	}

	return usr, nil
}

// CreateJob persists a new job record owned by the requester. The owner
// always comes from the authenticated identity, never from client input.
func (s *Service) CreateJob(ctx context.Context, userID string, req models.JobRequest) (*job.Job, error) {
	theJob := &job.Job{
		Company:   req.Company,
		Position:  req.Position,
		Status:    job.StatusPending,
		WorkType:  job.WorkTypeFullTime,
		CreatedBy: userID,
	}
	if req.Status != "" {
		theJob.Status = job.Status(req.Status)
	}
	if req.WorkType != "" {
		theJob.WorkType = job.WorkType(req.WorkType)
	}

	if err := s.db.InsertJob(ctx, theJob, nil); err != nil {
		return nil, err
	}

	return theJob, nil
}

// GetJobs returns one page of the requester's job records plus the total
// match count and the resulting page count.
func (s *Service) GetJobs(ctx context.Context, userID string, filter models.JobsFilter) (*models.JobsListResponse, error) {
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if !funk.ContainsString(models.KnownSorts, filter.Sort) {
		filter.Sort = ""
	}

	jobs, total, err := s.db.FindJobs(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	numOfPage := (total + int64(filter.Limit) - 1) / int64(filter.Limit)

	return &models.JobsListResponse{
		TotalJobs: total,
		Jobs:      jobs,
		NumOfPage: numOfPage,
	}, nil
}

// UpdateJob applies the request to an existing record after the ownership
// check passes.
func (s *Service) UpdateJob(ctx context.Context, userID, jobID string, req models.JobRequest) (*job.Job, error) {
	tx, err := s.db.BeginTransaction()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = s.db.RollbackTransaction(tx)
	}()

	theJob, err := s.db.GetJobByID(ctx, jobID, tx)
	if err != nil {
		return nil, err
	}
	if theJob == nil {
		return nil, ErrJobNotFound
	}
	if !theJob.OwnedBy(userID) {
		return nil, ErrNotJobOwner
	}

	theJob.Company = req.Company
	theJob.Position = req.Position
	if req.Status != "" {
		theJob.Status = job.Status(req.Status)
	}
	if req.WorkType != "" {
		theJob.WorkType = job.WorkType(req.WorkType)
	}

	if err := s.db.UpdateJob(ctx, theJob, tx); err != nil {
		return nil, err
	}

	if err := s.db.CommitTransaction(tx); err != nil {
		return nil, err
	}

	return theJob, nil
}

// DeleteJob removes an existing record after the ownership check passes.
func (s *Service) DeleteJob(ctx context.Context, userID, jobID string) error {
	tx, err := s.db.BeginTransaction()
	if err != nil {
		return err
	}
	defer func() {
		_ = s.db.RollbackTransaction(tx)
	}()

	theJob, err := s.db.GetJobByID(ctx, jobID, tx)
	if err != nil {
		return err
	}
	if theJob == nil {
		return ErrJobNotFound
	}
	if !theJob.OwnedBy(userID) {
		return ErrNotJobOwner
	}

	if err := s.db.DeleteJob(ctx, jobID, tx); err != nil {
		return err
	}

	return s.db.CommitTransaction(tx)
}

// GetJobStats aggregates the requester's records per status, zero-filling
// the known buckets, and per creation month with a human-readable label,
// newest first. TotalJob counts the non-empty status buckets.
func (s *Service) GetJobStats(ctx context.Context, userID string) (*models.JobStatsResponse, error) {
	statusCounts, err := s.db.CountJobsByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	monthly, err := s.db.CountJobsByMonth(ctx, userID)
	if err != nil {
		return nil, err
	}

	applications := make([]models.MonthlyApplication, 0, len(monthly))
	for _, row := range monthly {
		label := time.Date(row.Year, row.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
		applications = append(applications, models.MonthlyApplication{
			Date:  label,
			Count: row.Count,
		})
	}

	return &models.JobStatsResponse{
		TotalJob: len(statusCounts),
		DefaultStats: models.DefaultStats{
			Pending:   statusCounts[job.StatusPending],
			Interview: statusCounts[job.StatusInterview],
			Rejected:  statusCounts[job.StatusRejected],
		},
		MonthlyApplications: applications,
	}, nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
