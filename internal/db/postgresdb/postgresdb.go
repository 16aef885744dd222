// Package postgresdb provides a PostgreSQL-based implementation of the storage
// interface for persisting users and job records. It runs goose migrations at
// startup and supports optional transactional execution.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patric-chuzhbe/jobtrack/internal/job"
	"github.com/patric-chuzhbe/jobtrack/internal/models"
	"github.com/patric-chuzhbe/jobtrack/internal/user"
)

// PostgresDB is a PostgreSQL-backed implementation of the storage interface.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables or disables resetting the database schema before migration.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.Up()` calling: %w",
				err,
			)
	}

	return result, nil
}

func (db *PostgresDB) queryerFor(transaction *sql.Tx) queryer {
	if transaction == nil {
		return db.database
	}
	return transaction
}

func (db *PostgresDB) executorFor(transaction *sql.Tx) executor {
	if transaction == nil {
		return db.database
	}
	return transaction
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateUser inserts a new user record and returns the generated id.
// A violated unique email constraint surfaces as models.ErrEmailAlreadyTaken.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`
			INSERT INTO users (name, last_name, email, password_hash, location)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id, created_at
		`,
		usr.Name,
		usr.LastName,
		usr.Email,
		usr.PasswordHash,
		usr.Location,
	)
	err := row.Scan(&usr.ID, &usr.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return "", models.ErrEmailAlreadyTaken
		}
		return "", err
	}

	return usr.ID, nil
}

// FindUserByEmail fetches a user by email, password hash included.
// This is the only read path that exposes the secret; it exists for the
// login flow's credential check.
func (db *PostgresDB) FindUserByEmail(
	ctx context.Context,
	email string,
	transaction *sql.Tx,
) (*user.User, bool, error) {
	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`
			SELECT id, name, last_name, email, password_hash, location, created_at
				FROM users
				WHERE email = $1
		`,
		email,
	)
	usr := &user.User{}
	err := row.Scan(
		&usr.ID,
		&usr.Name,
		&usr.LastName,
		&usr.Email,
		&usr.PasswordHash,
		&usr.Location,
		&usr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

// GetUserByID fetches a user by id with the password hash omitted.
// Returns nil when the user does not exist.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error) {
	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`
			SELECT id, name, last_name, email, location, created_at
				FROM users
				WHERE id = $1
		`,
		userID,
	)
	usr := &user.User{}
	err := row.Scan(
		&usr.ID,
		&usr.Name,
		&usr.LastName,
		&usr.Email,
		&usr.Location,
		&usr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return usr, nil
}

// UpdateUser persists the profile fields of an existing user.
// The password hash is deliberately not touched here.
func (db *PostgresDB) UpdateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) error {
	_, err := db.executorFor(transaction).ExecContext(
		ctx,
		`
			UPDATE users
				SET name = $2, last_name = $3, email = $4, location = $5
				WHERE id = $1
		`,
		usr.ID,
		usr.Name,
		usr.LastName,
		usr.Email,
		usr.Location,
	)
	if err != nil && isUniqueViolation(err) {
		return models.ErrEmailAlreadyTaken
	}

	return err
}

// InsertJob persists a new job record and fills its generated id and
// creation timestamp.
func (db *PostgresDB) InsertJob(ctx context.Context, theJob *job.Job, transaction *sql.Tx) error {
	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`
			INSERT INTO jobs (company, position, status, work_type, created_by)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id, created_at
		`,
		theJob.Company,
		theJob.Position,
		theJob.Status,
		theJob.WorkType,
		theJob.CreatedBy,
	)

	return row.Scan(&theJob.ID, &theJob.CreatedAt)
}

// GetJobByID fetches a job record by id. Returns nil when absent.
func (db *PostgresDB) GetJobByID(ctx context.Context, jobID string, transaction *sql.Tx) (*job.Job, error) {
	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`
			SELECT id, company, position, status, work_type, created_by, created_at
				FROM jobs
				WHERE id = $1
		`,
		jobID,
	)
	theJob := &job.Job{}
	err := row.Scan(
		&theJob.ID,
		&theJob.Company,
		&theJob.Position,
		&theJob.Status,
		&theJob.WorkType,
		&theJob.CreatedBy,
		&theJob.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return theJob, nil
}

var sortOrders = map[string]string{
	models.SortLatest: "created_at DESC",
	models.SortOldest: "created_at ASC",
	models.SortAZ:     "position ASC",
	models.SortZA:     "position DESC",
}

// FindJobs returns one page of the user's job records matching the filter,
// together with the total number of matches.
func (db *PostgresDB) FindJobs(
	ctx context.Context,
	userID string,
	filter models.JobsFilter,
) ([]*job.Job, int64, error) {
	conditions := []string{"created_by = $1"}
	args := []interface{}{userID}

	if filter.Status != "" && filter.Status != models.FilterAll {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.WorkType != "" && filter.WorkType != models.FilterAll {
		args = append(args, filter.WorkType)
		conditions = append(conditions, fmt.Sprintf("work_type = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("position ILIKE $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	row := db.database.QueryRowContext(
		ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM jobs WHERE %s`, where),
		args...,
	)
	if err := row.Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := ""
	if order, ok := sortOrders[filter.Sort]; ok {
		orderBy = " ORDER BY " + order
	}

	skip := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, skip)
	query := fmt.Sprintf(
		`
			SELECT id, company, position, status, work_type, created_by, created_at
				FROM jobs
				WHERE %s%s
				LIMIT $%d OFFSET $%d
		`,
		where,
		orderBy,
		len(args)-1,
		len(args),
	)

	rows, err := db.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := []*job.Job{}
	for rows.Next() {
		theJob := &job.Job{}
		err = rows.Scan(
			&theJob.ID,
			&theJob.Company,
			&theJob.Position,
			&theJob.Status,
			&theJob.WorkType,
			&theJob.CreatedBy,
			&theJob.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, theJob)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// UpdateJob persists the mutable fields of an existing job record.
func (db *PostgresDB) UpdateJob(ctx context.Context, theJob *job.Job, transaction *sql.Tx) error {
	_, err := db.executorFor(transaction).ExecContext(
		ctx,
		`
			UPDATE jobs
				SET company = $2, position = $3, status = $4, work_type = $5
				WHERE id = $1
		`,
		theJob.ID,
		theJob.Company,
		theJob.Position,
		theJob.Status,
		theJob.WorkType,
	)

	return err
}

// DeleteJob removes a job record by id.
func (db *PostgresDB) DeleteJob(ctx context.Context, jobID string, transaction *sql.Tx) error {
	_, err := db.executorFor(transaction).ExecContext(
		ctx,
		`DELETE FROM jobs WHERE id = $1`,
		jobID,
	)

	return err
}

// CountJobsByStatus aggregates the user's job records per status value.
// Only statuses with at least one record appear in the result.
func (db *PostgresDB) CountJobsByStatus(ctx context.Context, userID string) (map[job.Status]int64, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT status, COUNT(*)
				FROM jobs
				WHERE created_by = $1
				GROUP BY status
		`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[job.Status]int64{}
	for rows.Next() {
		var status job.Status
		var count int64
		if err = rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result[status] = count
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// CountJobsByMonth aggregates the user's job records per (year, month) of
// creation, newest first.
func (db *PostgresDB) CountJobsByMonth(ctx context.Context, userID string) ([]models.MonthlyCount, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT EXTRACT(YEAR FROM created_at)::int AS year,
					EXTRACT(MONTH FROM created_at)::int AS month,
					COUNT(*)
				FROM jobs
				WHERE created_by = $1
				GROUP BY year, month
				ORDER BY year DESC, month DESC
		`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.MonthlyCount{}
	for rows.Next() {
		var year, month int
		var count int64
		if err = rows.Scan(&year, &month, &count); err != nil {
			return nil, err
		}
		result = append(result, models.MonthlyCount{
			Year:  year,
			Month: time.Month(month),
			Count: count,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// CommitTransaction commits the given SQL transaction.
func (db *PostgresDB) CommitTransaction(transaction *sql.Tx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred while committing transaction: %v", r)
		}
	}()

	return transaction.Commit()
}

// RollbackTransaction rolls back the given SQL transaction.
func (db *PostgresDB) RollbackTransaction(transaction *sql.Tx) error {
	return transaction.Rollback()
}

// BeginTransaction starts a new SQL transaction and returns it.
// The caller is responsible for committing or rolling it back.
func (db *PostgresDB) BeginTransaction() (*sql.Tx, error) {
	return db.database.Begin()
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}
