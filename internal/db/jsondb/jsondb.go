// Package jsondb is a file-backed implementation of the storage interface.
// The whole dataset lives in memory and is flushed to a JSON file on Close.
// It is meant for local development and tests, not production traffic.
package jsondb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/jobtrack/internal/job"
	"github.com/patric-chuzhbe/jobtrack/internal/models"
	"github.com/patric-chuzhbe/jobtrack/internal/user"
)

// JSONDB keeps users and jobs in an in-memory cache persisted as a JSON file.
type JSONDB struct {
	fileName string
	Cache    CacheStruct
}

// CacheStruct is the serialized shape of the database file.
type CacheStruct struct {
	Users         map[string]*user.User
	EmailToUserID map[string]string
	Jobs          map[string]*job.Job
}

func emptyCache() CacheStruct {
	return CacheStruct{
		Users:         map[string]*user.User{},
		EmailToUserID: map[string]string{},
		Jobs:          map[string]*job.Job{},
	}
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": {},
	"EmailToUserID": {},
	"Jobs": {}
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	return decoder.Decode(cacheMap)
}

// New opens (or creates) the JSON database file and loads it into memory.
func New(fileName string) (*JSONDB, error) {
	db := JSONDB{
		fileName: fileName,
		Cache:    emptyCache(),
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(db.fileName, &db.Cache)
		if err != nil {
			return nil, err
		}
	}

	return &db, nil
}

// CreateUser stores a new user under a generated UUID.
// A taken email surfaces as models.ErrEmailAlreadyTaken.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	if _, taken := db.Cache.EmailToUserID[usr.Email]; taken {
		return "", models.ErrEmailAlreadyTaken
	}

	usr.ID = uuid.New().String()
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = time.Now()
	}
	db.Cache.Users[usr.ID] = usr
	db.Cache.EmailToUserID[usr.Email] = usr.ID

	return usr.ID, nil
}

// FindUserByEmail returns the user with the given email, password hash included.
func (db *JSONDB) FindUserByEmail(
	ctx context.Context,
	email string,
	transaction *sql.Tx,
) (*user.User, bool, error) {
	userID, found := db.Cache.EmailToUserID[email]
	if !found {
		return nil, false, nil
	}
	usr := *db.Cache.Users[userID]

	return &usr, true, nil
}

// GetUserByID returns the user with the given id, password hash omitted,
// or nil when absent.
func (db *JSONDB) GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error) {
	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, nil
	}

	return usr.Sanitized(), nil
}

// UpdateUser replaces the profile fields of an existing user and keeps the
// email index consistent.
func (db *JSONDB) UpdateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) error {
	stored, found := db.Cache.Users[usr.ID]
	if !found {
		return nil
	}

	if usr.Email != stored.Email {
		if _, taken := db.Cache.EmailToUserID[usr.Email]; taken {
			return models.ErrEmailAlreadyTaken
		}
		delete(db.Cache.EmailToUserID, stored.Email)
		db.Cache.EmailToUserID[usr.Email] = usr.ID
	}

	stored.Name = usr.Name
	stored.LastName = usr.LastName
	stored.Email = usr.Email
	stored.Location = usr.Location

	return nil
}

// InsertJob stores a new job record under a generated UUID.
func (db *JSONDB) InsertJob(ctx context.Context, theJob *job.Job, transaction *sql.Tx) error {
	theJob.ID = uuid.New().String()
	if theJob.CreatedAt.IsZero() {
		theJob.CreatedAt = time.Now()
	}
	stored := *theJob
	db.Cache.Jobs[theJob.ID] = &stored

	return nil
}

// GetJobByID returns the job with the given id, or nil when absent.
func (db *JSONDB) GetJobByID(ctx context.Context, jobID string, transaction *sql.Tx) (*job.Job, error) {
	theJob, found := db.Cache.Jobs[jobID]
	if !found {
		return nil, nil
	}
	copied := *theJob

	return &copied, nil
}

func matchesFilter(theJob *job.Job, userID string, filter models.JobsFilter) bool {
	if theJob.CreatedBy != userID {
		return false
	}
	if filter.Status != "" && filter.Status != models.FilterAll && string(theJob.Status) != filter.Status {
		return false
	}
	if filter.WorkType != "" && filter.WorkType != models.FilterAll && string(theJob.WorkType) != filter.WorkType {
		return false
	}
	if filter.Search != "" &&
		!strings.Contains(strings.ToLower(theJob.Position), strings.ToLower(filter.Search)) {
		return false
	}

	return true
}

// FindJobs returns one page of the user's job records matching the filter,
// together with the total number of matches.
func (db *JSONDB) FindJobs(
	ctx context.Context,
	userID string,
	filter models.JobsFilter,
) ([]*job.Job, int64, error) {
	matched := []*job.Job{}
	for _, theJob := range db.Cache.Jobs {
		if matchesFilter(theJob, userID, filter) {
			copied := *theJob
			matched = append(matched, &copied)
		}
	}

	switch filter.Sort {
	case models.SortLatest:
		sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	case models.SortOldest:
		sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	case models.SortAZ:
		sort.Slice(matched, func(i, j int) bool { return matched[i].Position < matched[j].Position })
	case models.SortZA:
		sort.Slice(matched, func(i, j int) bool { return matched[i].Position > matched[j].Position })
	default:
		// map iteration is unordered; sort by id so pagination stays stable
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	}

	total := int64(len(matched))

	skip := (filter.Page - 1) * filter.Limit
	if skip >= len(matched) {
		return []*job.Job{}, total, nil
	}
	end := skip + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[skip:end], total, nil
}

// UpdateJob replaces the mutable fields of an existing job record.
func (db *JSONDB) UpdateJob(ctx context.Context, theJob *job.Job, transaction *sql.Tx) error {
	stored, found := db.Cache.Jobs[theJob.ID]
	if !found {
		return nil
	}

	stored.Company = theJob.Company
	stored.Position = theJob.Position
	stored.Status = theJob.Status
	stored.WorkType = theJob.WorkType

	return nil
}

// DeleteJob removes a job record by id.
func (db *JSONDB) DeleteJob(ctx context.Context, jobID string, transaction *sql.Tx) error {
	delete(db.Cache.Jobs, jobID)
	return nil
}

// CountJobsByStatus aggregates the user's job records per status value.
func (db *JSONDB) CountJobsByStatus(ctx context.Context, userID string) (map[job.Status]int64, error) {
	result := map[job.Status]int64{}
	for _, theJob := range db.Cache.Jobs {
		if theJob.CreatedBy == userID {
			result[theJob.Status]++
		}
	}

	return result, nil
}

// CountJobsByMonth aggregates the user's job records per (year, month)
// of creation, newest first.
func (db *JSONDB) CountJobsByMonth(ctx context.Context, userID string) ([]models.MonthlyCount, error) {
	type yearMonth struct {
		year  int
		month int
	}
	counts := map[yearMonth]int64{}
	for _, theJob := range db.Cache.Jobs {
		if theJob.CreatedBy == userID {
			counts[yearMonth{theJob.CreatedAt.Year(), int(theJob.CreatedAt.Month())}]++
		}
	}

	keys := make([]yearMonth, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year > keys[j].year
		}
		return keys[i].month > keys[j].month
	})

	result := make([]models.MonthlyCount, 0, len(keys))
	for _, key := range keys {
		result = append(result, models.MonthlyCount{
			Year:  key.year,
			Month: time.Month(key.month),
			Count: counts[key],
		})
	}

	return result, nil
}

// CommitTransaction is a no-op: the file backend has no transactions.
func (db *JSONDB) CommitTransaction(transaction *sql.Tx) error {
	return nil
}

// RollbackTransaction is a no-op: the file backend has no transactions.
func (db *JSONDB) RollbackTransaction(transaction *sql.Tx) error {
	return nil
}

// BeginTransaction returns a nil transaction; callers pass it back unchanged.
func (db *JSONDB) BeginTransaction() (*sql.Tx, error) {
	return nil, nil
}

// Ping always succeeds for the file backend.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the in-memory cache to the JSON file.
func (db *JSONDB) Close() error {
	return writeToJSONFile(db.fileName, db.Cache)
}
