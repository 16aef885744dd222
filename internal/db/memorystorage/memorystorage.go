// Package memorystorage is the in-memory storage backend: a jsondb cache
// that never touches the filesystem. It backs tests and the default
// zero-configuration run mode.
package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/jobtrack/internal/db/jsondb"
	"github.com/patric-chuzhbe/jobtrack/internal/job"
	"github.com/patric-chuzhbe/jobtrack/internal/user"
)

type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users:         map[string]*user.User{},
				EmailToUserID: map[string]string{},
				Jobs:          map[string]*job.Job{},
			},
		},
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
