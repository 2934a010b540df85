package storage

import (
	"fmt"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage/jsonfile"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
)

var (
	_ Storage = (*jsonfile.Store)(nil)
	_ Storage = (*sqlite.SQLite)(nil)
)

// Open builds the backend selected by cfg.StorageBackend. On success the
// returned close func is non-nil and safe to defer.
func Open(cfg *config.Config) (Storage, func() error, error) {
	switch cfg.StorageBackend {
	case config.BackendJSON, "":
		store, err := jsonfile.New(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil

	case config.BackendSQLite:
		store, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("storage.Open: unknown backend %q", cfg.StorageBackend)
	}
}
