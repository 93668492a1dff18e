package snapshot

import (
	"context"
	"fmt"

	"decotree/internal/blob"
	"decotree/internal/infra/persistence/postgres"
	"decotree/internal/infra/persistence/sqlite"
)

// Driver names a snapshot backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverFS       Driver = "fs"
	DriverS3       Driver = "s3"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Drivers lists every supported driver.
func Drivers() []Driver {
	return []Driver{DriverMemory, DriverFS, DriverS3, DriverSQLite, DriverPostgres}
}

// Config selects and configures a Repository.
type Config struct {
	Driver      Driver // default fs
	FSRoot      string
	S3          blob.S3Config
	SQLitePath  string
	PostgresDSN string
}

// Open returns the Repository described by cfg.
func Open(ctx context.Context, cfg Config) (Repository, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFS
	}
	switch driver {
	case DriverMemory:
		return NewBlobRepository(blob.NewMemory()), nil
	case DriverFS, DriverS3:
		store, err := blob.Open(ctx, blob.Config{Driver: blob.Driver(driver), FSRoot: cfg.FSRoot, S3: cfg.S3})
		if err != nil {
			return nil, fmt.Errorf("open %s snapshots: %w", driver, err)
		}
		return NewBlobRepository(store), nil
	case DriverSQLite:
		repo, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite snapshots: %w", err)
		}
		return NewSQLRepository(repo), nil
	case DriverPostgres:
		repo, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres snapshots: %w", err)
		}
		return NewSQLRepository(repo), nil
	default:
		return nil, fmt.Errorf("unknown snapshot driver %q", driver)
	}
}
