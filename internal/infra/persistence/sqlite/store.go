// Package sqlite opens the snapshot repository on a SQLite file using the
// pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"decotree/internal/infra/persistence/sqlrepo"
)

// DefaultPath is used when no path is configured.
const DefaultPath = "decotree.db"

// Open opens (creating if needed) the database at path and ensures the
// snapshots table exists.
func Open(ctx context.Context, path string) (*sqlrepo.Repo, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; also keeps a ":memory:" database on a single connection
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	repo, err := sqlrepo.New(ctx, db, sqlrepo.SQLite)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}
