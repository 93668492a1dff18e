// Package sqlrepo stores versioned tree snapshots in a single SQL table. The
// sqlite and postgres packages open a database and hand it to New with their
// dialect.
package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when no snapshot matches.
var ErrNotFound = errors.New("sqlrepo: snapshot not found")

// Dialect captures the differences between supported databases.
type Dialect struct {
	Name string
	// PayloadType is the column type holding the JSON document.
	PayloadType string
	// Numbered selects $1-style placeholders instead of '?'.
	Numbered bool
}

var (
	SQLite   = Dialect{Name: "sqlite", PayloadType: "BLOB"}
	Postgres = Dialect{Name: "postgres", PayloadType: "JSONB", Numbered: true}
)

// Record is one stored snapshot version. Payload is empty in Versions results.
type Record struct {
	Name    string
	Version int
	Payload []byte
	Size    int
	SavedAt time.Time
}

// Repo reads and writes the snapshots table.
type Repo struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
	now     func() time.Time
}

// New ensures the snapshots table exists.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Repo, error) {
	r := &Repo{db: db, dialect: dialect, now: func() time.Time { return time.Now().UTC() }}
	ddl := `CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT NOT NULL,
		version INTEGER NOT NULL,
		payload ` + dialect.PayloadType + ` NOT NULL,
		size INTEGER NOT NULL,
		saved_at BIGINT NOT NULL,
		PRIMARY KEY (name, version)
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure snapshots table: %w", err)
	}
	return r, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (r *Repo) DB() *sql.DB { return r.db }

// Dialect reports the dialect the repo was opened with.
func (r *Repo) Dialect() Dialect { return r.dialect }

// Close closes the database.
func (r *Repo) Close() error { return r.db.Close() }

// rebind rewrites '?' placeholders for dialects with numbered parameters.
func (r *Repo) rebind(query string) string {
	if !r.dialect.Numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Save appends payload as the next version of name.
func (r *Repo) Save(ctx context.Context, name string, payload []byte) (rec Record, retErr error) {
	if name == "" {
		return Record{}, fmt.Errorf("snapshot name required")
	}
	// serializes version allocation within this process; the primary key
	// rejects concurrent writers from other processes
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	var version int
	if err := tx.QueryRowContext(ctx, r.rebind(`SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE name = ?`), name).Scan(&version); err != nil {
		return Record{}, fmt.Errorf("next version: %w", err)
	}
	saved := r.now()
	if _, err := tx.ExecContext(ctx, r.rebind(`INSERT INTO snapshots(name, version, payload, size, saved_at) VALUES(?, ?, ?, ?, ?)`),
		name, version, payload, len(payload), saved.UnixMilli()); err != nil {
		return Record{}, fmt.Errorf("insert %s@%d: %w", name, version, err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit: %w", err)
	}
	return Record{Name: name, Version: version, Payload: payload, Size: len(payload), SavedAt: time.UnixMilli(saved.UnixMilli()).UTC()}, nil
}

// Get returns one version of name.
func (r *Repo) Get(ctx context.Context, name string, version int) (Record, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT version, payload, saved_at FROM snapshots WHERE name = ? AND version = ?`), name, version)
	return scanRecord(name, row)
}

// Latest returns the highest version of name.
func (r *Repo) Latest(ctx context.Context, name string) (Record, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT version, payload, saved_at FROM snapshots WHERE name = ? ORDER BY version DESC LIMIT 1`), name)
	return scanRecord(name, row)
}

func scanRecord(name string, row *sql.Row) (Record, error) {
	var (
		rec   = Record{Name: name}
		saved int64
	)
	if err := row.Scan(&rec.Version, &rec.Payload, &saved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return Record{}, fmt.Errorf("select %s: %w", name, err)
	}
	rec.Size = len(rec.Payload)
	rec.SavedAt = time.UnixMilli(saved).UTC()
	return rec, nil
}

// Versions lists the stored versions of name in ascending order.
func (r *Repo) Versions(ctx context.Context, name string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(`SELECT version, size, saved_at FROM snapshots WHERE name = ? ORDER BY version`), name)
	if err != nil {
		return nil, fmt.Errorf("select versions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Record
	for rows.Next() {
		rec := Record{Name: name}
		var saved int64
		if err := rows.Scan(&rec.Version, &rec.Size, &saved); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		rec.SavedAt = time.UnixMilli(saved).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return out, nil
}

// Names lists every snapshot name, sorted.
func (r *Repo) Names(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT name FROM snapshots ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select names: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Delete removes every version of name and reports how many were removed.
func (r *Repo) Delete(ctx context.Context, name string) (int, error) {
	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM snapshots WHERE name = ?`), name)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", name, err)
	}
	return int(n), nil
}
