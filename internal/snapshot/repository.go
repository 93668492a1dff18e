// Package snapshot stores versioned JSON documents of trees. A Repository
// keeps every saved version of a named document; the Service converts between
// live trees and documents with treejson.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"decotree/pkg/treejson"
)

// ErrNotFound is returned when a name or version has no stored snapshot.
var ErrNotFound = errors.New("snapshot: not found")

// Info describes one stored version.
type Info struct {
	Name    string    `json:"name"`
	Version int       `json:"version"`
	Size    int       `json:"size_bytes"`
	SavedAt time.Time `json:"saved_at"`
}

// Snapshot is a stored version together with its decoded document.
type Snapshot struct {
	Info
	Doc treejson.Object
}

// Repository persists versioned snapshot documents. Versions of a name start
// at 1 and increase by one per Save. Latest, Get and Versions fail with
// ErrNotFound when nothing matches; Delete removes every version and reports
// how many were removed.
type Repository interface {
	Save(ctx context.Context, name string, doc treejson.Object) (Info, error)
	Latest(ctx context.Context, name string) (Snapshot, error)
	Get(ctx context.Context, name string, version int) (Snapshot, error)
	Versions(ctx context.Context, name string) ([]Info, error)
	Delete(ctx context.Context, name string) (int, error)
	Names(ctx context.Context) ([]string, error)
	Close() error
}

// ValidateName rejects names that cannot be used as a storage key segment.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("snapshot name required")
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("snapshot name %q must not contain path separators", name)
	case name == "." || name == "..":
		return fmt.Errorf("snapshot name %q is reserved", name)
	}
	return nil
}

func notFound(name string, version int) error {
	if version > 0 {
		return fmt.Errorf("%s@%d: %w", name, version, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", name, ErrNotFound)
}
