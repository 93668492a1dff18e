package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"decotree/internal/infra/persistence/sqlrepo"
	"decotree/pkg/treejson"
)

// SQLRepository adapts a sqlrepo.Repo to Repository.
type SQLRepository struct {
	repo *sqlrepo.Repo
}

// NewSQLRepository wraps repo.
func NewSQLRepository(repo *sqlrepo.Repo) *SQLRepository {
	return &SQLRepository{repo: repo}
}

// Dialect reports the SQL dialect in use.
func (r *SQLRepository) Dialect() string { return r.repo.Dialect().Name }

func mapSQLError(err error, name string, version int) error {
	if errors.Is(err, sqlrepo.ErrNotFound) {
		return notFound(name, version)
	}
	return err
}

func toInfo(rec sqlrepo.Record) Info {
	return Info{Name: rec.Name, Version: rec.Version, Size: rec.Size, SavedAt: rec.SavedAt}
}

func toSnapshot(rec sqlrepo.Record) (Snapshot, error) {
	doc, err := treejson.Unmarshal(rec.Payload)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s@%d: %w", rec.Name, rec.Version, err)
	}
	return Snapshot{Info: toInfo(rec), Doc: doc}, nil
}

// Save implements Repository.
func (r *SQLRepository) Save(ctx context.Context, name string, doc treejson.Object) (Info, error) {
	if err := ValidateName(name); err != nil {
		return Info{}, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return Info{}, fmt.Errorf("encode snapshot %s: %w", name, err)
	}
	rec, err := r.repo.Save(ctx, name, data)
	if err != nil {
		return Info{}, err
	}
	return toInfo(rec), nil
}

// Latest implements Repository.
func (r *SQLRepository) Latest(ctx context.Context, name string) (Snapshot, error) {
	rec, err := r.repo.Latest(ctx, name)
	if err != nil {
		return Snapshot{}, mapSQLError(err, name, 0)
	}
	return toSnapshot(rec)
}

// Get implements Repository.
func (r *SQLRepository) Get(ctx context.Context, name string, version int) (Snapshot, error) {
	rec, err := r.repo.Get(ctx, name, version)
	if err != nil {
		return Snapshot{}, mapSQLError(err, name, version)
	}
	return toSnapshot(rec)
}

// Versions implements Repository.
func (r *SQLRepository) Versions(ctx context.Context, name string) ([]Info, error) {
	recs, err := r.repo.Versions(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFound(name, 0)
	}
	out := make([]Info, len(recs))
	for i, rec := range recs {
		out[i] = toInfo(rec)
	}
	return out, nil
}

// Delete implements Repository.
func (r *SQLRepository) Delete(ctx context.Context, name string) (int, error) {
	return r.repo.Delete(ctx, name)
}

// Names implements Repository.
func (r *SQLRepository) Names(ctx context.Context) ([]string, error) {
	return r.repo.Names(ctx)
}

// Close implements Repository.
func (r *SQLRepository) Close() error { return r.repo.Close() }
