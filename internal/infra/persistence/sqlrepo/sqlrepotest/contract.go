// Package sqlrepotest holds the behavioral contract for snapshot repositories
// opened on any SQL dialect.
package sqlrepotest

import (
	"context"
	"errors"
	"testing"

	"decotree/internal/infra/persistence/sqlrepo"
)

// RunRepoContract exercises versioning, reads, listing and deletion against
// an empty repository.
func RunRepoContract(t *testing.T, repo *sqlrepo.Repo) {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.Latest(ctx, "alpha"); !errors.Is(err, sqlrepo.ErrNotFound) {
		t.Fatalf("latest on empty repo: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Save(ctx, "", []byte("{}")); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}

	first, err := repo.Save(ctx, "alpha", []byte(`{"label":"v1"}`))
	if err != nil {
		t.Fatalf("save v1: %v", err)
	}
	second, err := repo.Save(ctx, "alpha", []byte(`{"label":"v2"}`))
	if err != nil {
		t.Fatalf("save v2: %v", err)
	}
	if first.Version != 1 || second.Version != 2 {
		t.Fatalf("expected versions 1 and 2, got %d and %d", first.Version, second.Version)
	}
	if _, err := repo.Save(ctx, "beta", []byte(`{}`)); err != nil {
		t.Fatalf("save beta: %v", err)
	}

	latest, err := repo.Latest(ctx, "alpha")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Version != 2 || string(latest.Payload) != `{"label":"v2"}` {
		t.Fatalf("unexpected latest %+v", latest)
	}
	if !latest.SavedAt.Equal(second.SavedAt) {
		t.Fatalf("saved_at mismatch: %v vs %v", latest.SavedAt, second.SavedAt)
	}
	got, err := repo.Get(ctx, "alpha", 1)
	if err != nil {
		t.Fatalf("get v1: %v", err)
	}
	if string(got.Payload) != `{"label":"v1"}` || got.Size != len(`{"label":"v1"}`) {
		t.Fatalf("unexpected v1 %+v", got)
	}
	if _, err := repo.Get(ctx, "alpha", 9); !errors.Is(err, sqlrepo.ErrNotFound) {
		t.Fatalf("get missing version: expected ErrNotFound, got %v", err)
	}

	versions, err := repo.Versions(ctx, "alpha")
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(versions) != 2 || versions[0].Version != 1 || versions[1].Version != 2 || versions[1].Size != len(`{"label":"v2"}`) {
		t.Fatalf("unexpected versions %+v", versions)
	}
	names, err := repo.Names(ctx)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Fatalf("unexpected names %v", names)
	}

	n, err := repo.Delete(ctx, "alpha")
	if err != nil || n != 2 {
		t.Fatalf("delete alpha: n=%d err=%v", n, err)
	}
	if n, err := repo.Delete(ctx, "alpha"); err != nil || n != 0 {
		t.Fatalf("second delete: n=%d err=%v", n, err)
	}
	if versions, _ := repo.Versions(ctx, "alpha"); len(versions) != 0 {
		t.Fatalf("expected no versions after delete, got %+v", versions)
	}
	again, err := repo.Save(ctx, "alpha", []byte(`{}`))
	if err != nil || again.Version != 1 {
		t.Fatalf("expected numbering to restart after delete, got %+v %v", again, err)
	}
}
