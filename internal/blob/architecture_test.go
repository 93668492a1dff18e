package blob

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestOnlyBlobPackageImportsInfra ensures that only the top-level blob
// package wraps the infra-backed implementations. Other packages must depend
// on the blob.Store interface instead of importing infra packages directly.
func TestOnlyBlobPackageImportsInfra(t *testing.T) {
	infraPrefix := "decotree/internal/infra/blob"
	allowedPrefix := "decotree/internal/blob"

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "decotree/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	seen := make(map[string]struct{})

	for _, pkg := range pkgs {
		if strings.HasPrefix(pkg.PkgPath, allowedPrefix) {
			continue
		}
		if strings.HasPrefix(pkg.PkgPath, infraPrefix) {
			continue
		}
		for importPath := range pkg.Imports {
			if isInfraImport(importPath, infraPrefix) {
				pos := filepath.Join(pkg.PkgPath, "...")
				seen[pos+": "+importPath] = struct{}{}
			}
		}
	}

	if len(seen) > 0 {
		violations := make([]string, 0, len(seen))
		for v := range seen {
			violations = append(violations, v)
		}
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden import of infra blob package: %s", v)
		}
		t.Fatalf("found %d forbidden imports of infra blob packages", len(violations))
	}
}

func isInfraImport(importPath, prefix string) bool {
	return importPath == prefix || strings.HasPrefix(importPath, prefix+"/")
}

// TestTreeLayersStayStorageFree keeps the tree model, codec, query and
// observability packages usable without any snapshot storage backend.
func TestTreeLayersStayStorageFree(t *testing.T) {
	storageFree := []string{
		"decotree/pkg/tree",
		"decotree/pkg/treejson",
		"decotree/internal/query",
		"decotree/internal/observability",
	}
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports | packages.NeedDeps}
	pkgs, err := packages.Load(cfg, storageFree...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if len(pkgs) != len(storageFree) {
		t.Fatalf("loaded %d packages, want %d", len(pkgs), len(storageFree))
	}
	var violations []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		if isStoragePackage(p.PkgPath) {
			violations = append(violations, p.PkgPath)
		}
	})
	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("tree layers depend on storage packages:\n%s", strings.Join(violations, "\n"))
	}
}

func isStoragePackage(path string) bool {
	for _, prefix := range []string{
		"decotree/internal/blob",
		"decotree/internal/infra",
		"decotree/internal/snapshot",
	} {
		if isInfraImport(path, prefix) {
			return true
		}
	}
	return false
}

func TestIsStoragePackage(t *testing.T) {
	cases := map[string]bool{
		"decotree/internal/blob":                      true,
		"decotree/internal/blob/core":                 true,
		"decotree/internal/infra/persistence/sqlrepo": true,
		"decotree/internal/snapshot":                  true,
		"decotree/internal/blobby":                    false,
		"decotree/pkg/treejson":                       false,
		"github.com/aws/aws-sdk-go-v2/service/s3":     false,
	}
	for path, want := range cases {
		if got := isStoragePackage(path); got != want {
			t.Fatalf("isStoragePackage(%q) = %v, want %v", path, got, want)
		}
	}
}
