package tree

import (
	"testing"

	"decotree/testutil"
)

func TestTreeDependsOnStandardLibraryOnly(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.ThirdPartyImportForbidden, "pkg/tree is dependency free")
	testutil.AssertNoDirectImports(t, ".", testutil.ModuleImportsExcept("decotree"), "pkg/tree imports no other decotree package")
}

func TestTreeHasNoTransitiveThirdPartyDeps(t *testing.T) {
	if testing.Short() {
		t.Skip("runs go list")
	}
	testutil.AssertNoTransitiveDependency(t, ".", testutil.ThirdPartyImportForbidden, "pkg/tree is dependency free")
}
