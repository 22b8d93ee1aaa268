package scene

import (
	"testing"

	"inventorycore/testutil"
)

func TestSceneDoesNotReachIntoStorage(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.StorageImportForbidden, "the scene graph only hosts containers")
}
