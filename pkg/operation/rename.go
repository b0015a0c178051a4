package operation

import (
	"os"

	"github.com/treekit/treekit/pkg/fsutil"
)

// renamer abstracts the platform rename call so the move engine's fallback
// decision is a single classification check and tests can simulate a
// cross-device failure without two real filesystems.
type renamer interface {
	Rename(oldPath, newPath string) error
}

type osRenamer struct{}

func (osRenamer) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// renameFallbackEligible reports whether a rename failure is one that no
// rename can ever resolve: a cross-device move, or a destination collision
// the platform rename cannot itself arbitrate. Everything else (permission
// denied and the like) is terminal; retrying it as copy-and-delete would
// mask a real error.
func renameFallbackEligible(err error) bool {
	return fsutil.IsCrossDeviceError(err) || isRenameCollisionErrno(err)
}
