//go:build !windows

package operation

import (
	"errors"
	"syscall"
)

// isRenameCollisionErrno matches rename failures caused by an occupied
// destination that rename(2) cannot replace.
func isRenameCollisionErrno(err error) bool {
	return errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST)
}
