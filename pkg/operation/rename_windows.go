//go:build windows

package operation

import (
	"errors"
	"syscall"
)

const (
	errorAlreadyExists = syscall.Errno(183) // ERROR_ALREADY_EXISTS
	errorDirNotEmpty   = syscall.Errno(145) // ERROR_DIR_NOT_EMPTY
)

// isRenameCollisionErrno matches rename failures caused by an occupied
// destination that MoveFileEx cannot replace.
func isRenameCollisionErrno(err error) bool {
	return errors.Is(err, errorAlreadyExists) || errors.Is(err, errorDirNotEmpty)
}
