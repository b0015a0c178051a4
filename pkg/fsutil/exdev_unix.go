//go:build !windows

package fsutil

import (
	"errors"
	"syscall"
)

func isCrossDeviceErrno(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
