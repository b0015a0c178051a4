//go:build windows

package fsutil

import (
	"errors"
	"syscall"
)

// ERROR_NOT_SAME_DEVICE (0x11), what MoveFileEx reports when the source
// and destination live on different volumes.
const errorNotSameDevice = syscall.Errno(0x11)

func isCrossDeviceErrno(err error) bool {
	return errors.Is(err, errorNotSameDevice)
}
