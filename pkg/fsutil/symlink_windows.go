//go:build windows

package fsutil

import (
	"os"

	"golang.org/x/sys/windows"
)

// Windows needs to know at creation time whether a link points at a
// directory. os.Symlink infers that from the target, which fails for
// dangling links, so directory links are created through the syscall
// directly.
func createSymlink(target, linkPath string, kind SymlinkKind) error {
	if kind != SymlinkToDirectory {
		return os.Symlink(target, linkPath)
	}

	linkPtr, err := windows.UTF16PtrFromString(linkPath)
	if err != nil {
		return err
	}
	targetPtr, err := windows.UTF16PtrFromString(target)
	if err != nil {
		return err
	}

	flags := uint32(windows.SYMBOLIC_LINK_FLAG_DIRECTORY | windows.SYMBOLIC_LINK_FLAG_ALLOW_UNPRIVILEGED_CREATE)

	return windows.CreateSymbolicLink(linkPtr, targetPtr, flags)
}
