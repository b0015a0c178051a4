//go:build !windows

package fsutil

import "os"

func createSymlink(target, linkPath string, _ SymlinkKind) error {
	return os.Symlink(target, linkPath)
}
