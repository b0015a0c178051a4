package fsutil

import (
	"os"

	"github.com/treekit/treekit/pkg/fserr"
	"gitlab.com/tozd/go/errors"
)

// SymlinkKind distinguishes file-type from directory-type symlinks. The
// distinction only matters on platforms whose link creation call needs it
// (Windows); elsewhere both kinds are created identically.
type SymlinkKind int

const (
	SymlinkToFile SymlinkKind = iota
	SymlinkToDirectory
)

// CreateSymlink creates a symbolic link at linkPath pointing at target.
// The target may be relative; it is stored verbatim, not resolved.
func CreateSymlink(target, linkPath string, kind SymlinkKind) error {
	if err := createSymlink(target, linkPath, kind); err != nil {
		return errors.Errorf("creating symlink %s -> %s: %w", linkPath, target, err)
	}
	return nil
}

// ReadSymlink returns the (possibly relative) target stored in the link at
// path.
func ReadSymlink(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fserr.Wrap(fserr.ErrNotFound, err)
		}
		return "", errors.Errorf("reading symlink %s: %w", path, err)
	}
	return target, nil
}

// ExistsNoFollow reports whether something exists at path without
// dereferencing a symlink at that location. A broken symlink exists.
func ExistsNoFollow(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("accessing %s: %w", path, err)
}

// IsBrokenSymlink reports whether path is a symbolic link whose target does
// not exist. A missing path or a non-link path is not a broken symlink.
func IsBrokenSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Errorf("accessing %s: %w", path, err)
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return false, nil
	}

	// Dereferencing stat: failure with "not exist" means the target is gone.
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, errors.Errorf("dereferencing %s: %w", path, err)
	}

	return false, nil
}

// Metadata returns file metadata for path. With follow set, symlinks are
// dereferenced (os.Stat); without it the link itself is described
// (os.Lstat).
func Metadata(path string, follow bool) (os.FileInfo, error) {
	var (
		info os.FileInfo
		err  error
	)
	if follow {
		info, err = os.Stat(path)
	} else {
		info, err = os.Lstat(path)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fserr.Wrap(fserr.ErrNotFound, err)
		}
		return nil, errors.Errorf("accessing %s: %w", path, err)
	}
	return info, nil
}
