package fsutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/treekit/treekit/pkg/fserr"
	"gitlab.com/tozd/go/errors"
)

// RejoinOntoTarget strips sourceRoot from path and re-applies the relative
// remainder onto targetRoot. path must live under sourceRoot.
func RejoinOntoTarget(sourceRoot, path, targetRoot string) (string, error) {
	if sourceRoot == path {
		return targetRoot, nil
	}

	rel, err := filepath.Rel(sourceRoot, path)
	if err != nil {
		return "", errors.Errorf("relativizing %s against %s: %w", path, sourceRoot, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("path %s escapes source root %s", path, sourceRoot)
	}

	return filepath.Join(targetRoot, rel), nil
}

// CanonicalizeDir resolves path to an absolute, symlink-free directory
// path. The path must exist and be a directory (or a symlink to one).
func CanonicalizeDir(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fserr.Wrap(fserr.ErrNotFound, err)
		}
		return "", errors.Errorf("accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fserr.Wrapf(fserr.ErrNotADirectory, "%s is not a directory", path)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", path, err)
	}

	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", errors.Errorf("absolutizing %s: %w", resolved, err)
	}

	return abs, nil
}

// IsDirEmpty reports whether the directory at path has no entries.
func IsDirEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, fserr.Wrap(fserr.ErrNotFound, err)
		}
		return false, errors.Errorf("accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		return false, fserr.Wrapf(fserr.ErrNotADirectory, "%s is not a directory", path)
	}

	dir, err := os.Open(path)
	if err != nil {
		return false, errors.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		_ = dir.Close()
	}()

	// Reading a single entry is enough to decide emptiness.
	_, err = dir.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, errors.Errorf("reading %s: %w", path, err)
	}

	return false, nil
}
