// Package fserr defines the error kinds surfaced by treekit's file and
// directory operations. Callers should match against these sentinels with
// errors.Is rather than inspecting platform error values directly.
package fserr

import (
	stderrors "errors"

	"gitlab.com/tozd/go/errors"
)

// 🚨 Error kinds. Every error returned by pkg/fsutil, pkg/scan and
// pkg/operation wraps exactly one of these.
var (
	// ErrNotFound means the source path does not exist.
	ErrNotFound = stderrors.New("source path does not exist")

	// ErrNotADirectory means the source path exists but is not a directory.
	ErrNotADirectory = stderrors.New("path is not a directory")

	// ErrNotAFile means the source path exists but is not a regular file.
	ErrNotAFile = stderrors.New("path is not a file")

	// ErrDestinationExists means the destination-root rule was violated
	// before traversal started.
	ErrDestinationExists = stderrors.New("destination already exists")

	// ErrDestinationNotEmpty means the destination directory exists and is
	// not empty, but the destination rule requires it to be empty.
	ErrDestinationNotEmpty = stderrors.New("destination directory is not empty")

	// ErrInvalidDestination means the destination path points to an invalid
	// location: it equals the source, lies inside the source, or exists and
	// is not a directory.
	ErrInvalidDestination = stderrors.New("destination path points to an invalid location")

	// ErrCollisionAbort means a per-entry collision policy resolved to
	// Abort mid-traversal.
	ErrCollisionAbort = stderrors.New("collision policy aborted the operation")

	// ErrCrossDevice means a rename failed for a reason that only the
	// rename-with-fallback move strategy may recover from.
	ErrCrossDevice = stderrors.New("rename not supported across filesystems")

	// ErrSameFile means source and destination resolve to the same file.
	ErrSameFile = stderrors.New("source and destination are the same file")

	// ErrBrokenSymlink means a broken symbolic link was encountered under a
	// policy that cannot handle it (a broken link cannot be followed).
	ErrBrokenSymlink = stderrors.New("cannot follow broken symbolic link")
)

// Wrap attaches a kind to an underlying error, keeping both matchable
// with errors.Is.
func Wrap(kind error, err error) error {
	if err == nil {
		return errors.Errorf("%w", kind)
	}
	return errors.Errorf("%w: %w", kind, err)
}

// Wrapf builds a new error of the given kind with a formatted message.
// The kind stays matchable with errors.Is.
func Wrapf(kind error, format string, args ...any) error {
	args = append(args, kind)
	return errors.Errorf(format+": %w", args...)
}

// IsAnyKind reports whether err wraps one of the treekit error kinds.
func IsAnyKind(err error) bool {
	for _, kind := range []error{
		ErrNotFound,
		ErrNotADirectory,
		ErrNotAFile,
		ErrDestinationExists,
		ErrDestinationNotEmpty,
		ErrInvalidDestination,
		ErrCollisionAbort,
		ErrCrossDevice,
		ErrSameFile,
		ErrBrokenSymlink,
	} {
		if stderrors.Is(err, kind) {
			return true
		}
	}
	return false
}
