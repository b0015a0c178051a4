package fsutil

import (
	"os"

	"gitlab.com/tozd/go/errors"
)

// FileMoveOptions influence MoveFile.
type FileMoveOptions struct {
	// OverwriteExisting replaces an existing destination file.
	// Has lower precedence than SkipExisting.
	OverwriteExisting bool

	// SkipExisting leaves the source in place and does nothing when the
	// destination exists. Takes precedence over OverwriteExisting.
	SkipExisting bool
}

// MoveFile moves a single file from src to dst and returns the number of
// bytes moved (the file size). A same-filesystem rename is attempted first;
// if the platform rejects it as a cross-device rename, the file is copied
// and the source removed.
func MoveFile(src, dst string, opts FileMoveOptions) (int64, error) {
	return moveFileInternal(src, dst, FileCopyWithProgressOptions{
		OverwriteExisting: opts.OverwriteExisting,
		SkipExisting:      opts.SkipExisting,
	}, nil, os.Rename)
}

// MoveFileWithProgress moves a single file like MoveFile, reporting
// progress to handler. Under a successful rename a single report is
// emitted; under copy-and-delete the reporting matches
// CopyFileWithProgress.
func MoveFileWithProgress(src, dst string, opts FileCopyWithProgressOptions, handler FileProgressFunc) (int64, error) {
	return moveFileInternal(src, dst, opts, handler, os.Rename)
}

// moveFileInternal does the work of both exported movers. The rename call
// is injected so tests can force the copy-and-delete branch without a
// second filesystem.
func moveFileInternal(src, dst string, opts FileCopyWithProgressOptions, handler FileProgressFunc, rename func(oldPath, newPath string) error) (int64, error) {
	srcInfo, err := validateSourceFile(src)
	if err != nil {
		return 0, err
	}

	skip, err := checkFileDestination(src, dst, opts.OverwriteExisting, opts.SkipExisting)
	if err != nil {
		return 0, err
	}
	if skip {
		return 0, nil
	}

	if err := rename(src, dst); err == nil {
		if handler != nil {
			handler(FileProgress{BytesFinished: srcInfo.Size(), BytesTotal: srcInfo.Size()})
		}
		return srcInfo.Size(), nil
	} else if !IsCrossDeviceError(err) {
		return 0, errors.Errorf("renaming %s to %s: %w", src, dst, err)
	}

	// Rename crossed a filesystem boundary: copy the contents over and
	// remove the original.
	written, err := copyFileContents(src, dst, srcInfo.Size(), opts, handler)
	if err != nil {
		return written, errors.Errorf("copying %s to %s: %w", src, dst, err)
	}

	if err := os.Remove(src); err != nil {
		return written, errors.Errorf("removing source %s after copy: %w", src, err)
	}

	return written, nil
}

// IsCrossDeviceError reports whether err is the platform's "invalid
// cross-device link" rename failure. The move engine wraps it into
// fserr.ErrCrossDevice when no fallback applies.
func IsCrossDeviceError(err error) bool {
	return isCrossDeviceErrno(err)
}
