// Package fsutil provides the single-entry filesystem primitives that the
// tree engines in pkg/operation are built on: buffered single-file copy and
// move with progress reporting, symlink creation and classification, and a
// handful of path helpers.
//
// Errors returned by this package are platform-normalized: callers match
// them against the kinds in pkg/fserr instead of inspecting syscall values.
package fsutil

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/treekit/treekit/pkg/fserr"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultBufferSize is the read/write buffer size used when copying
	// file contents (64 KiB).
	DefaultBufferSize = 64 * 1024

	// DefaultProgressUpdateByteInterval is the minimum number of bytes
	// written between two consecutive progress reports (64 KiB).
	DefaultProgressUpdateByteInterval int64 = 64 * 1024

	// defaultFilePerm is the mode for freshly created destination files.
	defaultFilePerm = 0o644
)

// FileCopyOptions influence CopyFile.
type FileCopyOptions struct {
	// OverwriteExisting truncates and rewrites an existing destination file.
	// Has lower precedence than SkipExisting.
	OverwriteExisting bool

	// SkipExisting silently skips the copy when the destination exists.
	// Takes precedence over OverwriteExisting.
	SkipExisting bool
}

// FileCopyWithProgressOptions influence CopyFileWithProgress.
type FileCopyWithProgressOptions struct {
	OverwriteExisting bool
	SkipExisting      bool

	// ReadBufferSize is the source read buffer size.
	// Zero means DefaultBufferSize.
	ReadBufferSize int

	// WriteBufferSize is the destination write buffer size.
	// Zero means DefaultBufferSize.
	WriteBufferSize int

	// ProgressUpdateByteInterval is the minimum number of bytes written
	// between two progress reports. Zero means
	// DefaultProgressUpdateByteInterval.
	ProgressUpdateByteInterval int64
}

func (o FileCopyWithProgressOptions) readBufferSize() int {
	if o.ReadBufferSize <= 0 {
		return DefaultBufferSize
	}
	return o.ReadBufferSize
}

func (o FileCopyWithProgressOptions) writeBufferSize() int {
	if o.WriteBufferSize <= 0 {
		return DefaultBufferSize
	}
	return o.WriteBufferSize
}

func (o FileCopyWithProgressOptions) byteInterval() int64 {
	if o.ProgressUpdateByteInterval <= 0 {
		return DefaultProgressUpdateByteInterval
	}
	return o.ProgressUpdateByteInterval
}

// CopyFile copies a single file from src to dst and returns the number of
// bytes copied. The destination must be a file path, not a directory.
//
// If src is a symlink to a file, the contents of the link target are copied.
// When the copy is skipped because of SkipExisting, the returned size is 0.
func CopyFile(src, dst string, opts FileCopyOptions) (int64, error) {
	return copyFileInternal(src, dst, FileCopyWithProgressOptions{
		OverwriteExisting: opts.OverwriteExisting,
		SkipExisting:      opts.SkipExisting,
	}, nil)
}

// CopyFileWithProgress copies a single file like CopyFile, reporting
// progress to handler. At least one report is guaranteed: the final one,
// emitted when the file is fully written.
func CopyFileWithProgress(src, dst string, opts FileCopyWithProgressOptions, handler FileProgressFunc) (int64, error) {
	return copyFileInternal(src, dst, opts, handler)
}

func copyFileInternal(src, dst string, opts FileCopyWithProgressOptions, handler FileProgressFunc) (int64, error) {
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

	written, err := copyFileContents(src, dst, srcInfo.Size(), opts, handler)
	if err != nil {
		return written, errors.Errorf("copying %s to %s: %w", src, dst, err)
	}

	return written, nil
}

// copyFileContents performs the buffered read/write loop. No validation is
// performed; callers must have checked source and destination already.
func copyFileContents(src, dst string, bytesTotal int64, opts FileCopyWithProgressOptions, handler FileProgressFunc) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, errors.Errorf("opening source file: %w", err)
	}
	defer func() {
		_ = srcFile.Close()
	}()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, defaultFilePerm)
	if err != nil {
		return 0, errors.Errorf("creating destination file: %w", err)
	}

	progressDst := newProgressWriter(dstFile, handler, opts.byteInterval(), bytesTotal)
	buffered := bufio.NewWriterSize(progressDst, opts.writeBufferSize())

	// Both sides are wrapped in bare interface structs so io.CopyBuffer
	// cannot take the ReadFrom/WriteTo fast paths, which would move data
	// in chunks of its own choosing instead of the configured buffer size.
	written, err := io.CopyBuffer(
		struct{ io.Writer }{buffered},
		struct{ io.Reader }{srcFile},
		make([]byte, opts.readBufferSize()),
	)
	if err != nil {
		_ = dstFile.Close()
		return written, errors.Errorf("writing contents: %w", err)
	}

	if err := buffered.Flush(); err != nil {
		_ = dstFile.Close()
		return written, errors.Errorf("flushing destination: %w", err)
	}

	if err := dstFile.Close(); err != nil {
		return written, errors.Errorf("closing destination: %w", err)
	}

	progressDst.finish()

	return written, nil
}

// validateSourceFile ensures src exists and is a regular file (following
// symlinks), returning its metadata.
func validateSourceFile(src string) (os.FileInfo, error) {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fserr.Wrap(fserr.ErrNotFound, err)
		}
		return nil, errors.Errorf("accessing source file %s: %w", src, err)
	}

	if info.IsDir() {
		return nil, fserr.Wrapf(fserr.ErrNotAFile, "source %s is a directory", src)
	}

	return info, nil
}

// checkFileDestination applies the overwrite/skip flags against the current
// destination state. It returns skip=true when the copy should be silently
// skipped, and an error when the destination state forbids the operation.
func checkFileDestination(src, dst string, overwrite, skipExisting bool) (bool, error) {
	dstInfo, err := os.Lstat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Errorf("accessing destination %s: %w", dst, err)
	}

	if dstInfo.IsDir() {
		return false, fserr.Wrapf(fserr.ErrInvalidDestination, "destination %s is a directory", dst)
	}

	same, err := isSameFile(src, dst)
	if err != nil {
		return false, err
	}
	if same {
		return false, fserr.Wrapf(fserr.ErrSameFile, "%s and %s are the same file", src, dst)
	}

	if skipExisting {
		return true, nil
	}
	if !overwrite {
		return false, fserr.Wrapf(fserr.ErrDestinationExists, "destination file %s already exists", dst)
	}

	return false, nil
}

func isSameFile(a, b string) (bool, error) {
	resolvedA, err := filepath.EvalSymlinks(a)
	if err != nil {
		return false, errors.Errorf("resolving %s: %w", a, err)
	}
	resolvedB, err := filepath.EvalSymlinks(b)
	if err != nil {
		return false, errors.Errorf("resolving %s: %w", b, err)
	}
	return resolvedA == resolvedB, nil
}

// RemoveFile removes a single file. Directories are rejected with
// ErrNotAFile; symlinks are removed as links, never dereferenced.
func RemoveFile(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fserr.Wrap(fserr.ErrNotFound, err)
		}
		return errors.Errorf("accessing %s: %w", path, err)
	}

	if info.IsDir() {
		return fserr.Wrapf(fserr.ErrNotAFile, "%s is a directory", path)
	}

	if err := os.Remove(path); err != nil {
		return errors.Errorf("removing %s: %w", path, err)
	}

	return nil
}

// FileSize returns the size of the file at path in bytes, following
// symlinks.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fserr.Wrap(fserr.ErrNotFound, err)
		}
		return 0, errors.Errorf("accessing %s: %w", path, err)
	}

	if info.IsDir() {
		return 0, fserr.Wrapf(fserr.ErrNotAFile, "%s is a directory", path)
	}

	return info.Size(), nil
}
