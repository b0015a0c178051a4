package operation

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/treekit/treekit/pkg/fserr"
	"github.com/treekit/treekit/pkg/fsutil"
	"github.com/treekit/treekit/pkg/policy"
	"github.com/treekit/treekit/pkg/scan"
)

// CopyTree replicates the directory tree rooted at src under dst. The
// destination root is created when missing. Collisions discovered during
// traversal are resolved per entry against the configured behaviours; on an
// Abort decision or primitive failure the operation stops and entries
// already written remain on disk.
func CopyTree(ctx context.Context, src, dst string, opts CopyOptions) (*CopyResult, error) {
	return copyTree(ctx, src, dst, opts, nil)
}

// CopyTreeWithProgress copies like CopyTree, delivering Progress snapshots
// to handler: one per started operation, at least one per
// ProgressUpdateByteInterval bytes within a file, and a final one on
// completion.
func CopyTreeWithProgress(ctx context.Context, src, dst string, opts CopyOptions, handler ProgressFunc) (*CopyResult, error) {
	return copyTree(ctx, src, dst, opts, handler)
}

func copyTree(ctx context.Context, src, dst string, opts CopyOptions, handler ProgressFunc) (*CopyResult, error) {
	lg := zerolog.Ctx(ctx)

	srcRoot, err := fsutil.CanonicalizeDir(src)
	if err != nil {
		return nil, errors.Errorf("validating source %s: %w", src, err)
	}

	dstRoot, dstExists, err := prepareDestination(srcRoot, dst, opts.DestinationRule)
	if err != nil {
		return nil, err
	}

	lg.Debug().
		Str("source", srcRoot).
		Str("destination", dstRoot).
		Msg("copying directory tree")

	tr := &tracker{handler: handler}
	tr.begin(OpScanning, srcRoot)

	plan, err := planTree(srcRoot, opts)
	if err != nil {
		return nil, err
	}

	tr.progress.BytesTotal = plan.bytesTotal
	tr.progress.TotalOperations = plan.operations
	if !dstExists {
		tr.progress.TotalOperations++

		tr.begin(OpCreatingDirectory, dstRoot)
		if err := os.MkdirAll(dstRoot, 0o755); err != nil {
			return nil, errors.Errorf("creating destination root %s: %w", dstRoot, err)
		}
		tr.progress.DirectoriesCreated++
	}

	if err := executeCopy(srcRoot, dstRoot, opts, tr); err != nil {
		return nil, err
	}

	tr.emit()

	lg.Debug().
		Int64("bytes", tr.progress.BytesFinished).
		Int("files", tr.progress.FilesCopied).
		Int("directories", tr.progress.DirectoriesCreated).
		Msg("directory tree copied")

	return &CopyResult{
		TotalBytesCopied:   tr.progress.BytesFinished,
		FilesCopied:        tr.progress.FilesCopied,
		DirectoriesCreated: tr.progress.DirectoriesCreated,
		SymlinksCreated:    tr.progress.SymlinksCreated,
	}, nil
}

// prepareDestination validates the destination path against the source root
// and applies the destination-root rule. It reports whether the destination
// root already exists.
func prepareDestination(srcRoot, dst string, rule policy.DestinationDirectoryRule) (string, bool, error) {
	dstRoot, err := filepath.Abs(filepath.Clean(dst))
	if err != nil {
		return "", false, errors.Errorf("absolutizing destination %s: %w", dst, err)
	}

	if dstRoot == srcRoot || strings.HasPrefix(dstRoot, srcRoot+string(filepath.Separator)) {
		return "", false, fserr.Wrapf(fserr.ErrInvalidDestination,
			"destination %s is the source or lies inside it", dstRoot)
	}

	info, err := os.Stat(dstRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", false, errors.Errorf("accessing destination %s: %w", dstRoot, err)
		}
		if err := policy.CheckDestinationRule(rule, false, false); err != nil {
			return "", false, err
		}
		return dstRoot, false, nil
	}

	if !info.IsDir() {
		return "", false, fserr.Wrapf(fserr.ErrInvalidDestination,
			"destination %s exists and is not a directory", dstRoot)
	}

	empty, err := fsutil.IsDirEmpty(dstRoot)
	if err != nil {
		return "", false, err
	}
	if err := policy.CheckDestinationRule(rule, true, empty); err != nil {
		return "", false, err
	}

	return dstRoot, true, nil
}

// planStats is the outcome of the read-only pre-pass.
type planStats struct {
	bytesTotal int64
	files      int
	dirs       int
	symlinks   int
	operations int
}

// planTree scans the source once before any mutation, summing the totals
// the progress reporting needs. Broken symlinks under the Fail behaviour
// abort here, before any file is created.
func planTree(srcRoot string, opts CopyOptions) (planStats, error) {
	ex, err := newExcluder(opts.ExcludePatterns)
	if err != nil {
		return planStats{}, err
	}

	var plan planStats

	scanner := scan.New(srcRoot, scan.Options{
		DepthLimit:     opts.DepthLimit,
		FollowSymlinks: opts.Symlinks == policy.SymlinkFollow,
	})
	for entry, ok := scanner.Next(); ok; entry, ok = scanner.Next() {
		if ex.skip(entry) {
			continue
		}
		switch entry.Kind {
		case scan.KindFile:
			plan.files++
			plan.bytesTotal += entry.Size
		case scan.KindDirectory:
			plan.dirs++
		case scan.KindSymlinkToFile, scan.KindSymlinkToDirectory:
			plan.symlinks++
		case scan.KindBrokenSymlink:
			if opts.BrokenSymlinks == policy.BrokenSymlinkFail {
				return planStats{}, fserr.Wrapf(fserr.ErrBrokenSymlink,
					"broken symlink %s in source tree", entry.Path)
			}
			plan.symlinks++
		}
	}
	if err := scanner.Err(); err != nil {
		return planStats{}, errors.Errorf("scanning source tree: %w", err)
	}

	plan.operations = plan.files + plan.dirs + plan.symlinks

	return plan, nil
}

// executeCopy is the mutating second pass: re-scan and act on each entry in
// pre-order, so every directory exists at the destination before its
// children are written.
func executeCopy(srcRoot, dstRoot string, opts CopyOptions, tr *tracker) error {
	ex, err := newExcluder(opts.ExcludePatterns)
	if err != nil {
		return err
	}

	policies := opts.policies()

	scanner := scan.New(srcRoot, scan.Options{
		DepthLimit:     opts.DepthLimit,
		FollowSymlinks: opts.Symlinks == policy.SymlinkFollow,
	})
	for entry, ok := scanner.Next(); ok; entry, ok = scanner.Next() {
		if ex.skip(entry) {
			continue
		}

		destPath := filepath.Join(dstRoot, entry.RelPath)
		if err := copyEntry(entry, destPath, opts, policies, tr); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Errorf("scanning source tree: %w", err)
	}

	return nil
}

func copyEntry(entry scan.Entry, destPath string, opts CopyOptions, policies policy.Policies, tr *tracker) error {
	existing, existingKind, err := classifyDestination(entry, destPath)
	if err != nil {
		return err
	}

	decision := policy.Proceed
	if existing != nil {
		decision = policy.Resolve(policies, existingKind)
	}

	switch decision {
	case policy.Skip:
		if entry.Kind.IsSymlink() {
			tr.begin(OpCreatingSymlink, destPath)
		} else {
			tr.begin(OpCopyingFile, destPath)
		}
		return nil
	case policy.Abort:
		return fserr.Wrapf(fserr.ErrCollisionAbort,
			"%s already exists at destination %s", existingKind, destPath)
	}

	switch entry.Kind {
	case scan.KindDirectory:
		tr.begin(OpCreatingDirectory, destPath)
		if existing != nil {
			// Merging into an existing directory: nothing to create.
			return nil
		}
		if err := os.Mkdir(destPath, 0o755); err != nil {
			return errors.Errorf("creating directory %s: %w", destPath, err)
		}
		tr.progress.DirectoriesCreated++
		return nil

	case scan.KindFile:
		tr.begin(OpCopyingFile, destPath)
		if existing != nil && existingKind.IsSymlink() {
			// Replace the link instead of writing through it.
			if err := os.Remove(destPath); err != nil {
				return errors.Errorf("removing destination link %s: %w", destPath, err)
			}
		}
		return copyFileEntry(entry, destPath, opts, tr)

	case scan.KindSymlinkToFile, scan.KindSymlinkToDirectory, scan.KindBrokenSymlink:
		if entry.Kind == scan.KindBrokenSymlink && opts.BrokenSymlinks == policy.BrokenSymlinkFail {
			return fserr.Wrapf(fserr.ErrBrokenSymlink, "broken symlink %s in source tree", entry.Path)
		}
		tr.begin(OpCreatingSymlink, destPath)
		return preserveSymlink(entry, destPath, existing != nil, tr)

	default:
		return errors.Errorf("unhandled entry kind %s for %s", entry.Kind, entry.Path)
	}
}

// classifyDestination inspects what already occupies destPath, rejecting
// kind mismatches (a file where a directory must go, or the reverse) that
// no collision behaviour can arbitrate.
func classifyDestination(entry scan.Entry, destPath string) (os.FileInfo, scan.EntryKind, error) {
	existing, err := os.Lstat(destPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, errors.Errorf("accessing destination %s: %w", destPath, err)
	}

	var existingKind scan.EntryKind
	switch {
	case existing.IsDir():
		existingKind = scan.KindDirectory
	case existing.Mode()&os.ModeSymlink != 0:
		existingKind = scan.KindSymlinkToFile
	default:
		existingKind = scan.KindFile
	}

	entryIsDir := entry.Kind == scan.KindDirectory
	existingIsDir := existingKind == scan.KindDirectory
	if entryIsDir != existingIsDir {
		return nil, 0, fserr.Wrapf(fserr.ErrCollisionAbort,
			"source %s and destination %s disagree on directory-ness", entry.Path, destPath)
	}

	return existing, existingKind, nil
}

// copyFileEntry copies one file's bytes, translating the per-file progress
// stream into increments of the aggregate accumulator.
func copyFileEntry(entry scan.Entry, destPath string, opts CopyOptions, tr *tracker) error {
	var reported int64
	_, err := fsutil.CopyFileWithProgress(entry.Path, destPath, fsutil.FileCopyWithProgressOptions{
		OverwriteExisting:          true,
		ReadBufferSize:             opts.ReadBufferSize,
		WriteBufferSize:            opts.WriteBufferSize,
		ProgressUpdateByteInterval: opts.ProgressUpdateByteInterval,
	}, func(fp fsutil.FileProgress) {
		tr.progress.BytesFinished += fp.BytesFinished - reported
		reported = fp.BytesFinished
		tr.emit()
	})
	if err != nil {
		return errors.Errorf("copying file to %s: %w", destPath, err)
	}

	tr.progress.FilesCopied++

	return nil
}

// preserveSymlink recreates the source link at the destination with the
// same, possibly relative, target.
func preserveSymlink(entry scan.Entry, destPath string, replaceExisting bool, tr *tracker) error {
	target, err := fsutil.ReadSymlink(entry.Path)
	if err != nil {
		return err
	}

	if replaceExisting {
		if err := os.Remove(destPath); err != nil {
			return errors.Errorf("removing destination %s: %w", destPath, err)
		}
	}

	kind := fsutil.SymlinkToFile
	if entry.Kind == scan.KindSymlinkToDirectory {
		kind = fsutil.SymlinkToDirectory
	}
	if err := fsutil.CreateSymlink(target, destPath, kind); err != nil {
		return err
	}

	tr.progress.SymlinksCreated++

	return nil
}
