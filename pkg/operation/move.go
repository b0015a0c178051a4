package operation

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/treekit/treekit/pkg/fserr"
	"github.com/treekit/treekit/pkg/fsutil"
	"github.com/treekit/treekit/pkg/policy"
)

// MoveTree moves the directory tree rooted at src to dst. The strategy in
// opts decides the mechanism: a single atomic rename, a copy of the whole
// tree followed by source removal, or rename with copy-and-delete fallback.
// The result reports which mechanism actually ran.
//
// When src itself is a symlink to a directory, the link is moved, never its
// target.
func MoveTree(ctx context.Context, src, dst string, opts MoveOptions) (*MoveResult, error) {
	return moveTree(ctx, src, dst, opts, nil, osRenamer{})
}

// MoveTreeWithProgress moves like MoveTree, delivering Progress snapshots
// to handler. A successful rename emits a single snapshot with all bytes
// finished; a copy-and-delete move reports like CopyTreeWithProgress plus a
// final source-removal operation.
func MoveTreeWithProgress(ctx context.Context, src, dst string, opts MoveOptions, handler ProgressFunc) (*MoveResult, error) {
	return moveTree(ctx, src, dst, opts, handler, osRenamer{})
}

func moveTree(ctx context.Context, src, dst string, opts MoveOptions, handler ProgressFunc, r renamer) (*MoveResult, error) {
	lg := zerolog.Ctx(ctx)

	srcRoot, srcIsLink, err := validateMoveSource(src)
	if err != nil {
		return nil, err
	}

	dstRoot, dstExists, err := prepareDestination(srcRoot, dst, opts.DestinationRule)
	if err != nil {
		return nil, err
	}

	lg.Debug().
		Str("source", srcRoot).
		Str("destination", dstRoot).
		Str("strategy", opts.Strategy.String()).
		Msg("moving directory tree")

	tr := &tracker{handler: handler}
	tr.begin(OpScanning, srcRoot)

	var plan planStats
	if srcIsLink {
		plan = planStats{symlinks: 1, operations: 1}
	} else {
		plan, err = planTree(srcRoot, opts.copyOptions())
		if err != nil {
			return nil, err
		}
	}

	tr.progress.BytesTotal = plan.bytesTotal
	// One extra operation for the commit step: the rename itself, or the
	// source removal after a copy.
	tr.progress.TotalOperations = plan.operations + 1

	switch opts.Strategy {
	case policy.RenameOnly:
		if err := r.Rename(srcRoot, dstRoot); err != nil {
			if fsutil.IsCrossDeviceError(err) {
				return nil, fserr.Wrap(fserr.ErrCrossDevice, err)
			}
			return nil, errors.Errorf("renaming %s to %s: %w", srcRoot, dstRoot, err)
		}
		return finishRename(tr, plan), nil

	case policy.CopyAndDeleteOnly:
		return copyAndDelete(srcRoot, dstRoot, dstExists, srcIsLink, opts, plan, tr)

	default: // policy.RenameWithFallback
		err := r.Rename(srcRoot, dstRoot)
		if err == nil {
			return finishRename(tr, plan), nil
		}
		if !renameFallbackEligible(err) {
			return nil, errors.Errorf("renaming %s to %s: %w", srcRoot, dstRoot, err)
		}
		lg.Debug().Err(err).Msg("rename rejected, falling back to copy-and-delete")
		return copyAndDelete(srcRoot, dstRoot, dstExists, srcIsLink, opts, plan, tr)
	}
}

// validateMoveSource resolves src to an absolute path and checks that it is
// a directory or a symlink to one, without dereferencing the link.
func validateMoveSource(src string) (string, bool, error) {
	abs, err := filepath.Abs(filepath.Clean(src))
	if err != nil {
		return "", false, errors.Errorf("absolutizing source %s: %w", src, err)
	}

	info, err := os.Lstat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, fserr.Wrapf(fserr.ErrNotFound, "source %s does not exist", abs)
		}
		return "", false, errors.Errorf("accessing source %s: %w", abs, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		targetInfo, err := os.Stat(abs)
		if err != nil || !targetInfo.IsDir() {
			return "", false, fserr.Wrapf(fserr.ErrNotADirectory,
				"source %s is a symlink that does not lead to a directory", abs)
		}
		return abs, true, nil
	}

	if !info.IsDir() {
		return "", false, fserr.Wrapf(fserr.ErrNotADirectory, "source %s is not a directory", abs)
	}

	return abs, false, nil
}

// finishRename builds the result of a successful atomic rename. Totals come
// from the pre-pass metadata scan; no content was re-read.
func finishRename(tr *tracker, plan planStats) *MoveResult {
	tr.progress.BytesFinished = tr.progress.BytesTotal
	tr.progress.FilesCopied = plan.files
	tr.progress.DirectoriesCreated = plan.dirs
	tr.progress.SymlinksCreated = plan.symlinks
	tr.progress.OperationIndex = tr.progress.TotalOperations
	tr.emit()

	return &MoveResult{
		TotalBytesMoved:  plan.bytesTotal,
		FilesMoved:       plan.files,
		DirectoriesMoved: plan.dirs,
		SymlinksMoved:    plan.symlinks,
		StrategyUsed:     StrategyRename,
	}
}

// copyAndDelete replicates the source at the destination and then removes
// the source tree.
func copyAndDelete(srcRoot, dstRoot string, dstExists, srcIsLink bool, opts MoveOptions, plan planStats, tr *tracker) (*MoveResult, error) {
	if srcIsLink {
		return moveSourceLink(srcRoot, dstRoot, dstExists, plan, tr)
	}

	if !dstExists {
		tr.progress.TotalOperations++
		tr.begin(OpCreatingDirectory, dstRoot)
		if err := os.MkdirAll(dstRoot, 0o755); err != nil {
			return nil, errors.Errorf("creating destination root %s: %w", dstRoot, err)
		}
		tr.progress.DirectoriesCreated++
	}

	if err := executeCopy(srcRoot, dstRoot, opts.copyOptions(), tr); err != nil {
		return nil, err
	}

	tr.begin(OpRemovingSource, srcRoot)
	if err := os.RemoveAll(srcRoot); err != nil {
		return nil, errors.Errorf("removing source %s after copy: %w", srcRoot, err)
	}
	tr.emit()

	return &MoveResult{
		TotalBytesMoved:  tr.progress.BytesFinished,
		FilesMoved:       plan.files,
		DirectoriesMoved: plan.dirs,
		SymlinksMoved:    plan.symlinks,
		StrategyUsed:     StrategyCopyAndDelete,
	}, nil
}

// moveSourceLink realizes copy-and-delete for a source that is itself a
// symlink to a directory: recreate the link at the destination and remove
// the original link. The target directory is never touched.
func moveSourceLink(srcRoot, dstRoot string, dstExists bool, plan planStats, tr *tracker) (*MoveResult, error) {
	if dstExists {
		return nil, fserr.Wrapf(fserr.ErrCollisionAbort,
			"cannot place symlink at occupied destination %s", dstRoot)
	}

	target, err := fsutil.ReadSymlink(srcRoot)
	if err != nil {
		return nil, err
	}

	tr.begin(OpCreatingSymlink, dstRoot)
	if err := fsutil.CreateSymlink(target, dstRoot, fsutil.SymlinkToDirectory); err != nil {
		return nil, err
	}
	tr.progress.SymlinksCreated++

	tr.begin(OpRemovingSource, srcRoot)
	if err := os.Remove(srcRoot); err != nil {
		return nil, errors.Errorf("removing source link %s: %w", srcRoot, err)
	}
	tr.emit()

	return &MoveResult{
		SymlinksMoved: plan.symlinks,
		StrategyUsed:  StrategyCopyAndDelete,
	}, nil
}
