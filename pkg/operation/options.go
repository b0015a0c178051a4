// Package operation contains the tree copy and move engines: they walk a
// source tree, resolve destination collisions under caller-supplied
// policies, execute the resulting actions through pkg/fsutil primitives and
// aggregate byte/file/directory counters into progress snapshots.
//
// Engines are single-threaded and synchronous. One call owns the calling
// goroutine for its full duration; progress callbacks run inline on that
// same goroutine. Independent calls on disjoint trees may run concurrently
// since all state is call-local.
package operation

import (
	"github.com/treekit/treekit/pkg/policy"
	"github.com/treekit/treekit/pkg/scan"
)

// 🛠️ CopyOptions configure one CopyTree call. The zero value is usable:
// destination must be missing or empty, file collisions abort, directory
// collisions merge, symlinks are followed, broken symlinks fail.
type CopyOptions struct {
	// DestinationRule governs the pre-traversal state of the destination
	// root. Checked once, before any mutation.
	DestinationRule policy.DestinationDirectoryRule

	// CollidingFiles decides per-file collisions during traversal.
	CollidingFiles policy.CollidingFileBehaviour

	// CollidingSubdirectories decides per-directory collisions.
	CollidingSubdirectories policy.CollidingSubdirectoryBehaviour

	// Symlinks selects preserve-the-link or follow-the-target handling
	// for valid symlinks in the source tree.
	Symlinks policy.SymlinkBehaviour

	// BrokenSymlinks selects handling for links whose target is missing.
	BrokenSymlinks policy.BrokenSymlinkBehaviour

	// DepthLimit bounds the traversal. A directory exactly at the limit
	// is created at the destination but its contents are not copied.
	DepthLimit scan.DepthLimit

	// ExcludePatterns are doublestar glob patterns matched against each
	// entry's slash-separated path relative to the source root. A matched
	// directory excludes its whole subtree.
	ExcludePatterns []string

	// ReadBufferSize and WriteBufferSize tune the per-file copy loop.
	// Zero means fsutil.DefaultBufferSize.
	ReadBufferSize  int
	WriteBufferSize int

	// ProgressUpdateByteInterval is the minimum number of bytes written
	// within one file between two progress reports. Zero means
	// fsutil.DefaultProgressUpdateByteInterval.
	ProgressUpdateByteInterval int64
}

func (o CopyOptions) policies() policy.Policies {
	return policy.Policies{
		File:          o.CollidingFiles,
		Subdirectory:  o.CollidingSubdirectories,
		Symlink:       o.Symlinks,
		BrokenSymlink: o.BrokenSymlinks,
	}
}

// 🚚 MoveOptions configure one MoveTree call. Moves always preserve
// symlinks as links, whichever strategy ends up executing: a symlink whose
// target is a directory is moved as the link itself, never dereferenced.
type MoveOptions struct {
	// Strategy selects the move mechanism. Chosen once per call.
	Strategy policy.MoveStrategy

	// DestinationRule governs the pre-traversal state of the destination
	// root.
	DestinationRule policy.DestinationDirectoryRule

	// CollidingFiles and CollidingSubdirectories apply only when the move
	// executes as copy-and-delete; an atomic rename never merges.
	CollidingFiles          policy.CollidingFileBehaviour
	CollidingSubdirectories policy.CollidingSubdirectoryBehaviour

	// ReadBufferSize, WriteBufferSize and ProgressUpdateByteInterval tune
	// the copy loop of a copy-and-delete move. Zero means the fsutil
	// defaults.
	ReadBufferSize             int
	WriteBufferSize            int
	ProgressUpdateByteInterval int64
}

// copyOptions derives the copy configuration of a copy-and-delete move.
// Links are preserved so that removing the source afterwards cannot take
// content with it that only the destination's dereferenced copies had.
func (o MoveOptions) copyOptions() CopyOptions {
	return CopyOptions{
		DestinationRule:            o.DestinationRule,
		CollidingFiles:             o.CollidingFiles,
		CollidingSubdirectories:    o.CollidingSubdirectories,
		Symlinks:                   policy.SymlinkPreserve,
		BrokenSymlinks:             policy.BrokenSymlinkPreserve,
		ReadBufferSize:             o.ReadBufferSize,
		WriteBufferSize:            o.WriteBufferSize,
		ProgressUpdateByteInterval: o.ProgressUpdateByteInterval,
	}
}

// CopyResult summarizes a finished tree copy.
type CopyResult struct {
	// TotalBytesCopied is the number of content bytes written to the
	// destination.
	TotalBytesCopied int64

	// FilesCopied counts files whose content was copied, skipped files
	// excluded.
	FilesCopied int

	// DirectoriesCreated counts directories created at the destination,
	// the destination root included when the engine had to create it.
	DirectoriesCreated int

	// SymlinksCreated counts links recreated at the destination under the
	// preserve behaviours.
	SymlinksCreated int
}

// StrategyUsed records which mechanism actually realized a move, so
// callers can distinguish a cheap rename from an expensive copy-delete.
type StrategyUsed int

const (
	StrategyRename StrategyUsed = iota
	StrategyCopyAndDelete
)

func (s StrategyUsed) String() string {
	switch s {
	case StrategyRename:
		return "rename"
	case StrategyCopyAndDelete:
		return "copy-and-delete"
	default:
		return "unknown"
	}
}

// MoveResult summarizes a finished tree move.
type MoveResult struct {
	// TotalBytesMoved is the content size of the moved tree. Under a
	// rename it is derived from the pre-pass metadata scan, not from
	// re-reading content.
	TotalBytesMoved int64

	FilesMoved       int
	DirectoriesMoved int
	SymlinksMoved    int

	// StrategyUsed is the mechanism that realized the move.
	StrategyUsed StrategyUsed
}
