// Package policy holds the configuration enums for tree copy and move
// operations and the pure collision resolution logic. Every type here is a
// closed set of variants; the zero value of each enum is its default.
package policy

import (
	"gitlab.com/tozd/go/errors"

	"github.com/treekit/treekit/pkg/fserr"
	"github.com/treekit/treekit/pkg/scan"
)

// 🚦 Decision is the outcome of resolving a destination collision.
type Decision int

const (
	Proceed Decision = iota
	Skip
	Abort
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case Skip:
		return "skip"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// 📁 DestinationDirectoryRule governs whether the destination root may
// already exist before traversal begins. It is checked exactly once, before
// any mutation; collisions discovered during traversal are governed by the
// per-entry behaviours below.
type DestinationDirectoryRule int

const (
	// AllowEmpty permits an existing destination root as long as it is empty.
	AllowEmpty DestinationDirectoryRule = iota
	// DisallowExisting requires that the destination root not exist at all.
	DisallowExisting
	// AllowNonEmpty permits an existing, populated destination root.
	AllowNonEmpty
)

func (r DestinationDirectoryRule) String() string {
	switch r {
	case AllowEmpty:
		return "allow-empty"
	case DisallowExisting:
		return "disallow-existing"
	case AllowNonEmpty:
		return "allow-non-empty"
	default:
		return "unknown"
	}
}

// ParseDestinationDirectoryRule converts a config/CLI string into a rule.
func ParseDestinationDirectoryRule(s string) (DestinationDirectoryRule, error) {
	switch s {
	case "allow-empty", "":
		return AllowEmpty, nil
	case "disallow-existing":
		return DisallowExisting, nil
	case "allow-non-empty":
		return AllowNonEmpty, nil
	default:
		return 0, errors.Errorf("unknown destination directory rule %q", s)
	}
}

// 📄 CollidingFileBehaviour decides what happens when a file (or symlink)
// being copied already exists at the destination path.
type CollidingFileBehaviour int

const (
	FileAbort CollidingFileBehaviour = iota
	FileSkip
	FileOverwrite
)

func (b CollidingFileBehaviour) String() string {
	switch b {
	case FileAbort:
		return "abort"
	case FileSkip:
		return "skip"
	case FileOverwrite:
		return "overwrite"
	default:
		return "unknown"
	}
}

func ParseCollidingFileBehaviour(s string) (CollidingFileBehaviour, error) {
	switch s {
	case "abort", "":
		return FileAbort, nil
	case "skip":
		return FileSkip, nil
	case "overwrite":
		return FileOverwrite, nil
	default:
		return 0, errors.Errorf("unknown colliding file behaviour %q", s)
	}
}

// 📂 CollidingSubdirectoryBehaviour decides what happens when a directory
// being created already exists at the destination path.
type CollidingSubdirectoryBehaviour int

const (
	SubdirectoryMerge CollidingSubdirectoryBehaviour = iota
	SubdirectoryAbort
)

func (b CollidingSubdirectoryBehaviour) String() string {
	switch b {
	case SubdirectoryMerge:
		return "merge"
	case SubdirectoryAbort:
		return "abort"
	default:
		return "unknown"
	}
}

func ParseCollidingSubdirectoryBehaviour(s string) (CollidingSubdirectoryBehaviour, error) {
	switch s {
	case "merge", "":
		return SubdirectoryMerge, nil
	case "abort":
		return SubdirectoryAbort, nil
	default:
		return 0, errors.Errorf("unknown colliding subdirectory behaviour %q", s)
	}
}

// 🔗 SymlinkBehaviour decides how valid symlinks in the source tree are
// materialized at the destination.
type SymlinkBehaviour int

const (
	// SymlinkFollow dereferences the link and copies the target's content.
	SymlinkFollow SymlinkBehaviour = iota
	// SymlinkPreserve recreates the link itself, with the same target path.
	SymlinkPreserve
)

func (b SymlinkBehaviour) String() string {
	switch b {
	case SymlinkFollow:
		return "follow"
	case SymlinkPreserve:
		return "preserve"
	default:
		return "unknown"
	}
}

func ParseSymlinkBehaviour(s string) (SymlinkBehaviour, error) {
	switch s {
	case "follow", "":
		return SymlinkFollow, nil
	case "preserve":
		return SymlinkPreserve, nil
	default:
		return 0, errors.Errorf("unknown symlink behaviour %q", s)
	}
}

// ⛓️ BrokenSymlinkBehaviour decides how links with a missing target are
// handled. A broken link has no content to follow, so the only lenient
// option is to preserve the link as-is.
type BrokenSymlinkBehaviour int

const (
	BrokenSymlinkFail BrokenSymlinkBehaviour = iota
	BrokenSymlinkPreserve
)

func (b BrokenSymlinkBehaviour) String() string {
	switch b {
	case BrokenSymlinkFail:
		return "fail"
	case BrokenSymlinkPreserve:
		return "preserve"
	default:
		return "unknown"
	}
}

func ParseBrokenSymlinkBehaviour(s string) (BrokenSymlinkBehaviour, error) {
	switch s {
	case "fail", "":
		return BrokenSymlinkFail, nil
	case "preserve":
		return BrokenSymlinkPreserve, nil
	default:
		return 0, errors.Errorf("unknown broken symlink behaviour %q", s)
	}
}

// 🚚 MoveStrategy selects the mechanism used to realize a tree move. It is
// chosen once per call and never re-evaluated mid-operation.
type MoveStrategy int

const (
	// RenameWithFallback attempts an atomic rename and falls back to
	// copy-and-delete only when the rename fails for a reason a rename can
	// never resolve (cross-device, destination collision).
	RenameWithFallback MoveStrategy = iota
	// RenameOnly attempts a single atomic rename and never copies bytes.
	RenameOnly
	// CopyAndDeleteOnly always copies the tree and removes the source.
	CopyAndDeleteOnly
)

func (s MoveStrategy) String() string {
	switch s {
	case RenameWithFallback:
		return "rename-with-fallback"
	case RenameOnly:
		return "rename-only"
	case CopyAndDeleteOnly:
		return "copy-and-delete-only"
	default:
		return "unknown"
	}
}

func ParseMoveStrategy(s string) (MoveStrategy, error) {
	switch s {
	case "rename-with-fallback", "":
		return RenameWithFallback, nil
	case "rename-only":
		return RenameOnly, nil
	case "copy-and-delete-only":
		return CopyAndDeleteOnly, nil
	default:
		return 0, errors.Errorf("unknown move strategy %q", s)
	}
}

// 📋 Policies bundles the per-entry collision behaviours for one copy or
// move call.
type Policies struct {
	File          CollidingFileBehaviour
	Subdirectory  CollidingSubdirectoryBehaviour
	Symlink       SymlinkBehaviour
	BrokenSymlink BrokenSymlinkBehaviour
}

// Resolve decides what to do about an entry whose destination path is
// already occupied. existingKind is the kind of the entry found at the
// destination. The function is pure; it is called immediately before the
// corresponding filesystem action executes.
func Resolve(p Policies, existingKind scan.EntryKind) Decision {
	if existingKind == scan.KindDirectory {
		if p.Subdirectory == SubdirectoryMerge {
			return Proceed
		}
		return Abort
	}

	// Files and symlinks of every flavour collide under the file behaviour.
	switch p.File {
	case FileOverwrite:
		return Proceed
	case FileSkip:
		return Skip
	default:
		return Abort
	}
}

// CheckDestinationRule validates the pre-traversal state of the destination
// root against the configured rule. exists and empty describe the
// destination root as observed by the caller.
func CheckDestinationRule(rule DestinationDirectoryRule, exists, empty bool) error {
	if !exists {
		return nil
	}

	switch rule {
	case DisallowExisting:
		return fserr.Wrapf(fserr.ErrDestinationExists, "destination directory already exists")
	case AllowEmpty:
		if !empty {
			return fserr.Wrapf(fserr.ErrDestinationNotEmpty, "destination directory exists and is not empty")
		}
		return nil
	case AllowNonEmpty:
		return nil
	default:
		return errors.Errorf("unknown destination directory rule %d", rule)
	}
}
