// Package scan provides a lazy, depth-bounded, pre-order traversal of a
// directory tree. Each discovered node is classified as a file, directory,
// symlink (to a file or to a directory) or broken symlink without
// dereferencing links unless explicitly requested.
package scan

// EntryKind classifies a discovered filesystem node. The set is closed;
// consumers are expected to switch exhaustively over it.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
	KindSymlinkToFile
	KindSymlinkToDirectory
	KindBrokenSymlink
)

// String returns a short human-readable name for the kind.
func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlinkToFile:
		return "symlink-to-file"
	case KindSymlinkToDirectory:
		return "symlink-to-directory"
	case KindBrokenSymlink:
		return "broken-symlink"
	default:
		return "unknown"
	}
}

// IsSymlink reports whether the kind describes a symbolic link,
// broken ones included.
func (k EntryKind) IsSymlink() bool {
	return k == KindSymlinkToFile || k == KindSymlinkToDirectory || k == KindBrokenSymlink
}

// RootDepth is the Depth value of the scan root itself when Options.YieldRoot
// is set. Direct children of the root are at depth 0.
const RootDepth = -1

// Entry is one filesystem node discovered during a scan. Entries are
// immutable; the scanner never reuses them.
type Entry struct {
	// Path is the absolute path of the node.
	Path string

	// RelPath is the path relative to the scan root, "." for the root.
	RelPath string

	// Depth is the node's depth below the scan root: 0 for direct
	// children, RootDepth for the root entry itself.
	Depth int

	// Kind classifies the node.
	Kind EntryKind

	// Size is the node's size in bytes. For symlinks it is the size of
	// the link target (zero for broken links); for directories it is
	// always zero, never a recursive total.
	Size int64
}

// IsRoot reports whether the entry is the scan root itself.
func (e Entry) IsRoot() bool {
	return e.Depth == RootDepth
}

// DepthLimit bounds how deep a scan descends. The zero value is unlimited.
type DepthLimit struct {
	limited bool
	max     int
}

// Unlimited returns a DepthLimit that never stops descent.
func Unlimited() DepthLimit {
	return DepthLimit{}
}

// Limited returns a DepthLimit permitting entries up to and including
// depth max. Limited(0) yields only the direct children of the root.
func Limited(max int) DepthLimit {
	return DepthLimit{limited: true, max: max}
}

// IsUnlimited reports whether the limit never stops descent.
func (d DepthLimit) IsUnlimited() bool {
	return !d.limited
}

// Allows reports whether an entry at the given depth may be yielded.
func (d DepthLimit) Allows(depth int) bool {
	return !d.limited || depth <= d.max
}

// canDescend reports whether the children of a directory at dirDepth may
// be listed. A directory exactly at the limit is still yielded, just not
// descended into.
func (d DepthLimit) canDescend(dirDepth int) bool {
	return !d.limited || dirDepth < d.max
}

// Options influence a single scan. Passed by value; the scanner never
// mutates the caller's copy.
type Options struct {
	// DepthLimit bounds descent, see DepthLimit. Zero value: unlimited.
	DepthLimit DepthLimit

	// FollowSymlinks dereferences symlinks during classification and
	// descends into symlinked directories. Off by default: links are
	// reported as links and never followed.
	FollowSymlinks bool

	// YieldRoot yields the scan root itself as the first entry, with
	// Depth == RootDepth.
	YieldRoot bool
}
