package scan

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/treekit/treekit/pkg/fserr"
	"gitlab.com/tozd/go/errors"
)

// Scanner lazily enumerates a directory tree in deterministic pre-order:
// a directory is yielded before any of its children, and the children of
// each directory are visited in ascending name order.
//
// The sequence is finite and non-restartable. Iterate with Next and check
// Err once Next returns false:
//
//	s := scan.New(root, scan.Options{})
//	for entry, ok := s.Next(); ok; entry, ok = s.Next() {
//		...
//	}
//	if err := s.Err(); err != nil {
//		...
//	}
//
// Traversal uses an explicit stack of directory frames rather than
// recursion, so depth is bounded by the tree shape, not the call stack.
type Scanner struct {
	root string
	opts Options

	// stack holds one frame per directory whose children are mid-yield.
	stack []frame

	started bool
	done    bool
	err     error
}

// frame is the classified, name-sorted listing of one directory.
type frame struct {
	entries []Entry
	next    int
}

// New creates a scanner rooted at root. No filesystem access happens until
// the first call to Next.
func New(root string, opts Options) *Scanner {
	return &Scanner{root: root, opts: opts}
}

// Next advances the scan and returns the next entry. It returns ok=false
// when the scan is exhausted or an error occurred; distinguish the two
// with Err.
func (s *Scanner) Next() (Entry, bool) {
	if s.done {
		return Entry{}, false
	}

	if !s.started {
		s.started = true
		if entry, yield := s.start(); yield {
			return entry, true
		}
		if s.done {
			return Entry{}, false
		}
	}

	for len(s.stack) > 0 {
		top := &s.stack[len(s.stack)-1]
		if top.next >= len(top.entries) {
			s.stack = s.stack[:len(s.stack)-1]
			continue
		}

		entry := top.entries[top.next]
		top.next++

		if s.shouldDescend(entry) {
			if !s.pushDir(entry.Path, entry.RelPath, entry.Depth) {
				return Entry{}, false
			}
		}

		return entry, true
	}

	s.done = true

	return Entry{}, false
}

// Err returns the error that terminated the scan, nil on normal
// exhaustion. Entries yielded before the failure remain valid.
func (s *Scanner) Err() error {
	return s.err
}

// start validates the root and primes the stack. It returns the root
// entry when the options ask for it.
func (s *Scanner) start() (Entry, bool) {
	info, err := os.Stat(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			s.fail(fserr.Wrapf(fserr.ErrNotFound, "scan root %s does not exist", s.root))
		} else {
			s.fail(errors.Errorf("accessing scan root %s: %w", s.root, err))
		}
		return Entry{}, false
	}
	if !info.IsDir() {
		s.fail(fserr.Wrapf(fserr.ErrNotADirectory, "scan root %s is not a directory", s.root))
		return Entry{}, false
	}

	if !s.pushDir(s.root, ".", RootDepth) {
		return Entry{}, false
	}

	if s.opts.YieldRoot {
		return Entry{
			Path:    s.root,
			RelPath: ".",
			Depth:   RootDepth,
			Kind:    KindDirectory,
		}, true
	}

	return Entry{}, false
}

// shouldDescend decides whether the children of entry are in scope.
func (s *Scanner) shouldDescend(entry Entry) bool {
	switch entry.Kind {
	case KindDirectory:
	case KindSymlinkToDirectory:
		if !s.opts.FollowSymlinks {
			return false
		}
	default:
		return false
	}

	return s.opts.DepthLimit.canDescend(entry.Depth)
}

// pushDir reads, classifies and sorts the children of a directory and
// pushes them as a new frame. Returns false after recording an error.
func (s *Scanner) pushDir(dirPath, dirRelPath string, dirDepth int) bool {
	dirents, err := os.ReadDir(dirPath)
	if err != nil {
		s.fail(errors.Errorf("reading directory %s: %w", dirPath, err))
		return false
	}

	sort.Slice(dirents, func(i, j int) bool {
		return dirents[i].Name() < dirents[j].Name()
	})

	entries := make([]Entry, 0, len(dirents))
	for _, dirent := range dirents {
		childPath := filepath.Join(dirPath, dirent.Name())
		childRel := dirent.Name()
		if dirRelPath != "." {
			childRel = filepath.Join(dirRelPath, dirent.Name())
		}

		entry, err := s.classify(childPath, childRel, dirDepth+1)
		if err != nil {
			s.fail(err)
			return false
		}

		entries = append(entries, entry)
	}

	s.stack = append(s.stack, frame{entries: entries})

	return true
}

// classify builds the Entry for one discovered path. Symlinks are never
// dereferenced to decide the kind unless FollowSymlinks is set; a broken
// link is detected by a dereferencing stat failing with "not exist".
func (s *Scanner) classify(path, relPath string, depth int) (Entry, error) {
	entry := Entry{Path: path, RelPath: relPath, Depth: depth}

	info, err := os.Lstat(path)
	if err != nil {
		return Entry{}, errors.Errorf("inspecting %s: %w", path, err)
	}

	if info.Mode()&os.ModeSymlink == 0 {
		if info.IsDir() {
			entry.Kind = KindDirectory
		} else {
			entry.Kind = KindFile
			entry.Size = info.Size()
		}
		return entry, nil
	}

	targetInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			entry.Kind = KindBrokenSymlink
			return entry, nil
		}
		return Entry{}, errors.Errorf("dereferencing symlink %s: %w", path, err)
	}

	switch {
	case targetInfo.IsDir() && s.opts.FollowSymlinks:
		entry.Kind = KindDirectory
	case targetInfo.IsDir():
		entry.Kind = KindSymlinkToDirectory
	case s.opts.FollowSymlinks:
		entry.Kind = KindFile
		entry.Size = targetInfo.Size()
	default:
		entry.Kind = KindSymlinkToFile
		entry.Size = targetInfo.Size()
	}

	return entry, nil
}

func (s *Scanner) fail(err error) {
	s.err = err
	s.done = true
	s.stack = nil
}
