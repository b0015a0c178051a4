package operation

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/treekit/treekit/pkg/scan"
)

// excluder filters scan entries against doublestar glob patterns. A matched
// directory excludes its whole subtree; since the scan is pre-order, the
// directory is always seen before its children.
//
// Excluders accumulate matched-directory state, so each traversal pass
// uses a fresh instance.
type excluder struct {
	patterns []string

	// dirs holds the slash-relative paths of excluded directories.
	dirs []string
}

func newExcluder(patterns []string) (*excluder, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return &excluder{patterns: patterns}, nil
}

// skip reports whether the entry is excluded from the operation.
func (e *excluder) skip(entry scan.Entry) bool {
	if len(e.patterns) == 0 {
		return false
	}

	rel := filepath.ToSlash(entry.RelPath)

	for _, dir := range e.dirs {
		if strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}

	for _, pattern := range e.patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil || !matched {
			continue
		}
		if entry.Kind == scan.KindDirectory || entry.Kind == scan.KindSymlinkToDirectory {
			e.dirs = append(e.dirs, rel)
		}
		return true
	}

	return false
}
