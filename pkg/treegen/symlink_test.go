//go:build !windows

package treegen_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treekit/treekit/pkg/fsutil"
	"github.com/treekit/treekit/pkg/treegen"
)

func TestMaterializeSymlinks(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, treegen.MaterializeYAML(root, []byte(`
entries:
  - path: target.txt
    kind: file
    content: "data"
  - path: link
    kind: symlink
    target: target.txt
  - path: dangling
    kind: broken-symlink
    target: does-not-exist
`)))

	target, err := os.Readlink(filepath.Join(root, "link"))
	require.NoError(t, err)
	assert.Equal(t, "target.txt", target)

	broken, err := fsutil.IsBrokenSymlink(filepath.Join(root, "dangling"))
	require.NoError(t, err)
	assert.True(t, broken)
}
