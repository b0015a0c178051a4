package scan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treekit/treekit/pkg/fserr"
	"github.com/treekit/treekit/pkg/scan"
)

// buildTree creates the fixture used across scanner tests:
//
//	root/
//	  a.bin          (10 bytes)
//	  foo/
//	    b.bin        (20 bytes)
//	    deep/
//	      c.bin      (30 bytes)
//	  zoo/
func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "foo", "deep"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "zoo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.bin"), make([]byte, 10), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "foo", "b.bin"), make([]byte, 20), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "foo", "deep", "c.bin"), make([]byte, 30), 0o644))

	return root
}

func collect(t *testing.T, root string, opts scan.Options) []scan.Entry {
	t.Helper()

	var entries []scan.Entry
	scanner := scan.New(root, opts)
	for entry, ok := scanner.Next(); ok; entry, ok = scanner.Next() {
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())

	return entries
}

func relPaths(entries []scan.Entry) []string {
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, filepath.ToSlash(e.RelPath))
	}
	return paths
}

func TestScanPreOrderSorted(t *testing.T) {
	root := buildTree(t)

	entries := collect(t, root, scan.Options{})

	assert.Equal(t, []string{
		"a.bin",
		"foo",
		"foo/b.bin",
		"foo/deep",
		"foo/deep/c.bin",
		"zoo",
	}, relPaths(entries))
}

func TestScanYieldRoot(t *testing.T) {
	root := buildTree(t)

	entries := collect(t, root, scan.Options{YieldRoot: true})

	require.NotEmpty(t, entries)
	assert.True(t, entries[0].IsRoot())
	assert.Equal(t, ".", entries[0].RelPath)
	assert.Equal(t, scan.KindDirectory, entries[0].Kind)
}

func TestScanDepthLimits(t *testing.T) {
	root := buildTree(t)

	tests := []struct {
		name  string
		limit scan.DepthLimit
		want  []string
	}{
		{
			name:  "depth zero lists only direct children",
			limit: scan.Limited(0),
			want:  []string{"a.bin", "foo", "zoo"},
		},
		{
			name:  "depth one stops below foo/deep",
			limit: scan.Limited(1),
			want:  []string{"a.bin", "foo", "foo/b.bin", "foo/deep", "zoo"},
		},
		{
			name:  "unlimited",
			limit: scan.Unlimited(),
			want:  []string{"a.bin", "foo", "foo/b.bin", "foo/deep", "foo/deep/c.bin", "zoo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := collect(t, root, scan.Options{DepthLimit: tt.limit})
			assert.Equal(t, tt.want, relPaths(entries))

			for _, entry := range entries {
				assert.True(t, tt.limit.Allows(entry.Depth),
					"entry %s exceeds the depth limit", entry.RelPath)
			}
		})
	}
}

func TestScanEntrySizes(t *testing.T) {
	root := buildTree(t)

	sizes := map[string]int64{}
	for _, entry := range collect(t, root, scan.Options{}) {
		sizes[filepath.ToSlash(entry.RelPath)] = entry.Size
	}

	assert.Equal(t, int64(10), sizes["a.bin"])
	assert.Equal(t, int64(20), sizes["foo/b.bin"])
	assert.Zero(t, sizes["foo"], "directory sizes are not recursive totals")
}

func TestScanRootErrors(t *testing.T) {
	tmp := t.TempDir()

	scanner := scan.New(filepath.Join(tmp, "missing"), scan.Options{})
	_, ok := scanner.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, scanner.Err(), fserr.ErrNotFound)

	file := filepath.Join(tmp, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	scanner = scan.New(file, scan.Options{})
	_, ok = scanner.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, scanner.Err(), fserr.ErrNotADirectory)
}

func TestTreeStats(t *testing.T) {
	root := buildTree(t)

	stats, err := scan.TreeStats(root, scan.Options{})
	require.NoError(t, err)

	assert.Equal(t, int64(60), stats.TotalBytes)
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 3, stats.Directories)
	assert.Zero(t, stats.BrokenSymlinks)

	limited, err := scan.TreeStats(root, scan.Options{DepthLimit: scan.Limited(0)})
	require.NoError(t, err)
	assert.Equal(t, int64(10), limited.TotalBytes)
	assert.Equal(t, 1, limited.Files)
	assert.Equal(t, 2, limited.Directories)
}
