package operation_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treekit/treekit/pkg/fserr"
	"github.com/treekit/treekit/pkg/operation"
	"github.com/treekit/treekit/pkg/policy"
	"github.com/treekit/treekit/pkg/scan"
	"github.com/treekit/treekit/pkg/treegen"
)

// basicTree is the two-file fixture most copy tests start from:
// a.bin (10 bytes) and foo/b.bin (20 bytes).
var basicTree = &treegen.Schema{Entries: []treegen.Node{
	{Path: "a.bin", Kind: treegen.KindFile, Size: 10, Seed: 1},
	{Path: "foo/b.bin", Kind: treegen.KindFile, Size: 20, Seed: 2},
}}

func makeBasicTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, treegen.Materialize(root, basicTree))
	return root
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestCopyTreeIntoEmptyDestination(t *testing.T) {
	src := makeBasicTree(t)
	dst := t.TempDir()

	result, err := operation.CopyTree(context.Background(), src, dst, operation.CopyOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(30), result.TotalBytesCopied)
	assert.Equal(t, 2, result.FilesCopied)
	assert.Equal(t, 1, result.DirectoriesCreated)

	assert.Equal(t, readFile(t, filepath.Join(src, "a.bin")), readFile(t, filepath.Join(dst, "a.bin")))
	assert.Equal(t, readFile(t, filepath.Join(src, "foo", "b.bin")), readFile(t, filepath.Join(dst, "foo", "b.bin")))
}

func TestCopyTreeCreatesMissingDestinationRoot(t *testing.T) {
	src := makeBasicTree(t)
	dst := filepath.Join(t.TempDir(), "fresh")

	result, err := operation.CopyTree(context.Background(), src, dst, operation.CopyOptions{})
	require.NoError(t, err)

	// The destination root itself counts as one created directory.
	assert.Equal(t, 2, result.DirectoriesCreated)
}

func TestCopyTreeFileCollisionAbort(t *testing.T) {
	src := makeBasicTree(t)
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dst, "a.bin"), []byte("old"), 0o644))

	_, err := operation.CopyTree(context.Background(), src, dst, operation.CopyOptions{
		DestinationRule: policy.AllowNonEmpty,
	})
	assert.ErrorIs(t, err, fserr.ErrCollisionAbort)
}

func TestCopyTreeFileCollisionSkip(t *testing.T) {
	src := makeBasicTree(t)
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dst, "a.bin"), []byte("old"), 0o644))

	result, err := operation.CopyTree(context.Background(), src, dst, operation.CopyOptions{
		DestinationRule: policy.AllowNonEmpty,
		CollidingFiles:  policy.FileSkip,
	})
	require.NoError(t, err)

	assert.Equal(t, "old", string(readFile(t, filepath.Join(dst, "a.bin"))), "skipped file stays untouched")
	assert.Equal(t, readFile(t, filepath.Join(src, "foo", "b.bin")), readFile(t, filepath.Join(dst, "foo", "b.bin")))
	assert.Equal(t, 1, result.FilesCopied)
	assert.Equal(t, int64(20), result.TotalBytesCopied)
}

func TestCopyTreeOverwriteMergeIsIdempotent(t *testing.T) {
	src := makeBasicTree(t)
	dst := t.TempDir()

	opts := operation.CopyOptions{
		DestinationRule:         policy.AllowNonEmpty,
		CollidingFiles:          policy.FileOverwrite,
		CollidingSubdirectories: policy.SubdirectoryMerge,
	}

	_, err := operation.CopyTree(context.Background(), src, dst, opts)
	require.NoError(t, err)

	result, err := operation.CopyTree(context.Background(), src, dst, opts)
	require.NoError(t, err)

	assert.Equal(t, int64(30), result.TotalBytesCopied)
	assert.Equal(t, 2, result.FilesCopied)
	assert.Zero(t, result.DirectoriesCreated, "existing directories are merged, not recreated")
	assert.Equal(t, readFile(t, filepath.Join(src, "a.bin")), readFile(t, filepath.Join(dst, "a.bin")))
}

func TestCopyTreeSubdirectoryCollisionAbort(t *testing.T) {
	src := makeBasicTree(t)
	dst := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dst, "foo"), 0o755))

	_, err := operation.CopyTree(context.Background(), src, dst, operation.CopyOptions{
		DestinationRule:         policy.AllowNonEmpty,
		CollidingSubdirectories: policy.SubdirectoryAbort,
	})
	assert.ErrorIs(t, err, fserr.ErrCollisionAbort)
}

func TestCopyTreeDepthLimit(t *testing.T) {
	src := makeBasicTree(t)
	dst := t.TempDir()

	result, err := operation.CopyTree(context.Background(), src, dst, operation.CopyOptions{
		DepthLimit: scan.Limited(0),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), result.TotalBytesCopied)
	assert.Equal(t, 1, result.FilesCopied)

	// The directory at the limit exists at the destination but is empty.
	entries, err := os.ReadDir(filepath.Join(dst, "foo"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCopyTreeExcludePatterns(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, treegen.Materialize(src, &treegen.Schema{Entries: []treegen.Node{
		{Path: "keep.txt", Kind: treegen.KindFile, Content: "keep"},
		{Path: "debug.log", Kind: treegen.KindFile, Content: "log"},
		{Path: "cache/blob.bin", Kind: treegen.KindFile, Size: 64, Seed: 3},
	}}))
	dst := t.TempDir()

	result, err := operation.CopyTree(context.Background(), src, dst, operation.CopyOptions{
		ExcludePatterns: []string{"**/*.log", "cache"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesCopied)
	assert.FileExists(t, filepath.Join(dst, "keep.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "debug.log"))
	assert.NoDirExists(t, filepath.Join(dst, "cache"))
}

func TestCopyTreeDestinationInsideSource(t *testing.T) {
	src := makeBasicTree(t)

	_, err := operation.CopyTree(context.Background(), src, filepath.Join(src, "foo", "nested"), operation.CopyOptions{})
	assert.ErrorIs(t, err, fserr.ErrInvalidDestination)

	_, err = operation.CopyTree(context.Background(), src, src, operation.CopyOptions{})
	assert.ErrorIs(t, err, fserr.ErrInvalidDestination)
}

func TestCopyTreeSourceValidation(t *testing.T) {
	tmp := t.TempDir()

	_, err := operation.CopyTree(context.Background(), filepath.Join(tmp, "missing"), t.TempDir(), operation.CopyOptions{})
	assert.ErrorIs(t, err, fserr.ErrNotFound)

	file := filepath.Join(tmp, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err = operation.CopyTree(context.Background(), file, t.TempDir(), operation.CopyOptions{})
	assert.ErrorIs(t, err, fserr.ErrNotADirectory)
}

func TestCopyTreeDestinationRules(t *testing.T) {
	src := makeBasicTree(t)

	dst := t.TempDir()
	_, err := operation.CopyTree(context.Background(), src, dst, operation.CopyOptions{
		DestinationRule: policy.DisallowExisting,
	})
	assert.ErrorIs(t, err, fserr.ErrDestinationExists)

	populated := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(populated, "present.txt"), []byte("x"), 0o644))
	_, err = operation.CopyTree(context.Background(), src, populated, operation.CopyOptions{})
	assert.ErrorIs(t, err, fserr.ErrDestinationNotEmpty)
}

func TestCopyTreeWithProgress(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, treegen.Materialize(src, &treegen.Schema{Entries: []treegen.Node{
		{Path: "big.bin", Kind: treegen.KindFile, Size: 256 * 1024, Seed: 9},
		{Path: "sub/small.bin", Kind: treegen.KindFile, Size: 100, Seed: 10},
	}}))
	dst := t.TempDir()

	var snapshots []operation.Progress
	result, err := operation.CopyTreeWithProgress(context.Background(), src, dst, operation.CopyOptions{
		ProgressUpdateByteInterval: 32 * 1024,
	}, func(p operation.Progress) {
		snapshots = append(snapshots, p)
	})
	require.NoError(t, err)
	require.NotEmpty(t, snapshots)

	final := snapshots[len(snapshots)-1]
	assert.Equal(t, final.BytesTotal, final.BytesFinished, "all planned bytes are accounted for")
	assert.Equal(t, result.TotalBytesCopied, final.BytesFinished)
	assert.Equal(t, result.FilesCopied, final.FilesCopied)
	assert.Equal(t, final.TotalOperations, final.OperationIndex)

	// The 256 KiB file must produce intermediate reports at the configured
	// interval, and BytesFinished never decreases.
	assert.Greater(t, len(snapshots), 4)
	var prev int64
	for _, snapshot := range snapshots {
		assert.GreaterOrEqual(t, snapshot.BytesFinished, prev)
		prev = snapshot.BytesFinished
	}
}
