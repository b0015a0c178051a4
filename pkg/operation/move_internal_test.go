//go:build !windows

package operation

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treekit/treekit/pkg/fserr"
	"github.com/treekit/treekit/pkg/policy"
	"github.com/treekit/treekit/pkg/treegen"
)

// crossDeviceRenamer simulates a filesystem boundary: every rename fails
// the way rename(2) does across devices.
type crossDeviceRenamer struct{}

func (crossDeviceRenamer) Rename(oldPath, newPath string) error {
	return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: syscall.EXDEV}
}

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, treegen.Materialize(root, &treegen.Schema{Entries: []treegen.Node{
		{Path: "a.bin", Kind: treegen.KindFile, Size: 10, Seed: 1},
		{Path: "foo/b.bin", Kind: treegen.KindFile, Size: 20, Seed: 2},
	}}))
	return root
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t})
	return logger.WithContext(context.Background())
}

func TestMoveTreeFallbackAcrossSimulatedVolumes(t *testing.T) {
	src := makeTree(t)
	wantA, err := os.ReadFile(filepath.Join(src, "a.bin"))
	require.NoError(t, err)
	dst := filepath.Join(t.TempDir(), "moved")

	result, err := moveTree(testContext(t), src, dst, MoveOptions{}, nil, crossDeviceRenamer{})
	require.NoError(t, err)

	assert.Equal(t, StrategyCopyAndDelete, result.StrategyUsed)
	assert.Equal(t, int64(30), result.TotalBytesMoved)
	assert.Equal(t, 2, result.FilesMoved)

	assert.NoDirExists(t, src, "source tree is fully removed")
	gotA, err := os.ReadFile(filepath.Join(dst, "a.bin"))
	require.NoError(t, err)
	assert.Equal(t, wantA, gotA, "destination is byte-identical to the original source")
}

func TestMoveTreeRenameOnlyAcrossSimulatedVolumes(t *testing.T) {
	src := makeTree(t)
	dst := filepath.Join(t.TempDir(), "moved")

	_, err := moveTree(testContext(t), src, dst, MoveOptions{Strategy: policy.RenameOnly}, nil, crossDeviceRenamer{})
	assert.ErrorIs(t, err, fserr.ErrCrossDevice, "rename-only never falls back")
	assert.DirExists(t, src)
}

// permissionRenamer fails renames with an error no fallback may recover
// from.
type permissionRenamer struct{}

func (permissionRenamer) Rename(oldPath, newPath string) error {
	return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: syscall.EACCES}
}

func TestMoveTreeFallbackDoesNotMaskHardErrors(t *testing.T) {
	src := makeTree(t)
	dst := filepath.Join(t.TempDir(), "moved")

	_, err := moveTree(testContext(t), src, dst, MoveOptions{}, nil, permissionRenamer{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, fserr.ErrCrossDevice)
	assert.DirExists(t, src, "the tree is left in place when rename fails hard")
	assert.NoDirExists(t, dst)
}
