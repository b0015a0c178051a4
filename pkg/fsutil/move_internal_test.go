//go:build !windows

package fsutil

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// crossDeviceRename fails the way rename(2) does across filesystems.
func crossDeviceRename(oldPath, newPath string) error {
	return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: syscall.EXDEV}
}

func TestMoveFileFallbackAcrossSimulatedVolumes(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src.bin")
	dst := filepath.Join(tmp, "dst.bin")
	content := []byte("crossing volumes")
	require.NoError(t, os.WriteFile(src, content, 0o644))

	moved, err := moveFileInternal(src, dst, FileCopyWithProgressOptions{}, nil, crossDeviceRename)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), moved)

	_, err = os.Lstat(src)
	assert.True(t, os.IsNotExist(err), "source is removed after the copy")

	copied, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, copied)
}

func TestMoveFileFallbackReportsProgress(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src.bin")
	dst := filepath.Join(tmp, "dst.bin")
	content := make([]byte, 300)
	for i := range content {
		content[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(src, content, 0o644))

	var reports []FileProgress
	moved, err := moveFileInternal(src, dst, FileCopyWithProgressOptions{
		ReadBufferSize:             100,
		WriteBufferSize:            1,
		ProgressUpdateByteInterval: 1,
	}, func(p FileProgress) {
		reports = append(reports, p)
	}, crossDeviceRename)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), moved)

	// The fallback reports like a copy, not like a rename.
	require.NotEmpty(t, reports)
	assert.Greater(t, len(reports), 1)
	final := reports[len(reports)-1]
	assert.Equal(t, int64(len(content)), final.BytesFinished)
	assert.Equal(t, int64(len(content)), final.BytesTotal)

	_, err = os.Lstat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestMoveFileRenameHardErrorSurfaces(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src.bin")
	dst := filepath.Join(tmp, "dst.bin")
	require.NoError(t, os.WriteFile(src, []byte("stay put"), 0o644))

	denied := func(oldPath, newPath string) error {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: syscall.EACCES}
	}

	_, err := moveFileInternal(src, dst, FileCopyWithProgressOptions{}, nil, denied)
	assert.Error(t, err)

	assert.FileExists(t, src, "the source is untouched when rename fails hard")
	_, err = os.Lstat(dst)
	assert.True(t, os.IsNotExist(err))
}
