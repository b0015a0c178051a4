package treegen_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treekit/treekit/pkg/treegen"
)

func TestMaterializeYAML(t *testing.T) {
	root := t.TempDir()

	schema := []byte(`
entries:
  - path: docs
    kind: dir
  - path: docs/readme.txt
    kind: file
    content: "hello"
  - path: blob.bin
    kind: file
    size: 4096
    seed: 7
`)

	require.NoError(t, treegen.MaterializeYAML(root, schema))

	content, err := os.ReadFile(filepath.Join(root, "docs", "readme.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	info, err := os.Stat(filepath.Join(root, "blob.bin"))
	require.NoError(t, err)
	assert.Equal(t, int64(4096), info.Size())
}

func TestMaterializeDeterministicRandomContent(t *testing.T) {
	schema := &treegen.Schema{Entries: []treegen.Node{
		{Path: "a.bin", Kind: treegen.KindFile, Size: 1024, Seed: 42},
	}}

	rootA := t.TempDir()
	rootB := t.TempDir()
	require.NoError(t, treegen.Materialize(rootA, schema))
	require.NoError(t, treegen.Materialize(rootB, schema))

	a, err := os.ReadFile(filepath.Join(rootA, "a.bin"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(rootB, "a.bin"))
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed produces the same bytes")
}

func TestMaterializeCreatesParents(t *testing.T) {
	root := t.TempDir()

	schema := &treegen.Schema{Entries: []treegen.Node{
		{Path: "deep/nested/file.txt", Kind: treegen.KindFile, Content: "x"},
	}}
	require.NoError(t, treegen.Materialize(root, schema))

	_, err := os.Stat(filepath.Join(root, "deep", "nested", "file.txt"))
	assert.NoError(t, err)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := treegen.Parse([]byte(`
entries:
  - path: a
    kind: file
    bogus: true
`))
	assert.Error(t, err)
}

func TestMaterializeRejectsUnknownKind(t *testing.T) {
	schema := &treegen.Schema{Entries: []treegen.Node{
		{Path: "x", Kind: "device"},
	}}
	assert.Error(t, treegen.Materialize(t.TempDir(), schema))
}
