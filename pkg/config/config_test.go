package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treekit/treekit/pkg/config"
	"github.com/treekit/treekit/pkg/operation"
	"github.com/treekit/treekit/pkg/policy"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "treekit.yaml", `
defaults:
  colliding_files: overwrite
  symlinks: preserve
jobs:
  - name: docs
    action: copy
    source: ./docs
    destination: ./backup/docs
    options:
      exclude:
        - "**/*.tmp"
  - name: archive
    action: move
    source: ./old
    destination: ./archive/old
    options:
      move_strategy: copy-and-delete-only
`)

	cfg, err := config.Load(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, cfg.Jobs, 2)
	assert.Equal(t, "docs", cfg.Jobs[0].Name)
	assert.Equal(t, config.ActionCopy, cfg.Jobs[0].Action)

	merged := config.MergeSettings(cfg.Defaults, cfg.Jobs[0].Options)
	copyOpts, err := merged.CopyOptions()
	require.NoError(t, err)
	assert.Equal(t, policy.FileOverwrite, copyOpts.CollidingFiles)
	assert.Equal(t, policy.SymlinkPreserve, copyOpts.Symlinks)
	assert.Equal(t, []string{"**/*.tmp"}, copyOpts.ExcludePatterns)

	merged = config.MergeSettings(cfg.Defaults, cfg.Jobs[1].Options)
	moveOpts, err := merged.MoveOptions()
	require.NoError(t, err)
	assert.Equal(t, policy.CopyAndDeleteOnly, moveOpts.Strategy)
	assert.Equal(t, policy.FileOverwrite, moveOpts.CollidingFiles, "defaults apply under job overrides")
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "treekit.json", `{
  "jobs": [
    {
      "name": "mirror",
      "action": "copy",
      "source": "/data/in",
      "destination": "/data/out",
      "options": {"depth_limit": 0}
    }
  ]
}`)

	cfg, err := config.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, cfg.Jobs, 1)

	opts, err := config.MergeSettings(cfg.Defaults, cfg.Jobs[0].Options).CopyOptions()
	require.NoError(t, err)
	assert.False(t, opts.DepthLimit.IsUnlimited())
	assert.True(t, opts.DepthLimit.Allows(0))
	assert.False(t, opts.DepthLimit.Allows(1))
}

func TestLoadHCL(t *testing.T) {
	path := writeConfig(t, "treekit.hcl", `
defaults {
  colliding_files = "skip"
}

job "mirror" {
  action      = "copy"
  source      = "/data/in"
  destination = "/data/out"
}
`)

	cfg, err := config.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, cfg.Jobs, 1)
	assert.Equal(t, "mirror", cfg.Jobs[0].Name)

	opts, err := config.MergeSettings(cfg.Defaults, cfg.Jobs[0].Options).CopyOptions()
	require.NoError(t, err)
	assert.Equal(t, policy.FileSkip, opts.CollidingFiles)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "treekit.yaml", `
jobs:
  - name: bad
    action: copy
    source: ./a
    destination: ./b
    bogus_field: true
`)

	_, err := config.Load(context.Background(), path)
	assert.Error(t, err)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown action",
			content: `
jobs:
  - name: j
    action: shuffle
    source: ./a
    destination: ./b
`,
		},
		{
			name: "missing source",
			content: `
jobs:
  - name: j
    action: copy
    destination: ./b
`,
		},
		{
			name: "duplicate names",
			content: `
jobs:
  - name: j
    action: copy
    source: ./a
    destination: ./b
  - name: j
    action: copy
    source: ./c
    destination: ./d
`,
		},
		{
			name: "bad policy value",
			content: `
jobs:
  - name: j
    action: copy
    source: ./a
    destination: ./b
    options:
      colliding_files: explode
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "treekit.yaml", tt.content)
			_, err := config.Load(context.Background(), path)
			assert.Error(t, err)
		})
	}
}

func TestZeroSettingsMeanEngineDefaults(t *testing.T) {
	opts, err := config.Settings{}.CopyOptions()
	require.NoError(t, err)
	assert.Equal(t, operation.CopyOptions{}, opts)

	moveOpts, err := config.Settings{}.MoveOptions()
	require.NoError(t, err)
	assert.Equal(t, policy.RenameWithFallback, moveOpts.Strategy)
}
