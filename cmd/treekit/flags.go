package main

import (
	"github.com/spf13/cobra"

	"github.com/treekit/treekit/pkg/config"
)

// settingsFlags collects the engine option flags shared by the copy and
// move commands. Values convert into config.Settings so flag input and
// config-file input flow through the same validation.
type settingsFlags struct {
	destinationRule string
	collidingFiles  string
	collidingSubdir string
	symlinks        string
	brokenSymlinks  string
	moveStrategy    string
	depth           int
	exclude         []string
	readBufferSize  int
	writeBufferSize int
	byteInterval    int64
}

func (f *settingsFlags) registerCopy(cmd *cobra.Command) {
	f.registerCommon(cmd)
	cmd.Flags().StringVar(&f.symlinks, "symlinks", "", "symlink behaviour: follow or preserve")
	cmd.Flags().StringVar(&f.brokenSymlinks, "broken-symlinks", "", "broken symlink behaviour: fail or preserve")
	cmd.Flags().IntVar(&f.depth, "depth", -1, "maximum depth to copy, -1 for unlimited, 0 for direct children only")
	cmd.Flags().StringArrayVar(&f.exclude, "exclude", nil, "glob pattern to exclude, relative to the source root (repeatable)")
}

func (f *settingsFlags) registerMove(cmd *cobra.Command) {
	f.registerCommon(cmd)
	f.depth = -1
	cmd.Flags().StringVar(&f.moveStrategy, "strategy", "", "move strategy: rename-with-fallback, rename-only or copy-and-delete-only")
}

func (f *settingsFlags) registerCommon(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.destinationRule, "destination-rule", "", "destination root rule: allow-empty, disallow-existing or allow-non-empty")
	cmd.Flags().StringVar(&f.collidingFiles, "colliding-files", "", "file collision behaviour: abort, skip or overwrite")
	cmd.Flags().StringVar(&f.collidingSubdir, "colliding-subdirectories", "", "directory collision behaviour: merge or abort")
	cmd.Flags().IntVar(&f.readBufferSize, "read-buffer-size", 0, "per-file read buffer size in bytes")
	cmd.Flags().IntVar(&f.writeBufferSize, "write-buffer-size", 0, "per-file write buffer size in bytes")
	cmd.Flags().Int64Var(&f.byteInterval, "progress-interval", 0, "minimum bytes between progress updates within a file")
}

func (f *settingsFlags) settings() config.Settings {
	s := config.Settings{
		DestinationRule:            f.destinationRule,
		CollidingFiles:             f.collidingFiles,
		CollidingSubdirectories:    f.collidingSubdir,
		Symlinks:                   f.symlinks,
		BrokenSymlinks:             f.brokenSymlinks,
		MoveStrategy:               f.moveStrategy,
		Exclude:                    f.exclude,
		ReadBufferSize:             f.readBufferSize,
		WriteBufferSize:            f.writeBufferSize,
		ProgressUpdateByteInterval: f.byteInterval,
	}
	if f.depth >= 0 {
		depth := f.depth
		s.DepthLimit = &depth
	}
	return s
}
