package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/treekit/treekit/pkg/log"
	"github.com/treekit/treekit/pkg/operation"
)

// newMoveCmd creates the move command
func newMoveCmd() *cobra.Command {
	var flags settingsFlags
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "move <source> <destination>",
		Short: "Move a directory tree",
		Long: `Move relocates the source directory tree to the destination. By default
an atomic rename is attempted first, falling back to copy-and-delete when
the rename cannot apply (for example across filesystems). Symlinks are
always moved as links, never dereferenced.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts, err := flags.settings().MoveOptions()
			if err != nil {
				return errors.Errorf("invalid options: %w", err)
			}

			ui := log.New(os.Stdout, zerolog.InfoLevel)

			var handler operation.ProgressFunc
			bar := newProgressBar("moving")
			if !noProgress {
				handler = bar.handler
			}

			result, err := operation.MoveTreeWithProgress(ctx, args[0], args[1], opts, handler)
			bar.stop()
			if err != nil {
				return errors.Errorf("moving %s to %s: %w", args[0], args[1], err)
			}

			ui.Successf("moved %d files, %d directories, %d symlinks (%d bytes) via %s",
				result.FilesMoved, result.DirectoriesMoved, result.SymlinksMoved,
				result.TotalBytesMoved, result.StrategyUsed)

			return nil
		},
	}

	flags.registerMove(cmd)
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}
