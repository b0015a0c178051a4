package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/treekit/treekit/pkg/log"
	"github.com/treekit/treekit/pkg/operation"
)

// newCopyCmd creates the copy command
func newCopyCmd() *cobra.Command {
	var flags settingsFlags
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "copy <source> <destination>",
		Short: "Copy a directory tree",
		Long: `Copy replicates the source directory tree under the destination.
Collisions at the destination are resolved per entry by the configured
behaviours; the destination root itself is checked once, up front, against
the destination rule.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts, err := flags.settings().CopyOptions()
			if err != nil {
				return errors.Errorf("invalid options: %w", err)
			}

			ui := log.New(os.Stdout, zerolog.InfoLevel)

			var handler operation.ProgressFunc
			bar := newProgressBar("copying")
			if !noProgress {
				handler = bar.handler
			}

			result, err := operation.CopyTreeWithProgress(ctx, args[0], args[1], opts, handler)
			bar.stop()
			if err != nil {
				return errors.Errorf("copying %s to %s: %w", args[0], args[1], err)
			}

			ui.Successf("copied %d files, %d directories, %d symlinks (%d bytes)",
				result.FilesCopied, result.DirectoriesCreated, result.SymlinksCreated, result.TotalBytesCopied)

			return nil
		},
	}

	flags.registerCopy(cmd)
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}
