package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/treekit/treekit/pkg/config"
	"github.com/treekit/treekit/pkg/log"
	"github.com/treekit/treekit/pkg/operation"
)

// newBatchCmd creates the batch command
func newBatchCmd() *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run the copy and move jobs from the config file",
		Long: `Batch loads the config file, validates every job, then runs the jobs
concurrently. Job-level options override the defaults block; anything
left unset falls back to the engine defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx, configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			if len(cfg.Jobs) == 0 {
				return errors.New("config has no jobs")
			}

			ui := log.New(os.Stdout, zerolog.InfoLevel)
			ui.Header("running batch jobs")

			group, ctx := errgroup.WithContext(ctx)
			group.SetLimit(parallel)

			for _, job := range cfg.Jobs {
				job := job
				group.Go(func() error {
					return runJob(ctx, ui, cfg, job)
				})
			}

			if err := group.Wait(); err != nil {
				return err
			}

			ui.Successf("all %d jobs finished", len(cfg.Jobs))

			return nil
		},
	}

	cmd.Flags().IntVar(&parallel, "parallel", 4, "maximum jobs running at once")

	return cmd
}

func runJob(ctx context.Context, ui *log.Logger, cfg *config.Config, job config.Job) error {
	settings := config.MergeSettings(cfg.Defaults, job.Options)

	ui.StartTreeOperation(ctx, log.TreeOperation{
		Action:      job.Action,
		Source:      job.Source,
		Destination: job.Destination,
	})
	defer ui.EndTreeOperation(ctx)

	switch job.Action {
	case config.ActionCopy:
		opts, err := settings.CopyOptions()
		if err != nil {
			return errors.Errorf("job %q: %w", job.Name, err)
		}
		result, err := operation.CopyTree(ctx, job.Source, job.Destination, opts)
		if err != nil {
			return errors.Errorf("job %q: %w", job.Name, err)
		}
		ui.Successf("%s: copied %d files, %d directories, %d symlinks (%d bytes)",
			job.Name, result.FilesCopied, result.DirectoriesCreated, result.SymlinksCreated, result.TotalBytesCopied)

	case config.ActionMove:
		opts, err := settings.MoveOptions()
		if err != nil {
			return errors.Errorf("job %q: %w", job.Name, err)
		}
		result, err := operation.MoveTree(ctx, job.Source, job.Destination, opts)
		if err != nil {
			return errors.Errorf("job %q: %w", job.Name, err)
		}
		ui.Successf("%s: moved %d files, %d directories, %d symlinks (%d bytes) via %s",
			job.Name, result.FilesMoved, result.DirectoriesMoved, result.SymlinksMoved,
			result.TotalBytesMoved, result.StrategyUsed)

	default:
		return errors.Errorf("job %q: unknown action %q", job.Name, job.Action)
	}

	return nil
}
