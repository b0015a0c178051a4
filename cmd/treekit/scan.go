package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/treekit/treekit/pkg/scan"
)

// newScanCmd creates the scan command
func newScanCmd() *cobra.Command {
	var (
		depth          int
		followSymlinks bool
		yieldRoot      bool
	)

	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "List a directory tree without modifying it",
		Long: `Scan walks the tree in deterministic pre-order and prints each entry
with its kind and size, followed by aggregate totals. Symlinks are
reported as links unless --follow-symlinks is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := scan.Options{
				FollowSymlinks: followSymlinks,
				YieldRoot:      yieldRoot,
			}
			if depth >= 0 {
				opts.DepthLimit = scan.Limited(depth)
			}

			var stats scan.Stats

			scanner := scan.New(args[0], opts)
			for entry, ok := scanner.Next(); ok; entry, ok = scanner.Next() {
				printEntry(entry)

				switch entry.Kind {
				case scan.KindFile, scan.KindSymlinkToFile:
					stats.Files++
					stats.TotalBytes += entry.Size
				case scan.KindDirectory, scan.KindSymlinkToDirectory:
					if !entry.IsRoot() {
						stats.Directories++
					}
				case scan.KindBrokenSymlink:
					stats.BrokenSymlinks++
				}
			}
			if err := scanner.Err(); err != nil {
				return errors.Errorf("scanning %s: %w", args[0], err)
			}

			pterm.Println()
			pterm.Printf("%d files, %d directories, %d broken symlinks, %d bytes\n",
				stats.Files, stats.Directories, stats.BrokenSymlinks, stats.TotalBytes)

			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", -1, "maximum depth to scan, -1 for unlimited, 0 for direct children only")
	cmd.Flags().BoolVar(&followSymlinks, "follow-symlinks", false, "descend through symlinked directories")
	cmd.Flags().BoolVar(&yieldRoot, "include-root", false, "print the root entry itself")

	return cmd
}

func printEntry(entry scan.Entry) {
	kind := pterm.FgBlue.Sprint(entry.Kind)
	switch entry.Kind {
	case scan.KindDirectory:
		kind = pterm.FgCyan.Sprint(entry.Kind)
	case scan.KindSymlinkToFile, scan.KindSymlinkToDirectory:
		kind = pterm.FgMagenta.Sprint(entry.Kind)
	case scan.KindBrokenSymlink:
		kind = pterm.FgRed.Sprint(entry.Kind)
	}

	if entry.Kind == scan.KindFile || entry.Kind == scan.KindSymlinkToFile {
		pterm.Printf("%-28s %10d  %s\n", kind, entry.Size, entry.RelPath)
		return
	}
	pterm.Printf("%-28s %10s  %s\n", kind, "", entry.RelPath)
}
