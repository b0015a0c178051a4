package scan

// Stats summarizes the contents of a scanned tree. Used as the pre-pass
// for progress totals before a copy or move mutates anything.
type Stats struct {
	// TotalBytes is the sum of file sizes (symlink targets included for
	// links to files). Directory metadata is not counted.
	TotalBytes int64

	// Files counts regular files and symlinks to files.
	Files int

	// Directories counts directories and symlinks to directories,
	// excluding the root itself.
	Directories int

	// BrokenSymlinks counts links whose target does not exist.
	BrokenSymlinks int
}

// TreeStats scans the tree rooted at root with the given options and
// returns aggregate counts. Only metadata is read; no content I/O happens.
func TreeStats(root string, opts Options) (Stats, error) {
	opts.YieldRoot = false

	var stats Stats

	scanner := New(root, opts)
	for entry, ok := scanner.Next(); ok; entry, ok = scanner.Next() {
		switch entry.Kind {
		case KindFile, KindSymlinkToFile:
			stats.Files++
			stats.TotalBytes += entry.Size
		case KindDirectory, KindSymlinkToDirectory:
			stats.Directories++
		case KindBrokenSymlink:
			stats.BrokenSymlinks++
		}
	}
	if err := scanner.Err(); err != nil {
		return Stats{}, err
	}

	return stats, nil
}

// TreeSize returns the total size in bytes of all files in the tree rooted
// at root, without a depth limit and without following symlinks into
// other trees.
func TreeSize(root string) (int64, error) {
	stats, err := TreeStats(root, Options{})
	if err != nil {
		return 0, err
	}
	return stats.TotalBytes, nil
}
