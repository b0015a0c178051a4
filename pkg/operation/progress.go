package operation

// 🏃 OperationKind names the action an engine is currently performing.
type OperationKind int

const (
	OpScanning OperationKind = iota
	OpCreatingDirectory
	OpCopyingFile
	OpCreatingSymlink
	OpRemovingSource
)

func (k OperationKind) String() string {
	switch k {
	case OpScanning:
		return "scanning"
	case OpCreatingDirectory:
		return "creating directory"
	case OpCopyingFile:
		return "copying file"
	case OpCreatingSymlink:
		return "creating symlink"
	case OpRemovingSource:
		return "removing source"
	default:
		return "unknown"
	}
}

// 📊 Progress is a snapshot of an in-flight tree copy or move. Snapshots
// are delivered synchronously on the calling goroutine; a slow handler
// slows the operation but cannot race with it.
type Progress struct {
	// BytesTotal is the number of content bytes the whole operation will
	// write, computed by the pre-pass metadata scan.
	BytesTotal int64

	// BytesFinished is the number of content bytes written so far.
	BytesFinished int64

	FilesCopied        int
	DirectoriesCreated int
	SymlinksCreated    int

	// CurrentOperation and CurrentPath describe the action in flight.
	// CurrentPath is the destination path being produced.
	CurrentOperation OperationKind
	CurrentPath      string

	// OperationIndex counts started operations; TotalOperations is the
	// number the pre-pass planned. OperationIndex never exceeds
	// TotalOperations.
	OperationIndex  int
	TotalOperations int
}

// ProgressFunc receives Progress snapshots. The snapshot is passed by
// value; the engine's own accumulator is never shared.
type ProgressFunc func(progress Progress)

// tracker owns the mutable progress accumulator for one engine call.
// All mutation is single-threaded; the handler may be nil.
type tracker struct {
	handler  ProgressFunc
	progress Progress
}

// begin records the start of one planned operation and emits a snapshot.
func (t *tracker) begin(kind OperationKind, destPath string) {
	t.progress.CurrentOperation = kind
	t.progress.CurrentPath = destPath
	if t.progress.OperationIndex < t.progress.TotalOperations {
		t.progress.OperationIndex++
	}
	t.emit()
}

func (t *tracker) emit() {
	if t.handler != nil {
		t.handler(t.progress)
	}
}
