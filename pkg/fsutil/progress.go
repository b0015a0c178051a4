package fsutil

import "io"

// FileProgress describes how far a single file copy or move has come.
type FileProgress struct {
	// BytesFinished is the number of bytes written to the destination so far.
	BytesFinished int64

	// BytesTotal is the number of bytes that must be written in total.
	BytesTotal int64
}

// FileProgressFunc receives progress snapshots during a file copy.
// It runs synchronously on the calling goroutine.
type FileProgressFunc func(progress FileProgress)

// progressWriter wraps a writer and reports progress to a handler at a
// minimum byte interval. The interval is a lower bound: reports may be
// further apart, never closer.
type progressWriter struct {
	inner    io.Writer
	handler  FileProgressFunc
	progress FileProgress

	byteInterval       int64
	bytesSinceLastCall int64
}

func newProgressWriter(inner io.Writer, handler FileProgressFunc, byteInterval int64, bytesTotal int64) *progressWriter {
	return &progressWriter{
		inner:        inner,
		handler:      handler,
		progress:     FileProgress{BytesTotal: bytesTotal},
		byteInterval: byteInterval,
	}
}

func (w *progressWriter) Write(buf []byte) (int, error) {
	written, err := w.inner.Write(buf)

	if written > 0 {
		w.progress.BytesFinished += int64(written)
		w.bytesSinceLastCall += int64(written)
	}

	if w.handler != nil && w.bytesSinceLastCall > w.byteInterval {
		w.handler(w.progress)
		w.bytesSinceLastCall = 0
	}

	return written, err
}

// finish emits the final progress report. Guaranteed to be called exactly
// once per copy, after all bytes have been flushed.
func (w *progressWriter) finish() {
	if w.handler != nil {
		w.handler(w.progress)
	}
}
