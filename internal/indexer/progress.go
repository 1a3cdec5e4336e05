package indexer

import "time"

// ProgressReporter provides callbacks for reporting indexing progress.
// Implementations can display progress bars, log messages, or remain silent.
// Callbacks are invoked from the single writer goroutine.
type ProgressReporter interface {
	// OnScanComplete is called once the file listing is known.
	OnScanComplete(totalFiles int)

	// OnFileProcessingStart is called before any file is written, with the
	// number of files that will be (re)indexed.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each file is committed or fails.
	OnFileProcessed(path string)

	// OnComplete is called when the call finishes.
	OnComplete(filesIndexed int, duration time.Duration)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnScanComplete(totalFiles int)                       {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int)                {}
func (n *NoOpProgressReporter) OnFileProcessed(path string)                         {}
func (n *NoOpProgressReporter) OnComplete(filesIndexed int, duration time.Duration) {}
