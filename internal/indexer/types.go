package indexer

import (
	"fmt"
	"time"

	"github.com/mvp-joe/project-atlas/internal/extractor"
)

// ExtractFunc turns one file's content into rows. The default is
// extractor.Extract; tests inject counting or failing variants.
type ExtractFunc func(content []byte, path, language string) (*extractor.Result, error)

// ReadFunc loads the content of a project-relative path.
type ReadFunc func(path string) ([]byte, error)

// Result summarizes one Build, Update or IndexFile call.
type Result struct {
	FilesIndexed     int           `json:"files_indexed"`
	FilesDeleted     int           `json:"files_deleted"`
	FilesUnchanged   int           `json:"files_unchanged"`
	SymbolsExtracted int           `json:"symbols_extracted"`
	ImportsExtracted int           `json:"imports_extracted"`
	ExportsExtracted int           `json:"exports_extracted"`
	Errors           []FileError   `json:"errors,omitempty"`
	Duration         time.Duration `json:"duration"`
}

// FileError records a file that could not be indexed. The file's previous
// rows, if any, are left untouched.
type FileError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// extracted is the hand-off between extraction workers and the writer.
type extracted struct {
	path     string
	mtime    int64
	language string
	lines    int
	targets  []string // resolved import targets, aligned with res.Imports
	res      *extractor.Result
	err      error
}
