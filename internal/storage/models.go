package storage

import "time"

// File is one row of the files table.
type File struct {
	Path             string    `json:"path"`
	Language         string    `json:"language"`
	ModifiedAt       int64     `json:"modified_at"` // Unix milliseconds
	LineCount        int       `json:"line_count"`
	HasDefaultExport bool      `json:"has_default_export"`
	IndexedAt        time.Time `json:"indexed_at"`
}

// Symbol is one row of the symbols table.
type Symbol struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	FilePath       string `json:"file_path"`
	StartLine      int    `json:"start_line"`
	EndLine        int    `json:"end_line"`
	Kind           string `json:"kind"`
	Signature      string `json:"signature,omitempty"`
	Exported       bool   `json:"exported"`
	IsDefault      bool   `json:"is_default"`
	ParentSymbolID *int64 `json:"parent_symbol_id,omitempty"`
}

// Import is one row of the imports table.
type Import struct {
	ID           int64  `json:"id"`
	FilePath     string `json:"file_path"`
	ImportedPath string `json:"imported_path,omitempty"` // "" when external or unresolved
	ImportedName string `json:"imported_name"`
	Alias        string `json:"alias,omitempty"`
	IsExternal   bool   `json:"is_external"`
	PackageName  string `json:"package_name,omitempty"`
	Line         int    `json:"line"`
}

// Export is one row of the exports table.
type Export struct {
	ID           int64  `json:"id"`
	FilePath     string `json:"file_path"`
	ExportedName string `json:"exported_name"`
	LocalName    string `json:"local_name,omitempty"`
	SymbolID     *int64 `json:"symbol_id,omitempty"`
	IsReexport   bool   `json:"is_reexport"`
	SourcePath   string `json:"source_path,omitempty"`
	Line         int    `json:"line"`
}

// PackageUsage counts the files importing an external package.
type PackageUsage struct {
	Name  string `json:"name"`
	Files int    `json:"files"`
}

// Summary holds project-wide aggregates.
type Summary struct {
	Files            int            `json:"files"`
	Symbols          int            `json:"symbols"`
	Imports          int            `json:"imports"`
	Exports          int            `json:"exports"`
	Lines            int            `json:"lines"`
	ByLanguage       map[string]int `json:"by_language"`
	ByKind           map[string]int `json:"by_kind"`
	ExternalPackages []PackageUsage `json:"external_packages"`
}

// FileStats holds per-file aggregates.
type FileStats struct {
	File            File           `json:"file"`
	Symbols         int            `json:"symbols"`
	ExportedSymbols int            `json:"exported_symbols"`
	Imports         int            `json:"imports"`
	Exports         int            `json:"exports"`
	Importers       int            `json:"importers"`
	ByKind          map[string]int `json:"by_kind"`
}

// FileDiff partitions the current file listing against the index.
// Each slice is sorted.
type FileDiff struct {
	Stale   []string `json:"stale"`   // indexed, on-disk mtime newer than recorded
	New     []string `json:"new"`     // on disk, not indexed
	Deleted []string `json:"deleted"` // indexed, absent from disk
}

// Empty reports whether the index is current.
func (d *FileDiff) Empty() bool {
	return len(d.Stale) == 0 && len(d.New) == 0 && len(d.Deleted) == 0
}
