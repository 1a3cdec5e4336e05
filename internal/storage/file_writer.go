package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/project-atlas/internal/errs"
)

// Tx writes one file's rows. It is only valid inside Store.WithTx.
type Tx struct {
	tx *sql.Tx
}

// DeleteFileRows removes a file's rows from all four tables. It is a no-op
// for a path that was never indexed.
func (t *Tx) DeleteFileRows(ctx context.Context, path string) error {
	// Exports first so SET NULL on symbol delete has nothing left to touch.
	for _, q := range []sq.DeleteBuilder{
		sq.Delete("exports").Where(sq.Eq{"file_path": path}),
		sq.Delete("imports").Where(sq.Eq{"file_path": path}),
		sq.Delete("symbols").Where(sq.Eq{"file_path": path}),
		sq.Delete("files").Where(sq.Eq{"path": path}),
	} {
		if _, err := q.RunWith(t.tx).ExecContext(ctx); err != nil {
			return errs.Store(fmt.Errorf("failed to delete rows for %s: %w", path, err))
		}
	}
	return nil
}

// InsertFile writes the file record.
func (t *Tx) InsertFile(ctx context.Context, f *File) error {
	indexedAt := f.IndexedAt
	if indexedAt.IsZero() {
		indexedAt = time.Now()
	}

	_, err := sq.Insert("files").
		Columns("path", "language", "modified_at", "line_count", "has_default_export", "indexed_at").
		Values(f.Path, f.Language, f.ModifiedAt, f.LineCount, f.HasDefaultExport, indexedAt.UTC().Format(time.RFC3339)).
		RunWith(t.tx).
		ExecContext(ctx)
	if err != nil {
		return errs.Store(fmt.Errorf("failed to insert file %s: %w", f.Path, err))
	}
	return nil
}

// InsertSymbol writes a symbol and returns its persisted id.
func (t *Tx) InsertSymbol(ctx context.Context, s *Symbol) (int64, error) {
	res, err := sq.Insert("symbols").
		Columns("name", "file_path", "start_line", "end_line", "kind", "signature", "exported", "is_default", "parent_symbol_id").
		Values(s.Name, s.FilePath, s.StartLine, s.EndLine, s.Kind, nullString(s.Signature), s.Exported, s.IsDefault, nullInt64(s.ParentSymbolID)).
		RunWith(t.tx).
		ExecContext(ctx)
	if err != nil {
		return 0, errs.Store(fmt.Errorf("failed to insert symbol %s in %s: %w", s.Name, s.FilePath, err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.Store(fmt.Errorf("failed to read symbol id: %w", err))
	}
	return id, nil
}

// InsertImport writes one import binding.
func (t *Tx) InsertImport(ctx context.Context, imp *Import) error {
	_, err := sq.Insert("imports").
		Columns("file_path", "imported_path", "imported_name", "alias", "is_external", "package_name", "line").
		Values(imp.FilePath, nullString(imp.ImportedPath), imp.ImportedName, nullString(imp.Alias), imp.IsExternal, nullString(imp.PackageName), imp.Line).
		RunWith(t.tx).
		ExecContext(ctx)
	if err != nil {
		return errs.Store(fmt.Errorf("failed to insert import of %s in %s: %w", imp.ImportedName, imp.FilePath, err))
	}
	return nil
}

// InsertExport writes one exported name.
func (t *Tx) InsertExport(ctx context.Context, e *Export) error {
	_, err := sq.Insert("exports").
		Columns("file_path", "exported_name", "local_name", "symbol_id", "is_reexport", "source_path", "line").
		Values(e.FilePath, e.ExportedName, nullString(e.LocalName), nullInt64(e.SymbolID), e.IsReexport, nullString(e.SourcePath), e.Line).
		RunWith(t.tx).
		ExecContext(ctx)
	if err != nil {
		return errs.Store(fmt.Errorf("failed to insert export %s in %s: %w", e.ExportedName, e.FilePath, err))
	}
	return nil
}
