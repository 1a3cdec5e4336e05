package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/project-atlas/internal/errs"
)

// GetFile retrieves a file record.
// Returns (nil, nil) if the file is not indexed.
func (s *Store) GetFile(ctx context.Context, path string) (*File, error) {
	f := &File{}
	var indexedAt string

	err := sq.Select("path", "language", "modified_at", "line_count", "has_default_export", "indexed_at").
		From("files").
		Where(sq.Eq{"path": path}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&f.Path, &f.Language, &f.ModifiedAt, &f.LineCount, &f.HasDefaultExport, &indexedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Store(fmt.Errorf("failed to get file %s: %w", path, err))
	}

	f.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
	return f, nil
}

// ListFiles returns every indexed path, sorted.
func (s *Store) ListFiles(ctx context.Context) ([]string, error) {
	rows, err := sq.Select("path").From("files").OrderBy("path").RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errs.Store(fmt.Errorf("failed to list files: %w", err))
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, errs.Store(err)
		}
		paths = append(paths, p)
	}
	return paths, errs.Store(rows.Err())
}

// ImportsByFile returns a file's imports: internal before external, then by
// target path, then by line.
func (s *Store) ImportsByFile(ctx context.Context, path string) ([]Import, error) {
	return s.queryImports(ctx, sq.Select(importColumns...).
		From("imports").
		Where(sq.Eq{"file_path": path}).
		OrderBy("is_external ASC", "imported_path ASC", "package_name ASC", "line ASC", "id ASC"))
}

// ImportersOf returns the import rows whose resolved target is path,
// ordered by importing file then line.
func (s *Store) ImportersOf(ctx context.Context, path string) ([]Import, error) {
	return s.queryImports(ctx, sq.Select(importColumns...).
		From("imports").
		Where(sq.Eq{"imported_path": path}).
		OrderBy("file_path ASC", "line ASC", "id ASC"))
}

// InternalEdges returns the distinct (importer, target) pairs of resolved
// internal imports.
func (s *Store) InternalEdges(ctx context.Context) ([][2]string, error) {
	rows, err := sq.Select("file_path", "imported_path").
		Distinct().
		From("imports").
		Where(sq.NotEq{"imported_path": nil}).
		OrderBy("file_path", "imported_path").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errs.Store(fmt.Errorf("failed to load import edges: %w", err))
	}
	defer rows.Close()

	var edges [][2]string
	for rows.Next() {
		var e [2]string
		if err := rows.Scan(&e[0], &e[1]); err != nil {
			return nil, errs.Store(err)
		}
		edges = append(edges, e)
	}
	return edges, errs.Store(rows.Err())
}

// ExportsByFile returns a file's exports in source order.
func (s *Store) ExportsByFile(ctx context.Context, path string) ([]Export, error) {
	return s.queryExports(ctx, sq.Select(exportColumns...).
		From("exports").
		Where(sq.Eq{"file_path": path}).
		OrderBy("line ASC", "id ASC"))
}

// FileStats returns per-file aggregates, or (nil, nil) when the file is not
// indexed.
func (s *Store) FileStats(ctx context.Context, path string) (*FileStats, error) {
	f, err := s.GetFile(ctx, path)
	if err != nil || f == nil {
		return nil, err
	}

	stats := &FileStats{File: *f, ByKind: make(map[string]int)}
	counts := []struct {
		dst *int
		q   sq.SelectBuilder
	}{
		{&stats.Symbols, sq.Select("COUNT(*)").From("symbols").Where(sq.Eq{"file_path": path})},
		{&stats.ExportedSymbols, sq.Select("COUNT(*)").From("symbols").Where(sq.Eq{"file_path": path, "exported": true})},
		{&stats.Imports, sq.Select("COUNT(*)").From("imports").Where(sq.Eq{"file_path": path})},
		{&stats.Exports, sq.Select("COUNT(*)").From("exports").Where(sq.Eq{"file_path": path})},
		{&stats.Importers, sq.Select("COUNT(DISTINCT file_path)").From("imports").Where(sq.Eq{"imported_path": path})},
	}
	for _, c := range counts {
		if err := c.q.RunWith(s.db).QueryRowContext(ctx).Scan(c.dst); err != nil {
			return nil, errs.Store(fmt.Errorf("failed to count rows for %s: %w", path, err))
		}
	}

	if err := s.groupCount(ctx, sq.Select("kind", "COUNT(*)").From("symbols").
		Where(sq.Eq{"file_path": path}).GroupBy("kind"), stats.ByKind); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) queryImports(ctx context.Context, q sq.SelectBuilder) ([]Import, error) {
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errs.Store(fmt.Errorf("query imports: %w", err))
	}
	defer rows.Close()

	imps, err := scanImports(rows)
	if err != nil {
		return nil, errs.Store(err)
	}
	return imps, nil
}

func (s *Store) queryExports(ctx context.Context, q sq.SelectBuilder) ([]Export, error) {
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errs.Store(fmt.Errorf("query exports: %w", err))
	}
	defer rows.Close()

	exps, err := scanExports(rows)
	if err != nil {
		return nil, errs.Store(err)
	}
	return exps, nil
}

// groupCount scans (key, count) rows into dst.
func (s *Store) groupCount(ctx context.Context, q sq.SelectBuilder, dst map[string]int) error {
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return errs.Store(fmt.Errorf("group count: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return errs.Store(err)
		}
		dst[key] = n
	}
	return errs.Store(rows.Err())
}
