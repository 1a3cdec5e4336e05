package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/project-atlas/internal/errs"
)

// Summary aggregates the whole index: totals, lines of code, breakdowns by
// language and symbol kind, and external packages ranked by the number of
// files importing them.
func (s *Store) Summary(ctx context.Context) (*Summary, error) {
	sum := &Summary{
		ByLanguage: make(map[string]int),
		ByKind:     make(map[string]int),
	}

	totals := []struct {
		dst *int
		q   sq.SelectBuilder
	}{
		{&sum.Files, sq.Select("COUNT(*)").From("files")},
		{&sum.Symbols, sq.Select("COUNT(*)").From("symbols")},
		{&sum.Imports, sq.Select("COUNT(*)").From("imports")},
		{&sum.Exports, sq.Select("COUNT(*)").From("exports")},
		{&sum.Lines, sq.Select("COALESCE(SUM(line_count), 0)").From("files")},
	}
	for _, t := range totals {
		if err := t.q.RunWith(s.db).QueryRowContext(ctx).Scan(t.dst); err != nil {
			return nil, errs.Store(fmt.Errorf("failed to compute totals: %w", err))
		}
	}

	if err := s.groupCount(ctx, sq.Select("language", "COUNT(*)").From("files").GroupBy("language"), sum.ByLanguage); err != nil {
		return nil, err
	}
	if err := s.groupCount(ctx, sq.Select("kind", "COUNT(*)").From("symbols").GroupBy("kind"), sum.ByKind); err != nil {
		return nil, err
	}

	rows, err := sq.Select("package_name", "COUNT(DISTINCT file_path) AS files").
		From("imports").
		Where(sq.Eq{"is_external": true}).
		Where(sq.NotEq{"package_name": nil}).
		GroupBy("package_name").
		OrderBy("files DESC", "package_name ASC").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errs.Store(fmt.Errorf("failed to aggregate packages: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var p PackageUsage
		if err := rows.Scan(&p.Name, &p.Files); err != nil {
			return nil, errs.Store(err)
		}
		sum.ExternalPackages = append(sum.ExternalPackages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Store(err)
	}
	return sum, nil
}
