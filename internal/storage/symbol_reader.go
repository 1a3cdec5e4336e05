package storage

import (
	"context"
	"fmt"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/project-atlas/internal/errs"
)

const (
	// PrefixLimit caps FindPrefix results.
	PrefixLimit = 20

	// FuzzyLimit caps FindFuzzy suggestions.
	FuzzyLimit = 5
)

// FindExact returns every symbol named name, exported symbols first, then by
// file path and line.
func (s *Store) FindExact(ctx context.Context, name string) ([]Symbol, error) {
	return s.querySymbols(ctx, sq.Select(symbolColumns...).
		From("symbols").
		Where(sq.Eq{"name": name}).
		OrderBy("exported DESC", "file_path ASC", "start_line ASC"))
}

// FindCaseInsensitive is FindExact with ASCII case folding.
func (s *Store) FindCaseInsensitive(ctx context.Context, name string) ([]Symbol, error) {
	return s.querySymbols(ctx, sq.Select(symbolColumns...).
		From("symbols").
		Where("name = ? COLLATE NOCASE", name).
		OrderBy("exported DESC", "file_path ASC", "start_line ASC"))
}

// FindPrefix returns up to PrefixLimit symbols whose name starts with prefix,
// exported first, then shorter names, then by path.
func (s *Store) FindPrefix(ctx context.Context, prefix string) ([]Symbol, error) {
	return s.querySymbols(ctx, sq.Select(symbolColumns...).
		From("symbols").
		Where(`name LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		OrderBy("exported DESC", "length(name) ASC", "file_path ASC", "start_line ASC").
		Limit(PrefixLimit))
}

// fuzzyQuery unions names sharing the query's first three characters with
// names containing the query, deduplicated by UNION.
const fuzzyQuery = `
SELECT name FROM (
    SELECT name FROM symbols WHERE name LIKE ? ESCAPE '\'
    UNION
    SELECT name FROM symbols WHERE name LIKE ? ESCAPE '\'
)
ORDER BY length(name) ASC, name ASC
LIMIT ?`

// FindFuzzy returns up to FuzzyLimit distinct symbol names resembling query.
// It is a heuristic, not an edit-distance ranking.
func (s *Store) FindFuzzy(ctx context.Context, query string) ([]string, error) {
	if query == "" {
		return nil, nil
	}

	head := query
	if utf8.RuneCountInString(query) > 3 {
		head = string([]rune(query)[:3])
	}

	rows, err := s.db.QueryContext(ctx, fuzzyQuery,
		escapeLike(head)+"%",
		"%"+escapeLike(query)+"%",
		FuzzyLimit,
	)
	if err != nil {
		return nil, errs.Store(fmt.Errorf("fuzzy lookup %q: %w", query, err))
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errs.Store(fmt.Errorf("scan fuzzy name: %w", err))
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Store(err)
	}
	return names, nil
}

// SymbolByID returns one symbol, or nil when absent.
func (s *Store) SymbolByID(ctx context.Context, id int64) (*Symbol, error) {
	syms, err := s.querySymbols(ctx, sq.Select(symbolColumns...).From("symbols").Where(sq.Eq{"id": id}))
	if err != nil || len(syms) == 0 {
		return nil, err
	}
	return &syms[0], nil
}

// SymbolsByFile returns a file's symbols in source order.
func (s *Store) SymbolsByFile(ctx context.Context, path string) ([]Symbol, error) {
	return s.querySymbols(ctx, sq.Select(symbolColumns...).
		From("symbols").
		Where(sq.Eq{"file_path": path}).
		OrderBy("start_line ASC", "id ASC"))
}

// ExportedSymbolsByFile returns a file's exported symbols in source order.
func (s *Store) ExportedSymbolsByFile(ctx context.Context, path string) ([]Symbol, error) {
	return s.querySymbols(ctx, sq.Select(symbolColumns...).
		From("symbols").
		Where(sq.Eq{"file_path": path, "exported": true}).
		OrderBy("start_line ASC", "id ASC"))
}

// MembersOf returns the methods and properties of a class symbol.
func (s *Store) MembersOf(ctx context.Context, classID int64) ([]Symbol, error) {
	return s.querySymbols(ctx, sq.Select(symbolColumns...).
		From("symbols").
		Where(sq.Eq{"parent_symbol_id": classID}).
		OrderBy("start_line ASC", "id ASC"))
}

func (s *Store) querySymbols(ctx context.Context, q sq.SelectBuilder) ([]Symbol, error) {
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errs.Store(fmt.Errorf("query symbols: %w", err))
	}
	defer rows.Close()

	syms, err := scanSymbols(rows)
	if err != nil {
		return nil, errs.Store(err)
	}
	return syms, nil
}
