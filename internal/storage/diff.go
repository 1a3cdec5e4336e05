package storage

import (
	"context"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/project-atlas/internal/errs"
)

// IndexedMtimes returns path -> recorded modification time for every file.
func (s *Store) IndexedMtimes(ctx context.Context) (map[string]int64, error) {
	rows, err := sq.Select("path", "modified_at").From("files").RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errs.Store(fmt.Errorf("failed to load indexed mtimes: %w", err))
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var path string
		var mtime int64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, errs.Store(err)
		}
		out[path] = mtime
	}
	return out, errs.Store(rows.Err())
}

// Diff partitions the current path -> mtime listing against the index.
func (s *Store) Diff(ctx context.Context, current map[string]int64) (*FileDiff, error) {
	indexed, err := s.IndexedMtimes(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeDiff(indexed, current), nil
}

// ComputeDiff is the pure form of Diff. A file is stale when its current
// mtime is newer than the recorded one.
func ComputeDiff(indexed, current map[string]int64) *FileDiff {
	d := &FileDiff{}
	for path, mtime := range current {
		recorded, ok := indexed[path]
		switch {
		case !ok:
			d.New = append(d.New, path)
		case mtime > recorded:
			d.Stale = append(d.Stale, path)
		}
	}
	for path := range indexed {
		if _, ok := current[path]; !ok {
			d.Deleted = append(d.Deleted, path)
		}
	}
	sort.Strings(d.Stale)
	sort.Strings(d.New)
	sort.Strings(d.Deleted)
	return d
}

// StaleFiles returns indexed files whose current mtime is newer than recorded.
func (s *Store) StaleFiles(ctx context.Context, current map[string]int64) ([]string, error) {
	d, err := s.Diff(ctx, current)
	if err != nil {
		return nil, err
	}
	return d.Stale, nil
}

// NewFiles returns files present in current but not indexed.
func (s *Store) NewFiles(ctx context.Context, current map[string]int64) ([]string, error) {
	d, err := s.Diff(ctx, current)
	if err != nil {
		return nil, err
	}
	return d.New, nil
}

// DeletedFiles returns indexed files absent from current.
func (s *Store) DeletedFiles(ctx context.Context, current map[string]int64) ([]string, error) {
	d, err := s.Diff(ctx, current)
	if err != nil {
		return nil, err
	}
	return d.Deleted, nil
}
