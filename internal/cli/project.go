package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mvp-joe/project-atlas/internal/config"
	"github.com/mvp-joe/project-atlas/internal/indexer"
	"github.com/mvp-joe/project-atlas/internal/query"
	"github.com/mvp-joe/project-atlas/internal/scanner"
	"github.com/mvp-joe/project-atlas/internal/storage"
)

// project bundles what every command needs: the root, its configuration
// and an open store.
type project struct {
	root   string
	cfg    *config.Config
	store  *storage.Store
	logger *slog.Logger
}

// findRoot resolves --project, or the nearest project root above the
// working directory.
func findRoot() (string, error) {
	start := projectDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		start = wd
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}
	if projectDir != "" {
		return abs, nil
	}
	return config.FindProjectRoot(abs)
}

// openProject loads configuration and opens the store. With create false
// a missing index is an errs.KindIndexMissing error.
func openProject(ctx context.Context, create bool, logger *slog.Logger) (*project, error) {
	root, err := findRoot()
	if err != nil {
		return nil, err
	}

	cfg, err := config.NewLoader(root).Load()
	if err != nil {
		return nil, err
	}

	open := storage.OpenExisting
	if create {
		open = storage.OpenProject
	}
	store, err := open(ctx, root)
	if err != nil {
		return nil, err
	}

	logger.Debug("project opened", "root", root, "db", store.Path())
	return &project{root: root, cfg: cfg, store: store, logger: logger}, nil
}

func (p *project) Close() error {
	return p.store.Close()
}

// newIndexer wires a filesystem scanner and an indexer for the project.
func (p *project) newIndexer(progress indexer.ProgressReporter) (*indexer.Indexer, *scanner.FS, error) {
	sc, err := scanner.New(p.root, p.cfg)
	if err != nil {
		return nil, nil, err
	}
	idx, err := indexer.New(p.store, sc,
		indexer.WithRoot(p.root),
		indexer.WithConfig(p.cfg),
		indexer.WithLogger(p.logger),
		indexer.WithProgress(progress),
	)
	if err != nil {
		return nil, nil, err
	}
	return idx, sc, nil
}

func (p *project) newQuery() (*query.Service, error) {
	return query.New(p.store, query.WithRoot(p.root), query.WithLogger(p.logger))
}

// withQuery runs fn against a read-only view of the project index.
func withQuery(ctx context.Context, fn func(*query.Service) error) error {
	p, err := openProject(ctx, false, slog.Default())
	if err != nil {
		return err
	}
	defer p.Close()

	svc, err := p.newQuery()
	if err != nil {
		return err
	}
	defer svc.Close()

	return fn(svc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}
