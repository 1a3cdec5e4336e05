// Package indexer keeps the store in step with the source tree. It decides
// which files need re-extraction, fans extraction out over worker
// goroutines, and applies each file's rows in its own transaction from a
// single writer.
package indexer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/project-atlas/internal/config"
	"github.com/mvp-joe/project-atlas/internal/errs"
	"github.com/mvp-joe/project-atlas/internal/extractor"
	"github.com/mvp-joe/project-atlas/internal/scanner"
	"github.com/mvp-joe/project-atlas/internal/storage"
)

// ErrInvalidOrdinal is returned when an extraction result references a
// symbol ordinal that does not precede the reference.
var ErrInvalidOrdinal = errors.New("invalid symbol ordinal")

// Indexer builds and incrementally updates a project store.
type Indexer struct {
	store    *storage.Store
	scanner  scanner.Scanner
	cfg      *config.Config
	root     string
	logger   *slog.Logger
	extract  ExtractFunc
	read     ReadFunc
	workers  int
	resolver Resolver
	progress ProgressReporter

	// mu serializes writers within the process; the store lock covers
	// other processes.
	mu sync.Mutex
}

// New creates an indexer writing to store and listing files through sc.
// An invalid configuration is reported here, before anything is written.
func New(store *storage.Store, sc scanner.Scanner, opts ...Option) (*Indexer, error) {
	idx := &Indexer{
		store:    store,
		scanner:  sc,
		cfg:      config.Default(),
		root:     ".",
		logger:   slog.Default(),
		extract:  extractor.Extract,
		progress: &NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(idx)
	}

	if err := config.Validate(idx.cfg); err != nil {
		return nil, errs.Config(err)
	}
	if idx.workers < 1 {
		idx.workers = idx.cfg.Indexer.Workers
	}
	if idx.workers < 1 {
		idx.workers = runtime.NumCPU()
	}
	if idx.read == nil {
		root := idx.root
		idx.read = func(path string) ([]byte, error) {
			return os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
		}
	}
	if idx.resolver == nil {
		idx.resolver = NewFSResolver(idx.root, idx.cfg.Resolve.Extensions)
	}
	return idx, nil
}

// Build discards the index and extracts every scanned file.
func (idx *Indexer) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	release, err := idx.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	files, err := idx.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	idx.progress.OnScanComplete(len(files))

	if err := idx.store.Reset(ctx); err != nil {
		return nil, err
	}

	res := &Result{}
	if err := idx.process(ctx, files, sortedPaths(files), res); err != nil {
		return nil, err
	}
	idx.finish(res, start, "index built")
	return res, nil
}

// Update removes deleted files and re-extracts new and stale ones. Files
// whose modification time has not advanced are neither read nor parsed.
func (idx *Indexer) Update(ctx context.Context) (*Result, error) {
	start := time.Now()
	release, err := idx.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	files, err := idx.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	idx.progress.OnScanComplete(len(files))

	diff, err := idx.store.Diff(ctx, files)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, path := range diff.Deleted {
		if err := idx.store.DeleteFile(ctx, path); err != nil {
			return nil, err
		}
		idx.logger.Debug("removed file from index", "path", path)
		res.FilesDeleted++
	}

	paths := append(append([]string{}, diff.Stale...), diff.New...)
	sort.Strings(paths)
	res.FilesUnchanged = len(files) - len(paths)

	if err := idx.process(ctx, files, paths, res); err != nil {
		return nil, err
	}
	idx.finish(res, start, "index updated")
	return res, nil
}

// IndexFile re-extracts a single file regardless of staleness, recording
// mtime as its modification time.
func (idx *Indexer) IndexFile(ctx context.Context, path string, mtime int64) (*Result, error) {
	start := time.Now()
	release, err := idx.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	res := &Result{}
	if err := idx.process(ctx, map[string]int64{path: mtime}, []string{path}, res); err != nil {
		return nil, err
	}
	idx.finish(res, start, "file indexed")
	return res, nil
}

// Status reports how the index differs from the tree without changing it.
func (idx *Indexer) Status(ctx context.Context) (*storage.FileDiff, error) {
	files, err := idx.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return idx.store.Diff(ctx, files)
}

func (idx *Indexer) acquire() (func(), error) {
	idx.mu.Lock()
	lock := idx.store.Lock()
	if err := lock.Acquire(); err != nil {
		idx.mu.Unlock()
		return nil, err
	}
	return func() {
		if err := lock.Release(); err != nil {
			idx.logger.Warn("failed to release index lock", "error", err)
		}
		idx.mu.Unlock()
	}, nil
}

// process extracts paths on worker goroutines and writes them from one.
func (idx *Indexer) process(ctx context.Context, mtimes map[string]int64, paths []string, res *Result) error {
	idx.progress.OnFileProcessingStart(len(paths))
	if len(paths) == 0 {
		return nil
	}

	workers := min(idx.workers, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan string)
	results := make(chan extracted, workers)

	g.Go(func() error {
		defer close(jobs)
		for _, p := range paths {
			select {
			case jobs <- p:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for p := range jobs {
				r := idx.extractFile(p, mtimes[p])
				select {
				case results <- r:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	g.Go(func() error {
		for r := range results {
			if err := idx.apply(gctx, r, res); err != nil {
				return err
			}
			idx.progress.OnFileProcessed(r.path)
		}
		return nil
	})

	return g.Wait()
}

// extractFile reads and extracts one file. It runs on a worker goroutine
// and never touches the store.
func (idx *Indexer) extractFile(path string, mtime int64) extracted {
	r := extracted{path: path, mtime: mtime}

	r.language = idx.cfg.LanguageFor(path)
	if r.language == "" {
		r.err = errs.Parse(path, fmt.Errorf("no language configured for %s", filepath.Ext(path)))
		return r
	}

	content, err := idx.read(path)
	if err != nil {
		r.err = errs.FileNotFound(path, err)
		return r
	}
	r.lines = countLines(content)

	res, err := idx.extract(content, path, r.language)
	if err != nil {
		if errs.KindOf(err) == errs.KindUnknown {
			err = errs.Parse(path, err)
		}
		r.err = err
		return r
	}
	r.res = res

	r.targets = make([]string, len(res.Imports))
	for i, imp := range res.Imports {
		if !imp.IsExternal {
			r.targets[i] = idx.resolver.Resolve(path, imp.Source)
		}
	}
	return r
}

// apply writes one extraction. Per-file failures are recorded in res and
// leave the file's previous rows intact; failures of the store itself and
// cancellation abort the call.
func (idx *Indexer) apply(ctx context.Context, r extracted, res *Result) error {
	err := r.err
	if err == nil {
		err = idx.store.WithTx(ctx, func(tx *storage.Tx) error {
			return writeFile(ctx, tx, r)
		})
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errs.Is(err, errs.KindStore) && !isConstraint(err) {
			return err
		}
		idx.logger.Warn("failed to index file", "path", r.path, "error", err)
		res.Errors = append(res.Errors, FileError{Path: r.path, Err: err})
		return nil
	}

	idx.logger.Debug("indexed file", "path", r.path, "symbols", len(r.res.Symbols))
	res.FilesIndexed++
	res.SymbolsExtracted += len(r.res.Symbols)
	res.ImportsExtracted += len(r.res.Imports)
	res.ExportsExtracted += len(r.res.Exports)
	return nil
}

func (idx *Indexer) finish(res *Result, start time.Time, msg string) {
	res.Duration = time.Since(start)
	sort.Slice(res.Errors, func(i, j int) bool { return res.Errors[i].Path < res.Errors[j].Path })
	idx.progress.OnComplete(res.FilesIndexed, res.Duration)
	idx.logger.Info(msg,
		"indexed", res.FilesIndexed,
		"deleted", res.FilesDeleted,
		"unchanged", res.FilesUnchanged,
		"errors", len(res.Errors),
		"duration", res.Duration)
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}

func countLines(content []byte) int {
	n := bytes.Count(content, []byte{'\n'})
	if len(content) > 0 && content[len(content)-1] != '\n' {
		n++
	}
	return n
}

func sortedPaths(files map[string]int64) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
