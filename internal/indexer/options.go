package indexer

import (
	"log/slog"

	"github.com/mvp-joe/project-atlas/internal/config"
)

// Option configures an Indexer.
type Option func(*Indexer)

// WithRoot sets the project root that relative paths are read from.
func WithRoot(root string) Option {
	return func(idx *Indexer) { idx.root = root }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Indexer) { idx.logger = logger }
}

// WithExtractFunc replaces the extractor.
func WithExtractFunc(fn ExtractFunc) Option {
	return func(idx *Indexer) { idx.extract = fn }
}

// WithReadFunc replaces how file content is loaded.
func WithReadFunc(fn ReadFunc) Option {
	return func(idx *Indexer) { idx.read = fn }
}

// WithWorkers sets the number of extraction goroutines. Values below 1 use
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(idx *Indexer) { idx.workers = n }
}

// WithResolver replaces the import resolver.
func WithResolver(r Resolver) Option {
	return func(idx *Indexer) { idx.resolver = r }
}

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(idx *Indexer) { idx.progress = p }
}

// WithConfig sets the configuration supplying language mapping, resolve
// extensions and the default worker count.
func WithConfig(cfg *config.Config) Option {
	return func(idx *Indexer) { idx.cfg = cfg }
}
