// Package query is the read side of the index: symbol lookup with a
// fallback chain, per-file listings, dependency traversal and project
// summaries. Results are cached until the store changes, whichever process
// committed the change.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/project-atlas/internal/depgraph"
	"github.com/mvp-joe/project-atlas/internal/errs"
	"github.com/mvp-joe/project-atlas/internal/storage"
)

const (
	// DefaultCacheSize bounds the number of cached results.
	DefaultCacheSize = 1024

	// DefaultCacheTTL bounds how long a result is kept while the store
	// stays unchanged.
	DefaultCacheTTL = 5 * time.Minute
)

// MatchKind names the lookup step that produced a Where result.
type MatchKind string

const (
	MatchExact           MatchKind = "exact"
	MatchCaseInsensitive MatchKind = "case_insensitive"
	MatchPrefix          MatchKind = "prefix"
)

// WhereResult is the answer to "where is X defined".
type WhereResult struct {
	Query   string           `json:"query"`
	Match   MatchKind        `json:"match"`
	Symbols []storage.Symbol `json:"symbols"`
}

// ExportsResult lists what a file exports.
type ExportsResult struct {
	Path    string           `json:"path"`
	Exports []storage.Export `json:"exports"`
}

// ImportsResult lists what a file imports, split by origin.
type ImportsResult struct {
	Path     string           `json:"path"`
	Internal []storage.Import `json:"internal"`
	External []storage.Import `json:"external"`
}

// Service answers queries against one project store.
type Service struct {
	store  *storage.Store
	root   string
	logger *slog.Logger
	cache  otter.Cache[string, any]

	mu      sync.Mutex
	version int64
	synced  bool
}

// Option configures a Service.
type Option func(*settings)

type settings struct {
	root      string
	logger    *slog.Logger
	cacheSize int
	cacheTTL  time.Duration
}

// WithRoot sets the project root used to normalize absolute paths.
func WithRoot(root string) Option {
	return func(s *settings) { s.root = root }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithCache sets the cache capacity and TTL.
func WithCache(size int, ttl time.Duration) Option {
	return func(s *settings) {
		s.cacheSize = size
		s.cacheTTL = ttl
	}
}

// New creates a query service over store.
func New(store *storage.Store, opts ...Option) (*Service, error) {
	cfg := settings{
		logger:    slog.Default(),
		cacheSize: DefaultCacheSize,
		cacheTTL:  DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	cache, err := otter.MustBuilder[string, any](cfg.cacheSize).
		WithTTL(cfg.cacheTTL).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	return &Service{
		store:  store,
		root:   cfg.root,
		logger: cfg.logger,
		cache:  cache,
	}, nil
}

// Close releases the cache.
func (s *Service) Close() {
	s.cache.Close()
}

// Invalidate drops every cached result. Commits to the store are detected
// on the next query, so this is only needed to force a reload.
func (s *Service) Invalidate() {
	s.cache.Clear()
	s.logger.Debug("query cache invalidated")
}

// refresh clears the cache when the store's data version moved since the
// last query.
func (s *Service) refresh(ctx context.Context) error {
	v, err := s.store.DataVersion(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.synced && v != s.version {
		s.cache.Clear()
		s.logger.Debug("index changed, query cache cleared", "data_version", v)
	}
	s.version = v
	s.synced = true
	return nil
}

// Where finds the definitions of name: exact match, then case-insensitive,
// then prefix. When all three are empty it returns a SymbolNotFound error
// carrying fuzzy suggestions.
func (s *Service) Where(ctx context.Context, name string) (*WhereResult, error) {
	return cached(ctx, s, "where:"+name, func() (*WhereResult, error) {
		steps := []struct {
			kind MatchKind
			find func(context.Context, string) ([]storage.Symbol, error)
		}{
			{MatchExact, s.store.FindExact},
			{MatchCaseInsensitive, s.store.FindCaseInsensitive},
			{MatchPrefix, s.store.FindPrefix},
		}
		if name != "" {
			for _, step := range steps {
				syms, err := step.find(ctx, name)
				if err != nil {
					return nil, err
				}
				if len(syms) > 0 {
					return &WhereResult{Query: name, Match: step.kind, Symbols: syms}, nil
				}
			}
		}

		suggestions, err := s.store.FindFuzzy(ctx, name)
		if err != nil {
			return nil, err
		}
		return nil, errs.SymbolNotFound(name, suggestions)
	})
}

// Exports lists the exports of path.
func (s *Service) Exports(ctx context.Context, path string) (*ExportsResult, error) {
	path = s.Normalize(path)
	return cached(ctx, s, "exports:"+path, func() (*ExportsResult, error) {
		if err := s.requireIndexed(ctx, path); err != nil {
			return nil, err
		}
		exps, err := s.store.ExportsByFile(ctx, path)
		if err != nil {
			return nil, err
		}
		return &ExportsResult{Path: path, Exports: exps}, nil
	})
}

// Imports lists the imports of path, internal first.
func (s *Service) Imports(ctx context.Context, path string) (*ImportsResult, error) {
	path = s.Normalize(path)
	return cached(ctx, s, "imports:"+path, func() (*ImportsResult, error) {
		if err := s.requireIndexed(ctx, path); err != nil {
			return nil, err
		}
		imps, err := s.store.ImportsByFile(ctx, path)
		if err != nil {
			return nil, err
		}
		res := &ImportsResult{Path: path, Internal: []storage.Import{}, External: []storage.Import{}}
		for _, imp := range imps {
			if imp.IsExternal {
				res.External = append(res.External, imp)
			} else {
				res.Internal = append(res.Internal, imp)
			}
		}
		return res, nil
	})
}

// Importers lists the import rows that resolve to path.
func (s *Service) Importers(ctx context.Context, path string) ([]storage.Import, error) {
	path = s.Normalize(path)
	return cached(ctx, s, "importers:"+path, func() ([]storage.Import, error) {
		if err := s.requireIndexed(ctx, path); err != nil {
			return nil, err
		}
		return s.store.ImportersOf(ctx, path)
	})
}

// FileStats returns per-file aggregates.
func (s *Service) FileStats(ctx context.Context, path string) (*storage.FileStats, error) {
	path = s.Normalize(path)
	return cached(ctx, s, "stats:"+path, func() (*storage.FileStats, error) {
		stats, err := s.store.FileStats(ctx, path)
		if err != nil {
			return nil, err
		}
		if stats == nil {
			return nil, errs.FileNotIndexed(path)
		}
		return stats, nil
	})
}

// Summary returns project-wide aggregates.
func (s *Service) Summary(ctx context.Context) (*storage.Summary, error) {
	return cached(ctx, s, "summary", func() (*storage.Summary, error) {
		return s.store.Summary(ctx)
	})
}

// Graph returns the current dependency graph snapshot.
func (s *Service) Graph(ctx context.Context) (*depgraph.Graph, error) {
	return cached(ctx, s, "graph", func() (*depgraph.Graph, error) {
		return depgraph.Load(ctx, s.store)
	})
}

// Dependencies lists the files path imports directly.
func (s *Service) Dependencies(ctx context.Context, path string) ([]string, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return g.Dependencies(s.Normalize(path))
}

// Dependents lists the files reaching path through up to depth imports.
func (s *Service) Dependents(ctx context.Context, path string, depth int) ([]depgraph.Dependent, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return g.Dependents(s.Normalize(path), depth)
}

// Normalize converts a user-supplied path to the index's form: relative to
// the project root, slash separated, without a leading "./".
func (s *Service) Normalize(path string) string {
	if filepath.IsAbs(path) && s.root != "" {
		if rel, err := filepath.Rel(s.root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	path = filepath.ToSlash(filepath.Clean(path))
	return strings.TrimPrefix(path, "./")
}

func (s *Service) requireIndexed(ctx context.Context, path string) error {
	f, err := s.store.GetFile(ctx, path)
	if err != nil {
		return err
	}
	if f == nil {
		return errs.FileNotIndexed(path)
	}
	return nil
}

// cached serves key from the cache or computes and stores it. Errors are
// not cached.
func cached[T any](ctx context.Context, s *Service, key string, compute func() (T, error)) (T, error) {
	if err := s.refresh(ctx); err != nil {
		var zero T
		return zero, err
	}
	if v, ok := s.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	s.cache.Set(key, v)
	return v, nil
}
