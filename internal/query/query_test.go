package query

// Test Plan for Service:
// - Where falls back exact -> case-insensitive -> prefix and reports the step
// - Where returns SymbolNotFound with fuzzy suggestions when nothing matches
// - Exports, Imports, Importers and FileStats reject unknown files with FileNotIndexed
// - Imports splits internal from external bindings
// - Repeated queries are served from the cache until Invalidate
// - Commits through the same store or a second handle clear the cache
// - Paths are normalized relative to the project root
// - Dependencies and Dependents go through the cached graph

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-atlas/internal/depgraph"
	"github.com/mvp-joe/project-atlas/internal/errs"
	"github.com/mvp-joe/project-atlas/internal/storage"
)

func seed(t *testing.T) *storage.Store {
	t.Helper()
	store := storage.NewTestStore(t)
	storage.SeedFile(t, store, storage.File{Path: "src/user.ts", Language: "typescript", ModifiedAt: 1, LineCount: 20},
		[]storage.Symbol{
			{Name: "UserService", Kind: "class", StartLine: 3, EndLine: 20, Exported: true},
			{Name: "getUser", Kind: "method", StartLine: 5, EndLine: 8},
		},
		[]int{-1, 0},
		[]storage.Import{
			{ImportedPath: "src/db.ts", ImportedName: "Db", Line: 1},
			{IsExternal: true, PackageName: "zod", ImportedName: "z", Line: 2},
		},
		[]storage.Export{{ExportedName: "UserService", Line: 3}},
		[]int{0})
	storage.SeedFile(t, store, storage.File{Path: "src/db.ts", Language: "typescript", ModifiedAt: 1, LineCount: 5},
		[]storage.Symbol{{Name: "Db", Kind: "class", StartLine: 1, EndLine: 5, Exported: true}},
		nil, nil,
		[]storage.Export{{ExportedName: "Db", Line: 1}},
		[]int{0})
	return store
}

func newService(t *testing.T, store *storage.Store, opts ...Option) *Service {
	t.Helper()
	svc, err := New(store, opts...)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestWhere_FallbackChain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t, seed(t))

	tests := []struct {
		query string
		match MatchKind
		names []string
	}{
		{"UserService", MatchExact, []string{"UserService"}},
		{"userservice", MatchCaseInsensitive, []string{"UserService"}},
		{"getU", MatchPrefix, []string{"getUser"}},
	}
	for _, tt := range tests {
		res, err := svc.Where(ctx, tt.query)
		require.NoError(t, err, tt.query)
		assert.Equal(t, tt.match, res.Match, tt.query)
		require.Len(t, res.Symbols, len(tt.names))
		for i, name := range tt.names {
			assert.Equal(t, name, res.Symbols[i].Name)
		}
	}
}

func TestWhere_NotFoundCarriesSuggestions(t *testing.T) {
	t.Parallel()

	svc := newService(t, seed(t))

	_, err := svc.Where(context.Background(), "UserServce")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindSymbolNotFound))

	var e *errs.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "UserServce", e.Query)
	assert.Contains(t, e.Suggestions, "UserService")
	assert.Contains(t, err.Error(), "did you mean")

	_, err = svc.Where(context.Background(), "")
	assert.True(t, errs.Is(err, errs.KindSymbolNotFound))
}

func TestFileQueries_UnknownFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t, seed(t))

	_, err := svc.Exports(ctx, "src/nope.ts")
	assert.True(t, errs.Is(err, errs.KindFileNotIndexed))
	_, err = svc.Imports(ctx, "src/nope.ts")
	assert.True(t, errs.Is(err, errs.KindFileNotIndexed))
	_, err = svc.Importers(ctx, "src/nope.ts")
	assert.True(t, errs.Is(err, errs.KindFileNotIndexed))
	_, err = svc.FileStats(ctx, "src/nope.ts")
	assert.True(t, errs.Is(err, errs.KindFileNotIndexed))
	_, err = svc.Dependents(ctx, "src/nope.ts", 1)
	assert.True(t, errs.Is(err, errs.KindFileNotIndexed))
}

func TestImportsAndExports(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t, seed(t))

	imps, err := svc.Imports(ctx, "./src/user.ts")
	require.NoError(t, err)
	assert.Equal(t, "src/user.ts", imps.Path)
	require.Len(t, imps.Internal, 1)
	assert.Equal(t, "src/db.ts", imps.Internal[0].ImportedPath)
	require.Len(t, imps.External, 1)
	assert.Equal(t, "zod", imps.External[0].PackageName)

	exps, err := svc.Exports(ctx, "src/user.ts")
	require.NoError(t, err)
	require.Len(t, exps.Exports, 1)
	assert.Equal(t, "UserService", exps.Exports[0].ExportedName)

	importers, err := svc.Importers(ctx, "src/db.ts")
	require.NoError(t, err)
	require.Len(t, importers, 1)
	assert.Equal(t, "src/user.ts", importers[0].FilePath)

	stats, err := svc.FileStats(ctx, "src/user.ts")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Symbols)
}

func TestDependencyQueries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t, seed(t))

	deps, err := svc.Dependencies(ctx, "src/user.ts")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/db.ts"}, deps)

	dependents, err := svc.Dependents(ctx, "src/db.ts", 2)
	require.NoError(t, err)
	assert.Equal(t, []depgraph.Dependent{{Path: "src/user.ts", Depth: 1}}, dependents)
}

func TestCache_ServesRepeatedQueries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t, seed(t), WithCache(16, time.Hour))

	first, err := svc.Where(ctx, "UserService")
	require.NoError(t, err)
	second, err := svc.Where(ctx, "UserService")
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged store is served from cache")

	svc.Invalidate()
	third, err := svc.Where(ctx, "UserService")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, first, third)
}

func TestCache_SeesCommitsFromSameStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, WithCache(16, time.Hour))

	before, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, before.Files)

	storage.SeedFile(t, store, storage.File{Path: "src/extra.ts", Language: "typescript", ModifiedAt: 1, LineCount: 1},
		[]storage.Symbol{{Name: "UserServiceFactory", Kind: "function", StartLine: 1, EndLine: 1, Exported: true}},
		nil, nil, nil, nil)

	after, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Files)
}

func TestCache_SeesCommitsFromAnotherHandle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, WithCache(16, time.Hour))

	res, err := svc.Where(ctx, "Db")
	require.NoError(t, err)
	require.Len(t, res.Symbols, 1)
	dependents, err := svc.Dependents(ctx, "src/db.ts", 1)
	require.NoError(t, err)
	assert.Equal(t, []depgraph.Dependent{{Path: "src/user.ts", Depth: 1}}, dependents)

	// A separate writer, as when atlas index runs in another process.
	other, err := storage.Open(ctx, store.Path())
	require.NoError(t, err)
	require.NoError(t, other.DeleteFile(ctx, "src/db.ts"))
	require.NoError(t, other.Close())

	_, err = svc.Where(ctx, "Db")
	assert.True(t, errs.Is(err, errs.KindSymbolNotFound), "got %v", err)

	_, err = svc.Exports(ctx, "src/db.ts")
	assert.True(t, errs.Is(err, errs.KindFileNotIndexed), "got %v", err)

	_, err = svc.Dependents(ctx, "src/db.ts", 1)
	assert.True(t, errs.Is(err, errs.KindFileNotIndexed), "got %v", err)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store)

	_, err := svc.Exports(ctx, "src/late.ts")
	require.Error(t, err)

	storage.SeedFile(t, store, storage.File{Path: "src/late.ts", Language: "typescript", ModifiedAt: 1, LineCount: 1},
		nil, nil, nil, nil, nil)

	res, err := svc.Exports(ctx, "src/late.ts")
	require.NoError(t, err)
	assert.Empty(t, res.Exports)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	root := filepath.Join(string(filepath.Separator), "work", "proj")
	svc := newService(t, storage.NewTestStore(t), WithRoot(root))

	assert.Equal(t, "src/a.ts", svc.Normalize("./src/a.ts"))
	assert.Equal(t, "src/a.ts", svc.Normalize("src//b/../a.ts"))
	assert.Equal(t, "src/a.ts", svc.Normalize(filepath.Join(root, "src", "a.ts")))
}
