package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedGraph(t *testing.T, store *Store) {
	t.Helper()
	SeedFile(t, store, File{Path: "src/app.ts", Language: "typescript", ModifiedAt: 1, LineCount: 30},
		[]Symbol{
			{Name: "App", Kind: "class", StartLine: 5, EndLine: 20, Exported: true},
			{Name: "boot", Kind: "function", StartLine: 22, EndLine: 25, Exported: true},
			{Name: "helper", Kind: "function", StartLine: 27, EndLine: 29},
		}, nil,
		[]Import{
			{IsExternal: true, PackageName: "react", ImportedName: "default", Alias: "React", Line: 1},
			{ImportedPath: "src/util.ts", ImportedName: "b", Line: 3},
			{ImportedPath: "src/db.ts", ImportedName: "Db", Line: 2},
			{ImportedPath: "src/util.ts", ImportedName: "a", Line: 3},
			{ImportedName: "*", Line: 4}, // unresolved internal
			{IsExternal: true, PackageName: "@scope/ui", ImportedName: "Button", Line: 1},
		},
		[]Export{
			{ExportedName: "boot", Line: 22},
			{ExportedName: "App", Line: 5},
		}, []int{1, 0})
	SeedFile(t, store, File{Path: "src/util.ts", Language: "typescript", ModifiedAt: 1, LineCount: 10},
		[]Symbol{{Name: "a", Kind: "variable", StartLine: 1, EndLine: 1, Exported: true}}, nil,
		[]Import{{IsExternal: true, PackageName: "react", ImportedName: "useState", Line: 1}},
		nil, nil)
	SeedFile(t, store, File{Path: "src/db.ts", Language: "javascript", ModifiedAt: 1, LineCount: 5},
		nil, nil,
		[]Import{{ImportedPath: "src/util.ts", ImportedName: "a", Line: 1}},
		nil, nil)
}

func TestImportsByFile_Ordering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewTestStore(t)
	seedGraph(t, store)

	imps, err := store.ImportsByFile(ctx, "src/app.ts")
	require.NoError(t, err)
	require.Len(t, imps, 6)

	type key struct {
		path, name string
		ext        bool
	}
	got := make([]key, len(imps))
	for i, imp := range imps {
		got[i] = key{imp.ImportedPath, imp.ImportedName, imp.IsExternal}
	}
	assert.Equal(t, []key{
		{"", "*", false}, // NULL target sorts first among internal
		{"src/db.ts", "Db", false},
		{"src/util.ts", "b", false},
		{"src/util.ts", "a", false},
		{"", "Button", true},
		{"", "default", true},
	}, got)
}

func TestExportsByFile_LineOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewTestStore(t)
	seedGraph(t, store)

	exps, err := store.ExportsByFile(ctx, "src/app.ts")
	require.NoError(t, err)
	require.Len(t, exps, 2)
	assert.Equal(t, "App", exps[0].ExportedName)
	assert.Equal(t, "boot", exps[1].ExportedName)
	require.NotNil(t, exps[0].SymbolID)

	sym, err := store.SymbolByID(ctx, *exps[0].SymbolID)
	require.NoError(t, err)
	assert.Equal(t, "App", sym.Name)
}

func TestExportedSymbolsByFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewTestStore(t)
	seedGraph(t, store)

	syms, err := store.ExportedSymbolsByFile(ctx, "src/app.ts")
	require.NoError(t, err)
	assert.Equal(t, []string{"App", "boot"}, symbolNames(syms))
}

func TestImportersOfAndEdges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewTestStore(t)
	seedGraph(t, store)

	importers, err := store.ImportersOf(ctx, "src/util.ts")
	require.NoError(t, err)
	require.Len(t, importers, 3)
	assert.Equal(t, "src/app.ts", importers[0].FilePath)
	assert.Equal(t, "src/db.ts", importers[2].FilePath)

	edges, err := store.InternalEdges(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"src/app.ts", "src/db.ts"},
		{"src/app.ts", "src/util.ts"},
		{"src/db.ts", "src/util.ts"},
	}, edges)
}

func TestGetFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewTestStore(t)
	seedGraph(t, store)

	f, err := store.GetFile(ctx, "src/db.ts")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "javascript", f.Language)
	assert.Equal(t, 5, f.LineCount)
	assert.False(t, f.IndexedAt.IsZero())

	missing, err := store.GetFile(ctx, "nope.ts")
	require.NoError(t, err)
	assert.Nil(t, missing)

	paths, err := store.ListFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.ts", "src/db.ts", "src/util.ts"}, paths)
}

func TestFileStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewTestStore(t)
	seedGraph(t, store)

	stats, err := store.FileStats(ctx, "src/app.ts")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.Symbols)
	assert.Equal(t, 2, stats.ExportedSymbols)
	assert.Equal(t, 6, stats.Imports)
	assert.Equal(t, 2, stats.Exports)
	assert.Equal(t, 0, stats.Importers)
	assert.Equal(t, map[string]int{"class": 1, "function": 2}, stats.ByKind)

	util, err := store.FileStats(ctx, "src/util.ts")
	require.NoError(t, err)
	assert.Equal(t, 2, util.Importers)

	missing, err := store.FileStats(ctx, "nope.ts")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewTestStore(t)
	seedGraph(t, store)

	sum, err := store.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Files)
	assert.Equal(t, 4, sum.Symbols)
	assert.Equal(t, 8, sum.Imports)
	assert.Equal(t, 2, sum.Exports)
	assert.Equal(t, 45, sum.Lines)
	assert.Equal(t, map[string]int{"typescript": 2, "javascript": 1}, sum.ByLanguage)
	assert.Equal(t, map[string]int{"class": 1, "function": 2, "variable": 1}, sum.ByKind)
	assert.Equal(t, []PackageUsage{
		{Name: "react", Files: 2},
		{Name: "@scope/ui", Files: 1},
	}, sum.ExternalPackages)
}

func TestSummary_EmptyIndex(t *testing.T) {
	t.Parallel()

	sum, err := NewTestStore(t).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Files)
	assert.Equal(t, 0, sum.Lines)
	assert.Empty(t, sum.ExternalPackages)
}
