package scanner

// Test Plan for Scanner:
// - Scan returns slash-separated relative paths for configured extensions only
// - Fixed non-source directories are never descended into
// - Root .gitignore rules exclude files and whole directories
// - Exclude globs apply at any depth and to root-level files via "**/"
// - Include globs restrict the listing
// - Reported mtimes are Unix milliseconds of the file on disk
// - Invalid globs are configuration errors
// - A cancelled context aborts the walk

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-atlas/internal/config"
	"github.com/mvp-joe/project-atlas/internal/errs"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("export const x = 1;\n"), 0644))
	}
}

func keys(m map[string]int64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func scan(t *testing.T, root string, cfg *config.Config) []string {
	t.Helper()
	s, err := New(root, cfg)
	require.NoError(t, err)
	files, err := s.Scan(context.Background())
	require.NoError(t, err)
	return keys(files)
}

func TestScan_FiltersByExtensionAndSkippedDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root,
		"index.ts",
		"src/app.tsx",
		"src/util.mjs",
		"src/readme.md",
		"src/types.d.ts",
		"node_modules/react/index.js",
		"dist/bundle.js",
		".atlas/junk.ts",
		"packages/ui/build/out.js",
		"packages/ui/src/button.jsx",
	)

	assert.Equal(t, []string{
		"index.ts",
		"packages/ui/src/button.jsx",
		"src/app.tsx",
		"src/util.mjs",
	}, scan(t, root, config.Default()))
}

func TestScan_HonoursGitignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "src/a.ts", "src/a.gen.ts", "generated/api.ts", "keep/b.ts")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"),
		[]byte("# generated code\ngenerated/\n*.gen.ts\n"), 0644))

	assert.Equal(t, []string{"keep/b.ts", "src/a.ts"}, scan(t, root, config.Default()))
}

func TestScan_IncludeAndExclude(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "main.ts", "src/a.ts", "src/a.test.ts", "legacy/old.ts", "scripts/tool.js")

	cfg := config.Default()
	cfg.Exclude = []string{"**/*.test.ts", "legacy/**"}
	assert.Equal(t, []string{"main.ts", "scripts/tool.js", "src/a.ts"}, scan(t, root, cfg))

	cfg = config.Default()
	cfg.Include = []string{"src/**"}
	assert.Equal(t, []string{"src/a.test.ts", "src/a.ts"}, scan(t, root, cfg))
}

func TestScan_ReportsMtimeMillis(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "a.ts")
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(root, "a.ts"), stamp, stamp))

	s, err := New(root, config.Default())
	require.NoError(t, err)
	files, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stamp.UnixMilli(), files["a.ts"])

	mtime, err := Mtime(root, "a.ts")
	require.NoError(t, err)
	assert.Equal(t, stamp.UnixMilli(), mtime)

	_, err = Mtime(root, "missing.ts")
	assert.True(t, errs.Is(err, errs.KindFileNotFound))
}

func TestMatch(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Exclude = append(cfg.Exclude, "vendor/**")
	s, err := New(t.TempDir(), cfg)
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"a.ts", true},
		{"src/deep/b.cts", true},
		{"src/c.JS", true},
		{"src/d.css", false},
		{"types.d.ts", false},
		{"src/e.min.js", false},
		{"node_modules/x/index.ts", false},
		{"src/.next/page.tsx", false},
		{"vendor/lib.ts", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Match(tt.path), tt.path)
	}
	assert.Equal(t, "javascript", s.LanguageFor("x.cjs"))
}

func TestNew_InvalidGlob(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Exclude = []string{"src/[abc"}
	_, err := New(t.TempDir(), cfg)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfig))
	assert.ErrorIs(t, err, config.ErrInvalidPattern)
}

func TestScan_CancelledContext(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "a.ts")
	s, err := New(root, config.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatic(t *testing.T) {
	t.Parallel()

	src := Static{"a.ts": 1}
	got, err := src.Scan(context.Background())
	require.NoError(t, err)
	got["b.ts"] = 2
	assert.Len(t, src, 1, "Scan must return a copy")
}
