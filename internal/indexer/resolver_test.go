package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-atlas/internal/config"
)

func TestFSResolver(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, f := range []string{
		"src/a.ts", "src/b.tsx", "src/lib/index.ts", "src/c.js",
		"src/d.ts", "src/e.mts", "lib/x.ts", "src/styles.css",
	} {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}

	r := NewFSResolver(root, config.Default().Resolve.Extensions)

	tests := []struct {
		specifier string
		want      string
	}{
		{"./b", "src/b.tsx"},
		{"./lib", "src/lib/index.ts"},
		{"./lib/index", "src/lib/index.ts"},
		{"./c.js", "src/c.js"},
		{"./d.js", "src/d.ts"},
		{"./e.mjs", "src/e.mts"},
		{"./styles.css", "src/styles.css"},
		{"/lib/x", "lib/x.ts"},
		{"../lib/x", "lib/x.ts"},
		{"./missing", ""},
		{"../../outside", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Resolve("src/a.ts", tt.specifier), tt.specifier)
	}
}

func TestFSResolver_ExtensionOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, f := range []string{"util.ts", "util.js"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, f), nil, 0644))
	}

	assert.Equal(t, "util.ts", NewFSResolver(root, []string{".ts", ".js"}).Resolve("main.ts", "./util"))
	assert.Equal(t, "util.js", NewFSResolver(root, []string{".js", ".ts"}).Resolve("main.ts", "./util"))
}
