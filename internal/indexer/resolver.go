package indexer

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Resolver maps an internal import specifier to the project-relative path
// of the file it refers to.
type Resolver interface {
	// Resolve returns the target path, or "" when no file matches.
	Resolve(importer, specifier string) string
}

// jsToTS lists the TypeScript sources a compiled .js-family specifier may
// refer to ("./a.js" written in a .ts file means "./a.ts").
var jsToTS = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

// FSResolver resolves specifiers against files on disk under root.
type FSResolver struct {
	root       string
	extensions []string
	isFile     func(rel string) bool
}

// NewFSResolver creates a resolver trying extensions in order.
func NewFSResolver(root string, extensions []string) *FSResolver {
	r := &FSResolver{root: root, extensions: extensions}
	r.isFile = r.statFile
	return r
}

// Resolve tries, in order: the path as written, the path plus each
// extension, the TypeScript sibling of a .js-family path, and the
// directory's index file with each extension. A specifier starting with
// "/" is taken relative to the project root. Targets outside the root do
// not resolve.
func (r *FSResolver) Resolve(importer, specifier string) string {
	var base string
	if strings.HasPrefix(specifier, "/") {
		base = path.Clean(strings.TrimPrefix(specifier, "/"))
	} else {
		base = path.Join(path.Dir(importer), specifier)
	}
	if base == ".." || strings.HasPrefix(base, "../") {
		return ""
	}

	for _, candidate := range r.candidates(base) {
		if r.isFile(candidate) {
			return candidate
		}
	}
	return ""
}

func (r *FSResolver) candidates(base string) []string {
	out := []string{base}
	for _, ext := range r.extensions {
		out = append(out, base+ext)
	}
	ext := path.Ext(base)
	for _, ts := range jsToTS[ext] {
		out = append(out, strings.TrimSuffix(base, ext)+ts)
	}
	for _, ext := range r.extensions {
		out = append(out, path.Join(base, "index"+ext))
	}
	return out
}

func (r *FSResolver) statFile(rel string) bool {
	if rel == "." {
		return false
	}
	info, err := os.Stat(filepath.Join(r.root, filepath.FromSlash(rel)))
	return err == nil && info.Mode().IsRegular()
}
