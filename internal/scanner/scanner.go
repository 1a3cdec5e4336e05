// Package scanner lists the source files of a project with their
// modification times. It is the indexer's only view of the file system
// layout.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/mvp-joe/project-atlas/internal/config"
	"github.com/mvp-joe/project-atlas/internal/errs"
)

// Scanner produces the current listing of indexable files.
type Scanner interface {
	// Scan returns project-relative, slash-separated paths mapped to their
	// modification time in Unix milliseconds.
	Scan(ctx context.Context) (map[string]int64, error)
}

// skippedDirs are never descended into, regardless of configuration.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	config.DirName: true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	".next":        true,
	"out":          true,
}

// IsSkippedDir reports whether a directory with this base name is excluded
// from every scan.
func IsSkippedDir(name string) bool {
	return skippedDirs[name]
}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FS scans a directory tree on disk.
type FS struct {
	root      string
	cfg       *config.Config
	include   []compiledPattern
	exclude   []compiledPattern
	gitignore *ignore.GitIgnore
}

// New creates a scanner rooted at root. Include and exclude globs come from
// cfg; the root .gitignore, if present, is honoured as well.
func New(root string, cfg *config.Config) (*FS, error) {
	s := &FS{root: root, cfg: cfg}

	var err error
	if s.include, err = compilePatterns(cfg.Include); err != nil {
		return nil, errs.Config(err)
	}
	if s.exclude, err = compilePatterns(cfg.Exclude); err != nil {
		return nil, errs.Config(err)
	}

	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}
	s.gitignore = gi

	return s, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", config.ErrInvalidPattern, p, err)
		}
		out = append(out, compiledPattern{pattern: p, glob: g})
	}
	return out, nil
}

// Root returns the directory being scanned.
func (s *FS) Root() string {
	return s.root
}

// Scan walks the tree and returns every file Match accepts.
func (s *FS) Scan(ctx context.Context) (map[string]int64, error) {
	files := make(map[string]int64)

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries below the root are skipped, not fatal.
			if path == s.root {
				return err
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != s.root && s.skipDir(rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !s.Match(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		files[rel] = info.ModTime().UnixMilli()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.root, err)
	}
	return files, nil
}

func (s *FS) skipDir(rel, name string) bool {
	if IsSkippedDir(name) {
		return true
	}
	if s.gitignore != nil && s.gitignore.MatchesPath(rel+"/") {
		return true
	}
	// "vendor" should also match pattern "vendor/**"
	return matchesAny(rel+"/**", s.exclude)
}

// Match reports whether a project-relative path is an indexable source file:
// a configured language extension, included, not excluded, not ignored and
// not under a skipped directory.
func (s *FS) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	if s.cfg.LanguageFor(rel) == "" {
		return false
	}
	for _, part := range strings.Split(rel, "/")[:strings.Count(rel, "/")] {
		if IsSkippedDir(part) {
			return false
		}
	}
	if s.gitignore != nil && s.gitignore.MatchesPath(rel) {
		return false
	}
	if matchesAny(rel, s.exclude) {
		return false
	}
	return matchesAny(rel, s.include)
}

// LanguageFor returns the language tag for path, or "" if it is not a
// source file.
func (s *FS) LanguageFor(path string) string {
	return s.cfg.LanguageFor(path)
}

// matchesAny checks if a path matches any of the given patterns.
func matchesAny(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// A root-level path also matches "**/"-prefixed patterns, so "**/*.ts"
	// covers "index.ts" as well as "src/index.ts".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && g.Match(path) {
				return true
			}
		}
	}
	return false
}

// Static returns a Scanner over a fixed listing, for tests and callers that
// already know the file set.
type Static map[string]int64

func (s Static) Scan(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out, ctx.Err()
}

// Mtime returns the on-disk mtime of a project-relative path in Unix
// milliseconds.
func Mtime(root, rel string) (int64, error) {
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return 0, errs.FileNotFound(rel, err)
	}
	return info.ModTime().UnixMilli(), nil
}
