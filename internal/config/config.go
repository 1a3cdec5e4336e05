package config

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// DirName is the hidden, project-relative directory holding the index
	// database, the writer lock and the optional config file.
	DirName = ".atlas"

	// DBFileName is the index database file inside DirName.
	DBFileName = "index.db"

	// LockFileName is the cross-process writer lock inside DirName.
	LockFileName = "index.lock"
)

// Config represents the complete atlas configuration.
// It can be loaded from .atlas/config.yml with environment variable overrides.
type Config struct {
	Include   []string            `yaml:"include" mapstructure:"include"`     // glob patterns of files to index
	Exclude   []string            `yaml:"exclude" mapstructure:"exclude"`     // glob patterns to skip
	Languages map[string][]string `yaml:"languages" mapstructure:"languages"` // language tag -> extensions
	Resolve   ResolveConfig       `yaml:"resolve" mapstructure:"resolve"`
	Watch     WatchConfig         `yaml:"watch" mapstructure:"watch"`
	Indexer   IndexerConfig       `yaml:"indexer" mapstructure:"indexer"`
}

// ResolveConfig controls how relative import specifiers map to files on disk.
type ResolveConfig struct {
	Extensions []string `yaml:"extensions" mapstructure:"extensions"` // tried in order
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// IndexerConfig controls the extraction pipeline.
type IndexerConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // 0 means runtime.NumCPU()
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Include: []string{"**/*"},
		Exclude: []string{"**/*.d.ts", "**/*.min.js"},
		Languages: map[string][]string{
			"typescript": {".ts", ".tsx", ".mts", ".cts"},
			"javascript": {".js", ".jsx", ".mjs", ".cjs"},
		},
		Resolve: ResolveConfig{
			Extensions: []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs"},
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

// LanguageFor returns the language tag configured for path's extension,
// or "" when the extension is not indexed.
func (c *Config) LanguageFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	// Iterate in a stable order so an extension claimed twice resolves deterministically.
	for _, lang := range c.languageNames() {
		for _, e := range c.Languages[lang] {
			if strings.EqualFold(e, ext) {
				return lang
			}
		}
	}
	return ""
}

// SourceExtensions returns every configured extension, lowercased and sorted.
func (c *Config) SourceExtensions() []string {
	seen := make(map[string]bool)
	for _, exts := range c.Languages {
		for _, e := range exts {
			seen[strings.ToLower(e)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// DBPath returns the index database path for a project root.
func DBPath(root string) string {
	return filepath.Join(root, DirName, DBFileName)
}

// LockPath returns the writer lock path for a project root.
func LockPath(root string) string {
	return filepath.Join(root, DirName, LockFileName)
}

func (c *Config) languageNames() []string {
	names := make([]string, 0, len(c.Languages))
	for name := range c.Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
