package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mvp-joe/project-atlas/internal/errs"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given project root.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (ATLAS_*)
// 2. Config file (.atlas/config.yml, .atlas/config.yaml or .atlas/config.json)
// 3. Default values
//
// Every failure is returned as an errs.KindConfig error.
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.AddConfigPath(filepath.Join(l.rootDir, DirName))

	v.SetEnvPrefix("ATLAS")
	v.AutomaticEnv()
	// ATLAS_WATCH_DEBOUNCE -> watch.debounce
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("include")
	_ = v.BindEnv("exclude")
	_ = v.BindEnv("resolve.extensions")
	_ = v.BindEnv("watch.debounce")
	_ = v.BindEnv("indexer.workers")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - defaults + env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errs.Config(fmt.Errorf("failed to read config file: %w", err))
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.Config(fmt.Errorf("failed to unmarshal config: %w", err))
	}

	if err := Validate(cfg); err != nil {
		return nil, errs.Config(err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values. Languages are set per
// key so a config file naming only one language keeps the other default.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("include", defaults.Include)
	v.SetDefault("exclude", defaults.Exclude)
	for lang, exts := range defaults.Languages {
		v.SetDefault("languages."+lang, exts)
	}
	v.SetDefault("resolve.extensions", defaults.Resolve.Extensions)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("indexer.workers", defaults.Indexer.Workers)
}

// LoadConfigFromDir loads configuration for a project root.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
