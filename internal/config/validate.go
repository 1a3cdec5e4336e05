package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidPattern indicates an include/exclude glob that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrEmptyLanguages indicates no language is configured
	ErrEmptyLanguages = errors.New("no languages configured")

	// ErrInvalidExtension indicates an extension without a leading dot
	ErrInvalidExtension = errors.New("invalid extension")

	// ErrDuplicateExtension indicates one extension mapped to two languages
	ErrDuplicateExtension = errors.New("duplicate extension")

	// ErrUnsupportedLanguage indicates a language tag without a grammar
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrInvalidDebounce indicates a non-positive watch debounce
	ErrInvalidDebounce = errors.New("invalid debounce")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")
)

// supportedLanguages are the language tags the parser has a grammar for.
var supportedLanguages = map[string]bool{
	"typescript": true,
	"javascript": true,
}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePatterns("include", cfg.Include); err != nil {
		errs = append(errs, err)
	}
	if err := validatePatterns("exclude", cfg.Exclude); err != nil {
		errs = append(errs, err)
	}

	if err := validateLanguages(cfg.Languages); err != nil {
		errs = append(errs, err)
	}

	for _, ext := range cfg.Resolve.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("%w: resolve extension %q must start with '.'", ErrInvalidExtension, ext))
		}
	}

	if cfg.Watch.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %s", ErrInvalidDebounce, cfg.Watch.Debounce))
	}

	if cfg.Indexer.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: cannot be negative, got %d", ErrInvalidWorkers, cfg.Indexer.Workers))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePatterns(field string, patterns []string) error {
	var errs []error
	for _, p := range patterns {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s pattern %q: %v", ErrInvalidPattern, field, p, err))
		}
	}
	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateLanguages(langs map[string][]string) error {
	if len(langs) == 0 {
		return ErrEmptyLanguages
	}

	var errs []error
	owner := make(map[string]string)
	for lang, exts := range langs {
		if !supportedLanguages[lang] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang))
			continue
		}
		if len(exts) == 0 {
			errs = append(errs, fmt.Errorf("%w: language %q has no extensions", ErrInvalidExtension, lang))
		}
		for _, ext := range exts {
			if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
				errs = append(errs, fmt.Errorf("%w: %q (language %s) must start with '.'", ErrInvalidExtension, ext, lang))
				continue
			}
			key := strings.ToLower(ext)
			if prev, ok := owner[key]; ok && prev != lang {
				errs = append(errs, fmt.Errorf("%w: %q claimed by %s and %s", ErrDuplicateExtension, ext, prev, lang))
			}
			owner[key] = lang
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear
// formatting while keeping every sentinel reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return &validationError{errs: errs}
}

type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	msgs := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error {
	return e.errs
}
