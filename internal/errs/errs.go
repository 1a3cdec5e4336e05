// Package errs defines the error taxonomy shared by the indexer, the store
// and the query layer.
//
// Every failure that callers are expected to branch on carries a Kind.
// Use KindOf or Is to inspect an error returned from any atlas package:
//
//	if errs.Is(err, errs.KindSymbolNotFound) {
//	    var e *errs.Error
//	    errors.As(err, &e)
//	    fmt.Println(e.Suggestions)
//	}
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindParse
	KindConfig
	KindStore
	KindIndexMissing
	KindFileNotIndexed
	KindFileNotFound
	KindProjectRootNotFound
	KindSymbolNotFound
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindConfig:
		return "config"
	case KindStore:
		return "store"
	case KindIndexMissing:
		return "index_missing"
	case KindFileNotIndexed:
		return "file_not_indexed"
	case KindFileNotFound:
		return "file_not_found"
	case KindProjectRootNotFound:
		return "project_root_not_found"
	case KindSymbolNotFound:
		return "symbol_not_found"
	default:
		return "unknown"
	}
}

// Error is the tagged error value. Only the fields relevant to Kind are set.
type Error struct {
	Kind        Kind
	Path        string
	Query       string
	Suggestions []string
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindParse:
		fmt.Fprintf(&b, "failed to parse %s", e.Path)
	case KindConfig:
		b.WriteString("invalid configuration")
	case KindStore:
		b.WriteString("index store error")
	case KindIndexMissing:
		fmt.Fprintf(&b, "no index found at %s (run 'atlas index' first)", e.Path)
	case KindFileNotIndexed:
		fmt.Fprintf(&b, "file not indexed: %s", e.Path)
	case KindFileNotFound:
		fmt.Fprintf(&b, "file not found: %s", e.Path)
	case KindProjectRootNotFound:
		fmt.Fprintf(&b, "no project root found above %s", e.Path)
	case KindSymbolNotFound:
		fmt.Fprintf(&b, "symbol not found: %s", e.Query)
		if len(e.Suggestions) > 0 {
			fmt.Fprintf(&b, " (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
		}
	default:
		b.WriteString("error")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, so that
// errors.Is(err, &errs.Error{Kind: errs.KindStore}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func Parse(path string, err error) error {
	return &Error{Kind: KindParse, Path: path, Err: err}
}

func Config(err error) error {
	return &Error{Kind: KindConfig, Err: err}
}

func Store(err error) error {
	if err == nil {
		return nil
	}
	// Avoid double wrapping when a store error bubbles up through helpers.
	if Is(err, KindStore) {
		return err
	}
	return &Error{Kind: KindStore, Err: err}
}

func Storef(format string, args ...any) error {
	return Store(fmt.Errorf(format, args...))
}

func IndexMissing(path string) error {
	return &Error{Kind: KindIndexMissing, Path: path}
}

func FileNotIndexed(path string) error {
	return &Error{Kind: KindFileNotIndexed, Path: path}
}

func FileNotFound(path string, err error) error {
	return &Error{Kind: KindFileNotFound, Path: path, Err: err}
}

func ProjectRootNotFound(start string) error {
	return &Error{Kind: KindProjectRootNotFound, Path: start}
}

func SymbolNotFound(query string, suggestions []string) error {
	return &Error{Kind: KindSymbolNotFound, Query: query, Suggestions: suggestions}
}
