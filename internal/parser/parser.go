// Package parser adapts tree-sitter's TypeScript and TSX grammars to a small,
// closed node vocabulary consumed by the extractor.
//
// Parsing is error tolerant: a file with syntax errors still yields a tree,
// with ERROR nodes in place of the unparseable regions. Parse only fails
// when tree-sitter refuses to produce a tree at all.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/project-atlas/internal/errs"
)

// Dialect selects the grammar used for a file.
type Dialect int

const (
	TypeScript Dialect = iota
	TSX
)

func (d Dialect) String() string {
	if d == TSX {
		return "tsx"
	}
	return "typescript"
}

// Language handles are immutable and shared by every parser instance.
var (
	tsLanguage  = sync.OnceValue(func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) })
	tsxLanguage = sync.OnceValue(func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTSX()) })
)

// DialectFor picks the grammar for a file. JSX-bearing extensions and all
// JavaScript use the TSX grammar, which accepts both plain JS and JSX.
func DialectFor(language, path string) Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx":
		return TSX
	}
	if language == "javascript" {
		return TSX
	}
	return TypeScript
}

func (d Dialect) language() *sitter.Language {
	if d == TSX {
		return tsxLanguage()
	}
	return tsLanguage()
}

// Tree is a parsed syntax tree bound to its source. Close must be called
// once the tree is no longer needed.
type Tree struct {
	tree    *sitter.Tree
	source  []byte
	Dialect Dialect
}

// Root returns the program node.
func (t *Tree) Root() Node {
	return Node{n: t.tree.RootNode(), src: t.source}
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Parse parses content with the grammar chosen by DialectFor.
// It is safe for concurrent use: each call owns its own parser.
func Parse(content []byte, language, path string) (*Tree, error) {
	dialect := DialectFor(language, path)

	p := sitter.NewParser()
	defer p.Close()

	if err := p.SetLanguage(dialect.language()); err != nil {
		return nil, errs.Parse(path, fmt.Errorf("failed to set %s grammar: %w", dialect, err))
	}

	tree := p.Parse(content, nil)
	if tree == nil {
		return nil, errs.Parse(path, fmt.Errorf("%s parser produced no tree", dialect))
	}

	return &Tree{tree: tree, source: content, Dialect: dialect}, nil
}
