package extractor

import (
	"github.com/mvp-joe/project-atlas/internal/parser"
)

// Extract parses content and returns its symbols, imports and exports.
// Syntax errors do not fail extraction; whatever the parser recovered is
// extracted. Only top-level statements and the members of top-level
// classes produce symbols.
func Extract(content []byte, path, language string) (*Result, error) {
	tree, err := parser.Parse(content, language, path)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	x := &extraction{res: &Result{}}
	statements := tree.Root().NamedChildren()

	// Symbols first so export clauses may refer to declarations that
	// appear later in the file.
	declared := make([][]int, len(statements))
	for i, stmt := range statements {
		declared[i] = x.statementSymbols(stmt)
	}

	for i, stmt := range statements {
		switch stmt.Kind() {
		case parser.KindImportStatement:
			x.imports(stmt)
		case parser.KindExportStatement:
			x.exports(stmt, declared[i])
		}
	}

	for _, e := range x.res.Exports {
		if e.ExportedName == DefaultName {
			x.res.HasDefaultExport = true
			break
		}
	}

	return x.res, nil
}

type extraction struct {
	res *Result
}

func (x *extraction) add(s Symbol) int {
	s.Signature = capSignature(s.Signature)
	x.res.Symbols = append(x.res.Symbols, s)
	return len(x.res.Symbols) - 1
}

// lookup finds a symbol ordinal by name, preferring top-level symbols.
// It is not scope aware.
func (x *extraction) lookup(name string) int {
	if name == "" {
		return NoOrdinal
	}
	member := NoOrdinal
	for i, s := range x.res.Symbols {
		if s.Name != name {
			continue
		}
		if s.Parent == NoOrdinal {
			return i
		}
		if member == NoOrdinal {
			member = i
		}
	}
	return member
}
