package extractor

import (
	"strings"

	"github.com/mvp-joe/project-atlas/internal/parser"
)

// imports emits one row per binding of an import statement.
func (x *extraction) imports(stmt parser.Node) {
	line := stmt.StartLine()

	if req := stmt.FirstChildOfKind(parser.KindImportRequireClause); !req.IsNull() {
		// import fs = require("fs")
		source := unquote(req.Field(parser.FieldSource))
		x.addImport(source, NamespaceName, req.FirstChildOfKind(parser.KindIdentifier).Text(), line)
		return
	}

	source := unquote(stmt.Field(parser.FieldSource))
	if source == "" {
		return
	}

	clause := stmt.FirstChildOfKind(parser.KindImportClause)
	before := len(x.res.Imports)
	for _, c := range clause.NamedChildren() {
		switch c.Kind() {
		case parser.KindIdentifier:
			x.addImport(source, DefaultName, c.Text(), line)
		case parser.KindNamespaceImport:
			x.addImport(source, NamespaceName, c.FirstChildOfKind(parser.KindIdentifier).Text(), line)
		case parser.KindNamedImports:
			for _, spec := range c.ChildrenOfKind(parser.KindImportSpecifier) {
				name := moduleName(spec.Field(parser.FieldName))
				alias := spec.Field(parser.FieldAlias).Text()
				if alias == name {
					alias = ""
				}
				x.addImport(source, name, alias, line)
			}
		}
	}

	// Side-effect imports and empty clauses still record the dependency.
	if len(x.res.Imports) == before {
		x.addImport(source, NamespaceName, "", line)
	}
}

func (x *extraction) addImport(source, name, alias string, line int) {
	external := IsExternal(source)
	imp := Import{
		Source:       source,
		ImportedName: name,
		Alias:        alias,
		IsExternal:   external,
		Line:         line,
	}
	if external {
		imp.PackageName = PackageName(source)
	}
	x.res.Imports = append(x.res.Imports, imp)
}

// exports emits the rows for one export statement. declared holds the
// ordinals of the symbols its wrapped declaration produced.
func (x *extraction) exports(stmt parser.Node, declared []int) {
	line := stmt.StartLine()
	sourceNode := stmt.Field(parser.FieldSource)
	source := unquote(sourceNode)
	reexport := !sourceNode.IsNull()

	base := Export{Symbol: NoOrdinal, IsReexport: reexport, Source: source, Line: line}
	decl := stmt.Field(parser.FieldDeclaration)

	switch {
	case stmt.HasChild(parser.KindDefaultKeyword):
		e := base
		e.ExportedName = DefaultName
		if !decl.IsNull() {
			e.LocalName = declarationName(decl)
			if len(declared) > 0 {
				e.Symbol = declared[0]
			}
		} else if v := stmt.Field(parser.FieldValue); v.Is(parser.KindIdentifier) {
			e.LocalName = v.Text()
			e.Symbol = x.lookup(e.LocalName)
		}
		x.res.Exports = append(x.res.Exports, e)

	case !decl.IsNull():
		x.declarationExports(decl, declared, base)

	case stmt.HasChild(parser.KindExportClause):
		for _, spec := range stmt.FirstChildOfKind(parser.KindExportClause).ChildrenOfKind(parser.KindExportSpecifier) {
			name := moduleName(spec.Field(parser.FieldName))
			alias := moduleName(spec.Field(parser.FieldAlias))
			e := base
			e.ExportedName = name
			if alias != "" && alias != name {
				e.ExportedName = alias
				e.LocalName = name
			}
			if !reexport {
				e.Symbol = x.lookup(name)
			}
			x.res.Exports = append(x.res.Exports, e)
		}

	case stmt.HasChild(parser.KindNamespaceExport):
		// export * as ns from './mod'. For this row shape local_name
		// carries the namespace binding, not an alias of exported_name.
		ns := stmt.FirstChildOfKind(parser.KindNamespaceExport)
		e := base
		e.ExportedName = NamespaceName
		if names := ns.NamedChildren(); len(names) > 0 {
			e.LocalName = moduleName(names[len(names)-1])
		}
		x.res.Exports = append(x.res.Exports, e)

	case reexport && stmt.HasChild(parser.KindStar):
		e := base
		e.ExportedName = NamespaceName
		x.res.Exports = append(x.res.Exports, e)

	case stmt.HasChild(parser.KindEquals):
		// export = target
		e := base
		e.ExportedName = DefaultName
		if named := stmt.NamedChildren(); len(named) > 0 {
			if v := named[len(named)-1]; v.Is(parser.KindIdentifier) {
				e.LocalName = v.Text()
				e.Symbol = x.lookup(e.LocalName)
			}
		}
		x.res.Exports = append(x.res.Exports, e)
	}
}

// declarationExports handles `export <declaration>`: one row per symbol the
// declaration produced, plus unlinked rows for destructured bindings.
func (x *extraction) declarationExports(decl parser.Node, declared []int, base Export) {
	if decl.Is(parser.KindAmbientDeclaration) {
		for _, inner := range decl.NamedChildren() {
			if isDeclarationKind(inner) {
				decl = inner
				break
			}
		}
	}

	if decl.Is(parser.KindLexicalDeclaration, parser.KindVariableDeclaration) {
		next := 0
		for _, d := range decl.ChildrenOfKind(parser.KindVariableDeclarator) {
			nameNode := d.Field(parser.FieldName)
			if nameNode.Is(parser.KindIdentifier) {
				if next < len(declared) {
					e := base
					e.ExportedName = x.res.Symbols[declared[next]].Name
					e.Symbol = declared[next]
					x.res.Exports = append(x.res.Exports, e)
					next++
				}
				continue
			}
			for _, name := range bindingNames(nameNode) {
				e := base
				e.ExportedName = name
				x.res.Exports = append(x.res.Exports, e)
			}
		}
		return
	}

	if len(declared) == 0 {
		// export namespace Foo {} and other declarations without a symbol kind.
		if name := declarationName(decl); name != "" {
			e := base
			e.ExportedName = name
			x.res.Exports = append(x.res.Exports, e)
		}
		return
	}

	for _, ord := range declared {
		e := base
		e.ExportedName = x.res.Symbols[ord].Name
		e.Symbol = ord
		x.res.Exports = append(x.res.Exports, e)
	}
}

func isDeclarationKind(n parser.Node) bool {
	return n.Is(
		parser.KindFunctionDeclaration, parser.KindGeneratorFunctionDecl, parser.KindFunctionSignature,
		parser.KindClassDeclaration, parser.KindAbstractClassDecl,
		parser.KindLexicalDeclaration, parser.KindVariableDeclaration,
		parser.KindInterfaceDeclaration, parser.KindTypeAliasDeclaration, parser.KindEnumDeclaration,
		parser.KindInternalModule, parser.KindModule,
	)
}

func declarationName(decl parser.Node) string {
	if decl.Is(parser.KindAmbientDeclaration) {
		for _, inner := range decl.NamedChildren() {
			if isDeclarationKind(inner) {
				return declarationName(inner)
			}
		}
		return ""
	}
	return moduleName(decl.Field(parser.FieldName))
}

// moduleName returns an identifier's text, or the contents of a string
// literal used as a module export name.
func moduleName(n parser.Node) string {
	if n.Is(parser.KindString) {
		return unquote(n)
	}
	return n.Text()
}

// unquote strips the quotes from a string literal node.
func unquote(n parser.Node) string {
	if n.IsNull() {
		return ""
	}
	if frag := n.FirstChildOfKind(parser.KindStringFragment); !frag.IsNull() {
		return frag.Text()
	}
	text := n.Text()
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

// IsExternal reports whether a module specifier names a package rather than
// a project file.
func IsExternal(specifier string) bool {
	return !strings.HasPrefix(specifier, ".") && !strings.HasPrefix(specifier, "/")
}

// PackageName returns the package a bare specifier belongs to: the first two
// segments for scoped packages, otherwise the first segment.
func PackageName(specifier string) string {
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}
