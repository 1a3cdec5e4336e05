package extractor

import (
	"github.com/mvp-joe/project-atlas/internal/parser"
)

// statementSymbols emits the symbols declared by one top-level statement and
// returns their ordinals (top-level symbols only, members excluded).
func (x *extraction) statementSymbols(stmt parser.Node) []int {
	if stmt.Is(parser.KindExportStatement) {
		decl := stmt.Field(parser.FieldDeclaration)
		if decl.IsNull() {
			return nil
		}
		return x.declaration(decl, true, stmt.HasChild(parser.KindDefaultKeyword))
	}
	return x.declaration(stmt, false, false)
}

func (x *extraction) declaration(n parser.Node, exported, isDefault bool) []int {
	switch n.Kind() {
	case parser.KindAmbientDeclaration:
		// declare function f(): void; declare class C {}
		for _, inner := range n.NamedChildren() {
			if ords := x.declaration(inner, exported, isDefault); len(ords) > 0 {
				return ords
			}
		}
		return nil

	case parser.KindFunctionDeclaration, parser.KindGeneratorFunctionDecl, parser.KindFunctionSignature:
		name := n.Field(parser.FieldName).Text()
		if name == "" {
			return nil
		}
		return []int{x.add(Symbol{
			Name:      name,
			Kind:      KindFunction,
			StartLine: n.StartLine(),
			EndLine:   n.EndLine(),
			Signature: functionSignature(n),
			Exported:  exported,
			IsDefault: isDefault,
			Parent:    NoOrdinal,
		})}

	case parser.KindClassDeclaration, parser.KindAbstractClassDecl:
		return x.class(n, exported, isDefault)

	case parser.KindLexicalDeclaration, parser.KindVariableDeclaration:
		return x.variables(n, exported)

	case parser.KindInterfaceDeclaration:
		// Interfaces never carry the default flag.
		return x.named(n, KindInterface, exported, false)

	case parser.KindTypeAliasDeclaration:
		return x.named(n, KindType, exported, isDefault)

	case parser.KindEnumDeclaration:
		return x.named(n, KindEnum, exported, isDefault)
	}
	return nil
}

func (x *extraction) named(n parser.Node, kind SymbolKind, exported, isDefault bool) []int {
	name := n.Field(parser.FieldName).Text()
	if name == "" {
		return nil
	}
	return []int{x.add(Symbol{
		Name:      name,
		Kind:      kind,
		StartLine: n.StartLine(),
		EndLine:   n.EndLine(),
		Signature: firstLineSignature(n.Text()),
		Exported:  exported,
		IsDefault: isDefault,
		Parent:    NoOrdinal,
	})}
}

// variables emits one symbol per identifier-bound declarator. Declarators
// bound to function-valued expressions become functions. Destructuring
// declarators produce no symbols.
func (x *extraction) variables(n parser.Node, exported bool) []int {
	sig := firstLineSignature(n.Text())
	var ords []int
	for _, d := range n.ChildrenOfKind(parser.KindVariableDeclarator) {
		nameNode := d.Field(parser.FieldName)
		if !nameNode.Is(parser.KindIdentifier) {
			continue
		}
		kind := KindVariable
		if isFunctionValue(d.Field(parser.FieldValue)) {
			kind = KindFunction
		}
		ords = append(ords, x.add(Symbol{
			Name:      nameNode.Text(),
			Kind:      kind,
			StartLine: d.StartLine(),
			EndLine:   d.EndLine(),
			Signature: sig,
			Exported:  exported,
			Parent:    NoOrdinal,
		}))
	}
	return ords
}

func isFunctionValue(v parser.Node) bool {
	return v.Is(parser.KindArrowFunction, parser.KindFunctionExpression, parser.KindGeneratorFunction)
}

// class emits the class symbol followed by its methods and public fields.
func (x *extraction) class(n parser.Node, exported, isDefault bool) []int {
	name := n.Field(parser.FieldName).Text()
	if name == "" {
		return nil
	}
	classOrd := x.add(Symbol{
		Name:      name,
		Kind:      KindClass,
		StartLine: n.StartLine(),
		EndLine:   n.EndLine(),
		Signature: classSignature(n),
		Exported:  exported,
		IsDefault: isDefault,
		Parent:    NoOrdinal,
	})

	for _, m := range n.Field(parser.FieldBody).NamedChildren() {
		switch m.Kind() {
		case parser.KindMethodDefinition, parser.KindAbstractMethodSig:
			mname := m.Field(parser.FieldName).Text()
			if mname == "" {
				continue
			}
			x.add(Symbol{
				Name:      mname,
				Kind:      KindMethod,
				StartLine: m.StartLine(),
				EndLine:   m.EndLine(),
				Signature: methodSignature(m),
				Parent:    classOrd,
			})
		case parser.KindPublicFieldDefinition:
			if !isPublicField(m) {
				continue
			}
			x.add(Symbol{
				Name:      m.Field(parser.FieldName).Text(),
				Kind:      KindProperty,
				StartLine: m.StartLine(),
				EndLine:   m.EndLine(),
				Signature: propertySignature(m),
				Parent:    classOrd,
			})
		}
	}

	return []int{classOrd}
}

func isPublicField(m parser.Node) bool {
	name := m.Field(parser.FieldName)
	if name.IsNull() || name.Is(parser.KindPrivatePropIdent) {
		return false
	}
	switch m.FirstChildOfKind(parser.KindAccessibilityModifier).Text() {
	case "private", "protected":
		return false
	}
	return true
}

// bindingNames returns the identifiers bound by a destructuring pattern,
// skipping property keys and default-value expressions.
func bindingNames(n parser.Node) []string {
	switch n.Kind() {
	case parser.KindIdentifier, parser.KindShorthandPropertyPatt:
		return []string{n.Text()}
	case parser.KindPairPattern:
		return bindingNames(n.Field(parser.FieldValue))
	case parser.KindAssignmentPattern, parser.KindObjectAssignmentPattern:
		return bindingNames(n.Field(parser.FieldLeft))
	case parser.KindObjectPattern, parser.KindArrayPattern, parser.KindRestPattern:
		var names []string
		for _, c := range n.NamedChildren() {
			names = append(names, bindingNames(c)...)
		}
		return names
	}
	return nil
}
