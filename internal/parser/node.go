package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Kind is a tree-sitter node type name from the closed set below.
type Kind string

// Node kinds the extractor inspects. Keyword tokens are listed too because
// tree-sitter reports anonymous tokens by their literal text.
const (
	KindProgram          Kind = "program"
	KindComment          Kind = "comment"
	KindError            Kind = "ERROR"
	KindIdentifier       Kind = "identifier"
	KindTypeIdentifier   Kind = "type_identifier"
	KindPropertyIdent    Kind = "property_identifier"
	KindPrivatePropIdent Kind = "private_property_identifier"
	KindString           Kind = "string"
	KindStringFragment   Kind = "string_fragment"

	KindImportStatement     Kind = "import_statement"
	KindImportClause        Kind = "import_clause"
	KindNamedImports        Kind = "named_imports"
	KindImportSpecifier     Kind = "import_specifier"
	KindNamespaceImport     Kind = "namespace_import"
	KindImportRequireClause Kind = "import_require_clause"

	KindExportStatement Kind = "export_statement"
	KindExportClause    Kind = "export_clause"
	KindExportSpecifier Kind = "export_specifier"
	KindNamespaceExport Kind = "namespace_export"

	KindFunctionDeclaration   Kind = "function_declaration"
	KindGeneratorFunctionDecl Kind = "generator_function_declaration"
	KindFunctionSignature     Kind = "function_signature"
	KindArrowFunction         Kind = "arrow_function"
	KindFunctionExpression    Kind = "function_expression"
	KindGeneratorFunction     Kind = "generator_function"
	KindClassDeclaration      Kind = "class_declaration"
	KindAbstractClassDecl     Kind = "abstract_class_declaration"
	KindClassHeritage         Kind = "class_heritage"
	KindClassBody             Kind = "class_body"
	KindMethodDefinition      Kind = "method_definition"
	KindAbstractMethodSig     Kind = "abstract_method_signature"
	KindPublicFieldDefinition Kind = "public_field_definition"
	KindAccessibilityModifier Kind = "accessibility_modifier"
	KindOverrideModifier      Kind = "override_modifier"
	KindDecorator             Kind = "decorator"
	KindLexicalDeclaration    Kind = "lexical_declaration"
	KindVariableDeclaration   Kind = "variable_declaration"
	KindVariableDeclarator    Kind = "variable_declarator"
	KindInterfaceDeclaration  Kind = "interface_declaration"
	KindTypeAliasDeclaration  Kind = "type_alias_declaration"
	KindEnumDeclaration       Kind = "enum_declaration"
	KindAmbientDeclaration    Kind = "ambient_declaration"
	KindTypeParameters        Kind = "type_parameters"
	KindFormalParameters      Kind = "formal_parameters"
	KindTypeAnnotation        Kind = "type_annotation"
	KindStatementBlock        Kind = "statement_block"
	KindInternalModule        Kind = "internal_module"
	KindModule                Kind = "module"

	KindObjectPattern           Kind = "object_pattern"
	KindArrayPattern            Kind = "array_pattern"
	KindPairPattern             Kind = "pair_pattern"
	KindRestPattern             Kind = "rest_pattern"
	KindAssignmentPattern       Kind = "assignment_pattern"
	KindObjectAssignmentPattern Kind = "object_assignment_pattern"
	KindShorthandPropertyPatt   Kind = "shorthand_property_identifier_pattern"

	KindExportKeyword   Kind = "export"
	KindDefaultKeyword  Kind = "default"
	KindStar            Kind = "*"
	KindEquals          Kind = "="
	KindAsyncKeyword    Kind = "async"
	KindStaticKeyword   Kind = "static"
	KindReadonlyKeyword Kind = "readonly"
	KindAbstractKeyword Kind = "abstract"
	KindGetKeyword      Kind = "get"
	KindSetKeyword      Kind = "set"
	KindTypeKeyword     Kind = "type"
)

// Field is a tree-sitter field name from the closed set below.
type Field string

const (
	FieldName           Field = "name"
	FieldAlias          Field = "alias"
	FieldValue          Field = "value"
	FieldSource         Field = "source"
	FieldDeclaration    Field = "declaration"
	FieldBody           Field = "body"
	FieldParameters     Field = "parameters"
	FieldReturnType     Field = "return_type"
	FieldTypeParameters Field = "type_parameters"
	FieldType           Field = "type"
	FieldLeft           Field = "left"
)

// Node is a read-only view of a syntax node and the source it spans.
// The zero Node is null; every accessor on a null node returns a zero value.
type Node struct {
	n   *sitter.Node
	src []byte
}

func (n Node) wrap(c *sitter.Node) Node {
	return Node{n: c, src: n.src}
}

// IsNull reports whether the node is absent.
func (n Node) IsNull() bool {
	return n.n == nil
}

func (n Node) Kind() Kind {
	if n.n == nil {
		return ""
	}
	return Kind(n.n.Kind())
}

// Is reports whether the node's kind is one of kinds.
func (n Node) Is(kinds ...Kind) bool {
	k := n.Kind()
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// Text returns the source text spanned by the node.
func (n Node) Text() string {
	if n.n == nil {
		return ""
	}
	start, end := n.n.StartByte(), n.n.EndByte()
	if end > uint(len(n.src)) || start > end {
		return ""
	}
	return string(n.src[start:end])
}

// StartLine is the 1-indexed line the node starts on.
func (n Node) StartLine() int {
	if n.n == nil {
		return 0
	}
	return int(n.n.StartPosition().Row) + 1
}

// EndLine is the 1-indexed line the node ends on (inclusive).
func (n Node) EndLine() int {
	if n.n == nil {
		return 0
	}
	return int(n.n.EndPosition().Row) + 1
}

// Equal reports whether n and o are the same syntax node.
func (n Node) Equal(o Node) bool {
	if n.n == nil || o.n == nil {
		return n.n == o.n
	}
	return n.n.Equals(*o.n)
}

func (n Node) HasError() bool {
	return n.n != nil && n.n.HasError()
}

func (n Node) Parent() Node {
	if n.n == nil {
		return Node{}
	}
	return n.wrap(n.n.Parent())
}

// Field returns the child stored under a grammar field, or a null node.
func (n Node) Field(f Field) Node {
	if n.n == nil {
		return Node{}
	}
	return n.wrap(n.n.ChildByFieldName(string(f)))
}

// Children returns all children, named and anonymous, in source order.
func (n Node) Children() []Node {
	if n.n == nil {
		return nil
	}
	count := n.n.ChildCount()
	out := make([]Node, 0, count)
	for i := uint(0); i < count; i++ {
		if c := n.n.Child(i); c != nil {
			out = append(out, n.wrap(c))
		}
	}
	return out
}

// NamedChildren returns the named children in source order.
func (n Node) NamedChildren() []Node {
	if n.n == nil {
		return nil
	}
	count := n.n.NamedChildCount()
	out := make([]Node, 0, count)
	for i := uint(0); i < count; i++ {
		if c := n.n.NamedChild(i); c != nil {
			out = append(out, n.wrap(c))
		}
	}
	return out
}

// HasChild reports whether any direct child has one of kinds.
func (n Node) HasChild(kinds ...Kind) bool {
	return !n.FirstChildOfKind(kinds...).IsNull()
}

// FirstChildOfKind returns the first direct child with one of kinds.
func (n Node) FirstChildOfKind(kinds ...Kind) Node {
	if n.n == nil {
		return Node{}
	}
	count := n.n.ChildCount()
	for i := uint(0); i < count; i++ {
		c := n.wrap(n.n.Child(i))
		if c.Is(kinds...) {
			return c
		}
	}
	return Node{}
}

// ChildrenOfKind returns every direct child with one of kinds.
func (n Node) ChildrenOfKind(kinds ...Kind) []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.Is(kinds...) {
			out = append(out, c)
		}
	}
	return out
}

// FindAll returns n and its descendants with one of kinds, in pre-order.
func (n Node) FindAll(kinds ...Kind) []Node {
	var out []Node
	n.Walk(func(c Node) bool {
		if c.Is(kinds...) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Walk visits n and its descendants in pre-order. Returning false from
// visit skips the node's subtree.
func (n Node) Walk(visit func(Node) bool) {
	if n.n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(visit)
	}
}
