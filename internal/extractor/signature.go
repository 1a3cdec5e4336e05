package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/mvp-joe/project-atlas/internal/parser"
)

// functionSignature renders "[async ]function[*] name<T>(params): ret".
func functionSignature(n parser.Node) string {
	var b strings.Builder
	if n.HasChild(parser.KindAsyncKeyword) {
		b.WriteString("async ")
	}
	b.WriteString("function")
	if n.Is(parser.KindGeneratorFunctionDecl) {
		b.WriteString("*")
	}
	b.WriteString(" ")
	b.WriteString(n.Field(parser.FieldName).Text())
	writeCallSignature(&b, n)
	return squash(b.String())
}

// classSignature renders "[abstract ]class Name<T> extends B implements I".
func classSignature(n parser.Node) string {
	var b strings.Builder
	if n.Is(parser.KindAbstractClassDecl) {
		b.WriteString("abstract ")
	}
	b.WriteString("class ")
	b.WriteString(n.Field(parser.FieldName).Text())
	b.WriteString(n.Field(parser.FieldTypeParameters).Text())
	if h := n.FirstChildOfKind(parser.KindClassHeritage); !h.IsNull() {
		b.WriteString(" ")
		b.WriteString(h.Text())
	}
	return squash(b.String())
}

// methodSignature renders the member modifiers, name and call signature.
func methodSignature(m parser.Node) string {
	var b strings.Builder
	writeModifiers(&b, m)
	b.WriteString(m.Field(parser.FieldName).Text())
	writeCallSignature(&b, m)
	return squash(b.String())
}

// propertySignature renders "[static ][readonly ]name[: type]".
func propertySignature(m parser.Node) string {
	var b strings.Builder
	writeModifiers(&b, m)
	b.WriteString(m.Field(parser.FieldName).Text())
	b.WriteString(m.Field(parser.FieldType).Text())
	return squash(b.String())
}

func writeCallSignature(b *strings.Builder, n parser.Node) {
	b.WriteString(n.Field(parser.FieldTypeParameters).Text())
	b.WriteString(n.Field(parser.FieldParameters).Text())
	// return_type spans the type annotation including its leading colon.
	b.WriteString(n.Field(parser.FieldReturnType).Text())
}

var modifierKinds = []parser.Kind{
	parser.KindAccessibilityModifier,
	parser.KindOverrideModifier,
	parser.KindAbstractKeyword,
	parser.KindStaticKeyword,
	parser.KindReadonlyKeyword,
	parser.KindAsyncKeyword,
	parser.KindGetKeyword,
	parser.KindSetKeyword,
	parser.KindStar,
}

// writeModifiers copies the modifier tokens that precede a member's name.
func writeModifiers(b *strings.Builder, m parser.Node) {
	name := m.Field(parser.FieldName)
	for _, c := range m.Children() {
		if c.Equal(name) {
			return
		}
		if !c.Is(modifierKinds...) {
			continue
		}
		b.WriteString(c.Text())
		if !c.Is(parser.KindStar) {
			b.WriteString(" ")
		}
	}
}

// firstLineSignature returns the first line of a declaration with any
// trailing opening brace trimmed.
func firstLineSignature(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimRight(line, " \t\r")
	line = strings.TrimSuffix(line, "{")
	return strings.TrimSpace(line)
}

// squash collapses whitespace runs so multi-line parameter lists render on
// one line.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capSignature(s string) string {
	if utf8.RuneCountInString(s) <= MaxSignatureLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxSignatureLength])
}
