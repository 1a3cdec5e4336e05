// Package extractor turns a parsed TypeScript/JavaScript module into rows for
// the symbols, imports and exports tables.
//
// Extract is pure: it performs no I/O and may be called concurrently. Cross
// references inside a Result use local ordinals (indices into
// Result.Symbols) which the indexer maps to persisted ids.
package extractor

// SymbolKind is the closed set of symbol kinds stored in the index.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindClass     SymbolKind = "class"
	KindVariable  SymbolKind = "variable"
	KindType      SymbolKind = "type"
	KindInterface SymbolKind = "interface"
	KindEnum      SymbolKind = "enum"
	KindMethod    SymbolKind = "method"
	KindProperty  SymbolKind = "property"
)

// AllKinds lists every SymbolKind in a stable order.
var AllKinds = []SymbolKind{
	KindFunction, KindClass, KindVariable, KindType,
	KindInterface, KindEnum, KindMethod, KindProperty,
}

// Valid reports whether k is one of the known kinds.
func (k SymbolKind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsMember reports whether k is a class member kind.
func (k SymbolKind) IsMember() bool {
	return k == KindMethod || k == KindProperty
}

const (
	// NoOrdinal marks an absent parent or symbol reference.
	NoOrdinal = -1

	// MaxSignatureLength caps Symbol.Signature, in characters.
	MaxSignatureLength = 200

	// DefaultName is the exported/imported name used for default bindings.
	DefaultName = "default"

	// NamespaceName is the exported/imported name used for namespace and
	// side-effect bindings.
	NamespaceName = "*"
)

// Symbol is a named declaration. Lines are 1-indexed and inclusive.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	StartLine int
	EndLine   int
	Signature string // "" when none
	Exported  bool
	IsDefault bool
	Parent    int // ordinal of the enclosing class, or NoOrdinal
}

// Import is one imported binding. Source holds the raw module specifier;
// the indexer resolves internal specifiers to project paths.
type Import struct {
	Source       string
	ImportedName string // "default", "*", or the binding name
	Alias        string // "" unless renamed or namespace/default binding
	IsExternal   bool
	PackageName  string // "" for internal imports
	Line         int
}

// Export is one exported name.
type Export struct {
	ExportedName string // "default", "*", or the binding name
	LocalName    string // "" unless it differs from ExportedName
	Symbol       int    // ordinal of the exported symbol, or NoOrdinal
	IsReexport   bool
	Source       string // raw specifier; set exactly when IsReexport
	Line         int
}

// Result is the extraction output for one file.
type Result struct {
	Symbols          []Symbol
	Imports          []Import
	Exports          []Export
	HasDefaultExport bool
}
