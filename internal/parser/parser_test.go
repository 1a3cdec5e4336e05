package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		language string
		path     string
		want     Dialect
	}{
		{"typescript", "src/a.ts", TypeScript},
		{"typescript", "src/a.mts", TypeScript},
		{"typescript", "src/App.tsx", TSX},
		{"javascript", "src/a.js", TSX},
		{"javascript", "src/App.jsx", TSX},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DialectFor(tt.language, tt.path))
		})
	}
}

func TestParse_TypeScriptProgram(t *testing.T) {
	t.Parallel()

	src := []byte("export function greet(name: string): string {\n  return name;\n}\n")
	tree, err := Parse(src, "typescript", "greet.ts")
	require.NoError(t, err)
	defer tree.Close()

	root := tree.Root()
	assert.Equal(t, KindProgram, root.Kind())
	assert.False(t, root.HasError())

	exp := root.FirstChildOfKind(KindExportStatement)
	require.False(t, exp.IsNull())

	fn := exp.Field(FieldDeclaration)
	require.True(t, fn.Is(KindFunctionDeclaration))
	assert.Equal(t, "greet", fn.Field(FieldName).Text())
	assert.Equal(t, 1, fn.StartLine())
	assert.Equal(t, 3, fn.EndLine())
	assert.Equal(t, exp.Kind(), fn.Parent().Kind())
}

func TestParse_TolerantOfSyntaxErrors(t *testing.T) {
	t.Parallel()

	src := []byte("export const a = 1;\nfunction (((\nexport const b = 2;\n")
	tree, err := Parse(src, "typescript", "broken.ts")
	require.NoError(t, err)
	defer tree.Close()

	assert.True(t, tree.Root().HasError())
	assert.NotEmpty(t, tree.Root().FindAll(KindLexicalDeclaration))
}

func TestParse_JSXUsesTSXGrammar(t *testing.T) {
	t.Parallel()

	src := []byte("export const App = () => <div>hello</div>;\n")
	tree, err := Parse(src, "javascript", "App.jsx")
	require.NoError(t, err)
	defer tree.Close()

	assert.Equal(t, TSX, tree.Dialect)
	assert.False(t, tree.Root().HasError())
}

func TestNode_NullIsSafe(t *testing.T) {
	t.Parallel()

	var n Node
	assert.True(t, n.IsNull())
	assert.Equal(t, Kind(""), n.Kind())
	assert.Equal(t, "", n.Text())
	assert.Equal(t, 0, n.StartLine())
	assert.True(t, n.Field(FieldName).IsNull())
	assert.Nil(t, n.Children())
	assert.Nil(t, n.FindAll(KindIdentifier))
}

func TestFindAll_PreOrder(t *testing.T) {
	t.Parallel()

	src := []byte("import a from './a';\nimport { b } from './b';\n")
	tree, err := Parse(src, "typescript", "x.ts")
	require.NoError(t, err)
	defer tree.Close()

	sources := tree.Root().FindAll(KindString)
	require.Len(t, sources, 2)
	assert.Equal(t, "'./a'", sources[0].Text())
	assert.Equal(t, "'./b'", sources[1].Text())
}

func TestParse_ConcurrentUse(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := Parse([]byte("class A { m() {} }\n"), "typescript", "a.ts")
			if assert.NoError(t, err) {
				assert.Len(t, tree.Root().FindAll(KindMethodDefinition), 1)
				tree.Close()
			}
		}()
	}
	wg.Wait()
}
