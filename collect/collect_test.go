package collect

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/jsdoc-builder/source"
	"github.com/teranos/jsdoc-builder/syntax"
)

func collect(t *testing.T, text string, d source.Dialect) []Target {
	t.Helper()
	ix, err := syntax.Parse(context.Background(), text, d)
	require.NoError(t, err)
	t.Cleanup(ix.Close)
	return Collect(ix)
}

func names(ps []Param) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestCollect_FunctionDeclaration(t *testing.T) {
	targets := collect(t, "function add(a, b) { return a + b; }\n", source.DialectScript)
	require.Len(t, targets, 1)

	tg := targets[0]
	assert.Equal(t, "add", tg.Name)
	assert.Equal(t, 9, tg.NameOffset)
	assert.Equal(t, []string{"a", "b"}, names(tg.Params))
	assert.Equal(t, 0, tg.Anchor)
	assert.True(t, strings.HasPrefix(tg.Key, "function_declaration:0:"))
	assert.Equal(t, "function add(a, b) { return a + b; }", tg.Snippet)
	assert.Empty(t, tg.DeclaredReturn)
	assert.False(t, tg.Async)
}

func TestCollect_Anchors(t *testing.T) {
	t.Run("sole declarator anchors on the statement", func(t *testing.T) {
		text := "let x = 1;\nconst f = () => 1;\n"
		targets := collect(t, text, source.DialectScript)
		require.Len(t, targets, 1)
		assert.Equal(t, strings.Index(text, "const"), targets[0].Anchor)
		assert.True(t, strings.HasPrefix(targets[0].Key, "lexical_declaration:"))
		assert.Equal(t, "const f = () => 1;", targets[0].Snippet)
	})

	t.Run("var statement", func(t *testing.T) {
		targets := collect(t, "var g = function (x) { return x }", source.DialectScript)
		require.Len(t, targets, 1)
		assert.Equal(t, "g", targets[0].Name)
		assert.Equal(t, 0, targets[0].Anchor)
		assert.True(t, strings.HasPrefix(targets[0].Key, "variable_declaration:"))
	})

	t.Run("shared declaration anchors on the declarator", func(t *testing.T) {
		text := "const a = 1, f = () => 2;"
		targets := collect(t, text, source.DialectScript)
		require.Len(t, targets, 1)
		assert.Equal(t, strings.Index(text, "f ="), targets[0].Anchor)
		assert.True(t, strings.HasPrefix(targets[0].Key, "variable_declarator:"))
	})

	t.Run("export wraps the declaration", func(t *testing.T) {
		targets := collect(t, "export function f() {}\nexport const g = async () => {};\n", source.DialectScript)
		require.Len(t, targets, 2)
		assert.Equal(t, 0, targets[0].Anchor)
		assert.True(t, strings.HasPrefix(targets[0].Key, "export_statement:0:"))
		assert.Equal(t, "g", targets[1].Name)
		assert.True(t, strings.HasPrefix(targets[1].Key, "export_statement:"))
		assert.True(t, targets[1].Async)
	})

	t.Run("loop initializer anchors on the declarator", func(t *testing.T) {
		text := "for (let f = () => 1; false;) {}\n"
		targets := collect(t, text, source.DialectScript)
		require.Len(t, targets, 1)
		assert.Equal(t, "f", targets[0].Name)
		assert.Equal(t, strings.Index(text, "f ="), targets[0].Anchor)
		assert.True(t, strings.HasPrefix(targets[0].Key, "variable_declarator:"))
	})

	t.Run("indentation of nested anchors", func(t *testing.T) {
		text := "if (ok) {\n    function g() {}\n}\n"
		targets := collect(t, text, source.DialectScript)
		require.Len(t, targets, 1)
		assert.Equal(t, "    ", targets[0].Indent)
		assert.Equal(t, strings.Index(text, "function"), targets[0].Anchor)
	})
}

func TestCollect_SkipsDocumented(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"doc comment", "/** Adds. */\nfunction f() {}", 0},
		{"doc comment before export", "/**\n * Adds.\n */\nexport const f = () => 1;", 0},
		{"doc comment inside export", "export /** Adds. */ function f() {}", 0},
		{"doc then line comment", "/** Adds. */\n// eslint-disable-next-line\nfunction f() {}", 0},
		{"line comment only", "// Adds.\nfunction f() {}", 1},
		{"plain block comment", "/* Adds. */\nfunction f() {}", 1},
		{"empty block comment", "/**/\nfunction f() {}", 1},
		{"doc on other declarator", "const a = 1, /** b */ f = () => 2;", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, collect(t, tt.text, source.DialectScript), tt.want)
		})
	}
}

func TestCollect_NotDocumentable(t *testing.T) {
	text := "const x = 5;\nconst { a } = obj;\nclass C { m() {} }\nfoo(function () {});\n"
	assert.Empty(t, collect(t, text, source.DialectScript))
}

func TestCollect_Params(t *testing.T) {
	t.Run("defaults and rest", func(t *testing.T) {
		targets := collect(t, "function f(a = 1, { b }, [c], ...rest) {}", source.DialectScript)
		require.Len(t, targets, 1)
		ps := targets[0].Params
		assert.Equal(t, []string{"a", "param2", "param3", "rest"}, names(ps))
		assert.NotNil(t, ps[0].Default)
		assert.Equal(t, -1, ps[1].NameOffset)
		assert.True(t, ps[3].Rest)
	})

	t.Run("single bare arrow parameter", func(t *testing.T) {
		targets := collect(t, "const id = x => x;", source.DialectScript)
		require.Len(t, targets, 1)
		assert.Equal(t, []string{"x"}, names(targets[0].Params))
	})

	t.Run("typed destructured parameter", func(t *testing.T) {
		targets := collect(t, "const f = ({x, y}: T): number => x + y;", source.DialectTyped)
		require.Len(t, targets, 1)
		tg := targets[0]
		assert.Equal(t, "f", tg.Name)
		require.Len(t, tg.Params, 1)
		assert.Equal(t, "param1", tg.Params[0].Name)
		assert.Equal(t, "T", tg.Params[0].Declared)
		assert.Equal(t, "number", tg.DeclaredReturn)
	})

	t.Run("typescript optional, default, rest and this", func(t *testing.T) {
		targets := collect(t, "function f(this: Window, a?: string, b: number = 2, ...xs: string[]): void {}", source.DialectTyped)
		require.Len(t, targets, 1)
		ps := targets[0].Params
		assert.Equal(t, []string{"a", "b", "xs"}, names(ps))
		assert.Equal(t, "string", ps[0].Declared)
		assert.Equal(t, "number", ps[1].Declared)
		assert.NotNil(t, ps[1].Default)
		assert.True(t, ps[2].Rest)
		assert.Equal(t, "string[]", ps[2].Declared)
		assert.Equal(t, "void", targets[0].DeclaredReturn)
	})
}

func TestCollect_NestedInSourceOrder(t *testing.T) {
	text := "function outer() {\n  const inner = function () {};\n  return inner;\n}\nfunction last() {}\n"
	targets := collect(t, text, source.DialectScript)
	require.Len(t, targets, 3)
	assert.Equal(t, "outer", targets[0].Name)
	assert.Equal(t, "inner", targets[1].Name)
	assert.Equal(t, "last", targets[2].Name)

	keys := map[string]bool{}
	for _, tg := range targets {
		assert.False(t, keys[tg.Key], "duplicate key %s", tg.Key)
		keys[tg.Key] = true
	}
}

func TestCollect_Generators(t *testing.T) {
	targets := collect(t, "function* gen() { yield 1 }\nconst g2 = function* () {};\n", source.DialectScript)
	require.Len(t, targets, 2)
	assert.Equal(t, "gen", targets[0].Name)
	assert.Equal(t, "g2", targets[1].Name)
}

func TestCollect_AnonymousDefaultExport(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		params []string
		async  bool
	}{
		{"function", "export default function (a) { return a }\n", []string{"a"}, false},
		{"arrow", "export default async (x, y) => x + y;\n", []string{"x", "y"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets := collect(t, tt.text, source.DialectScript)
			require.Len(t, targets, 1)
			tg := targets[0]
			assert.Equal(t, AnonymousName, tg.Name)
			assert.Equal(t, -1, tg.NameOffset)
			assert.Equal(t, 0, tg.Anchor)
			assert.True(t, strings.HasPrefix(tg.Key, "export_statement:0:"))
			assert.Equal(t, tt.params, names(tg.Params))
			assert.Equal(t, tt.async, tg.Async)
		})
	}

	t.Run("named default export keeps its name", func(t *testing.T) {
		targets := collect(t, "export default function main() {}\n", source.DialectScript)
		require.Len(t, targets, 1)
		assert.Equal(t, "main", targets[0].Name)
	})

	t.Run("documented", func(t *testing.T) {
		assert.Empty(t, collect(t, "/** Entry. */\nexport default () => 1;\n", source.DialectScript))
	})

	t.Run("non-function default", func(t *testing.T) {
		assert.Empty(t, collect(t, "export default 42;\n", source.DialectScript))
	})
}

func TestCollect_LineEnding(t *testing.T) {
	targets := collect(t, "const a = 1;\r\nfunction f() {}\r\n", source.DialectScript)
	require.Len(t, targets, 1)
	assert.Equal(t, "\r\n", targets[0].Newline)

	targets = collect(t, "function f() {}\n", source.DialectScript)
	require.Len(t, targets, 1)
	assert.Equal(t, "\n", targets[0].Newline)
}
