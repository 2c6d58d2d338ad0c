package mcpserver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/jsdoc-builder/annotate"
	"github.com/teranos/jsdoc-builder/infer"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(annotate.Options{
		ConfigPath: filepath.Join(t.TempDir(), "none.json"),
		Getenv:     func(string) string { return "" },
	}, "test")
	require.NoError(t, err)
	return s
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestAnnotateSource(t *testing.T) {
	s := newServer(t)

	res, err := s.handleAnnotate(context.Background(), call("annotate_source", map[string]any{
		"id":    "src/sum.ts",
		"code":  "export const sum = (a: number, b: number) => a + b;\n",
		"no_ai": true,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "/**\n * sum function\n * @param {number} a\n * @param {number} b\n * @returns {number}\n */\n"+
		"export const sum = (a: number, b: number) => a + b;\n", text(t, res))
}

func TestAnnotateSourceMissingArgs(t *testing.T) {
	s := newServer(t)
	res, err := s.handleAnnotate(context.Background(), call("annotate_source", map[string]any{"id": "a.js"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListTargets(t *testing.T) {
	s := newServer(t)

	res, err := s.handleListTargets(context.Background(), call("list_targets", map[string]any{
		"id":   "a.js",
		"code": "function a(x = 'q', ...rest) { return 'y'; }\nasync function b() {}\n",
	}))
	require.NoError(t, err)
	assert.Equal(t, "a(x: string, rest: any[]) -> string\nb() -> Promise<void>\n", text(t, res))

	res, err = s.handleListTargets(context.Background(), call("list_targets", map[string]any{
		"id":   "a.js",
		"code": "const x = 1;",
	}))
	require.NoError(t, err)
	assert.Equal(t, "No undocumented functions found", text(t, res))
}

func TestFormatTarget(t *testing.T) {
	assert.Equal(t, "f() -> void", FormatTarget(annotate.TargetInfo{Name: "f", ReturnType: "void"}))
	assert.Equal(t, "g(a: T) -> any", FormatTarget(annotate.TargetInfo{
		Name:       "g",
		Params:     []infer.TypedParam{{Name: "a", Type: "T"}},
		ReturnType: "any",
	}))
}
