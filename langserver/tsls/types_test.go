package tsls

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/jsdoc-builder/config"
	"github.com/teranos/jsdoc-builder/source"
)

func TestHover_GetText(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     string
	}{
		{"markup content", `{"kind":"markdown","value":"` + "```typescript\\n(parameter) a: number\\n```" + `"}`, "```typescript\n(parameter) a: number\n```"},
		{"plain string", `"function f(): void"`, "function f(): void"},
		{"marked string array", `[{"language":"typescript","value":"const x: number"},"docs"]`, "const x: number\ndocs"},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Hover{Contents: json.RawMessage(tt.contents)}
			assert.Equal(t, tt.want, h.GetText())
		})
	}

	var nilHover *Hover
	assert.Empty(t, nilHover.GetText())
}

func TestParamType(t *testing.T) {
	fenced := "```typescript\n(parameter) opts: Options\n```\nThe options."
	assert.Equal(t, "Options", ParamType(fenced, "opts"))
	assert.Equal(t, "string | undefined", ParamType("(parameter) name?: string | undefined", "name"))
	assert.Equal(t, "number[]", ParamType("(parameter) ...rest: number[]", "rest"))
	assert.Equal(t, "{ a: number; }", ParamType("(parameter) p: {\n    a: number;\n}", "p"))
	assert.Empty(t, ParamType("(parameter) other: string", "opts"))
	assert.Empty(t, ParamType("", "opts"))
}

func TestReturnType(t *testing.T) {
	tests := []struct {
		hover string
		want  string
	}{
		{"function add(a: number, b: number): number", "number"},
		{"```ts\nasync function load(url: string): Promise<Response>\n```", "Promise<Response>"},
		{"const f: (a: number) => string", "string"},
		{"function map<T, U>(xs: T[], fn: (x: T) => U): U[]", "U[]"},
		{"const g: (cb: (e: Event) => void) => () => void", "() => void"},
		{"let x: number", ""},
	}
	for _, tt := range tests {
		t.Run(tt.hover, func(t *testing.T) {
			assert.Equal(t, tt.want, ReturnType(tt.hover))
		})
	}
}

func TestLineIndex(t *testing.T) {
	li := newLineIndex([]byte("ab\nc€d\n"))

	pos := li.position(0)
	assert.EqualValues(t, 0, pos.Line)
	assert.EqualValues(t, 0, pos.Character)

	// 'd' follows a three-byte rune that is one UTF-16 unit
	pos = li.position(7)
	assert.EqualValues(t, 1, pos.Line)
	assert.EqualValues(t, 2, pos.Character)

	pos = li.position(100)
	assert.EqualValues(t, 2, pos.Line)
}

func TestReadFrame(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("Content-Length: 2\r\nContent-Type: x\r\n\r\n{}Content-Length: 0\r\n\r\n"))

	body, err := readFrame(r)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))

	body, err = readFrame(r)
	require.NoError(t, err)
	assert.Nil(t, body)

	_, err = readFrame(r)
	assert.Error(t, err)
}

func TestFactory_Degrades(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		f := Factory(config.OracleConfig{Enabled: false, Command: "typescript-language-server --stdio"})
		assert.Nil(t, f(ctx, "function f(a: number) {}", source.DialectTyped))
	})

	t.Run("untyped dialect", func(t *testing.T) {
		f := Factory(config.OracleConfig{Enabled: true, Command: "typescript-language-server --stdio"})
		assert.Nil(t, f(ctx, "function f(a) {}", source.DialectScript))
	})

	t.Run("missing binary", func(t *testing.T) {
		f := Factory(config.OracleConfig{Enabled: true, Command: "jsdoc-builder-no-such-server --stdio", TimeoutMs: 500})
		assert.Nil(t, f(ctx, "function f(a: number) {}", source.DialectTyped))
	})

	t.Run("unbalanced quoting", func(t *testing.T) {
		f := Factory(config.OracleConfig{Enabled: true, Command: `"unterminated`})
		assert.Nil(t, f(ctx, "function f(a: number) {}", source.DialectTyped))
	})
}
