package infer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/jsdoc-builder/collect"
	"github.com/teranos/jsdoc-builder/source"
	"github.com/teranos/jsdoc-builder/syntax"
)

type fakeOracle struct {
	answers map[syntax.QueryKind]map[string]string
	queries []syntax.Query
}

func (f *fakeOracle) ResolveType(_ context.Context, q syntax.Query) (string, bool) {
	f.queries = append(f.queries, q)
	typ, ok := f.answers[q.Kind][q.Name]
	return typ, ok
}

func (f *fakeOracle) Close() error { return nil }

func inferAll(t *testing.T, text string, d source.Dialect, oracle syntax.Oracle) []Signature {
	t.Helper()
	ix, err := syntax.Parse(context.Background(), text, d)
	require.NoError(t, err)
	ix.Oracle = oracle
	t.Cleanup(func() {
		ix.Oracle = nil
		ix.Close()
	})

	targets := collect.Collect(ix)
	engine := New(ix)
	sigs := make([]Signature, len(targets))
	for i := range targets {
		sigs[i] = engine.Infer(context.Background(), &targets[i])
	}
	return sigs
}

func inferOne(t *testing.T, text string, d source.Dialect) Signature {
	t.Helper()
	sigs := inferAll(t, text, d, nil)
	require.Len(t, sigs, 1)
	return sigs[0]
}

func paramTypes(sig Signature) []string {
	out := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		out[i] = p.Type
	}
	return out
}

func TestInfer_IdentifiersFallThrough(t *testing.T) {
	sig := inferOne(t, "function add(a, b) { return a + b; }", source.DialectScript)
	assert.Equal(t, []string{"any", "any"}, paramTypes(sig))
	assert.Equal(t, "any", sig.ReturnType)
}

func TestInfer_AnnotationsAreVerbatim(t *testing.T) {
	sig := inferOne(t, "function add(a: number, b: number): number { return `${a}` }", source.DialectTyped)
	assert.Equal(t, []string{"number", "number"}, paramTypes(sig))
	assert.Equal(t, "number", sig.ReturnType)

	sig = inferOne(t, "async function load(): Promise<Array<string>> { return [] }", source.DialectTyped)
	assert.Equal(t, "Promise<Array<string>>", sig.ReturnType)
}

func TestInfer_DestructuredAnnotated(t *testing.T) {
	sig := inferOne(t, "const f = ({x,y}: T): number => x + y;", source.DialectTyped)
	require.Len(t, sig.Params, 1)
	assert.Equal(t, "param1", sig.Params[0].Name)
	assert.Equal(t, "T", sig.Params[0].Type)
	assert.Equal(t, "number", sig.ReturnType)
}

func TestInfer_Params(t *testing.T) {
	sig := inferOne(t, "function f(a = 1, b = 'x', c = a, d = [], ...rest) {}", source.DialectScript)
	assert.Equal(t, []string{"number", "string", "number", "any[]", "any[]"}, paramTypes(sig))
	assert.Equal(t, "void", sig.ReturnType)
}

func TestInfer_Returns(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"no return", "function f() { doIt() }", "void"},
		{"bare return", "function f() { if (x) return; doIt() }", "void"},
		{"void discarded", "function f(x) { if (x) return; return 1 }", "number"},
		{"distinct in order", "function f(x) { if (x) return 'a'; if (!x) return 2; return 'b' }", "string | number"},
		{"nested returns ignored", "function f() { const g = () => { return 'x' }; return 1 }", "number"},
		{"nested declaration ignored", "function f() { function g() { return 'x' } }", "void"},
		{"returns inside blocks", "function f(x) { for (;;) { try { return true } catch (e) { return null } } }", "boolean | null"},
		{"expression body", "const f = (a) => a * 2", "number"},
		{"object body", "const f = () => ({ a: 1 })", "object"},
		{"arrow returning arrow", "const f = () => () => 1", "Function"},
		{"async expression", "const f = async () => 1", "Promise<number>"},
		{"async no return", "async function f() { await g() }", "Promise<void>"},
		{"async await", "async function f() { return await g() }", "Promise<any>"},
		{"parameter reference", "function f(n = 0) { return n }", "number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sigs := inferAll(t, tt.code, source.DialectScript, nil)
			require.NotEmpty(t, sigs)
			assert.Equal(t, tt.want, sigs[0].ReturnType)
		})
	}
}

func TestInfer_Expressions(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"42", "number"},
		{"'s'", "string"},
		{"`t${1}`", "string"},
		{"true", "boolean"},
		{"null", "null"},
		{"[1, 2]", "any[]"},
		{"function () {}", "Function"},
		{"!x", "boolean"},
		{"-x", "number"},
		{"+x", "number"},
		{"typeof x", "string"},
		{"1 + 2", "number"},
		{"'a' + x", "string"},
		{"x + 1", "any"},
		{"x * y", "number"},
		{"x | 0", "number"},
		{"x === y", "boolean"},
		{"x instanceof Y", "boolean"},
		{"'k' in o", "boolean"},
		{"1 || 2", "number"},
		{"'a' ?? 1", "string | number"},
		{"x = 'v'", "string"},
		{"x += 1", "number"},
		{"x ? 1 : 'a'", "number | string"},
		{"x ? 1 : 2", "number"},
		{"((1))", "number"},
		{"foo()", "any"},
		{"new Date()", "any"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			sig := inferOne(t, "const f = (x, y, o, Y) => "+tt.expr+";", source.DialectScript)
			assert.Equal(t, tt.want, sig.ReturnType)
		})
	}
}

func TestInfer_TypeAssertions(t *testing.T) {
	assert.Equal(t, "Foo", inferOne(t, "const f = (x) => x as Foo", source.DialectTyped).ReturnType)
	assert.Equal(t, "Foo", inferOne(t, "const f = (x) => <Foo>x", source.DialectTyped).ReturnType)
	assert.Equal(t, "string", inferOne(t, "const f = () => 'a' as const", source.DialectTyped).ReturnType)
}

func TestInfer_Oracle(t *testing.T) {
	oracle := &fakeOracle{answers: map[syntax.QueryKind]map[string]string{
		syntax.QueryParam:  {"a": "string", "b": "{}"},
		syntax.QueryReturn: {"f": "Promise<Item[]>"},
	}}
	sigs := inferAll(t, "async function f(a, b = 1, c: Date) { return a }", source.DialectTyped, oracle)
	require.Len(t, sigs, 1)

	assert.Equal(t, []string{"string", "number", "Date"}, paramTypes(sigs[0]), "trivial oracle answers fall back to syntax")
	assert.Equal(t, "Promise<Item[]>", sigs[0].ReturnType)

	for _, q := range oracle.queries {
		assert.NotEqual(t, "c", q.Name, "annotated parameters are never queried")
	}
}

func TestInfer_OracleSkipsDestructured(t *testing.T) {
	oracle := &fakeOracle{answers: map[syntax.QueryKind]map[string]string{}}
	sigs := inferAll(t, "function f({ a }) { return 1 }", source.DialectTyped, oracle)
	require.Len(t, sigs, 1)
	assert.Equal(t, "any", sigs[0].Params[0].Type)
	assert.Equal(t, "number", sigs[0].ReturnType)
	require.Len(t, oracle.queries, 1, "only the return is queried")
	assert.Equal(t, syntax.QueryReturn, oracle.queries[0].Kind)
}

func TestUnion(t *testing.T) {
	assert.Equal(t, "string", Union("string", "string"))
	assert.Equal(t, "string | number", Union("string | number", "number"))
	assert.Equal(t, "(a: number) => string | null", Union("(a: number) => string", "null"))
	assert.Equal(t, "Map<string, A | B> | number", Union("Map<string, A | B>", "number"))
	assert.Equal(t, "any", Union())
}

func TestWrapAsync(t *testing.T) {
	assert.Equal(t, "Promise<number>", WrapAsync("number"))
	assert.Equal(t, "Promise<any>", WrapAsync("Promise<any>"))
}
