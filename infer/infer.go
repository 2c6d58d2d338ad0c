// Package infer assigns parameter and return types to collected targets.
//
// Explicit annotations always win. Otherwise a chain of resolvers is tried
// in order: the semantic oracle (when the index has one), then syntactic
// heuristics, which always answer.
package infer

import (
	"context"
	"strings"

	"github.com/teranos/jsdoc-builder/collect"
	"github.com/teranos/jsdoc-builder/syntax"
)

// Labels used for inferred types.
const (
	TypeAny      = "any"
	TypeVoid     = "void"
	TypeNumber   = "number"
	TypeString   = "string"
	TypeBoolean  = "boolean"
	TypeNull     = "null"
	TypeArray    = "any[]"
	TypeObject   = "object"
	TypeFunction = "Function"
	TypeAwaited  = "Promise<any>"
)

// Signature is the typed view of a target.
type Signature struct {
	Params     []TypedParam
	ReturnType string
}

// TypedParam is a parameter name with its declared or inferred type.
type TypedParam struct {
	Name string
	Type string
}

// Env maps parameter names to the types already assigned to them.
type Env map[string]string

// Resolver is one type-resolution strategy. A resolver that has no answer
// returns ok false and the next one is consulted.
type Resolver interface {
	ParamType(ctx context.Context, t *collect.Target, i int, env Env) (string, bool)
	ReturnType(ctx context.Context, t *collect.Target, env Env) (string, bool)
}

// Engine runs the resolver chain over one index.
type Engine struct {
	resolvers []Resolver
}

// New returns an engine for ix: oracle first when present, then syntax.
func New(ix *syntax.Index) *Engine {
	var rs []Resolver
	if ix.Oracle != nil {
		rs = append(rs, &OracleResolver{Oracle: ix.Oracle})
	}
	rs = append(rs, &SyntacticResolver{Source: ix.Source})
	return &Engine{resolvers: rs}
}

// NewWithResolvers builds an engine over an explicit chain.
func NewWithResolvers(rs ...Resolver) *Engine {
	return &Engine{resolvers: rs}
}

// Infer types every parameter in order, then the return.
func (e *Engine) Infer(ctx context.Context, t *collect.Target) Signature {
	env := make(Env, len(t.Params))
	sig := Signature{Params: make([]TypedParam, len(t.Params))}

	for i, p := range t.Params {
		typ := p.Declared
		if typ == "" {
			typ = e.param(ctx, t, i, env)
		}
		sig.Params[i] = TypedParam{Name: p.Name, Type: typ}
		if p.NameOffset >= 0 {
			env[p.Name] = typ
		}
	}

	if t.DeclaredReturn != "" {
		sig.ReturnType = t.DeclaredReturn
		return sig
	}
	ret := e.ret(ctx, t, env)
	if t.Async {
		ret = WrapAsync(ret)
	}
	sig.ReturnType = ret
	return sig
}

func (e *Engine) param(ctx context.Context, t *collect.Target, i int, env Env) string {
	for _, r := range e.resolvers {
		if typ, ok := r.ParamType(ctx, t, i, env); ok {
			return typ
		}
	}
	return TypeAny
}

func (e *Engine) ret(ctx context.Context, t *collect.Target, env Env) string {
	for _, r := range e.resolvers {
		if typ, ok := r.ReturnType(ctx, t, env); ok {
			return typ
		}
	}
	return TypeAny
}

// WrapAsync expresses typ as the eventual result of an async function.
func WrapAsync(typ string) string {
	if strings.HasPrefix(typ, "Promise<") {
		return typ
	}
	return "Promise<" + typ + ">"
}
