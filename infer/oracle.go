package infer

import (
	"context"

	"github.com/teranos/jsdoc-builder/collect"
	"github.com/teranos/jsdoc-builder/syntax"
)

// OracleResolver asks a semantic oracle and accepts only non-trivial answers.
type OracleResolver struct {
	Oracle syntax.Oracle
}

func (r *OracleResolver) ParamType(ctx context.Context, t *collect.Target, i int, _ Env) (string, bool) {
	p := t.Params[i]
	if p.NameOffset < 0 {
		return "", false
	}
	return r.resolve(ctx, syntax.Query{Kind: syntax.QueryParam, Offset: p.NameOffset, Name: p.Name})
}

func (r *OracleResolver) ReturnType(ctx context.Context, t *collect.Target, _ Env) (string, bool) {
	if t.NameOffset < 0 {
		return "", false
	}
	return r.resolve(ctx, syntax.Query{Kind: syntax.QueryReturn, Offset: t.NameOffset, Name: t.Name})
}

func (r *OracleResolver) resolve(ctx context.Context, q syntax.Query) (string, bool) {
	printed, ok := r.Oracle.ResolveType(ctx, q)
	if !ok || syntax.Trivial(printed) {
		return "", false
	}
	return printed, true
}
