package infer

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/teranos/jsdoc-builder/collect"
	"github.com/teranos/jsdoc-builder/syntax"
)

// SyntacticResolver infers types from the syntax tree alone. It always
// answers, falling back to any.
type SyntacticResolver struct {
	Source []byte
}

func (r *SyntacticResolver) ParamType(_ context.Context, t *collect.Target, i int, env Env) (string, bool) {
	p := t.Params[i]
	switch {
	case p.Default != nil:
		return r.Expr(p.Default, env), true
	case p.Rest:
		return TypeArray, true
	}
	return TypeAny, true
}

func (r *SyntacticResolver) ReturnType(_ context.Context, t *collect.Target, env Env) (string, bool) {
	body := t.Func.ChildByFieldName("body")
	if body == nil {
		return TypeVoid, true
	}
	// expression-bodied arrow
	if body.Type() != syntax.KindStatementBlock {
		return r.Expr(body, env), true
	}

	var found []string
	r.returns(body, env, &found)
	if len(found) == 0 {
		return TypeVoid, true
	}

	var kept []string
	for _, typ := range found {
		if typ != TypeVoid {
			kept = append(kept, typ)
		}
	}
	if len(kept) == 0 {
		return TypeVoid, true
	}
	return Union(kept...), true
}

// returns appends the type of every return statement belonging to the
// function owning n; nested function scopes are not entered.
func (r *SyntacticResolver) returns(n *sitter.Node, env Env, found *[]string) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if syntax.IsFunctionLike(c) {
			continue
		}
		if c.Type() == syntax.KindReturnStatement {
			if expr := syntax.FirstNamedNonComment(c); expr != nil {
				*found = append(*found, r.Expr(expr, env))
			} else {
				*found = append(*found, TypeVoid)
			}
			continue
		}
		r.returns(c, env, found)
	}
}
