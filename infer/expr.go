package infer

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/teranos/jsdoc-builder/syntax"
)

// Expr infers the type of an expression node.
func (r *SyntacticResolver) Expr(n *sitter.Node, env Env) string {
	n = syntax.Unparen(n)
	if n == nil {
		return TypeAny
	}

	switch n.Type() {
	case "number":
		return TypeNumber
	case "string", "template_string":
		return TypeString
	case "true", "false":
		return TypeBoolean
	case "null":
		return TypeNull
	case "array":
		return TypeArray
	case "object":
		return TypeObject
	case syntax.KindArrowFunction, syntax.KindFunctionExpression, syntax.KindFunction, syntax.KindGeneratorFunction:
		return TypeFunction
	case syntax.KindIdentifier:
		if typ, ok := env[r.text(n)]; ok {
			return typ
		}
		return TypeAny
	case "as_expression":
		return r.asExpression(n, env)
	case "satisfies_expression":
		return r.Expr(n.NamedChild(0), env)
	case "type_assertion":
		// <T>expr
		if args := n.NamedChild(0); args != nil && args.NamedChildCount() > 0 {
			return r.text(args.NamedChild(0))
		}
		return TypeAny
	case "unary_expression":
		return r.unary(n)
	case "update_expression":
		return TypeNumber
	case "binary_expression":
		return r.binary(n, env)
	case "assignment_expression", "augmented_assignment_expression":
		return r.Expr(n.ChildByFieldName("right"), env)
	case "await_expression":
		return TypeAwaited
	case "ternary_expression":
		return Union(
			r.Expr(n.ChildByFieldName("consequence"), env),
			r.Expr(n.ChildByFieldName("alternative"), env),
		)
	}
	return TypeAny
}

func (r *SyntacticResolver) asExpression(n *sitter.Node, env Env) string {
	// expr as T; "as const" keeps the expression's own type
	last := n.Child(int(n.ChildCount()) - 1)
	if last == nil || !last.IsNamed() || last.StartByte() == n.NamedChild(0).StartByte() {
		return r.Expr(n.NamedChild(0), env)
	}
	return strings.TrimSpace(r.text(last))
}

func (r *SyntacticResolver) unary(n *sitter.Node) string {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return TypeAny
	}
	switch op.Type() {
	case "!", "delete":
		return TypeBoolean
	case "+", "-", "~":
		return TypeNumber
	case "typeof":
		return TypeString
	}
	return TypeAny
}

func (r *SyntacticResolver) binary(n *sitter.Node, env Env) string {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return TypeAny
	}
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")

	switch op.Type() {
	case "+":
		l, rt := r.Expr(left, env), r.Expr(right, env)
		switch {
		case l == TypeString || rt == TypeString:
			return TypeString
		case l == TypeNumber && rt == TypeNumber:
			return TypeNumber
		}
		return TypeAny
	case "-", "*", "/", "%", "**", "&", "|", "^", "<<", ">>", ">>>":
		return TypeNumber
	case "<", ">", "<=", ">=", "==", "!=", "===", "!==", "instanceof", "in":
		return TypeBoolean
	case "&&", "||", "??":
		return Union(r.Expr(left, env), r.Expr(right, env))
	}
	return TypeAny
}

func (r *SyntacticResolver) text(n *sitter.Node) string {
	return string(r.Source[n.StartByte():n.EndByte()])
}

// Union joins types with " | ", splitting existing unions at the top level
// and dropping duplicates; first-seen order is kept.
func Union(types ...string) string {
	seen := make(map[string]bool)
	var out []string
	for _, typ := range types {
		for _, part := range splitUnion(typ) {
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return TypeAny
	}
	return strings.Join(out, " | ")
}

// splitUnion splits at '|' characters outside any brackets.
func splitUnion(typ string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(typ); i++ {
		switch typ[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}':
			depth--
		case '>':
			if i == 0 || typ[i-1] != '=' {
				depth--
			}
		case '|':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(typ[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(typ[start:]))
}
