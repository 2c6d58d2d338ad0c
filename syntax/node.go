package syntax

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node kinds shared by the javascript, typescript and tsx grammars.
const (
	KindProgram             = "program"
	KindComment             = "comment"
	KindIdentifier          = "identifier"
	KindFunctionDeclaration = "function_declaration"
	KindGeneratorDecl       = "generator_function_declaration"
	KindArrowFunction       = "arrow_function"
	KindFunctionExpression  = "function_expression"
	KindFunction            = "function" // older javascript grammar name for function_expression
	KindGeneratorFunction   = "generator_function"
	KindLexicalDeclaration  = "lexical_declaration"
	KindVariableDeclaration = "variable_declaration"
	KindVariableDeclarator  = "variable_declarator"
	KindExportStatement     = "export_statement"
	KindStatementBlock      = "statement_block"
	KindReturnStatement     = "return_statement"
	KindFormalParameters    = "formal_parameters"
	KindRequiredParameter   = "required_parameter"
	KindOptionalParameter   = "optional_parameter"
	KindAssignmentPattern   = "assignment_pattern"
	KindRestPattern         = "rest_pattern"
	KindTypeAnnotation      = "type_annotation"
	KindParenthesized       = "parenthesized_expression"
)

// IsFunctionValue reports whether n is an arrow function or function
// expression, i.e. a function usable as a variable initializer.
func IsFunctionValue(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case KindArrowFunction, KindFunctionExpression, KindFunction, KindGeneratorFunction:
		return true
	}
	return false
}

// IsFunctionLike reports whether n introduces its own function scope.
// Returns inside such nodes belong to them, not to the enclosing function.
func IsFunctionLike(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	if IsFunctionValue(n) {
		return true
	}
	switch n.Type() {
	case KindFunctionDeclaration, KindGeneratorDecl, "method_definition", "class_declaration", "class":
		return true
	}
	return false
}

// IsAsync reports whether a function node carries the async keyword.
func IsAsync(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			// async precedes the name and the parameter list
			if c.Type() != KindComment {
				return false
			}
			continue
		}
		if c.Type() == "async" {
			return true
		}
	}
	return false
}

// TypeAnnotationText returns the type text of a type_annotation node,
// without the leading colon.
func TypeAnnotationText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() != ":" {
			return strings.TrimSpace(string(src[c.StartByte():c.EndByte()]))
		}
	}
	return ""
}

// Unparen strips any number of enclosing parentheses.
func Unparen(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == KindParenthesized && n.NamedChildCount() > 0 {
		n = n.NamedChild(0)
	}
	return n
}

// FirstNamedNonComment returns n's first named child that is not a comment.
func FirstNamedNonComment(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() != KindComment {
			return c
		}
	}
	return nil
}

// LineIndent returns the whitespace between the start of the line holding
// offset and the first non-blank byte of that line.
func LineIndent(src []byte, offset int) string {
	start := offset
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	if end > offset {
		end = offset
	}
	return string(src[start:end])
}

// LineEnding returns "\r\n" when the line holding offset ends with CRLF,
// otherwise "\n". A last line without a terminator takes the ending of the
// line before it.
func LineEnding(src []byte, offset int) string {
	if offset > len(src) {
		offset = len(src)
	}
	for i := offset; i < len(src); i++ {
		if src[i] == '\n' {
			if i > 0 && src[i-1] == '\r' {
				return "\r\n"
			}
			return "\n"
		}
	}
	for i := offset - 1; i >= 0; i-- {
		if src[i] == '\n' {
			if i > 0 && src[i-1] == '\r' {
				return "\r\n"
			}
			return "\n"
		}
	}
	return "\n"
}
