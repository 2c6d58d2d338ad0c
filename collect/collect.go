// Package collect finds the undocumented function-like declarations of a
// parsed script.
package collect

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/teranos/jsdoc-builder/syntax"
)

// AnonymousName is used when a function has no identifier binding, as in
// export default function () {}.
const AnonymousName = "anonymous"

// Target is one documentable declaration.
type Target struct {
	// Key is "<kind>:<start>:<end>" of the anchor, computed before any edit.
	Key string

	Name       string
	NameOffset int // -1 when the name is the placeholder

	Params []Param

	// DeclaredReturn is the return annotation text, empty when the return
	// type must be inferred.
	DeclaredReturn string

	Snippet string // source text of the anchor
	Anchor  int    // byte offset the comment is inserted before
	Indent  string // indentation of the anchor's line
	Newline string // line ending of the anchor's line, "\n" or "\r\n"

	Async bool
	Func  *sitter.Node // function_declaration, arrow_function or function expression
}

// Param is one formal parameter.
type Param struct {
	Name       string
	NameOffset int    // -1 for destructured parameters
	Declared   string // annotation text, empty when absent
	Default    *sitter.Node
	Rest       bool
}

// Collect walks the tree depth-first and returns every documentable
// declaration whose anchor has no leading doc comment, in source order.
func Collect(ix *syntax.Index) []Target {
	c := &collector{ix: ix, seen: make(map[string]bool)}
	c.walk(ix.Root())
	return c.targets
}

type collector struct {
	ix      *syntax.Index
	targets []Target
	seen    map[string]bool
}

func (c *collector) walk(n *sitter.Node) {
	if n == nil {
		return
	}

	switch n.Type() {
	case syntax.KindFunctionDeclaration, syntax.KindGeneratorDecl:
		c.functionDeclaration(n)
	case syntax.KindVariableDeclarator:
		c.variableDeclarator(n)
	case syntax.KindExportStatement:
		c.exportDefault(n)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.walk(n.NamedChild(i))
	}
}

func (c *collector) functionDeclaration(fn *sitter.Node) {
	anchor := exportWrapper(fn)
	if c.documented(anchor, fn) {
		return
	}
	c.add(anchor, fn, fn.ChildByFieldName("name"))
}

// exportDefault handles export default of an anonymous function or arrow,
// which the grammar represents as a value rather than a declaration.
func (c *collector) exportDefault(export *sitter.Node) {
	value := syntax.Unparen(export.ChildByFieldName("value"))
	if !syntax.IsFunctionValue(value) {
		return
	}
	if c.documented(export, nil) {
		return
	}
	c.add(export, value, value.ChildByFieldName("name"))
}

func (c *collector) variableDeclarator(decl *sitter.Node) {
	value := decl.ChildByFieldName("value")
	if !syntax.IsFunctionValue(value) {
		return
	}
	name := decl.ChildByFieldName("name")
	if name == nil || name.Type() != syntax.KindIdentifier {
		return
	}

	anchor := decl
	stmt := decl.Parent()
	if stmt != nil && soleDeclarator(stmt, decl) && !loopHead(stmt) {
		anchor = exportWrapper(stmt)
		if c.documented(anchor, stmt) {
			return
		}
	} else if c.documented(anchor, nil) {
		return
	}
	c.add(anchor, value, name)
}

func (c *collector) add(anchor, fn, name *sitter.Node) {
	key := fmt.Sprintf("%s:%d:%d", anchor.Type(), anchor.StartByte(), anchor.EndByte())
	if c.seen[key] {
		return
	}
	c.seen[key] = true

	src := c.ix.Source
	t := Target{
		Key:            key,
		Name:           AnonymousName,
		NameOffset:     -1,
		Params:         params(fn, src),
		DeclaredReturn: syntax.TypeAnnotationText(fn.ChildByFieldName("return_type"), src),
		Snippet:        c.ix.Text(anchor),
		Anchor:         int(anchor.StartByte()),
		Indent:         syntax.LineIndent(src, int(anchor.StartByte())),
		Newline:        syntax.LineEnding(src, int(anchor.StartByte())),
		Async:          syntax.IsAsync(fn),
		Func:           fn,
	}
	if name != nil && (name.Type() == syntax.KindIdentifier || name.Type() == "type_identifier") {
		t.Name = c.ix.Text(name)
		t.NameOffset = int(name.StartByte())
	}
	c.targets = append(c.targets, t)
}

// soleDeclarator reports whether decl is the only declarator of a
// lexical_declaration or variable_declaration.
func soleDeclarator(stmt, decl *sitter.Node) bool {
	switch stmt.Type() {
	case syntax.KindLexicalDeclaration, syntax.KindVariableDeclaration:
	default:
		return false
	}
	count := 0
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		if stmt.NamedChild(i).Type() == syntax.KindVariableDeclarator {
			count++
		}
	}
	return count == 1
}

// loopHead reports whether stmt is the initializer of a for or for-in/of
// loop, where it is not a statement of its own.
func loopHead(stmt *sitter.Node) bool {
	parent := stmt.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case "for_statement", "for_in_statement":
		return true
	}
	return false
}

// exportWrapper returns the export statement when n is its declaration,
// otherwise n.
func exportWrapper(n *sitter.Node) *sitter.Node {
	parent := n.Parent()
	if parent == nil || parent.Type() != syntax.KindExportStatement {
		return n
	}
	if d := parent.ChildByFieldName("declaration"); d != nil && sameNode(d, n) {
		return parent
	}
	return n
}

func sameNode(a, b *sitter.Node) bool {
	return a.Type() == b.Type() && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
