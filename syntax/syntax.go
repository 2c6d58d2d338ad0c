// Package syntax wraps tree-sitter so the rest of the pipeline can walk a
// script's syntax tree without caring which grammar produced it.
package syntax

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/source"
)

// Index is a parsed script: its bytes, its tree and an optional oracle.
type Index struct {
	Source  []byte
	Dialect source.Dialect
	Tree    *sitter.Tree
	Oracle  Oracle // nil when no oracle is available
}

// Language returns the tree-sitter grammar for d.
func Language(d source.Dialect) *sitter.Language {
	switch d {
	case source.DialectTyped:
		return typescript.GetLanguage()
	case source.DialectTypedJSX:
		return tsx.GetLanguage()
	default:
		// the javascript grammar accepts JSX
		return javascript.GetLanguage()
	}
}

// Parse builds an Index over text. Syntax errors do not fail the parse;
// tree-sitter recovers and the error nodes are simply not documentable.
func Parse(ctx context.Context, text string, d source.Dialect) (*Index, error) {
	if d == source.DialectContainer {
		return nil, errors.Newf("container dialect must be extracted before parsing")
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(Language(d))

	src := []byte(text)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", d)
	}
	return &Index{Source: src, Dialect: d, Tree: tree}, nil
}

// Root returns the program node.
func (ix *Index) Root() *sitter.Node {
	return ix.Tree.RootNode()
}

// Text returns the source text spanned by n.
func (ix *Index) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(ix.Source[n.StartByte():n.EndByte()])
}

// Close releases the tree and the oracle.
func (ix *Index) Close() {
	if ix.Oracle != nil {
		_ = ix.Oracle.Close()
		ix.Oracle = nil
	}
	if ix.Tree != nil {
		ix.Tree.Close()
		ix.Tree = nil
	}
}
