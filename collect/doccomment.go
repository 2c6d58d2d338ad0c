package collect

import (
	"bytes"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/teranos/jsdoc-builder/syntax"
)

// documented reports whether anchor (or inner, the node it wraps) already
// carries a leading block doc comment. Both the attached comment nodes and
// the raw leading trivia are checked.
func (c *collector) documented(anchor, inner *sitter.Node) bool {
	for _, n := range []*sitter.Node{anchor, inner} {
		if n == nil {
			continue
		}
		if hasDocSibling(n, c.ix.Source) || hasDocTrivia(c.ix.Source, int(n.StartByte())) {
			return true
		}
	}
	// export /** doc */ function f() {}
	if inner != nil && anchor.Type() == syntax.KindExportStatement {
		for i := 0; i < int(anchor.ChildCount()); i++ {
			ch := anchor.Child(i)
			if ch.StartByte() >= inner.StartByte() {
				break
			}
			if ch.Type() == syntax.KindComment && isDocComment(c.ix.Text(ch)) {
				return true
			}
		}
	}
	return false
}

// hasDocSibling walks the comments immediately preceding n.
func hasDocSibling(n *sitter.Node, src []byte) bool {
	for prev := n.PrevSibling(); prev != nil && prev.Type() == syntax.KindComment; prev = prev.PrevSibling() {
		if isDocComment(string(src[prev.StartByte():prev.EndByte()])) {
			return true
		}
	}
	return false
}

// hasDocTrivia scans backwards from offset over whitespace; a block comment
// ending there counts when it opens with /**.
func hasDocTrivia(src []byte, offset int) bool {
	i := offset
	for i > 0 && isSpace(src[i-1]) {
		i--
	}
	if i < 2 || src[i-2] != '*' || src[i-1] != '/' {
		return false
	}
	open := bytes.LastIndex(src[:i-2], []byte("/*"))
	if open < 0 {
		return false
	}
	return isDocComment(string(src[open:i]))
}

func isDocComment(text string) bool {
	return strings.HasPrefix(text, "/**") && !strings.HasPrefix(text, "/**/")
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
