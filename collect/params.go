package collect

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/teranos/jsdoc-builder/syntax"
)

// params lists fn's formal parameters. Parameters whose binding is not a
// simple identifier are named param<N>, 1-indexed by position.
func params(fn *sitter.Node, src []byte) []Param {
	// arrow functions with a single bare parameter: x => ...
	if single := fn.ChildByFieldName("parameter"); single != nil {
		return []Param{{
			Name:       string(src[single.StartByte():single.EndByte()]),
			NameOffset: int(single.StartByte()),
		}}
	}

	list := fn.ChildByFieldName("parameters")
	if list == nil {
		return nil
	}

	var out []Param
	for i := 0; i < int(list.NamedChildCount()); i++ {
		n := list.NamedChild(i)
		if n.Type() == syntax.KindComment {
			continue
		}
		p, ok := param(n, src)
		if !ok {
			continue
		}
		if p.NameOffset < 0 {
			p.Name = fmt.Sprintf("param%d", len(out)+1)
		}
		out = append(out, p)
	}
	return out
}

// param describes one parameter node. ok is false for a TypeScript this
// parameter, which is not a real argument.
func param(n *sitter.Node, src []byte) (Param, bool) {
	p := Param{NameOffset: -1}

	pattern := n
	switch n.Type() {
	case syntax.KindRequiredParameter, syntax.KindOptionalParameter:
		pattern = n.ChildByFieldName("pattern")
		p.Declared = syntax.TypeAnnotationText(n.ChildByFieldName("type"), src)
		p.Default = n.ChildByFieldName("value")
		if pattern == nil {
			return p, true
		}
		if pattern.Type() == "this" {
			return p, false
		}
	case syntax.KindAssignmentPattern:
		pattern = n.ChildByFieldName("left")
		p.Default = n.ChildByFieldName("right")
	}

	if pattern != nil && pattern.Type() == syntax.KindAssignmentPattern {
		p.Default = pattern.ChildByFieldName("right")
		pattern = pattern.ChildByFieldName("left")
	}
	if pattern != nil && pattern.Type() == syntax.KindRestPattern {
		p.Rest = true
		pattern = syntax.FirstNamedNonComment(pattern)
	}

	if pattern != nil && pattern.Type() == syntax.KindIdentifier {
		p.Name = string(src[pattern.StartByte():pattern.EndByte()])
		p.NameOffset = int(pattern.StartByte())
	}
	return p, true
}
