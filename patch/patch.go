// Package patch inserts synthesized comments into source text.
package patch

import (
	"sort"
	"strings"

	"github.com/teranos/jsdoc-builder/source"
)

// Insertion places Text immediately before byte Offset of the script text.
type Insertion struct {
	Offset int
	Text   string
}

// Apply inserts every comment, highest offset first, so pending offsets stay
// valid. Insertions sharing an offset keep their given order in the output.
// Offsets outside the text are clamped. No other bytes change.
func Apply(text string, ins []Insertion) string {
	if len(ins) == 0 {
		return text
	}

	order := make([]int, len(ins))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := ins[order[a]], ins[order[b]]
		if ia.Offset != ib.Offset {
			return ia.Offset > ib.Offset
		}
		return order[a] > order[b]
	})

	out := text
	for _, i := range order {
		off := ins[i].Offset
		if off < 0 {
			off = 0
		}
		if off > len(out) {
			off = len(out)
		}
		out = out[:off] + ins[i].Text + out[off:]
	}
	return out
}

// Reassemble puts a rewritten script back between the range's prefix and
// suffix. If the original script began or ended with a newline and the
// rewrite does not, one is restored so the container's tags stay on their
// own lines.
func Reassemble(r source.ScriptRange, script string) string {
	if strings.HasPrefix(r.Text, "\n") && !strings.HasPrefix(script, "\n") {
		script = "\n" + script
	}
	if strings.HasSuffix(r.Text, "\n") && !strings.HasSuffix(script, "\n") {
		script += "\n"
	}
	return r.Prefix + script + r.Suffix
}

// Unit applies ins to the script range of a unit and returns the full text.
// With no insertions the original text is returned untouched.
func Unit(original string, r source.ScriptRange, ins []Insertion) string {
	if len(ins) == 0 {
		return original
	}
	script := Apply(r.Text, ins)
	if r.Prefix == "" && r.Suffix == "" && r.Start == 0 && r.End == len(original) {
		return script
	}
	return Reassemble(r, script)
}
