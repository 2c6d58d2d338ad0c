package tsls

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// lineIndex converts byte offsets to LSP positions (UTF-16 columns).
type lineIndex struct {
	src    []byte
	starts []int
}

func newLineIndex(src []byte) lineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{src: src, starts: starts}
}

func (li lineIndex) position(offset int) protocol.Position {
	if offset > len(li.src) {
		offset = len(li.src)
	}
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1

	col := 0
	for b := li.src[li.starts[line]:offset]; len(b) > 0; {
		r, size := utf8.DecodeRune(b)
		col += len(utf16.Encode([]rune{r}))
		b = b[size:]
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)}
}
