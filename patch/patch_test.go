package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/jsdoc-builder/source"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		text string
		ins  []Insertion
		want string
	}{
		{"none", "abc", nil, "abc"},
		{"single", "function f() {}", []Insertion{{0, "/** f */\n"}}, "/** f */\nfunction f() {}"},
		{
			"order independent",
			"A\nB\nC",
			[]Insertion{{2, "[b]"}, {0, "[a]"}, {4, "[c]"}},
			"[a]A\n[b]B\n[c]C",
		},
		{"same offset keeps order", "x", []Insertion{{0, "1"}, {0, "2"}}, "12x"},
		{"clamped", "x", []Insertion{{5, "!"}, {-1, "^"}}, "^x!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.text, tt.ins))
		})
	}
}

func TestUnitPlain(t *testing.T) {
	text := "const f = () => 1;\n"
	r := source.Extract(source.NewUnit("a.js", text))

	assert.Equal(t, text, Unit(text, r, nil))
	assert.Equal(t, "/** d */\n"+text, Unit(text, r, []Insertion{{0, "/** d */\n"}}))
}

func TestUnitContainer(t *testing.T) {
	text := "<template><p/></template>\n<script>\nfunction f() {}\n</script>\n<style>p{}</style>\n"
	r := source.Extract(source.NewUnit("C.vue", text))
	assert.True(t, r.Found)

	out := Unit(text, r, []Insertion{{1, "/** f */\n"}})
	assert.Equal(t, "<template><p/></template>\n<script>\n/** f */\nfunction f() {}\n</script>\n<style>p{}</style>\n", out)
}

func TestReassembleRestoresNewlines(t *testing.T) {
	r := source.ScriptRange{Text: "\nx\n", Prefix: "<script>", Suffix: "</script>"}
	assert.Equal(t, "<script>\ny\n</script>", Reassemble(r, "y"))

	r = source.ScriptRange{Text: "x", Prefix: "<script>", Suffix: "</script>"}
	assert.Equal(t, "<script>y</script>", Reassemble(r, "y"))
}
