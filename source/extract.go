package source

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ScriptRange is the executable part of a unit plus the bytes around it.
// Prefix + Text + Suffix always reproduces the unit's text.
type ScriptRange struct {
	Text    string
	Start   int // byte offset of Text within the unit
	End     int
	Prefix  string
	Suffix  string
	Dialect Dialect // grammar for Text; never DialectContainer
	Found   bool    // false when a container has no script block
}

// Extract isolates the script text of u. Non-container units yield a range
// over the whole text. A container without a <script> block yields a range
// with Found false, and callers skip collection.
func Extract(u Unit) ScriptRange {
	if u.Dialect != DialectContainer {
		return ScriptRange{
			Text:    u.Text,
			Start:   0,
			End:     len(u.Text),
			Dialect: u.Dialect,
			Found:   true,
		}
	}

	start, end, lang, ok := findScriptBlock(u.Text)
	if !ok {
		return ScriptRange{Text: u.Text, End: len(u.Text), Dialect: DialectScript}
	}
	return ScriptRange{
		Text:    u.Text[start:end],
		Start:   start,
		End:     end,
		Prefix:  u.Text[:start],
		Suffix:  u.Text[end:],
		Dialect: DialectFromLang(lang),
		Found:   true,
	}
}

// findScriptBlock returns the content span of the first <script> element.
// Offsets are tracked by summing raw token lengths, so comments and markup
// text that merely mention <script> are not matched.
func findScriptBlock(text string) (start, end int, lang string, ok bool) {
	z := html.NewTokenizer(strings.NewReader(text))
	offset := 0
	inScript := false

	for {
		tt := z.Next()
		raw := len(z.Raw())

		switch tt {
		case html.ErrorToken:
			if inScript && z.Err() == io.EOF {
				// unterminated block runs to end of text
				return start, len(text), lang, true
			}
			return 0, 0, "", false

		case html.StartTagToken:
			if inScript {
				break
			}
			name, hasAttr := z.TagName()
			if string(name) != "script" {
				break
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "lang" {
					lang = string(val)
				}
			}
			inScript = true
			start = offset + raw

		case html.EndTagToken:
			if !inScript {
				break
			}
			if name, _ := z.TagName(); string(name) == "script" {
				return start, offset, lang, true
			}
		}

		offset += raw
	}
}
