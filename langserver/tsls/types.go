package tsls

import (
	"encoding/json"
	"strings"
)

// Hover is a textDocument/hover result. Contents stays raw because servers
// send a string, a MarkedString, an array of them, or MarkupContent.
type Hover struct {
	Contents json.RawMessage `json:"contents"`
}

// GetText extracts the hover text from any of the content shapes
func (h *Hover) GetText() string {
	if h == nil || len(h.Contents) == 0 || string(h.Contents) == "null" {
		return ""
	}

	// MarkupContent or MarkedString object
	var markup struct {
		Kind     string `json:"kind"`
		Language string `json:"language"`
		Value    string `json:"value"`
	}
	if err := json.Unmarshal(h.Contents, &markup); err == nil && markup.Value != "" {
		return markup.Value
	}

	var str string
	if err := json.Unmarshal(h.Contents, &str); err == nil {
		return str
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(h.Contents, &parts); err == nil {
		texts := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := (&Hover{Contents: p}).GetText(); t != "" {
				texts = append(texts, t)
			}
		}
		return strings.Join(texts, "\n")
	}
	return ""
}

// signature returns the first code block of a hover text, or the whole
// text when it has no fences.
func signature(text string) string {
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(text)
}

// ParamType reads the type from a parameter hover such as
// "(parameter) opts: Options".
func ParamType(text, name string) string {
	sig := signature(text)
	sig = strings.TrimPrefix(sig, "(parameter) ")
	sig = strings.TrimPrefix(sig, "...")
	if !strings.HasPrefix(sig, name) {
		return ""
	}
	rest := strings.TrimPrefix(sig[len(name):], "?")
	if !strings.HasPrefix(rest, ":") {
		return ""
	}
	return collapse(rest[1:])
}

// ReturnType reads the return type from a function hover such as
// "function f(a: number): string" or "const f: (a: number) => string".
func ReturnType(text string) string {
	sig := signature(text)
	open := strings.IndexByte(sig, '(')
	if open < 0 {
		return ""
	}
	end := matchParen(sig, open)
	if end < 0 {
		return ""
	}
	rest := strings.TrimSpace(sig[end+1:])
	switch {
	case strings.HasPrefix(rest, "=>"):
		return collapse(rest[2:])
	case strings.HasPrefix(rest, ":"):
		return collapse(rest[1:])
	}
	return ""
}

// matchParen returns the index of the ')' closing the '(' at open.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if s[i] == '>' && i > 0 && s[i-1] == '=' {
				continue // arrow inside a parameter type
			}
			depth--
			if depth == 0 {
				if s[i] != ')' {
					return -1
				}
				return i
			}
		}
	}
	return -1
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
