// Package source classifies source units and isolates their script text.
package source

import (
	"path"
	"strings"
)

// Dialect selects the grammar used to parse a unit's script text.
type Dialect int

const (
	DialectScript    Dialect = iota // plain JavaScript
	DialectJSX                      // JavaScript with JSX
	DialectTyped                    // TypeScript
	DialectTypedJSX                 // TypeScript with JSX
	DialectContainer                // markup file embedding a <script> block
)

func (d Dialect) String() string {
	switch d {
	case DialectJSX:
		return "jsx"
	case DialectTyped:
		return "ts"
	case DialectTypedJSX:
		return "tsx"
	case DialectContainer:
		return "container"
	default:
		return "js"
	}
}

// IsTyped reports whether the dialect carries type annotations.
func (d Dialect) IsTyped() bool {
	return d == DialectTyped || d == DialectTypedJSX
}

// Unit is one file or virtual module to annotate.
type Unit struct {
	ID      string
	Text    string
	Dialect Dialect
}

// NewUnit builds a Unit, deriving the dialect from id.
func NewUnit(id, text string) Unit {
	return Unit{ID: id, Text: text, Dialect: DialectFromID(id)}
}

// NormalizeID converts backslashes to slashes and strips any query suffix.
func NormalizeID(id string) string {
	id = strings.ReplaceAll(id, `\`, "/")
	if i := strings.IndexByte(id, '?'); i >= 0 {
		id = id[:i]
	}
	return id
}

// Ext returns the lower-cased extension of a normalised id.
func Ext(id string) string {
	return strings.ToLower(path.Ext(NormalizeID(id)))
}

// DialectFromID maps an identifier's extension to a dialect. Unknown
// extensions are treated as plain script.
func DialectFromID(id string) Dialect {
	switch Ext(id) {
	case ".jsx":
		return DialectJSX
	case ".ts", ".mts", ".cts":
		return DialectTyped
	case ".tsx":
		return DialectTypedJSX
	case ".vue", ".svelte":
		return DialectContainer
	default:
		return DialectScript
	}
}

// DialectFromLang maps a container's lang attribute to the inner dialect.
func DialectFromLang(lang string) Dialect {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "ts", "typescript":
		return DialectTyped
	case "tsx":
		return DialectTypedJSX
	case "jsx":
		return DialectJSX
	default:
		return DialectScript
	}
}

// Recognized reports whether id carries one of exts (case-insensitive).
func Recognized(id string, exts []string) bool {
	ext := Ext(id)
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
