package syntax

import (
	"context"

	"github.com/teranos/jsdoc-builder/source"
)

// QueryKind says what an oracle query asks about.
type QueryKind int

const (
	// QueryParam asks for a parameter's declared or contextual type.
	QueryParam QueryKind = iota
	// QueryReturn asks for a function's return type.
	QueryReturn
)

// Query locates the symbol an oracle should resolve.
type Query struct {
	Kind   QueryKind
	Offset int    // byte offset of the identifier to resolve
	Name   string // identifier text at Offset
}

// Oracle is a full type-resolution capability over one script.
// ResolveType returns the printed type, or ok false when it has no answer.
type Oracle interface {
	ResolveType(ctx context.Context, q Query) (printed string, ok bool)
	Close() error
}

// OracleFactory builds an oracle over text. It returns nil, never an error,
// when no oracle can be constructed.
type OracleFactory func(ctx context.Context, text string, d source.Dialect) Oracle

// Trivial reports whether a printed type carries no information.
func Trivial(printed string) bool {
	switch printed {
	case "", "{}", "any":
		return true
	}
	return false
}
