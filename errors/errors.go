// Package errors provides error handling for jsdoc-builder.
//
// This package re-exports github.com/cockroachdb/errors so every package
// gets stack traces, wrapping and user-facing hints from one import:
//
//	if err := os.WriteFile(path, data, mode); err != nil {
//	    return errors.WithHint(errors.Wrapf(err, "write %s", path), "check file permissions")
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	FlattenHints = crdb.FlattenHints
	GetAllHints  = crdb.GetAllHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors. Wrap them with Wrap/Mark-style helpers to add context while
// keeping errors.Is working.
var (
	// ErrSourceRead indicates a source unit could not be read or written back.
	ErrSourceRead = New("source unavailable")

	// ErrProvider indicates an AI provider request failed (transport, status, body).
	ErrProvider = New("provider request failed")

	// ErrEmptyDescription indicates a provider answered without usable text.
	ErrEmptyDescription = New("empty description")

	// ErrOracleUnavailable indicates the semantic oracle could not be started.
	ErrOracleUnavailable = New("type oracle unavailable")

	// ErrInvalidRequest indicates a malformed request to one of the service surfaces.
	ErrInvalidRequest = New("invalid request")

	// ErrTimeout indicates an operation exceeded its deadline.
	ErrTimeout = New("operation timed out")
)

// Mark tags err so that errors.Is(err, reference) holds, keeping err's message.
func Mark(err error, reference error) error {
	if err == nil {
		return nil
	}
	return crdb.Mark(err, reference)
}

// IsProviderError reports whether err is or wraps ErrProvider
func IsProviderError(err error) bool {
	return err != nil && Is(err, ErrProvider)
}

// IsInvalidRequestError reports whether err is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidRequest)
}

// NewProviderError creates a provider error with a formatted message
func NewProviderError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrProvider)
}
