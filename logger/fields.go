package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging.
// Use these constants instead of raw strings.
const (
	// Identity and context
	FieldRunID     = "run_id"
	FieldRequestID = "request_id"

	// Components
	FieldComponent = "component"
	FieldProvider  = "provider"
	FieldModel     = "model"

	// Source units
	FieldFile    = "file"
	FieldDialect = "dialect"
	FieldTarget  = "target"
	FieldKey     = "key"
	FieldOffset  = "offset"

	// Timing
	FieldDurationMS = "duration_ms"
	FieldTimeoutMS  = "timeout_ms"

	// Errors
	FieldError  = "error"
	FieldStatus = "status"

	// Counts
	FieldCount   = "count"
	FieldTargets = "targets"
	FieldChanged = "changed"

	// Network
	FieldAddress = "address"
	FieldURL     = "url"
)

type contextKey string

const (
	runIDKey     contextKey = "logger_run_id"
	requestIDKey contextKey = "logger_request_id"
	fileKey      contextKey = "logger_file"
)

// WithRunID adds a run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithRequestID adds a request ID to the context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithFile adds the source unit id to the context for logging
func WithFile(ctx context.Context, file string) context.Context {
	return context.WithValue(ctx, fileKey, file)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Warnw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, FieldRequestID, requestID)
	}
	if file, ok := ctx.Value(fileKey).(string); ok && file != "" {
		fields = append(fields, FieldFile, file)
	}

	return fields
}

// LoggerFromContext returns a logger carrying the fields stored in ctx.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Client struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewClient() *Client {
//	    return &Client{logger: logger.ComponentLogger("ai.openai")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
