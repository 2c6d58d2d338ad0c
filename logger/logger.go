package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// Verbosity as passed to Initialize (-v count)
	Verbosity int
)

// output is where log lines go. Stdout is reserved for transformed code and
// for the MCP stdio transport, so logs default to stderr.
var output io.Writer = os.Stderr

func init() {
	// Safe no-op logger until Initialize() is called
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger.
// jsonOutput selects structured JSON lines; verbosity is the -v flag count.
func Initialize(jsonOutput bool, verbosity int) error {
	Verbosity = verbosity
	level := VerbosityToLevel(verbosity)

	var zapLogger *zap.Logger
	var err error

	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
		zapLogger, err = config.Build()
	} else {
		zapLogger = zap.New(
			zapcore.NewCore(
				newMinimalEncoder(),
				zapcore.AddSync(output),
				level,
			),
		)
	}

	if err != nil {
		return err
	}

	Logger = zapLogger.Sugar()
	return nil
}

// InitializeWithWriter builds a human-readable logger writing to w.
// Used by tests and by the MCP command, which must keep stdout clean.
func InitializeWithWriter(w io.Writer, verbosity int) {
	Verbosity = verbosity
	Logger = zap.New(
		zapcore.NewCore(
			newMinimalEncoder(),
			zapcore.AddSync(w),
			VerbosityToLevel(verbosity),
		),
	).Sugar()
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Debugw logs a debug message with structured fields
func Debugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Debugw(msg, keysAndValues...)
	}
}
