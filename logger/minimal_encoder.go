package logger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"

	colorTime      = "\x1b[38;5;107m" // mid green
	colorComponent = "\x1b[38;5;208m" // orange
	colorKey       = "\x1b[38;5;109m" // blue-green
	colorWarn      = "\x1b[38;5;179m"
	colorWarnBg    = "\x1b[48;5;58m"
	colorErr       = "\x1b[38;5;167m"
	colorErrBg     = "\x1b[48;5;52m"
)

// Colorize controls ANSI colors in human-readable output.
var Colorize = true

var bufferPool = buffer.NewPool()

// minimalEncoder is a compact console encoder.
// Format: "13:04:35  WARN  a.openai  description request failed  file=src/a.ts error=..."
type minimalEncoder struct {
	zapcore.Encoder // base encoder used for With() field accumulation
	context         []zapcore.Field
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	ctx := make([]zapcore.Field, len(enc.context))
	copy(ctx, enc.context)
	return &minimalEncoder{Encoder: enc.Encoder.Clone(), context: ctx}
}

// AddString etc. are routed through With(); keep those fields for printing.
func (enc *minimalEncoder) addContext(f zapcore.Field) {
	enc.context = append(enc.context, f)
}

func (enc *minimalEncoder) AddString(key, value string) {
	enc.addContext(zap.String(key, value))
}

func (enc *minimalEncoder) AddInt64(key string, value int64) {
	enc.addContext(zap.Int64(key, value))
}

func (enc *minimalEncoder) AddBool(key string, value bool) {
	enc.addContext(zap.Bool(key, value))
}

func (enc *minimalEncoder) AddFloat64(key string, value float64) {
	enc.addContext(zap.Float64(key, value))
}

func (enc *minimalEncoder) AddDuration(key string, value time.Duration) {
	enc.addContext(zap.Duration(key, value))
}

func (enc *minimalEncoder) AddReflected(key string, value interface{}) error {
	enc.addContext(zap.Any(key, value))
	return nil
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := bufferPool.Get()

	final.AppendString(paint(colorTime, ent.Time.Format("15:04:05")))

	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(paint(colorComponent, abbreviateName(ent.LoggerName)))
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	all := make([]zapcore.Field, 0, len(enc.context)+len(fields))
	all = append(all, enc.context...)
	all = append(all, fields...)
	if kv := formatFields(all); kv != "" {
		final.AppendString("  ")
		final.AppendString(kv)
	}

	final.AppendString("\n")
	return final, nil
}

func paint(color, s string) string {
	if !Colorize {
		return s
	}
	return color + s + colorReset
}

func levelString(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.WarnLevel:
		if !Colorize {
			return "WARN"
		}
		return colorBold + colorWarnBg + colorWarn + "WARN" + colorReset
	default:
		if !Colorize {
			return level.CapitalString()
		}
		return colorBold + colorErrBg + colorErr + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: annotate -> annotate, ai.openai -> a.openai
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// formatFields renders every field as key=value; nothing is dropped.
func formatFields(fields []zapcore.Field) string {
	if len(fields) == 0 {
		return ""
	}
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	// Keep insertion order where possible; map encoder loses it, so sort for stable output.
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, paint(colorKey, k)+"="+fmt.Sprintf("%v", enc.Fields[k]))
	}
	return strings.Join(parts, " ")
}
