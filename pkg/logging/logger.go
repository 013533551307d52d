// Package logging provides structured logging for go-orrery.
// It wraps zerolog to provide consistent logging patterns with
// correlation IDs, error context preservation, and redaction of sensitive keys.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LevelEnvVar selects the log level when no explicit level is given.
const LevelEnvVar = "ORRERY_LOG_LEVEL"

// Logger wraps zerolog.Logger with context-aware helpers. A nil *Logger
// discards everything.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a JSON logger on stderr. The level comes from
// ORRERY_LOG_LEVEL: DEBUG, INFO, WARN or ERROR. Defaults to INFO.
func NewLogger() *Logger {
	return NewLoggerWithWriter(os.Stderr, os.Getenv(LevelEnvVar))
}

// NewLoggerWithWriter creates a JSON logger writing to w at the given level.
func NewLoggerWithWriter(w io.Writer, level string) *Logger {
	zl := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// NewConsoleLogger creates a human-readable logger for interactive runs.
func NewConsoleLogger(w io.Writer, level string) *Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: true}
	zl := zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Nop returns a logger that drops every entry.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Level returns the minimum level this logger emits.
func (l *Logger) Level() zerolog.Level {
	if l == nil {
		return zerolog.Disabled
	}
	return l.zl.GetLevel()
}

// With returns a child logger that always carries the given key/value pairs.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zl: l.zl.With().Fields(sanitizeFields(args)).Logger()}
}

// Info logs an informational message with context.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l == nil {
		return
	}
	l.write(ctx, l.zl.Info(), msg, args)
}

// Warn logs a warning message with context.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l == nil {
		return
	}
	l.write(ctx, l.zl.Warn(), msg, args)
}

// Error logs an error message with context and the error text.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if l == nil {
		return
	}
	e := l.zl.Error()
	if err != nil {
		e = e.Str("error", err.Error())
	}
	l.write(ctx, e, msg, args)
}

// Debug logs a debug message with context.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	if l == nil {
		return
	}
	l.write(ctx, l.zl.Debug(), msg, args)
}

func (l *Logger) write(ctx context.Context, e *zerolog.Event, msg string, args []any) {
	// Disabled levels return a nil event.
	if e == nil {
		return
	}
	if ctx != nil {
		if id := GetCorrelationID(ctx); id != "" {
			e = e.Str("correlation_id", id)
		}
	}
	if len(args) > 0 {
		e = e.Fields(sanitizeFields(args))
	}
	e.Msg(msg)
}

// correlationIDKey is the context key for correlation IDs
type correlationIDKey struct{}

// WithCorrelationID adds a correlation ID to the context.
// If no correlation ID is provided, a new one will be generated.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	if correlationID == "" {
		correlationID = GenerateCorrelationID()
	}
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// GetCorrelationID extracts the correlation ID from the context.
// Returns empty string if no correlation ID is present.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateCorrelationID creates a new random correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"token", "auth", "authorization",
	"secret", "key", "private",
	"cookie", "session",
}

// redactedValue replaces the value of any sensitive key.
const redactedValue = "[REDACTED]"

// sanitizeFields turns key/value pairs into a zerolog field list, masking
// values whose key looks sensitive. A trailing key without a value is
// logged under "!BADKEY".
func sanitizeFields(args []any) []any {
	fields := make([]any, 0, len(args)+1)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			fields = append(fields, "!BADKEY", args[i])
			if ok {
				continue
			}
			i--
			continue
		}
		value := args[i+1]
		if isSensitive(key) {
			value = redactedValue
		} else if err, isErr := value.(error); isErr {
			value = err.Error()
		}
		fields = append(fields, key, value)
	}
	return fields
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// WrapError wraps an error with additional context information.
// This preserves the original error while adding descriptive context.
func WrapError(err error, context string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		context = fmt.Sprintf(context, args...)
	}
	return fmt.Errorf("%s: %w", context, err)
}
