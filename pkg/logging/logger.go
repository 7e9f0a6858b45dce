// Package logging is the simulator's slog setup. Every landing attempt
// carries its own correlation ID on the context, and guidance values that
// have no finite answer (an unknown impact time, say) are logged as strings
// instead of breaking the JSON encoder.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
)

// LevelEnv names the environment variable read when no level is configured.
const LevelEnv = "HOVERSLAM_LOG_LEVEL"

// Logger is a JSON slog.Logger whose methods take the attempt context.
type Logger struct {
	*slog.Logger
}

// NewLogger writes JSON to stdout at the level named by HOVERSLAM_LOG_LEVEL.
func NewLogger() *Logger {
	return newLogger(os.Stdout, levelFromEnv())
}

// NewLoggerWithOptions creates a JSON logger writing to w at the named level.
// An empty level falls back to HOVERSLAM_LOG_LEVEL.
func NewLoggerWithOptions(w io.Writer, level string) *Logger {
	if level == "" {
		return newLogger(w, levelFromEnv())
	}
	return newLogger(w, ParseLevel(level))
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return newLogger(io.Discard, slog.LevelError)
}

func newLogger(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: sanitizeAttributes,
	})
	return &Logger{slog.New(handler)}
}

// WithComponent tags every record with the subsystem that wrote it.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{l.Logger.With("component", name)}
}

// LogWithContext adds the attempt's correlation ID, when there is one.
func (l *Logger) LogWithContext(ctx context.Context, level slog.Level, msg string, args ...any) {
	if id := GetCorrelationID(ctx); id != "" {
		args = append(args, "correlation_id", id)
	}
	l.Log(ctx, level, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelInfo, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelWarn, msg, args...)
}

// Error logs msg with err's text under the "error" key. err may be nil.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.LogWithContext(ctx, slog.LevelError, msg, args...)
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelDebug, msg, args...)
}

type correlationIDKey struct{}

// WithCorrelationID starts an attempt scope. An empty id draws a fresh one.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	if correlationID == "" {
		correlationID = GenerateCorrelationID()
	}
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// GetCorrelationID returns the attempt ID on ctx, or "".
func GetCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// GenerateCorrelationID returns 16 random hex digits.
func GenerateCorrelationID() string {
	var b [8]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// ParseLevel maps a level name to a slog level, defaulting to INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelFromEnv() slog.Level {
	return ParseLevel(os.Getenv(LevelEnv))
}

// redactedKeys hide the flight log location when it is a DSN with
// credentials in it.
var redactedKeys = []string{"password", "passwd", "token", "secret", "authorization", "dsn"}

func sanitizeAttributes(groups []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, k := range redactedKeys {
		if strings.Contains(key, k) {
			return slog.String(a.Key, "[REDACTED]")
		}
	}

	// encoding/json rejects NaN and infinities
	if a.Value.Kind() == slog.KindFloat64 {
		if f := a.Value.Float64(); math.IsNaN(f) || math.IsInf(f, 0) {
			return slog.String(a.Key, fmt.Sprint(f))
		}
	}
	return a
}

// WrapError prefixes err with a formatted context, keeping it matchable with
// errors.Is. A nil err stays nil.
func WrapError(err error, context string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		context = fmt.Sprintf(context, args...)
	}
	return fmt.Errorf("%s: %w", context, err)
}
