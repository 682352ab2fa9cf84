package cordsearch

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// SetupLogger builds a slog.Logger writing to stderr, either as text
// or JSON, at the given level. This is the only logging path in the
// module: the engine and facade log through *slog.Logger, never
// through fmt.Print*.
func SetupLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a logger tagged with a "component" attribute,
// used so log lines from the engine, cache, and facade are easy to
// filter independently.
func WithComponent(l *slog.Logger, name string) *slog.Logger {
	return l.With("component", name)
}

type loggerCtxKey struct{}

// ContextWithLogger attaches a logger to ctx for handlers to retrieve
// with LoggerFromContext.
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, l)
}

// LoggerFromContext returns the logger attached to ctx, or
// slog.Default() if none was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
