package cellgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with cellgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithName adds a name field to the logger (useful for tagging arrays).
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// WithWidth adds a storage width field to the logger.
func (l *Logger) WithWidth(w Width) *Logger {
	return &Logger{
		Logger: l.Logger.With("width", w.String()),
	}
}

// WithCells adds a cell count field to the logger.
func (l *Logger) WithCells(cells int) *Logger {
	return &Logger{
		Logger: l.Logger.With("cells", cells),
	}
}

// LogConvert logs a width conversion.
func (l *Logger) LogConvert(ctx context.Context, from, to Width, cells int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "storage conversion failed",
			"from", from.String(),
			"to", to.String(),
			"cells", cells,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "storage converted",
			"from", from.String(),
			"to", to.String(),
			"cells", cells,
		)
	}
}

// LogAllocate logs an explicit allocation request.
func (l *Logger) LogAllocate(ctx context.Context, op string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "allocation failed",
			"op", op,
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "allocation completed",
			"op", op,
			"bytes", bytes,
		)
	}
}

// LogSetData logs the adoption of caller-provided arrays.
func (l *Logger) LogSetData(ctx context.Context, offsets, connectivity string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "set data rejected",
			"offsets", offsets,
			"connectivity", connectivity,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "set data adopted arrays",
			"offsets", offsets,
			"connectivity", connectivity,
		)
	}
}

// LogAppend logs an append of another cell array.
func (l *Logger) LogAppend(ctx context.Context, cells int, pointOffset ID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "append failed",
			"cells", cells,
			"point_offset", pointOffset,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "append completed",
			"cells", cells,
			"point_offset", pointOffset,
		)
	}
}

// LogLegacy logs a legacy format import or export.
func (l *Logger) LogLegacy(ctx context.Context, op string, values int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "legacy "+op+" failed",
			"values", values,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "legacy "+op+" completed",
			"values", values,
		)
	}
}

// LogCopy logs a deep or shallow copy.
func (l *Logger) LogCopy(ctx context.Context, op string, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"error", err,
		)
	}
}

// LogPersist logs a blob store operation performed by the persistence layer.
func (l *Logger) LogPersist(ctx context.Context, op, name string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "persistence operation failed",
			"op", op,
			"blob", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "persistence operation completed",
			"op", op,
			"blob", name,
			"bytes", bytes,
		)
	}
}
