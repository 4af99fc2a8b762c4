package bytescan

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with scan-specific helpers so log lines use
// consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithUID adds a uid field to the logger.
func (l *Logger) WithUID(uid string) *Logger {
	return &Logger{Logger: l.Logger.With("uid", uid)}
}

// LogBuild logs the outcome of building a description.
func (l *Logger) LogBuild(ctx context.Context, uid, pattern string, err error) {
	if err != nil {
		l.WarnContext(ctx, "pattern rejected",
			"uid", uid,
			"pattern", pattern,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "pattern added",
		"uid", uid,
		"pattern", pattern,
	)
}

// LogRound logs one orchestration round.
func (l *Logger) LogRound(ctx context.Context, round, steps, active int) {
	l.DebugContext(ctx, "scan round completed",
		"round", round,
		"steps", steps,
		"active_uids", active,
	)
}

// LogScan logs a finished scan.
func (l *Logger) LogScan(ctx context.Context, stats ScanStats, allFound bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan aborted",
			"rounds", stats.Rounds,
			"steps", stats.Steps,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "scan completed",
		"uids", stats.UIDs,
		"found", stats.Found,
		"all_found", allFound,
		"descriptions", stats.Descriptions,
		"rounds", stats.Rounds,
		"steps", stats.Steps,
		"duration", stats.Duration.Round(time.Microsecond),
	)
}
