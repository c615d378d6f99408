// Package observability threads build-scoped log attributes (build id, stage,
// collector) through a context and logs with them.
package observability

import (
	"context"
	"log/slog"

	"github.com/bayoss/landscape2/internal/logfields"
)

// LogContext is the set of build-scoped attributes carried by a context.
type LogContext struct {
	BuildID   string
	Stage     string
	Collector string
}

// Attrs returns the non-empty fields as log attributes.
func (lc LogContext) Attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 3)
	if lc.BuildID != "" {
		attrs = append(attrs, logfields.BuildID(lc.BuildID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, logfields.Stage(lc.Stage))
	}
	if lc.Collector != "" {
		attrs = append(attrs, logfields.Collector(lc.Collector))
	}
	return attrs
}

type logContextKey struct{}

func with(ctx context.Context, set func(*LogContext)) context.Context {
	lc := GetContext(ctx)
	set(&lc)
	return context.WithValue(ctx, logContextKey{}, lc)
}

// WithBuildID tags ctx with the id of the running build.
func WithBuildID(ctx context.Context, id string) context.Context {
	return with(ctx, func(lc *LogContext) { lc.BuildID = id })
}

// WithStage tags ctx with the running stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return with(ctx, func(lc *LogContext) { lc.Stage = stage })
}

// WithCollector tags ctx with the external data collector doing the work.
func WithCollector(ctx context.Context, name string) context.Context {
	return with(ctx, func(lc *LogContext) { lc.Collector = name })
}

// GetContext returns the attributes carried by ctx. A nil ctx has none.
func GetContext(ctx context.Context) LogContext {
	if ctx == nil {
		return LogContext{}
	}
	lc, _ := ctx.Value(logContextKey{}).(LogContext)
	return lc
}

func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelInfo, msg, attrs)
}

func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelWarn, msg, attrs)
}

func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelError, msg, attrs)
}

func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelDebug, msg, attrs)
}

func log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !slog.Default().Enabled(ctx, level) {
		return
	}
	slog.LogAttrs(ctx, level, msg, append(GetContext(ctx).Attrs(), attrs...)...)
}
