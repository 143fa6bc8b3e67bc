package oteladapters

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"

	"github.com/readingcorner/library-circulation/store"
)

const (
	logAttrTraceID = "trace_id"
	logAttrSpanID  = "span_id"
)

// SlogBridgeLogger implements store.ContextualLogger and store.Logger on top of log/slog.
type SlogBridgeLogger struct {
	logger *slog.Logger
}

// NewSlogBridgeLogger creates a logger that emits through the OpenTelemetry slog bridge,
// using the global LoggerProvider.
func NewSlogBridgeLogger(name string) *SlogBridgeLogger {
	return NewSlogBridgeLoggerWithProvider(name, global.GetLoggerProvider())
}

// NewSlogBridgeLoggerWithProvider creates a logger that emits through the OpenTelemetry slog bridge
// into the given LoggerProvider.
func NewSlogBridgeLoggerWithProvider(name string, provider log.LoggerProvider) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(name, otelslog.WithLoggerProvider(provider))}
}

// NewSlogBridgeLoggerWithHandler creates a logger on top of a plain slog.Handler.
// Records logged with a context that carries a valid span get trace_id and span_id attributes.
func NewSlogBridgeLoggerWithHandler(handler slog.Handler) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: slog.New(traceCorrelationHandler{Handler: handler})}
}

// Slog exposes the underlying slog.Logger, e.g. for request logging middleware.
func (l *SlogBridgeLogger) Slog() *slog.Logger {
	return l.logger
}

func (l *SlogBridgeLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *SlogBridgeLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogBridgeLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogBridgeLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

var (
	_ store.ContextualLogger = (*SlogBridgeLogger)(nil)
	_ store.Logger           = (*SlogBridgeLogger)(nil)
)

// traceCorrelationHandler adds the ids of the active span to every record.
type traceCorrelationHandler struct {
	slog.Handler
}

func (h traceCorrelationHandler) Handle(ctx context.Context, record slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		record.AddAttrs(
			slog.String(logAttrTraceID, spanCtx.TraceID().String()),
			slog.String(logAttrSpanID, spanCtx.SpanID().String()),
		)
	}

	return h.Handler.Handle(ctx, record)
}

func (h traceCorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceCorrelationHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h traceCorrelationHandler) WithGroup(name string) slog.Handler {
	return traceCorrelationHandler{Handler: h.Handler.WithGroup(name)}
}
