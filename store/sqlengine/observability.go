package sqlengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/readingcorner/library-circulation/store"
)

const (
	metricQueryDuration  = "store_query_duration_seconds"
	metricExecDuration   = "store_exec_duration_seconds"
	metricDatabaseErrors = "store_database_errors_total"
	spanNameTx           = "store.tx"
	operationTx          = "tx"
	statusSuccess        = "success"
	statusError          = "error"
	statusRolledBack     = "rolled_back"
	spanAttrOperation    = "operation"
	spanAttrStatus       = "status"
	spanAttrErrorType    = "error_type"
	spanAttrDurationMS   = "duration_ms"
	spanAttrDialect      = "db.system"
	errorTypeBeginTx     = "begin_tx"
	errorTypeCommitTx    = "commit_tx"
)

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// logQueryWithDurationContext logs SQL statements with execution time at debug level.
func (e Engine) logQueryWithDurationContext(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	switch {
	case e.contextualLogger != nil:
		e.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	case e.logger != nil:
		e.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

// logOperationContext logs operational information at info level.
func (e Engine) logOperationContext(ctx context.Context, action string, args ...any) {
	switch {
	case e.contextualLogger != nil:
		e.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	case e.logger != nil:
		e.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarnContext logs non-critical issues.
func (e Engine) logWarnContext(ctx context.Context, message string, args ...any) {
	switch {
	case e.contextualLogger != nil:
		e.contextualLogger.WarnContext(ctx, message, args...)
	case e.logger != nil:
		e.logger.Warn(message, args...)
	}
}

// logErrorContext logs error information at error level.
func (e Engine) logErrorContext(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	switch {
	case e.contextualLogger != nil:
		e.contextualLogger.ErrorContext(ctx, message, allArgs...)
	case e.logger != nil:
		e.logger.Error(message, allArgs...)
	}
}

// recordErrorMetricsContext records error metrics with context if the collector supports it.
func (e Engine) recordErrorMetricsContext(ctx context.Context, operation, errorType string) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		spanAttrStatus:    statusError,
		spanAttrErrorType: errorType,
	}

	// Use context-aware method if available
	if contextualCollector, ok := e.metricsCollector.(store.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
	} else {
		e.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

// recordDurationMetricsContext records duration metrics with context if the collector supports it.
func (e Engine) recordDurationMetricsContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation, status string,
) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		spanAttrStatus:    status,
	}

	if contextualCollector, ok := e.metricsCollector.(store.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
	} else {
		e.metricsCollector.RecordDuration(metricName, duration, labels)
	}
}

// === Tracing Observer Pattern ===

// txTracingObserver encapsulates the span lifecycle of one unit of work.
type txTracingObserver struct {
	e    Engine
	span store.SpanContext
}

// startTxTracing starts the unit of work span if the tracing collector is configured.
func (e Engine) startTxTracing(ctx context.Context) (*txTracingObserver, context.Context) {
	if e.tracingCollector == nil {
		return &txTracingObserver{e: e}, ctx
	}

	newCtx, span := e.tracingCollector.StartSpan(ctx, spanNameTx, map[string]string{
		spanAttrOperation: operationTx,
		spanAttrDialect:   e.dialect,
	})

	return &txTracingObserver{e: e, span: span}, newCtx
}

func (o *txTracingObserver) finishSuccess(duration time.Duration) {
	o.finish(statusSuccess, map[string]string{spanAttrDurationMS: formatDuration(duration)})
}

// finishRolledBack marks a unit of work that its callback aborted, e.g. because of a business rejection.
func (o *txTracingObserver) finishRolledBack(duration time.Duration) {
	o.finish(statusRolledBack, map[string]string{spanAttrDurationMS: formatDuration(duration)})
}

func (o *txTracingObserver) finishError(errorType string, duration time.Duration) {
	o.finish(statusError, map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: formatDuration(duration),
	})
}

func (o *txTracingObserver) finish(status string, attrs map[string]string) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(status)
	o.e.tracingCollector.FinishSpan(o.span, status, attrs)
}

func formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.2f", toMilliseconds(duration))
}
