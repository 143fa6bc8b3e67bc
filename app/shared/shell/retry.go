package shell

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/store"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3

	// RetryAttemptsMetric counts retries by operation, attempt number and error type.
	RetryAttemptsMetric = "retry_attempts_total"

	// RetryDelayMetric tracks the backoff delay before each retry.
	RetryDelayMetric = "retry_delay_seconds"

	// RetryExhaustedMetric counts operations that failed with a retryable error on their last attempt.
	RetryExhaustedMetric = "retry_exhausted_total"

	// ErrorTypeNone and the other ErrorType values label the error that ended an attempt.
	ErrorTypeNone            = "none"
	ErrorTypeRejected        = "rejected"
	ErrorTypeRecordNotFound  = "record_not_found"
	ErrorTypeContextCanceled = "context_canceled"
	ErrorTypeContextDeadline = "context_deadline_exceeded"
	ErrorTypeDatabase        = "database"
	ErrorTypeOther           = "other"

	labelOperation      = "operation"
	labelAttemptNumber  = "attempt_number"
	labelErrorType      = "error_type"
	labelFinalErrorType = "final_error_type"
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyOperation is returned when an empty operation name is provided to WithMetrics.
	ErrEmptyOperation = errors.New("operation must not be empty")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")

	// ErrNilRetryPredicate is returned when a nil predicate is provided to WithRetryIf.
	ErrNilRetryPredicate = errors.New("retry predicate must not be nil")
)

// RetryableFunc represents a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics describes how a retried operation went.
type RetryMetrics struct {
	Attempts         int
	TotalDelay       time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	retryIf          func(error) bool
	metricsCollector MetricsCollector
	operation        string
}

// RetryWithExponentialBackoff executes fn and retries it with exponential backoff and jitter
// as long as it fails with a retryable error and attempts are left.
//
// Retry Schedule (default): 0 ms, 10 ms, 20 ms, 40 ms, 80 ms, 160 ms (with 30% jitter)
//
// By default every error is retryable except business rejections and context errors (see IsTransientError).
// WithRetryIf narrows this down, e.g. to a single sentinel error.
func RetryWithExponentialBackoff(
	ctx context.Context,
	fn RetryableFunc,
	options ...RetryOption,
) (RetryMetrics, error) {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
		retryIf:      IsTransientError,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryMetrics{}, err
		}
	}

	meta := RetryMetrics{LastErrorType: ErrorTypeNone}

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // math/rand is sufficient for jitter
			backoffDelay := delay + time.Duration(jitter)

			config.recordDelay(ctx, attempt, backoffDelay)

			select {
			case <-time.After(backoffDelay):
				meta.TotalDelay += backoffDelay
			case <-ctx.Done():
				meta.LastErrorType = ErrorTypeOf(ctx.Err())
				return meta, ctx.Err()
			}
		}

		meta.Attempts++

		lastErr = fn(ctx)
		meta.LastErrorType = ErrorTypeOf(lastErr)

		if lastErr == nil {
			return meta, nil
		}

		if !config.retryIf(lastErr) {
			return meta, lastErr
		}

		if attempt < config.maxAttempts-1 {
			config.recordAttempt(ctx, attempt+1, lastErr)
		}
	}

	meta.RetriesExhausted = true
	config.recordExhausted(ctx, lastErr)

	return meta, lastErr
}

// IsTransientError reports whether err might go away on its own: anything except
// business rejections and context cancellation or deadline.
func IsTransientError(err error) bool {
	if err == nil || core.IsRejection(err) {
		return false
	}

	return !IsCancellationError(err) && !IsTimeoutError(err)
}

// ErrorTypeOf extracts a string representation of the error type for metrics labeling.
func ErrorTypeOf(err error) string {
	switch {
	case err == nil:
		return ErrorTypeNone
	case core.IsRejection(err):
		return ErrorTypeRejected
	case errors.Is(err, context.Canceled):
		return ErrorTypeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeContextDeadline
	case errors.Is(err, store.ErrRecordNotFound):
		return ErrorTypeRecordNotFound
	case errors.Is(err, store.ErrQueryingFailed),
		errors.Is(err, store.ErrExecutingFailed),
		errors.Is(err, store.ErrTransactionFailed),
		errors.Is(err, store.ErrScanningRowFailed):
		return ErrorTypeDatabase
	default:
		return ErrorTypeOther
	}
}

func (c *retryConfig) recordDelay(ctx context.Context, attempt int, backoffDelay time.Duration) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation:     c.operation,
		labelAttemptNumber: strconv.Itoa(attempt),
	}

	if contextualCollector, ok := c.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, RetryDelayMetric, backoffDelay, labels)
	} else {
		c.metricsCollector.RecordDuration(RetryDelayMetric, backoffDelay, labels)
	}
}

func (c *retryConfig) recordAttempt(ctx context.Context, attemptNumber int, lastErr error) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation:     c.operation,
		labelAttemptNumber: strconv.Itoa(attemptNumber),
		labelErrorType:     ErrorTypeOf(lastErr),
	}

	if contextualCollector, ok := c.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, RetryAttemptsMetric, labels)
	} else {
		c.metricsCollector.IncrementCounter(RetryAttemptsMetric, labels)
	}
}

func (c *retryConfig) recordExhausted(ctx context.Context, lastErr error) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation:      c.operation,
		labelFinalErrorType: ErrorTypeOf(lastErr),
	}

	if contextualCollector, ok := c.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, RetryExhaustedMetric, labels)
	} else {
		c.metricsCollector.IncrementCounter(RetryExhaustedMetric, labels)
	}
}

// RetryOption configures retry behavior using the functional options pattern.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of attempts, the first one included.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, baseDelay*8, etc.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter, as a fraction of the backoff delay, between 0.0 and 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryIf replaces the predicate that decides whether an error is retried.
func WithRetryIf(retryable func(error) bool) RetryOption {
	return func(config *retryConfig) error {
		if retryable == nil {
			return ErrNilRetryPredicate
		}

		config.retryIf = retryable

		return nil
	}
}

// WithMetrics sets the metrics collector for retry instrumentation, labeled with operation.
func WithMetrics(collector MetricsCollector, operation string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if operation == "" {
			return ErrEmptyOperation
		}

		config.metricsCollector = collector
		config.operation = operation

		return nil
	}
}
