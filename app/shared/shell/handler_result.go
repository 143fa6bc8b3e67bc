package shell

import "time"

// HandlerResult represents the outcome of a command handler execution.
// Command results embed it, so the observable wrapper can classify the outcome
// without knowing the concrete result type.
type HandlerResult struct {
	// Idempotent indicates whether the operation was idempotent (no state change needed).
	// This is a first-class business outcome, not an error condition.
	Idempotent bool `json:"-"`

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int `json:"-"`

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	TotalRetryDelay time.Duration `json:"-"`

	// LastErrorType describes the type of the final error encountered during retries.
	LastErrorType string `json:"-"`

	// RetriesExhausted indicates whether max retry attempts were reached with a retryable error.
	RetriesExhausted bool `json:"-"`
}

// BusinessOutcome classifies a successful result as StatusIdempotent or StatusSuccess.
func (r HandlerResult) BusinessOutcome() string {
	if r.Idempotent {
		return StatusIdempotent
	}

	return StatusSuccess
}

// RetryMetadata returns the result itself, so the wrapper can read it from any embedding type.
func (r HandlerResult) RetryMetadata() HandlerResult {
	return r
}

// NewSuccessResult creates a HandlerResult for operations that changed state.
func NewSuccessResult(retryMetrics RetryMetrics) HandlerResult {
	return newResult(false, retryMetrics)
}

// NewIdempotentResult creates a HandlerResult for operations that had nothing to change.
func NewIdempotentResult(retryMetrics RetryMetrics) HandlerResult {
	return newResult(true, retryMetrics)
}

// NewErrorResult creates a HandlerResult for failed operations that still report retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return newResult(false, retryMetrics)
}

// SingleAttempt is the retry metadata of a handler that does not retry.
func SingleAttempt(err error) RetryMetrics {
	return RetryMetrics{
		Attempts:      1,
		LastErrorType: ErrorTypeOf(err),
	}
}

func newResult(idempotent bool, retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		Idempotent:       idempotent,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
