package resiliency

import "errors"

// Sentinel errors for resiliency operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resiliency: circuit breaker is open")

	// ErrMaxRetriesExceeded is returned when max retry attempts are exhausted.
	ErrMaxRetriesExceeded = errors.New("resiliency: max retries exceeded")

	// ErrRateLimitExceeded is returned when the rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("resiliency: rate limit exceeded")

	// ErrBulkheadFull is returned when the bulkhead is at capacity.
	ErrBulkheadFull = errors.New("resiliency: bulkhead at capacity")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("resiliency: operation timed out")
)
