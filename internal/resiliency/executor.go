package resiliency

import (
	"context"
	"time"
)

// Executor composes multiple resiliency patterns.
type Executor struct {
	circuitBreaker *CircuitBreaker
	retry          *Retry
	rateLimiter    *RateLimiter
	bulkhead       *Bulkhead
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resiliency executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.circuitBreaker = cb
	}
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// WithRateLimiter adds rate limiting to the executor.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.rateLimiter = rl
	}
}

// WithBulkhead adds bulkhead isolation to the executor.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) {
		e.bulkhead = b
	}
}

// WithTimeout adds timeout to the executor.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout})
	}
}

// WithTimeoutConfig adds timeout with custom config to the executor.
func WithTimeoutConfig(t *Timeout) ExecutorOption {
	return func(e *Executor) {
		e.timeout = t
	}
}

// Execute runs the operation through all configured resiliency patterns.
//
// The execution order, innermost first, is:
//
//  1. Circuit Breaker - fails fast without invoking the target when open
//  2. Retry - retries a failing call; each attempt is also recorded by
//     the circuit breaker above it
//  3. Bulkhead - bounds in-flight work, including retried attempts, to a
//     fixed number of concurrent slots
//  4. Rate Limiter - throttles admission into the bulkhead
//  5. Time Limiter - bounds the whole decorated call, outermost
//
// This order is load-bearing: retries must count against the circuit
// breaker, the bulkhead must bound retried attempts (not just the initial
// one), and the rate limiter must throttle admission to the bulkhead
// rather than to each individual retry.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	// Build the execution chain from inside out.
	execute := op

	// Wrap with circuit breaker (innermost).
	if e.circuitBreaker != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.circuitBreaker.Execute(ctx, inner)
		}
	}

	// Wrap with retry.
	if e.retry != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.retry.Execute(ctx, inner)
		}
	}

	// Wrap with bulkhead.
	if e.bulkhead != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.bulkhead.Execute(ctx, inner)
		}
	}

	// Wrap with rate limiter.
	if e.rateLimiter != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.rateLimiter.Execute(ctx, inner)
		}
	}

	// Wrap with time limiter (outermost).
	if e.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}
