// Package resiliency provides the resiliency patterns applied to every
// outbound clearing-adapter call: circuit breaker, retry, bulkhead, rate
// limiter, and timeout. Patterns compose via the Executor to build a
// single decorated call out of independently testable pieces.
//
// # Ecosystem Position
//
// resiliency sits between the flow engine's dispatch step and the
// clearing adapter's outbound call:
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Dispatch Flow                               │
//	├─────────────────────────────────────────────────────────────────┤
//	│                                                                 │
//	│   flow              resiliency              clearing            │
//	│   ┌──────┐         ┌───────────┐           ┌─────────┐         │
//	│   │Engine│────────▶│ Executor  │──────────▶│ Adapter │         │
//	│   │Dispat│         │           │           │(scheme) │         │
//	│   └──────┘         │ ┌───────┐ │           └─────────┘         │
//	│                    │ │Timeout│ │                                │
//	│                    │ ├───────┤ │                                │
//	│                    │ │RateLim│ │                                │
//	│                    │ ├───────┤ │                                │
//	│                    │ │Bulkhd │ │                                │
//	│                    │ ├───────┤ │                                │
//	│                    │ │ Retry │ │                                │
//	│                    │ ├───────┤ │                                │
//	│                    │ │Circuit│ │                                │
//	│                    │ └───────┘ │                                │
//	│                    └───────────┘                                │
//	│                                                                 │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Resiliency Patterns
//
// The package provides five core patterns:
//
//   - [CircuitBreaker]: Prevents cascading failures by stopping requests
//     to failing services after a sliding-window failure-rate breach.
//     Transitions through Closed → Open → HalfOpen states.
//
//   - [Retry]: Automatically retries failed operations with configurable
//     backoff strategies (fixed-delay by default, exponential/linear
//     available) and jitter.
//
//   - [RateLimiter]: Token bucket rate limiting to prevent overwhelming
//     downstream services. Supports burst allowance and wait-on-limit.
//
//   - [Bulkhead]: Semaphore-based concurrency limiting to prevent resource
//     exhaustion and isolate failures.
//
//   - [Timeout]: Context-based timeout to ensure operations complete within
//     a time limit.
//
// # Quick Start
//
//	// Individual pattern usage
//	cb := resiliency.NewCircuitBreaker(resiliency.CircuitBreakerConfig{
//	    WindowSize:           20,
//	    MinimumCalls:         5,
//	    FailureRateThreshold: 0.5,
//	    ResetTimeout:         30 * time.Second,
//	})
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    return callClearingAdapter(ctx)
//	})
//
//	// Composed patterns with Executor
//	executor := resiliency.NewExecutor(
//	    resiliency.WithCircuitBreaker(cb),
//	    resiliency.WithRetry(resiliency.NewRetry(resiliency.RetryConfig{
//	        MaxAttempts:  3,
//	        InitialDelay: 500 * time.Millisecond,
//	        Strategy:     resiliency.BackoffConstant,
//	    })),
//	    resiliency.WithBulkhead(resiliency.NewBulkhead(resiliency.BulkheadConfig{
//	        MaxConcurrent: 20,
//	        MaxWait:       2 * time.Second,
//	    })),
//	    resiliency.WithRateLimiter(resiliency.NewRateLimiter(resiliency.RateLimiterConfig{
//	        Rate:    100,
//	        MaxWait: 500 * time.Millisecond,
//	    })),
//	    resiliency.WithTimeout(30*time.Second),
//	)
//
//	err = executor.Execute(ctx, func(ctx context.Context) error {
//	    return callClearingAdapter(ctx)
//	})
//
// # Execution Order
//
// When using the Executor, patterns are applied in this order
// (innermost first, wrapping the target call):
//
//  1. Circuit Breaker - fails fast without invoking the target
//  2. Retry - retries the call; each attempt also updates the breaker
//  3. Bulkhead - bounds in-flight work, including retried attempts
//  4. Rate Limiter - throttles admission into the bulkhead
//  5. Timeout - bounds the entire decorated call (outermost)
//
// This order is load-bearing: it is what makes retries count against
// the circuit breaker and the bulkhead bound retried attempts rather
// than just the first one.
//
// # Thread Safety
//
// All exported types are safe for concurrent use after construction:
//
//   - [CircuitBreaker]: Execute() and State() are mutex-protected; Reset() is safe
//   - [Retry]: Execute() is stateless and safe for concurrent use
//   - [RateLimiter]: Allow(), AllowN(), Wait(), Execute() are mutex-protected
//   - [Bulkhead]: Acquire(), Release(), Execute() use channel-based semaphore
//   - [Timeout]: Execute() is stateless and safe for concurrent use
//   - [Executor]: Execute() is safe; all wrapped patterns maintain their guarantees
//
// # Error Handling
//
// Each pattern returns specific sentinel errors (use errors.Is for checking):
//
//   - [ErrCircuitOpen]: Circuit breaker is in open state, rejecting requests
//   - [ErrMaxRetriesExceeded]: All retry attempts exhausted
//   - [ErrRateLimitExceeded]: Rate limit exceeded and no wait configured
//   - [ErrBulkheadFull]: Bulkhead at maximum concurrency
//   - [ErrTimeout]: Operation exceeded configured timeout
//
// The flow engine maps these onto the gateway error taxonomy's
// AdapterUnavailable, ResourceExhausted, and Timeout kinds.
//
// # Callbacks and Observability
//
// Patterns support callbacks for observability integration:
//
//   - CircuitBreakerConfig.OnStateChange: Called on state transitions
//     (left unset by the Registry's policies)
//   - RetryConfig.OnRetry: Called before each retry attempt
//   - CircuitBreakerConfig.IsFailure: Custom failure classification
//   - RetryConfig.RetryIf: Custom retry decision logic
//
// # Integration with paygate
//
// resiliency integrates with other paygate packages:
//
//   - flow: wraps every outbound clearing-adapter call with an Executor
//     resolved from the Registry by service name
//   - monitor: calls ForceOpen()/Reset() through Registry.Breaker as
//     recovery actions on health-status transitions
//   - ingress: the admin surface reads CircuitBreaker.State() and calls
//     Reset() for operator recovery
package resiliency
