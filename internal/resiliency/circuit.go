package resiliency

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is blocking all requests.
	StateOpen
	// StateHalfOpen means the circuit is testing if the service recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
//
// The breaker evaluates failures over a sliding window of the last
// WindowSize calls rather than a running consecutive-failure count, so a
// single stale failure ages out instead of permanently lowering the bar
// for tripping.
type CircuitBreakerConfig struct {
	// WindowSize is the number of most recent call outcomes considered
	// when computing the failure rate.
	// Default: 20
	WindowSize int

	// MinimumCalls is the number of calls that must have been recorded in
	// the window before the failure rate is evaluated at all. Below this,
	// the circuit stays closed regardless of rate.
	// Default: 5
	MinimumCalls int

	// FailureRateThreshold is the fraction (0..1) of failures in the
	// window that trips the circuit to open.
	// Default: 0.5
	FailureRateThreshold float64

	// ResetTimeout is how long to wait before attempting recovery.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxRequests is the number of trial calls allowed in the
	// half-open state before the circuit decides to close or reopen.
	// Default: 5
	HalfOpenMaxRequests int

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)

	// IsFailure determines if an error should count as a failure.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool
}

// CircuitBreaker implements a sliding-window circuit breaker.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu sync.Mutex

	state         State
	lastFailure   time.Time
	halfOpenCount int
	halfOpenOK    int

	window    []bool // true = failure, ring buffer
	windowPos int
	windowLen int
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.WindowSize <= 0 {
		config.WindowSize = 20
	}
	if config.MinimumCalls <= 0 {
		config.MinimumCalls = 5
	}
	if config.FailureRateThreshold <= 0 {
		config.FailureRateThreshold = 0.5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 5
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
		window: make([]bool, config.WindowSize),
	}
}

// Execute runs the operation through the circuit breaker.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := op(ctx)
	cb.afterRequest(err)
	return err
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset resets the circuit breaker to closed state, clearing the window.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = StateClosed
	cb.halfOpenCount = 0
	cb.halfOpenOK = 0
	cb.windowPos = 0
	cb.windowLen = 0
	for i := range cb.window {
		cb.window[i] = false
	}

	if oldState != StateClosed && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, StateClosed)
	}
}

// ForceOpen trips the breaker regardless of the current window. Used by the
// self-healing monitor's forceReset administrative counterpart when a
// service is observed failing out-of-band.
func (cb *CircuitBreaker) ForceOpen() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.lastFailure = time.Now()
	cb.setStateLocked(StateOpen)
	if oldState != cb.state && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, cb.state)
	}
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state := cb.currentStateLocked()

	switch state {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.halfOpenCount >= cb.config.HalfOpenMaxRequests {
			return ErrCircuitOpen
		}
		cb.halfOpenCount++
	}

	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	isFailure := cb.config.IsFailure(err)
	oldState := cb.state

	switch cb.state {
	case StateClosed:
		cb.recordLocked(isFailure)
		if isFailure {
			cb.lastFailure = time.Now()
		}
		if cb.shouldTripLocked() {
			cb.setStateLocked(StateOpen)
		}

	case StateHalfOpen:
		if isFailure {
			cb.lastFailure = time.Now()
			cb.setStateLocked(StateOpen)
		} else {
			cb.halfOpenOK++
			if cb.halfOpenOK >= cb.config.HalfOpenMaxRequests {
				cb.setStateLocked(StateClosed)
			}
		}
	}

	if oldState != cb.state && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, cb.state)
	}
}

// recordLocked appends an outcome to the sliding window.
func (cb *CircuitBreaker) recordLocked(isFailure bool) {
	cb.window[cb.windowPos] = isFailure
	cb.windowPos = (cb.windowPos + 1) % len(cb.window)
	if cb.windowLen < len(cb.window) {
		cb.windowLen++
	}
}

// shouldTripLocked evaluates the failure rate over the current window.
func (cb *CircuitBreaker) shouldTripLocked() bool {
	if cb.windowLen < cb.config.MinimumCalls {
		return false
	}
	failures := 0
	for i := 0; i < cb.windowLen; i++ {
		if cb.window[i] {
			failures++
		}
	}
	rate := float64(failures) / float64(cb.windowLen)
	return rate >= cb.config.FailureRateThreshold
}

func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && time.Since(cb.lastFailure) >= cb.config.ResetTimeout {
		cb.setStateLocked(StateHalfOpen)
		if cb.config.OnStateChange != nil {
			cb.config.OnStateChange(StateOpen, StateHalfOpen)
		}
	}
	return cb.state
}

func (cb *CircuitBreaker) setStateLocked(state State) {
	cb.state = state
	switch state {
	case StateHalfOpen:
		cb.halfOpenCount = 0
		cb.halfOpenOK = 0
	case StateClosed:
		cb.windowPos = 0
		cb.windowLen = 0
		for i := range cb.window {
			cb.window[i] = false
		}
	}
}

// Metrics returns current circuit breaker metrics.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	failures := 0
	for i := 0; i < cb.windowLen; i++ {
		if cb.window[i] {
			failures++
		}
	}
	var rate float64
	if cb.windowLen > 0 {
		rate = float64(failures) / float64(cb.windowLen)
	}

	return CircuitBreakerMetrics{
		State:       cb.currentStateLocked(),
		Failures:    failures,
		WindowCalls: cb.windowLen,
		FailureRate: rate,
		LastFailure: cb.lastFailure,
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	WindowCalls int
	FailureRate float64
	LastFailure time.Time
}
