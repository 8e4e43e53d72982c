package resiliency

import (
	"strings"
	"sync"
	"time"
)

// PolicyConfig is the per-service configuration from which an Executor is
// built: one CircuitBreakerConfig, RetryConfig, BulkheadConfig,
// RateLimiterConfig, and TimeoutConfig, matching a ResiliencyPolicy.
type PolicyConfig struct {
	CircuitBreaker CircuitBreakerConfig
	Retry          RetryConfig
	Bulkhead       BulkheadConfig
	RateLimiter    RateLimiterConfig
	Timeout        TimeoutConfig
}

// DefaultPolicyConfig returns the registry-wide defaults: failure-rate
// threshold 50% over a sliding window of 20 calls with a minimum of 5,
// 30s open-state wait, 5 half-open trial calls, 3 retry attempts at
// 500ms fixed delay, 20-concurrent/2s-queue bulkhead, 100/s rate limit
// with a 500ms acquisition timeout, and a 30s time limiter.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		CircuitBreaker: CircuitBreakerConfig{
			WindowSize:           20,
			MinimumCalls:         5,
			FailureRateThreshold: 0.5,
			ResetTimeout:         30 * time.Second,
			HalfOpenMaxRequests:  5,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			Strategy:     BackoffConstant,
		},
		Bulkhead: BulkheadConfig{
			MaxConcurrent: 20,
			MaxWait:       2 * time.Second,
		},
		RateLimiter: RateLimiterConfig{
			Rate:        100,
			Burst:       100,
			WaitOnLimit: true,
			MaxWait:     500 * time.Millisecond,
		},
		Timeout: TimeoutConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// entry bundles the built Executor and CircuitBreaker for a service so the
// monitor can reach the breaker directly (ForceOpen/Reset/Metrics) without
// walking through Executor internals.
type entry struct {
	executor *Executor
	breaker  *CircuitBreaker
}

// Registry resolves a per-service Executor from configured policies,
// falling back to a registry-wide default. Resolution is exact-name-match
// first, then case-insensitive alphanumeric-normalized "contains" match,
// then the default policy. The resolved Executor is cached per service
// name until explicitly invalidated.
type Registry struct {
	mu       sync.RWMutex
	defaults PolicyConfig
	policies map[string]PolicyConfig // configured name -> policy
	cache    map[string]*entry       // resolved service name -> built executor
}

// NewRegistry creates a policy registry using defaults as the fallback
// policy for any service name with no configured or fuzzy-matched policy.
func NewRegistry(defaults PolicyConfig) *Registry {
	return &Registry{
		defaults: defaults,
		policies: make(map[string]PolicyConfig),
		cache:    make(map[string]*entry),
	}
}

// Configure installs or replaces the policy for a named service and
// invalidates any cached resolution for that exact name. It does not
// invalidate fuzzy-matched entries already cached under other names;
// call Invalidate or InvalidateAll if those should be recomputed too.
func (r *Registry) Configure(serviceName string, policy PolicyConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[serviceName] = policy
	delete(r.cache, serviceName)
}

// Invalidate drops the cached Executor for a service name so the next
// Resolve rebuilds it from the current policy set.
func (r *Registry) Invalidate(serviceName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, serviceName)
}

// InvalidateAll drops every cached Executor.
func (r *Registry) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*entry)
}

// Resolve returns the Executor for a service name, building and caching it
// on first use. Resolution order: exact match on a configured policy name,
// then case-insensitive alphanumeric-normalized contains match, then the
// registry default.
func (r *Registry) Resolve(serviceName string) *Executor {
	return r.resolve(serviceName).executor
}

// Breaker returns the CircuitBreaker backing a service name's Executor,
// for administrative operations (ForceOpen/Reset) and health metrics.
func (r *Registry) Breaker(serviceName string) *CircuitBreaker {
	return r.resolve(serviceName).breaker
}

func (r *Registry) resolve(serviceName string) *entry {
	r.mu.RLock()
	if e, ok := r.cache[serviceName]; ok {
		r.mu.RUnlock()
		return e
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock in case another goroutine resolved
	// this service name while we waited.
	if e, ok := r.cache[serviceName]; ok {
		return e
	}

	policy := r.lookupPolicyLocked(serviceName)
	e := buildEntry(policy)
	r.cache[serviceName] = e
	return e
}

func (r *Registry) lookupPolicyLocked(serviceName string) PolicyConfig {
	if p, ok := r.policies[serviceName]; ok {
		return p
	}

	normalizedTarget := normalizeServiceName(serviceName)
	for name, p := range r.policies {
		if strings.Contains(normalizeServiceName(name), normalizedTarget) ||
			strings.Contains(normalizedTarget, normalizeServiceName(name)) {
			return p
		}
	}

	return r.defaults
}

func buildEntry(policy PolicyConfig) *entry {
	cb := NewCircuitBreaker(policy.CircuitBreaker)
	executor := NewExecutor(
		WithCircuitBreaker(cb),
		WithRetry(NewRetry(policy.Retry)),
		WithBulkhead(NewBulkhead(policy.Bulkhead)),
		WithRateLimiter(NewRateLimiter(policy.RateLimiter)),
		WithTimeoutConfig(NewTimeout(policy.Timeout)),
	)
	return &entry{executor: executor, breaker: cb}
}

// normalizeServiceName lowercases and strips every non-alphanumeric rune,
// matching the fuzzy-match rule: case-insensitive, alphanumeric-normalized
// contains.
func normalizeServiceName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
