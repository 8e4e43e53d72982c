// Package health provides health checking primitives for paygate's own
// runtime components.
//
// It implements a generic health checking framework for monitoring
// component health — database connectivity, cache/queue reachability,
// process memory pressure — and exposing status via HTTP endpoints
// compatible with Kubernetes probes.
//
// # Ecosystem Position
//
// health integrates with orchestration and load-balancing systems:
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     Health Check Architecture                   │
//	├─────────────────────────────────────────────────────────────────┤
//	│                                                                 │
//	│   Kubernetes          health              Components            │
//	│   ┌─────────┐      ┌───────────┐        ┌───────────┐          │
//	│   │Liveness │─────▶│  HTTP     │        │  Memory   │          │
//	│   │ Probe   │      │ Handlers  │        │  Checker  │          │
//	│   ├─────────┤      │           │        ├───────────┤          │
//	│   │Readiness│─────▶│ /healthz  │◀───────│ Database  │          │
//	│   │ Probe   │      │ /readyz   │        │  Checker  │          │
//	│   └─────────┘      │ /health   │        ├───────────┤          │
//	│                    │           │        │   Redis   │          │
//	│   Load Balancer    │ ┌───────┐ │        │  Checker  │          │
//	│   ┌─────────┐      │ │Aggreg-│◀┼────────┴───────────┘          │
//	│   │ Health  │─────▶│ │ ator  │ │                                │
//	│   │ Checks  │      │ └───────┘ │                                │
//	│   └─────────┘      └───────────┘                                │
//	│                                                                 │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Status Types
//
// The [Status] type represents component health:
//
//   - [StatusHealthy]: Component is functioning normally
//   - [StatusDegraded]: Component is functioning but with issues
//   - [StatusUnhealthy]: Component is not functioning properly
//
// # Core Components
//
//   - [Checker]: Interface for health checks (Name() + Check())
//   - [CheckerFunc]: Adapter for function-based checkers
//   - [Result]: Health check outcome with status, message, details, duration
//   - [Aggregator]: Combines multiple checkers into composite health
//   - [MemoryChecker]: Built-in checker for memory usage thresholds
//
// # Quick Start
//
// cmd/paygate registers two CheckerFunc checkers for the two external
// dependencies every gateway process holds open:
//
//	agg := health.NewAggregator()
//	agg.Register("database", health.NewCheckerFunc("database", func(ctx context.Context) health.Result {
//	    if err := pool.Ping(ctx); err != nil {
//	        return health.Unhealthy("database unreachable", err)
//	    }
//	    return health.Healthy("database reachable")
//	}))
//	agg.Register("redis", health.NewCheckerFunc("redis", func(ctx context.Context) health.Result {
//	    if err := rdb.Ping(ctx).Err(); err != nil {
//	        return health.Unhealthy("redis unreachable", err)
//	    }
//	    return health.Healthy("redis reachable")
//	}))
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// internal/monitor's resiliency sweep also reads [Aggregator] results
// directly: a service's dependency checks reporting Healthy is one of
// the conditions that lets a half-open circuit breaker close.
//
// # HTTP Endpoints
//
// The package provides Kubernetes-compatible HTTP handlers, mounted
// directly on internal/ingress's chi router (the package does not
// assume a particular mux):
//
//   - [LivenessHandler]: Simple /healthz endpoint - always returns 200 if running
//   - [ReadinessHandler]: Runs all checks, returns 503 if any unhealthy
//   - [DetailedHandler]: Returns JSON with full check details, mounted at /health
//   - [SingleCheckHandler]: Check a specific component by name (unwired here —
//     internal/ingress's admin surface exposes equivalent per-service detail
//     cross-referenced with circuit-breaker state instead)
//
// # Aggregation Behavior
//
// The [Aggregator] computes overall status using worst-case logic:
//
//   - If ANY check is Unhealthy → overall Unhealthy
//   - If ANY check is Degraded (and none Unhealthy) → overall Degraded
//   - If ALL checks are Healthy → overall Healthy
//
// Checks can run in parallel (default) or sequentially via [AggregatorConfig].
//
// # Thread Safety
//
// All exported types are safe for concurrent use:
//
//   - [Aggregator]: sync.RWMutex protects registration and check execution
//   - [MemoryChecker]: Stateless, concurrent-safe
//   - [CheckerFunc]: Delegates to user function, ensure your function is safe
//   - [Result]: Immutable after creation
//
// # Error Handling
//
// Sentinel errors (use errors.Is for checking):
//
//   - [ErrCheckFailed]: Generic health check failure
//   - [ErrCheckTimeout]: Check exceeded timeout
//   - [ErrCheckerNotFound]: Named checker not registered
//   - [ErrNoCheckers]: No checkers registered in aggregator
//
// # Integration with paygate
//
// health integrates with other paygate packages:
//
//   - internal/monitor: reads Aggregator results as one signal in circuit
//     breaker recovery decisions
//   - internal/observe: health check failures are logged through the
//     same structured Logger the rest of the gateway uses
//   - internal/ingress: liveness/readiness/detailed handlers are mounted
//     on the admin and public routers
package health
