// Package observe provides OpenTelemetry-based observability for payment
// message processing.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. cmd/paygate constructs a single Observer at
// startup and wires it into the HTTP ingress layer, the Flow Engine's
// dispatch step, the queue drain loop, and the health monitor.
//
// # Overview
//
// observe provides three observability pillars:
//   - Tracing: OpenTelemetry spans with message metadata attributes
//   - Metrics: Processing counters and duration histograms
//   - Logging: Structured JSON logging with automatic field redaction
//
// # Core Components
//
//   - [Observer]: Main facade providing Tracer, Meter, and Logger access
//   - [Tracer]: Span creation with message metadata as span attributes
//   - [Metrics]: Records processing counts, errors, and duration histograms
//   - [Logger]: Structured JSON logging with sensitive field redaction
//   - [Middleware]: Wraps ExecuteFunc with complete observability
//
// # Quick Start
//
//	cfg := observe.Config{
//	    ServiceName: "paygate",
//	    Version:     "1.0.0",
//	    Tracing:     observe.TracingConfig{Enabled: true, Exporter: "otlp", SamplePct: 1.0},
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	}
//
//	obs, err := observe.NewObserver(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer obs.Shutdown(ctx)
//
//	// Create middleware and wrap the dispatch step
//	mw, _ := observe.MiddlewareFromObserver(obs)
//	flowCfg := flow.Config{ /* ... */ Middleware: mw}
//
//	// Process — dispatch to the clearing adapter is automatically
//	// traced, metered, and logged under the message's MessageMeta
//
// # Telemetry Details
//
// Tracing creates spans with deterministic names:
//   - With namespace: "message.process.<namespace>.<name>" (e.g., "message.process.acmebank.pacs.008")
//   - Without namespace: "message.process.<name>" (e.g., "message.process.pain.001")
//
// Span attributes include:
//   - message.id: The FlowRecord's correlation ID
//   - message.type: ISO 20022 message type, e.g. pacs.008 (required)
//   - message.tenant: Owning tenant ID (if set)
//   - message.scheme: Clearing system code the message routed to (if set)
//   - message.category: Message category (if set)
//   - message.tags: Free-form discovery tags (if set)
//   - message.error: Boolean indicating dispatch failure
//
// Metrics recorded:
//   - message.process.total (counter): Total messages dispatched
//   - message.process.errors (counter): Total dispatch errors
//   - message.process.duration_ms (histogram): Dispatch duration distribution in milliseconds
//
// All metrics include labels: message.id, message.type, message.tenant (if set).
//
// # Sensitive Field Redaction
//
// The logger automatically redacts these fields to prevent credential leakage:
//   - input, inputs
//   - password, secret, token
//   - api_key, apiKey, credential
//
// See [RedactedFields] for the complete list.
//
// # Exporter Configuration
//
// Tracing exporters:
//   - "otlp": OTLP gRPC (requires OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_TRACES_ENDPOINT)
//   - "jaeger": Jaeger via OTLP (requires OTEL_EXPORTER_JAEGER_ENDPOINT)
//   - "stdout": Console output for development
//   - "none" or "": Disabled (no-op)
//
// Metrics exporters:
//   - "otlp": OTLP gRPC (requires OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_METRICS_ENDPOINT)
//   - "prometheus": Prometheus scrape endpoint
//   - "stdout": Console output for development
//   - "none" or "": Disabled (no-op)
//
// # Thread Safety
//
// All exported types are safe for concurrent use after construction:
//   - [Observer]: Tracer(), Meter(), Logger() are safe; Shutdown() is idempotent
//   - [Tracer]: StartSpan() and EndSpan() are safe for concurrent use
//   - [Metrics]: RecordExecution() is safe for concurrent use
//   - [Logger]: All logging methods are mutex-protected
//   - [Middleware]: Wrap() returns a thread-safe ExecuteFunc
//
// # Error Handling
//
// Configuration errors (use errors.Is for checking):
//   - [ErrMissingServiceName]: Config.ServiceName is empty
//   - [ErrInvalidSamplePct]: Tracing.SamplePct not in [0.0, 1.0]
//   - [ErrInvalidTracingExporter]: Unknown tracing exporter name
//   - [ErrInvalidMetricsExporter]: Unknown metrics exporter name
//   - [ErrInvalidLogLevel]: Unknown log level
//
// Exporter errors:
//   - [ErrEndpointNotConfigured]: Required endpoint env var not set
//
// Runtime errors:
//   - [ErrNilObserver]: Nil Observer passed to function
//   - [ErrMissingMessageType]: MessageMeta.Name is empty
//
// Example error handling:
//
//	obs, err := observe.NewObserver(ctx, cfg)
//	if errors.Is(err, observe.ErrMissingServiceName) {
//	    // Handle missing service name
//	}
//	if errors.Is(err, observe.ErrEndpointNotConfigured) {
//	    // Handle missing OTLP endpoint
//	}
//
// # Integration with paygate
//
// observe integrates with other paygate packages:
//   - internal/flow: Middleware wraps the Flow Engine's dispatch step
//     (step 6), so every clearing-adapter call is traced, metered, and
//     logged under the message's tenant/type/scheme
//   - internal/ingress: HTTP middleware instruments inbound API requests
//   - internal/queue, internal/monitor: structured logging for the drain
//     loop and circuit-breaker recovery
package observe
