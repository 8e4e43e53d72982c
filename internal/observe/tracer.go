package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// MessageMeta carries the identifying attributes of a payment message as
// it moves through the Flow Engine, for attachment to spans, metrics, and
// log lines.
type MessageMeta struct {
	ID        string   // Fully qualified message key (tenant.messageType or just messageType)
	Namespace string   // Tenant ID that owns the message (may be empty)
	Name      string   // ISO 20022 message type, e.g. pacs.008 (required)
	Version   string   // Clearing scheme code the message was routed to (optional)
	Tags      []string // Free-form labels for discovery (optional)
	Category  string   // Message category, e.g. "credit-transfer" (optional)
}

// Validate reports whether the metadata is well-formed. A MessageMeta
// with no Name cannot produce a meaningful span name or metric label.
func (m MessageMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingMessageType
	}
	return nil
}

// SpanName returns the deterministic span name for this message.
// Format: message.process.<namespace>.<name> or message.process.<name>
func (m MessageMeta) SpanName() string {
	if m.Namespace != "" {
		return "message.process." + m.Namespace + "." + m.Name
	}
	return "message.process." + m.Name
}

// MessageKey returns the fully qualified message identifier.
// If ID field is set, returns it. Otherwise constructs from tenant and message type.
func (m MessageMeta) MessageKey() string {
	if m.ID != "" {
		return m.ID
	}
	if m.Namespace != "" {
		return m.Namespace + "." + m.Name
	}
	return m.Name
}

// Tracer wraps OpenTelemetry tracing with per-message span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan derives the span's context from ctx; it does not check ctx for cancellation.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for message processing.
	StartSpan(ctx context.Context, meta MessageMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with message metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta MessageMeta) (context.Context, trace.Span) {
	spanName := meta.SpanName()

	// Build attributes
	attrs := []attribute.KeyValue{
		attribute.String("message.id", meta.MessageKey()),
		attribute.String("message.type", meta.Name),
		attribute.Bool("message.error", false), // Will be updated in EndSpan if error
	}

	// Add namespace if present
	if meta.Namespace != "" {
		attrs = append(attrs, attribute.String("message.tenant", meta.Namespace))
	}

	// Add optional attributes if present
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("message.scheme", meta.Version))
	}
	if meta.Category != "" {
		attrs = append(attrs, attribute.String("message.category", meta.Category))
	}
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("message.tags", meta.Tags))
	}

	ctx, span := t.tracer.Start(ctx, spanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("message.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta MessageMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
