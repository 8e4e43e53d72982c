// Package flow implements the client→scheme Flow Engine: the
// orchestrator that extracts or mints a UETR, opens a FlowRecord,
// validates, routes, transforms, dispatches through the Resiliency
// Executor, shapes the client response, and terminalizes the record.
package flow

import (
	"context"
	"errors"
	"time"

	"github.com/fintechrail/paygate/internal/gatewayerr"
	"github.com/fintechrail/paygate/internal/observe"
	"github.com/fintechrail/paygate/internal/resiliency"
	"github.com/fintechrail/paygate/internal/uetr"
	"github.com/google/uuid"
)

// ResponseMode controls how step 7 shapes the client's response.
type ResponseMode string

const (
	ResponseModeImmediate ResponseMode = "IMMEDIATE"
	ResponseModeAsync     ResponseMode = "ASYNC"
)

// RouteDecision is what the Router (§4.4) resolves a request to.
type RouteDecision struct {
	RouteID            string
	ServiceName        string
	Endpoint           string
	ClearingSystemCode string
}

// Router resolves a request to a clearing destination. Satisfied by
// internal/router.Router; declared here so this package never imports
// internal/router/internal/clearingadapter.
type Router interface {
	Route(ctx context.Context, tenantID, messageType, paymentType, localInstrumentCode string) (RouteDecision, error)
}

// Validator performs structural/XSD validation of an inbound message.
// Structural failures are fatal; everything else returned as warnings
// that are attached to the FlowRecord's metadata.
type Validator interface {
	Validate(ctx context.Context, messageType string, msg uetr.Message) (warnings []string, err error)
}

// Transformer maps a message into the scheme dialect and shapes scheme
// replies back into client-facing messages. Satisfied by
// internal/transform.Transformer.
type Transformer interface {
	Transform(ctx context.Context, decision RouteDecision, messageType string, msg uetr.Message, threadedUETR string) (wireMessage []byte, transformedMessageType string, err error)
	ShapeClientResponse(ctx context.Context, originalMessageType string, schemeResponse []byte, threadedUETR string, accepted bool) ([]byte, error)
}

// AdapterClient performs the actual outbound call to a clearing
// adapter's endpoint. Dispatch (step 6) wraps this in the Resiliency
// Executor resolved for the route's ServiceName.
type AdapterClient interface {
	Send(ctx context.Context, endpoint string, payload []byte) ([]byte, error)
}

// QueueEnqueuer admits a message into the Queued-Message Store when
// the Resiliency Executor reports the circuit open and a fallback is
// configured. Satisfied by internal/queue.Manager.
type QueueEnqueuer interface {
	Enqueue(ctx context.Context, tenantID, serviceName string, payload []byte, expiry time.Duration) error
}

// Correlator registers a FlowRecord left AWAITING_RESPONSE so a later
// inbound scheme response can find it again, and evicts the
// registration once the record reaches a terminal state. Satisfied by
// internal/correlator.Correlator; declared here so this package never
// imports internal/correlator directly.
type Correlator interface {
	Register(correlationID, uetrVal, originalMessageID, originalTransactionID string)
	Evict(uetrVal, originalMessageID, originalTransactionID string)
}

// Request is the Flow Engine's input, per spec.md §4.3.
type Request struct {
	TenantID             string
	MessageType          string
	PaymentType          string
	LocalInstrumentCode  string
	ResponseMode         ResponseMode
	Message              uetr.Message
	RawMessage           []byte
}

// Result is a MessageFlowResult, per spec.md §4.3.
type Result struct {
	MessageID              string
	CorrelationID          string
	Status                 Status
	ClearingSystemCode     string
	TransactionID          string
	TransformedMessage     []byte
	ClearingSystemResponse []byte
	ClientResponse         []byte
	ProcessingTimeMs       int64
	Metadata               map[string]any
}

// Config wires the Engine's collaborators.
type Config struct {
	Store       Store
	Router      Router
	Validator   Validator
	Transformer Transformer
	Client      AdapterClient
	Breakers    *resiliency.Registry
	Queue       QueueEnqueuer
	QueueExpiry time.Duration
	SystemID    string
	Logger      observe.Logger
	// Correlator is optional: a nil Correlator leaves ASYNC-mode
	// records AWAITING_RESPONSE forever, since nothing ever completes
	// them. A deployment that never accepts ASYNC requests can omit it.
	Correlator Correlator
	// Middleware is optional: when set, dispatch (step 6) is traced,
	// metered, and logged per message via observe.Middleware.Wrap. A
	// nil Middleware dispatches directly with no added telemetry.
	Middleware *observe.Middleware
}

// Engine is the client→scheme Flow Engine.
type Engine struct {
	cfg Config
}

// New constructs an Engine.
func New(cfg Config) *Engine {
	if cfg.QueueExpiry <= 0 {
		cfg.QueueExpiry = 72 * time.Hour
	}
	return &Engine{cfg: cfg}
}

// Process runs the full eight-step algorithm for a single inbound
// message.
func (e *Engine) Process(ctx context.Context, req Request) (Result, error) {
	// Step 1: extract or mint UETR.
	threadedUETR := uetr.Extract(req.Message, req.MessageType)
	if threadedUETR == "" || !uetr.Validate(threadedUETR) {
		minted, err := uetr.Generate(req.MessageType, e.cfg.SystemID)
		if err != nil {
			return Result{}, gatewayerr.Wrap(gatewayerr.Internal, "", err)
		}
		threadedUETR = minted
	}

	// Step 2: open FlowRecord.
	correlationID := uuid.NewString()
	rec := NewRecord(correlationID, threadedUETR, req.TenantID, req.MessageType, DirectionClientToScheme)
	if err := e.cfg.Store.Insert(ctx, rec); err != nil {
		return Result{}, gatewayerr.Wrap(gatewayerr.Internal, correlationID, err)
	}

	result := Result{MessageID: correlationID, CorrelationID: correlationID, Metadata: rec.Metadata}

	// Step 3: validate.
	if e.cfg.Validator != nil {
		warnings, err := e.cfg.Validator.Validate(ctx, req.MessageType, req.Message)
		if err != nil {
			rec.Terminalize(StatusFailed, time.Now())
			_ = e.cfg.Store.Update(ctx, rec)
			return Result{}, gatewayerr.Wrap(gatewayerr.ValidationFailed, correlationID, err).WithUETR(threadedUETR)
		}
		if len(warnings) > 0 {
			rec.Metadata["validationWarnings"] = warnings
		}
	}

	// Step 4: route.
	decision, err := e.cfg.Router.Route(ctx, req.TenantID, req.MessageType, req.PaymentType, req.LocalInstrumentCode)
	if err != nil {
		rec.Terminalize(StatusFailed, time.Now())
		_ = e.cfg.Store.Update(ctx, rec)
		return Result{}, gatewayerr.Wrap(gatewayerr.NoRouteAvailable, correlationID, err).WithUETR(threadedUETR)
	}
	rec.ClearingSystemCode = decision.ClearingSystemCode
	result.ClearingSystemCode = decision.ClearingSystemCode

	// Step 5: transform.
	wireMessage, transformedType, err := e.cfg.Transformer.Transform(ctx, decision, req.MessageType, req.Message, threadedUETR)
	if err != nil {
		rec.Terminalize(StatusFailed, time.Now())
		_ = e.cfg.Store.Update(ctx, rec)
		return Result{}, gatewayerr.Wrap(gatewayerr.TransformationRequired, correlationID, err).WithUETR(threadedUETR)
	}
	rec.TransformedMessageType = transformedType
	rec.transition(StatusTransformed)
	result.TransformedMessage = wireMessage
	if err := e.cfg.Store.Update(ctx, rec); err != nil {
		e.log(ctx, "flow: failed to persist transformed state", correlationID, err)
	}

	// Step 6: dispatch through the Resiliency Executor. When Middleware
	// is configured, the call is traced and metered under the scheme's
	// message metadata so per-route latency and error rates surface
	// without the executor itself knowing about tracing.
	rec.transition(StatusDispatched)
	executor := e.cfg.Breakers.Resolve(decision.ServiceName)
	dispatch := func(ctx context.Context, _ observe.MessageMeta, _ any) (any, error) {
		var resp []byte
		err := executor.Execute(ctx, func(ctx context.Context) error {
			r, err := e.cfg.Client.Send(ctx, decision.Endpoint, wireMessage)
			if err != nil {
				return err
			}
			resp = r
			return nil
		})
		return resp, err
	}
	if e.cfg.Middleware != nil {
		dispatch = e.cfg.Middleware.Wrap(dispatch)
	}
	dispatchMeta := observe.MessageMeta{
		ID:        correlationID,
		Namespace: req.TenantID,
		Name:      req.MessageType,
		Version:   decision.ClearingSystemCode,
	}
	dispatchResult, dispatchErr := dispatch(ctx, dispatchMeta, wireMessage)
	var schemeResponse []byte
	if dispatchResult != nil {
		schemeResponse, _ = dispatchResult.([]byte)
	}

	if dispatchErr != nil {
		return e.handleDispatchFailure(ctx, rec, req, decision, wireMessage, dispatchErr, result)
	}

	rec.transition(StatusAwaitingResponse)
	result.ClearingSystemResponse = schemeResponse

	// Step 7: shape the client response.
	clientResponse, err := e.cfg.Transformer.ShapeClientResponse(ctx, req.MessageType, schemeResponse, threadedUETR, req.ResponseMode == ResponseModeAsync)
	if err != nil {
		rec.Terminalize(StatusFailed, time.Now())
		_ = e.cfg.Store.Update(ctx, rec)
		return Result{}, gatewayerr.Wrap(gatewayerr.Internal, correlationID, err).WithUETR(threadedUETR)
	}
	result.ClientResponse = clientResponse

	// Step 8: terminalize.
	if req.ResponseMode == ResponseModeAsync {
		// AWAITING_RESPONSE is left in place; the Correlator completes
		// the record when the scheme callback arrives (see CompleteAsync).
		if e.cfg.Correlator != nil {
			e.cfg.Correlator.Register(correlationID, threadedUETR, "", "")
		}
	} else {
		rec.Terminalize(StatusSuccess, time.Now())
	}
	if err := e.cfg.Store.Update(ctx, rec); err != nil {
		e.log(ctx, "flow: failed to persist terminal state", correlationID, err)
	}

	result.Status = rec.Status
	result.ProcessingTimeMs = rec.ProcessingTimeMs
	result.Metadata = rec.Metadata
	return result, nil
}

// CompleteAsync is the reverse leg: it completes a FlowRecord an
// ASYNC-mode Process call left AWAITING_RESPONSE, once the inbound
// scheme-response path has resolved correlationID via the Correlator.
// A response arriving for an already-terminal record (a duplicate, or
// a late retransmission) is not an error: the existing terminal result
// is returned unchanged rather than re-shaped a second time.
func (e *Engine) CompleteAsync(ctx context.Context, tenantID, correlationID string, schemeResponse []byte, accepted bool) (Result, error) {
	rec, found, err := e.cfg.Store.GetByCorrelationID(ctx, tenantID, correlationID)
	if err != nil {
		return Result{}, gatewayerr.Wrap(gatewayerr.Internal, correlationID, err)
	}
	if !found {
		return Result{}, gatewayerr.New(gatewayerr.OrphanResponse, correlationID, "no FlowRecord open for this correlation id")
	}

	if rec.Status.Terminal() {
		return Result{
			MessageID:          rec.CorrelationID,
			CorrelationID:      rec.CorrelationID,
			Status:             rec.Status,
			ClearingSystemCode: rec.ClearingSystemCode,
			ProcessingTimeMs:   rec.ProcessingTimeMs,
			Metadata:           rec.Metadata,
		}, nil
	}

	clientResponse, err := e.cfg.Transformer.ShapeClientResponse(ctx, rec.OriginalMessageType, schemeResponse, rec.UETR, accepted)
	if err != nil {
		rec.Terminalize(StatusFailed, time.Now())
		_ = e.cfg.Store.Update(ctx, rec)
		return Result{}, gatewayerr.Wrap(gatewayerr.Internal, correlationID, err).WithUETR(rec.UETR)
	}

	status := StatusFailed
	if accepted {
		status = StatusSuccess
	}
	rec.Terminalize(status, time.Now())
	if err := e.cfg.Store.Update(ctx, rec); err != nil {
		e.log(ctx, "flow: failed to persist completed async record", correlationID, err)
	}
	if e.cfg.Correlator != nil {
		e.cfg.Correlator.Evict(rec.UETR, "", "")
	}

	return Result{
		MessageID:              rec.CorrelationID,
		CorrelationID:          rec.CorrelationID,
		Status:                 rec.Status,
		ClearingSystemCode:     rec.ClearingSystemCode,
		ClearingSystemResponse: schemeResponse,
		ClientResponse:         clientResponse,
		ProcessingTimeMs:       rec.ProcessingTimeMs,
		Metadata:               rec.Metadata,
	}, nil
}

// handleDispatchFailure classifies a dispatch error and terminalizes
// the FlowRecord accordingly: TIMED_OUT on a time-limiter expiry,
// QUEUED when the circuit is open and a queue fallback is configured,
// FAILED otherwise.
func (e *Engine) handleDispatchFailure(ctx context.Context, rec *Record, req Request, decision RouteDecision, wireMessage []byte, dispatchErr error, result Result) (Result, error) {
	now := time.Now()

	if errors.Is(dispatchErr, resiliency.ErrTimeout) {
		rec.Terminalize(StatusTimedOut, now)
		_ = e.cfg.Store.Update(ctx, rec)
		return Result{}, gatewayerr.Wrap(gatewayerr.Timeout, rec.CorrelationID, dispatchErr).WithUETR(rec.UETR)
	}

	if errors.Is(dispatchErr, resiliency.ErrCircuitOpen) && e.cfg.Queue != nil {
		if err := e.cfg.Queue.Enqueue(ctx, req.TenantID, decision.ServiceName, wireMessage, e.cfg.QueueExpiry); err != nil {
			rec.Terminalize(StatusFailed, now)
			_ = e.cfg.Store.Update(ctx, rec)
			return Result{}, gatewayerr.Wrap(gatewayerr.Internal, rec.CorrelationID, err).WithUETR(rec.UETR)
		}
		rec.Terminalize(StatusQueued, now)
		_ = e.cfg.Store.Update(ctx, rec)
		return Result{}, gatewayerr.Wrap(gatewayerr.AdapterUnavailable, rec.CorrelationID, dispatchErr).WithUETR(rec.UETR)
	}

	rec.Terminalize(StatusFailed, now)
	_ = e.cfg.Store.Update(ctx, rec)
	kind := gatewayerr.AdapterUnavailable
	switch {
	case errors.Is(dispatchErr, resiliency.ErrBulkheadFull), errors.Is(dispatchErr, resiliency.ErrRateLimitExceeded):
		kind = gatewayerr.ResourceExhausted
	case errors.Is(dispatchErr, resiliency.ErrCircuitOpen):
		kind = gatewayerr.AdapterUnavailable
	default:
		if ge, ok := gatewayerr.As(dispatchErr); ok {
			kind = ge.Kind
		} else {
			kind = gatewayerr.SchemeRejected
		}
	}
	return Result{}, gatewayerr.Wrap(kind, rec.CorrelationID, dispatchErr).WithUETR(rec.UETR)
}

func (e *Engine) log(ctx context.Context, msg, correlationID string, err error) {
	if e.cfg.Logger == nil {
		return
	}
	e.cfg.Logger.Error(ctx, msg,
		observe.Field{Key: "correlationId", Value: correlationID},
		observe.Field{Key: "error", Value: err.Error()},
	)
}
