package flow

import "time"

// Status is one of a FlowRecord's totally-ordered lifecycle states.
type Status string

const (
	StatusInitiated        Status = "INITIATED"
	StatusTransformed      Status = "TRANSFORMED"
	StatusDispatched       Status = "DISPATCHED"
	StatusAwaitingResponse Status = "AWAITING_RESPONSE"
	StatusSuccess          Status = "SUCCESS"
	StatusFailed           Status = "FAILED"
	StatusTimedOut         Status = "TIMED_OUT"
	StatusQueued           Status = "QUEUED"
)

// Terminal reports whether status is one a FlowRecord no longer leaves.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusTimedOut, StatusQueued:
		return true
	default:
		return false
	}
}

// Direction distinguishes the client-originated leg from the
// scheme-originated reply leg of a correlated exchange.
type Direction string

const (
	DirectionClientToScheme Direction = "CLIENT_TO_SCHEME"
	DirectionSchemeToClient Direction = "SCHEME_TO_CLIENT"
)

// Record is one FlowRecord: opened at ingress, immutable once its
// Status reaches a terminal value. The Flow Engine owns a Record for
// the lifetime of a request; the Correlator holds only a lookup by
// CorrelationID/UETR, never a second writer.
type Record struct {
	CorrelationID          string
	UETR                   string
	TenantID               string
	Direction              Direction
	OriginalMessageType    string
	TransformedMessageType string
	ClearingSystemCode     string
	TransactionID          string
	Status                 Status
	ProcessingStartedAt    time.Time
	ProcessingCompletedAt  time.Time
	ProcessingTimeMs       int64
	Metadata               map[string]any
}

// NewRecord opens a FlowRecord in status INITIATED.
func NewRecord(correlationID, uetr, tenantID, messageType string, direction Direction) *Record {
	return &Record{
		CorrelationID:       correlationID,
		UETR:                uetr,
		TenantID:            tenantID,
		Direction:           direction,
		OriginalMessageType: messageType,
		Status:              StatusInitiated,
		ProcessingStartedAt: time.Now(),
		Metadata:            make(map[string]any),
	}
}

// transition moves the record to status, refusing to leave a terminal
// state once reached.
func (r *Record) transition(status Status) {
	if r.Status.Terminal() {
		return
	}
	r.Status = status
}

// Terminalize sets status (must be terminal) and stamps completion
// time/duration. A no-op if the record already reached a terminal
// status — a FlowRecord is immutable after that point.
func (r *Record) Terminalize(status Status, now time.Time) {
	if r.Status.Terminal() {
		return
	}
	r.Status = status
	r.ProcessingCompletedAt = now
	r.ProcessingTimeMs = now.Sub(r.ProcessingStartedAt).Milliseconds()
}
