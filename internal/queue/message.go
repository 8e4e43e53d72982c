// Package queue implements the queued-message store: a durable buffer
// for messages that could not be dispatched because their downstream
// clearing adapter was unavailable, retried with exponential backoff
// until they succeed, are exhausted, or expire.
package queue

import "time"

// Status is a QueuedMessage's lifecycle state. Transitions are
// monotonic except PENDING↔FAILED, which cycle on every retry attempt
// until the message is DONE or EXPIRED.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusInFlight Status = "IN_FLIGHT"
	StatusFailed   Status = "FAILED"
	StatusExpired  Status = "EXPIRED"
	StatusDone     Status = "DONE"
)

// Message is one deferred dispatch attempt.
type Message struct {
	MessageID    string
	TenantID     string
	ServiceName  string
	Payload      []byte
	Status       Status
	RetryCount   int
	NextRetryAt  time.Time
	ExpiresAt    time.Time
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Expired reports whether m should be moved to EXPIRED and never
// retried again.
func (m Message) Expired(now time.Time) bool {
	return now.After(m.ExpiresAt)
}

// DueForRetry reports whether m is eligible for the next drain pass:
// FAILED messages are always eligible; PENDING messages are eligible
// once their NextRetryAt has arrived.
func (m Message) DueForRetry(now time.Time) bool {
	if m.Status == StatusFailed {
		return true
	}
	return m.Status == StatusPending && !m.NextRetryAt.After(now)
}

// MarkDrainable resets m for a fresh drain attempt: retryCount is
// cleared, status returns to PENDING, and nextRetryAt is now so the
// drainer picks it up on this very pass.
func (m *Message) MarkDrainable(now time.Time) {
	m.RetryCount = 0
	m.Status = StatusPending
	m.NextRetryAt = now
	m.UpdatedAt = now
}

// MarkFailed records a failed dispatch attempt: retryCount increments,
// and the message either reschedules with backoff or, past its expiry,
// terminalizes as EXPIRED — which is final; an EXPIRED message is never
// retried again.
func (m *Message) MarkFailed(errMsg string, now time.Time) {
	m.ErrorMessage = errMsg
	m.RetryCount++
	m.UpdatedAt = now

	if m.Expired(now) {
		m.Status = StatusExpired
		return
	}
	m.Status = StatusFailed
	m.NextRetryAt = now.Add(BackoffDelay(m.RetryCount))
}

// MarkDone terminalizes m as successfully delivered.
func (m *Message) MarkDone(now time.Time) {
	m.Status = StatusDone
	m.UpdatedAt = now
}

// MarkInFlight claims m for an in-progress dispatch attempt, preventing
// a concurrent drainer from claiming the same row.
func (m *Message) MarkInFlight(now time.Time) {
	m.Status = StatusInFlight
	m.UpdatedAt = now
}
