package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/fintechrail/paygate/internal/observe"
)

// Dispatcher resubmits a queued message's payload through the Flow
// Engine. The queue package depends only on this narrow interface so it
// never imports internal/flow directly.
type Dispatcher interface {
	Dispatch(ctx context.Context, tenantID, serviceName string, payload []byte) error
}

const (
	// DrainBatchSize is how many rows one drain pass claims, per
	// spec's "up to 100" bound.
	DrainBatchSize = 100

	// ExpireBatchSize is how many rows one expiry sweep claims.
	ExpireBatchSize = 500
)

// Manager coordinates the durable Store, the Redis Scheduler, and
// resubmission through Dispatcher. It implements both
// internal/monitor.QueueDrainer and internal/monitor.ExpiredSweeper.
type Manager struct {
	store      Store
	scheduler  *Scheduler
	dispatcher Dispatcher
	logger     observe.Logger
}

// NewManager constructs a Manager.
func NewManager(store Store, scheduler *Scheduler, dispatcher Dispatcher, logger observe.Logger) *Manager {
	return &Manager{store: store, scheduler: scheduler, dispatcher: dispatcher, logger: logger}
}

// Enqueue persists a new message and admits it into the scheduler.
func (m *Manager) Enqueue(ctx context.Context, tenantID, serviceName string, payload []byte, expiry time.Duration) (Message, error) {
	now := time.Now()
	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	msg := Message{
		MessageID:   generateMessageID(),
		TenantID:    tenantID,
		ServiceName: serviceName,
		Payload:     payload,
		Status:      StatusPending,
		NextRetryAt: now,
		ExpiresAt:   now.Add(expiry),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.store.Insert(ctx, msg); err != nil {
		return Message{}, err
	}
	if err := m.scheduler.Schedule(ctx, tenantID, msg.MessageID, msg.NextRetryAt); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// DrainDue selects up to DrainBatchSize eligible messages — FAILED, or
// PENDING past nextRetryAt — resets each for a fresh attempt, and
// resubmits it through Dispatcher. A dispatch failure reschedules the
// message with exponential backoff (or terminalizes it EXPIRED, if its
// expiry has already passed) rather than aborting the rest of the
// batch.
func (m *Manager) DrainDue(ctx context.Context) error {
	now := time.Now()
	due, err := m.store.SelectDrainable(ctx, DrainBatchSize, now)
	if err != nil {
		return fmt.Errorf("queue: drain: %w", err)
	}

	for _, msg := range due {
		msg.MarkDrainable(now)
		msg.MarkInFlight(now)
		if err := m.store.Update(ctx, msg); err != nil {
			m.logger.Error(ctx, "queue: failed to claim message for drain",
				observe.Field{Key: "messageId", Value: msg.MessageID},
				observe.Field{Key: "error", Value: err.Error()},
			)
			continue
		}

		if err := m.dispatcher.Dispatch(ctx, msg.TenantID, msg.ServiceName, msg.Payload); err != nil {
			msg.MarkFailed(err.Error(), time.Now())
			if updErr := m.store.Update(ctx, msg); updErr != nil {
				m.logger.Error(ctx, "queue: failed to persist retry state",
					observe.Field{Key: "messageId", Value: msg.MessageID},
					observe.Field{Key: "error", Value: updErr.Error()},
				)
				continue
			}
			if msg.Status == StatusFailed {
				if schedErr := m.scheduler.Schedule(ctx, msg.TenantID, msg.MessageID, msg.NextRetryAt); schedErr != nil {
					m.logger.Error(ctx, "queue: failed to reschedule message",
						observe.Field{Key: "messageId", Value: msg.MessageID},
						observe.Field{Key: "error", Value: schedErr.Error()},
					)
				}
			} else {
				_ = m.scheduler.Remove(ctx, msg.TenantID, msg.MessageID)
			}
			continue
		}

		msg.MarkDone(time.Now())
		if err := m.store.Update(ctx, msg); err != nil {
			m.logger.Error(ctx, "queue: failed to persist completion",
				observe.Field{Key: "messageId", Value: msg.MessageID},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
		_ = m.scheduler.Remove(ctx, msg.TenantID, msg.MessageID)
	}

	return nil
}

// SweepExpired terminalizes every non-terminal message whose expiry has
// passed, per the invariant that an EXPIRED message is never retried.
func (m *Manager) SweepExpired(ctx context.Context) error {
	now := time.Now()
	expirable, err := m.store.SelectExpirable(ctx, ExpireBatchSize, now)
	if err != nil {
		return fmt.Errorf("queue: sweep expired: %w", err)
	}

	for _, msg := range expirable {
		msg.Status = StatusExpired
		msg.UpdatedAt = now
		if err := m.store.Update(ctx, msg); err != nil {
			m.logger.Error(ctx, "queue: failed to expire message",
				observe.Field{Key: "messageId", Value: msg.MessageID},
				observe.Field{Key: "error", Value: err.Error()},
			)
			continue
		}
		_ = m.scheduler.Remove(ctx, msg.TenantID, msg.MessageID)
	}

	return nil
}
