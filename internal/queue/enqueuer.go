package queue

import (
	"context"
	"time"
)

// EnqueueOnly adapts Manager to a bare error-returning Enqueue method,
// the shape internal/flow.QueueEnqueuer expects. Manager.Enqueue itself
// returns the persisted Message too, which callers that need the
// message id (e.g. this package's own tests) can still get by calling
// Manager.Enqueue directly — EnqueueOnly exists only so the Flow Engine
// can depend on a single bare error return without this package
// importing internal/flow to declare the interface itself.
type EnqueueOnly struct {
	*Manager
}

// Enqueue discards the persisted Message and returns only the error,
// satisfying internal/flow.QueueEnqueuer.
func (e EnqueueOnly) Enqueue(ctx context.Context, tenantID, serviceName string, payload []byte, expiry time.Duration) error {
	_, err := e.Manager.Enqueue(ctx, tenantID, serviceName, payload, expiry)
	return err
}
