package idempotency

import "context"

// Store persists idempotency records keyed by (tenantID, key). It is
// the durability seam between the fast in-memory Gate path and whatever
// backing store a deployment chooses.
type Store interface {
	// Get returns the record for (tenantID, key), or ok=false on miss.
	Get(ctx context.Context, tenantID, key string) (rec Record, ok bool, err error)

	// Put inserts or overwrites the record for (tenantID, rec.Key).
	Put(ctx context.Context, rec Record) error

	// Delete removes the record, if any. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, tenantID, key string) error
}
