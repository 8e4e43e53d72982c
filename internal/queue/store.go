package queue

import (
	"context"
	"time"
)

// Store is the system of record for queued messages. The Redis sorted
// set in Scheduler is only the admission/ordering structure; Store
// holds the durable row a Redis restart must not lose.
type Store interface {
	// Insert persists a newly queued message.
	Insert(ctx context.Context, m Message) error

	// Update persists m's current field values over its existing row.
	Update(ctx context.Context, m Message) error

	// SelectDrainable returns up to limit messages eligible for the
	// next drain pass (FAILED, or PENDING past nextRetryAt), locked
	// against concurrent drainers.
	SelectDrainable(ctx context.Context, limit int, now time.Time) ([]Message, error)

	// SelectExpirable returns up to limit non-terminal messages whose
	// expiresAt has passed.
	SelectExpirable(ctx context.Context, limit int, now time.Time) ([]Message, error)
}
