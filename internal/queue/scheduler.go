package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// schedulerKeyPrefix namespaces the sorted set per tenant so one
// tenant's backlog can never starve another's.
const schedulerKeyPrefix = "paygate:queue:"

// Scheduler is the Redis sorted-set admission structure: messages are
// scored by nextRetryAt (Unix seconds) so ZRangeByScore with an upper
// bound of "now" yields exactly the due set. It is purely an ordering
// index; Store holds the durable row.
type Scheduler struct {
	client redis.UniversalClient
}

// NewScheduler constructs a Scheduler over client.
func NewScheduler(client redis.UniversalClient) *Scheduler {
	return &Scheduler{client: client}
}

func schedulerKey(tenantID string) string {
	return schedulerKeyPrefix + tenantID
}

// Schedule admits messageID into tenantID's sorted set, scored by
// nextRetryAt.
func (s *Scheduler) Schedule(ctx context.Context, tenantID, messageID string, nextRetryAt time.Time) error {
	err := s.client.ZAdd(ctx, schedulerKey(tenantID), redis.Z{
		Score:  float64(nextRetryAt.Unix()),
		Member: messageID,
	}).Err()
	if err != nil {
		return fmt.Errorf("queue: schedule %s: %w", messageID, err)
	}
	return nil
}

// FetchDue returns up to limit message ids due by now, removing them
// from the sorted set so a concurrent drainer won't also claim them.
func (s *Scheduler) FetchDue(ctx context.Context, tenantID string, limit int, now time.Time) ([]string, error) {
	key := schedulerKey(tenantID)
	max := fmt.Sprintf("%d", now.Unix())

	results, err := s.client.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
		Min:   "0",
		Max:   max,
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("queue: fetch due: %w", err)
	}

	ids := make([]string, 0, len(results))
	for _, z := range results {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		if err := s.client.ZRem(ctx, key, z.Member).Err(); err != nil {
			return ids, fmt.Errorf("queue: remove claimed member %s: %w", id, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Remove deletes messageID from tenantID's sorted set unconditionally,
// used once a message reaches a terminal status.
func (s *Scheduler) Remove(ctx context.Context, tenantID, messageID string) error {
	if err := s.client.ZRem(ctx, schedulerKey(tenantID), messageID).Err(); err != nil {
		return fmt.Errorf("queue: remove %s: %w", messageID, err)
	}
	return nil
}
