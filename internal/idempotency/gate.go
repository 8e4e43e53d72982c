package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/fintechrail/paygate/internal/gatewayerr"
)

// ReplayHeader and OriginalRequestTimeHeader are set on a replayed
// response so a caller can tell a replay from a first execution.
const (
	ReplayHeader              = "X-Idempotency-Replay"
	OriginalRequestTimeHeader = "X-Original-Request-Time"
)

// Decision is the result of checking an inbound request against the
// idempotency store.
type Decision struct {
	// Proceed is true when the caller should execute the operation
	// fresh and then call Gate.Record with the outcome.
	Proceed bool

	// Replay is true when a prior response should be returned verbatim
	// instead of re-executing.
	Replay       bool
	ReplayStatus int
	ReplayBody   []byte
	OriginalTime time.Time
}

// Gate enforces the idempotency-key contract in front of an operation.
type Gate struct {
	store Store
	ttl   time.Duration
}

// NewGate constructs a Gate. ttl is the validity window assigned to
// fresh records; zero uses DefaultTTL.
func NewGate(store Store, ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gate{store: store, ttl: ttl}
}

// Check runs the four-step idempotency algorithm against (tenantID, key):
//
//  1. Look up an existing record for the key.
//  2. If found but expired, delete it and fall through to fresh
//     processing as if it had never existed.
//  3. If found and live, and the request hash matches, it is a replay:
//     return the original response.
//  4. If found and live, and the request hash differs, the key is being
//     reused for a different request: reject with IdempotencyConflict.
//
// now is passed in by the caller so expiry comparisons are deterministic
// under test.
func (g *Gate) Check(ctx context.Context, tenantID, key, method, endpoint string, body []byte, now time.Time) (Decision, error) {
	rec, ok, err := g.store.Get(ctx, tenantID, key)
	if err != nil {
		return Decision{}, fmt.Errorf("idempotency: lookup: %w", err)
	}
	if !ok {
		return Decision{Proceed: true}, nil
	}

	if rec.Expired(now) {
		if err := g.store.Delete(ctx, tenantID, key); err != nil {
			return Decision{}, fmt.Errorf("idempotency: evict expired record: %w", err)
		}
		return Decision{Proceed: true}, nil
	}

	hash := HashRequest(method, endpoint, body)
	if hash == rec.RequestHash {
		return Decision{
			Replay:       true,
			ReplayStatus: rec.ResponseStatus,
			ReplayBody:   rec.ResponseBody,
			OriginalTime: rec.CreatedAt,
		}, nil
	}

	return Decision{}, gatewayerr.New(
		gatewayerr.IdempotencyConflict,
		key,
		fmt.Sprintf("idempotency key %q was already used for a different request", key),
	)
}

// Record persists the outcome of a freshly executed operation so
// subsequent requests bearing the same key can be replayed.
func (g *Gate) Record(ctx context.Context, tenantID, key, method, endpoint string, body []byte, status int, responseBody []byte, now time.Time) error {
	rec := Record{
		Key:            key,
		TenantID:       tenantID,
		Method:         method,
		Endpoint:       endpoint,
		RequestHash:    HashRequest(method, endpoint, body),
		ResponseStatus: status,
		ResponseBody:   responseBody,
		CreatedAt:      now,
		ExpiresAt:      now.Add(g.ttl),
	}
	if err := g.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("idempotency: record response: %w", err)
	}
	return nil
}
