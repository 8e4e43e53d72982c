// Package datastore owns the connection pool construction, schema
// migrations, and the two conceptual tables (spec.md §6) with no
// natural owning domain package: resiliency_configurations and
// uetr_tracking. Every other conceptual table (idempotency_keys,
// flow_records, clearing_adapters/routes/message_logs,
// queued_messages) has its repository living with the domain type it
// backs (internal/idempotency, internal/flow, internal/clearingadapter,
// internal/queue), following the teacher's one-repository-per-domain
// layout rather than a single god-package of SQL.
package datastore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool parses databaseURL and opens a pgx connection pool, pinging
// once so a misconfigured DSN fails fast at startup rather than on the
// first request.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("datastore: parse pool config: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("datastore: ping: %w", err)
	}
	return pool, nil
}
