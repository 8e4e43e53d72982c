package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UETRTrackingStore is an append-only record of every direction/status
// transition a UETR passes through, backing the GET /admin/uetr/{uetr}
// journey-lookup endpoint. Schema:
//
//	CREATE TABLE uetr_tracking (
//	    id             bigserial PRIMARY KEY,
//	    tenant_id      text NOT NULL,
//	    uetr           text NOT NULL,
//	    correlation_id text NOT NULL,
//	    message_type   text NOT NULL,
//	    direction      text NOT NULL,
//	    status         text NOT NULL,
//	    occurred_at    timestamptz NOT NULL DEFAULT now()
//	);
type UETRTrackingStore struct {
	pool *pgxpool.Pool
}

// NewUETRTrackingStore constructs a UETRTrackingStore over pool.
func NewUETRTrackingStore(pool *pgxpool.Pool) *UETRTrackingStore {
	return &UETRTrackingStore{pool: pool}
}

// JourneyEvent is a single recorded transition in a UETR's lifecycle.
type JourneyEvent struct {
	TenantID      string
	UETR          string
	CorrelationID string
	MessageType   string
	Direction     string
	Status        string
	OccurredAt    time.Time
}

// Record appends a journey event. It never updates or deletes existing rows:
// the journey is a log, not a current-state table, so a UETR that flows
// through the gateway twice (e.g. a reversal) keeps both histories intact.
func (s *UETRTrackingStore) Record(ctx context.Context, ev JourneyEvent) error {
	const q = `
		INSERT INTO uetr_tracking
			(tenant_id, uetr, correlation_id, message_type, direction, status, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	occurredAt := ev.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, q,
		ev.TenantID, ev.UETR, ev.CorrelationID, ev.MessageType, ev.Direction, ev.Status, occurredAt,
	)
	if err != nil {
		return fmt.Errorf("datastore: record uetr journey event: %w", err)
	}
	return nil
}

// Journey returns every recorded event for a UETR within a tenant, oldest
// first, or (nil, false, nil) if the UETR has no recorded history.
func (s *UETRTrackingStore) Journey(ctx context.Context, tenantID, uetr string) ([]JourneyEvent, bool, error) {
	const q = `
		SELECT tenant_id, uetr, correlation_id, message_type, direction, status, occurred_at
		FROM uetr_tracking
		WHERE tenant_id = $1 AND uetr = $2
		ORDER BY occurred_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, q, tenantID, uetr)
	if err != nil {
		return nil, false, fmt.Errorf("datastore: query uetr journey: %w", err)
	}
	defer rows.Close()

	var events []JourneyEvent
	for rows.Next() {
		var ev JourneyEvent
		if err := rows.Scan(
			&ev.TenantID, &ev.UETR, &ev.CorrelationID, &ev.MessageType, &ev.Direction, &ev.Status, &ev.OccurredAt,
		); err != nil {
			return nil, false, fmt.Errorf("datastore: scan uetr journey event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("datastore: iterate uetr journey: %w", err)
	}
	if len(events) == 0 {
		return nil, false, nil
	}
	return events, true, nil
}
