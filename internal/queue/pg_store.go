package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the durable Store backing queued_messages. Schema (applied
// by the golang-migrate migrations in internal/datastore):
//
//	CREATE TABLE queued_messages (
//	    message_id     text PRIMARY KEY,
//	    tenant_id      text NOT NULL,
//	    service_name   text NOT NULL,
//	    payload        bytea NOT NULL,
//	    status         text NOT NULL,
//	    retry_count    integer NOT NULL,
//	    next_retry_at  timestamptz NOT NULL,
//	    expires_at     timestamptz NOT NULL,
//	    error_message  text NOT NULL DEFAULT '',
//	    created_at     timestamptz NOT NULL,
//	    updated_at     timestamptz NOT NULL
//	);
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore over pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Insert(ctx context.Context, m Message) error {
	const q = `
		INSERT INTO queued_messages
			(message_id, tenant_id, service_name, payload, status, retry_count,
			 next_retry_at, expires_at, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.pool.Exec(ctx, q,
		m.MessageID, m.TenantID, m.ServiceName, m.Payload, m.Status, m.RetryCount,
		m.NextRetryAt, m.ExpiresAt, m.ErrorMessage, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("queue: insert message: %w", err)
	}
	return nil
}

func (s *PGStore) Update(ctx context.Context, m Message) error {
	const q = `
		UPDATE queued_messages SET
			status = $2, retry_count = $3, next_retry_at = $4,
			expires_at = $5, error_message = $6, updated_at = $7
		WHERE message_id = $1`

	_, err := s.pool.Exec(ctx, q,
		m.MessageID, m.Status, m.RetryCount, m.NextRetryAt, m.ExpiresAt, m.ErrorMessage, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("queue: update message: %w", err)
	}
	return nil
}

// SelectDrainable locks up to limit eligible rows FOR UPDATE SKIP
// LOCKED so two concurrent drainers never claim the same message.
func (s *PGStore) SelectDrainable(ctx context.Context, limit int, now time.Time) ([]Message, error) {
	const q = `
		SELECT message_id, tenant_id, service_name, payload, status, retry_count,
		       next_retry_at, expires_at, error_message, created_at, updated_at
		FROM queued_messages
		WHERE status = 'FAILED' OR (status = 'PENDING' AND next_retry_at <= $2)
		ORDER BY next_retry_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`

	return s.query(ctx, q, limit, now)
}

// SelectExpirable returns non-terminal rows whose expiry has passed.
func (s *PGStore) SelectExpirable(ctx context.Context, limit int, now time.Time) ([]Message, error) {
	const q = `
		SELECT message_id, tenant_id, service_name, payload, status, retry_count,
		       next_retry_at, expires_at, error_message, created_at, updated_at
		FROM queued_messages
		WHERE status NOT IN ('DONE', 'EXPIRED') AND expires_at < $2
		ORDER BY expires_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`

	return s.query(ctx, q, limit, now)
}

func (s *PGStore) query(ctx context.Context, q string, limit int, now time.Time) ([]Message, error) {
	rows, err := s.pool.Query(ctx, q, limit, now)
	if err != nil {
		return nil, fmt.Errorf("queue: select: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.MessageID, &m.TenantID, &m.ServiceName, &m.Payload, &m.Status, &m.RetryCount,
			&m.NextRetryAt, &m.ExpiresAt, &m.ErrorMessage, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("queue: scan row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("queue: rows: %w", err)
	}
	return out, nil
}

var _ Store = (*PGStore)(nil)
