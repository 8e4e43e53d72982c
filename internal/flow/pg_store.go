package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the durable Store backing flow_records. Schema (applied by
// the golang-migrate migrations in internal/datastore):
//
//	CREATE TABLE flow_records (
//	    correlation_id           text NOT NULL,
//	    uetr                     text NOT NULL,
//	    tenant_id                text NOT NULL,
//	    direction                text NOT NULL,
//	    original_message_type    text NOT NULL,
//	    transformed_message_type text NOT NULL,
//	    clearing_system_code     text NOT NULL,
//	    transaction_id           text NOT NULL,
//	    status                   text NOT NULL,
//	    processing_started_at    timestamptz NOT NULL,
//	    processing_completed_at  timestamptz,
//	    processing_time_ms       bigint NOT NULL DEFAULT 0,
//	    metadata                 jsonb NOT NULL DEFAULT '{}',
//	    PRIMARY KEY (tenant_id, correlation_id)
//	);
//	CREATE UNIQUE INDEX ON flow_records (tenant_id, uetr);
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore over pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const selectColumns = `
	correlation_id, uetr, tenant_id, direction, original_message_type,
	transformed_message_type, clearing_system_code, transaction_id,
	status, processing_started_at, processing_completed_at,
	processing_time_ms, metadata`

func (s *PGStore) Insert(ctx context.Context, r *Record) error {
	metadata, err := json.Marshal(r.Metadata)
	if err != nil {
		return fmt.Errorf("flow: marshal metadata: %w", err)
	}

	const q = `
		INSERT INTO flow_records (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = s.pool.Exec(ctx, q,
		r.CorrelationID, r.UETR, r.TenantID, r.Direction, r.OriginalMessageType,
		r.TransformedMessageType, r.ClearingSystemCode, r.TransactionID,
		r.Status, r.ProcessingStartedAt, completedAtPtr(r),
		r.ProcessingTimeMs, metadata,
	)
	if err != nil {
		return fmt.Errorf("flow: insert record: %w", err)
	}
	return nil
}

func (s *PGStore) Update(ctx context.Context, r *Record) error {
	metadata, err := json.Marshal(r.Metadata)
	if err != nil {
		return fmt.Errorf("flow: marshal metadata: %w", err)
	}

	const q = `
		UPDATE flow_records SET
			uetr = $3, direction = $4, original_message_type = $5,
			transformed_message_type = $6, clearing_system_code = $7,
			transaction_id = $8, status = $9, processing_started_at = $10,
			processing_completed_at = $11, processing_time_ms = $12, metadata = $13
		WHERE tenant_id = $1 AND correlation_id = $2`

	_, err = s.pool.Exec(ctx, q,
		r.TenantID, r.CorrelationID, r.UETR, r.Direction, r.OriginalMessageType,
		r.TransformedMessageType, r.ClearingSystemCode, r.TransactionID,
		r.Status, r.ProcessingStartedAt, completedAtPtr(r),
		r.ProcessingTimeMs, metadata,
	)
	if err != nil {
		return fmt.Errorf("flow: update record: %w", err)
	}
	return nil
}

// completedAtPtr returns nil for a zero ProcessingCompletedAt so the
// column stores SQL NULL rather than the Go zero time for a still-open
// FlowRecord.
func completedAtPtr(r *Record) *time.Time {
	if r.ProcessingCompletedAt.IsZero() {
		return nil
	}
	return &r.ProcessingCompletedAt
}

func (s *PGStore) GetByUETR(ctx context.Context, tenantID, uetr string) (*Record, bool, error) {
	const q = `SELECT ` + selectColumns + ` FROM flow_records WHERE tenant_id = $1 AND uetr = $2`
	return s.scanOne(ctx, q, tenantID, uetr)
}

func (s *PGStore) GetByCorrelationID(ctx context.Context, tenantID, correlationID string) (*Record, bool, error) {
	const q = `SELECT ` + selectColumns + ` FROM flow_records WHERE tenant_id = $1 AND correlation_id = $2`
	return s.scanOne(ctx, q, tenantID, correlationID)
}

func (s *PGStore) scanOne(ctx context.Context, q string, args ...any) (*Record, bool, error) {
	var r Record
	var metadata []byte
	var completedAt *time.Time

	err := s.pool.QueryRow(ctx, q, args...).Scan(
		&r.CorrelationID, &r.UETR, &r.TenantID, &r.Direction, &r.OriginalMessageType,
		&r.TransformedMessageType, &r.ClearingSystemCode, &r.TransactionID,
		&r.Status, &r.ProcessingStartedAt, &completedAt, &r.ProcessingTimeMs, &metadata,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("flow: query record: %w", err)
	}
	if completedAt != nil {
		r.ProcessingCompletedAt = *completedAt
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
			return nil, false, fmt.Errorf("flow: unmarshal metadata: %w", err)
		}
	}
	return &r, true, nil
}

var _ Store = (*PGStore)(nil)
