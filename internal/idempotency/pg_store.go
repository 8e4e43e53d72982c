package idempotency

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the durable, cross-instance Store backing idempotency_keys.
// Schema (applied by the golang-migrate migrations in internal/datastore):
//
//	CREATE TABLE idempotency_keys (
//	    tenant_id        text NOT NULL,
//	    key              text NOT NULL,
//	    method           text NOT NULL,
//	    endpoint         text NOT NULL,
//	    request_hash     text NOT NULL,
//	    response_status  integer NOT NULL,
//	    response_body    bytea NOT NULL,
//	    created_at       timestamptz NOT NULL,
//	    expires_at       timestamptz NOT NULL,
//	    PRIMARY KEY (tenant_id, key)
//	);
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore over pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Get(ctx context.Context, tenantID, key string) (Record, bool, error) {
	const q = `
		SELECT tenant_id, key, method, endpoint, request_hash,
		       response_status, response_body, created_at, expires_at
		FROM idempotency_keys
		WHERE tenant_id = $1 AND key = $2`

	var rec Record
	err := s.pool.QueryRow(ctx, q, tenantID, key).Scan(
		&rec.TenantID, &rec.Key, &rec.Method, &rec.Endpoint, &rec.RequestHash,
		&rec.ResponseStatus, &rec.ResponseBody, &rec.CreatedAt, &rec.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("idempotency: query record: %w", err)
	}
	return rec, true, nil
}

func (s *PGStore) Put(ctx context.Context, rec Record) error {
	const q = `
		INSERT INTO idempotency_keys
			(tenant_id, key, method, endpoint, request_hash, response_status, response_body, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, key) DO UPDATE SET
			method = EXCLUDED.method,
			endpoint = EXCLUDED.endpoint,
			request_hash = EXCLUDED.request_hash,
			response_status = EXCLUDED.response_status,
			response_body = EXCLUDED.response_body,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`

	_, err := s.pool.Exec(ctx, q,
		rec.TenantID, rec.Key, rec.Method, rec.Endpoint, rec.RequestHash,
		rec.ResponseStatus, rec.ResponseBody, rec.CreatedAt, rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("idempotency: put record: %w", err)
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, tenantID, key string) error {
	const q = `DELETE FROM idempotency_keys WHERE tenant_id = $1 AND key = $2`
	_, err := s.pool.Exec(ctx, q, tenantID, key)
	if err != nil {
		return fmt.Errorf("idempotency: delete record: %w", err)
	}
	return nil
}

var _ Store = (*PGStore)(nil)
