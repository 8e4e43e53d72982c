package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintechrail/paygate/internal/auth"
)

// APIKeyStore persists the api_keys table and satisfies auth.APIKeyStore,
// letting clients authenticate with X-API-Key as an alternative to the
// JWT/JWKS path. Schema:
//
//	CREATE TABLE api_keys (
//	    id          text PRIMARY KEY,
//	    key_hash    text NOT NULL UNIQUE,
//	    principal   text NOT NULL,
//	    tenant_id   text NOT NULL,
//	    roles       text[] NOT NULL DEFAULT '{}',
//	    expires_at  timestamptz,
//	    metadata    jsonb,
//	    created_at  timestamptz NOT NULL DEFAULT now()
//	);
type APIKeyStore struct {
	pool *pgxpool.Pool
}

// NewAPIKeyStore constructs an APIKeyStore over pool.
func NewAPIKeyStore(pool *pgxpool.Pool) *APIKeyStore {
	return &APIKeyStore{pool: pool}
}

// Lookup implements auth.APIKeyStore.
func (s *APIKeyStore) Lookup(ctx context.Context, keyHash string) (*auth.APIKeyInfo, error) {
	const q = `
		SELECT id, key_hash, principal, tenant_id, roles, expires_at, metadata
		FROM api_keys
		WHERE key_hash = $1`

	var info auth.APIKeyInfo
	var expiresAt *time.Time
	var metadata []byte
	row := s.pool.QueryRow(ctx, q, keyHash)
	if err := row.Scan(&info.ID, &info.KeyHash, &info.Principal, &info.TenantID, &info.Roles, &expiresAt, &metadata); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("datastore: lookup api key: %w", err)
	}
	if expiresAt != nil {
		info.ExpiresAt = *expiresAt
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &info.Metadata); err != nil {
			return nil, fmt.Errorf("datastore: unmarshal api key metadata: %w", err)
		}
	}

	return &info, nil
}

// Issue inserts or replaces a key's record under its hash. The plaintext
// key itself is never persisted or logged — callers hash it with
// auth.HashAPIKey before calling Issue.
func (s *APIKeyStore) Issue(ctx context.Context, info auth.APIKeyInfo) error {
	var metadata []byte
	if info.Metadata != nil {
		body, err := json.Marshal(info.Metadata)
		if err != nil {
			return fmt.Errorf("datastore: marshal api key metadata: %w", err)
		}
		metadata = body
	}

	var expiresAt *time.Time
	if !info.ExpiresAt.IsZero() {
		expiresAt = &info.ExpiresAt
	}

	const q = `
		INSERT INTO api_keys (id, key_hash, principal, tenant_id, roles, expires_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
			SET key_hash = EXCLUDED.key_hash, principal = EXCLUDED.principal,
				tenant_id = EXCLUDED.tenant_id, roles = EXCLUDED.roles,
				expires_at = EXCLUDED.expires_at, metadata = EXCLUDED.metadata`

	if _, err := s.pool.Exec(ctx, q, info.ID, info.KeyHash, info.Principal, info.TenantID, info.Roles, expiresAt, metadata); err != nil {
		return fmt.Errorf("datastore: issue api key: %w", err)
	}
	return nil
}

// Revoke removes a key so Lookup no longer resolves it.
func (s *APIKeyStore) Revoke(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id); err != nil {
		return fmt.Errorf("datastore: revoke api key: %w", err)
	}
	return nil
}

var _ auth.APIKeyStore = (*APIKeyStore)(nil)
