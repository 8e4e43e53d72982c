package clearingadapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/fintechrail/paygate/internal/tenant"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists Adapters, their Routes, and their append-only
// MessageLogs. Implementations must treat LogMessage entries as pure
// appends — never an update or delete of an existing row. Routes are
// upserted by route id.
type Repository interface {
	Get(ctx context.Context, tc tenant.Context, adapterID string) (*Adapter, bool, error)
	RoutesForTenant(ctx context.Context, tc tenant.Context, paymentType, bankCode string) ([]Route, error)
	Save(ctx context.Context, a *Adapter) error
}

// PGRepository is the durable pgx-backed Repository. Schema (applied by
// the golang-migrate migrations in internal/datastore):
//
//	CREATE TABLE clearing_adapters (
//	    adapter_id         text NOT NULL,
//	    tenant_id          text NOT NULL,
//	    name               text NOT NULL,
//	    network            text NOT NULL,
//	    status             text NOT NULL,
//	    endpoint           text NOT NULL,
//	    api_version        text NOT NULL,
//	    timeout_seconds    integer NOT NULL,
//	    retry_attempts     integer NOT NULL,
//	    encryption_enabled boolean NOT NULL,
//	    PRIMARY KEY (tenant_id, adapter_id)
//	);
//	CREATE TABLE clearing_routes (
//	    route_id    text NOT NULL,
//	    adapter_id  text NOT NULL,
//	    tenant_id   text NOT NULL,
//	    name        text NOT NULL,
//	    source      text NOT NULL,
//	    destination text NOT NULL,
//	    priority    integer NOT NULL,
//	    status      text NOT NULL,
//	    PRIMARY KEY (tenant_id, route_id)
//	);
//	CREATE TABLE clearing_message_logs (
//	    id             bigserial PRIMARY KEY,
//	    adapter_id     text NOT NULL,
//	    tenant_id      text NOT NULL,
//	    correlation_id text NOT NULL,
//	    direction      text NOT NULL,
//	    summary        text NOT NULL,
//	    logged_at      timestamptz NOT NULL DEFAULT now()
//	);
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository over pool.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Get(ctx context.Context, tc tenant.Context, adapterID string) (*Adapter, bool, error) {
	const q = `
		SELECT adapter_id, name, network, status, endpoint, api_version,
		       timeout_seconds, retry_attempts, encryption_enabled
		FROM clearing_adapters WHERE tenant_id = $1 AND adapter_id = $2`

	var a Adapter
	a.Tenant = tc
	err := r.pool.QueryRow(ctx, q, tc.TenantID, adapterID).Scan(
		&a.AdapterID, &a.Name, &a.Network, &a.Status, &a.Endpoint, &a.APIVersion,
		&a.TimeoutSeconds, &a.RetryAttempts, &a.EncryptionEnabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("clearingadapter: query adapter: %w", err)
	}

	routes, err := r.routesForAdapter(ctx, tc.TenantID, adapterID)
	if err != nil {
		return nil, false, err
	}
	a.Routes = routes
	return &a, true, nil
}

func (r *PGRepository) routesForAdapter(ctx context.Context, tenantID, adapterID string) ([]Route, error) {
	const q = `
		SELECT route_id, adapter_id, name, source, destination, priority, status
		FROM clearing_routes WHERE tenant_id = $1 AND adapter_id = $2
		ORDER BY priority ASC, route_id ASC`

	rows, err := r.pool.Query(ctx, q, tenantID, adapterID)
	if err != nil {
		return nil, fmt.Errorf("clearingadapter: query routes: %w", err)
	}
	defer rows.Close()

	var out []Route
	for rows.Next() {
		var route Route
		if err := rows.Scan(&route.RouteID, &route.AdapterID, &route.Name, &route.Source, &route.Destination, &route.Priority, &route.Status); err != nil {
			return nil, fmt.Errorf("clearingadapter: scan route: %w", err)
		}
		out = append(out, route)
	}
	return out, rows.Err()
}

// RoutesForTenant returns every ACTIVE route whose destination is
// bankCode across that tenant's ACTIVE adapters, ordered priority ASC
// then routeId ASC — the exact ordering the Router's tiebreak rule
// needs. paymentType does not filter the result: clearing_routes has no
// payment-type column.
func (r *PGRepository) RoutesForTenant(ctx context.Context, tc tenant.Context, paymentType, bankCode string) ([]Route, error) {
	const q = `
		SELECT cr.route_id, cr.adapter_id, cr.name, cr.source, cr.destination, cr.priority, cr.status
		FROM clearing_routes cr
		JOIN clearing_adapters ca ON ca.adapter_id = cr.adapter_id AND ca.tenant_id = cr.tenant_id
		WHERE cr.tenant_id = $1 AND ca.status = 'ACTIVE' AND cr.status = 'ACTIVE'
		  AND cr.destination = $2
		ORDER BY cr.priority ASC, cr.route_id ASC`

	rows, err := r.pool.Query(ctx, q, tc.TenantID, bankCode)
	if err != nil {
		return nil, fmt.Errorf("clearingadapter: query tenant routes: %w", err)
	}
	defer rows.Close()

	var out []Route
	for rows.Next() {
		var route Route
		if err := rows.Scan(&route.RouteID, &route.AdapterID, &route.Name, &route.Source, &route.Destination, &route.Priority, &route.Status); err != nil {
			return nil, fmt.Errorf("clearingadapter: scan tenant route: %w", err)
		}
		out = append(out, route)
	}
	return out, rows.Err()
}

// Save upserts the adapter's configuration row, upserts every one of its
// routes, and appends any new message log entries. It does not
// drain a's pending events — the caller does that after publishing them.
func (r *PGRepository) Save(ctx context.Context, a *Adapter) error {
	const upsertAdapter = `
		INSERT INTO clearing_adapters
			(adapter_id, tenant_id, name, network, status, endpoint, api_version, timeout_seconds, retry_attempts, encryption_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id, adapter_id) DO UPDATE SET
			name = EXCLUDED.name, network = EXCLUDED.network, status = EXCLUDED.status,
			endpoint = EXCLUDED.endpoint, api_version = EXCLUDED.api_version,
			timeout_seconds = EXCLUDED.timeout_seconds, retry_attempts = EXCLUDED.retry_attempts,
			encryption_enabled = EXCLUDED.encryption_enabled`

	if _, err := r.pool.Exec(ctx, upsertAdapter,
		a.AdapterID, a.Tenant.TenantID, a.Name, a.Network, a.Status, a.Endpoint,
		a.APIVersion, a.TimeoutSeconds, a.RetryAttempts, a.EncryptionEnabled,
	); err != nil {
		return fmt.Errorf("clearingadapter: upsert adapter: %w", err)
	}

	const upsertRoute = `
		INSERT INTO clearing_routes (route_id, adapter_id, tenant_id, name, source, destination, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, route_id) DO UPDATE SET
			name = EXCLUDED.name, source = EXCLUDED.source, destination = EXCLUDED.destination,
			priority = EXCLUDED.priority, status = EXCLUDED.status`

	for _, route := range a.Routes {
		if _, err := r.pool.Exec(ctx, upsertRoute,
			route.RouteID, route.AdapterID, a.Tenant.TenantID, route.Name, route.Source, route.Destination, route.Priority, route.Status,
		); err != nil {
			return fmt.Errorf("clearingadapter: upsert route: %w", err)
		}
	}

	const insertLog = `
		INSERT INTO clearing_message_logs (adapter_id, tenant_id, correlation_id, direction, summary)
		VALUES ($1, $2, $3, $4, $5)`

	for _, log := range a.UnsavedMessageLogs() {
		if _, err := r.pool.Exec(ctx, insertLog, a.AdapterID, a.Tenant.TenantID, log.CorrelationID, log.Direction, log.Summary); err != nil {
			return fmt.Errorf("clearingadapter: insert message log: %w", err)
		}
	}
	a.MarkLogsPersisted()

	return nil
}

var _ Repository = (*PGRepository)(nil)
