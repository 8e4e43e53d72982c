package flow

import "context"

// Store persists FlowRecords. The in-flight record also lives in the
// Correlator's memory index; Store is the system of record once a
// request has been opened, queried by admin surfaces for UETR journey
// lookups long after the Correlator has evicted its entry.
type Store interface {
	Insert(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	GetByUETR(ctx context.Context, tenantID, uetr string) (*Record, bool, error)
	GetByCorrelationID(ctx context.Context, tenantID, correlationID string) (*Record, bool, error)
}
