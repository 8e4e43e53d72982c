package flow

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store, used by tests and by standalone
// deployments that don't need a FlowRecord to survive a restart.
type MemoryStore struct {
	mu            sync.Mutex
	byCorrelation map[string]*Record
	byUETR        map[string]*Record
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byCorrelation: make(map[string]*Record),
		byUETR:        make(map[string]*Record),
	}
}

func key(tenantID, id string) string { return tenantID + ":" + id }

func (s *MemoryStore) Insert(ctx context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.byCorrelation[key(r.TenantID, r.CorrelationID)] = &cp
	s.byUETR[key(r.TenantID, r.UETR)] = &cp
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, r *Record) error {
	return s.Insert(ctx, r)
}

func (s *MemoryStore) GetByUETR(ctx context.Context, tenantID, uetr string) (*Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byUETR[key(tenantID, uetr)]
	return r, ok, nil
}

func (s *MemoryStore) GetByCorrelationID(ctx context.Context, tenantID, correlationID string) (*Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byCorrelation[key(tenantID, correlationID)]
	return r, ok, nil
}

var _ Store = (*MemoryStore)(nil)
