package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/fintechrail/paygate/internal/cache"
	"github.com/fintechrail/paygate/internal/gatewayerr"
)

func newTestGate() *Gate {
	return NewGate(NewCacheStore(cache.NewMemoryCache(cache.DefaultPolicy()), time.Hour), time.Hour)
}

func TestGate_FirstRequestProceeds(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	dec, err := g.Check(ctx, "acme-01", "key-1", "POST", "/payments", []byte(`{"amount":10}`), now)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !dec.Proceed {
		t.Error("Proceed = false, want true on first request")
	}
}

func TestGate_ReplaysIdenticalRequest(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	body := []byte(`{"amount":10}`)

	if _, err := g.Check(ctx, "acme-01", "key-1", "POST", "/payments", body, now); err != nil {
		t.Fatalf("first Check() error = %v", err)
	}
	if err := g.Record(ctx, "acme-01", "key-1", "POST", "/payments", body, 201, []byte(`{"id":"p1"}`), now); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	dec, err := g.Check(ctx, "acme-01", "key-1", "POST", "/payments", body, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second Check() error = %v", err)
	}
	if !dec.Replay {
		t.Fatal("Replay = false, want true for identical retried request")
	}
	if dec.ReplayStatus != 201 || string(dec.ReplayBody) != `{"id":"p1"}` {
		t.Errorf("replayed response = (%d, %s), want (201, {\"id\":\"p1\"})", dec.ReplayStatus, dec.ReplayBody)
	}
}

func TestGate_ConflictsOnDivergentRequest(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	if err := g.Record(ctx, "acme-01", "key-1", "POST", "/payments", []byte(`{"amount":10}`), 201, []byte(`{}`), now); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	_, err := g.Check(ctx, "acme-01", "key-1", "POST", "/payments", []byte(`{"amount":20}`), now.Add(time.Minute))
	if err == nil {
		t.Fatal("Check() error = nil, want IdempotencyConflict")
	}
	ge, ok := gatewayerr.As(err)
	if !ok || ge.Kind != gatewayerr.IdempotencyConflict {
		t.Errorf("error kind = %v, want IdempotencyConflict", err)
	}
}

func TestGate_ExpiredRecordIsEvictedAndRetried(t *testing.T) {
	g := NewGate(NewCacheStore(cache.NewMemoryCache(cache.DefaultPolicy()), time.Hour), time.Minute)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	if err := g.Record(ctx, "acme-01", "key-1", "POST", "/payments", []byte(`{"amount":10}`), 201, []byte(`{}`), now); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	dec, err := g.Check(ctx, "acme-01", "key-1", "POST", "/payments", []byte(`{"amount":999}`), now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Check() after expiry error = %v", err)
	}
	if !dec.Proceed {
		t.Error("Proceed = false, want true once the original record has expired")
	}
}

func TestGate_TenantsAreIsolated(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	if err := g.Record(ctx, "tenant-a", "key-1", "POST", "/payments", []byte(`{"amount":10}`), 201, []byte(`{}`), now); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	dec, err := g.Check(ctx, "tenant-b", "key-1", "POST", "/payments", []byte(`{"amount":999}`), now)
	if err != nil {
		t.Fatalf("Check() for a different tenant errored: %v", err)
	}
	if !dec.Proceed {
		t.Error("Proceed = false, want true: the same key under a different tenant must not collide")
	}
}

func TestHashRequest_Deterministic(t *testing.T) {
	h1 := HashRequest("POST", "/payments", []byte(`{"a":1}`))
	h2 := HashRequest("POST", "/payments", []byte(`{"a":1}`))
	if h1 != h2 {
		t.Error("HashRequest() is not deterministic for identical inputs")
	}

	h3 := HashRequest("POST", "/payments", []byte(`{"a":2}`))
	if h1 == h3 {
		t.Error("HashRequest() collided for different bodies")
	}
}

func TestHashRequest_NoFieldConcatenationCollision(t *testing.T) {
	// "POST" + "/ab" must not hash the same as "POS" + "T/ab", as it would
	// if the fields were joined without a separator.
	h1 := HashRequest("POST", "/ab", nil)
	h2 := HashRequest("POS", "T/ab", nil)
	if h1 == h2 {
		t.Error("HashRequest() collided across a method/endpoint field boundary")
	}
}

func TestCacheStore_DeleteIsIdempotent(t *testing.T) {
	s := NewCacheStore(cache.NewMemoryCache(cache.DefaultPolicy()), time.Hour)
	if err := s.Delete(context.Background(), "acme-01", "missing-key"); err != nil {
		t.Errorf("Delete() on missing key error = %v, want nil", err)
	}
}
