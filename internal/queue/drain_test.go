package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fintechrail/paygate/internal/observe"
	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	mu       sync.Mutex
	messages map[string]Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{messages: make(map[string]Message)}
}

func (f *fakeStore) Insert(ctx context.Context, m Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[m.MessageID] = m
	return nil
}

func (f *fakeStore) Update(ctx context.Context, m Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[m.MessageID] = m
	return nil
}

func (f *fakeStore) SelectDrainable(ctx context.Context, limit int, now time.Time) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Message
	for _, m := range f.messages {
		if m.DueForRetry(now) {
			out = append(out, m)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) SelectExpirable(ctx context.Context, limit int, now time.Time) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Message
	for _, m := range f.messages {
		if m.Status != StatusDone && m.Status != StatusExpired && m.Expired(now) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) get(id string) Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[id]
}

type fakeDispatcher struct {
	fail bool
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, tenantID, serviceName string, payload []byte) error {
	if d.fail {
		return errors.New("adapter unreachable")
	}
	return nil
}

func newTestManager(t *testing.T, store *fakeStore, dispatcher Dispatcher) *Manager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewManager(store, NewScheduler(client), dispatcher, observe.NewLogger("error"))
}

func TestManager_DrainDueDispatchesAndMarksDone(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.messages["m1"] = Message{
		MessageID: "m1", TenantID: "acme-01", ServiceName: "bankserv",
		Status: StatusPending, NextRetryAt: now.Add(-time.Minute), ExpiresAt: now.Add(time.Hour),
	}

	mgr := newTestManager(t, store, &fakeDispatcher{})
	if err := mgr.DrainDue(context.Background()); err != nil {
		t.Fatalf("DrainDue() error = %v", err)
	}

	if got := store.get("m1").Status; got != StatusDone {
		t.Errorf("message status = %v, want DONE", got)
	}
}

func TestManager_DrainDueReschedulesOnFailure(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.messages["m1"] = Message{
		MessageID: "m1", TenantID: "acme-01", ServiceName: "bankserv",
		Status: StatusFailed, NextRetryAt: now, ExpiresAt: now.Add(time.Hour),
	}

	mgr := newTestManager(t, store, &fakeDispatcher{fail: true})
	if err := mgr.DrainDue(context.Background()); err != nil {
		t.Fatalf("DrainDue() error = %v", err)
	}

	got := store.get("m1")
	if got.Status != StatusFailed {
		t.Errorf("message status = %v, want FAILED", got.Status)
	}
	if got.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", got.RetryCount)
	}
}

func TestManager_DrainDueExpiresPastDeadlineOnFailure(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.messages["m1"] = Message{
		MessageID: "m1", TenantID: "acme-01", ServiceName: "bankserv",
		Status: StatusFailed, NextRetryAt: now, ExpiresAt: now.Add(-time.Minute),
	}

	mgr := newTestManager(t, store, &fakeDispatcher{fail: true})
	if err := mgr.DrainDue(context.Background()); err != nil {
		t.Fatalf("DrainDue() error = %v", err)
	}

	if got := store.get("m1").Status; got != StatusExpired {
		t.Errorf("message status = %v, want EXPIRED", got)
	}
}

func TestManager_SweepExpiredTerminalizesPastDeadline(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.messages["m1"] = Message{
		MessageID: "m1", TenantID: "acme-01", ServiceName: "bankserv",
		Status: StatusPending, ExpiresAt: now.Add(-time.Hour),
	}

	mgr := newTestManager(t, store, &fakeDispatcher{})
	if err := mgr.SweepExpired(context.Background()); err != nil {
		t.Fatalf("SweepExpired() error = %v", err)
	}

	if got := store.get("m1").Status; got != StatusExpired {
		t.Errorf("message status = %v, want EXPIRED", got)
	}
}

func TestManager_EnqueueDefaultsExpiry(t *testing.T) {
	store := newFakeStore()
	mgr := newTestManager(t, store, &fakeDispatcher{})

	msg, err := mgr.Enqueue(context.Background(), "acme-01", "bankserv", []byte(`{}`), 0)
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	want := msg.CreatedAt.Add(DefaultExpiry)
	if !msg.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v (CreatedAt + DefaultExpiry)", msg.ExpiresAt, want)
	}
}
