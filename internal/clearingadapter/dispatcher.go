package clearingadapter

import (
	"context"
	"fmt"

	"github.com/fintechrail/paygate/internal/resiliency"
	"github.com/fintechrail/paygate/internal/tenant"
)

// sender is the narrow shape HTTPClient (or any other transport) must
// satisfy to back a Dispatcher, matching internal/flow.AdapterClient's
// Send signature without importing internal/flow.
type sender interface {
	Send(ctx context.Context, endpoint string, payload []byte) ([]byte, error)
}

// Dispatcher resubmits a queued message's already-transformed wire
// payload to its owning adapter, satisfying internal/queue.Dispatcher.
// The queue package only knows a service name and a payload; Dispatcher
// is what turns the service name back into a resolvable endpoint and
// puts the resiliency executor back between the retry and the wire.
type Dispatcher struct {
	Adapters Repository
	Breakers *resiliency.Registry
	Client   sender
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(adapters Repository, breakers *resiliency.Registry, client sender) *Dispatcher {
	return &Dispatcher{Adapters: adapters, Breakers: breakers, Client: client}
}

// Dispatch implements internal/queue.Dispatcher.
func (d *Dispatcher) Dispatch(ctx context.Context, tenantID, serviceName string, payload []byte) error {
	adapter, ok, err := d.Adapters.Get(ctx, tenant.Context{TenantID: tenantID}, serviceName)
	if err != nil {
		return fmt.Errorf("clearingadapter: dispatcher lookup adapter %q: %w", serviceName, err)
	}
	if !ok {
		return fmt.Errorf("clearingadapter: dispatcher: no adapter %q for tenant %q", serviceName, tenantID)
	}

	executor := d.Breakers.Resolve(serviceName)
	return executor.Execute(ctx, func(ctx context.Context) error {
		_, sendErr := d.Client.Send(ctx, adapter.Endpoint, payload)
		return sendErr
	})
}
