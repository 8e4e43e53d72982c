package monitor

import (
	"context"
	"fmt"

	"github.com/fintechrail/paygate/internal/cache"
	"github.com/fintechrail/paygate/internal/resiliency"
)

// QueueDrainer is implemented by the queued-message store. The monitor
// depends only on this narrow interface so it never imports the queue
// package directly.
type QueueDrainer interface {
	// DrainDue dispatches every queued message whose retry time has
	// arrived.
	DrainDue(ctx context.Context) error
}

// ExpiredSweeper is implemented by the queued-message store's cleanup
// path.
type ExpiredSweeper interface {
	// SweepExpired terminalizes queued messages past their expiry.
	SweepExpired(ctx context.Context) error
}

// routeCacheKey names the cached routing-table entry for service, the
// one piece of per-service cached state a stale read would actively
// harm once the service is down.
func routeCacheKey(service string) string {
	return fmt.Sprintf("route:%s", service)
}

// recoverFromUnavailability is invoked when a tracked service crosses
// into UNAVAILABLE: it invalidates any cached routing data for that
// service (stale reads are worse than a cache miss once the backing
// service is down) and forces its circuit breaker open so in-flight
// callers fail fast instead of queueing up behind a dead dependency.
func recoverFromUnavailability(ctx context.Context, c cache.Cache, breakers *resiliency.Registry, service string) error {
	if c != nil {
		if err := c.Delete(ctx, routeCacheKey(service)); err != nil {
			return err
		}
	}
	breakers.Breaker(service).ForceOpen()
	return nil
}

// recoverFromRecovery is invoked when a tracked service transitions back
// to HEALTHY from DEGRADED/UNAVAILABLE: it resets the breaker so the
// next call is tried fresh rather than waiting out the breaker's own
// reset timeout.
func recoverFromRecovery(breakers *resiliency.Registry, service string) {
	breakers.Breaker(service).Reset()
}
