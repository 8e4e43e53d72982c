package monitor

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fintechrail/paygate/internal/cache"
	"github.com/fintechrail/paygate/internal/health"
	"github.com/fintechrail/paygate/internal/observe"
	"github.com/fintechrail/paygate/internal/resiliency"
)

// Default intervals and per-firing deadlines for the three cooperative
// tasks the monitor runs.
const (
	HealthPollInterval = 2 * time.Minute
	HealthPollDeadline = 30 * time.Second

	QueueDrainInterval = 5 * time.Minute
	QueueDrainDeadline = 2 * time.Minute

	ExpiredCleanupInterval = 60 * time.Minute
	ExpiredCleanupDeadline = 5 * time.Minute
)

// Config wires the monitor's collaborators. Drainer and Sweeper are
// optional: a deployment without a queued-message store can run the
// monitor with just health polling.
type Config struct {
	Aggregator *health.Aggregator
	Breakers   *resiliency.Registry
	Cache      cache.Cache
	Drainer    QueueDrainer
	Sweeper    ExpiredSweeper
	Logger     observe.Logger
}

// Monitor runs the self-healing background tasks: health polling with
// recovery actions, queued-message drain scheduling, and expired-record
// cleanup. Each task is independent and a failure in one never stops
// the others, mirroring the gateway's own stance that a monitor outage
// must not take the gateway down with it.
type Monitor struct {
	cfg Config

	mu       sync.Mutex
	services map[string]*ServiceHealth
}

// New constructs a Monitor from cfg.
func New(cfg Config) *Monitor {
	return &Monitor{cfg: cfg, services: make(map[string]*ServiceHealth)}
}

// Start runs all configured tasks until ctx is cancelled, returning once
// every task has stopped.
func (m *Monitor) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return Task{
			Name:     "health-poll",
			Interval: HealthPollInterval,
			Deadline: HealthPollDeadline,
			Fn:       m.pollHealth,
		}.Run(ctx, m.cfg.Logger)
	})

	if m.cfg.Drainer != nil {
		g.Go(func() error {
			return Task{
				Name:     "queue-drain",
				Interval: QueueDrainInterval,
				Deadline: QueueDrainDeadline,
				Fn:       func(ctx context.Context) error { return m.cfg.Drainer.DrainDue(ctx) },
			}.Run(ctx, m.cfg.Logger)
		})
	}

	if m.cfg.Sweeper != nil {
		g.Go(func() error {
			return Task{
				Name:     "expired-cleanup",
				Interval: ExpiredCleanupInterval,
				Deadline: ExpiredCleanupDeadline,
				Fn:       func(ctx context.Context) error { return m.cfg.Sweeper.SweepExpired(ctx) },
			}.Run(ctx, m.cfg.Logger)
		})
	}

	return g.Wait()
}

// pollHealth runs every registered checker once, updates each service's
// ServiceHealth tracker, and fires recovery actions on any status
// transition.
func (m *Monitor) pollHealth(ctx context.Context) error {
	results := m.cfg.Aggregator.CheckAll(ctx)

	for name, result := range results {
		tracker := m.trackerFor(name)

		var from, to Status
		var changed bool
		if result.Status == health.StatusHealthy {
			from, to, changed = tracker.RecordSuccess()
		} else {
			from, to, changed = tracker.RecordFailure()
		}

		if !changed {
			continue
		}

		m.cfg.Logger.Info(ctx, "service health transition",
			observe.Field{Key: "service", Value: name},
			observe.Field{Key: "from", Value: from.String()},
			observe.Field{Key: "to", Value: to.String()},
		)

		if to == StatusUnavailable {
			if err := recoverFromUnavailability(ctx, m.cfg.Cache, m.cfg.Breakers, name); err != nil {
				m.cfg.Logger.Error(ctx, "recovery action failed",
					observe.Field{Key: "service", Value: name},
					observe.Field{Key: "error", Value: err.Error()},
				)
			}
		} else if to == StatusHealthy {
			recoverFromRecovery(m.cfg.Breakers, name)
		}
	}

	return nil
}

func (m *Monitor) trackerFor(service string) *ServiceHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.services[service]
	if !ok {
		t = NewServiceHealth()
		m.services[service] = t
	}
	return t
}

// ServiceStatus returns the last-observed status for service, or
// StatusHealthy if it has never been polled.
func (m *Monitor) ServiceStatus(service string) Status {
	return m.trackerFor(service).Status()
}
