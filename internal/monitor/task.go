package monitor

import (
	"context"
	"time"

	"github.com/fintechrail/paygate/internal/observe"
)

// Task is one cooperative periodic job: it fires every Interval and each
// firing is bounded by Deadline so a stuck check can never pile up
// behind the next tick.
type Task struct {
	Name     string
	Interval time.Duration
	Deadline time.Duration
	Fn       func(ctx context.Context) error
}

// Run executes t.Fn on every tick of t.Interval until ctx is cancelled.
// A firing that returns an error is logged and does not stop the loop;
// only ctx cancellation ends it, mirroring how the gateway keeps serving
// traffic through a monitor failure rather than going down with it.
func (t Task) Run(ctx context.Context, logger observe.Logger) error {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.fire(ctx, logger)
		}
	}
}

func (t Task) fire(ctx context.Context, logger observe.Logger) {
	fireCtx, cancel := context.WithTimeout(ctx, t.Deadline)
	defer cancel()

	start := time.Now()
	err := t.Fn(fireCtx)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error(ctx, "monitor task failed",
			observe.Field{Key: "task", Value: t.Name},
			observe.Field{Key: "elapsed", Value: elapsed.String()},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return
	}

	logger.Debug(ctx, "monitor task completed",
		observe.Field{Key: "task", Value: t.Name},
		observe.Field{Key: "elapsed", Value: elapsed.String()},
	)
}
