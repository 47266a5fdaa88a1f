// Package scheduler runs the periodic challenge status reconciliation.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"circle/internal/middleware"

	"github.com/go-co-op/gocron/v2"
)

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = time.Minute

// Reconciler rewrites stale stored state and reports how many rows changed.
type Reconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// Start schedules r every interval, first run immediately. Runs never
// overlap. Cancelling ctx stops further runs; callers still Shutdown the
// returned scheduler to wait for an in-flight run.
func Start(ctx context.Context, interval time.Duration, r Reconciler) (gocron.Scheduler, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			runCtx, cancel := context.WithTimeout(ctx, interval)
			defer cancel()
			if _, err := r.Reconcile(runCtx); err != nil {
				middleware.Logger.ErrorContext(runCtx, "Challenge reconciliation failed",
					slog.String("error", err.Error()))
			}
		}),
		gocron.WithName("reconcile-challenge-status"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule reconciler: %w", err)
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		_ = sched.StopJobs()
	}()

	middleware.Logger.Info("Challenge reconciler scheduled", slog.Duration("interval", interval))
	return sched, nil
}
