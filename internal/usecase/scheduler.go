package usecase

import (
	"context"
	"fmt"
	"time"

	"contentpulse/internal/ports"
)

// Schedules wires the scheduler drivers to the background cycles. The
// refresh and snapshot cycles run on independent timers with no
// coordination between them; both funnel their writes through the same
// locked repositories.
type Schedules struct {
	refresh   ports.Scheduler
	hourly    ports.Scheduler
	push      ports.Scheduler
	analytics *Analytics
	watcher   *PushWatcher
}

// NewSchedules returns a helper to start/stop the recurring jobs. Any nil
// driver or target disables that job.
func NewSchedules(refresh, hourly, push ports.Scheduler, analytics *Analytics, watcher *PushWatcher) *Schedules {
	return &Schedules{
		refresh:   refresh,
		hourly:    hourly,
		push:      push,
		analytics: analytics,
		watcher:   watcher,
	}
}

// Start registers all cycles with their drivers.
func (s *Schedules) Start(ctx context.Context) error {
	if s.analytics != nil {
		if s.refresh != nil {
			if err := s.refresh.Start(ctx, func(time.Time) {
				s.analytics.RefreshAll(ctx)
			}); err != nil {
				return fmt.Errorf("start refresh schedule: %w", err)
			}
		}

		if s.hourly != nil {
			if err := s.hourly.Start(ctx, func(time.Time) {
				s.analytics.CaptureSnapshots(ctx)
			}); err != nil {
				return fmt.Errorf("start snapshot schedule: %w", err)
			}
		}
	}

	if s.push != nil && s.watcher != nil {
		if err := s.push.Start(ctx, func(time.Time) {
			s.watcher.Sweep(ctx)
		}); err != nil {
			return fmt.Errorf("start push watch: %w", err)
		}
	}

	return nil
}

// Stop gracefully tears down all drivers.
func (s *Schedules) Stop(ctx context.Context) error {
	for _, driver := range []ports.Scheduler{s.refresh, s.hourly, s.push} {
		if driver == nil {
			continue
		}
		if err := driver.Stop(ctx); err != nil {
			return err
		}
	}
	return nil
}
