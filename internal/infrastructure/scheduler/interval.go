package scheduler

import (
	"context"
	"sync"
	"time"

	"contentpulse/internal/ports"
)

// IntervalScheduler fires a job on a fixed interval, optionally delaying
// the first run until the next top-of-hour boundary. The hourly snapshot
// capture uses the aligned form so samples land on hour buckets.
type IntervalScheduler struct {
	interval  time.Duration
	alignHour bool

	mu   sync.Mutex
	stop chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewInterval builds a plain fixed-interval scheduler.
func NewInterval(interval time.Duration) *IntervalScheduler {
	return &IntervalScheduler{interval: interval}
}

// NewHourly builds a scheduler whose first run aligns with the next
// top-of-hour boundary, then repeats every 60 minutes.
func NewHourly() *IntervalScheduler {
	return &IntervalScheduler{interval: time.Hour, alignHour: true}
}

// Start begins the ticking goroutine. The goroutine only ever sees the
// stop channel captured here, so Stop can reset the field without racing
// the select below.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	go func() {
		if s.alignHour {
			delay := untilNextHour(time.Now())
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
			job(time.Now())
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticking goroutine. Safe to call more than once and
// concurrently with context cancellation.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}

func untilNextHour(now time.Time) time.Duration {
	next := now.Truncate(time.Hour).Add(time.Hour)
	return next.Sub(now)
}
