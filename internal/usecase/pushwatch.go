package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"contentpulse/internal/ports"
)

// PushWatcher alerts the team once when a focus group's push becomes due.
// State is in-memory only: a restart may re-alert for still-due groups.
type PushWatcher struct {
	domains  ports.DomainRepository
	sessions ports.SessionRepository
	notifier ports.Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	notified map[string]struct{}
}

// NewPushWatcher constructs the watcher.
func NewPushWatcher(domains ports.DomainRepository, sessions ports.SessionRepository, notifier ports.Notifier, logger *slog.Logger) *PushWatcher {
	return &PushWatcher{
		domains:  domains,
		sessions: sessions,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		notified: map[string]struct{}{},
	}
}

// Sweep scans today's session of every domain for newly due pushes.
func (w *PushWatcher) Sweep(ctx context.Context) {
	if w.notifier == nil {
		return
	}

	now := w.now()
	today := now.Format("2006-01-02")

	for _, d := range w.domains.List() {
		session := w.sessions.GetOrCreate(d.ID, today)
		for _, group := range session.FocusGroups {
			if !group.PushDue(now) {
				continue
			}

			w.mu.Lock()
			_, seen := w.notified[group.ID]
			if !seen {
				w.notified[group.ID] = struct{}{}
			}
			w.mu.Unlock()
			if seen {
				continue
			}

			message := fmt.Sprintf("*Push due*: focus set %q on %s (started %s, %d articles)",
				group.Name, d.Name, group.StartTime, len(group.ArticleIDs))
			if err := w.notifier.PublishAlert(ctx, message); err != nil && w.logger != nil {
				w.logger.Warn("push alert failed", "group", group.Name, "error", err)
			}
		}
	}
}
