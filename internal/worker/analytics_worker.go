// Package worker runs the periodic background jobs.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/taskboard/internal/domain"
)

// AnalyticsSource computes ledger-wide task counts
type AnalyticsSource interface {
	GlobalAnalytics(ctx context.Context) (*domain.Analytics, error)
}

// RoleBroadcaster pushes an event to subscribers of one role
type RoleBroadcaster interface {
	BroadcastTo(role domain.Role, event domain.Event)
	Count() int
}

// AnalyticsWorker periodically computes global task analytics and pushes
// them to connected admin subscribers. Delivery is best-effort like every
// other broadcast.
type AnalyticsWorker struct {
	source   AnalyticsSource
	hub      RoleBroadcaster
	interval time.Duration
	logger   *slog.Logger
}

// NewAnalyticsWorker creates an analytics worker
func NewAnalyticsWorker(source AnalyticsSource, hub RoleBroadcaster, interval time.Duration, logger *slog.Logger) *AnalyticsWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &AnalyticsWorker{
		source:   source,
		hub:      hub,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until the context is cancelled, pushing one analytics event
// per tick. Skips the computation entirely when nobody is connected.
func (w *AnalyticsWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("analytics worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("analytics worker stopped")
			return
		case <-ticker.C:
			w.push(ctx)
		}
	}
}

func (w *AnalyticsWorker) push(ctx context.Context) {
	if w.hub.Count() == 0 {
		return
	}

	analytics, err := w.source.GlobalAnalytics(ctx)
	if err != nil {
		w.logger.Error("failed to compute analytics", slog.String("error", err.Error()))
		return
	}

	w.hub.BroadcastTo(domain.RoleAdmin, domain.Event{
		Type:      domain.EventTaskAnalytics,
		Analytics: analytics,
	})
}
