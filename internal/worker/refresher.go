package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mifi/internal/core"
	"mifi/internal/dashboard"
	"mifi/internal/log"
)

// SummaryRecorder receives the headline figures of each refresh.
type SummaryRecorder interface {
	SummaryUpdated(f core.Filters, s core.Summary)
}

// Refresher reloads the dashboard on an interval so the summary of the
// trailing window stays current between syncs.
type Refresher struct {
	loader   *dashboard.Loader
	filters  core.Filters
	interval time.Duration
	recorder SummaryRecorder
	logger   *log.Logger
}

func NewRefresher(loader *dashboard.Loader, filters core.Filters, interval time.Duration, recorder SummaryRecorder, logger *log.Logger) *Refresher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Refresher{
		loader:   loader,
		filters:  filters,
		interval: interval,
		recorder: recorder,
		logger:   log.OrDefault(logger).WithComponent(log.ComponentDashboard),
	}
}

// RefreshOnce loads the history and recomputes the summary.
func (r *Refresher) RefreshOnce(ctx context.Context) (core.Summary, error) {
	if err := r.loader.Load(ctx); err != nil {
		return core.Summary{}, err
	}
	views, err := r.loader.Views(r.filters)
	if err != nil {
		return core.Summary{}, fmt.Errorf("compute views: %w", err)
	}
	if r.recorder != nil {
		r.recorder.SummaryUpdated(views.Filters, views.Summary)
	}
	return views.Summary, nil
}

// Run refreshes immediately and then every interval until ctx is done.
// Failed refreshes are logged and retried on the next tick.
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if _, err := r.RefreshOnce(ctx); err != nil && !errors.Is(err, dashboard.ErrStale) && ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "dashboard refresh failed", log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
