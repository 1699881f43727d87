package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/visulab/backend/internal/analytics"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/observability/metrics"
	"github.com/visulab/backend/internal/service"
)

// StatsWorker periodically recomputes per-company shortage totals,
// exports them as Prometheus gauges, and keeps the dashboard cache warm
// so the first morning request does not pay the aggregation cost.
type StatsWorker struct {
	records    domain.ShortageRepository
	dashboards *service.DashboardService
	logger     *slog.Logger
	interval   time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(
	records domain.ShortageRepository,
	dashboards *service.DashboardService,
	logger *slog.Logger,
	interval time.Duration,
) *StatsWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsWorker{
		records:    records,
		dashboards: dashboards,
		logger:     logger,
		interval:   interval,
	}
}

// Start begins the refresh loop. An initial refresh runs immediately so
// gauges are populated right after boot.
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))
	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context) {
	records, err := w.records.List()
	if err != nil {
		w.logger.Error("failed to list records for stats refresh",
			slog.String("error", err.Error()),
		)
		return
	}

	pieces := make(map[string]int)
	var tenants []string
	for _, r := range records {
		if _, seen := pieces[r.TenantID]; !seen {
			tenants = append(tenants, r.TenantID)
		}
		qty := r.Quantity
		if qty < 1 {
			qty = 1
		}
		pieces[r.TenantID] += qty
	}

	for tenant, total := range pieces {
		metrics.SetShortagePieces(tenant, total)
	}

	// Warm the unfiltered dashboard views that users land on.
	for _, tenant := range tenants {
		if _, err := w.dashboards.GetDashboard(ctx, analytics.Criteria{TenantID: tenant}); err != nil {
			w.logger.Warn("failed to warm dashboard cache",
				slog.String("company_id", tenant),
				slog.String("error", err.Error()),
			)
		}
	}
	if _, err := w.dashboards.GetDashboard(ctx, analytics.Criteria{}); err != nil {
		w.logger.Warn("failed to warm global dashboard cache", slog.String("error", err.Error()))
	}

	w.logger.Info("stats refresh complete",
		slog.Int("records", len(records)),
		slog.Int("companies", len(tenants)),
	)
}
