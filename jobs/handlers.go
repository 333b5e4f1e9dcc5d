package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stocksense/stocksense/internal/reports"
	"github.com/stocksense/stocksense/internal/shared"
)

// Tasks bundles the services the background handlers operate on.
type Tasks struct {
	Logger      *slog.Logger
	Reports     *reports.Service
	Idempotency *shared.IdempotencyStore
	Retention   time.Duration
}

// HandleLowStockScan walks every company's valuation and logs products
// that need reordering. The valuation read warms the cache as a side
// effect.
func (t *Tasks) HandleLowStockScan(ctx context.Context, task *asynq.Task) error {
	var payload LowStockScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	companies, err := t.Reports.WarmCompanies(ctx)
	if err != nil {
		return err
	}
	t.Logger.Info("low stock scan finished",
		slog.Int("companies", companies),
		slog.Time("scheduled_for", payload.ScheduledFor))
	return nil
}

// HandleReportWarmup invalidates and rebuilds the cached reports so the
// first dashboard hit after a busy period stays fast.
func (t *Tasks) HandleReportWarmup(ctx context.Context, task *asynq.Task) error {
	var payload ReportWarmupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := t.Reports.Invalidate(ctx); err != nil {
		return err
	}
	companies, err := t.Reports.WarmCompanies(ctx)
	if err != nil {
		return err
	}
	t.Logger.Info("report warmup finished", slog.Int("companies", companies))
	return nil
}

// HandleIdempotencyCleanup prunes keys past the retention window.
func (t *Tasks) HandleIdempotencyCleanup(ctx context.Context, task *asynq.Task) error {
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	retention := payload.Retention
	if retention <= 0 {
		retention = t.Retention
	}
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	removed, err := t.Idempotency.Cleanup(ctx, retention)
	if err != nil {
		return err
	}
	t.Logger.Info("idempotency cleanup finished", slog.Int64("removed", removed))
	return nil
}

// Handlers returns the registrations for the worker mux.
func (t *Tasks) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskLowStockScan, Handler: t.HandleLowStockScan},
		{Type: TaskReportWarmup, Handler: t.HandleReportWarmup},
		{Type: TaskIdempotencyCleanup, Handler: t.HandleIdempotencyCleanup},
	}
}
