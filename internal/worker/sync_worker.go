package worker

import (
	"context"
	"log/slog"
	"time"

	"lunchsync/internal/model"
)

type Runner interface {
	RunAll(ctx context.Context, filters model.SyncFilters) ([]model.SyncReport, error)
}

// SyncWorker periodically syncs every instance.
type SyncWorker struct {
	runner   Runner
	interval time.Duration
}

func NewSyncWorker(runner Runner, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		runner:   runner,
		interval: interval,
	}
}

// Start blocks until ctx is done. A non-positive interval disables the worker.
func (w *SyncWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		slog.Info("sync worker disabled")
		return
	}
	slog.Info("starting sync worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SyncWorker) runOnce(ctx context.Context) {
	reports, err := w.runner.RunAll(ctx, model.SyncFilters{})
	if err != nil {
		slog.Warn("periodic sync incomplete", "error", err)
	}
	for _, rep := range reports {
		slog.Info("periodic sync done", "instance", rep.Instance, "run_id", rep.RunID, "created", rep.Created())
	}
}
