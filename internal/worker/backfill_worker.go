package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/solkant/internal/service"
)

// Backfiller creates the missing business of every user without one.
// service.TenantProvisioner implements it.
type Backfiller interface {
	Backfill(ctx context.Context) (service.BackfillReport, error)
}

// BackfillWorker periodically repairs users whose business creation failed
// during sign-in.
type BackfillWorker struct {
	backfiller Backfiller
	logger     *slog.Logger
	interval   time.Duration
}

// NewBackfillWorker creates a new backfill worker
func NewBackfillWorker(backfiller Backfiller, logger *slog.Logger, interval time.Duration) *BackfillWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackfillWorker{
		backfiller: backfiller,
		logger:     logger,
		interval:   interval,
	}
}

// Start runs one pass immediately, then one per interval until ctx is done.
func (w *BackfillWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("backfill worker disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("backfill worker started", slog.Duration("interval", w.interval))
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("backfill worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *BackfillWorker) runOnce(ctx context.Context) {
	report, err := w.backfiller.Backfill(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("business backfill failed", slog.String("error", err.Error()))
		return
	}
	if report.Failed > 0 {
		w.logger.Warn("business backfill incomplete",
			slog.Int("scanned", report.Scanned),
			slog.Int("failed", report.Failed),
		)
	}
}
