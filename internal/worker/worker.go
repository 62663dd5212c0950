// Package worker runs the background report-archive sweep.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/reviewlens/reviewlens-api/internal/repository"
	"github.com/reviewlens/reviewlens-api/internal/service"
)

// sweepBatchSize bounds how many reports one sweep uploads.
const sweepBatchSize = 50

// Worker periodically archives finished reports to object storage and marks
// them archived. A no-op when the archive is disabled.
type Worker struct {
	reports repository.ReportRepository
	storage *service.StorageService

	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
	busy     atomic.Bool
	logger   *slog.Logger
}

// Config holds worker configuration.
type Config struct {
	SweepInterval time.Duration
}

// New creates the archive worker.
func New(reports repository.ReportRepository, storage *service.StorageService, cfg Config, logger *slog.Logger) *Worker {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		reports:  reports,
		storage:  storage,
		interval: cfg.SweepInterval,
		stop:     make(chan struct{}),
		logger:   logger.With("component", "archive_worker"),
	}
}

// Start begins the sweep loop.
func (w *Worker) Start(ctx context.Context) {
	if !w.storage.IsEnabled() {
		w.logger.Info("archive worker not started - storage disabled")
		return
	}

	w.logger.Info("starting", "interval", w.interval)
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop gracefully stops the worker, waiting for an in-flight sweep.
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
	w.logger.Info("stopped")
}

// Busy reports whether a sweep is in progress. Used by the idle monitor to
// hold off shutdown.
func (w *Worker) Busy() bool {
	return w.busy.Load()
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep uploads every unarchived report and marks it archived. Per-report
// failures are logged and retried on the next sweep.
func (w *Worker) sweep(ctx context.Context) {
	w.busy.Store(true)
	defer w.busy.Store(false)

	reports, err := w.reports.ListUnarchived(ctx, sweepBatchSize)
	if err != nil {
		w.logger.Error("failed to list unarchived reports", "error", err)
		return
	}
	if len(reports) == 0 {
		return
	}

	archived := 0
	for _, stored := range reports {
		if err := w.storage.ArchiveReport(ctx, stored); err != nil {
			w.logger.Warn("failed to archive report", "report_id", stored.ID, "error", err)
			continue
		}
		if err := w.reports.MarkArchived(ctx, stored.ID); err != nil {
			w.logger.Warn("failed to mark report archived", "report_id", stored.ID, "error", err)
			continue
		}
		archived++
	}

	w.logger.Info("archive sweep done", "candidates", len(reports), "archived", archived)
}
