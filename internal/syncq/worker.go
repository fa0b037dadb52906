package syncq

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// Retention is how long processed operations are kept before the worker
// prunes them.
const Retention = 7 * 24 * time.Hour

// Worker drains a Queue on a fixed interval until stopped.
type Worker struct {
	queue    *Queue
	interval time.Duration
	log      *slog.Logger
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWorker returns a Worker. A non-positive interval defaults to 30s.
func NewWorker(q *Queue, interval time.Duration, log *slog.Logger) *Worker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Worker{queue: q, interval: interval, log: log}
}

// Start launches the drain loop. The first drain runs immediately.
// The loop runs until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
	w.log.Info("sync worker started", "interval", w.interval.String())
}

// Stop cancels the loop, including any push in flight, and waits for it to
// exit. An interrupted operation stays pending for the next run.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
	})
	w.wg.Wait()
	w.log.Info("sync worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	if _, err := w.queue.Process(ctx); err != nil && !errors.Is(err, context.Canceled) {
		level := slog.LevelError
		if errors.Is(err, domain.ErrUnavailable) {
			level = slog.LevelWarn
		}
		w.log.Log(ctx, level, "sync drain failed", "error", err)
	}
	if ctx.Err() != nil {
		return
	}
	if n, err := w.queue.Prune(ctx, w.queue.now().Add(-Retention)); err != nil {
		w.log.WarnContext(ctx, "sync prune failed", "error", err)
	} else if n > 0 {
		w.log.InfoContext(ctx, "sync queue pruned", "removed", n)
	}
}
