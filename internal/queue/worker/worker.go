package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/coursehub/internal/domain/job"
	"github.com/geocoder89/coursehub/internal/notifications"
	"github.com/geocoder89/coursehub/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
}

type Config struct {
	WorkerID      string
	Concurrency   int
	PollInterval  time.Duration
	JobTimeout    time.Duration
	ShutdownGrace time.Duration
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	notifier notifications.Notifier
	log      *slog.Logger
	prom     *observability.Prom
	metrics  *observability.JobMetrics
	backoff  func(attempt int) time.Duration
	now      func() time.Time

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Second
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}
	if cfg.WorkerID == "" {
		cfg.WorkerID = "worker"
	}
	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		log:      log,
		prom:     prom,
		metrics:  observability.NewJobMetrics(),
		backoff:  DefaultBackoff.Delay,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run polls until ctx is cancelled, then waits up to ShutdownGrace for
// in-flight jobs. Jobs keep their own context so a shutdown does not cut
// a send short.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	w.log.InfoContext(ctx, "worker started",
		"worker_id", w.cfg.WorkerID,
		"concurrency", w.cfg.Concurrency,
	)

	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}

	<-ctx.Done()
	w.setReady(false)
	w.log.Info("worker received shutdown signal")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(w.cfg.ShutdownGrace):
		w.log.Warn("worker shutdown grace exceeded", "grace", w.cfg.ShutdownGrace.String())
	}
	return nil
}

func (w *Worker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		// drain everything runnable before sleeping
		for ctx.Err() == nil {
			worked, err := w.ProcessOne(context.WithoutCancel(ctx))
			if err != nil {
				w.log.ErrorContext(ctx, "process job failed", "err", err)
			}
			if !worked {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) Metrics() observability.JobMetricsSnapshot {
	return w.metrics.Snapshot()
}

func (w *Worker) Ready() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
