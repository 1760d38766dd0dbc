package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/db"
	"github.com/geocoder89/coursehub/internal/notifications"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/geocoder89/coursehub/internal/queue/worker"
	"github.com/geocoder89/coursehub/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

// jobs locked longer than this are assumed to belong to a dead worker
const staleLockTTL = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env).With("component", "worker")

	if err := run(cfg, log); err != nil {
		log.Error("worker stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if cfg.Store != config.StorePostgres {
		return errors.New("the standalone worker needs STORE=postgres; with STORE=memory the API runs jobs itself")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName + "-worker",
		Environment: cfg.Env,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	pool, err := db.NewPool(ctx, db.PoolConfigFrom(cfg, log))
	if err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, log); err != nil {
		return err
	}

	prom := observability.NewProm(prometheus.NewRegistry())
	jobsRepo := postgres.NewJobsRepo(pool, prom)

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log),
		notifications.ProtectedNotifierConfig{Log: log},
	)

	w := worker.New(worker.Config{
		WorkerID:      workerID,
		Concurrency:   cfg.WorkerConcurrency,
		PollInterval:  cfg.WorkerPollInterval,
		ShutdownGrace: cfg.WorkerShutdown,
	}, jobsRepo, notifier, log, prom)

	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	mux.Handle("/", w.HealthHandler(pool))

	healthSrv := &http.Server{
		Addr:              cfg.WorkerHealthAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("worker health server starting", "addr", cfg.WorkerHealthAddr)
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("worker health server failed", "err", err)
		}
	}()

	go requeueStale(ctx, jobsRepo, log)

	log.Info("worker has started", "worker_id", workerID)

	runErr := w.Run(ctx)

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(sctx)

	log.Info("worker shutdown complete")
	return runErr
}

// requeueStale hands jobs stuck in processing back to the queue.
func requeueStale(ctx context.Context, repo *postgres.JobsRepo, log *slog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.RequeueStaleProcessing(ctx, staleLockTTL)
			if err != nil {
				log.Warn("requeue stale jobs failed", "err", err)
				continue
			}
			if n > 0 {
				log.Info("requeued stale jobs", "count", n)
			}
		}
	}
}
