package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/coursehub/internal/auth"
	"github.com/geocoder89/coursehub/internal/cache"
	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/db"
	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/domain/transaction"
	httpx "github.com/geocoder89/coursehub/internal/http"
	"github.com/geocoder89/coursehub/internal/notifications"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/geocoder89/coursehub/internal/queue/worker"
	"github.com/geocoder89/coursehub/internal/repo/memory"
	"github.com/geocoder89/coursehub/internal/repo/postgres"
	"github.com/geocoder89/coursehub/internal/security"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

// stores is the storage the router needs, backed by postgres or memory.
type stores struct {
	courses      httpx.CourseStore
	transactions httpx.TransactionStore
	users        httpx.UserStore
	jobs         httpx.JobStore
	ping         func(ctx context.Context) error

	// only set for STORE=memory; the API then runs the worker itself
	memoryJobs *memory.JobsRepo

	close func()
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	st, err := openStores(ctx, cfg, log, prom)
	if err != nil {
		return err
	}
	defer st.close()

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		return err
	}
	hasher := security.NewHasher(cfg.BcryptCost)

	seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	created, err := db.EnsureAdminUser(seedCtx, st.users, hasher, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}

	lists, closeCache, err := openListCache(ctx, cfg, log, prom)
	if err != nil {
		return err
	}
	defer closeCache()

	router := httpx.NewRouter(httpx.Deps{
		Config:       cfg,
		Log:          log,
		Tokens:       tokens,
		Hasher:       hasher,
		Courses:      st.courses,
		Transactions: st.transactions,
		Users:        st.users,
		Jobs:         st.jobs,
		Lists:        lists,
		Prom:         prom,
		Ping:         st.ping,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	workerDone := make(chan struct{})
	if st.memoryJobs != nil {
		w := worker.New(workerConfig(cfg, "api-inproc"), st.memoryJobs, newNotifier(log), log, prom)
		go func() {
			defer close(workerDone)
			if err := w.Run(ctx); err != nil {
				log.Error("in-process worker stopped", "err", err)
			}
		}()
	} else {
		close(workerDone)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var listenErr error
	select {
	case <-ctx.Done():
		log.Info("server shutting down")
	case listenErr = <-serveErr:
		log.Error("server failed", "err", listenErr)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	<-workerDone
	log.Info("shutdown complete")

	return listenErr
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger, prom *observability.Prom) (stores, error) {
	if cfg.Store == config.StoreMemory {
		courses := memory.NewStore[course.Course]()
		jobsRepo := memory.NewJobsRepo()

		return stores{
			courses:      courses,
			transactions: memory.NewStore[transaction.Transaction](),
			users:        memory.NewUsersRepo(),
			jobs:         jobsRepo,
			ping:         courses.Ping,
			memoryJobs:   jobsRepo,
			close:        func() {},
		}, nil
	}

	pool, err := db.NewPool(ctx, db.PoolConfigFrom(cfg, log))
	if err != nil {
		return stores{}, fmt.Errorf("db connect: %w", err)
	}

	if err := db.Migrate(ctx, pool, log); err != nil {
		pool.Close()
		return stores{}, err
	}

	return stores{
		courses:      postgres.NewCoursesRepo(pool, prom),
		transactions: postgres.NewTransactionsRepo(pool, prom),
		users:        postgres.NewUsersRepo(pool, prom),
		jobs:         postgres.NewJobsRepo(pool, prom),
		ping:         pool.Ping,
		close:        pool.Close,
	}, nil
}

// openListCache uses Redis when REDIS_ADDR is set and an in-process cache
// otherwise.
func openListCache(ctx context.Context, cfg config.Config, log *slog.Logger, prom *observability.Prom) (*cache.Lists, func(), error) {
	if cfg.RedisAddr == "" {
		return cache.NewLists(cache.NewMemory(cfg.CacheTTL), prom, log), func() {}, nil
	}

	rc, err := cache.NewRedis(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		return nil, nil, err
	}

	return cache.NewLists(rc, prom, log), func() { _ = rc.Close() }, nil
}

func newNotifier(log *slog.Logger) notifications.Notifier {
	return notifications.NewProtectedNotifier(notifications.NewLogNotifier(log), notifications.ProtectedNotifierConfig{Log: log})
}

func workerConfig(cfg config.Config, id string) worker.Config {
	return worker.Config{
		WorkerID:      id,
		Concurrency:   cfg.WorkerConcurrency,
		PollInterval:  cfg.WorkerPollInterval,
		ShutdownGrace: cfg.WorkerShutdown,
	}
}
