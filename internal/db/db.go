// Package db opens the Postgres pool, migrates the schema and seeds the
// first admin.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/coursehub/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
)

type PoolConfig struct {
	URL         string
	MaxConns    int32
	ConnTimeout time.Duration
	// Log receives every statement at QueryLog level; nil logs nothing.
	Log      *slog.Logger
	QueryLog slog.Level
}

// PoolConfigFrom reads the pool settings out of the app config.
func PoolConfigFrom(cfg config.Config, log *slog.Logger) PoolConfig {
	pc := PoolConfig{URL: cfg.DatabaseURL(), MaxConns: cfg.DBMaxConns, QueryLog: slog.LevelDebug}
	if cfg.DBLogQueries {
		pc.Log = log
	}
	return pc
}

// NewPool connects and pings, so a bad DSN fails at startup instead of on
// the first request.
func NewPool(ctx context.Context, pc PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(pc.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if pc.MaxConns > 0 {
		cfg.MaxConns = pc.MaxConns
	}
	if pc.Log != nil {
		cfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   queryLogger(pc.Log, pc.QueryLog),
			LogLevel: tracelog.LogLevelInfo,
		}
	}

	timeout := pc.ConnTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// queryLogger writes pgx statement traces at level; pgx errors always go
// out at error level.
func queryLogger(log *slog.Logger, level slog.Level) tracelog.Logger {
	return tracelog.LoggerFunc(func(ctx context.Context, l tracelog.LogLevel, msg string, data map[string]any) {
		lvl := level
		if l == tracelog.LogLevelError {
			lvl = slog.LevelError
		}

		attrs := make([]any, 0, len(data)*2)
		for k, v := range data {
			if k == "args" {
				// bind values can be password hashes and reset tokens
				continue
			}
			attrs = append(attrs, k, v)
		}

		log.Log(ctx, lvl, "pgx: "+msg, attrs...)
	})
}
