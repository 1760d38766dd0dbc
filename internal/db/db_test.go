package db_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/db"
)

func TestPoolConfigFrom(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{DBURL: "postgres://u:p@db:5432/n", DBMaxConns: 7, DBLogQueries: true}

	pc := db.PoolConfigFrom(cfg, log)
	if pc.URL != "postgres://u:p@db:5432/n" || pc.MaxConns != 7 || pc.Log != log {
		t.Fatalf("unexpected pool config %+v", pc)
	}
	if pc.QueryLog != slog.LevelDebug {
		t.Fatalf("statements should log at debug, got %v", pc.QueryLog)
	}

	cfg.DBLogQueries = false
	if pc := db.PoolConfigFrom(cfg, log); pc.Log != nil {
		t.Fatalf("query logging disabled, expected nil logger")
	}
}

func TestNewPool_BadURL(t *testing.T) {
	if _, err := db.NewPool(context.Background(), db.PoolConfig{URL: "postgres://u:p@localhost:notaport/db"}); err == nil {
		t.Fatalf("expected parse error")
	}
}
